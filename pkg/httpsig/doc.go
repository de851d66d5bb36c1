// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-kbm.
//
// go-kbm is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package httpsig implements the request authentication scheme used by
// KBMAPI, a restricted profile of the HTTP Signature draft in which the
// only signed header is Date.
//
// A request is authenticated by signing the canonical string
// "date: <timestamp>" under one of two schemes:
//
//   - Asymmetric: ECDSA-SHA256 under the private key held in the PIV
//     token's key management slot. The keyId is the MD5 fingerprint of
//     the corresponding public key with colons stripped.
//   - Symmetric: HMAC-SHA256 under a recovery token previously issued
//     by KBMAPI (supplied as base64 text). The keyId is the GUID of the
//     PIV token the recovery token is bound to.
//
// The Engine produces a (Date, Authorization) header pair for a given
// operation. Both headers derive from a single timestamp captured once
// per invocation, so the signed string always matches the Date header
// the server sees. Nothing is cached between invocations.
package httpsig
