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

// Package pivtoken provides access to the node's PIV token through
// PKCS#11. The private key in the key management slot never leaves the
// device; signing is exposed as a crypto.Signer backed by the token.
//
// The slot is addressed by its CKA_ID, configured in hex (default
// "9e", the key management slot convention) rather than hard coded, so
// the package can be pointed at SoftHSM for development and testing.
package pivtoken
