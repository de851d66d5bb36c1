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

package httpsig

import "errors"

var (
	// ErrSignerRequired indicates a nil hardware signer was provided
	// for an asymmetric signing operation.
	ErrSignerRequired = errors.New("httpsig: signer is required")

	// ErrSigningUnavailable indicates the hardware module is absent,
	// locked, or rejected the signing slot. Fatal to the enclosing
	// operation; there is no fallback signing path.
	ErrSigningUnavailable = errors.New("httpsig: hardware signing unavailable")

	// ErrInvalidToken indicates the recovery token is empty or is not
	// valid base64. Raised before any signing is attempted.
	ErrInvalidToken = errors.New("httpsig: invalid recovery token")

	// ErrInvalidGUID indicates the PIV token GUID supplied for a
	// symmetric-scheme request is not a valid UUID.
	ErrInvalidGUID = errors.New("httpsig: invalid pivtoken guid")

	// ErrFormatPrecondition indicates an empty keyId or signature
	// reached the header formatter. This is a defect in the caller,
	// not a runtime condition to recover from.
	ErrFormatPrecondition = errors.New("httpsig: empty keyId or signature")

	// ErrUnknownOperation indicates an operation tag with no signing
	// scheme mapping.
	ErrUnknownOperation = errors.New("httpsig: unknown operation")

	// ErrMalformedHeader indicates an Authorization header value that
	// does not match the Signature header grammar.
	ErrMalformedHeader = errors.New("httpsig: malformed signature header")
)
