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

import (
	"fmt"
	"net/http"
	"time"
)

// Operation identifies a KBMAPI request type. The operation determines
// which signing scheme authenticates the request.
type Operation string

const (
	// OpGetPin fetches the PIV token's PIN from KBMAPI.
	OpGetPin Operation = "get-pin"

	// OpRegisterPivtoken enrolls a new PIV token with KBMAPI.
	OpRegisterPivtoken Operation = "register-pivtoken"

	// OpReplacePivtoken replaces a lost or rotated PIV token. The old
	// token's private key is gone, so the request is authenticated
	// with the recovery token instead.
	OpReplacePivtoken Operation = "replace-pivtoken"

	// OpNewRtoken requests a fresh recovery token for the PIV token.
	OpNewRtoken Operation = "new-rtoken"
)

// Scheme selects the key material and hash algorithm used to sign a
// request. It is a closed set of two variants dispatched exhaustively
// by the Engine.
type Scheme int

const (
	// SchemeAsymmetric signs with the hardware-held ECDSA private key.
	SchemeAsymmetric Scheme = iota

	// SchemeSymmetric signs with an HMAC keyed by the recovery token.
	SchemeSymmetric
)

// SchemeFor returns the signing scheme that authenticates the given
// operation. Replacement is the only operation signed symmetrically:
// it runs precisely when the hardware key is no longer usable.
func SchemeFor(op Operation) (Scheme, error) {
	switch op {
	case OpGetPin, OpRegisterPivtoken, OpNewRtoken:
		return SchemeAsymmetric, nil
	case OpReplacePivtoken:
		return SchemeSymmetric, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownOperation, op)
	}
}

// Clock produces the current time. It exists so the Engine can be
// exercised against a fixed instant in tests; production code uses
// SystemClock.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the system time.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// Timestamp renders an instant in the RFC 1123 GMT form required by
// the Date header, e.g. "Tue, 01 Jan 2019 00:00:00 GMT". The rendering
// is locale invariant and always GMT zoned.
func Timestamp(t time.Time) string {
	return t.UTC().Format(http.TimeFormat)
}

// SignableString builds the canonical string covered by the request
// signature. The only signed header is date, so the canonical form is
// a single line with no trailing newline.
func SignableString(timestamp string) string {
	return "date: " + timestamp
}
