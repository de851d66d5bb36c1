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
	"strings"
)

// Algorithm names the signature algorithm carried in the Authorization
// header. The value must match the scheme that produced the signature.
type Algorithm string

const (
	// AlgorithmECDSASHA256 is the asymmetric-scheme algorithm name.
	AlgorithmECDSASHA256 Algorithm = "ecdsa-sha256"

	// AlgorithmHMACSHA256 is the symmetric-scheme algorithm name.
	AlgorithmHMACSHA256 Algorithm = "hmac-sha256"
)

// signedHeaders is the fixed header list covered by the signature.
// KBMAPI only ever signs the Date header.
const signedHeaders = "date"

// headerPrefix introduces the Signature authorization scheme.
const headerPrefix = "Signature "

// FormatHeader renders the Authorization header value. The field
// order, quoting, and the literal headers="date" are part of the wire
// contract with the KBMAPI verifier and must not change.
//
// An empty keyId or signature is a programming error in the caller;
// the formatter itself performs no I/O and cannot otherwise fail.
func FormatHeader(keyID string, algorithm Algorithm, signature string) (string, error) {
	if keyID == "" || signature == "" {
		return "", ErrFormatPrecondition
	}
	return fmt.Sprintf("%skeyId=\"%s\",algorithm=\"%s\",headers=\"%s\",signature=\"%s\"",
		headerPrefix, keyID, algorithm, signedHeaders, signature), nil
}

// ParsedHeader holds the fields recovered from a rendered
// Authorization header value.
type ParsedHeader struct {
	KeyID     string
	Algorithm Algorithm
	Headers   string
	Signature string
}

// ParseHeader is the inverse of FormatHeader. None of the rendered
// values may legally contain a double quote or comma (keyIds are hex
// or UUID text, signatures are base64), so a simple comma split over
// key="value" pairs recovers the fields exactly.
func ParseHeader(value string) (*ParsedHeader, error) {
	if !strings.HasPrefix(value, headerPrefix) {
		return nil, fmt.Errorf("%w: missing %q prefix", ErrMalformedHeader, strings.TrimSpace(headerPrefix))
	}
	parsed := &ParsedHeader{}
	for _, field := range strings.Split(strings.TrimPrefix(value, headerPrefix), ",") {
		name, quoted, ok := strings.Cut(field, "=")
		if !ok {
			return nil, fmt.Errorf("%w: field %q", ErrMalformedHeader, field)
		}
		val := strings.TrimPrefix(strings.TrimSuffix(quoted, "\""), "\"")
		if len(val)+2 != len(quoted) {
			return nil, fmt.Errorf("%w: unquoted field %q", ErrMalformedHeader, field)
		}
		switch name {
		case "keyId":
			parsed.KeyID = val
		case "algorithm":
			parsed.Algorithm = Algorithm(val)
		case "headers":
			parsed.Headers = val
		case "signature":
			parsed.Signature = val
		default:
			return nil, fmt.Errorf("%w: unknown field %q", ErrMalformedHeader, name)
		}
	}
	if parsed.KeyID == "" || parsed.Signature == "" {
		return nil, fmt.Errorf("%w: incomplete header", ErrMalformedHeader)
	}
	return parsed, nil
}
