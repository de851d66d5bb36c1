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
	"crypto"
	"fmt"

	"github.com/google/uuid"
)

// Headers is the ready-to-send header pair produced for one request.
// The Date value is the exact timestamp covered by the signature.
type Headers struct {
	Date          string
	Authorization string
}

// Request carries the inputs for one signing invocation.
//
// Signer is required for asymmetric operations. GUID and RecoveryToken
// are required for replace-pivtoken, where the keyId is the GUID of
// the token being replaced and the HMAC key is its recovery token.
type Request struct {
	Operation     Operation
	Signer        crypto.Signer
	GUID          string
	RecoveryToken string
}

// Engine orchestrates clock, signer, and formatter into a header pair.
// It holds no per-request state; a single Engine may be reused across
// invocations.
type Engine struct {
	clock Clock
}

// EngineOption customizes Engine construction.
type EngineOption func(*Engine)

// WithClock substitutes the time source, used by tests to sign against
// a fixed instant.
func WithClock(clock Clock) EngineOption {
	return func(e *Engine) {
		e.clock = clock
	}
}

// NewEngine creates a signing engine backed by the system clock unless
// overridden.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{clock: SystemClock{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Sign produces the (Date, Authorization) pair for the request. The
// timestamp is captured once and used for both the Date header and the
// signed string. Errors from any step propagate unchanged and no
// header pair is produced; callers must not dispatch a request after a
// signing failure.
func (e *Engine) Sign(req *Request) (*Headers, error) {
	timestamp := Timestamp(e.clock.Now())
	signable := SignableString(timestamp)

	scheme, err := SchemeFor(req.Operation)
	if err != nil {
		return nil, err
	}

	var authorization string
	switch scheme {
	case SchemeAsymmetric:
		authorization, err = e.signAsymmetric(req.Signer, signable)
	case SchemeSymmetric:
		authorization, err = e.signSymmetric(req.GUID, req.RecoveryToken, signable)
	}
	if err != nil {
		return nil, err
	}

	return &Headers{Date: timestamp, Authorization: authorization}, nil
}

func (e *Engine) signAsymmetric(signer crypto.Signer, signable string) (string, error) {
	asym, err := NewAsymmetricSigner(signer)
	if err != nil {
		return "", err
	}
	signature, err := asym.Sign(signable)
	if err != nil {
		return "", err
	}
	keyID, err := asym.KeyID()
	if err != nil {
		return "", err
	}
	return FormatHeader(keyID, AlgorithmECDSASHA256, signature)
}

func (e *Engine) signSymmetric(guid, recoveryToken, signable string) (string, error) {
	parsed, err := uuid.Parse(guid)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidGUID, err)
	}
	sym, err := NewSymmetricSigner(recoveryToken)
	if err != nil {
		return "", err
	}
	return FormatHeader(parsed.String(), AlgorithmHMACSHA256, sym.Sign(signable))
}
