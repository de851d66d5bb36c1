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

package pivtoken

import (
	"crypto"
	"errors"
	"fmt"
	"sync"

	"github.com/ThalesGroup/crypto11"
	"github.com/miekg/pkcs11"
)

// Token is an open PKCS#11 session to the node's PIV token.
//
// All operations are protected by a read-write mutex. A single Token
// serializes hardware access for its callers; the agent performs one
// signing request at a time.
type Token struct {
	config *Config
	ctx    *crypto11.Context
	mu     sync.RWMutex
	closed bool
}

// Open validates the configuration and establishes a logged-in session
// with the token.
func Open(config *Config) (*Token, error) {
	if config == nil {
		return nil, ErrInvalidConfig
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	ctx, err := crypto11.Configure(&crypto11.Config{
		Path:       config.Library,
		TokenLabel: config.TokenLabel,
		Pin:        config.PIN,
	})
	if err != nil {
		return nil, classify(err)
	}

	return &Token{config: config, ctx: ctx}, nil
}

// Signer returns a crypto.Signer over the private key in the
// configured slot. The key material stays on the device; only
// signatures cross the boundary.
func (t *Token) Signer() (crypto.Signer, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.closed || t.ctx == nil {
		return nil, ErrNotOpen
	}

	signer, err := t.ctx.FindKeyPair(t.config.keyID(), nil)
	if err != nil {
		return nil, classify(err)
	}
	if signer == nil {
		return nil, fmt.Errorf("%w: id %s", ErrKeyNotFound, t.config.KeyID)
	}
	return signer, nil
}

// Close releases the PKCS#11 session. The Token must not be used after
// Close.
func (t *Token) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true
	return t.ctx.Close()
}

// classify maps PKCS#11 return codes onto the package's error
// taxonomy so callers can distinguish an absent token from a locked
// one without depending on miekg/pkcs11 themselves.
func classify(err error) error {
	var p11err pkcs11.Error
	if !errors.As(err, &p11err) {
		return fmt.Errorf("pivtoken: %w", err)
	}
	switch p11err {
	case pkcs11.CKR_TOKEN_NOT_PRESENT, pkcs11.CKR_DEVICE_REMOVED,
		pkcs11.CKR_SLOT_ID_INVALID, pkcs11.CKR_TOKEN_NOT_RECOGNIZED:
		return fmt.Errorf("%w: %v", ErrTokenNotPresent, err)
	case pkcs11.CKR_PIN_INCORRECT, pkcs11.CKR_PIN_LOCKED, pkcs11.CKR_PIN_EXPIRED,
		pkcs11.CKR_USER_PIN_NOT_INITIALIZED:
		return fmt.Errorf("%w: %v", ErrTokenLocked, err)
	default:
		return fmt.Errorf("pivtoken: %w", err)
	}
}
