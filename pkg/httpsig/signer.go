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
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/ssh"
)

// AsymmetricSigner signs the canonical string with a private key that
// never leaves the hardware module. The key is addressed through a
// crypto.Signer so hardware (PKCS#11) and in-memory test keys are
// interchangeable.
type AsymmetricSigner struct {
	signer crypto.Signer
}

// NewAsymmetricSigner wraps the provided hardware-backed signer.
func NewAsymmetricSigner(signer crypto.Signer) (*AsymmetricSigner, error) {
	if signer == nil {
		return nil, ErrSignerRequired
	}
	return &AsymmetricSigner{signer: signer}, nil
}

// Sign computes the ECDSA-SHA256 signature over the signable string
// and returns it as a single line of base64. Any failure from the
// hardware module is classified ErrSigningUnavailable; the caller must
// abort the operation before dispatching a request.
func (s *AsymmetricSigner) Sign(signable string) (string, error) {
	digest := sha256.Sum256([]byte(signable))
	sig, err := s.signer.Sign(rand.Reader, digest[:], crypto.SHA256)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSigningUnavailable, err)
	}
	return base64.StdEncoding.EncodeToString(sig), nil
}

// KeyID resolves the public identity of the hardware-held key: the MD5
// fingerprint of the public key with the colon separators removed.
// The fingerprint is recomputed on every call, never cached, so a
// replaced token is picked up between requests.
func (s *AsymmetricSigner) KeyID() (string, error) {
	pub, err := ssh.NewPublicKey(s.signer.Public())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSigningUnavailable, err)
	}
	// FingerprintLegacyMD5 returns the bare colon-separated digest
	// with no algorithm prefix, so only the separators are stripped.
	return strings.ReplaceAll(ssh.FingerprintLegacyMD5(pub), ":", ""), nil
}

// SymmetricSigner signs the canonical string with HMAC-SHA256 keyed by
// a recovery token. The token is decoded from base64 once at
// construction; NewSymmetricSigner fails before any signing is
// attempted if the token is empty or malformed.
type SymmetricSigner struct {
	key []byte
}

// NewSymmetricSigner decodes the base64 recovery token into raw HMAC
// key material.
func NewSymmetricSigner(recoveryToken string) (*SymmetricSigner, error) {
	if strings.TrimSpace(recoveryToken) == "" {
		return nil, ErrInvalidToken
	}
	key, err := base64.StdEncoding.DecodeString(recoveryToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if len(key) == 0 {
		return nil, ErrInvalidToken
	}
	return &SymmetricSigner{key: key}, nil
}

// Sign computes the HMAC-SHA256 tag over the signable string and
// returns it as a single line of base64. Deterministic: identical
// (token, string) pairs always yield identical output.
func (s *SymmetricSigner) Sign(signable string) string {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(signable))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
