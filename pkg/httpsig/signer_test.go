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
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/hmac"
	"crypto/md5"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"io"
	"strings"
	"testing"

	"golang.org/x/crypto/ssh"
)

const testDate = "Tue, 01 Jan 2019 00:00:00 GMT"

// failingSigner simulates a hardware module that is absent or locked.
type failingSigner struct{}

func (failingSigner) Public() crypto.PublicKey {
	return nil
}

func (failingSigner) Sign(rand io.Reader, digest []byte, opts crypto.SignerOpts) ([]byte, error) {
	return nil, errors.New("CKR_PIN_LOCKED")
}

// TestNewAsymmetricSigner tests signer construction
func TestNewAsymmetricSigner(t *testing.T) {
	if _, err := NewAsymmetricSigner(nil); !errors.Is(err, ErrSignerRequired) {
		t.Fatalf("expected ErrSignerRequired, got %v", err)
	}

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	signer, err := NewAsymmetricSigner(key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if signer == nil {
		t.Fatal("expected non-nil signer")
	}
}

// TestAsymmetricSignerSign tests ECDSA-SHA256 signing of the canonical string
func TestAsymmetricSignerSign(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	signer, err := NewAsymmetricSigner(key)
	if err != nil {
		t.Fatalf("failed to create signer: %v", err)
	}

	signable := SignableString(testDate)
	sig, err := signer.Sign(signable)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.ContainsAny(sig, "\n\r") {
		t.Error("signature must be a single line of base64")
	}

	raw, err := base64.StdEncoding.DecodeString(sig)
	if err != nil {
		t.Fatalf("signature is not valid base64: %v", err)
	}

	digest := sha256.Sum256([]byte(signable))
	if !ecdsa.VerifyASN1(&key.PublicKey, digest[:], raw) {
		t.Error("signature does not verify against the public key")
	}
}

// TestAsymmetricSignerUnavailable tests that a hardware failure is
// classified ErrSigningUnavailable
func TestAsymmetricSignerUnavailable(t *testing.T) {
	signer, err := NewAsymmetricSigner(failingSigner{})
	if err != nil {
		t.Fatalf("failed to create signer: %v", err)
	}
	if _, err := signer.Sign(SignableString(testDate)); !errors.Is(err, ErrSigningUnavailable) {
		t.Fatalf("expected ErrSigningUnavailable, got %v", err)
	}
}

// TestAsymmetricSignerKeyID tests fingerprint resolution against an
// independently computed MD5 digest of the SSH wire encoding
func TestAsymmetricSignerKeyID(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	signer, err := NewAsymmetricSigner(key)
	if err != nil {
		t.Fatalf("failed to create signer: %v", err)
	}

	keyID, err := signer.KeyID()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pub, err := ssh.NewPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatalf("failed to encode public key: %v", err)
	}
	digest := md5.Sum(pub.Marshal())
	want := hex.EncodeToString(digest[:])

	if keyID != want {
		t.Errorf("KeyID = %q, want %q", keyID, want)
	}
	if strings.Contains(keyID, ":") {
		t.Error("KeyID must not contain colons")
	}
	if len(keyID) != 32 {
		t.Errorf("KeyID length = %d, want 32 hex characters", len(keyID))
	}
}

// TestNewSymmetricSignerInvalidToken tests token validation ahead of signing
func TestNewSymmetricSignerInvalidToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{name: "empty token", token: ""},
		{name: "whitespace token", token: "   "},
		{name: "not base64", token: "not!!!base64"},
		{name: "decodes to nothing", token: "===="},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewSymmetricSigner(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

// TestSymmetricSignerKnownVector tests the HMAC-SHA256 signature
// against an independent computation with crypto/hmac
func TestSymmetricSignerKnownVector(t *testing.T) {
	rawKey := []byte("deadbeef")
	token := base64.StdEncoding.EncodeToString(rawKey)
	signable := SignableString(testDate)

	signer, err := NewSymmetricSigner(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := signer.Sign(signable)

	mac := hmac.New(sha256.New, rawKey)
	mac.Write([]byte(signable))
	want := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	if got != want {
		t.Errorf("Sign() = %q, want %q", got, want)
	}
}

// TestSymmetricSignerDeterministic tests that repeated invocations
// yield byte-identical output
func TestSymmetricSignerDeterministic(t *testing.T) {
	token := base64.StdEncoding.EncodeToString([]byte("recovery-token-material"))
	signable := SignableString(testDate)

	first, err := NewSymmetricSigner(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := NewSymmetricSigner(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < 10; i++ {
		if first.Sign(signable) != second.Sign(signable) {
			t.Fatal("symmetric signing must be deterministic")
		}
	}
}

// TestSymmetricSignerSensitivity tests that changing the token or the
// timestamp changes the signature
func TestSymmetricSignerSensitivity(t *testing.T) {
	base, err := NewSymmetricSigner(base64.StdEncoding.EncodeToString([]byte("deadbeef")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	reference := base.Sign(SignableString(testDate))

	t.Run("token change", func(t *testing.T) {
		changed, err := NewSymmetricSigner(base64.StdEncoding.EncodeToString([]byte("deadbeeg")))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if changed.Sign(SignableString(testDate)) == reference {
			t.Error("signature must change when the token changes")
		}
	})

	t.Run("timestamp change", func(t *testing.T) {
		if base.Sign(SignableString("Tue, 01 Jan 2019 00:00:01 GMT")) == reference {
			t.Error("signature must change when the timestamp changes")
		}
	})
}
