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

//go:build integration

package kbmapi

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jeremyhahn/go-kbm/pkg/httpsig"
	"github.com/jeremyhahn/go-kbm/pkg/kbmapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testGUID = "75ca0c10-2012-11e9-afb6-002590ec5bf2"

// kbmapiStub is an in-memory KBMAPI that verifies request signatures
// the way the real service does before answering.
type kbmapiStub struct {
	t       *testing.T
	pubkeys map[string]*ecdsa.PublicKey // keyId -> enrolled public key
	rtokens map[string][]byte           // guid -> recovery token bytes
	records map[string]*kbmapi.Pivtoken // guid -> record
}

func newKBMAPIStub(t *testing.T) *kbmapiStub {
	return &kbmapiStub{
		t:       t,
		pubkeys: make(map[string]*ecdsa.PublicKey),
		rtokens: make(map[string][]byte),
		records: make(map[string]*kbmapi.Pivtoken),
	}
}

// verify checks the Date/Authorization pair on an incoming request.
func (s *kbmapiStub) verify(r *http.Request) *httpsig.ParsedHeader {
	date := r.Header.Get("Date")
	require.NotEmpty(s.t, date, "Date header is required")

	parsed, err := httpsig.ParseHeader(r.Header.Get("Authorization"))
	require.NoError(s.t, err, "Authorization header must parse")
	require.Equal(s.t, "date", parsed.Headers)

	signable := httpsig.SignableString(date)
	raw, err := base64.StdEncoding.DecodeString(parsed.Signature)
	require.NoError(s.t, err, "signature must be base64")

	switch parsed.Algorithm {
	case httpsig.AlgorithmECDSASHA256:
		pub, ok := s.pubkeys[parsed.KeyID]
		require.True(s.t, ok, "unknown keyId %s", parsed.KeyID)
		digest := sha256.Sum256([]byte(signable))
		require.True(s.t, ecdsa.VerifyASN1(pub, digest[:], raw),
			"ecdsa signature must verify")
	case httpsig.AlgorithmHMACSHA256:
		key, ok := s.rtokens[parsed.KeyID]
		require.True(s.t, ok, "no recovery token for guid %s", parsed.KeyID)
		mac := hmac.New(sha256.New, key)
		mac.Write([]byte(signable))
		require.True(s.t, hmac.Equal(mac.Sum(nil), raw),
			"hmac signature must verify")
	default:
		s.t.Fatalf("unexpected algorithm %q", parsed.Algorithm)
	}
	return parsed
}

func (s *kbmapiStub) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/pivtokens", func(w http.ResponseWriter, r *http.Request) {
		s.verify(r)
		var tok kbmapi.Pivtoken
		require.NoError(s.t, json.NewDecoder(r.Body).Decode(&tok))
		tok.Pin = "123456"
		tok.RecoveryTokens = []kbmapi.RecoveryToken{{Token: base64.StdEncoding.EncodeToString([]byte("initial-rtoken"))}}
		s.records[tok.GUID] = &tok
		s.rtokens[tok.GUID] = []byte("initial-rtoken")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		require.NoError(s.t, json.NewEncoder(w).Encode(&tok))
	})

	mux.HandleFunc("/pivtokens/"+testGUID+"/pin", func(w http.ResponseWriter, r *http.Request) {
		s.verify(r)
		w.Header().Set("Content-Type", "application/json")
		require.NoError(s.t, json.NewEncoder(w).Encode(&kbmapi.PinResponse{Pin: "123456"}))
	})

	mux.HandleFunc("/pivtokens/"+testGUID+"/recover", func(w http.ResponseWriter, r *http.Request) {
		s.verify(r)
		record := s.records[testGUID]
		record.RecoveryTokens = append(record.RecoveryTokens,
			kbmapi.RecoveryToken{Token: base64.StdEncoding.EncodeToString([]byte("fresh-rtoken"))})
		s.rtokens[testGUID] = []byte("fresh-rtoken")
		w.Header().Set("Content-Type", "application/json")
		require.NoError(s.t, json.NewEncoder(w).Encode(record))
	})

	mux.HandleFunc("/pivtokens/"+testGUID+"/replace", func(w http.ResponseWriter, r *http.Request) {
		parsed := s.verify(r)
		assert.Equal(s.t, httpsig.AlgorithmHMACSHA256, parsed.Algorithm,
			"replacement must authenticate symmetrically")
		var tok kbmapi.Pivtoken
		require.NoError(s.t, json.NewDecoder(r.Body).Decode(&tok))
		s.records[tok.GUID] = &tok
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		require.NoError(s.t, json.NewEncoder(w).Encode(&tok))
	})

	return mux
}

// TestPivtokenLifecycleIntegration exercises the full enroll, pin
// fetch, rotate, replace sequence against a verifying KBMAPI stub.
func TestPivtokenLifecycleIntegration(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err, "Failed to generate ECDSA key")

	stub := newKBMAPIStub(t)
	server := httptest.NewServer(stub.handler())
	defer server.Close()

	// Enroll the key's fingerprint the way registration would.
	asym, err := httpsig.NewAsymmetricSigner(key)
	require.NoError(t, err)
	keyID, err := asym.KeyID()
	require.NoError(t, err)
	stub.pubkeys[keyID] = &key.PublicKey

	client, err := kbmapi.NewClient(&kbmapi.Config{Endpoint: server.URL}, key,
		kbmapi.WithHTTPClient(server.Client()))
	require.NoError(t, err, "Failed to create client")

	ctx := context.Background()

	// Enroll
	created, err := client.RegisterPivtoken(ctx, &kbmapi.Pivtoken{GUID: testGUID})
	require.NoError(t, err, "Failed to register pivtoken")
	assert.Equal(t, "123456", created.Pin)
	initial, err := created.LatestRecoveryToken()
	require.NoError(t, err)
	assert.NotEmpty(t, initial.Token)

	// Fetch pin
	pin, err := client.GetPin(ctx, testGUID)
	require.NoError(t, err, "Failed to fetch pin")
	assert.Equal(t, "123456", pin)

	// Rotate the recovery token
	fresh, err := client.CreateRecoveryToken(ctx, testGUID)
	require.NoError(t, err, "Failed to create recovery token")
	assert.NotEqual(t, initial.Token, fresh.Token)

	// Replace the token using the fresh recovery token
	replaced, err := client.ReplacePivtoken(ctx, testGUID, fresh.Token,
		&kbmapi.Pivtoken{GUID: testGUID})
	require.NoError(t, err, "Failed to replace pivtoken")
	assert.Equal(t, testGUID, replaced.GUID)
}
