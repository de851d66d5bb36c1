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

package kbmapi

import (
	"bytes"
	"context"
	"crypto"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/jeremyhahn/go-kbm/pkg/httpsig"
	"github.com/jeremyhahn/go-kbm/pkg/logging"
)

// Config describes how to reach the KBMAPI endpoint.
type Config struct {
	// Endpoint is the base URL, e.g. https://kbmapi.mydc.example.com.
	// A bare host is promoted to https.
	Endpoint string `yaml:"endpoint"`

	// TLSCAFile optionally pins the CA bundle used to verify the
	// server certificate.
	TLSCAFile string `yaml:"tls_ca_file"`

	// TLSInsecureSkipVerify disables server certificate verification.
	// Development only.
	TLSInsecureSkipVerify bool `yaml:"tls_insecure_skip_verify"`

	// Timeout bounds each HTTP exchange end to end. The signing step
	// itself has no timeout semantics.
	Timeout time.Duration `yaml:"timeout"`
}

// Client issues signed requests to KBMAPI on behalf of the node.
type Client struct {
	config     *Config
	httpClient *http.Client
	baseURL    string
	engine     *httpsig.Engine
	signer     crypto.Signer
	logger     *logging.Logger
}

// Option customizes Client construction.
type Option func(*Client)

// WithHTTPClient substitutes the underlying HTTP client, used by tests
// and by callers that manage their own transport.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithClock substitutes the signing engine's time source.
func WithClock(clock httpsig.Clock) Option {
	return func(c *Client) {
		c.engine = httpsig.NewEngine(httpsig.WithClock(clock))
	}
}

// WithLogger substitutes the client logger.
func WithLogger(logger *logging.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a KBMAPI client. The signer is the hardware-backed
// key used for asymmetric-scheme operations; it may be nil when the
// client is only used for token replacement, which authenticates with
// a recovery token instead.
func NewClient(cfg *Config, signer crypto.Signer, opts ...Option) (*Client, error) {
	if cfg == nil || cfg.Endpoint == "" {
		return nil, fmt.Errorf("%w: endpoint is required", ErrInvalidConfig)
	}

	baseURL := cfg.Endpoint
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "https://" + baseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("%w: endpoint %q: %v", ErrInvalidConfig, cfg.Endpoint, err)
	}

	c := &Client{
		config:  cfg,
		baseURL: baseURL,
		engine:  httpsig.NewEngine(),
		signer:  signer,
		logger:  logging.DefaultLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		httpClient, err := newHTTPClient(cfg)
		if err != nil {
			return nil, err
		}
		c.httpClient = httpClient
	}
	return c, nil
}

// newHTTPClient builds the transport from the TLS file paths in the
// configuration.
func newHTTPClient(cfg *Config) (*http.Client, error) {
	tlsConfig := &tls.Config{
		InsecureSkipVerify: cfg.TLSInsecureSkipVerify,
		MinVersion:         tls.VersionTLS12,
	}
	if cfg.TLSCAFile != "" {
		caCert, err := os.ReadFile(cfg.TLSCAFile)
		if err != nil {
			return nil, fmt.Errorf("%w: read CA certificate: %v", ErrInvalidConfig, err)
		}
		caCertPool := x509.NewCertPool()
		if !caCertPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("%w: parse CA certificate %s", ErrInvalidConfig, cfg.TLSCAFile)
		}
		tlsConfig.RootCAs = caCertPool
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: &http.Transport{TLSClientConfig: tlsConfig},
	}, nil
}

// RegisterPivtoken enrolls the PIV token with KBMAPI. The request is
// signed with the token's own hardware key; the response echoes the
// record with the PIN and initial recovery token populated.
func (c *Client) RegisterPivtoken(ctx context.Context, tok *Pivtoken) (*Pivtoken, error) {
	sig := &httpsig.Request{Operation: httpsig.OpRegisterPivtoken, Signer: c.signer}
	var created Pivtoken
	if err := c.do(ctx, http.MethodPost, "/pivtokens", sig, tok, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// GetPin fetches the PIN for the identified PIV token.
func (c *Client) GetPin(ctx context.Context, guid string) (string, error) {
	sig := &httpsig.Request{Operation: httpsig.OpGetPin, Signer: c.signer}
	var resp PinResponse
	path := fmt.Sprintf("/pivtokens/%s/pin", url.PathEscape(guid))
	if err := c.do(ctx, http.MethodGet, path, sig, nil, &resp); err != nil {
		return "", err
	}
	return resp.Pin, nil
}

// ReplacePivtoken replaces the token identified by oldGUID with the
// supplied replacement record. The old hardware key is gone, so the
// request authenticates symmetrically under the old token's recovery
// token.
func (c *Client) ReplacePivtoken(ctx context.Context, oldGUID, recoveryToken string, replacement *Pivtoken) (*Pivtoken, error) {
	sig := &httpsig.Request{
		Operation:     httpsig.OpReplacePivtoken,
		GUID:          oldGUID,
		RecoveryToken: recoveryToken,
	}
	var created Pivtoken
	path := fmt.Sprintf("/pivtokens/%s/replace", url.PathEscape(oldGUID))
	if err := c.do(ctx, http.MethodPost, path, sig, replacement, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// CreateRecoveryToken asks KBMAPI to issue a fresh recovery token for
// the identified PIV token, superseding earlier ones.
func (c *Client) CreateRecoveryToken(ctx context.Context, guid string) (*RecoveryToken, error) {
	sig := &httpsig.Request{Operation: httpsig.OpNewRtoken, Signer: c.signer}
	var updated Pivtoken
	path := fmt.Sprintf("/pivtokens/%s/recover", url.PathEscape(guid))
	if err := c.do(ctx, http.MethodPost, path, sig, nil, &updated); err != nil {
		return nil, err
	}
	return updated.LatestRecoveryToken()
}

// do signs and dispatches one request. Signing runs first and a
// failure there returns before anything touches the network.
func (c *Client) do(ctx context.Context, method, path string, sig *httpsig.Request, body, out any) error {
	headers, err := c.engine.Sign(sig)
	if err != nil {
		return err
	}
	c.logger.Debugf("signed %s request for %s %s", sig.Operation, method, path)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: encode request body: %v", ErrRequestFailed, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	req.Header.Set("Date", headers.Date)
	req.Header.Set("Authorization", headers.Authorization)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s %s: %s: %s",
			ErrUnexpectedStatus, method, path, resp.Status, strings.TrimSpace(string(snippet)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
	}
	return nil
}
