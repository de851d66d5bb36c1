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

package cli

import (
	"fmt"
	"os"
	"syscall"

	"golang.org/x/term"

	"github.com/jeremyhahn/go-kbm/internal/config"
	"github.com/jeremyhahn/go-kbm/pkg/kbmapi"
	"github.com/jeremyhahn/go-kbm/pkg/logging"
	"github.com/jeremyhahn/go-kbm/pkg/pivtoken"
)

// Config holds global CLI configuration
type Config struct {
	// ConfigFile is the path to the agent configuration file
	ConfigFile string

	// OutputFormat controls output formatting (text, json)
	OutputFormat string

	// Verbose enables verbose logging
	Verbose bool
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		OutputFormat: "text",
	}
}

// loadAgentConfig loads the agent configuration file, honoring the
// --config flag and KBM_CONFIG.
func (c *Config) loadAgentConfig() (*config.Config, error) {
	path := c.ConfigFile
	if path == "" {
		path = os.Getenv("KBM_CONFIG")
	}
	if path == "" {
		path = config.DefaultPath
	}
	printVerbose("Loading configuration from %s", path)
	return config.Load(path)
}

// openToken opens the PIV token, prompting for the PIN when the
// configuration does not carry one.
func openToken(cfg *config.Config) (*pivtoken.Token, error) {
	if cfg.PIV.PIN == "" {
		pin, err := promptSecret("PIV token PIN: ")
		if err != nil {
			return nil, err
		}
		cfg.PIV.PIN = pin
	}
	return pivtoken.Open(&cfg.PIV)
}

// newClient builds a KBMAPI client over the token's hardware signer.
// The token stays open for the lifetime of the command; callers own
// the Close.
func newClient(cfg *config.Config, tok *pivtoken.Token) (*kbmapi.Client, error) {
	signer, err := tok.Signer()
	if err != nil {
		return nil, err
	}
	return kbmapi.NewClient(&cfg.KBMAPI, signer,
		kbmapi.WithLogger(logging.NewLogger(cfg.Logging.Debug)))
}

// promptSecret reads a secret from the terminal without echo. Falls
// back to plain stdin when not attached to a terminal, so the agent
// still works under automation.
func promptSecret(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	if term.IsTerminal(int(syscall.Stdin)) {
		secret, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("failed to read secret: %w", err)
		}
		return string(secret), nil
	}
	var secret string
	if _, err := fmt.Fscanln(os.Stdin, &secret); err != nil {
		return "", fmt.Errorf("failed to read secret: %w", err)
	}
	return secret, nil
}
