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
	"encoding/hex"
	"fmt"
	"os"
)

// DefaultKeyID is the CKA_ID of the key management slot, the slot a
// node's KBMAPI signing key lives in by convention.
const DefaultKeyID = "9e"

// Config describes how to reach the PIV token through PKCS#11.
type Config struct {
	// Library is the path to the PKCS#11 provider module, e.g.
	// /usr/lib/libykcs11.so or libsofthsm2.so for testing.
	Library string `yaml:"library"`

	// TokenLabel selects the token within the provider.
	TokenLabel string `yaml:"token_label"`

	// PIN authenticates the user session. May be empty here and
	// supplied interactively by the CLI.
	PIN string `yaml:"pin"`

	// KeyID is the hex-encoded CKA_ID of the signing slot. Defaults
	// to DefaultKeyID when empty.
	KeyID string `yaml:"key_id"`
}

// Validate checks the configuration and applies the slot default.
func (c *Config) Validate() error {
	if c.Library == "" {
		return fmt.Errorf("%w: library path is required", ErrInvalidConfig)
	}
	if _, err := os.Stat(c.Library); err != nil {
		return fmt.Errorf("%w: library %s: %v", ErrInvalidConfig, c.Library, err)
	}
	if c.TokenLabel == "" {
		return fmt.Errorf("%w: token label is required", ErrInvalidConfig)
	}
	if c.KeyID == "" {
		c.KeyID = DefaultKeyID
	}
	if _, err := hex.DecodeString(c.KeyID); err != nil {
		return fmt.Errorf("%w: key id %q is not hex: %v", ErrInvalidConfig, c.KeyID, err)
	}
	return nil
}

// keyID returns the decoded CKA_ID bytes. Validate must have run.
func (c *Config) keyID() []byte {
	id, _ := hex.DecodeString(c.KeyID)
	return id
}
