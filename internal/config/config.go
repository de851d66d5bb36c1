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

// Package config loads the agent configuration from a YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jeremyhahn/go-kbm/pkg/kbmapi"
	"github.com/jeremyhahn/go-kbm/pkg/pivtoken"
)

// DefaultPath is where the agent looks for its configuration unless
// overridden by flag or KBM_CONFIG.
const DefaultPath = "/etc/kbm/config.yaml"

// Config represents the complete agent configuration
type Config struct {
	KBMAPI   kbmapi.Config   `yaml:"kbmapi"`
	PIV      pivtoken.Config `yaml:"piv"`
	Platform PlatformConfig  `yaml:"platform"`
	Logging  LoggingConfig   `yaml:"logging"`
}

// PlatformConfig describes the datacenter the node belongs to, used
// for hostname synthesis at enrollment.
type PlatformConfig struct {
	Datacenter string `yaml:"datacenter"`
	DNSDomain  string `yaml:"dns_domain"`

	// NodeUUID identifies the compute node. When empty the agent
	// reads it from the system.
	NodeUUID string `yaml:"node_uuid"`

	// BootParams is the boot parameter file scanned for system role
	// detection. Defaults to /proc/cmdline.
	BootParams string `yaml:"boot_params"`
}

// LoggingConfig controls logging behavior
type LoggingConfig struct {
	Debug bool `yaml:"debug"`
}

// DefaultConfig returns the built-in defaults used when no config
// file exists.
func DefaultConfig() *Config {
	return &Config{
		KBMAPI: kbmapi.Config{
			Timeout: 30 * time.Second,
		},
		PIV: pivtoken.Config{
			KeyID: pivtoken.DefaultKeyID,
		},
		Platform: PlatformConfig{
			BootParams: "/proc/cmdline",
		},
	}
}

// Load reads configuration from a YAML file and applies environment
// variable overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	// #nosec G304 - Config file path is provided by admin/user
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	if c.KBMAPI.Endpoint == "" {
		return fmt.Errorf("kbmapi.endpoint is required")
	}
	if c.Platform.BootParams == "" {
		c.Platform.BootParams = "/proc/cmdline"
	}
	// PIV settings are validated by pivtoken when the token is opened;
	// a config used only for replace-pivtoken has no hardware section.
	return nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration.
func applyEnvOverrides(cfg *Config) {
	if endpoint := os.Getenv("KBM_ENDPOINT"); endpoint != "" {
		cfg.KBMAPI.Endpoint = endpoint
	}
	if caFile := os.Getenv("KBM_TLS_CA_FILE"); caFile != "" {
		cfg.KBMAPI.TLSCAFile = caFile
	}
	if timeout := os.Getenv("KBM_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: invalid KBM_TIMEOUT value %q, using %s: %v\n",
				timeout, cfg.KBMAPI.Timeout, err)
		} else {
			cfg.KBMAPI.Timeout = d
		}
	}
	if library := os.Getenv("KBM_PKCS11_LIBRARY"); library != "" {
		cfg.PIV.Library = library
	}
	if label := os.Getenv("KBM_PKCS11_TOKEN_LABEL"); label != "" {
		cfg.PIV.TokenLabel = label
	}
	if pin := os.Getenv("KBM_PIV_PIN"); pin != "" {
		cfg.PIV.PIN = pin
	}
	if keyID := os.Getenv("KBM_PIV_KEY_ID"); keyID != "" {
		cfg.PIV.KeyID = keyID
	}
	if dc := os.Getenv("KBM_DATACENTER"); dc != "" {
		cfg.Platform.Datacenter = dc
	}
	if debug := os.Getenv("KBM_DEBUG"); debug != "" {
		v, err := strconv.ParseBool(debug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: invalid KBM_DEBUG value %q: %v\n", debug, err)
		} else {
			cfg.Logging.Debug = v
		}
	}
}
