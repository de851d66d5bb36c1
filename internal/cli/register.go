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
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/ssh"

	"github.com/jeremyhahn/go-kbm/internal/config"
	"github.com/jeremyhahn/go-kbm/internal/platform"
	"github.com/jeremyhahn/go-kbm/pkg/kbmapi"
	"github.com/jeremyhahn/go-kbm/pkg/pivtoken"
)

// registerCmd enrolls the node's PIV token with KBMAPI
var registerCmd = &cobra.Command{
	Use:   "register-pivtoken",
	Short: "Enroll this node's PIV token with KBMAPI",
	Long: `Enroll the PIV token with KBMAPI. The enrollment request is signed
with the token's own hardware key and returns the token record with
its PIN and initial recovery token.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := getConfig()
		printer := NewPrinter(cfg.OutputFormat, os.Stdout)

		agentCfg, err := cfg.loadAgentConfig()
		if err != nil {
			handleError(err)
			return
		}

		guid, _ := cmd.Flags().GetString("guid")
		if guid == "" {
			handleError(fmt.Errorf("--guid is required"))
			return
		}

		tok, err := openToken(agentCfg)
		if err != nil {
			handleError(err)
			return
		}
		defer func() { _ = tok.Close() }()

		record, err := buildPivtokenRecord(agentCfg, tok, guid)
		if err != nil {
			handleError(err)
			return
		}

		client, err := newClient(agentCfg, tok)
		if err != nil {
			handleError(err)
			return
		}

		printVerbose("Registering pivtoken %s with %s", guid, agentCfg.KBMAPI.Endpoint)
		created, err := client.RegisterPivtoken(context.Background(), record)
		if err != nil {
			handleError(err)
			return
		}

		if err := printer.PrintPivtoken(created); err != nil {
			handleError(err)
		}
	},
}

// buildPivtokenRecord assembles the enrollment payload: the token's
// public key plus the node identity synthesized from the datacenter
// configuration.
func buildPivtokenRecord(agentCfg *config.Config, tok *pivtoken.Token, guid string) (*kbmapi.Pivtoken, error) {
	signer, err := tok.Signer()
	if err != nil {
		return nil, err
	}
	pub, err := ssh.NewPublicKey(signer.Public())
	if err != nil {
		return nil, fmt.Errorf("failed to encode public key: %w", err)
	}

	role, err := platform.SystemRole(agentCfg.Platform.BootParams)
	if err != nil {
		return nil, err
	}
	hostname := platform.Hostname(role,
		agentCfg.Platform.NodeUUID,
		agentCfg.Platform.Datacenter,
		agentCfg.Platform.DNSDomain)
	printVerbose("Node role %s, hostname %s", role, hostname)

	return &kbmapi.Pivtoken{
		GUID:     guid,
		CNUUID:   agentCfg.Platform.NodeUUID,
		Hostname: hostname,
		Pubkeys: map[string]string{
			pivtoken.DefaultKeyID: strings.TrimSpace(string(ssh.MarshalAuthorizedKey(pub))),
		},
	}, nil
}

func init() {
	registerCmd.Flags().String("guid", "", "GUID of the PIV token being enrolled")
}
