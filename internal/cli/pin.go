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
	"os"

	"github.com/spf13/cobra"
)

// getPinCmd fetches the PIV token's PIN from KBMAPI
var getPinCmd = &cobra.Command{
	Use:   "get-pin <guid>",
	Short: "Fetch the PIV token's PIN from KBMAPI",
	Long: `Fetch the PIN for the identified PIV token. The request is signed
with the token's hardware key; KBMAPI releases the PIN only to a
signer holding the enrolled private key.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		guid := args[0]
		cfg := getConfig()
		printer := NewPrinter(cfg.OutputFormat, os.Stdout)

		agentCfg, err := cfg.loadAgentConfig()
		if err != nil {
			handleError(err)
			return
		}

		tok, err := openToken(agentCfg)
		if err != nil {
			handleError(err)
			return
		}
		defer func() { _ = tok.Close() }()

		client, err := newClient(agentCfg, tok)
		if err != nil {
			handleError(err)
			return
		}

		printVerbose("Fetching pin for pivtoken %s", guid)
		pin, err := client.GetPin(context.Background(), guid)
		if err != nil {
			handleError(err)
			return
		}

		if err := printer.PrintPin(pin); err != nil {
			handleError(err)
		}
	},
}
