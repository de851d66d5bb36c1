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

	"github.com/spf13/cobra"
)

// replaceCmd replaces a lost or rotated PIV token
var replaceCmd = &cobra.Command{
	Use:   "replace-pivtoken <old-guid>",
	Short: "Replace a lost or rotated PIV token",
	Long: `Replace the PIV token identified by old-guid with the token
currently in the reader. The old hardware key is gone, so the request
is authenticated with the old token's recovery token instead. The
recovery token is read from --recovery-token, KBM_RECOVERY_TOKEN, or
prompted for.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		oldGUID := args[0]
		cfg := getConfig()
		printer := NewPrinter(cfg.OutputFormat, os.Stdout)

		agentCfg, err := cfg.loadAgentConfig()
		if err != nil {
			handleError(err)
			return
		}

		newGUID, _ := cmd.Flags().GetString("guid")
		if newGUID == "" {
			handleError(fmt.Errorf("--guid of the replacement token is required"))
			return
		}

		rtoken, _ := cmd.Flags().GetString("recovery-token")
		if rtoken == "" {
			rtoken = os.Getenv("KBM_RECOVERY_TOKEN")
		}
		if rtoken == "" {
			rtoken, err = promptSecret("Recovery token: ")
			if err != nil {
				handleError(err)
				return
			}
		}

		// The replacement token must be present: its public key goes
		// into the new record even though it does not sign the request.
		tok, err := openToken(agentCfg)
		if err != nil {
			handleError(err)
			return
		}
		defer func() { _ = tok.Close() }()

		record, err := buildPivtokenRecord(agentCfg, tok, newGUID)
		if err != nil {
			handleError(err)
			return
		}

		client, err := newClient(agentCfg, tok)
		if err != nil {
			handleError(err)
			return
		}

		printVerbose("Replacing pivtoken %s with %s", oldGUID, newGUID)
		created, err := client.ReplacePivtoken(context.Background(), oldGUID, rtoken, record)
		if err != nil {
			handleError(err)
			return
		}

		if err := printer.PrintPivtoken(created); err != nil {
			handleError(err)
		}
	},
}

func init() {
	replaceCmd.Flags().String("guid", "", "GUID of the replacement PIV token")
	replaceCmd.Flags().String("recovery-token", "", "recovery token issued for the old PIV token (base64)")
}
