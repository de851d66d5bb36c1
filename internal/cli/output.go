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
	"encoding/json"
	"fmt"
	"io"

	"github.com/jeremyhahn/go-kbm/pkg/kbmapi"
)

// OutputFormat defines the output format type
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
)

// Printer handles formatted output
type Printer struct {
	format OutputFormat
	writer io.Writer
}

// NewPrinter creates a new Printer
func NewPrinter(format string, writer io.Writer) *Printer {
	return &Printer{
		format: OutputFormat(format),
		writer: writer,
	}
}

// PrintError prints an error
func (p *Printer) PrintError(err error) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"error": err.Error(),
		})
	default:
		_, werr := fmt.Fprintf(p.writer, "Error: %s\n", err.Error())
		return werr
	}
}

// PrintSuccess prints a success message
func (p *Printer) PrintSuccess(msg string) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"status":  "success",
			"message": msg,
		})
	default:
		_, err := fmt.Fprintln(p.writer, msg)
		return err
	}
}

// PrintPin prints a fetched PIN. In text mode only the PIN itself is
// written so the output can feed a pipeline.
func (p *Printer) PrintPin(pin string) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"pin": pin,
		})
	case OutputFormatText:
		_, err := fmt.Fprintln(p.writer, pin)
		return err
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintPivtoken prints an enrolled pivtoken record
func (p *Printer) PrintPivtoken(tok *kbmapi.Pivtoken) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(tok)
	case OutputFormatText:
		fmt.Fprintf(p.writer, "GUID:     %s\n", tok.GUID)
		fmt.Fprintf(p.writer, "CN UUID:  %s\n", tok.CNUUID)
		if tok.Hostname != "" {
			fmt.Fprintf(p.writer, "Hostname: %s\n", tok.Hostname)
		}
		if tok.Pin != "" {
			fmt.Fprintf(p.writer, "PIN:      %s\n", tok.Pin)
		}
		fmt.Fprintf(p.writer, "Recovery tokens: %d\n", len(tok.RecoveryTokens))
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintRecoveryToken prints a newly issued recovery token
func (p *Printer) PrintRecoveryToken(rt *kbmapi.RecoveryToken) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(rt)
	case OutputFormatText:
		_, err := fmt.Fprintln(p.writer, rt.Token)
		return err
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// printJSON marshals and prints data as indented JSON
func (p *Printer) printJSON(data interface{}) error {
	encoder := json.NewEncoder(p.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
