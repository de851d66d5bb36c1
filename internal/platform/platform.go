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

// Package platform detects the node's role from its boot parameters
// and synthesizes the hostname reported to KBMAPI at enrollment. This
// is glue around the signing core; nothing here touches key material.
package platform

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Role identifies what kind of node the agent is running on.
type Role string

const (
	// RoleHeadnode is the datacenter head node.
	RoleHeadnode Role = "headnode"

	// RoleComputeNode is an ordinary compute node.
	RoleComputeNode Role = "computenode"
)

// ParseBootParams reads key=value boot parameters. Bare flags parse as
// key=true. Later duplicates win, matching kernel semantics.
func ParseBootParams(r io.Reader) (map[string]string, error) {
	params := make(map[string]string)
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)
	for scanner.Scan() {
		word := scanner.Text()
		if key, value, ok := strings.Cut(word, "="); ok {
			params[key] = value
		} else {
			params[word] = "true"
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("platform: read boot parameters: %w", err)
	}
	return params, nil
}

// SystemRole determines the node role from the boot parameter file,
// ordinarily /proc/cmdline. A node boots as headnode only when the
// headnode flag is present and true.
func SystemRole(bootParamsPath string) (Role, error) {
	// #nosec G304 - path comes from agent configuration
	f, err := os.Open(bootParamsPath)
	if err != nil {
		return "", fmt.Errorf("platform: open boot parameters: %w", err)
	}
	defer func() { _ = f.Close() }()

	params, err := ParseBootParams(f)
	if err != nil {
		return "", err
	}
	if params["headnode"] == "true" {
		return RoleHeadnode, nil
	}
	return RoleComputeNode, nil
}

// Hostname synthesizes the node hostname reported at enrollment from
// the datacenter configuration: <role>-<short node uuid>.<datacenter>
// with the DNS domain appended when configured.
func Hostname(role Role, nodeUUID, datacenter, dnsDomain string) string {
	short := nodeUUID
	if i := strings.IndexByte(nodeUUID, '-'); i > 0 {
		short = nodeUUID[:i]
	}
	hostname := fmt.Sprintf("%s-%s", role, short)
	if datacenter != "" {
		hostname += "." + datacenter
	}
	if dnsDomain != "" {
		hostname += "." + dnsDomain
	}
	return hostname
}
