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

// Package kbmapi is the REST client for the Key Backup and Management
// API. Every request carries a (Date, Authorization) pair produced by
// pkg/httpsig; a signing failure aborts the call before anything is
// dispatched on the wire. Transport failures surface as a single
// wrapped error with no retry.
package kbmapi
