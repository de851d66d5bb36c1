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

import "errors"

var (
	// ErrInvalidConfig is returned when the client configuration is
	// incomplete or malformed.
	ErrInvalidConfig = errors.New("kbmapi: invalid configuration")

	// ErrRequestFailed is returned when the HTTP exchange itself
	// fails. Transport failures are terminal; the client never
	// retries.
	ErrRequestFailed = errors.New("kbmapi: request failed")

	// ErrUnexpectedStatus is returned when KBMAPI answers with a
	// non-2xx status.
	ErrUnexpectedStatus = errors.New("kbmapi: unexpected response status")

	// ErrInvalidResponse is returned when a response body cannot be
	// decoded.
	ErrInvalidResponse = errors.New("kbmapi: invalid response body")

	// ErrNoRecoveryToken is returned when a response that should carry
	// a recovery token carries none.
	ErrNoRecoveryToken = errors.New("kbmapi: response contains no recovery token")
)
