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

import "errors"

var (
	// ErrInvalidConfig is returned when the PKCS#11 configuration is
	// incomplete or malformed.
	ErrInvalidConfig = errors.New("pivtoken: invalid configuration")

	// ErrNotOpen is returned when an operation is attempted before
	// Open or after Close.
	ErrNotOpen = errors.New("pivtoken: token not open")

	// ErrTokenNotPresent is returned when no PIV token is present in
	// the reader or the device has been removed.
	ErrTokenNotPresent = errors.New("pivtoken: token not present")

	// ErrTokenLocked is returned when the token's PIN is locked or the
	// supplied PIN was rejected.
	ErrTokenLocked = errors.New("pivtoken: token locked or pin rejected")

	// ErrKeyNotFound is returned when the configured slot holds no key
	// pair.
	ErrKeyNotFound = errors.New("pivtoken: no key pair in configured slot")
)
