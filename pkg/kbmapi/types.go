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

// Pivtoken is the KBMAPI representation of an enrolled PIV token.
type Pivtoken struct {
	// GUID is the token's globally unique identifier, reported by the
	// device itself.
	GUID string `json:"guid"`

	// CNUUID is the UUID of the compute node the token is attached to.
	CNUUID string `json:"cn_uuid"`

	// Hostname is the node hostname reported at enrollment.
	Hostname string `json:"hostname,omitempty"`

	// Pubkeys maps slot names to the SSH-encoded public key held in
	// that slot.
	Pubkeys map[string]string `json:"pubkeys,omitempty"`

	// Serial is the device serial number, when the reader exposes one.
	Serial string `json:"serial,omitempty"`

	// Model is the device model string.
	Model string `json:"model,omitempty"`

	// Pin is only populated in enrollment and pin-fetch responses.
	Pin string `json:"pin,omitempty"`

	// RecoveryTokens holds the recovery tokens KBMAPI has issued for
	// this device, oldest first.
	RecoveryTokens []RecoveryToken `json:"recovery_tokens,omitempty"`
}

// RecoveryToken is a shared secret issued by KBMAPI, used as HMAC key
// material to authenticate a token-replacement request.
type RecoveryToken struct {
	// Token is the secret, base64 encoded.
	Token string `json:"token"`

	// Created is the server-side creation timestamp.
	Created string `json:"created,omitempty"`

	// Expired is set once the token has been superseded.
	Expired string `json:"expired,omitempty"`
}

// PinResponse is the body of a pin-fetch response.
type PinResponse struct {
	Pin string `json:"pin"`
}

// LatestRecoveryToken returns the newest recovery token on the
// pivtoken record.
func (p *Pivtoken) LatestRecoveryToken() (*RecoveryToken, error) {
	if len(p.RecoveryTokens) == 0 {
		return nil, ErrNoRecoveryToken
	}
	return &p.RecoveryTokens[len(p.RecoveryTokens)-1], nil
}
