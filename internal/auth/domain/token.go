package domain

import "time"

// IssuedToken is a freshly minted token together with its absolute expiry.
type IssuedToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenPair is the full login credential: a short-lived access token and a
// long-lived refresh token.
type TokenPair struct {
	AccessToken  IssuedToken `json:"access_token"`
	RefreshToken IssuedToken `json:"refresh_token"`
}

// ActivationGrant is returned by sign-up and the activation/reset reissue
// operations: the account's public fields plus a short-lived token that
// proves control of the email address.
type ActivationGrant struct {
	User  PublicUser  `json:"user"`
	Token IssuedToken `json:"token"`
}

// LoginResult is the outcome of a credential check. When the account has 2FA
// enabled, Requires2FA is set and only Temp2FAToken is present; no
// access/refresh pair exists until the TOTP step completes. Otherwise Tokens
// holds the full pair.
type LoginResult struct {
	User        PublicUser   `json:"user"`
	Requires2FA bool         `json:"requires_2fa"`
	Tokens      *TokenPair   `json:"tokens,omitempty"`
	Temp2FA     *IssuedToken `json:"temp_2fa_token,omitempty"`
}
