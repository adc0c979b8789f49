// Package jwtx mints and decodes the signed, self-contained tokens that
// drive the authentication flows. Tokens are stateless: validation needs the
// shared signing secret and nothing else, which trades revocability for
// horizontal scalability.
package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Kind selects the lifetime and claim shape of an issued token.
type Kind string

const (
	// KindActivation proves control of the email address used at sign-up.
	KindActivation Kind = "activation"
	// KindAccess authorizes protected requests.
	KindAccess Kind = "access"
	// KindRefresh mints fresh access tokens.
	KindRefresh Kind = "refresh"
	// KindTemp2FA bridges the password check and the TOTP check during a
	// two-factor login. Not a full credential.
	KindTemp2FA Kind = "temp_2fa"
	// KindPasswordReset authorizes one password change. Same claim shape and
	// default lifetime as activation tokens.
	KindPasswordReset Kind = "password_reset"
)

// Default token lifetimes.
const (
	DefaultActivationTTL = 15 * time.Minute
	DefaultAccessTTL     = 30 * time.Minute
	DefaultRefreshTTL    = 4 * 7 * 24 * time.Hour
	DefaultTemp2FATTL    = 5 * time.Minute
)

// Identity is the subject a token is bound to.
type Identity struct {
	Username string
	Email    string
	UserID   string
}

// Claims is the closed claim schema shared by every token kind. A decoded
// token always carries username, email and user_id; only temp-2FA tokens set
// MFAPending. There is no claim naming the kind, so an access token and a
// temp-2FA token are distinguishable only by that flag, so callers gating a
// full login MUST check it.
type Claims struct {
	jwt.RegisteredClaims

	Username   string `json:"username"`
	Email      string `json:"email"`
	UserID     string `json:"user_id"`
	MFAPending bool   `json:"mfa_pending,omitempty"`
}

// Identity extracts the subject identity from decoded claims.
func (c Claims) Identity() Identity {
	return Identity{Username: c.Username, Email: c.Email, UserID: c.UserID}
}
