package domain

import "time"

// User is the identity record. Username and Email are globally unique;
// Username is immutable after creation. IsActive only ever moves false to
// true; there is no deactivation path. TOTPSecret is non-nil exactly while
// Is2FAEnabled is set.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string // argon2id PHC string, never the plaintext
	IsActive     bool
	Is2FAEnabled bool
	TOTPSecret   *string // base32-encoded, nil unless 2FA is enabled
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Public returns the externally visible fields of the user.
func (u User) Public() PublicUser {
	return PublicUser{Username: u.Username, Email: u.Email}
}

// PublicUser is what API responses expose about an account.
type PublicUser struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Profile is the companion record created alongside every user. The store
// creates it explicitly in the same transaction as the user row.
type Profile struct {
	ID        string
	UserID    string
	Bio       string
	AvatarURL string
	CreatedAt time.Time
	UpdatedAt time.Time
}
