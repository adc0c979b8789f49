package cryptox

import (
	"strings"
	"unicode"
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

// PolicyResult reports the outcome of a strength check. Errors holds one
// human-readable message per violated rule, in check order.
type PolicyResult struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors"`
}

// ValidatePassword checks password against the strength policy: minimum
// length, character composition, and trivial similarity to the username or
// the local part of the email. Similarity checks are skipped when username
// or email are empty, so the policy can run without account context.
// It never fails hard; all violations are reported together.
func ValidatePassword(password, username, email string) PolicyResult {
	var errs []string

	if len(password) < MinPasswordLength {
		errs = append(errs, "Password must be at least 8 characters long")
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}
	if !hasUpper {
		errs = append(errs, "Password must contain at least one uppercase letter")
	}
	if !hasLower {
		errs = append(errs, "Password must contain at least one lowercase letter")
	}
	if !hasDigit {
		errs = append(errs, "Password must contain at least one digit")
	}
	if !hasSpecial {
		errs = append(errs, "Password must contain at least one special character")
	}

	lowered := strings.ToLower(password)
	if username != "" && strings.Contains(lowered, strings.ToLower(username)) {
		errs = append(errs, "Password is too similar to the username")
	}
	if email != "" {
		local, _, _ := strings.Cut(email, "@")
		if local != "" && strings.Contains(lowered, strings.ToLower(local)) {
			errs = append(errs, "Password is too similar to the email address")
		}
	}

	return PolicyResult{IsValid: len(errs) == 0, Errors: errs}
}
