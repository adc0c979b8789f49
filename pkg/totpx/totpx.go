// Package totpx wraps pquerna/otp for two-factor enrollment and login:
// secret generation, otpauth provisioning URIs, and code verification with a
// fixed tolerance for clock drift.
package totpx

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	// Period is the TOTP step size in seconds.
	Period = 30
	// Skew is the accepted drift in steps on either side of now, so a code
	// stays valid for roughly 90 seconds in total.
	Skew = 1
	// SecretSize is the secret length in bytes before base32 encoding.
	SecretSize = 20
)

// GenerateSecret returns a fresh base32-encoded TOTP secret (RFC 4648
// alphabet, no padding) with SecretSize bytes of entropy.
func GenerateSecret() (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		// Issuer and account are placeholders; only the secret is kept.
		// Provisioning URIs are built separately so the secret can be
		// persisted before any URI is handed out.
		Issuer:      "authd",
		AccountName: "authd",
		Period:      Period,
		SecretSize:  SecretSize,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", fmt.Errorf("totpx: generate secret: %w", err)
	}
	return key.Secret(), nil
}

// ProvisioningURI builds the otpauth://totp URI an authenticator app enrolls
// from. Deterministic given its inputs.
func ProvisioningURI(accountEmail, secret, issuer string) string {
	v := url.Values{}
	v.Set("secret", secret)
	v.Set("issuer", issuer)
	v.Set("period", strconv.Itoa(Period))
	v.Set("digits", "6")
	v.Set("algorithm", "SHA1")

	return "otpauth://totp/" + url.PathEscape(issuer+":"+accountEmail) + "?" + v.Encode()
}

// Verify reports whether code is valid for secret at the current time,
// accepting one step of drift on either side.
func Verify(code, secret string) bool {
	return VerifyAt(code, secret, time.Now())
}

// VerifyAt is Verify against an explicit clock, for tests.
func VerifyAt(code, secret string, at time.Time) bool {
	ok, err := totp.ValidateCustom(code, secret, at, totp.ValidateOpts{
		Period:    Period,
		Skew:      Skew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}

// Code computes the code for secret at the given time. Used by tests and by
// enrollment verification flows that need a reference code.
func Code(secret string, at time.Time) (string, error) {
	code, err := totp.GenerateCode(secret, at)
	if err != nil {
		return "", fmt.Errorf("totpx: generate code: %w", err)
	}
	return code, nil
}
