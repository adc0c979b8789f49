package totpx

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGenerateSecretShape(t *testing.T) {
	t.Parallel()

	secret, err := GenerateSecret()
	require.NoError(t, err)

	// 20 bytes base32-encode to 32 characters without padding.
	require.Len(t, secret, 32)
	require.NotContains(t, secret, "=")
	require.Equal(t, strings.ToUpper(secret), secret)

	other, err := GenerateSecret()
	require.NoError(t, err)
	require.NotEqual(t, secret, other)
}

func TestProvisioningURI(t *testing.T) {
	t.Parallel()

	uri := ProvisioningURI("alice@x.com", "JBSWY3DPEHPK3PXPJBSWY3DPEHPK3PXP", "authd")

	require.True(t, strings.HasPrefix(uri, "otpauth://totp/authd:alice@x.com?"))

	parsed, err := url.Parse(uri)
	require.NoError(t, err)
	q := parsed.Query()
	require.Equal(t, "JBSWY3DPEHPK3PXPJBSWY3DPEHPK3PXP", q.Get("secret"))
	require.Equal(t, "authd", q.Get("issuer"))
	require.Equal(t, "30", q.Get("period"))
	require.Equal(t, "6", q.Get("digits"))
	require.Equal(t, "SHA1", q.Get("algorithm"))

	// Deterministic given identical inputs.
	require.Equal(t, uri, ProvisioningURI("alice@x.com", "JBSWY3DPEHPK3PXPJBSWY3DPEHPK3PXP", "authd"))
}

func TestVerifyToleratesOneStepOfDrift(t *testing.T) {
	t.Parallel()

	secret, err := GenerateSecret()
	require.NoError(t, err)

	// Fixed step-aligned instant so drift offsets land in known steps.
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for _, offset := range []time.Duration{0, -30 * time.Second, 30 * time.Second} {
		code, err := Code(secret, now.Add(offset))
		require.NoError(t, err)
		require.True(t, VerifyAt(code, secret, now), "code generated at now%+v must verify", offset)
	}

	for _, offset := range []time.Duration{-61 * time.Second, 61 * time.Second} {
		code, err := Code(secret, now.Add(offset))
		require.NoError(t, err)
		require.False(t, VerifyAt(code, secret, now), "code generated at now%+v must not verify", offset)
	}
}

func TestVerifyRejectsWrongCode(t *testing.T) {
	t.Parallel()

	secret, err := GenerateSecret()
	require.NoError(t, err)

	require.False(t, Verify("000000", secret))
	require.False(t, Verify("", secret))
	require.False(t, Verify("abcdef", secret))
}
