package jwtx

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var testIdentity = Identity{
	Username: "alice",
	Email:    "alice@x.com",
	UserID:   "01J9ZK3V4N5Q6R7S8T9V0W1X2Y",
}

func testCodec(t *testing.T, now func() time.Time) *Codec {
	t.Helper()

	codec, err := NewCodec(Config{
		Secret: "test-secret",
		Issuer: "authd-test",
		Now:    now,
	})
	require.NoError(t, err)
	return codec
}

func TestNewCodecValidatesConfig(t *testing.T) {
	t.Parallel()

	_, err := NewCodec(Config{})
	require.Error(t, err)

	_, err = NewCodec(Config{Secret: "s", Algorithm: "RS256"})
	require.Error(t, err)

	for _, alg := range []string{"", "HS256", "HS384", "HS512"} {
		_, err := NewCodec(Config{Secret: "s", Algorithm: alg})
		require.NoError(t, err, "algorithm %q", alg)
	}
}

func TestIssueDecodeRoundTripAllKinds(t *testing.T) {
	t.Parallel()

	codec := testCodec(t, nil)

	for _, kind := range []Kind{KindActivation, KindAccess, KindRefresh, KindTemp2FA, KindPasswordReset} {
		t.Run(string(kind), func(t *testing.T) {
			token, expiry, err := codec.Issue(kind, testIdentity)
			require.NoError(t, err)
			require.WithinDuration(t, time.Now().Add(codec.TTL(kind)), expiry, 5*time.Second)

			claims, err := codec.Decode(token)
			require.NoError(t, err)
			require.Equal(t, testIdentity, claims.Identity())
			require.NotNil(t, claims.ExpiresAt)
			require.WithinDuration(t, expiry, claims.ExpiresAt.Time, time.Second)
			require.Equal(t, kind == KindTemp2FA, claims.MFAPending)
		})
	}
}

func TestDefaultLifetimes(t *testing.T) {
	t.Parallel()

	codec := testCodec(t, nil)

	require.Equal(t, 15*time.Minute, codec.TTL(KindActivation))
	require.Equal(t, 30*time.Minute, codec.TTL(KindAccess))
	require.Equal(t, 4*7*24*time.Hour, codec.TTL(KindRefresh))
	require.Equal(t, 5*time.Minute, codec.TTL(KindTemp2FA))
	// Password-reset tokens reuse the activation lifetime.
	require.Equal(t, codec.TTL(KindActivation), codec.TTL(KindPasswordReset))
}

func TestDecodeExpiredToken(t *testing.T) {
	t.Parallel()

	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	codec := testCodec(t, func() time.Time { return clock })

	token, _, err := codec.Issue(KindActivation, testIdentity)
	require.NoError(t, err)

	// Still valid one minute before expiry.
	clock = clock.Add(14 * time.Minute)
	_, err = codec.Decode(token)
	require.NoError(t, err)

	// Expired once the clock passes the 15 minute activation lifetime.
	clock = clock.Add(2 * time.Minute)
	_, err = codec.Decode(token)
	require.ErrorIs(t, err, ErrExpired)
}

func TestDecodeRejectsTamperedSignature(t *testing.T) {
	t.Parallel()

	codec := testCodec(t, nil)
	token, _, err := codec.Issue(KindAccess, testIdentity)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "." + "AAAA" + parts[2][4:]

	_, err = codec.Decode(tampered)
	require.ErrorIs(t, err, ErrInvalid)
}

func TestDecodeRejectsForeignSecret(t *testing.T) {
	t.Parallel()

	codec := testCodec(t, nil)
	other, err := NewCodec(Config{Secret: "other-secret", Issuer: "authd-test"})
	require.NoError(t, err)

	token, _, err := other.Issue(KindAccess, testIdentity)
	require.NoError(t, err)

	_, err = codec.Decode(token)
	require.ErrorIs(t, err, ErrInvalid)
}

func TestDecodeRejectsMissingIdentityClaims(t *testing.T) {
	t.Parallel()

	codec := testCodec(t, nil)

	// A structurally valid token signed with the right secret but lacking
	// the identity claims must not decode.
	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss": "authd-test",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	token, err := raw.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = codec.Decode(token)
	require.ErrorIs(t, err, ErrInvalid)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	t.Parallel()

	codec := testCodec(t, nil)
	for _, bad := range []string{"", "not.a.jwt", "a.b"} {
		_, err := codec.Decode(bad)
		require.ErrorIs(t, err, ErrInvalid)
	}
}
