package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("Str0ng!Pass1")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))

	require.NoError(t, VerifyPassword("Str0ng!Pass1", hash))
	require.ErrorIs(t, VerifyPassword("wrong-password", hash), ErrPasswordMismatch)
}

func TestHashPasswordIsSalted(t *testing.T) {
	t.Parallel()

	first, err := HashPassword("Str0ng!Pass1")
	require.NoError(t, err)
	second, err := HashPassword("Str0ng!Pass1")
	require.NoError(t, err)

	// Distinct salts produce distinct encodings, both still verify.
	require.NotEqual(t, first, second)
	require.NoError(t, VerifyPassword("Str0ng!Pass1", first))
	require.NoError(t, VerifyPassword("Str0ng!Pass1", second))
}

func TestVerifyPasswordRejectsMalformedHashes(t *testing.T) {
	t.Parallel()

	for _, bad := range []string{
		"",
		"plainhash",
		"$bcrypt$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=18$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=19456,t=2,p=1$!!!$aGFzaA",
	} {
		err := VerifyPassword("whatever", bad)
		require.Error(t, err)
		require.NotErrorIs(t, err, ErrPasswordMismatch)
	}
}

func TestValidatePassword(t *testing.T) {
	t.Parallel()

	t.Run("accepts a strong password", func(t *testing.T) {
		res := ValidatePassword("Str0ng!Pass1", "alice", "alice@x.com")
		require.True(t, res.IsValid)
		require.Empty(t, res.Errors)
	})

	t.Run("collects every violated rule in order", func(t *testing.T) {
		res := ValidatePassword("abc", "", "")
		require.False(t, res.IsValid)
		require.Equal(t, []string{
			"Password must be at least 8 characters long",
			"Password must contain at least one uppercase letter",
			"Password must contain at least one digit",
			"Password must contain at least one special character",
		}, res.Errors)
	})

	t.Run("rejects password equal to username case-insensitively", func(t *testing.T) {
		res := ValidatePassword("ALICE", "alice", "alice@x.com")
		require.False(t, res.IsValid)
		require.Contains(t, res.Errors, "Password is too similar to the username")
	})

	t.Run("rejects password containing the email local part", func(t *testing.T) {
		res := ValidatePassword("xBobby42!x", "carol", "bobby42@example.org")
		require.False(t, res.IsValid)
		require.Contains(t, res.Errors, "Password is too similar to the email address")
	})

	t.Run("skips similarity checks without account context", func(t *testing.T) {
		res := ValidatePassword("Alice!234", "", "")
		require.True(t, res.IsValid)
	})
}
