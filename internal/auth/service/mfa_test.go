package service

import (
	"context"
	"sync"
	"testing"

	"github.com/sableforge/authd/internal/auth/domain"
	"github.com/stretchr/testify/require"
)

func TestEnable2FA(t *testing.T) {
	t.Run("returns secret and provisioning uri once", func(t *testing.T) {
		auth, mfa, _, _ := newTestAuth(t)
		ctx := context.Background()
		signUpAndActivate(t, auth, "alice", "alice@example.com")

		enrollment, err := mfa.Enable2FA(ctx, "alice")
		require.NoError(t, err)
		require.NotEmpty(t, enrollment.Secret)
		require.Contains(t, enrollment.ProvisioningURI, "otpauth://totp/")
		require.Contains(t, enrollment.ProvisioningURI, "alice%40example.com")

		// The stored user carries the same secret the caller saw.
		user, err := auth.Store.Users().GetUserByUsername(ctx, "alice")
		require.NoError(t, err)
		require.True(t, user.Is2FAEnabled)
		require.Equal(t, enrollment.Secret, *user.TOTPSecret)
	})

	t.Run("already enabled conflicts", func(t *testing.T) {
		auth, mfa, _, _ := newTestAuth(t)
		ctx := context.Background()
		signUpAndActivate(t, auth, "alice", "alice@example.com")

		_, err := mfa.Enable2FA(ctx, "alice")
		require.NoError(t, err)

		_, err = mfa.Enable2FA(ctx, "alice")
		requireDomainError(t, err, domain.KindConflict, "2FA is already enabled for this user.")
	})

	t.Run("unknown user", func(t *testing.T) {
		_, mfa, _, _ := newTestAuth(t)

		_, err := mfa.Enable2FA(context.Background(), "nobody")
		de, ok := domain.AsError(err)
		require.True(t, ok)
		require.Equal(t, domain.KindNotFound, de.Kind)
	})

	t.Run("concurrent enables let exactly one win", func(t *testing.T) {
		auth, mfa, _, _ := newTestAuth(t)
		ctx := context.Background()
		signUpAndActivate(t, auth, "alice", "alice@example.com")

		const attempts = 8
		var wg sync.WaitGroup
		results := make([]error, attempts)
		secrets := make([]string, attempts)

		for i := range attempts {
			wg.Add(1)
			go func() {
				defer wg.Done()
				enrollment, err := mfa.Enable2FA(ctx, "alice")
				results[i] = err
				secrets[i] = enrollment.Secret
			}()
		}
		wg.Wait()

		var winner string
		wins := 0
		for i, err := range results {
			if err == nil {
				wins++
				winner = secrets[i]
			} else {
				requireDomainError(t, err, domain.KindConflict, "2FA is already enabled for this user.")
			}
		}
		require.Equal(t, 1, wins)

		// The winner's secret is the one persisted.
		user, err := auth.Store.Users().GetUserByUsername(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, winner, *user.TOTPSecret)
	})
}

func TestDisable2FA(t *testing.T) {
	t.Run("clears flag and secret", func(t *testing.T) {
		auth, mfa, _, _ := newTestAuth(t)
		ctx := context.Background()
		signUpAndActivate(t, auth, "alice", "alice@example.com")

		_, err := mfa.Enable2FA(ctx, "alice")
		require.NoError(t, err)
		require.NoError(t, mfa.Disable2FA(ctx, "alice"))

		user, err := auth.Store.Users().GetUserByUsername(ctx, "alice")
		require.NoError(t, err)
		require.False(t, user.Is2FAEnabled)
		require.Nil(t, user.TOTPSecret)
	})

	t.Run("not enabled conflicts", func(t *testing.T) {
		auth, mfa, _, _ := newTestAuth(t)
		signUpAndActivate(t, auth, "alice", "alice@example.com")

		err := mfa.Disable2FA(context.Background(), "alice")
		requireDomainError(t, err, domain.KindConflict, "2FA is not enabled for this user.")
	})
}
