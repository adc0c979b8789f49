package mail

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestActivationMessage(t *testing.T) {
	t.Parallel()

	msg, err := ActivationMessage(
		Recipient{Name: "Alice", Email: "alice@example.com"},
		"https://app.example.com/activate?token=abc",
	)
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", msg.To.Email)
	require.Equal(t, "Activate your account", msg.Subject)
	require.Contains(t, msg.TextBody, "Hi Alice,")
	require.Contains(t, msg.TextBody, "https://app.example.com/activate?token=abc")
}

func TestWelcomeMessage(t *testing.T) {
	t.Parallel()

	msg, err := WelcomeMessage(Recipient{Name: "Bob", Email: "bob@example.com"})
	require.NoError(t, err)
	require.Equal(t, "Welcome!", msg.Subject)
	require.Contains(t, msg.TextBody, "Hi Bob,")
}

func TestPasswordResetMessage(t *testing.T) {
	t.Parallel()

	msg, err := PasswordResetMessage(
		Recipient{Name: "Carol", Email: "carol@example.com"},
		"https://app.example.com/reset?token=xyz",
	)
	require.NoError(t, err)
	require.Equal(t, "Reset your password", msg.Subject)
	require.Contains(t, msg.TextBody, "https://app.example.com/reset?token=xyz")
	require.Contains(t, msg.TextBody, "ignore this email")
}
