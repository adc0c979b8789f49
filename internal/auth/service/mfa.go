package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sableforge/authd/internal/auth/domain"
	"github.com/sableforge/authd/internal/auth/store"
	"github.com/sableforge/authd/pkg/totpx"
)

// MFAService manages TOTP enrollment. The enable/disable toggles are backed
// by guarded single-statement updates, so when two requests race, exactly
// one succeeds and the other gets a conflict.
type MFAService struct {
	Store  store.Store
	Issuer string // issuer label shown in authenticator apps
}

// Enable2FA generates a fresh TOTP secret and enables 2FA atomically. The
// secret and provisioning URI are returned exactly once; after this call the
// secret is never re-exposed.
func (s *MFAService) Enable2FA(ctx context.Context, username string) (domain.MFAEnrollment, error) {
	secret, err := totpx.GenerateSecret()
	if err != nil {
		return domain.MFAEnrollment{}, fmt.Errorf("generate totp secret: %w", err)
	}

	user, err := s.Store.Users().Enable2FA(ctx, username, secret)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNoChange):
			return domain.MFAEnrollment{}, domain.Conflictf("2FA is already enabled for this user.")
		case errors.Is(err, store.ErrNotFound):
			return domain.MFAEnrollment{}, domain.NotFoundf("User with username '%s' does not exist", username)
		}
		return domain.MFAEnrollment{}, fmt.Errorf("enable 2fa: %w", err)
	}

	return domain.MFAEnrollment{
		Secret:          secret,
		ProvisioningURI: totpx.ProvisioningURI(user.Email, secret, s.Issuer),
	}, nil
}

// Disable2FA clears the flag and secret atomically.
func (s *MFAService) Disable2FA(ctx context.Context, username string) error {
	if _, err := s.Store.Users().Disable2FA(ctx, username); err != nil {
		switch {
		case errors.Is(err, store.ErrNoChange):
			return domain.Conflictf("2FA is not enabled for this user.")
		case errors.Is(err, store.ErrNotFound):
			return domain.NotFoundf("User with username '%s' does not exist", username)
		}
		return fmt.Errorf("disable 2fa: %w", err)
	}
	return nil
}
