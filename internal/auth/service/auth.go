package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sableforge/authd/internal/auth/domain"
	"github.com/sableforge/authd/internal/auth/store"
	"github.com/sableforge/authd/pkg/cryptox"
	"github.com/sableforge/authd/pkg/idx"
	"github.com/sableforge/authd/pkg/jwtx"
	"github.com/sableforge/authd/pkg/totpx"
)

// AuthService drives the account lifecycle: sign-up, activation, login with
// optional TOTP, token refresh and password reset. Login failures for an
// unknown user, an inactive user and a wrong password are deliberately
// indistinguishable.
type AuthService struct {
	Store    store.Store
	Codec    *jwtx.Codec
	Notifier Notifier
}

// SignUpRequest carries the sign-up form. Password must equal
// PasswordConfirm exactly.
type SignUpRequest struct {
	Username        string
	Email           string
	Password        string
	PasswordConfirm string
}

// errIncorrectCredentials is the single message for every login-path
// failure, so callers cannot probe which accounts exist or are active.
func errIncorrectCredentials() *domain.Error {
	return domain.Unauthorizedf("Incorrect username or password")
}

// SignUp creates an inactive account with its empty companion profile in one
// transaction, then issues an activation token and dispatches the activation
// email.
func (s *AuthService) SignUp(ctx context.Context, req SignUpRequest) (domain.ActivationGrant, error) {
	if err := checkPassword(req.Password, req.PasswordConfirm, req.Username, req.Email); err != nil {
		return domain.ActivationGrant{}, err
	}

	hash, err := cryptox.HashPassword(req.Password)
	if err != nil {
		return domain.ActivationGrant{}, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		ID:           idx.New().String(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			return err
		}
		return tx.Profiles().CreateProfile(ctx, domain.Profile{
			ID:     idx.New().String(),
			UserID: user.ID,
		})
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.ActivationGrant{}, domain.Conflictf("User already exist")
		}
		return domain.ActivationGrant{}, fmt.Errorf("create user: %w", err)
	}

	grant, err := s.activationGrant(user, jwtx.KindActivation)
	if err != nil {
		return domain.ActivationGrant{}, err
	}

	s.Notifier.ActivationRequested(ctx, grant.User, grant.Token.Token)
	return grant, nil
}

// SendActivationEmail reissues a fresh activation token for an inactive
// account. Tokens are stateless, so previously issued ones stay valid until
// they expire.
func (s *AuthService) SendActivationEmail(ctx context.Context, email string) (domain.ActivationGrant, error) {
	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.ActivationGrant{}, domain.NotFoundf("Incorrect username or password")
		}
		return domain.ActivationGrant{}, fmt.Errorf("get user by email: %w", err)
	}

	if user.IsActive {
		return domain.ActivationGrant{}, domain.AppErrorf("User account is already active.")
	}

	grant, err := s.activationGrant(user, jwtx.KindActivation)
	if err != nil {
		return domain.ActivationGrant{}, err
	}

	s.Notifier.ActivationRequested(ctx, grant.User, grant.Token.Token)
	return grant, nil
}

// ActivateAccount flips the account active and dispatches the welcome email.
func (s *AuthService) ActivateAccount(ctx context.Context, token string) (domain.PublicUser, error) {
	claims, err := s.decode(token)
	if err != nil {
		return domain.PublicUser{}, err
	}

	user, err := s.Store.Users().ActivateUser(ctx, claims.Username)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return domain.PublicUser{}, domain.NotFoundf("User with username '%s' does not exist", claims.Username)
		case errors.Is(err, store.ErrNoChange):
			return domain.PublicUser{}, domain.AppErrorf("User account is already active.")
		}
		return domain.PublicUser{}, fmt.Errorf("activate user: %w", err)
	}

	s.Notifier.AccountActivated(ctx, user.Public())
	return user.Public(), nil
}

// LogIn checks the credentials. Accounts with 2FA enabled get a short-lived
// temp token instead of the access/refresh pair; the pair is only issued
// once LogIn2FA succeeds.
func (s *AuthService) LogIn(ctx context.Context, username, password string) (domain.LoginResult, error) {
	user, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.LoginResult{}, errIncorrectCredentials()
		}
		return domain.LoginResult{}, fmt.Errorf("get user by username: %w", err)
	}

	if !user.IsActive {
		return domain.LoginResult{}, errIncorrectCredentials()
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return domain.LoginResult{}, errIncorrectCredentials()
		}
		return domain.LoginResult{}, fmt.Errorf("verify password: %w", err)
	}

	if user.Is2FAEnabled {
		token, expiresAt, err := s.Codec.Issue(jwtx.KindTemp2FA, identity(user))
		if err != nil {
			return domain.LoginResult{}, fmt.Errorf("issue temp 2fa token: %w", err)
		}
		return domain.LoginResult{
			User:        user.Public(),
			Requires2FA: true,
			Temp2FA:     &domain.IssuedToken{Token: token, ExpiresAt: expiresAt},
		}, nil
	}

	pair, err := s.tokenPair(user)
	if err != nil {
		return domain.LoginResult{}, err
	}
	return domain.LoginResult{User: user.Public(), Tokens: &pair}, nil
}

// LogIn2FA completes a two-factor login: the temp token proves the password
// check passed, the TOTP code proves possession of the enrolled device.
func (s *AuthService) LogIn2FA(ctx context.Context, token, totpCode string) (domain.LoginResult, error) {
	claims, err := s.decode(token)
	if err != nil {
		return domain.LoginResult{}, err
	}

	if !claims.MFAPending {
		return domain.LoginResult{}, domain.Unauthorizedf("2FA is not pending for this token")
	}

	user, err := s.Store.Users().GetUserByUsername(ctx, claims.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.LoginResult{}, errIncorrectCredentials()
		}
		return domain.LoginResult{}, fmt.Errorf("get user by username: %w", err)
	}

	if !user.Is2FAEnabled {
		return domain.LoginResult{}, domain.Unauthorizedf("2FA is not enabled for this user")
	}

	if !totpx.Verify(totpCode, *user.TOTPSecret) {
		return domain.LoginResult{}, domain.Unauthorizedf("Invalid TOTP token")
	}

	pair, err := s.tokenPair(user)
	if err != nil {
		return domain.LoginResult{}, err
	}
	return domain.LoginResult{User: user.Public(), Requires2FA: true, Tokens: &pair}, nil
}

// AccessToken mints a fresh access token from any valid token's identity.
// No claim distinguishes a refresh token from the other kinds, so any
// unexpired token is accepted here.
func (s *AuthService) AccessToken(ctx context.Context, token string) (domain.IssuedToken, error) {
	claims, err := s.decode(token)
	if err != nil {
		return domain.IssuedToken{}, err
	}

	access, expiresAt, err := s.Codec.Issue(jwtx.KindAccess, claims.Identity())
	if err != nil {
		return domain.IssuedToken{}, fmt.Errorf("issue access token: %w", err)
	}
	return domain.IssuedToken{Token: access, ExpiresAt: expiresAt}, nil
}

// RequestPasswordReset issues a reset token for the account behind email and
// dispatches the reset email.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (domain.ActivationGrant, error) {
	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.ActivationGrant{}, domain.NotFoundf("Incorrect username or password")
		}
		return domain.ActivationGrant{}, fmt.Errorf("get user by email: %w", err)
	}

	grant, err := s.activationGrant(user, jwtx.KindPasswordReset)
	if err != nil {
		return domain.ActivationGrant{}, err
	}

	s.Notifier.PasswordResetRequested(ctx, grant.User, grant.Token.Token)
	return grant, nil
}

// PasswordReset replaces the password for the account named in the token.
func (s *AuthService) PasswordReset(ctx context.Context, token, password, passwordConfirm string) (domain.PublicUser, error) {
	claims, err := s.decode(token)
	if err != nil {
		return domain.PublicUser{}, err
	}

	if err := checkPassword(password, passwordConfirm, claims.Username, claims.Email); err != nil {
		return domain.PublicUser{}, err
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.PublicUser{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.Store.Users().UpdatePasswordHash(ctx, claims.Email, hash)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.PublicUser{}, domain.NotFoundf("Incorrect username or password")
		}
		return domain.PublicUser{}, fmt.Errorf("update password: %w", err)
	}

	return user.Public(), nil
}

// checkPassword enforces confirmation equality and the strength policy.
func checkPassword(password, confirm, username, email string) error {
	if password != confirm {
		return domain.AppErrorf("Passwords do not match")
	}
	if result := cryptox.ValidatePassword(password, username, email); !result.IsValid {
		return domain.AppErrorf("%s", result.Errors[0])
	}
	return nil
}

// decode maps token failures onto the two fixed unauthorized messages.
func (s *AuthService) decode(token string) (jwtx.Claims, error) {
	claims, err := s.Codec.Decode(token)
	if err != nil {
		if errors.Is(err, jwtx.ErrExpired) {
			return jwtx.Claims{}, domain.Unauthorizedf("Token has expired")
		}
		return jwtx.Claims{}, domain.Unauthorizedf("Invalid token")
	}
	return claims, nil
}

func (s *AuthService) activationGrant(user domain.User, kind jwtx.Kind) (domain.ActivationGrant, error) {
	token, expiresAt, err := s.Codec.Issue(kind, identity(user))
	if err != nil {
		return domain.ActivationGrant{}, fmt.Errorf("issue %s token: %w", kind, err)
	}
	return domain.ActivationGrant{
		User:  user.Public(),
		Token: domain.IssuedToken{Token: token, ExpiresAt: expiresAt},
	}, nil
}

func (s *AuthService) tokenPair(user domain.User) (domain.TokenPair, error) {
	id := identity(user)

	access, accessExp, err := s.Codec.Issue(jwtx.KindAccess, id)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("issue access token: %w", err)
	}
	refresh, refreshExp, err := s.Codec.Issue(jwtx.KindRefresh, id)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("issue refresh token: %w", err)
	}

	return domain.TokenPair{
		AccessToken:  domain.IssuedToken{Token: access, ExpiresAt: accessExp},
		RefreshToken: domain.IssuedToken{Token: refresh, ExpiresAt: refreshExp},
	}, nil
}

func identity(user domain.User) jwtx.Identity {
	return jwtx.Identity{Username: user.Username, Email: user.Email, UserID: user.ID}
}
