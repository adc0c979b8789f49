package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sableforge/authd/internal/auth/domain"
	"github.com/sableforge/authd/internal/auth/store"
)

const userColumns = `id, username, email, password_hash, is_active, is_2fa_enabled, totp_secret, created_at, updated_at`

type usersRepo struct {
	db dbtx
}

func (r *usersRepo) scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.IsActive,
		&u.Is2FAEnabled,
		&u.TOTPSecret,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	now := time.Now().UTC()
	_, err := r.db.Exec(ctx, `
		INSERT INTO users (id, username, email, password_hash, is_active, is_2fa_enabled, totp_secret, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.IsActive, u.Is2FAEnabled,
		u.TOTPSecret, now, now,
	)
	return mapConstraint(err)
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return r.scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return r.scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// ActivateUser is a guarded single-statement toggle: the WHERE clause makes
// concurrent activations race-safe without SELECT-then-UPDATE.
func (r *usersRepo) ActivateUser(ctx context.Context, username string) (domain.User, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE users SET is_active = TRUE, updated_at = $1
		WHERE username = $2 AND is_active = FALSE`,
		time.Now().UTC(), username,
	)
	if err != nil {
		return domain.User{}, err
	}
	if err := r.requireOneRow(ctx, tag, username); err != nil {
		return domain.User{}, err
	}
	return r.GetUserByUsername(ctx, username)
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, email, newHash string) (domain.User, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE users SET password_hash = $1, updated_at = $2
		WHERE email = $3`,
		newHash, time.Now().UTC(), email,
	)
	if err != nil {
		return domain.User{}, err
	}
	if tag.RowsAffected() == 0 {
		return domain.User{}, store.ErrNotFound
	}
	return r.GetUserByEmail(ctx, email)
}

func (r *usersRepo) Enable2FA(ctx context.Context, username, secret string) (domain.User, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE users SET is_2fa_enabled = TRUE, totp_secret = $1, updated_at = $2
		WHERE username = $3 AND is_2fa_enabled = FALSE`,
		secret, time.Now().UTC(), username,
	)
	if err != nil {
		return domain.User{}, err
	}
	if err := r.requireOneRow(ctx, tag, username); err != nil {
		return domain.User{}, err
	}
	return r.GetUserByUsername(ctx, username)
}

func (r *usersRepo) Disable2FA(ctx context.Context, username string) (domain.User, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE users SET is_2fa_enabled = FALSE, totp_secret = NULL, updated_at = $1
		WHERE username = $2 AND is_2fa_enabled = TRUE`,
		time.Now().UTC(), username,
	)
	if err != nil {
		return domain.User{}, err
	}
	if err := r.requireOneRow(ctx, tag, username); err != nil {
		return domain.User{}, err
	}
	return r.GetUserByUsername(ctx, username)
}

// requireOneRow distinguishes "guard did not match" from "no such user"
// after a guarded UPDATE touched zero rows.
func (r *usersRepo) requireOneRow(ctx context.Context, tag pgconn.CommandTag, username string) error {
	if tag.RowsAffected() > 0 {
		return nil
	}
	if _, err := r.GetUserByUsername(ctx, username); err != nil {
		return err // store.ErrNotFound
	}
	return store.ErrNoChange
}
