package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/sableforge/authd/internal/auth/domain"
	"github.com/sableforge/authd/internal/auth/store"
)

const userColumns = `id, username, email, password_hash, is_active, is_2fa_enabled, totp_secret, created_at, updated_at`

type usersRepo struct {
	db dbtx
}

func (r *usersRepo) scanUser(row *sql.Row) (domain.User, error) {
	var u domain.User
	var secret sql.NullString
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.IsActive,
		&u.Is2FAEnabled,
		&secret,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.TOTPSecret = mapNullString(secret)
	return u, nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password_hash, is_active, is_2fa_enabled, totp_secret, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.IsActive, u.Is2FAEnabled,
		mapOptionalString(u.TOTPSecret), now, now,
	)
	return mapConstraint(err)
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username))
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

// ActivateUser is a guarded single-statement toggle: the WHERE clause makes
// concurrent activations race-safe without SELECT-then-UPDATE.
func (r *usersRepo) ActivateUser(ctx context.Context, username string) (domain.User, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET is_active = 1, updated_at = ?
		WHERE username = ? AND is_active = 0`,
		time.Now().UTC(), username,
	)
	if err != nil {
		return domain.User{}, err
	}
	if err := r.requireOneRow(ctx, res, username); err != nil {
		return domain.User{}, err
	}
	return r.GetUserByUsername(ctx, username)
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, email, newHash string) (domain.User, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET password_hash = ?, updated_at = ?
		WHERE email = ?`,
		newHash, time.Now().UTC(), email,
	)
	if err != nil {
		return domain.User{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.User{}, err
	}
	if n == 0 {
		return domain.User{}, store.ErrNotFound
	}
	return r.GetUserByEmail(ctx, email)
}

func (r *usersRepo) Enable2FA(ctx context.Context, username, secret string) (domain.User, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET is_2fa_enabled = 1, totp_secret = ?, updated_at = ?
		WHERE username = ? AND is_2fa_enabled = 0`,
		secret, time.Now().UTC(), username,
	)
	if err != nil {
		return domain.User{}, err
	}
	if err := r.requireOneRow(ctx, res, username); err != nil {
		return domain.User{}, err
	}
	return r.GetUserByUsername(ctx, username)
}

func (r *usersRepo) Disable2FA(ctx context.Context, username string) (domain.User, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET is_2fa_enabled = 0, totp_secret = NULL, updated_at = ?
		WHERE username = ? AND is_2fa_enabled = 1`,
		time.Now().UTC(), username,
	)
	if err != nil {
		return domain.User{}, err
	}
	if err := r.requireOneRow(ctx, res, username); err != nil {
		return domain.User{}, err
	}
	return r.GetUserByUsername(ctx, username)
}

// requireOneRow distinguishes "guard did not match" from "no such user"
// after a guarded UPDATE touched zero rows.
func (r *usersRepo) requireOneRow(ctx context.Context, res sql.Result, username string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	if _, err := r.GetUserByUsername(ctx, username); err != nil {
		return err // store.ErrNotFound
	}
	return store.ErrNoChange
}
