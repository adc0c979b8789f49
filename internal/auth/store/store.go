package store

import (
	"context"
	"errors"

	"github.com/sableforge/authd/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
	// ErrNoChange reports a guarded state toggle that matched no row because
	// the row was already in the target state. Callers map it to a conflict.
	ErrNoChange = errors.New("store: no change")
)

// Store is the root data access interface. Concrete drivers (sqlite,
// postgres) implement it. Sub-repositories keep concerns tidy; transactions
// are explicit so multi-step writes stay atomic.
type Store interface {
	Users() Users
	Profiles() Profiles

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store. The
	// caller MUST Commit or Rollback the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn inside a transaction, committing when fn returns nil
	// and rolling back otherwise. Preferred over Tx for most call sites.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases the underlying resources.
	Close() error

	// Ping verifies the database connection is alive.
	Ping(ctx context.Context) error
}

// Tx is a transaction-scoped store.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// Users is the identity repository. Every method is atomic per call; the
// guarded toggles (ActivateUser, Enable2FA, Disable2FA) are single
// read-modify-write statements so concurrent requests for the same user
// cannot both succeed.
type Users interface {
	// CreateUser inserts a new user (id assigned by the caller via ULID).
	// Fails with ErrAlreadyExists when username or email is taken.
	CreateUser(ctx context.Context, u domain.User) error

	GetUserByID(ctx context.Context, id string) (domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// ActivateUser flips is_active to true. Fails with ErrNoChange when the
	// account is already active and ErrNotFound when no such user exists.
	ActivateUser(ctx context.Context, username string) (domain.User, error)

	// UpdatePasswordHash replaces the stored hash for the user with this
	// email and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, email, newHash string) (domain.User, error)

	// Enable2FA sets the 2FA flag and secret together. Fails with
	// ErrNoChange when 2FA is already enabled.
	Enable2FA(ctx context.Context, username, secret string) (domain.User, error)

	// Disable2FA clears the 2FA flag and secret together. Fails with
	// ErrNoChange when 2FA is not enabled.
	Disable2FA(ctx context.Context, username string) (domain.User, error)
}

// Profiles is the companion-record repository.
type Profiles interface {
	// CreateProfile inserts the companion profile row for a user.
	CreateProfile(ctx context.Context, p domain.Profile) error

	GetProfileByUserID(ctx context.Context, userID string) (domain.Profile, error)
}
