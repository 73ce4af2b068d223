package store

import (
	"context"
	"errors"
	"time"

	"github.com/openfoyer/foyer/internal/admission/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite today)
// implement this. Sub-repositories are exposed as methods so transactional
// code uses the same interface as non-transactional code.
type Store interface {
	Invites() Invites
	Profiles() Profiles

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed. This is the
	// recommended way to run multi-statement invariant-bearing operations
	// (profile deletion guards, the default swap).
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It exposes the same repos plus Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Invites interface {
	// CreateInvite inserts a new invite with usage_count = 0. Returns
	// ErrAlreadyExists when the generated code collides with an existing one.
	CreateInvite(ctx context.Context, inv domain.Invite) error

	// GetInviteByID returns an invite by id.
	GetInviteByID(ctx context.Context, id string) (domain.Invite, error)

	// GetInviteByCode returns an invite by its redemption code.
	GetInviteByCode(ctx context.Context, code string) (domain.Invite, error)

	// ListInvites returns all invites joined with their profile name, newest
	// first.
	ListInvites(ctx context.Context) ([]domain.InviteListing, error)

	// ListInvitesByProfile returns the invites bound to one profile, newest
	// first.
	ListInvitesByProfile(ctx context.Context, profileID string) ([]domain.Invite, error)

	// ConsumeInvite atomically increments usage_count by one, but only while
	// the invite is unexpired at now and under its usage limit. It reports
	// whether a row was updated; the increment and the limit check are a
	// single conditional statement, so concurrent consumers can never push
	// usage_count past max_uses.
	ConsumeInvite(ctx context.Context, code string, now time.Time) (bool, error)

	// UpdateInviteLimits overwrites expires_at and max_uses. Nil clears the
	// corresponding column.
	UpdateInviteLimits(ctx context.Context, id string, expiresAt *time.Time, maxUses *int64) error

	// DeleteInvite removes an invite. ErrNotFound when absent.
	DeleteInvite(ctx context.Context, id string) error

	// CountInvitesByProfile counts invites referencing a profile.
	CountInvitesByProfile(ctx context.Context, profileID string) (int64, error)
}

type Profiles interface {
	// CreateProfile inserts a new profile. Returns ErrAlreadyExists on a
	// duplicate name.
	CreateProfile(ctx context.Context, p domain.Profile) error

	// GetProfileByID returns a profile by id.
	GetProfileByID(ctx context.Context, id string) (domain.Profile, error)

	// ListProfiles returns all profiles with their computed invite counts,
	// ordered by name.
	ListProfiles(ctx context.Context) ([]domain.ProfileListing, error)

	// UpdateProfile overwrites name and template_user_ref. Returns
	// ErrAlreadyExists when the new name collides, ErrNotFound when absent.
	UpdateProfile(ctx context.Context, id, name, templateUserRef string) error

	// SetDefaultProfile marks exactly the given profile as default in a
	// single statement over all rows. Run it inside a transaction after an
	// existence check.
	SetDefaultProfile(ctx context.Context, id string) error

	// DeleteProfile removes a profile. ErrNotFound when absent. Invariant
	// guards (default, referencing invites) belong to the service layer,
	// inside one transaction.
	DeleteProfile(ctx context.Context, id string) error

	// CountProfiles returns the total number of profiles.
	CountProfiles(ctx context.Context) (int64, error)
}
