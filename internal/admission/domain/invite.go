package domain

import "time"

// InvalidReason explains why an invite is not redeemable. Validity is always
// derived from ExpiresAt/MaxUses/UsageCount at read time; there is no stored
// status column to drift out of sync.
type InvalidReason string

const (
	ReasonExpired        InvalidReason = "expired"
	ReasonMaxUsesReached InvalidReason = "max_uses_reached"
)

// Invite is a redeemable code gating registration, bound to a Profile.
type Invite struct {
	ID   string
	Code string

	// ProfileID names the profile the invite grants. Immutable after creation.
	ProfileID string

	// CreatedBy is the subject of the administrator that minted the invite.
	CreatedBy string

	// ExpiresAt is nil for invites that never expire.
	ExpiresAt *time.Time

	// MaxUses is nil for unlimited invites. When set it is always positive
	// and UsageCount never exceeds it.
	MaxUses    *int64
	UsageCount int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Expired reports whether the invite's expiry has passed at the given time.
func (i Invite) Expired(now time.Time) bool {
	return i.ExpiresAt != nil && i.ExpiresAt.Before(now)
}

// Exhausted reports whether the invite's usage limit has been reached.
func (i Invite) Exhausted() bool {
	return i.MaxUses != nil && i.UsageCount >= *i.MaxUses
}

// Validity derives the invite's state. Expiry is checked before the usage
// limit, so an invite that is both expired and exhausted reports expired.
func (i Invite) Validity(now time.Time) (valid bool, reason InvalidReason) {
	switch {
	case i.Expired(now):
		return false, ReasonExpired
	case i.Exhausted():
		return false, ReasonMaxUsesReached
	default:
		return true, ""
	}
}

// InviteListing is an invite joined with its profile's display name, as shown
// in the administrator's invite list.
type InviteListing struct {
	Invite

	ProfileName string
}

// FieldChange is a tri-state patch value: not Set means leave unchanged, Set
// with a nil Value means clear, Set with a non-nil Value means overwrite.
type FieldChange[T any] struct {
	Set   bool
	Value *T
}

// InviteChanges is the patch applied by InviteService.Update. Code and
// ProfileID are deliberately absent; they are immutable.
type InviteChanges struct {
	ExpiresAt FieldChange[time.Time]
	MaxUses   FieldChange[int64]
}
