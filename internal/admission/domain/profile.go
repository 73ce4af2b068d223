package domain

import "time"

// Profile is a named access template granted by invites. Exactly one profile
// is the default at any time once any profile exists.
type Profile struct {
	ID   string
	Name string

	// TemplateUserRef points at a media-server user whose settings are copied
	// when provisioning a redeemed account. Opaque to this service: stored and
	// returned, never dereferenced.
	TemplateUserRef string

	IsDefault bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProfileListing is a profile joined with the number of invites that
// reference it. The count is computed from the invites table, never stored.
type ProfileListing struct {
	Profile

	InviteCount int64
}
