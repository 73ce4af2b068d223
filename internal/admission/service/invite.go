package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/openfoyer/foyer/internal/admission/domain"
	"github.com/openfoyer/foyer/internal/admission/store"
	"github.com/openfoyer/foyer/pkg/cryptox"
	"github.com/openfoyer/foyer/pkg/idx"
	"github.com/openfoyer/foyer/pkg/slogx"
)

var (
	ErrInviteNotFound  = errors.New("invite not found")
	ErrProfileNotFound = errors.New("profile not found")
	ErrMissingCreator  = errors.New("invite creation requires an authenticated administrator")
	ErrInvalidMaxUses  = errors.New("max uses must be a positive integer")
	ErrLimitBelowUsage = errors.New("max uses cannot be lowered below the current usage count")
	ErrInviteExpired   = errors.New("invite has expired")
	ErrInviteExhausted = errors.New("invite has reached its usage limit")
	ErrCodeCollision   = errors.New("could not generate a unique invite code")
)

// codeGenAttempts bounds the retry loop on a code collision at insert time.
// With 128-bit codes a single collision is already extraordinary; hitting the
// bound means something is wrong with the entropy source, not bad luck.
const codeGenAttempts = 3

// InviteService owns the invite lifecycle: creation, listing, verification,
// redemption, update and deletion. It holds no state between calls; every
// operation re-reads the store.
type InviteService struct {
	Store store.Store
}

// Verification is the outcome of a read-only validity check.
type Verification struct {
	Valid   bool
	Reason  domain.InvalidReason
	Profile domain.Profile
}

// Create mints a new invite bound to a profile. createdBy must be the subject
// of an authenticated administrator; there is no fallback identity.
func (s *InviteService) Create(
	ctx context.Context,
	createdBy string,
	profileID string,
	expiresAt *time.Time,
	maxUses *int64,
) (domain.Invite, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate inputs.
	if createdBy == "" {
		return domain.Invite{}, ErrMissingCreator
	}
	if maxUses != nil && *maxUses <= 0 {
		log.Warn("attempted to create invite with non-positive max uses",
			slog.Int64("max_uses", *maxUses),
		)
		return domain.Invite{}, ErrInvalidMaxUses
	}

	// 2. Validate the profile exists.
	if _, err := s.Store.Profiles().GetProfileByID(ctx, profileID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("attempted to create invite for non-existent profile",
				slog.String("profile_id", profileID),
			)
			return domain.Invite{}, ErrProfileNotFound
		}
		log.Error("failed to fetch profile", slog.Any("error", err))
		return domain.Invite{}, err
	}

	// 3. Generate a code and insert, retrying a bounded number of times if
	// the unique index reports a collision.
	now := time.Now().UTC()
	for attempt := 1; attempt <= codeGenAttempts; attempt++ {
		code, err := cryptox.GenerateToken(cryptox.TokenSize128)
		if err != nil {
			log.Error("failed to generate invite code", slog.Any("error", err))
			return domain.Invite{}, err
		}

		inv := domain.Invite{
			ID:        idx.New().String(),
			Code:      code,
			ProfileID: profileID,
			CreatedBy: createdBy,
			ExpiresAt: expiresAt,
			MaxUses:   maxUses,
			CreatedAt: now,
			UpdatedAt: now,
		}

		err = s.Store.Invites().CreateInvite(ctx, inv)
		if err == nil {
			log.Debug("invite created",
				slog.String("invite_id", inv.ID),
				slog.String("profile_id", profileID),
				slog.String("created_by", createdBy),
			)
			return inv, nil
		}
		if errors.Is(err, store.ErrAlreadyExists) {
			log.Warn("invite code collision, regenerating",
				slog.Int("attempt", attempt),
			)
			continue
		}
		log.Error("failed to create invite", slog.Any("error", err))
		return domain.Invite{}, err
	}

	log.Error("exhausted invite code generation attempts",
		slog.Int("attempts", codeGenAttempts),
	)
	return domain.Invite{}, ErrCodeCollision
}

// List returns every invite with its profile's display name, newest first.
func (s *InviteService) List(ctx context.Context) ([]domain.InviteListing, error) {
	return s.Store.Invites().ListInvites(ctx)
}

// GetByID returns a single invite.
func (s *InviteService) GetByID(ctx context.Context, id string) (domain.Invite, error) {
	inv, err := s.Store.Invites().GetInviteByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Invite{}, ErrInviteNotFound
		}
		return domain.Invite{}, err
	}
	return inv, nil
}

// Verify is the read-only validity check the registration flow runs before
// presenting its form. It never touches usage_count. An unknown code is an
// error; an expired or exhausted code is a normal negative result.
func (s *InviteService) Verify(ctx context.Context, code string) (Verification, error) {
	log := slogx.FromContext(ctx)

	inv, err := s.Store.Invites().GetInviteByCode(ctx, code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Verification{}, ErrInviteNotFound
		}
		log.Error("failed to fetch invite", slog.Any("error", err))
		return Verification{}, err
	}

	if valid, reason := inv.Validity(time.Now().UTC()); !valid {
		return Verification{Valid: false, Reason: reason}, nil
	}

	profile, err := s.Store.Profiles().GetProfileByID(ctx, inv.ProfileID)
	if err != nil {
		log.Error("failed to fetch invite profile", slog.Any("error", err))
		return Verification{}, err
	}

	return Verification{Valid: true, Profile: profile}, nil
}

// Consume redeems an invite: one atomic conditional increment of usage_count.
// The store-level statement only updates a row that is unexpired and under its
// limit, so concurrent redemption bursts cannot overshoot max_uses. When no
// row was updated the invite is re-read to classify the failure.
func (s *InviteService) Consume(ctx context.Context, code string) (domain.Profile, error) {
	log := slogx.FromContext(ctx)
	now := time.Now().UTC()

	ok, err := s.Store.Invites().ConsumeInvite(ctx, code, now)
	if err != nil {
		log.Error("failed to consume invite", slog.Any("error", err))
		return domain.Profile{}, err
	}

	if !ok {
		inv, err := s.Store.Invites().GetInviteByCode(ctx, code)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				log.Warn("redemption attempted with unknown code")
				return domain.Profile{}, ErrInviteNotFound
			}
			return domain.Profile{}, err
		}
		if inv.Expired(now) {
			log.Warn("redemption attempted with expired invite",
				slog.String("invite_id", inv.ID),
			)
			return domain.Profile{}, ErrInviteExpired
		}
		log.Warn("redemption attempted with exhausted invite",
			slog.String("invite_id", inv.ID),
			slog.Int64("usage_count", inv.UsageCount),
		)
		return domain.Profile{}, ErrInviteExhausted
	}

	// The increment succeeded; return the granted profile so the caller can
	// provision the account from its template.
	inv, err := s.Store.Invites().GetInviteByCode(ctx, code)
	if err != nil {
		log.Error("failed to re-read consumed invite", slog.Any("error", err))
		return domain.Profile{}, err
	}
	profile, err := s.Store.Profiles().GetProfileByID(ctx, inv.ProfileID)
	if err != nil {
		log.Error("failed to fetch invite profile", slog.Any("error", err))
		return domain.Profile{}, err
	}

	log.Info("invite consumed",
		slog.String("invite_id", inv.ID),
		slog.String("profile_id", profile.ID),
		slog.Int64("usage_count", inv.UsageCount),
	)
	return profile, nil
}

// Update applies a tri-state patch to an invite's expiry and usage limit.
// Omitted fields are untouched, explicit nulls clear. The code and profile
// binding are immutable. Lowering max_uses below the already-recorded usage is
// rejected so usage_count <= max_uses stays a hard invariant.
func (s *InviteService) Update(
	ctx context.Context,
	id string,
	changes domain.InviteChanges,
) (domain.Invite, error) {
	log := slogx.FromContext(ctx)

	var updated domain.Invite
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		inv, err := tx.Invites().GetInviteByID(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInviteNotFound
			}
			return err
		}

		if changes.ExpiresAt.Set {
			inv.ExpiresAt = changes.ExpiresAt.Value
		}
		if changes.MaxUses.Set {
			if changes.MaxUses.Value != nil {
				if *changes.MaxUses.Value <= 0 {
					return ErrInvalidMaxUses
				}
				if *changes.MaxUses.Value < inv.UsageCount {
					log.Warn("rejected max uses below current usage",
						slog.String("invite_id", id),
						slog.Int64("max_uses", *changes.MaxUses.Value),
						slog.Int64("usage_count", inv.UsageCount),
					)
					return ErrLimitBelowUsage
				}
			}
			inv.MaxUses = changes.MaxUses.Value
		}

		if err := tx.Invites().UpdateInviteLimits(ctx, id, inv.ExpiresAt, inv.MaxUses); err != nil {
			return err
		}

		updated, err = tx.Invites().GetInviteByID(ctx, id)
		return err
	})
	if err != nil {
		return domain.Invite{}, err
	}

	log.Debug("invite updated", slog.String("invite_id", id))
	return updated, nil
}

// Delete removes an invite. Invites are leaves; nothing references them, so
// deletion is unconditional once authorized.
func (s *InviteService) Delete(ctx context.Context, id string) error {
	err := s.Store.Invites().DeleteInvite(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInviteNotFound
		}
		return err
	}

	slogx.FromContext(ctx).Info("invite deleted", slog.String("invite_id", id))
	return nil
}
