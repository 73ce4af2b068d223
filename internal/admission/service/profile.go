package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/openfoyer/foyer/internal/admission/domain"
	"github.com/openfoyer/foyer/internal/admission/store"
	"github.com/openfoyer/foyer/pkg/idx"
	"github.com/openfoyer/foyer/pkg/slogx"
)

var (
	ErrProfileNameTaken   = errors.New("profile name already in use")
	ErrProfileNameMissing = errors.New("profile name is required")
	ErrProfileIsDefault   = errors.New("cannot delete the default profile")
	ErrProfileInUse       = errors.New("profile is referenced by invites")
)

// ProfileInUseError carries the number of referencing invites so the
// administrator can see why the deletion was blocked.
type ProfileInUseError struct {
	InviteCount int64
}

func (e *ProfileInUseError) Error() string {
	return fmt.Sprintf("profile is referenced by %d invite(s)", e.InviteCount)
}

func (e *ProfileInUseError) Unwrap() error { return ErrProfileInUse }

// ProfileService owns profile CRUD and the single-default invariant: once any
// profile exists, exactly one carries the default flag at every observable
// moment.
type ProfileService struct {
	Store store.Store
}

// Create inserts a new profile. The very first profile created becomes the
// default within the same transaction (there must be exactly one default once
// profiles exist); later profiles never start as default.
func (s *ProfileService) Create(
	ctx context.Context,
	name string,
	templateUserRef string,
) (domain.Profile, error) {
	log := slogx.FromContext(ctx)

	if name == "" {
		return domain.Profile{}, ErrProfileNameMissing
	}

	now := time.Now().UTC()
	profile := domain.Profile{
		ID:              idx.New().String(),
		Name:            name,
		TemplateUserRef: templateUserRef,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		count, err := tx.Profiles().CountProfiles(ctx)
		if err != nil {
			return err
		}
		profile.IsDefault = count == 0

		if err := tx.Profiles().CreateProfile(ctx, profile); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrProfileNameTaken
			}
			return err
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrProfileNameTaken) {
			log.Error("failed to create profile", slog.Any("error", err))
		}
		return domain.Profile{}, err
	}

	log.Info("profile created",
		slog.String("profile_id", profile.ID),
		slog.String("name", name),
		slog.Bool("is_default", profile.IsDefault),
	)
	return profile, nil
}

// GetByID returns a single profile.
func (s *ProfileService) GetByID(ctx context.Context, id string) (domain.Profile, error) {
	p, err := s.Store.Profiles().GetProfileByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Profile{}, ErrProfileNotFound
		}
		return domain.Profile{}, err
	}
	return p, nil
}

// List returns all profiles with their computed invite counts.
func (s *ProfileService) List(ctx context.Context) ([]domain.ProfileListing, error) {
	return s.Store.Profiles().ListProfiles(ctx)
}

// Update renames a profile and/or repoints its template user reference.
// A nil pointer leaves the field unchanged; for the template reference an
// empty string clears it.
func (s *ProfileService) Update(
	ctx context.Context,
	id string,
	name *string,
	templateUserRef *string,
) (domain.Profile, error) {
	log := slogx.FromContext(ctx)

	if name != nil && *name == "" {
		return domain.Profile{}, ErrProfileNameMissing
	}

	var updated domain.Profile
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		p, err := tx.Profiles().GetProfileByID(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrProfileNotFound
			}
			return err
		}

		if name != nil {
			p.Name = *name
		}
		if templateUserRef != nil {
			p.TemplateUserRef = *templateUserRef
		}

		if err := tx.Profiles().UpdateProfile(ctx, id, p.Name, p.TemplateUserRef); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrProfileNameTaken
			}
			return err
		}

		updated, err = tx.Profiles().GetProfileByID(ctx, id)
		return err
	})
	if err != nil {
		return domain.Profile{}, err
	}

	log.Debug("profile updated", slog.String("profile_id", id))
	return updated, nil
}

// Delete removes a profile, refusing while it is the default or while any
// invite still references it. Both guards run inside the same transaction as
// the delete so a concurrent invite creation or default swap cannot slip
// between check and act.
func (s *ProfileService) Delete(ctx context.Context, id string) error {
	log := slogx.FromContext(ctx)

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		p, err := tx.Profiles().GetProfileByID(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrProfileNotFound
			}
			return err
		}

		if p.IsDefault {
			log.Warn("attempted to delete default profile",
				slog.String("profile_id", id),
			)
			return ErrProfileIsDefault
		}

		count, err := tx.Invites().CountInvitesByProfile(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			log.Warn("attempted to delete profile with invites",
				slog.String("profile_id", id),
				slog.Int64("invite_count", count),
			)
			return &ProfileInUseError{InviteCount: count}
		}

		return tx.Profiles().DeleteProfile(ctx, id)
	})
	if err != nil {
		return err
	}

	log.Info("profile deleted", slog.String("profile_id", id))
	return nil
}

// SetDefault atomically moves the default flag to the given profile. The swap
// is one transaction around a single all-rows statement, so no reader ever
// observes zero or two defaults and concurrent swaps serialize to a single
// winner.
func (s *ProfileService) SetDefault(ctx context.Context, id string) error {
	log := slogx.FromContext(ctx)

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Profiles().GetProfileByID(ctx, id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrProfileNotFound
			}
			return err
		}
		return tx.Profiles().SetDefaultProfile(ctx, id)
	})
	if err != nil {
		return err
	}

	log.Info("default profile changed", slog.String("profile_id", id))
	return nil
}

// Invites returns the invites bound to one profile, newest first.
func (s *ProfileService) Invites(ctx context.Context, profileID string) ([]domain.Invite, error) {
	if _, err := s.Store.Profiles().GetProfileByID(ctx, profileID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return s.Store.Invites().ListInvitesByProfile(ctx, profileID)
}
