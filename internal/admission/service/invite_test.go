package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openfoyer/foyer/internal/admission/domain"
)

func TestInviteCreate(t *testing.T) {
	t.Parallel()
	invites, profiles := newTestServices(t)
	ctx := context.Background()
	profile := mustCreateProfile(t, profiles, "standard")

	t.Run("mints a redeemable code", func(t *testing.T) {
		inv, err := invites.Create(ctx, "admin-1", profile.ID, nil, nil)
		require.NoError(t, err)
		require.NotEmpty(t, inv.ID)
		require.Len(t, inv.Code, 22)
		require.Equal(t, "admin-1", inv.CreatedBy)
		require.EqualValues(t, 0, inv.UsageCount)
	})

	t.Run("requires an authenticated creator", func(t *testing.T) {
		_, err := invites.Create(ctx, "", profile.ID, nil, nil)
		require.ErrorIs(t, err, ErrMissingCreator)
	})

	t.Run("rejects non-positive max uses", func(t *testing.T) {
		_, err := invites.Create(ctx, "admin-1", profile.ID, nil, int64p(0))
		require.ErrorIs(t, err, ErrInvalidMaxUses)

		_, err = invites.Create(ctx, "admin-1", profile.ID, nil, int64p(-3))
		require.ErrorIs(t, err, ErrInvalidMaxUses)
	})

	t.Run("rejects unknown profiles", func(t *testing.T) {
		_, err := invites.Create(ctx, "admin-1", "missing", nil, nil)
		require.ErrorIs(t, err, ErrProfileNotFound)
	})
}

func TestInviteVerify(t *testing.T) {
	t.Parallel()
	invites, profiles := newTestServices(t)
	ctx := context.Background()
	profile := mustCreateProfile(t, profiles, "standard")

	t.Run("valid invite carries its profile", func(t *testing.T) {
		inv, err := invites.Create(ctx, "admin-1", profile.ID, nil, nil)
		require.NoError(t, err)

		result, err := invites.Verify(ctx, inv.Code)
		require.NoError(t, err)
		require.True(t, result.Valid)
		require.Equal(t, profile.ID, result.Profile.ID)
	})

	t.Run("unknown code is an error, not a reason", func(t *testing.T) {
		_, err := invites.Verify(ctx, "no-such-code")
		require.ErrorIs(t, err, ErrInviteNotFound)
	})

	t.Run("expired invite reports expired", func(t *testing.T) {
		past := time.Now().UTC().Add(-time.Hour)
		inv, err := invites.Create(ctx, "admin-1", profile.ID, &past, nil)
		require.NoError(t, err)

		result, err := invites.Verify(ctx, inv.Code)
		require.NoError(t, err)
		require.False(t, result.Valid)
		require.Equal(t, domain.ReasonExpired, result.Reason)
	})

	t.Run("exhausted invite reports max uses reached", func(t *testing.T) {
		inv, err := invites.Create(ctx, "admin-1", profile.ID, nil, int64p(1))
		require.NoError(t, err)
		_, err = invites.Consume(ctx, inv.Code)
		require.NoError(t, err)

		result, err := invites.Verify(ctx, inv.Code)
		require.NoError(t, err)
		require.False(t, result.Valid)
		require.Equal(t, domain.ReasonMaxUsesReached, result.Reason)
	})

	t.Run("expiry wins over exhaustion", func(t *testing.T) {
		// Both conditions hold; the reported reason is expiry.
		past := time.Now().UTC().Add(-time.Hour)
		inv, err := invites.Create(ctx, "admin-1", profile.ID, nil, int64p(1))
		require.NoError(t, err)
		_, err = invites.Consume(ctx, inv.Code)
		require.NoError(t, err)
		_, err = invites.Update(ctx, inv.ID, domain.InviteChanges{
			ExpiresAt: domain.FieldChange[time.Time]{Set: true, Value: &past},
		})
		require.NoError(t, err)

		result, err := invites.Verify(ctx, inv.Code)
		require.NoError(t, err)
		require.False(t, result.Valid)
		require.Equal(t, domain.ReasonExpired, result.Reason)
	})

	t.Run("verify never consumes", func(t *testing.T) {
		inv, err := invites.Create(ctx, "admin-1", profile.ID, nil, int64p(1))
		require.NoError(t, err)

		for range 5 {
			result, err := invites.Verify(ctx, inv.Code)
			require.NoError(t, err)
			require.True(t, result.Valid)
		}

		got, err := invites.GetByID(ctx, inv.ID)
		require.NoError(t, err)
		require.EqualValues(t, 0, got.UsageCount)
	})
}

func TestInviteConsume(t *testing.T) {
	t.Parallel()
	invites, profiles := newTestServices(t)
	ctx := context.Background()
	profile := mustCreateProfile(t, profiles, "standard")

	t.Run("grants the bound profile", func(t *testing.T) {
		inv, err := invites.Create(ctx, "admin-1", profile.ID, nil, int64p(2))
		require.NoError(t, err)

		granted, err := invites.Consume(ctx, inv.Code)
		require.NoError(t, err)
		require.Equal(t, profile.ID, granted.ID)

		got, err := invites.GetByID(ctx, inv.ID)
		require.NoError(t, err)
		require.EqualValues(t, 1, got.UsageCount)
	})

	t.Run("classifies failures", func(t *testing.T) {
		_, err := invites.Consume(ctx, "no-such-code")
		require.ErrorIs(t, err, ErrInviteNotFound)

		past := time.Now().UTC().Add(-time.Hour)
		expired, err := invites.Create(ctx, "admin-1", profile.ID, &past, nil)
		require.NoError(t, err)
		_, err = invites.Consume(ctx, expired.Code)
		require.ErrorIs(t, err, ErrInviteExpired)

		single, err := invites.Create(ctx, "admin-1", profile.ID, nil, int64p(1))
		require.NoError(t, err)
		_, err = invites.Consume(ctx, single.Code)
		require.NoError(t, err)
		_, err = invites.Consume(ctx, single.Code)
		require.ErrorIs(t, err, ErrInviteExhausted)
	})
}

func TestInviteConsumeConcurrent(t *testing.T) {
	t.Parallel()
	invites, profiles := newTestServices(t)
	ctx := context.Background()
	profile := mustCreateProfile(t, profiles, "standard")

	const (
		maxUses  = 3
		attempts = 10
	)

	inv, err := invites.Create(ctx, "admin-1", profile.ID, nil, int64p(maxUses))
	require.NoError(t, err)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		exhausted int
	)
	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := invites.Consume(ctx, inv.Code)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrInviteExhausted):
				exhausted++
			default:
				t.Errorf("unexpected consume error: %v", err)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, maxUses, succeeded)
	require.Equal(t, attempts-maxUses, exhausted)

	got, err := invites.GetByID(ctx, inv.ID)
	require.NoError(t, err)
	require.EqualValues(t, maxUses, got.UsageCount)
}

func TestInviteUpdate(t *testing.T) {
	t.Parallel()
	invites, profiles := newTestServices(t)
	ctx := context.Background()
	profile := mustCreateProfile(t, profiles, "standard")

	t.Run("untouched fields survive a partial patch", func(t *testing.T) {
		expires := time.Now().UTC().Add(time.Hour)
		inv, err := invites.Create(ctx, "admin-1", profile.ID, &expires, int64p(5))
		require.NoError(t, err)

		updated, err := invites.Update(ctx, inv.ID, domain.InviteChanges{
			MaxUses: domain.FieldChange[int64]{Set: true, Value: int64p(10)},
		})
		require.NoError(t, err)
		require.EqualValues(t, 10, *updated.MaxUses)
		require.NotNil(t, updated.ExpiresAt)
	})

	t.Run("explicit clear removes a limit", func(t *testing.T) {
		expires := time.Now().UTC().Add(time.Hour)
		inv, err := invites.Create(ctx, "admin-1", profile.ID, &expires, int64p(5))
		require.NoError(t, err)

		updated, err := invites.Update(ctx, inv.ID, domain.InviteChanges{
			ExpiresAt: domain.FieldChange[time.Time]{Set: true, Value: nil},
			MaxUses:   domain.FieldChange[int64]{Set: true, Value: nil},
		})
		require.NoError(t, err)
		require.Nil(t, updated.ExpiresAt)
		require.Nil(t, updated.MaxUses)
	})

	t.Run("rejects lowering max uses below recorded usage", func(t *testing.T) {
		inv, err := invites.Create(ctx, "admin-1", profile.ID, nil, int64p(5))
		require.NoError(t, err)
		_, err = invites.Consume(ctx, inv.Code)
		require.NoError(t, err)
		_, err = invites.Consume(ctx, inv.Code)
		require.NoError(t, err)

		_, err = invites.Update(ctx, inv.ID, domain.InviteChanges{
			MaxUses: domain.FieldChange[int64]{Set: true, Value: int64p(1)},
		})
		require.ErrorIs(t, err, ErrLimitBelowUsage)

		// Lowering exactly to the recorded usage is allowed; it exhausts the
		// invite without breaking the count invariant.
		updated, err := invites.Update(ctx, inv.ID, domain.InviteChanges{
			MaxUses: domain.FieldChange[int64]{Set: true, Value: int64p(2)},
		})
		require.NoError(t, err)
		require.EqualValues(t, 2, *updated.MaxUses)

		_, err = invites.Consume(ctx, inv.Code)
		require.ErrorIs(t, err, ErrInviteExhausted)
	})

	t.Run("rejects non-positive max uses", func(t *testing.T) {
		inv, err := invites.Create(ctx, "admin-1", profile.ID, nil, nil)
		require.NoError(t, err)

		_, err = invites.Update(ctx, inv.ID, domain.InviteChanges{
			MaxUses: domain.FieldChange[int64]{Set: true, Value: int64p(0)},
		})
		require.ErrorIs(t, err, ErrInvalidMaxUses)
	})

	t.Run("unknown invite", func(t *testing.T) {
		_, err := invites.Update(ctx, "missing", domain.InviteChanges{})
		require.ErrorIs(t, err, ErrInviteNotFound)
	})
}

func TestInviteDelete(t *testing.T) {
	t.Parallel()
	invites, profiles := newTestServices(t)
	ctx := context.Background()
	profile := mustCreateProfile(t, profiles, "standard")

	inv, err := invites.Create(ctx, "admin-1", profile.ID, nil, nil)
	require.NoError(t, err)

	require.NoError(t, invites.Delete(ctx, inv.ID))

	// Revocation stops future redemptions cold.
	_, err = invites.Consume(ctx, inv.Code)
	require.ErrorIs(t, err, ErrInviteNotFound)

	require.ErrorIs(t, invites.Delete(ctx, inv.ID), ErrInviteNotFound)
}

func TestInviteList(t *testing.T) {
	t.Parallel()
	invites, profiles := newTestServices(t)
	ctx := context.Background()
	profile := mustCreateProfile(t, profiles, "standard")

	first, err := invites.Create(ctx, "admin-1", profile.ID, nil, nil)
	require.NoError(t, err)
	second, err := invites.Create(ctx, "admin-2", profile.ID, nil, nil)
	require.NoError(t, err)

	listings, err := invites.List(ctx)
	require.NoError(t, err)
	require.Len(t, listings, 2)
	require.Equal(t, second.ID, listings[0].ID)
	require.Equal(t, first.ID, listings[1].ID)
	require.Equal(t, "standard", listings[0].ProfileName)
}
