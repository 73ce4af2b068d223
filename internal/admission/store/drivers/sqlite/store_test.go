package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openfoyer/foyer/internal/admission/domain"
	"github.com/openfoyer/foyer/pkg/idx"
)

// newTestStore opens a fresh file-backed database per test. A file (rather
// than :memory:) keeps the schema visible to every pooled connection.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	st, err := NewStore(DSN(filepath.Join(t.TempDir(), "admission.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func seedProfile(t *testing.T, st *Store, name string) domain.Profile {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Second)
	p := domain.Profile{
		ID:        idx.New().String(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, st.Profiles().CreateProfile(context.Background(), p))
	return p
}

func seedInvite(t *testing.T, st *Store, profileID string, expiresAt *time.Time, maxUses *int64) domain.Invite {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Second)
	inv := domain.Invite{
		ID:        idx.New().String(),
		Code:      idx.New().String(),
		ProfileID: profileID,
		CreatedBy: "admin",
		ExpiresAt: expiresAt,
		MaxUses:   maxUses,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, st.Invites().CreateInvite(context.Background(), inv))
	return inv
}

func int64p(v int64) *int64 { return &v }

func timep(t time.Time) *time.Time { return &t }
