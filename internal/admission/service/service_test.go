package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openfoyer/foyer/internal/admission/domain"
	"github.com/openfoyer/foyer/internal/admission/store"
	"github.com/openfoyer/foyer/internal/admission/store/drivers/sqlite"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(sqlite.DSN(filepath.Join(t.TempDir(), "admission.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func newTestServices(t *testing.T) (*InviteService, *ProfileService) {
	t.Helper()

	st := newTestStore(t)
	return &InviteService{Store: st}, &ProfileService{Store: st}
}

func mustCreateProfile(t *testing.T, profiles *ProfileService, name string) domain.Profile {
	t.Helper()

	p, err := profiles.Create(context.Background(), name, "")
	require.NoError(t, err)
	return p
}

func int64p(v int64) *int64 { return &v }
