package http_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	httpapi "github.com/openfoyer/foyer/internal/admission/http"
	"github.com/openfoyer/foyer/internal/admission/service"
	"github.com/openfoyer/foyer/internal/admission/store/drivers/sqlite"
	"github.com/openfoyer/foyer/pkg/gatesdk"
	"github.com/openfoyer/foyer/pkg/httpx"
)

const (
	testSecret = "test-secret-for-admin-tokens"
	testIssuer = "foyer-test"
)

func newTestServer(t *testing.T) *gatesdk.Client {
	t.Helper()

	st, err := sqlite.NewStore(sqlite.DSN(filepath.Join(t.TempDir(), "admission.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := httpapi.NewRouter([]byte(testSecret), testIssuer, "test", st, logger)
	router.InviteService = &service.InviteService{Store: st}
	router.ProfileService = &service.ProfileService{Store: st}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return gatesdk.NewClient(srv.URL)
}

func mintAdminToken(t *testing.T, sub string, scopes ...string) string {
	t.Helper()

	claims := httpx.AdminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			Issuer:    testIssuer,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Scopes: scopes,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func adminSession(t *testing.T, client *gatesdk.Client) *gatesdk.AdminSession {
	t.Helper()
	return client.WithToken(mintAdminToken(t, "admin-1", "admission:read", "admission:write"))
}

func TestInviteLifecycle(t *testing.T) {
	t.Parallel()
	client := newTestServer(t)
	admin := adminSession(t, client)
	ctx := context.Background()

	profile, err := admin.CreateProfile(ctx, gatesdk.CreateProfileRequest{
		Name:            "standard",
		TemplateUserRef: "template-user-1",
	})
	require.NoError(t, err)
	require.True(t, profile.IsDefault)

	maxUses := int64(2)
	invite, err := admin.CreateInvite(ctx, gatesdk.CreateInviteRequest{
		ProfileID: profile.ID,
		MaxUses:   &maxUses,
	})
	require.NoError(t, err)
	require.NotEmpty(t, invite.Code)
	require.Equal(t, "admin-1", invite.CreatedBy)
	require.EqualValues(t, 0, invite.UsageCount)

	// Public verification reports validity without consuming.
	verified, err := client.VerifyInvite(ctx, invite.Code)
	require.NoError(t, err)
	require.True(t, verified.Valid)
	require.Equal(t, profile.ID, verified.Profile.ID)

	// Redeem until exhausted.
	consumed, err := client.ConsumeInvite(ctx, invite.Code)
	require.NoError(t, err)
	require.True(t, consumed.Success)
	require.Equal(t, profile.ID, consumed.Profile.ID)

	_, err = client.ConsumeInvite(ctx, invite.Code)
	require.NoError(t, err)
	_, err = client.ConsumeInvite(ctx, invite.Code)
	require.True(t, gatesdk.IsConflict(err))

	// Raise the cap, then clear it entirely with an explicit null.
	updated, err := admin.UpdateInvite(ctx, invite.ID, gatesdk.UpdateInviteRequest{
		MaxUses: gatesdk.Some[int64](5),
	})
	require.NoError(t, err)
	require.EqualValues(t, 5, *updated.MaxUses)

	updated, err = admin.UpdateInvite(ctx, invite.ID, gatesdk.UpdateInviteRequest{
		MaxUses: gatesdk.Null[int64](),
	})
	require.NoError(t, err)
	require.Nil(t, updated.MaxUses)
	require.EqualValues(t, 2, updated.UsageCount)

	listed, err := admin.ListInvites(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, "standard", listed[0].ProfileName)

	require.NoError(t, admin.DeleteInvite(ctx, invite.ID))
	_, err = admin.GetInvite(ctx, invite.ID)
	require.True(t, gatesdk.IsNotFound(err))
}

func TestInviteRedemptionErrors(t *testing.T) {
	t.Parallel()
	client := newTestServer(t)
	admin := adminSession(t, client)
	ctx := context.Background()

	profile, err := admin.CreateProfile(ctx, gatesdk.CreateProfileRequest{Name: "standard"})
	require.NoError(t, err)

	// Unknown code.
	_, err = client.VerifyInvite(ctx, "no-such-code")
	require.True(t, gatesdk.IsNotFound(err))
	_, err = client.ConsumeInvite(ctx, "no-such-code")
	require.True(t, gatesdk.IsNotFound(err))

	// Expired code: verify reports the reason, consume rejects.
	past := time.Now().Add(-time.Hour).Unix()
	expired, err := admin.CreateInvite(ctx, gatesdk.CreateInviteRequest{
		ProfileID: profile.ID,
		ExpiresAt: &past,
	})
	require.NoError(t, err)

	verified, err := client.VerifyInvite(ctx, expired.Code)
	require.NoError(t, err)
	require.False(t, verified.Valid)
	require.Equal(t, "expired", verified.Reason)

	_, err = client.ConsumeInvite(ctx, expired.Code)
	var apiErr *gatesdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadRequest, apiErr.Status)
	require.Equal(t, "invite_expired", apiErr.Code)
}

func TestInviteValidation(t *testing.T) {
	t.Parallel()
	client := newTestServer(t)
	admin := adminSession(t, client)
	ctx := context.Background()

	t.Run("missing profile binding", func(t *testing.T) {
		_, err := admin.CreateInvite(ctx, gatesdk.CreateInviteRequest{})
		var apiErr *gatesdk.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusBadRequest, apiErr.Status)
	})

	t.Run("unknown profile", func(t *testing.T) {
		_, err := admin.CreateInvite(ctx, gatesdk.CreateInviteRequest{ProfileID: "missing"})
		require.True(t, gatesdk.IsNotFound(err))
	})

	t.Run("non-positive max uses", func(t *testing.T) {
		profile, err := admin.CreateProfile(ctx, gatesdk.CreateProfileRequest{Name: "standard"})
		require.NoError(t, err)

		zero := int64(0)
		_, err = admin.CreateInvite(ctx, gatesdk.CreateInviteRequest{
			ProfileID: profile.ID,
			MaxUses:   &zero,
		})
		var apiErr *gatesdk.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusBadRequest, apiErr.Status)
	})
}

func TestProfileEndpoints(t *testing.T) {
	t.Parallel()
	client := newTestServer(t)
	admin := adminSession(t, client)
	ctx := context.Background()

	first, err := admin.CreateProfile(ctx, gatesdk.CreateProfileRequest{Name: "standard"})
	require.NoError(t, err)
	require.True(t, first.IsDefault)

	second, err := admin.CreateProfile(ctx, gatesdk.CreateProfileRequest{Name: "kids"})
	require.NoError(t, err)
	require.False(t, second.IsDefault)

	t.Run("duplicate name conflicts", func(t *testing.T) {
		_, err := admin.CreateProfile(ctx, gatesdk.CreateProfileRequest{Name: "standard"})
		require.True(t, gatesdk.IsConflict(err))
	})

	t.Run("listing carries invite counts", func(t *testing.T) {
		_, err := admin.CreateInvite(ctx, gatesdk.CreateInviteRequest{ProfileID: second.ID})
		require.NoError(t, err)

		profiles, err := admin.ListProfiles(ctx)
		require.NoError(t, err)
		require.Len(t, profiles, 2)
		// Ordered by name: kids then standard.
		require.Equal(t, "kids", profiles[0].Name)
		require.EqualValues(t, 1, *profiles[0].InviteCount)
		require.EqualValues(t, 0, *profiles[1].InviteCount)
	})

	t.Run("default swap", func(t *testing.T) {
		require.NoError(t, admin.SetDefaultProfile(ctx, second.ID))

		got, err := admin.GetProfile(ctx, second.ID)
		require.NoError(t, err)
		require.True(t, got.IsDefault)

		got, err = admin.GetProfile(ctx, first.ID)
		require.NoError(t, err)
		require.False(t, got.IsDefault)
	})

	t.Run("deleting the default conflicts", func(t *testing.T) {
		err := admin.DeleteProfile(ctx, second.ID)
		require.True(t, gatesdk.IsConflict(err))
	})

	t.Run("deleting a referenced non-default conflicts", func(t *testing.T) {
		_, err := admin.CreateInvite(ctx, gatesdk.CreateInviteRequest{ProfileID: first.ID})
		require.NoError(t, err)

		err = admin.DeleteProfile(ctx, first.ID)
		require.True(t, gatesdk.IsConflict(err))
	})

	t.Run("rename", func(t *testing.T) {
		name := "grown-ups"
		updated, err := admin.UpdateProfile(ctx, first.ID, gatesdk.UpdateProfileRequest{Name: &name})
		require.NoError(t, err)
		require.Equal(t, "grown-ups", updated.Name)
	})

	t.Run("profile invites", func(t *testing.T) {
		invites, err := admin.ProfileInvites(ctx, second.ID)
		require.NoError(t, err)
		require.Len(t, invites, 1)

		_, err = admin.ProfileInvites(ctx, "missing")
		require.True(t, gatesdk.IsNotFound(err))
	})
}

func TestAdminAuth(t *testing.T) {
	t.Parallel()
	client := newTestServer(t)
	ctx := context.Background()

	t.Run("missing token", func(t *testing.T) {
		_, err := client.WithToken("").ListInvites(ctx)
		require.True(t, gatesdk.IsForbidden(err))
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := client.WithToken("not-a-jwt").ListInvites(ctx)
		require.True(t, gatesdk.IsForbidden(err))
	})

	t.Run("read scope cannot write", func(t *testing.T) {
		reader := client.WithToken(mintAdminToken(t, "admin-1", "admission:read"))

		_, err := reader.ListInvites(ctx)
		require.NoError(t, err)

		_, err = reader.CreateProfile(ctx, gatesdk.CreateProfileRequest{Name: "standard"})
		var apiErr *gatesdk.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusForbidden, apiErr.Status)
	})

	t.Run("write scope cannot read", func(t *testing.T) {
		writer := client.WithToken(mintAdminToken(t, "admin-1", "admission:write"))
		_, err := writer.ListInvites(ctx)
		var apiErr *gatesdk.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusForbidden, apiErr.Status)
	})
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()
	client := newTestServer(t)

	health, err := client.Livez(context.Background())
	require.NoError(t, err)
	require.Equal(t, "ok", health.Status)
	require.Equal(t, "test", health.Version)
}
