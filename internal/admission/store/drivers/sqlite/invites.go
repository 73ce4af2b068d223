package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/openfoyer/foyer/internal/admission/domain"
	"github.com/openfoyer/foyer/internal/admission/store"
)

type invitesRepo struct {
	db dbtx
}

const inviteColumns = `id, code, profile_id, created_by, expires_at, max_uses, usage_count, created_at, updated_at`

func (r *invitesRepo) CreateInvite(ctx context.Context, inv domain.Invite) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO invites (id, code, profile_id, created_by, expires_at, max_uses, usage_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		inv.ID,
		inv.Code,
		inv.ProfileID,
		inv.CreatedBy,
		nullTime(inv.ExpiresAt),
		nullInt64(inv.MaxUses),
		inv.CreatedAt,
		inv.UpdatedAt,
	)
	return mapConstraint(err)
}

func (r *invitesRepo) GetInviteByID(ctx context.Context, id string) (domain.Invite, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+inviteColumns+` FROM invites WHERE id = ?`, id)
	return scanInvite(row)
}

func (r *invitesRepo) GetInviteByCode(ctx context.Context, code string) (domain.Invite, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+inviteColumns+` FROM invites WHERE code = ?`, code)
	return scanInvite(row)
}

func (r *invitesRepo) ListInvites(ctx context.Context) ([]domain.InviteListing, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT i.id, i.code, i.profile_id, i.created_by, i.expires_at, i.max_uses,
		       i.usage_count, i.created_at, i.updated_at, p.name
		FROM invites i
		JOIN profiles p ON p.id = i.profile_id
		ORDER BY i.created_at DESC, i.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.InviteListing
	for rows.Next() {
		var (
			inv       domain.Invite
			expiresAt sql.NullTime
			maxUses   sql.NullInt64
			name      string
		)
		if err := rows.Scan(
			&inv.ID, &inv.Code, &inv.ProfileID, &inv.CreatedBy,
			&expiresAt, &maxUses, &inv.UsageCount,
			&inv.CreatedAt, &inv.UpdatedAt, &name,
		); err != nil {
			return nil, err
		}
		inv.ExpiresAt = timePtr(expiresAt)
		inv.MaxUses = int64Ptr(maxUses)
		out = append(out, domain.InviteListing{Invite: inv, ProfileName: name})
	}
	return out, rows.Err()
}

func (r *invitesRepo) ListInvitesByProfile(ctx context.Context, profileID string) ([]domain.Invite, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+inviteColumns+` FROM invites WHERE profile_id = ? ORDER BY created_at DESC, id DESC`,
		profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Invite
	for rows.Next() {
		inv, err := scanInviteRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

// ConsumeInvite is the engine's one compare-and-increment. The usage check and
// the increment are a single conditional UPDATE, so two concurrent consumers
// racing at the limit boundary cannot both get a row update.
func (r *invitesRepo) ConsumeInvite(ctx context.Context, code string, now time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE invites
		SET usage_count = usage_count + 1, updated_at = ?
		WHERE code = ?
		  AND (expires_at IS NULL OR expires_at >= ?)
		  AND (max_uses IS NULL OR usage_count < max_uses)`,
		now, code, now)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *invitesRepo) UpdateInviteLimits(ctx context.Context, id string, expiresAt *time.Time, maxUses *int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE invites
		SET expires_at = ?, max_uses = ?, updated_at = ?
		WHERE id = ?`,
		nullTime(expiresAt), nullInt64(maxUses), time.Now().UTC(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *invitesRepo) DeleteInvite(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM invites WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *invitesRepo) CountInvitesByProfile(ctx context.Context, profileID string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM invites WHERE profile_id = ?`, profileID).Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInviteFrom(s rowScanner) (domain.Invite, error) {
	var (
		inv       domain.Invite
		expiresAt sql.NullTime
		maxUses   sql.NullInt64
	)
	err := s.Scan(
		&inv.ID, &inv.Code, &inv.ProfileID, &inv.CreatedBy,
		&expiresAt, &maxUses, &inv.UsageCount,
		&inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return domain.Invite{}, err
	}
	inv.ExpiresAt = timePtr(expiresAt)
	inv.MaxUses = int64Ptr(maxUses)
	return inv, nil
}

func scanInvite(row *sql.Row) (domain.Invite, error) {
	inv, err := scanInviteFrom(row)
	if err != nil {
		return domain.Invite{}, mapNotFound(err)
	}
	return inv, nil
}

func scanInviteRows(rows *sql.Rows) (domain.Invite, error) {
	return scanInviteFrom(rows)
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

func nullInt64(n *int64) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *n, Valid: true}
}

func int64Ptr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}
