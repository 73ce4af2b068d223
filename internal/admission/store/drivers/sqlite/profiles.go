package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/openfoyer/foyer/internal/admission/domain"
	"github.com/openfoyer/foyer/internal/admission/store"
)

type profilesRepo struct {
	db dbtx
}

func (r *profilesRepo) CreateProfile(ctx context.Context, p domain.Profile) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO profiles (id, name, template_user_ref, is_default, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID,
		p.Name,
		nullString(p.TemplateUserRef),
		p.IsDefault,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return mapConstraint(err)
}

func (r *profilesRepo) GetProfileByID(ctx context.Context, id string) (domain.Profile, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, template_user_ref, is_default, created_at, updated_at
		FROM profiles WHERE id = ?`, id)

	p, err := scanProfile(row)
	if err != nil {
		return domain.Profile{}, mapNotFound(err)
	}
	return p, nil
}

func (r *profilesRepo) ListProfiles(ctx context.Context) ([]domain.ProfileListing, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.name, p.template_user_ref, p.is_default, p.created_at, p.updated_at,
		       COUNT(i.id)
		FROM profiles p
		LEFT JOIN invites i ON i.profile_id = p.id
		GROUP BY p.id
		ORDER BY p.name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ProfileListing
	for rows.Next() {
		var (
			p   domain.Profile
			ref sql.NullString
			n   int64
		)
		if err := rows.Scan(&p.ID, &p.Name, &ref, &p.IsDefault, &p.CreatedAt, &p.UpdatedAt, &n); err != nil {
			return nil, err
		}
		p.TemplateUserRef = ref.String
		out = append(out, domain.ProfileListing{Profile: p, InviteCount: n})
	}
	return out, rows.Err()
}

func (r *profilesRepo) UpdateProfile(ctx context.Context, id, name, templateUserRef string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE profiles
		SET name = ?, template_user_ref = ?, updated_at = ?
		WHERE id = ?`,
		name, nullString(templateUserRef), time.Now().UTC(), id)
	if err != nil {
		return mapConstraint(err)
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

// SetDefaultProfile flips the default flag for every profile in one statement:
// the target gets true, everyone else false. No reader can ever observe zero
// or two defaults, and concurrent swaps serialize on the write lock.
func (r *profilesRepo) SetDefaultProfile(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE profiles
		SET is_default = (id = ?1), updated_at = ?2
		WHERE is_default != (id = ?1)`,
		id, time.Now().UTC())
	return err
}

func (r *profilesRepo) DeleteProfile(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = ?`, id)
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

func (r *profilesRepo) CountProfiles(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&n)
	return n, err
}

func scanProfile(row *sql.Row) (domain.Profile, error) {
	var (
		p   domain.Profile
		ref sql.NullString
	)
	err := row.Scan(&p.ID, &p.Name, &ref, &p.IsDefault, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return domain.Profile{}, err
	}
	p.TemplateUserRef = ref.String
	return p, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
