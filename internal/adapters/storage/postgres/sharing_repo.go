package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"vaccine-planner/internal/domain/sharing"
)

type SharingRepo struct {
	db *sql.DB
}

func NewSharingRepo(db *sql.DB) *SharingRepo {
	return &SharingRepo{db: db}
}

func (r *SharingRepo) Create(ctx context.Context, g sharing.Grant) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sharing_grants (
			id, profile_id, owner_user_id, grantee_user_id,
			scopes, status,
			created_at, updated_at, revoked_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		g.ID,
		g.ProfileID,
		g.OwnerUserID,
		g.GranteeUserID,
		scopesToTextArray(g.Scopes),
		string(g.Status),
		g.CreatedAt,
		g.UpdatedAt,
		toNullTime(g.RevokedAt),
	)
	return err
}

func (r *SharingRepo) Update(ctx context.Context, g sharing.Grant) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE sharing_grants
		SET
			scopes = $2,
			status = $3,
			updated_at = $4,
			revoked_at = $5
		WHERE id = $1
	`,
		g.ID,
		scopesToTextArray(g.Scopes),
		string(g.Status),
		g.UpdatedAt,
		toNullTime(g.RevokedAt),
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SharingRepo) GetByID(ctx context.Context, id string) (sharing.Grant, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return sharing.Grant{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, profile_id, owner_user_id, grantee_user_id,
			scopes, status,
			created_at, updated_at, revoked_at
		FROM sharing_grants
		WHERE id = $1
	`, id)

	return scanGrant(row)
}

func (r *SharingRepo) ListByProfile(ctx context.Context, profileID string) ([]sharing.Grant, error) {
	profileID = strings.TrimSpace(profileID)
	if profileID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, profile_id, owner_user_id, grantee_user_id,
			scopes, status,
			created_at, updated_at, revoked_at
		FROM sharing_grants
		WHERE profile_id = $1
		ORDER BY created_at ASC
	`, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectGrants(rows)
}

func (r *SharingRepo) ListByGrantee(ctx context.Context, granteeUserID string) ([]sharing.Grant, error) {
	granteeUserID = strings.TrimSpace(granteeUserID)
	if granteeUserID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, profile_id, owner_user_id, grantee_user_id,
			scopes, status,
			created_at, updated_at, revoked_at
		FROM sharing_grants
		WHERE grantee_user_id = $1
		ORDER BY updated_at DESC
	`, granteeUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectGrants(rows)
}

func (r *SharingRepo) GetActiveGrant(ctx context.Context, profileID, granteeUserID string) (sharing.Grant, error) {
	profileID = strings.TrimSpace(profileID)
	granteeUserID = strings.TrimSpace(granteeUserID)
	if profileID == "" || granteeUserID == "" {
		return sharing.Grant{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, profile_id, owner_user_id, grantee_user_id,
			scopes, status,
			created_at, updated_at, revoked_at
		FROM sharing_grants
		WHERE profile_id = $1
		  AND grantee_user_id = $2
		  AND status = 'active'
		ORDER BY updated_at DESC
		LIMIT 1
	`, profileID, granteeUserID)

	return scanGrant(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGrant(row rowScanner) (sharing.Grant, error) {
	var g sharing.Grant
	var status string
	var scopes []string
	var revokedAt sql.NullTime

	if err := row.Scan(
		&g.ID,
		&g.ProfileID,
		&g.OwnerUserID,
		&g.GranteeUserID,
		&scopes,
		&status,
		&g.CreatedAt,
		&g.UpdatedAt,
		&revokedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return sharing.Grant{}, ErrNotFound
		}
		return sharing.Grant{}, err
	}

	g.Status = sharing.Status(status)
	g.Scopes = textArrayToScopes(scopes)
	if revokedAt.Valid {
		t := revokedAt.Time
		g.RevokedAt = &t
	}
	return g, nil
}

func collectGrants(rows *sql.Rows) ([]sharing.Grant, error) {
	out := make([]sharing.Grant, 0)
	for rows.Next() {
		g, err := scanGrant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// helpers
func scopesToTextArray(in []sharing.Scope) []string {
	if len(in) == 0 {
		return []string{}
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, string(s))
	}
	return out
}

func textArrayToScopes(in []string) []sharing.Scope {
	if len(in) == 0 {
		return []sharing.Scope{}
	}
	out := make([]sharing.Scope, 0, len(in))
	for _, s := range in {
		out = append(out, sharing.Scope(s))
	}
	return out
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
