package postgres

import (
	"context"
	"database/sql"
	"strings"

	"vaccine-planner/internal/domain/profiles"
	"vaccine-planner/internal/domain/vaccines"
)

// ProfilesRepo persiste el agregado completo: la fila de profiles más
// sus hijos profile_vaccines (con position para conservar la prioridad)
// y vaccine_records.
type ProfilesRepo struct {
	db *sql.DB
}

func NewProfilesRepo(db *sql.DB) *ProfilesRepo {
	return &ProfilesRepo{db: db}
}

func (r *ProfilesRepo) Create(ctx context.Context, p profiles.Profile) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO profiles (
			id, owner_user_id, name, end_plan_year,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6)
	`,
		p.ID,
		p.OwnerUserID,
		p.Name,
		p.EndPlanYear,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if err := insertChildren(ctx, tx, p); err != nil {
		return err
	}
	return tx.Commit()
}

// Update reemplaza el agregado: actualiza la fila y reescribe los
// hijos. Para el tamaño de estos perfiles es más simple y más seguro
// que calcular diffs.
func (r *ProfilesRepo) Update(ctx context.Context, p profiles.Profile) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE profiles
		SET
			name = $2,
			end_plan_year = $3,
			updated_at = $4
		WHERE id = $1
	`,
		p.ID,
		p.Name,
		p.EndPlanYear,
		p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM profile_vaccines WHERE profile_id = $1`, p.ID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM vaccine_records WHERE profile_id = $1`, p.ID); err != nil {
		return err
	}
	if err := insertChildren(ctx, tx, p); err != nil {
		return err
	}
	return tx.Commit()
}

func insertChildren(ctx context.Context, tx *sql.Tx, p profiles.Profile) error {
	for i, cfg := range p.Vaccines {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO profile_vaccines (
				profile_id, position, vaccine, enabled
			) VALUES ($1,$2,$3,$4)
		`,
			p.ID, i, cfg.Name, cfg.Enabled,
		)
		if err != nil {
			return err
		}
	}

	for _, rec := range p.Records {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO vaccine_records (
				id, profile_id, vaccine, applied_at,
				kind, dose_index, notes
			) VALUES ($1,$2,$3,$4,$5,$6,$7)
		`,
			rec.ID,
			p.ID,
			rec.Vaccine,
			rec.Date,
			string(rec.Kind.Type),
			rec.Kind.Index,
			rec.Notes,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *ProfilesRepo) GetByID(ctx context.Context, id string) (profiles.Profile, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return profiles.Profile{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, owner_user_id, name, end_plan_year, created_at, updated_at
		FROM profiles
		WHERE id = $1
	`, id)

	var p profiles.Profile
	if err := row.Scan(
		&p.ID,
		&p.OwnerUserID,
		&p.Name,
		&p.EndPlanYear,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return profiles.Profile{}, ErrNotFound
		}
		return profiles.Profile{}, err
	}

	if err := r.loadChildren(ctx, &p); err != nil {
		return profiles.Profile{}, err
	}
	return p, nil
}

func (r *ProfilesRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]profiles.Profile, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, owner_user_id, name, end_plan_year, created_at, updated_at
		FROM profiles
		WHERE owner_user_id = $1
		ORDER BY created_at ASC
	`, ownerUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]profiles.Profile, 0)
	for rows.Next() {
		var p profiles.Profile
		if err := rows.Scan(
			&p.ID,
			&p.OwnerUserID,
			&p.Name,
			&p.EndPlanYear,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if err := r.loadChildren(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *ProfilesRepo) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM profile_vaccines WHERE profile_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM vaccine_records WHERE profile_id = $1`, id); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

func (r *ProfilesRepo) loadChildren(ctx context.Context, p *profiles.Profile) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT vaccine, enabled
		FROM profile_vaccines
		WHERE profile_id = $1
		ORDER BY position ASC
	`, p.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	p.Vaccines = make([]profiles.VaccineConfig, 0)
	for rows.Next() {
		var cfg profiles.VaccineConfig
		if err := rows.Scan(&cfg.Name, &cfg.Enabled); err != nil {
			return err
		}
		p.Vaccines = append(p.Vaccines, cfg)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	recRows, err := r.db.QueryContext(ctx, `
		SELECT id, vaccine, applied_at, kind, dose_index, notes
		FROM vaccine_records
		WHERE profile_id = $1
		ORDER BY applied_at ASC
	`, p.ID)
	if err != nil {
		return err
	}
	defer recRows.Close()

	p.Records = make([]vaccines.Record, 0)
	for recRows.Next() {
		var rec vaccines.Record
		var kind string
		if err := recRows.Scan(
			&rec.ID,
			&rec.Vaccine,
			&rec.Date,
			&kind,
			&rec.Kind.Index,
			&rec.Notes,
		); err != nil {
			return err
		}
		rec.Kind.Type = vaccines.DoseKindType(kind)
		p.Records = append(p.Records, rec)
	}
	return recRows.Err()
}
