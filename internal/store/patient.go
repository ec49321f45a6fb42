package store

import (
	"context"

	"clinic-booking-api/internal/model"
)

func (s *Patients) Create(ctx context.Context, p *model.Patient) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO patients (id, first_name, last_name, phone, email, dob, notes)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		p.ID, p.FirstName, p.LastName, p.Phone, p.Email, p.DOB, p.Notes,
	)
	return err
}

func (s *Patients) ByID(ctx context.Context, id string) (*model.Patient, error) {
	p := &model.Patient{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, first_name, last_name, phone, email, dob, notes, created_at
		 FROM patients WHERE id = $1`, id,
	).Scan(&p.ID, &p.FirstName, &p.LastName, &p.Phone, &p.Email, &p.DOB, &p.Notes, &p.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return p, nil
}

// List returns the 50 newest patients, filtered by a case-insensitive name or
// phone substring match when q is non-empty.
func (s *Patients) List(ctx context.Context, q string) ([]model.Patient, error) {
	query := `SELECT id, first_name, last_name, phone, email, dob, notes, created_at FROM patients`
	args := []any{}
	if q != "" {
		query += ` WHERE first_name ILIKE '%' || $1 || '%'
		   OR last_name ILIKE '%' || $1 || '%'
		   OR phone LIKE '%' || $1 || '%'`
		args = append(args, q)
	}
	query += ` ORDER BY created_at DESC LIMIT 50`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Patient
	for rows.Next() {
		var p model.Patient
		if err := rows.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Phone, &p.Email, &p.DOB, &p.Notes, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Patients) Update(ctx context.Context, p *model.Patient) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE patients SET first_name=$2, last_name=$3, phone=$4, email=$5, dob=$6, notes=$7
		 WHERE id=$1`,
		p.ID, p.FirstName, p.LastName, p.Phone, p.Email, p.DOB, p.Notes,
	)
	return err
}

func (s *Patients) Delete(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	return err
}
