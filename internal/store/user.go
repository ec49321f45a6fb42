package store

import (
	"context"

	"clinic-booking-api/internal/model"
)

func (s *Users) Create(ctx context.Context, u *model.User) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, role, full_name, theme_mode)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		u.ID, u.Email, u.PasswordHash, u.Role, u.FullName, u.ThemeMode,
	)
	return mapErr(err)
}

func (s *Users) ByID(ctx context.Context, id string) (*model.User, error) {
	return s.scanUser(ctx, `WHERE id = $1`, id)
}

func (s *Users) ByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.scanUser(ctx, `WHERE email = $1`, email)
}

func (s *Users) scanUser(ctx context.Context, where string, arg any) (*model.User, error) {
	u := &model.User{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, role, full_name, theme_mode, created_at
		 FROM users `+where, arg,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.FullName, &u.ThemeMode, &u.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return u, nil
}

func (s *Users) List(ctx context.Context) ([]model.User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, email, password_hash, role, full_name, theme_mode, created_at
		 FROM users ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.FullName, &u.ThemeMode, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Users) Doctors(ctx context.Context) ([]model.UserSummary, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, email, full_name, role FROM users
		 WHERE role = $1 ORDER BY created_at DESC`, model.RoleDoctor,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.UserSummary
	for rows.Next() {
		var u model.UserSummary
		if err := rows.Scan(&u.ID, &u.Email, &u.FullName, &u.Role); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Users) Update(ctx context.Context, u *model.User) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE users SET email=$2, password_hash=$3, role=$4, full_name=$5, theme_mode=$6
		 WHERE id=$1`,
		u.ID, u.Email, u.PasswordHash, u.Role, u.FullName, u.ThemeMode,
	)
	return mapErr(err)
}

func (s *Users) Delete(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}

func (s *Users) CountByRole(ctx context.Context, role model.Role) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE role = $1`, role).Scan(&n)
	return n, err
}
