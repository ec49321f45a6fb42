package store

import (
	"context"

	"github.com/google/uuid"

	"clinic-booking-api/internal/auth"
	"clinic-booking-api/internal/model"
)

// Seed inserts the default development accounts. Existing emails are left
// untouched so it is safe to run on every start.
func (s *Store) Seed(ctx context.Context) error {
	users := []struct {
		email    string
		password string
		role     model.Role
		fullName string
	}{
		{"admin@local.com", "admin123", model.RoleAdmin, "Admin"},
		{"doctor@local.com", "doctor123", model.RoleDoctor, "Dr. Popescu"},
		{"reception@local.com", "reception123", model.RoleReception, "Reception"},
	}

	for _, u := range users {
		hash, err := auth.HashPassword(u.password)
		if err != nil {
			return err
		}
		_, err = s.Users.pool.Exec(ctx,
			`INSERT INTO users (id, email, password_hash, role, full_name, theme_mode)
			 VALUES ($1,$2,$3,$4,$5,'light')
			 ON CONFLICT (email) DO NOTHING`,
			uuid.New().String(), u.email, hash, u.role, u.fullName,
		)
		if err != nil {
			return err
		}
	}
	return nil
}
