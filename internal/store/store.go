// Package store is the Postgres implementation of the service store
// interfaces, built on pgx. Constraint violations are translated into the
// domain errors so callers never see driver-level failures for expected
// conflicts.
package store

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"clinic-booking-api/internal/model"
)

type Store struct {
	Users         *Users
	Patients      *Patients
	Appointments  *Appointments
	RefreshTokens *RefreshTokens
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{
		Users:         &Users{pool: pool},
		Patients:      &Patients{pool: pool},
		Appointments:  &Appointments{pool: pool},
		RefreshTokens: &RefreshTokens{pool: pool},
	}
}

type Users struct{ pool *pgxpool.Pool }
type Patients struct{ pool *pgxpool.Pool }
type Appointments struct{ pool *pgxpool.Pool }
type RefreshTokens struct{ pool *pgxpool.Pool }

const (
	pgUniqueViolation    = "23505"
	pgExclusionViolation = "23P01"
)

// mapErr converts pgx errors into domain errors where the failure is an
// expected conflict rather than an infrastructure problem.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			if pgErr.ConstraintName == "users_email_key" {
				return model.ErrEmailExists
			}
		case pgExclusionViolation:
			// the no_doctor_overlap constraint caught a racing insert
			return model.ErrDoctorUnavailable
		}
	}
	return err
}
