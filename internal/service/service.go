// Package service holds the booking engine, the auth flows and the admin
// guards. Persistence is consumed through the store interfaces below; the pgx
// implementations live in internal/store.
package service

import (
	"context"
	"time"

	"clinic-booking-api/internal/model"
)

type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	ByID(ctx context.Context, id string) (*model.User, error)
	ByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Doctors(ctx context.Context) ([]model.UserSummary, error)
	Update(ctx context.Context, u *model.User) error
	Delete(ctx context.Context, id string) error
	CountByRole(ctx context.Context, role model.Role) (int, error)
}

type PatientStore interface {
	Create(ctx context.Context, p *model.Patient) error
	ByID(ctx context.Context, id string) (*model.Patient, error)
	List(ctx context.Context, q string) ([]model.Patient, error)
	Update(ctx context.Context, p *model.Patient) error
	Delete(ctx context.Context, id string) error
}

type AppointmentStore interface {
	Create(ctx context.Context, a *model.Appointment) error
	// ByID returns the appointment with patient and doctor denormalized.
	ByID(ctx context.Context, id string) (*model.Appointment, error)
	Update(ctx context.Context, a *model.Appointment) error
	Delete(ctx context.Context, id string) error
	// List returns appointments ordered by start time ascending, optionally
	// restricted to a time window, with patient and doctor denormalized.
	List(ctx context.Context, from, to *time.Time) ([]model.Appointment, error)
	// HasOverlap reports whether any non-cancelled appointment for the doctor
	// intersects the half-open interval [start, end), excluding excludeID
	// when non-empty.
	HasOverlap(ctx context.Context, doctorID string, start, end time.Time, excludeID string) (bool, error)
}

type RefreshTokenStore interface {
	Create(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error
	// ActiveByUser returns unrevoked, unexpired tokens for the user.
	ActiveByUser(ctx context.Context, userID string) ([]model.RefreshToken, error)
	RevokeAll(ctx context.Context, userID string) error
}
