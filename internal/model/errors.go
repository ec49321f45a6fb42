package model

import "errors"

// Domain errors shared by the service and store layers. Handlers map these to
// HTTP statuses; the store maps Postgres constraint violations onto them so a
// race lost at the database is indistinguishable from one caught up front.
var (
	ErrNotFound              = errors.New("not found")
	ErrEmailExists           = errors.New("email already exists")
	ErrDoctorUnavailable     = errors.New("doctor is not available in that interval")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrInvalidToken          = errors.New("invalid/expired token")
	ErrInvalidRefreshToken   = errors.New("invalid refresh token")
	ErrUserNotFound          = errors.New("user not found")
	ErrEndBeforeStart        = errors.New("endTime must be after startTime")
	ErrNotADoctor            = errors.New("doctorId must reference a user with role DOCTOR")
	ErrUnknownPatient        = errors.New("unknown patientId")
	ErrInvalidTransition     = errors.New("invalid status transition")
	ErrCannotDeleteSelf      = errors.New("cannot delete yourself")
	ErrCannotDeleteLastAdmin = errors.New("cannot delete the last admin")
	ErrCannotDemoteLastAdmin = errors.New("cannot demote the last admin")
)
