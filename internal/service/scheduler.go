package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"clinic-booking-api/internal/model"
)

// Scheduler books appointments and guards the one invariant that matters:
// for a doctor, no two non-cancelled appointments may overlap on [start, end).
//
// The check-and-insert is serialized per doctor so concurrent requests for
// the same doctor cannot both pass the overlap check. The Postgres store adds
// an exclusion constraint underneath as a second line of defence.
type Scheduler struct {
	appts    AppointmentStore
	users    UserStore
	patients PatientStore
	locks    doctorLocks
	log      zerolog.Logger
}

func NewScheduler(appts AppointmentStore, users UserStore, patients PatientStore, log zerolog.Logger) *Scheduler {
	return &Scheduler{appts: appts, users: users, patients: patients, log: log}
}

// doctorLocks hands out one mutex per doctor id.
type doctorLocks struct {
	mu sync.Mutex
	m  map[string]*sync.Mutex
}

func (l *doctorLocks) get(doctorID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.m == nil {
		l.m = make(map[string]*sync.Mutex)
	}
	if lk, ok := l.m[doctorID]; ok {
		return lk
	}
	lk := &sync.Mutex{}
	l.m[doctorID] = lk
	return lk
}

type CreateAppointment struct {
	PatientID string
	DoctorID  string
	StartTime time.Time
	EndTime   time.Time
	Reason    *string
}

// AppointmentPatch carries only the fields present in an update request.
// Reason distinguishes "clear" (ReasonSet with nil Reason) from "leave as is"
// (ReasonSet false).
type AppointmentPatch struct {
	PatientID *string
	DoctorID  *string
	StartTime *time.Time
	EndTime   *time.Time
	Reason    *string
	ReasonSet bool
}

func (s *Scheduler) Create(ctx context.Context, in CreateAppointment) (*model.Appointment, error) {
	if !in.EndTime.After(in.StartTime) {
		return nil, model.ErrEndBeforeStart
	}
	if err := s.checkDoctor(ctx, in.DoctorID); err != nil {
		return nil, err
	}
	if _, err := s.patients.ByID(ctx, in.PatientID); err != nil {
		return nil, model.ErrUnknownPatient
	}

	lk := s.locks.get(in.DoctorID)
	lk.Lock()
	defer lk.Unlock()

	if dup, err := s.appts.HasOverlap(ctx, in.DoctorID, in.StartTime, in.EndTime, ""); err != nil {
		return nil, err
	} else if dup {
		return nil, model.ErrDoctorUnavailable
	}

	a := &model.Appointment{
		ID:        uuid.New().String(),
		PatientID: in.PatientID,
		DoctorID:  in.DoctorID,
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
		Reason:    in.Reason,
		Status:    model.StatusPlanned,
	}
	if err := s.appts.Create(ctx, a); err != nil {
		return nil, err
	}
	s.log.Info().Str("appointment_id", a.ID).Str("doctor_id", a.DoctorID).Msg("appointment created")
	return s.appts.ByID(ctx, a.ID)
}

func (s *Scheduler) Update(ctx context.Context, id string, patch AppointmentPatch) (*model.Appointment, error) {
	cur, err := s.appts.ByID(ctx, id)
	if err != nil {
		return nil, model.ErrNotFound
	}

	// overlay only the fields present in the request
	doctorID := cur.DoctorID
	if patch.DoctorID != nil {
		doctorID = *patch.DoctorID
	}
	patientID := cur.PatientID
	if patch.PatientID != nil {
		patientID = *patch.PatientID
	}
	start, end := cur.StartTime, cur.EndTime
	if patch.StartTime != nil {
		start = *patch.StartTime
	}
	if patch.EndTime != nil {
		end = *patch.EndTime
	}
	reason := cur.Reason
	if patch.ReasonSet {
		reason = patch.Reason
	}

	if !end.After(start) {
		return nil, model.ErrEndBeforeStart
	}
	if patch.DoctorID != nil {
		if err := s.checkDoctor(ctx, doctorID); err != nil {
			return nil, err
		}
	}
	if patch.PatientID != nil {
		if _, err := s.patients.ByID(ctx, patientID); err != nil {
			return nil, model.ErrUnknownPatient
		}
	}

	lk := s.locks.get(doctorID)
	lk.Lock()
	defer lk.Unlock()

	if dup, err := s.appts.HasOverlap(ctx, doctorID, start, end, cur.ID); err != nil {
		return nil, err
	} else if dup {
		return nil, model.ErrDoctorUnavailable
	}

	merged := &model.Appointment{
		ID:        cur.ID,
		PatientID: patientID,
		DoctorID:  doctorID,
		StartTime: start,
		EndTime:   end,
		Reason:    reason,
		Status:    cur.Status,
	}
	if err := s.appts.Update(ctx, merged); err != nil {
		return nil, err
	}
	return s.appts.ByID(ctx, cur.ID)
}

func (s *Scheduler) SetStatus(ctx context.Context, id string, status model.Status) (*model.Appointment, error) {
	cur, err := s.appts.ByID(ctx, id)
	if err != nil {
		return nil, model.ErrNotFound
	}
	if cur.Status == status {
		return cur, nil
	}
	if !cur.Status.CanTransitionTo(status) {
		return nil, model.ErrInvalidTransition
	}
	cur.Status = status
	if err := s.appts.Update(ctx, cur); err != nil {
		return nil, err
	}
	return s.appts.ByID(ctx, id)
}

func (s *Scheduler) Remove(ctx context.Context, id string) error {
	if _, err := s.appts.ByID(ctx, id); err != nil {
		return model.ErrNotFound
	}
	return s.appts.Delete(ctx, id)
}

func (s *Scheduler) List(ctx context.Context, from, to *time.Time) ([]model.Appointment, error) {
	return s.appts.List(ctx, from, to)
}

func (s *Scheduler) Get(ctx context.Context, id string) (*model.Appointment, error) {
	a, err := s.appts.ByID(ctx, id)
	if err != nil {
		return nil, model.ErrNotFound
	}
	return a, nil
}

func (s *Scheduler) checkDoctor(ctx context.Context, doctorID string) error {
	u, err := s.users.ByID(ctx, doctorID)
	if err != nil || u.Role != model.RoleDoctor {
		return model.ErrNotADoctor
	}
	return nil
}
