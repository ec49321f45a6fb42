package service_test

import (
	"context"
	"sync"
	"time"

	"clinic-booking-api/internal/model"
)

// Map-backed stores implementing the service store interfaces. All methods
// are mutex-guarded so the concurrency tests can hammer them.

type memUsers struct {
	mu sync.Mutex
	m  map[string]*model.User
}

func newMemUsers() *memUsers { return &memUsers{m: map[string]*model.User{}} }

func (s *memUsers) Create(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.m {
		if e.Email == u.Email {
			return model.ErrEmailExists
		}
	}
	cp := *u
	s.m[u.ID] = &cp
	return nil
}

func (s *memUsers) ByID(_ context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.m[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *memUsers) ByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.m {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, model.ErrNotFound
}

func (s *memUsers) List(_ context.Context) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.User, 0, len(s.m))
	for _, u := range s.m {
		out = append(out, *u)
	}
	return out, nil
}

func (s *memUsers) Doctors(_ context.Context) ([]model.UserSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.UserSummary
	for _, u := range s.m {
		if u.Role == model.RoleDoctor {
			out = append(out, u.Summary())
		}
	}
	return out, nil
}

func (s *memUsers) Update(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[u.ID]; !ok {
		return model.ErrNotFound
	}
	cp := *u
	s.m[u.ID] = &cp
	return nil
}

func (s *memUsers) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[id]; !ok {
		return model.ErrNotFound
	}
	delete(s.m, id)
	return nil
}

func (s *memUsers) CountByRole(_ context.Context, role model.Role) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, u := range s.m {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

type memPatients struct {
	mu sync.Mutex
	m  map[string]*model.Patient
}

func newMemPatients() *memPatients { return &memPatients{m: map[string]*model.Patient{}} }

func (s *memPatients) Create(_ context.Context, p *model.Patient) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.m[p.ID] = &cp
	return nil
}

func (s *memPatients) ByID(_ context.Context, id string) (*model.Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.m[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *memPatients) List(_ context.Context, _ string) ([]model.Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Patient, 0, len(s.m))
	for _, p := range s.m {
		out = append(out, *p)
	}
	return out, nil
}

func (s *memPatients) Update(_ context.Context, p *model.Patient) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[p.ID]; !ok {
		return model.ErrNotFound
	}
	cp := *p
	s.m[p.ID] = &cp
	return nil
}

func (s *memPatients) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, id)
	return nil
}

type memAppointments struct {
	mu sync.Mutex
	m  map[string]*model.Appointment
}

func newMemAppointments() *memAppointments {
	return &memAppointments{m: map[string]*model.Appointment{}}
}

func (s *memAppointments) Create(_ context.Context, a *model.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	s.m[a.ID] = &cp
	return nil
}

func (s *memAppointments) ByID(_ context.Context, id string) (*model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.m[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *memAppointments) Update(_ context.Context, a *model.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[a.ID]; !ok {
		return model.ErrNotFound
	}
	cp := *a
	s.m[a.ID] = &cp
	return nil
}

func (s *memAppointments) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[id]; !ok {
		return model.ErrNotFound
	}
	delete(s.m, id)
	return nil
}

func (s *memAppointments) List(_ context.Context, from, to *time.Time) ([]model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Appointment
	for _, a := range s.m {
		if from != nil && a.StartTime.Before(*from) {
			continue
		}
		if to != nil && !a.StartTime.Before(*to) {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

func (s *memAppointments) HasOverlap(_ context.Context, doctorID string, start, end time.Time, excludeID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.m {
		if a.DoctorID != doctorID || a.ID == excludeID || a.Status == model.StatusCancelled {
			continue
		}
		if a.StartTime.Before(end) && a.EndTime.After(start) {
			return true, nil
		}
	}
	return false, nil
}

type memTokens struct {
	mu   sync.Mutex
	rows []model.RefreshToken
}

func newMemTokens() *memTokens { return &memTokens{} }

func (s *memTokens) Create(_ context.Context, userID, tokenHash string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, model.RefreshToken{
		ID:        userID + "-" + tokenHash[:8],
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	})
	return nil
}

func (s *memTokens) ActiveByUser(_ context.Context, userID string) ([]model.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.RefreshToken
	for _, r := range s.rows {
		if r.UserID == userID && r.RevokedAt == nil && r.ExpiresAt.After(time.Now()) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *memTokens) RevokeAll(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for i := range s.rows {
		if s.rows[i].UserID == userID && s.rows[i].RevokedAt == nil {
			s.rows[i].RevokedAt = &now
		}
	}
	return nil
}
