package service

import (
	"context"

	"github.com/google/uuid"

	"clinic-booking-api/internal/model"
)

// Patients is plain record CRUD; patients carry no cross-entity invariants.
type Patients struct {
	patients PatientStore
}

func NewPatients(patients PatientStore) *Patients {
	return &Patients{patients: patients}
}

func (s *Patients) Create(ctx context.Context, p *model.Patient) (*model.Patient, error) {
	p.ID = uuid.New().String()
	if err := s.patients.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Patients) Get(ctx context.Context, id string) (*model.Patient, error) {
	p, err := s.patients.ByID(ctx, id)
	if err != nil {
		return nil, model.ErrNotFound
	}
	return p, nil
}

// List searches by name or phone substring when q is non-empty; results are
// newest first and capped by the store.
func (s *Patients) List(ctx context.Context, q string) ([]model.Patient, error) {
	return s.patients.List(ctx, q)
}

func (s *Patients) Update(ctx context.Context, p *model.Patient) (*model.Patient, error) {
	if _, err := s.patients.ByID(ctx, p.ID); err != nil {
		return nil, model.ErrNotFound
	}
	if err := s.patients.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Patients) Delete(ctx context.Context, id string) error {
	if _, err := s.patients.ByID(ctx, id); err != nil {
		return model.ErrNotFound
	}
	return s.patients.Delete(ctx, id)
}
