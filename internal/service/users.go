package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"clinic-booking-api/internal/auth"
	"clinic-booking-api/internal/model"
)

// Users layers the admin invariants over plain user CRUD: unique email on
// create, no self-delete, and the organization never loses its last ADMIN,
// neither by delete nor by demotion.
type Users struct {
	users UserStore
	mu    sync.Mutex // serializes the last-admin count-then-mutate
	log   zerolog.Logger
}

func NewUsers(users UserStore, log zerolog.Logger) *Users {
	return &Users{users: users, log: log}
}

type UserPatch struct {
	Role     *model.Role
	Password *string
	FullName *string
}

type ProfilePatch struct {
	FullName  *string
	ThemeMode *string
	Password  *string
}

func (s *Users) Create(ctx context.Context, email, password string, role model.Role, fullName *string) (*model.User, error) {
	if _, err := s.users.ByEmail(ctx, email); err == nil {
		return nil, model.ErrEmailExists
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		FullName:     fullName,
		ThemeMode:    "light",
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", u.ID).Str("role", string(role)).Msg("user created")
	return u, nil
}

func (s *Users) Update(ctx context.Context, id string, patch UserPatch) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := s.users.ByID(ctx, id)
	if err != nil {
		return nil, model.ErrNotFound
	}
	if patch.Role != nil && u.Role == model.RoleAdmin && *patch.Role != model.RoleAdmin {
		n, err := s.users.CountByRole(ctx, model.RoleAdmin)
		if err != nil {
			return nil, err
		}
		if n <= 1 {
			return nil, model.ErrCannotDemoteLastAdmin
		}
	}
	if patch.Role != nil {
		u.Role = *patch.Role
	}
	if patch.FullName != nil {
		u.FullName = patch.FullName
	}
	// rehash only when a new password is supplied
	if patch.Password != nil {
		hash, err := auth.HashPassword(*patch.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hash
	}
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Users) Delete(ctx context.Context, actorID, id string) error {
	if id == actorID {
		return model.ErrCannotDeleteSelf
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := s.users.ByID(ctx, id)
	if err != nil {
		return model.ErrNotFound
	}
	if u.Role == model.RoleAdmin {
		n, err := s.users.CountByRole(ctx, model.RoleAdmin)
		if err != nil {
			return err
		}
		if n <= 1 {
			return model.ErrCannotDeleteLastAdmin
		}
	}
	return s.users.Delete(ctx, id)
}

func (s *Users) List(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx)
}

func (s *Users) Doctors(ctx context.Context) ([]model.UserSummary, error) {
	return s.users.Doctors(ctx)
}

func (s *Users) Me(ctx context.Context, id string) (*model.User, error) {
	u, err := s.users.ByID(ctx, id)
	if err != nil {
		return nil, model.ErrNotFound
	}
	return u, nil
}

// UpdateMe lets any authenticated user change their own profile and theme.
// Role is deliberately not part of the patch.
func (s *Users) UpdateMe(ctx context.Context, id string, patch ProfilePatch) (*model.User, error) {
	u, err := s.users.ByID(ctx, id)
	if err != nil {
		return nil, model.ErrNotFound
	}
	if patch.FullName != nil {
		u.FullName = patch.FullName
	}
	if patch.ThemeMode != nil {
		u.ThemeMode = *patch.ThemeMode
	}
	if patch.Password != nil {
		hash, err := auth.HashPassword(*patch.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hash
	}
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
