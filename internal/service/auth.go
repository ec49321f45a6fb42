package service

import (
	"context"

	"github.com/rs/zerolog"

	"clinic-booking-api/internal/auth"
	"clinic-booking-api/internal/model"
)

// Auth implements login and refresh on top of the user and refresh-token
// stores. Raw refresh tokens are never persisted, only bcrypt hashes.
type Auth struct {
	users  UserStore
	tokens RefreshTokenStore
	tk     *auth.Tokens
	log    zerolog.Logger
}

func NewAuth(users UserStore, tokens RefreshTokenStore, tk *auth.Tokens, log zerolog.Logger) *Auth {
	return &Auth{users: users, tokens: tokens, tk: tk, log: log}
}

type LoginUser struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Role      model.Role `json:"role"`
	ThemeMode string `json:"themeMode"`
}

type LoginResult struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	User         LoginUser `json:"user"`
}

// Login verifies credentials and issues an access/refresh token pair. Unknown
// email and wrong password fail identically so responses carry no enumeration
// signal.
func (a *Auth) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	u, err := a.users.ByEmail(ctx, email)
	if err != nil {
		a.log.Warn().Str("email", email).Msg("login for unknown email")
		return nil, model.ErrInvalidCredentials
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		a.log.Warn().Str("user_id", u.ID).Msg("login with wrong password")
		return nil, model.ErrInvalidCredentials
	}

	access, err := a.tk.Access(u)
	if err != nil {
		return nil, err
	}
	refresh, exp, err := a.tk.Refresh(u.ID)
	if err != nil {
		return nil, err
	}
	hash, err := auth.HashRefreshToken(refresh)
	if err != nil {
		return nil, err
	}
	if err := a.tokens.Create(ctx, u.ID, hash, exp); err != nil {
		return nil, err
	}

	return &LoginResult{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         LoginUser{ID: u.ID, Email: u.Email, Role: u.Role, ThemeMode: u.ThemeMode},
	}, nil
}

// Refresh mints a new access token for a valid, still-stored refresh token.
// The presented token is not rotated; it stays usable until its own expiry.
func (a *Auth) Refresh(ctx context.Context, raw string) (string, error) {
	claims, err := a.tk.Parse(raw, auth.KindRefresh)
	if err != nil {
		return "", model.ErrInvalidToken
	}

	live, err := a.tokens.ActiveByUser(ctx, claims.Subject)
	if err != nil {
		return "", err
	}
	match := false
	for _, t := range live {
		if auth.CheckRefreshToken(t.TokenHash, raw) {
			match = true
			break
		}
	}
	if !match {
		a.log.Warn().Str("user_id", claims.Subject).Msg("refresh with unknown token")
		return "", model.ErrInvalidRefreshToken
	}

	u, err := a.users.ByID(ctx, claims.Subject)
	if err != nil {
		return "", model.ErrUserNotFound
	}
	return a.tk.Access(u)
}

// Logout revokes every live refresh token of the user.
func (a *Auth) Logout(ctx context.Context, userID string) error {
	return a.tokens.RevokeAll(ctx, userID)
}
