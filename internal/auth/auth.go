package auth

import (
	"crypto/sha256"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"clinic-booking-api/internal/model"
)

var ErrBadToken = errors.New("invalid token")

const (
	KindAccess  = "access"
	KindRefresh = "refresh"
)

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

func CheckPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

type Claims struct {
	Role  model.Role `json:"role,omitempty"`
	Email string     `json:"email,omitempty"`
	Kind  string     `json:"kind"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies access and refresh tokens with a shared HS256
// secret. It holds no mutable state.
type Tokens struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokens(secret string, accessTTL, refreshTTL time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// Access issues a short-lived token carrying subject id, role and email.
func (t *Tokens) Access(u *model.User) (string, error) {
	c := Claims{
		Role:  u.Role,
		Email: u.Email,
		Kind:  KindAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(t.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(t.secret)
}

// Refresh issues a longer-lived token carrying subject id and expiry only.
// The expiry is returned so the caller can persist it alongside the hash.
func (t *Tokens) Refresh(userID string) (string, time.Time, error) {
	exp := time.Now().Add(t.refreshTTL)
	c := Claims{
		Kind: KindRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(t.secret)
	return raw, exp, err
}

// Parse verifies signature, expiry and token kind.
func (t *Tokens) Parse(raw, kind string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(raw, &Claims{}, func(tk *jwt.Token) (any, error) {
		// block alg confusion
		if _, ok := tk.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrBadToken
		}
		return t.secret, nil
	})
	if err != nil {
		return nil, err
	}
	c, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid || c.Kind != kind {
		return nil, ErrBadToken
	}
	return c, nil
}

// HashRefreshToken prepares a refresh token for storage. The raw token is
// digested first because bcrypt rejects inputs over 72 bytes and a signed JWT
// is always longer than that.
func HashRefreshToken(raw string) (string, error) {
	d := sha256.Sum256([]byte(raw))
	h, err := bcrypt.GenerateFromPassword(d[:], bcrypt.DefaultCost)
	return string(h), err
}

// CheckRefreshToken compares a presented raw token against a stored hash
// using the same slow comparison as passwords.
func CheckRefreshToken(hash, raw string) bool {
	d := sha256.Sum256([]byte(raw))
	return bcrypt.CompareHashAndPassword([]byte(hash), d[:]) == nil
}
