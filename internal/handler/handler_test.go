package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"clinic-booking-api/internal/auth"
	"clinic-booking-api/internal/handler"
	"clinic-booking-api/internal/middleware"
	"clinic-booking-api/internal/model"
	"clinic-booking-api/internal/service"
	"clinic-booking-api/internal/store"
)

// These tests run against a real Postgres and skip when no database is
// configured.

type app struct {
	e  *echo.Echo
	st *store.Store
	tk *auth.Tokens
}

func setup(t *testing.T) *app {
	t.Helper()
	_ = godotenv.Load("../../.env")
	dbURL := os.Getenv("DATABASE_URL")
	secret := os.Getenv("JWT_SECRET")
	if dbURL == "" || secret == "" {
		t.Skip("DATABASE_URL or JWT_SECRET not set")
	}
	pool, err := pgxpool.New(context.Background(), dbURL)
	if err != nil {
		t.Fatalf("db: %v", err)
	}
	t.Cleanup(pool.Close)

	if migration, err := os.ReadFile("../../db/migrations/001_init.sql"); err == nil {
		_, _ = pool.Exec(context.Background(), string(migration))
	}

	st := store.New(pool)
	tk := auth.NewTokens(secret, 15*time.Minute, time.Hour)
	log := zerolog.Nop()

	e := echo.New()
	e.HTTPErrorHandler = handler.ErrorHandler(log)
	h := handler.New(
		service.NewAuth(st.Users, st.RefreshTokens, tk, log),
		service.NewScheduler(st.Appointments, st.Users, st.Patients, log),
		service.NewUsers(st.Users, log),
		service.NewPatients(st.Patients),
	)
	h.Register(e, tk, middleware.NewRateLimiter(1000, 1000))
	return &app{e: e, st: st, tk: tk}
}

func (a *app) do(t *testing.T, method, path, bearer string, body any) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)

	var obj map[string]json.RawMessage
	_ = json.Unmarshal(rec.Body.Bytes(), &obj)
	return rec, obj
}

func (a *app) newUser(t *testing.T, role model.Role, password string) *model.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := &model.User{
		ID:           uuid.New().String(),
		Email:        fmt.Sprintf("test-%s@test.com", uuid.New().String()[:8]),
		PasswordHash: hash,
		Role:         role,
		ThemeMode:    "light",
	}
	if err := a.st.Users.Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func (a *app) newPatient(t *testing.T) *model.Patient {
	t.Helper()
	p := &model.Patient{
		ID:        uuid.New().String(),
		FirstName: "Test",
		LastName:  "Patient-" + uuid.New().String()[:8],
	}
	if err := a.st.Patients.Create(context.Background(), p); err != nil {
		t.Fatalf("create patient: %v", err)
	}
	return p
}

func (a *app) token(t *testing.T, u *model.User) string {
	t.Helper()
	tok, err := a.tk.Access(u)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return tok
}

// ----- auth -----

func TestLoginEndpoint(t *testing.T) {
	a := setup(t)
	u := a.newUser(t, model.RoleReception, "reception123")

	rec, obj := a.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": u.Email, "password": "reception123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, body = %s", rec.Code, rec.Body)
	}
	if string(obj["accessToken"]) == "" || string(obj["refreshToken"]) == "" {
		t.Fatalf("missing tokens in %s", rec.Body)
	}

	rec, obj = a.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": u.Email, "password": "wrong-pass",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("code = %d, want 401", rec.Code)
	}
	if string(obj["error"]) != `"Invalid credentials"` {
		t.Fatalf("error = %s", obj["error"])
	}
}

func TestLoginValidation(t *testing.T) {
	a := setup(t)

	rec, _ := a.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "not-an-email", "password": "short",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400", rec.Code)
	}
}

func TestRefreshEndpoint(t *testing.T) {
	a := setup(t)
	u := a.newUser(t, model.RoleDoctor, "doctor123")

	rec, obj := a.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": u.Email, "password": "doctor123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: %d", rec.Code)
	}
	var refresh string
	if err := json.Unmarshal(obj["refreshToken"], &refresh); err != nil {
		t.Fatalf("refresh token: %v", err)
	}

	rec, obj = a.do(t, http.MethodPost, "/api/auth/refresh", "", map[string]string{"refreshToken": refresh})
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh: %d, body = %s", rec.Code, rec.Body)
	}
	if len(obj["accessToken"]) == 0 {
		t.Fatalf("no access token in %s", rec.Body)
	}

	rec, _ = a.do(t, http.MethodPost, "/api/auth/refresh", "", map[string]string{"refreshToken": "garbage"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("garbage refresh: %d, want 401", rec.Code)
	}
}

// ----- authorization -----

func TestAuthRequired(t *testing.T) {
	a := setup(t)

	rec, _ := a.do(t, http.MethodGet, "/api/appointments", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("code = %d, want 401", rec.Code)
	}
}

func TestUserManagementIsAdminOnly(t *testing.T) {
	a := setup(t)
	doc := a.newUser(t, model.RoleDoctor, "doctor123")
	admin := a.newUser(t, model.RoleAdmin, "admin123")

	rec, _ := a.do(t, http.MethodGet, "/api/users", a.token(t, doc), nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("doctor: code = %d, want 403", rec.Code)
	}

	rec, _ = a.do(t, http.MethodGet, "/api/users", a.token(t, admin), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin: code = %d, want 200", rec.Code)
	}

	// /users/me stays open to every authenticated role
	rec, _ = a.do(t, http.MethodGet, "/api/users/me", a.token(t, doc), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("me: code = %d, want 200", rec.Code)
	}
}

// ----- appointments -----

func TestAppointmentBookingFlow(t *testing.T) {
	a := setup(t)
	doc := a.newUser(t, model.RoleDoctor, "doctor123")
	desk := a.newUser(t, model.RoleReception, "reception123")
	p := a.newPatient(t)
	tok := a.token(t, desk)

	start := time.Now().Add(24 * time.Hour).Truncate(time.Minute)
	end := start.Add(30 * time.Minute)

	rec, obj := a.do(t, http.MethodPost, "/api/appointments", tok, map[string]any{
		"patientId": p.ID, "doctorId": doc.ID,
		"startTime": start.Format(time.RFC3339), "endTime": end.Format(time.RFC3339),
		"reason": "checkup",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d, body = %s", rec.Code, rec.Body)
	}
	var id string
	if err := json.Unmarshal(obj["id"], &id); err != nil {
		t.Fatalf("id: %v", err)
	}

	// overlapping slot for the same doctor is rejected
	rec, obj = a.do(t, http.MethodPost, "/api/appointments", tok, map[string]any{
		"patientId": p.ID, "doctorId": doc.ID,
		"startTime": start.Add(15 * time.Minute).Format(time.RFC3339),
		"endTime":   end.Add(15 * time.Minute).Format(time.RFC3339),
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("overlap: %d, body = %s", rec.Code, rec.Body)
	}
	if string(obj["error"]) != `"Doctor is not available in that interval"` {
		t.Fatalf("error = %s", obj["error"])
	}

	// confirm, then complete
	for _, status := range []string{"CONFIRMED", "DONE"} {
		rec, _ = a.do(t, http.MethodPatch, "/api/appointments/"+id+"/status", tok, map[string]string{"status": status})
		if rec.Code != http.StatusOK {
			t.Fatalf("set %s: %d, body = %s", status, rec.Code, rec.Body)
		}
	}

	// DONE is terminal
	rec, _ = a.do(t, http.MethodPatch, "/api/appointments/"+id+"/status", tok, map[string]string{"status": "CANCELLED"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("done->cancelled: %d, want 400", rec.Code)
	}

	rec, _ = a.do(t, http.MethodDelete, "/api/appointments/"+id, tok, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: %d", rec.Code)
	}
}

func TestCreateAppointmentValidation(t *testing.T) {
	a := setup(t)
	desk := a.newUser(t, model.RoleReception, "reception123")

	rec, obj := a.do(t, http.MethodPost, "/api/appointments", a.token(t, desk), map[string]any{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400", rec.Code)
	}
	var fields map[string]string
	if err := json.Unmarshal(obj["error"], &fields); err != nil {
		t.Fatalf("error shape: %s", rec.Body)
	}
	for _, f := range []string{"patientId", "doctorId", "startTime", "endTime"} {
		if fields[f] == "" {
			t.Fatalf("missing field error for %s in %v", f, fields)
		}
	}
}

// ----- patients -----

func TestPatientCRUD(t *testing.T) {
	a := setup(t)
	desk := a.newUser(t, model.RoleReception, "reception123")
	tok := a.token(t, desk)

	last := "Ionescu-" + uuid.New().String()[:8]
	rec, obj := a.do(t, http.MethodPost, "/api/patients", tok, map[string]any{
		"firstName": "Maria", "lastName": last, "phone": "0712345678",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d, body = %s", rec.Code, rec.Body)
	}
	var id string
	if err := json.Unmarshal(obj["id"], &id); err != nil {
		t.Fatalf("id: %v", err)
	}

	rec, _ = a.do(t, http.MethodGet, "/api/patients?q="+last, tok, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("search: %d", rec.Code)
	}
	var results []model.Patient
	if err := json.Unmarshal(rec.Body.Bytes(), &results); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(results) != 1 || results[0].ID != id {
		t.Fatalf("search results = %+v", results)
	}

	// clear the phone with an explicit null
	rec, obj = a.do(t, http.MethodPut, "/api/patients/"+id, tok, map[string]any{"phone": nil})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: %d, body = %s", rec.Code, rec.Body)
	}
	if _, ok := obj["phone"]; ok {
		t.Fatalf("phone not cleared: %s", rec.Body)
	}

	rec, _ = a.do(t, http.MethodDelete, "/api/patients/"+id, tok, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: %d", rec.Code)
	}
	rec, _ = a.do(t, http.MethodGet, "/api/patients/"+id, tok, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete: %d, want 404", rec.Code)
	}
}
