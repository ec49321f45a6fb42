package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"clinic-booking-api/internal/auth"
	"clinic-booking-api/internal/middleware"
	"clinic-booking-api/internal/model"
	"clinic-booking-api/internal/service"
)

type Handler struct {
	auth     *service.Auth
	sched    *service.Scheduler
	users    *service.Users
	patients *service.Patients
}

func New(authSvc *service.Auth, sched *service.Scheduler, users *service.Users, patients *service.Patients) *Handler {
	return &Handler{auth: authSvc, sched: sched, users: users, patients: patients}
}

// Register wires every route. Only /health and the credential endpoints are
// reachable without a valid access token; user management additionally
// requires ADMIN.
func (h *Handler) Register(e *echo.Echo, tokens *auth.Tokens, rl *middleware.RateLimiter) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]bool{"ok": true})
	})

	api := e.Group("/api")

	ag := api.Group("/auth")
	ag.POST("/login", h.Login, rl.Middleware())
	ag.POST("/refresh", h.Refresh, rl.Middleware())
	ag.POST("/logout", h.Logout, middleware.RequireAuth(tokens))

	authed := api.Group("", middleware.RequireAuth(tokens))

	authed.GET("/appointments", h.ListAppointments)
	authed.POST("/appointments", h.CreateAppointment)
	authed.GET("/appointments/:id", h.GetAppointment)
	authed.PUT("/appointments/:id", h.UpdateAppointment)
	authed.PATCH("/appointments/:id/status", h.SetAppointmentStatus)
	authed.DELETE("/appointments/:id", h.DeleteAppointment)

	authed.GET("/patients", h.ListPatients)
	authed.POST("/patients", h.CreatePatient)
	authed.GET("/patients/:id", h.GetPatient)
	authed.PUT("/patients/:id", h.UpdatePatient)
	authed.DELETE("/patients/:id", h.DeletePatient)

	authed.GET("/users/doctors", h.Doctors)
	authed.GET("/users/me", h.Me)
	authed.PUT("/users/me", h.UpdateMe)

	admin := authed.Group("/users", middleware.RequireRole(model.RoleAdmin))
	admin.GET("", h.ListUsers)
	admin.POST("", h.CreateUser)
	admin.PUT("/:id", h.UpdateUser)
	admin.DELETE("/:id", h.DeleteUser)
}

// ErrorHandler renders every failure as {"error": message-or-field-map}.
func ErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		var msg any = "internal error"
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			msg = he.Message
		} else {
			log.Error().Err(err).Str("path", c.Request().URL.Path).Msg("unhandled error")
		}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, map[string]any{"error": msg})
	}
}

// domainErr maps service errors onto the HTTP taxonomy. Anything unmapped
// surfaces as an opaque 500.
func domainErr(err error) error {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Not found")
	case errors.Is(err, model.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, model.ErrInvalidToken):
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid/expired token")
	case errors.Is(err, model.ErrInvalidRefreshToken):
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid refresh token")
	case errors.Is(err, model.ErrUserNotFound):
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	case errors.Is(err, model.ErrDoctorUnavailable):
		return echo.NewHTTPError(http.StatusConflict, "Doctor is not available in that interval")
	case errors.Is(err, model.ErrEmailExists):
		return echo.NewHTTPError(http.StatusConflict, "Email already exists")
	case errors.Is(err, model.ErrEndBeforeStart),
		errors.Is(err, model.ErrNotADoctor),
		errors.Is(err, model.ErrUnknownPatient),
		errors.Is(err, model.ErrInvalidTransition),
		errors.Is(err, model.ErrCannotDeleteSelf),
		errors.Is(err, model.ErrCannotDeleteLastAdmin),
		errors.Is(err, model.ErrCannotDemoteLastAdmin):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return err
	}
}

func principal(c echo.Context) (middleware.Principal, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return middleware.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "Unauthenticated")
	}
	return p, nil
}
