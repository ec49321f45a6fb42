package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

func (h *Handler) Login(c echo.Context) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	fields := map[string]string{}
	if !validEmail(body.Email) {
		fields["email"] = "invalid email"
	}
	if len(body.Password) < 6 {
		fields["password"] = "must be at least 6 characters"
	}
	if len(fields) > 0 {
		return echo.NewHTTPError(http.StatusBadRequest, fields)
	}

	res, err := h.auth.Login(c.Request().Context(), body.Email, body.Password)
	if err != nil {
		return domainErr(err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) Refresh(c echo.Context) error {
	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if body.RefreshToken == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing refreshToken")
	}

	access, err := h.auth.Refresh(c.Request().Context(), body.RefreshToken)
	if err != nil {
		return domainErr(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"accessToken": access})
}

func (h *Handler) Logout(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	if err := h.auth.Logout(c.Request().Context(), p.ID); err != nil {
		return domainErr(err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

// validEmail is deliberately loose; the store's unique constraint is the one
// that matters.
func validEmail(s string) bool {
	at := strings.Index(s, "@")
	return at > 0 && at < len(s)-1 && !strings.ContainsAny(s, " \t")
}
