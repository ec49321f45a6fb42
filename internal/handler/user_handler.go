package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"clinic-booking-api/internal/model"
	"clinic-booking-api/internal/service"
)

func (h *Handler) ListUsers(c echo.Context) error {
	items, err := h.users.List(c.Request().Context())
	if err != nil {
		return domainErr(err)
	}
	if items == nil {
		items = []model.User{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) CreateUser(c echo.Context) error {
	var body struct {
		Email    string  `json:"email"`
		Password string  `json:"password"`
		Role     string  `json:"role"`
		FullName *string `json:"fullName"`
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
	role, ok := model.ParseRole(body.Role)
	if !ok {
		fields["role"] = "must be one of ADMIN, DOCTOR, RECEPTION"
	}
	if len(fields) > 0 {
		return echo.NewHTTPError(http.StatusBadRequest, fields)
	}

	u, err := h.users.Create(c.Request().Context(), body.Email, body.Password, role, body.FullName)
	if err != nil {
		return domainErr(err)
	}
	return c.JSON(http.StatusCreated, u)
}

func (h *Handler) UpdateUser(c echo.Context) error {
	var body struct {
		Role     *string `json:"role"`
		Password *string `json:"password"`
		FullName *string `json:"fullName"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	patch := service.UserPatch{Password: body.Password, FullName: body.FullName}
	if body.Role != nil {
		role, ok := model.ParseRole(*body.Role)
		if !ok {
			return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"role": "must be one of ADMIN, DOCTOR, RECEPTION"})
		}
		patch.Role = &role
	}
	if body.Password != nil && len(*body.Password) < 6 {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"password": "must be at least 6 characters"})
	}

	u, err := h.users.Update(c.Request().Context(), c.Param("id"), patch)
	if err != nil {
		return domainErr(err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) DeleteUser(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	if err := h.users.Delete(c.Request().Context(), p.ID, c.Param("id")); err != nil {
		return domainErr(err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) Doctors(c echo.Context) error {
	items, err := h.users.Doctors(c.Request().Context())
	if err != nil {
		return domainErr(err)
	}
	if items == nil {
		items = []model.UserSummary{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Me(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	u, err := h.users.Me(c.Request().Context(), p.ID)
	if err != nil {
		return domainErr(err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) UpdateMe(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	var body struct {
		FullName  *string `json:"fullName"`
		ThemeMode *string `json:"themeMode"`
		Password  *string `json:"password"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if body.ThemeMode != nil && *body.ThemeMode != "light" && *body.ThemeMode != "dark" {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"themeMode": "must be light or dark"})
	}
	if body.Password != nil && len(*body.Password) < 6 {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"password": "must be at least 6 characters"})
	}

	u, err := h.users.UpdateMe(c.Request().Context(), p.ID, service.ProfilePatch{
		FullName:  body.FullName,
		ThemeMode: body.ThemeMode,
		Password:  body.Password,
	})
	if err != nil {
		return domainErr(err)
	}
	return c.JSON(http.StatusOK, u)
}
