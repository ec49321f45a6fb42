package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"clinic-booking-api/internal/model"
)

func (h *Handler) ListPatients(c echo.Context) error {
	items, err := h.patients.List(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return domainErr(err)
	}
	if items == nil {
		items = []model.Patient{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) CreatePatient(c echo.Context) error {
	var body struct {
		FirstName string     `json:"firstName"`
		LastName  string     `json:"lastName"`
		Phone     *string    `json:"phone"`
		Email     *string    `json:"email"`
		DOB       *time.Time `json:"dob"`
		Notes     *string    `json:"notes"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	fields := map[string]string{}
	if body.FirstName == "" {
		fields["firstName"] = "required"
	}
	if body.LastName == "" {
		fields["lastName"] = "required"
	}
	if body.Email != nil && !validEmail(*body.Email) {
		fields["email"] = "invalid email"
	}
	if len(fields) > 0 {
		return echo.NewHTTPError(http.StatusBadRequest, fields)
	}

	p, err := h.patients.Create(c.Request().Context(), &model.Patient{
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Phone:     body.Phone,
		Email:     body.Email,
		DOB:       body.DOB,
		Notes:     body.Notes,
	})
	if err != nil {
		return domainErr(err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetPatient(c echo.Context) error {
	p, err := h.patients.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return domainErr(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) UpdatePatient(c echo.Context) error {
	var body struct {
		FirstName *string         `json:"firstName"`
		LastName  *string         `json:"lastName"`
		Phone     json.RawMessage `json:"phone"`
		Email     json.RawMessage `json:"email"`
		DOB       json.RawMessage `json:"dob"`
		Notes     json.RawMessage `json:"notes"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	cur, err := h.patients.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return domainErr(err)
	}

	if body.FirstName != nil {
		if *body.FirstName == "" {
			return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"firstName": "must not be empty"})
		}
		cur.FirstName = *body.FirstName
	}
	if body.LastName != nil {
		if *body.LastName == "" {
			return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"lastName": "must not be empty"})
		}
		cur.LastName = *body.LastName
	}

	// optional fields accept explicit null to clear
	if v, set, err := optString(body.Phone); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"phone": "must be a string or null"})
	} else if set {
		cur.Phone = v
	}
	if v, set, err := optString(body.Email); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"email": "must be a string or null"})
	} else if set {
		if v != nil && !validEmail(*v) {
			return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"email": "invalid email"})
		}
		cur.Email = v
	}
	if v, set, err := optTime(body.DOB); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"dob": "must be RFC3339 or null"})
	} else if set {
		cur.DOB = v
	}
	if v, set, err := optString(body.Notes); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"notes": "must be a string or null"})
	} else if set {
		cur.Notes = v
	}

	p, err := h.patients.Update(c.Request().Context(), cur)
	if err != nil {
		return domainErr(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) DeletePatient(c echo.Context) error {
	if err := h.patients.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return domainErr(err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

func optTime(raw json.RawMessage) (*time.Time, bool, error) {
	if len(raw) == 0 {
		return nil, false, nil
	}
	if string(raw) == "null" {
		return nil, true, nil
	}
	var t time.Time
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, false, err
	}
	return &t, true, nil
}
