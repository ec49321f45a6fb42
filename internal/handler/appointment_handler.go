package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"clinic-booking-api/internal/model"
	"clinic-booking-api/internal/service"
)

func (h *Handler) ListAppointments(c echo.Context) error {
	var from, to *time.Time
	if v := c.QueryParam("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"from": "must be RFC3339"})
		}
		from = &t
	}
	if v := c.QueryParam("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"to": "must be RFC3339"})
		}
		to = &t
	}

	items, err := h.sched.List(c.Request().Context(), from, to)
	if err != nil {
		return domainErr(err)
	}
	if items == nil {
		items = []model.Appointment{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) CreateAppointment(c echo.Context) error {
	var body struct {
		PatientID string     `json:"patientId"`
		DoctorID  string     `json:"doctorId"`
		StartTime *time.Time `json:"startTime"`
		EndTime   *time.Time `json:"endTime"`
		Reason    *string    `json:"reason"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	fields := map[string]string{}
	if body.PatientID == "" {
		fields["patientId"] = "required"
	}
	if body.DoctorID == "" {
		fields["doctorId"] = "required"
	}
	if body.StartTime == nil {
		fields["startTime"] = "required"
	}
	if body.EndTime == nil {
		fields["endTime"] = "required"
	}
	if len(fields) > 0 {
		return echo.NewHTTPError(http.StatusBadRequest, fields)
	}

	appt, err := h.sched.Create(c.Request().Context(), service.CreateAppointment{
		PatientID: body.PatientID,
		DoctorID:  body.DoctorID,
		StartTime: *body.StartTime,
		EndTime:   *body.EndTime,
		Reason:    body.Reason,
	})
	if err != nil {
		return domainErr(err)
	}
	return c.JSON(http.StatusCreated, appt)
}

func (h *Handler) GetAppointment(c echo.Context) error {
	appt, err := h.sched.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return domainErr(err)
	}
	return c.JSON(http.StatusOK, appt)
}

func (h *Handler) UpdateAppointment(c echo.Context) error {
	var body struct {
		PatientID *string         `json:"patientId"`
		DoctorID  *string         `json:"doctorId"`
		StartTime *time.Time      `json:"startTime"`
		EndTime   *time.Time      `json:"endTime"`
		Reason    json.RawMessage `json:"reason"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	patch := service.AppointmentPatch{
		PatientID: body.PatientID,
		DoctorID:  body.DoctorID,
		StartTime: body.StartTime,
		EndTime:   body.EndTime,
	}
	// explicit null clears reason, absence leaves it alone
	reason, set, err := optString(body.Reason)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"reason": "must be a string or null"})
	}
	patch.Reason, patch.ReasonSet = reason, set

	appt, err := h.sched.Update(c.Request().Context(), c.Param("id"), patch)
	if err != nil {
		return domainErr(err)
	}
	return c.JSON(http.StatusOK, appt)
}

func (h *Handler) SetAppointmentStatus(c echo.Context) error {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	status, ok := model.ParseStatus(body.Status)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"status": "must be one of PLANNED, CONFIRMED, DONE, CANCELLED"})
	}

	appt, err := h.sched.SetStatus(c.Request().Context(), c.Param("id"), status)
	if err != nil {
		return domainErr(err)
	}
	return c.JSON(http.StatusOK, appt)
}

func (h *Handler) DeleteAppointment(c echo.Context) error {
	if err := h.sched.Remove(c.Request().Context(), c.Param("id")); err != nil {
		return domainErr(err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

// optString decodes a JSON field that may be absent, null, or a string.
func optString(raw json.RawMessage) (*string, bool, error) {
	if len(raw) == 0 {
		return nil, false, nil
	}
	if string(raw) == "null" {
		return nil, true, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, false, err
	}
	return &s, true, nil
}
