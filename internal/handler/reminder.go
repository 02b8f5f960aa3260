package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/medisafe/internal/service"
)

// ReminderHandler serves /reminders for the authenticated caller.
type ReminderHandler struct {
	Svc *service.ReminderService
}

func NewReminderHandler(svc *service.ReminderService) *ReminderHandler {
	return &ReminderHandler{Svc: svc}
}

type snoozeReq struct {
	Minutes int `json:"minutes" validate:"omitempty,min=1,max=1440"`
}

// List handles GET /reminders.  Each item carries the medication name and
// dose.
func (h *ReminderHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	items, err := h.Svc.List(c.Request().Context(), uid)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// Stats handles GET /reminders/stats: today's total, taken, overdue and
// compliance percentage.  The overdue count moves with the clock, so the
// response is never cached.
func (h *ReminderHandler) Stats(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	st, err := h.Svc.Stats(c.Request().Context(), uid)
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return c.JSON(http.StatusOK, st)
}

// Get handles GET /reminders/:id.
func (h *ReminderHandler) Get(c echo.Context) error {
	uid, id, err := h.ids(c)
	if err != nil {
		return err
	}
	r, err := h.Svc.Get(c.Request().Context(), uid, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, r)
}

// Create handles POST /reminders.
func (h *ReminderHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	var req service.ReminderInput
	if err := bind(c, &req); err != nil {
		return err
	}
	r, err := h.Svc.Create(c.Request().Context(), uid, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, r)
}

// Update handles PUT /reminders/:id.
func (h *ReminderHandler) Update(c echo.Context) error {
	uid, id, err := h.ids(c)
	if err != nil {
		return err
	}
	var req service.ReminderInput
	if err := bind(c, &req); err != nil {
		return err
	}
	r, err := h.Svc.Update(c.Request().Context(), uid, id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, r)
}

// Delete handles DELETE /reminders/:id.
func (h *ReminderHandler) Delete(c echo.Context) error {
	uid, id, err := h.ids(c)
	if err != nil {
		return err
	}
	if err := h.Svc.Delete(c.Request().Context(), uid, id); err != nil {
		return err
	}
	return deleted(c, "Reminder")
}

// Taken handles POST /reminders/:id/taken.
func (h *ReminderHandler) Taken(c echo.Context) error {
	uid, id, err := h.ids(c)
	if err != nil {
		return err
	}
	r, err := h.Svc.MarkTaken(c.Request().Context(), uid, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, r)
}

// Snooze handles POST /reminders/:id/snooze with an optional
// {"minutes": n} body; without it the configured default applies.
func (h *ReminderHandler) Snooze(c echo.Context) error {
	uid, id, err := h.ids(c)
	if err != nil {
		return err
	}
	var req snoozeReq
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	r, err := h.Svc.Snooze(c.Request().Context(), uid, id, time.Duration(req.Minutes)*time.Minute)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, r)
}

func (h *ReminderHandler) ids(c echo.Context) (int64, int64, error) {
	uid, err := getUserID(c)
	if err != nil {
		return 0, 0, err
	}
	id, err := parseID(c)
	if err != nil {
		return 0, 0, err
	}
	return uid, id, nil
}
