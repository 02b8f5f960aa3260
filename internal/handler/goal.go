package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/medisafe/internal/service"
)

// GoalHandler serves /goals for the authenticated caller.
type GoalHandler struct {
	Svc *service.GoalService
}

func NewGoalHandler(svc *service.GoalService) *GoalHandler {
	return &GoalHandler{Svc: svc}
}

// List handles GET /goals.
func (h *GoalHandler) List(c echo.Context) error {
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

// Get handles GET /goals/:id.
func (h *GoalHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	g, err := h.Svc.Get(c.Request().Context(), uid, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, g)
}

// Create handles POST /goals.
func (h *GoalHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	var req service.GoalInput
	if err := bind(c, &req); err != nil {
		return err
	}
	g, err := h.Svc.Create(c.Request().Context(), uid, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, g)
}

// Update handles PUT /goals/:id.
func (h *GoalHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req service.GoalInput
	if err := bind(c, &req); err != nil {
		return err
	}
	g, err := h.Svc.Update(c.Request().Context(), uid, id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, g)
}

// Delete handles DELETE /goals/:id.
func (h *GoalHandler) Delete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.Svc.Delete(c.Request().Context(), uid, id); err != nil {
		return err
	}
	return deleted(c, "Goal")
}
