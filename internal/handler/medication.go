package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/medisafe/internal/service"
)

// MedicationHandler serves /medications for the authenticated caller.
type MedicationHandler struct {
	Svc *service.MedicationService
}

func NewMedicationHandler(svc *service.MedicationService) *MedicationHandler {
	return &MedicationHandler{Svc: svc}
}

// List handles GET /medications.
func (h *MedicationHandler) List(c echo.Context) error {
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

// Get handles GET /medications/:id.
func (h *MedicationHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	m, err := h.Svc.Get(c.Request().Context(), uid, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

// Create handles POST /medications.
func (h *MedicationHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	var req service.MedicationInput
	if err := bind(c, &req); err != nil {
		return err
	}
	m, err := h.Svc.Create(c.Request().Context(), uid, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, m)
}

// Update handles PUT /medications/:id.
func (h *MedicationHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req service.MedicationInput
	if err := bind(c, &req); err != nil {
		return err
	}
	m, err := h.Svc.Update(c.Request().Context(), uid, id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

// Delete handles DELETE /medications/:id.
func (h *MedicationHandler) Delete(c echo.Context) error {
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
	return deleted(c, "Medication")
}
