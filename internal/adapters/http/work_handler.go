package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/daybook/core/internal/ports"
)

// WorkHandler handles attendance, payroll and special day requests
type WorkHandler struct {
	work        ports.WorkService
	specialDays ports.SpecialDayService
}

// NewWorkHandler creates a new work handler
func NewWorkHandler(work ports.WorkService, specialDays ports.SpecialDayService) *WorkHandler {
	return &WorkHandler{work: work, specialDays: specialDays}
}

// Status reports progress toward the payroll threshold
func (h *WorkHandler) Status(c echo.Context) error {
	status, err := h.work.Status(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, status)
}

// ConfirmPayroll closes the current cycle
func (h *WorkHandler) ConfirmPayroll(c echo.Context) error {
	var req ports.ConfirmPayrollRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	record, result, err := h.work.ConfirmPayroll(c.Request().Context(), getUserIDFromContext(c), req)
	if err != nil {
		return err
	}
	return respondWrite(c, http.StatusCreated, record, result)
}

func (h *WorkHandler) History(c echo.Context) error {
	history, err := h.work.History(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, history)
}

func (h *WorkHandler) ListSpecialDays(c echo.Context) error {
	days, err := h.specialDays.List(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, days)
}

func (h *WorkHandler) SetSpecialDay(c echo.Context) error {
	var req ports.SetSpecialDayRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	day, result, err := h.specialDays.Set(c.Request().Context(), getUserIDFromContext(c), c.Param("date"), req)
	if err != nil {
		return err
	}
	return respondWrite(c, http.StatusOK, day, result)
}

func (h *WorkHandler) DeleteSpecialDay(c echo.Context) error {
	result, err := h.specialDays.Delete(c.Request().Context(), getUserIDFromContext(c), c.Param("date"))
	if err != nil {
		return err
	}
	return respondWrite(c, http.StatusOK, nil, result)
}
