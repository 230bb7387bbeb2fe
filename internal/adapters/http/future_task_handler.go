package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/daybook/core/internal/ports"
)

// FutureTaskHandler handles future task requests
type FutureTaskHandler struct {
	tasks ports.FutureTaskService
}

// NewFutureTaskHandler creates a new future task handler
func NewFutureTaskHandler(tasks ports.FutureTaskService) *FutureTaskHandler {
	return &FutureTaskHandler{tasks: tasks}
}

func (h *FutureTaskHandler) List(c echo.Context) error {
	tasks, err := h.tasks.List(c.Request().Context(), getUserIDFromContext(c), dateFilter(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tasks)
}

func (h *FutureTaskHandler) Create(c echo.Context) error {
	var req ports.CreateFutureTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	task, result, err := h.tasks.Create(c.Request().Context(), getUserIDFromContext(c), req)
	if err != nil {
		return err
	}
	return respondWrite(c, http.StatusCreated, task, result)
}

func (h *FutureTaskHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var patch ports.FutureTaskPatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&patch); err != nil {
		return err
	}

	result, err := h.tasks.Update(c.Request().Context(), getUserIDFromContext(c), id, patch)
	if err != nil {
		return err
	}
	return respondWrite(c, http.StatusOK, nil, result)
}

func (h *FutureTaskHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	result, err := h.tasks.Delete(c.Request().Context(), getUserIDFromContext(c), id)
	if err != nil {
		return err
	}
	return respondWrite(c, http.StatusOK, nil, result)
}
