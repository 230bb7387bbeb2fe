package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/daybook/core/internal/ports"
)

// NoteHandler handles note requests
type NoteHandler struct {
	notes ports.NoteService
}

// NewNoteHandler creates a new note handler
func NewNoteHandler(notes ports.NoteService) *NoteHandler {
	return &NoteHandler{notes: notes}
}

// List returns the user's notes, optionally for a single ?date=
func (h *NoteHandler) List(c echo.Context) error {
	notes, err := h.notes.List(c.Request().Context(), getUserIDFromContext(c), dateFilter(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, notes)
}

func (h *NoteHandler) Create(c echo.Context) error {
	var req ports.CreateNoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	note, result, err := h.notes.Create(c.Request().Context(), getUserIDFromContext(c), req)
	if err != nil {
		return err
	}
	return respondWrite(c, http.StatusCreated, note, result)
}

func (h *NoteHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var patch ports.NotePatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&patch); err != nil {
		return err
	}

	result, err := h.notes.Update(c.Request().Context(), getUserIDFromContext(c), id, patch)
	if err != nil {
		return err
	}
	return respondWrite(c, http.StatusOK, nil, result)
}

func (h *NoteHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	result, err := h.notes.Delete(c.Request().Context(), getUserIDFromContext(c), id)
	if err != nil {
		return err
	}
	return respondWrite(c, http.StatusOK, nil, result)
}
