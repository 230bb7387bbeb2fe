package http

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/daybook/core/internal/domain/entities"
	"github.com/daybook/core/internal/infrastructure/logger"
	"github.com/daybook/core/internal/ports"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	authService ports.AuthService
	logger      *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService ports.AuthService, log *logger.Logger) *AuthHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &AuthHandler{
		authService: authService,
		logger:      log,
	}
}

// SignUp handles account creation
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req ports.SignUpRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return err
	}

	response, err := h.authService.SignUp(c.Request().Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, response)
}

// Login handles user login
func (h *AuthHandler) Login(c echo.Context) error {
	var req ports.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return err
	}

	response, err := h.authService.Login(c.Request().Context(), req)
	if err != nil {
		h.logger.Warnw("Login failed", "error", err)
		return err
	}

	return c.JSON(http.StatusOK, response)
}

// SignOut clears the user's cached state
func (h *AuthHandler) SignOut(c echo.Context) error {
	userID := getUserIDFromContext(c)

	if err := h.authService.SignOut(c.Request().Context(), userID); err != nil {
		h.logger.Errorw("Sign out failed", "error", err, "user_id", userID)
		return err
	}

	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "Signed out successfully"})
}

// Me returns the signed-in user
func (h *AuthHandler) Me(c echo.Context) error {
	user, err := h.authService.GetUser(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// SnapshotHandler serves the unified per-user view
type SnapshotHandler struct {
	snapshots ports.SnapshotService
}

// NewSnapshotHandler creates a new snapshot handler
func NewSnapshotHandler(snapshots ports.SnapshotService) *SnapshotHandler {
	return &SnapshotHandler{snapshots: snapshots}
}

// Get returns the cached snapshot, or a fresh one with ?refresh=true
func (h *SnapshotHandler) Get(c echo.Context) error {
	userID := getUserIDFromContext(c)
	ctx := c.Request().Context()

	var (
		snapshot *entities.Snapshot
		err      error
	)
	if c.QueryParam("refresh") == "true" {
		snapshot, err = h.snapshots.Refresh(ctx, userID)
	} else {
		snapshot, err = h.snapshots.Get(ctx, userID)
	}
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, snapshot)
}

// SyncHandler exposes the sync status of the user's writes
type SyncHandler struct {
	sync ports.SyncService
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(sync ports.SyncService) *SyncHandler {
	return &SyncHandler{sync: sync}
}

func (h *SyncHandler) State(c echo.Context) error {
	return c.JSON(http.StatusOK, h.sync.State(getUserIDFromContext(c)))
}

func (h *SyncHandler) Reset(c echo.Context) error {
	return c.JSON(http.StatusOK, h.sync.Reset(getUserIDFromContext(c)))
}

// Utility functions and helper types

func getUserIDFromContext(c echo.Context) uuid.UUID {
	userStr, ok := c.Get("user").(string)
	if !ok {
		return uuid.Nil
	}

	userID, err := uuid.Parse(userStr)
	if err != nil {
		return uuid.Nil
	}
	return userID
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid ID")
	}
	return id, nil
}

func dateFilter(c echo.Context) ports.DateFilter {
	if date := c.QueryParam("date"); date != "" {
		return ports.ForDate(date)
	}
	return ports.DateFilter{}
}

// WriteResponse wraps the result of a write with its sync outcome.
type WriteResponse struct {
	Data interface{}       `json:"data,omitempty"`
	Sync ports.WriteResult `json:"sync"`
}

// respondWrite answers with status when the remote store accepted the write
// and with 202 when the payload only reached the local fallback.
func respondWrite(c echo.Context, status int, data interface{}, result ports.WriteResult) error {
	if !result.Saved() {
		status = http.StatusAccepted
	}
	return c.JSON(status, WriteResponse{Data: data, Sync: result})
}
