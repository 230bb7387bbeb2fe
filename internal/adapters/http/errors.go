package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/daybook/core/internal/domain/entities"
	"github.com/daybook/core/internal/infrastructure/logger"
	"github.com/daybook/core/internal/ports"
)

// Validator adapts go-playground/validator to echo.
type Validator struct {
	validator *validator.Validate
}

// NewValidator creates the request validator
func NewValidator() *Validator {
	return &Validator{validator: validator.New()}
}

// Validate validates structs
func (v *Validator) Validate(i interface{}) error {
	return v.validator.Struct(i)
}

// StatusFor maps a service error to an HTTP status code.
func StatusFor(err error) int {
	var validationErrs validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrs),
		errors.Is(err, entities.ErrInvalidInput),
		errors.Is(err, entities.ErrInvalidDate):
		return http.StatusBadRequest
	case errors.Is(err, entities.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, entities.ErrUserExists):
		return http.StatusConflict
	case errors.Is(err, entities.ErrThresholdNotReached):
		return http.StatusUnprocessableEntity
	case errors.Is(err, entities.ErrNotFound),
		errors.Is(err, entities.ErrUserNotFound),
		errors.Is(err, entities.ErrNoteNotFound),
		errors.Is(err, entities.ErrFutureTaskNotFound),
		errors.Is(err, entities.ErrSpecialDayNotFound):
		return http.StatusNotFound
	case errors.Is(err, entities.ErrSnapshotUnavailable):
		return http.StatusServiceUnavailable
	}

	switch entities.KindOf(err) {
	case entities.KindNotFound:
		return http.StatusNotFound
	case entities.KindInvalid:
		return http.StatusBadRequest
	case entities.KindUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// ErrorHandler renders errors as ports.ErrorResponse.
func ErrorHandler(log *logger.Logger) echo.HTTPErrorHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return func(err error, c echo.Context) {
		var (
			code int
			resp ports.ErrorResponse
		)

		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			resp.Message = fmt.Sprint(he.Message)
			if he.Internal != nil {
				err = fmt.Errorf("%v, %v", err, he.Internal)
			}
		} else {
			code = StatusFor(err)
			resp.Message = err.Error()

			var validationErrs validator.ValidationErrors
			if errors.As(err, &validationErrs) {
				resp.Message = "validation failed"
				fields := make(map[string]interface{}, len(validationErrs))
				for _, fe := range validationErrs {
					fields[fe.Field()] = fe.Tag()
				}
				resp.Details = fields
			}
		}

		if code >= http.StatusInternalServerError {
			log.Errorw("Request failed", "error", err, "path", c.Request().URL.Path, "status", code)
			if code == http.StatusInternalServerError {
				resp.Message = http.StatusText(code)
			}
		}

		if c.Response().Committed {
			return
		}
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, resp)
		}
		if err != nil {
			log.Errorw("Error sending response", "error", err)
		}
	}
}
