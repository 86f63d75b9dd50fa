package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/pkg/validate"
)

type validationBody struct {
	Message string                `json:"message"`
	Errors  []validate.FieldError `json:"errors,omitempty"`
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// fail logs a failed service call under event and turns err into the
// HTTP error the client receives. Internal details never reach the body.
func fail(c echo.Context, l *slog.Logger, event string, err error) error {
	code := statusOf(err)
	switch code {
	case http.StatusInternalServerError:
		l.Error(event, "status", code, "error", err)
		return echo.NewHTTPError(code, "internal error").SetInternal(err)
	case http.StatusUnauthorized:
		c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	case http.StatusBadRequest:
		l.Warn(event, "status", code, "reason", err.Error())
		return echo.NewHTTPError(code, validationBody{Message: err.Error(), Errors: validate.Messages(err)})
	}
	l.Warn(event, "status", code, "reason", err.Error())
	return echo.NewHTTPError(code, err.Error())
}

func badRequest(l *slog.Logger, event, reason string, err error) error {
	l.Warn(event, "status", http.StatusBadRequest, "reason", reason, "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, reason)
}
