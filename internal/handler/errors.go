package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/medisafe/internal/service"
	"github.com/iliyamo/medisafe/internal/validation"
)

// errorBody is the shape of every error response.
type errorBody struct {
	Error   string                   `json:"error"`
	Message string                   `json:"message"`
	Details []validation.FieldError `json:"details,omitempty"`
}

// NewHTTPErrorHandler maps errors returned by handlers to responses.  Known
// errors get their status and a stable code; anything else is logged with
// its cause and answered with an opaque 500.
func NewHTTPErrorHandler(log logrus.FieldLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status, body := classify(err)
		if status >= http.StatusInternalServerError {
			log.WithError(err).WithFields(logrus.Fields{
				"method":     c.Request().Method,
				"uri":        c.Request().RequestURI,
				"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
			}).Error("unhandled error")
		}
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			log.WithError(err).Warn("write error response")
		}
	}
}

func classify(err error) (int, errorBody) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		return http.StatusBadRequest, errorBody{
			Error:   "validation_failed",
			Message: "Validation failed",
			Details: verr.Fields,
		}
	}
	switch {
	case errors.Is(err, service.ErrMissingToken):
		return http.StatusUnauthorized, errorBody{Error: "missing_token", Message: "authorization bearer token required"}
	case errors.Is(err, service.ErrTokenExpired):
		return http.StatusUnauthorized, errorBody{Error: "token_expired", Message: "token has expired"}
	case errors.Is(err, service.ErrTokenInvalid):
		return http.StatusForbidden, errorBody{Error: "token_invalid", Message: "token is invalid"}
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorBody{Error: "invalid_credentials", Message: "Invalid username or password"}
	case errors.Is(err, service.ErrUserExists):
		return http.StatusBadRequest, errorBody{Error: "user_exists", Message: "Username is already taken"}
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, errorBody{Error: "not_found", Message: "Resource not found"}
	}

	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code < http.StatusInternalServerError {
		msg := http.StatusText(he.Code)
		if s, ok := he.Message.(string); ok && s != "" {
			msg = s
		}
		return he.Code, errorBody{Error: code(he.Code), Message: msg}
	}
	return http.StatusInternalServerError, errorBody{Error: "internal_error", Message: "Internal server error"}
}

// code turns a status into a snake_case error code.
func code(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case http.StatusRequestEntityTooLarge:
		return "payload_too_large"
	case http.StatusTooManyRequests:
		return "too_many_requests"
	case http.StatusUnsupportedMediaType:
		return "unsupported_media_type"
	}
	return fmt.Sprintf("http_%d", status)
}
