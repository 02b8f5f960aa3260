package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/medisafe/internal/logging"
	"github.com/iliyamo/medisafe/internal/service"
	"github.com/iliyamo/medisafe/internal/validation"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{validation.NewError("name", "is required", ""), http.StatusBadRequest, "validation_failed"},
		{service.ErrMissingToken, http.StatusUnauthorized, "missing_token"},
		{service.ErrTokenExpired, http.StatusUnauthorized, "token_expired"},
		{service.ErrTokenInvalid, http.StatusForbidden, "token_invalid"},
		{service.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
		{service.ErrUserExists, http.StatusBadRequest, "user_exists"},
		{fmt.Errorf("get goal: %w", service.ErrNotFound), http.StatusNotFound, "not_found"},
		{echo.NewHTTPError(http.StatusBadRequest, "invalid id"), http.StatusBadRequest, "bad_request"},
		{echo.ErrMethodNotAllowed, http.StatusMethodNotAllowed, "method_not_allowed"},
		{fmt.Errorf("list: %w: %w", service.ErrStoreUnavailable, errors.New("dial tcp")), http.StatusInternalServerError, "internal_error"},
		{echo.NewHTTPError(http.StatusServiceUnavailable, "db secret"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		status, body := classify(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.code, body.Error, tc.err.Error())
	}
}

func TestHTTPErrorHandler_HidesCause(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	NewHTTPErrorHandler(logging.Discard())(errors.New("pq: password authentication failed"), c)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
	assert.JSONEq(t, `{"error":"internal_error","message":"Internal server error"}`, rec.Body.String())

	// a committed response is left alone
	NewHTTPErrorHandler(logging.Discard())(service.ErrNotFound, c)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
