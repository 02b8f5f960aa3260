package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/medisafe/internal/metrics"
	"github.com/iliyamo/medisafe/internal/middleware"
	"github.com/iliyamo/medisafe/internal/model"
	"github.com/iliyamo/medisafe/internal/service"
	"github.com/iliyamo/medisafe/internal/utils"
	"github.com/iliyamo/medisafe/internal/validation"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{Auth: auth}
}

type authResp struct {
	Message   string     `json:"message"`
	User      model.User `json:"user"`
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
}

// Register: create user and return a token immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req service.RegisterInput
	if err := bind(c, &req); err != nil {
		return err
	}
	u, tok, err := h.Auth.Register(c.Request().Context(), req)
	metrics.RecordAuth("register", outcome(err))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, authResp{
		Message:   "User registered",
		User:      u,
		Token:     tok.Token,
		ExpiresAt: tok.Exp,
	})
}

// Login: verify credentials and return a fresh token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req service.LoginInput
	if err := bind(c, &req); err != nil {
		return err
	}
	u, tok, err := h.Auth.Login(c.Request().Context(), req)
	metrics.RecordAuth("login", outcome(err))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, authResp{
		Message:   "Login successful",
		User:      u,
		Token:     tok.Token,
		ExpiresAt: tok.Exp,
	})
}

// Profile returns the caller's account.
func (h *AuthHandler) Profile(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	u, err := h.Auth.Profile(c.Request().Context(), uid)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"user": u})
}

// Verify confirms the token is valid and returns its owner.
func (h *AuthHandler) Verify(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	u, err := h.Auth.Profile(c.Request().Context(), uid)
	if err != nil {
		return err
	}
	resp := echo.Map{"valid": true, "user": u}
	if claims, ok := c.Get(middleware.ContextClaims).(utils.Claims); ok && claims.ExpiresAt != nil {
		resp["expires_at"] = claims.ExpiresAt.Time
	}
	return c.JSON(http.StatusOK, resp)
}

func outcome(err error) string {
	var verr *validation.Error
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &verr):
		return "validation_failed"
	case errors.Is(err, service.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, service.ErrUserExists):
		return "user_exists"
	}
	return "error"
}
