package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "errors"   // errors matches the verifier's sentinel errors
    "net/http" // HTTP status codes for responses
    "strings"  // string utilities for prefix checking and trimming

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

    "github.com/iliyamo/medisafe/internal/utils" // token claims and verification errors
)

// Context keys set by the auth middleware.
const (
    ContextUserID   = "user_id"
    ContextUsername = "username"
    ContextClaims   = "claims"
)

// TokenVerifier checks a raw bearer token.  The auth service implements it.
type TokenVerifier interface {
    Verify(raw string) (utils.Claims, error)
    OptionalVerify(raw string) (utils.Claims, bool)
}

// bearerToken returns the token of an "Authorization: Bearer <token>"
// header, or "" when the header is absent or uses another scheme.
func bearerToken(c echo.Context) string {
    auth := c.Request().Header.Get(echo.HeaderAuthorization)
    if len(auth) < 7 || !strings.EqualFold(auth[:7], "Bearer ") {
        return ""
    }
    return strings.TrimSpace(auth[7:])
}

// JWTAuth returns an Echo middleware that requires a valid Bearer access
// token and injects the caller's id and username into the request context.
// A missing token and an expired token are 401; any other bad token is 403.
func JWTAuth(v TokenVerifier) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            raw := bearerToken(c)
            if raw == "" {
                return c.JSON(http.StatusUnauthorized, echo.Map{
                    "error":   "missing_token",
                    "message": "authorization bearer token required",
                })
            }
            claims, err := v.Verify(raw)
            if err != nil {
                if errors.Is(err, utils.ErrTokenExpired) {
                    return c.JSON(http.StatusUnauthorized, echo.Map{
                        "error":   "token_expired",
                        "message": "token has expired",
                    })
                }
                return c.JSON(http.StatusForbidden, echo.Map{
                    "error":   "token_invalid",
                    "message": "token is invalid",
                })
            }
            setIdentity(c, claims)
            return next(c)
        }
    }
}

// OptionalAuth sets the caller's identity when a valid token is present and
// otherwise lets the request through anonymously.
func OptionalAuth(v TokenVerifier) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if raw := bearerToken(c); raw != "" {
                if claims, ok := v.OptionalVerify(raw); ok {
                    setIdentity(c, claims)
                }
            }
            return next(c)
        }
    }
}

func setIdentity(c echo.Context, claims utils.Claims) {
    c.Set(ContextUserID, claims.UserID)
    c.Set(ContextUsername, claims.Username)
    c.Set(ContextClaims, claims)
}
