package handler // declare the package name; contains HTTP handlers

import (
    "context"  // context bounds the database ping
    "net/http" // net/http provides status codes and response helpers
    "time"     // time stamps the response

    "github.com/labstack/echo/v4" // echo is the web framework used for this project

    "github.com/iliyamo/medisafe/internal/middleware" // middleware exposes the optional caller identity
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
    PingContext(ctx context.Context) error
}

// HealthHandler reports liveness and whether the database answers.
type HealthHandler struct {
    DB  Pinger
    Now func() time.Time
}

// Health is used by load balancers and monitoring systems to verify that
// the service is running.  It always answers 200; a failing database shows
// up as status "degraded".  Behind OptionalAuth it also reports whether the
// caller presented a valid token.
func (h *HealthHandler) Health(c echo.Context) error {
    now := time.Now
    if h.Now != nil {
        now = h.Now
    }
    status, db := "ok", "ok"
    if h.DB != nil {
        ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
        defer cancel()
        if err := h.DB.PingContext(ctx); err != nil {
            status, db = "degraded", "unavailable"
        }
    }
    _, authed := middleware.UserID(c)
    return c.JSON(http.StatusOK, echo.Map{
        "status":        status,
        "database":      db,
        "timestamp":     now().UTC(),
        "authenticated": authed,
    })
}
