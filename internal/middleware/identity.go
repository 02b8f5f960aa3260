package middleware

// identity.go defines helpers shared across middleware files.  They read the
// caller identity that JWTAuth or OptionalAuth stored in the Echo context.

import (
    "strconv"

    "github.com/labstack/echo/v4"
)

// UserID returns the authenticated caller's id.
func UserID(c echo.Context) (int64, bool) {
    id, ok := c.Get(ContextUserID).(int64)
    return id, ok && id > 0
}

// currentUserID renders the caller for use in keys, "anon" when nobody is
// authenticated.
func currentUserID(c echo.Context) string {
    if id, ok := UserID(c); ok {
        return strconv.FormatInt(id, 10)
    }
    return "anon"
}
