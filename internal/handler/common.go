package handler // handler defines http handlers

import (
    "net/http" // http provides status code constants
    "strconv"  // strconv converts strings to numeric types

    "github.com/labstack/echo/v4" // echo defines request context types

    "github.com/iliyamo/medisafe/internal/middleware" // middleware stores the caller identity
)

// getUserID returns the authenticated caller.  Protected routes run behind
// JWTAuth, so a missing identity is a wiring bug reported as 401.
func getUserID(c echo.Context) (int64, error) {
    id, ok := middleware.UserID(c) // read what JWTAuth stored
    if !ok {
        return 0, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
    }
    return id, nil
}

// parseID reads the positive integer :id path parameter.
func parseID(c echo.Context) (int64, error) {
    id, err := strconv.ParseInt(c.Param("id"), 10, 64) // parse the identifier from the URL
    if err != nil || id <= 0 {                          // reject non-numeric and non-positive ids
        return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
    }
    return id, nil
}

// bind decodes the JSON body into dst.  A malformed body is a 400.
func bind(c echo.Context, dst any) error {
    if err := c.Bind(dst); err != nil {
        return echo.NewHTTPError(http.StatusBadRequest, "invalid request body").SetInternal(err)
    }
    return nil
}

// deleted is the body returned after a successful delete.
func deleted(c echo.Context, what string) error {
    return c.JSON(http.StatusOK, echo.Map{"message": what + " deleted"})
}
