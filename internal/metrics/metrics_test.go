package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware_LabelsRouteTemplate(t *testing.T) {
	e := echo.New()
	e.Use(Middleware())
	e.GET("/things/:id", func(c echo.Context) error {
		if c.Param("id") == "0" {
			return echo.NewHTTPError(http.StatusNotFound)
		}
		return c.NoContent(http.StatusOK)
	})

	ok := httpRequests.WithLabelValues("GET", "/things/:id", "200")
	missing := httpRequests.WithLabelValues("GET", "/things/:id", "404")
	beforeOK, beforeMissing := testutil.ToFloat64(ok), testutil.ToFloat64(missing)

	for _, path := range []string{"/things/1", "/things/2", "/things/0"} {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}
	assert.Equal(t, beforeOK+2, testutil.ToFloat64(ok))
	assert.Equal(t, beforeMissing+1, testutil.ToFloat64(missing))
}

func TestRecordNotification(t *testing.T) {
	sent := reminderNotifications.WithLabelValues("due", "sent")
	failed := reminderNotifications.WithLabelValues("due", "failed")
	s0, f0 := testutil.ToFloat64(sent), testutil.ToFloat64(failed)

	RecordNotification("due", nil)
	RecordNotification("due", errors.New("broker down"))
	assert.Equal(t, s0+1, testutil.ToFloat64(sent))
	assert.Equal(t, f0+1, testutil.ToFloat64(failed))
}
