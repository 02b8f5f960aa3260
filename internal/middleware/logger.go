package middleware

import (
    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"
    "github.com/sirupsen/logrus"
)

// RequestLogger writes one structured line per request.  Server errors log
// at error level with the underlying cause; the client only ever sees the
// shaped response.
func RequestLogger(log logrus.FieldLogger) echo.MiddlewareFunc {
    return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
        LogMethod:    true,
        LogURI:       true,
        LogStatus:    true,
        LogLatency:   true,
        LogRemoteIP:  true,
        LogRequestID: true,
        LogError:     true,
        HandleError:  true, // commit the error response so the logged status is final
        LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
            fields := logrus.Fields{
                "method":     v.Method,
                "uri":        v.URI,
                "status":     v.Status,
                "latency_ms": v.Latency.Milliseconds(),
                "remote_ip":  v.RemoteIP,
                "request_id": v.RequestID,
            }
            if id, ok := UserID(c); ok {
                fields["user_id"] = id
            }
            entry := log.WithFields(fields)
            switch {
            case v.Status >= 500:
                if v.Error != nil {
                    entry = entry.WithError(v.Error)
                }
                entry.Error("request")
            case v.Status >= 400:
                entry.Warn("request")
            default:
                entry.Info("request")
            }
            return nil
        },
    })
}
