package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/teamsales/salesportal/logger"
	"github.com/teamsales/salesportal/security"
)

// RequestLogger logs one line per request to the app logger. Credentials in
// headers are dropped before logging.
func RequestLogger() echo.MiddlewareFunc {
	log := logger.Get("app")
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURIPath:   true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := logrus.Fields{
				"method":    v.Method,
				"path":      v.URIPath,
				"status":    v.Status,
				"latencyMs": v.Latency.Milliseconds(),
				"ip":        v.RemoteIP,
			}
			if v.RequestID != "" {
				fields["requestId"] = v.RequestID
			}
			if uid, err := ExtractUserID(c); err == nil {
				fields["uid"] = uid
			}
			entry := log.WithFields(fields)
			switch {
			case v.Error != nil || v.Status >= 500:
				entry.WithError(v.Error).WithField("headers", security.SanitizeHeaders(c.Request().Header)).Error("request failed")
			case v.Status >= 400:
				entry.Warn("request rejected")
			default:
				entry.Info("request")
			}
			return nil
		},
	})
}
