// middleware/security_headers.go
package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// SecurityConfig shapes the Content-Security-Policy.
type SecurityConfig struct {
	ConnectSources []string
	HSTS           bool
}

func SecurityHeaders(config SecurityConfig) echo.MiddlewareFunc {
	csp := buildCSP(config)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set("X-Frame-Options", "DENY")
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
			h.Set("Content-Security-Policy", csp)
			if config.HSTS {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}
			h.Del("Server")
			h.Del("X-Powered-By")
			return next(c)
		}
	}
}

// The API only serves JSON, spreadsheets and label images.
func buildCSP(config SecurityConfig) string {
	csp := []string{
		"default-src 'none'",
		"img-src 'self' data:",
		"frame-ancestors 'none'",
	}
	if len(config.ConnectSources) > 0 {
		csp = append(csp, "connect-src 'self' "+strings.Join(config.ConnectSources, " "))
	}
	return strings.Join(csp, "; ")
}

// HTTPSRedirect sends plain-http requests arriving through a TLS-terminating
// proxy to https.
func HTTPSRedirect() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Header.Get("X-Forwarded-Proto") == "http" {
				return c.Redirect(http.StatusMovedPermanently, "https://"+c.Request().Host+c.Request().RequestURI)
			}
			return next(c)
		}
	}
}
