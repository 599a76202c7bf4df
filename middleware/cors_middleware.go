package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
)

// defaultOrigins are the portal's local dev servers.
var defaultOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
}

// CORS allows the portal origins. Configured origins are added to the dev
// defaults outside production and replace them in production.
func CORS(origins []string, production bool) echo.MiddlewareFunc {
	allowed := make([]string, 0, len(origins)+len(defaultOrigins))
	if !production {
		allowed = append(allowed, defaultOrigins...)
	}
	for _, o := range origins {
		if o = strings.TrimSpace(o); o != "" {
			allowed = append(allowed, o)
		}
	}
	return echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins:     allowed,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		ExposeHeaders:    []string{echo.HeaderContentDisposition, echo.HeaderContentLength},
		AllowCredentials: true,
		MaxAge:           86400,
	})
}
