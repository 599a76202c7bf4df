package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/teamsales/salesportal/controllers"
)

// RegisterAuthRoutes sets up sign-in, sign-out and the session endpoints.
// Login and reset-password are rate limited per IP by path.
func RegisterAuthRoutes(e *echo.Echo, ac *controllers.AuthController, jwt echo.MiddlewareFunc) {
	auth := e.Group("/api/auth")
	auth.POST("/login", ac.Login)
	auth.POST("/reset-password", ac.ResetPassword)
	auth.POST("/logout", ac.Logout, jwt)

	e.GET("/api/session", ac.Session, jwt)
	e.GET("/api/navigation/resolve", ac.Navigate, jwt)
}
