package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/teamsales/salesportal/controllers"
	"github.com/teamsales/salesportal/middleware"
	"github.com/teamsales/salesportal/websocket"
)

// Controllers groups the handlers the API is built from.
type Controllers struct {
	Auth         *controllers.AuthController
	User         *controllers.UserController
	Organization *controllers.OrganizationController
	Report       *controllers.ReportController
	Dashboard    *controllers.DashboardController
	Statistics   *controllers.StatisticsController
	SalesSpec    *controllers.SalesSpecController
	Material     *controllers.MaterialController
}

// Guards are the authentication dependencies of the API groups.
type Guards struct {
	JWTSecret      string
	Revoked        middleware.RevocationChecker
	Sessions       middleware.SessionLoader
	Hub            *websocket.Hub
	AllowedOrigins []string
}

// profileExempt are reachable with an incomplete profile, so the user can
// fill it in.
var profileExempt = []string{"/api/profile", "/api/session", "/api/navigation", "/api/auth"}

// SetupRoutes configures all API routes by calling individual route registration functions
func SetupRoutes(e *echo.Echo, g Guards, ctrl Controllers) {
	jwt := middleware.JWTMiddleware(g.JWTSecret, g.Revoked)

	RegisterAuthRoutes(e, ctrl.Auth, jwt)
	e.GET("/api/ws", websocket.Handler(g.Hub, g.AllowedOrigins), jwt)

	api := e.Group("/api", jwt, middleware.LoadSession(g.Sessions), middleware.RequireCompleteProfile(profileExempt...))
	RegisterUserRoutes(api, ctrl.User, ctrl.SalesSpec)
	RegisterOrganizationRoutes(api, ctrl.Organization)
	RegisterReportRoutes(api, ctrl.Report)
	RegisterDashboardRoutes(api, ctrl.Dashboard, ctrl.Statistics)
	RegisterMaterialRoutes(api, ctrl.Material)
}
