package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/teamsales/salesportal/controllers"
	"github.com/teamsales/salesportal/middleware"
	"github.com/teamsales/salesportal/models"
)

func RegisterDashboardRoutes(api *echo.Group, dc *controllers.DashboardController, sc *controllers.StatisticsController) {
	dashboard := api.Group("/dashboard")
	dashboard.GET("/user", dc.UserDashboard, middleware.RequireRoles(models.RoleUser, models.RoleSalesManager))
	dashboard.GET("/manager", dc.ManagerDashboard, middleware.RequireRoles(models.RoleSalesManager))
	dashboard.GET("/manager/:managerUid", dc.ManagerDashboard, middleware.RequireRoles())
	dashboard.GET("/admin", dc.AdminDashboard, middleware.RequireRoles())
	dashboard.GET("/quality", dc.QualityDashboard, middleware.RequireRoles(models.RoleQuality))
	dashboard.GET("/client", dc.ClientDashboard, middleware.RequireRoles(models.RoleUppdragsgivare))

	stats := api.Group("/statistics")
	stats.GET("", sc.Statistics)
	stats.GET("/export", sc.ExportStatistics)
	stats.GET("/quality", sc.QualityStatistics)
	stats.GET("/quality/export", sc.ExportQuality)
}
