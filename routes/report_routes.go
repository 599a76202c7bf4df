package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/teamsales/salesportal/controllers"
	"github.com/teamsales/salesportal/middleware"
	"github.com/teamsales/salesportal/models"
)

// RegisterReportRoutes sets up final reports, quality reports and the
// caller's own report copies. Row-level scoping is done by the services.
func RegisterReportRoutes(api *echo.Group, rc *controllers.ReportController) {
	writers := middleware.RequireRoles(models.RoleSalesManager)
	auditors := middleware.RequireRoles(models.RoleQuality)

	final := api.Group("/final-reports")
	final.POST("", rc.SubmitFinalReport, writers)
	final.GET("", rc.ListFinalReports, middleware.RequireRoles(models.RoleSalesManager, models.RoleQuality, models.RoleUppdragsgivare))
	final.GET("/:id", rc.GetFinalReport)
	final.PUT("/:id", rc.UpdateFinalReport, writers)
	final.DELETE("/:id", rc.DeleteFinalReport, writers)

	quality := api.Group("/quality-reports")
	quality.POST("", rc.SubmitQualityReport, auditors)
	quality.GET("", rc.ListQualityReports, middleware.RequireRoles(models.RoleQuality, models.RoleUppdragsgivare, models.RoleSalesManager))
	quality.GET("/:id", rc.GetQualityReport)
	quality.PUT("/:id", rc.UpdateQualityReport, auditors)
	quality.DELETE("/:id", rc.DeleteQualityReport, auditors)

	me := api.Group("/me")
	me.GET("/reports", rc.ListMyReports)
	me.GET("/quality-reports", rc.ListMyQualityReports)
}
