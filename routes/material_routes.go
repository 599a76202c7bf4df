package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/teamsales/salesportal/controllers"
	"github.com/teamsales/salesportal/middleware"
	"github.com/teamsales/salesportal/models"
)

// RegisterMaterialRoutes mounts the same handlers twice: /material/mine for
// the calling sales-manager and /material/:managerUid for admin.
func RegisterMaterialRoutes(api *echo.Group, mc *controllers.MaterialController) {
	material := api.Group("/material", middleware.RequireRoles(models.RoleSalesManager))
	for _, prefix := range []string{"/mine/items", "/:managerUid/items"} {
		items := material.Group(prefix)
		items.GET("", mc.ListItems)
		items.POST("", mc.CreateItem)
		items.GET("/:itemId", mc.GetItem)
		items.PUT("/:itemId", mc.UpdateItem)
		items.DELETE("/:itemId", mc.DeleteItem)
		items.POST("/:itemId/reports", mc.ReportIncident)
		items.GET("/:itemId/label.png", mc.Label)
	}
}
