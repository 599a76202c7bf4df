package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/teamsales/salesportal/controllers"
	"github.com/teamsales/salesportal/middleware"
	"github.com/teamsales/salesportal/models"
)

func RegisterUserRoutes(api *echo.Group, uc *controllers.UserController, sc *controllers.SalesSpecController) {
	api.GET("/profile", uc.GetProfile)
	api.PUT("/profile", uc.UpdateProfile)

	managers := middleware.RequireRoles(models.RoleSalesManager)
	admin := middleware.RequireRoles()

	users := api.Group("/users")
	users.POST("", uc.CreateUser, managers)
	users.GET("", uc.ListUsers, managers)
	users.GET("/export", uc.ExportUsers, managers)
	users.GET("/:uid", uc.GetUser)
	users.PUT("/:uid", uc.UpdateUser, admin)
	users.PUT("/:uid/manager", uc.AssignManager, admin)
	users.PUT("/:uid/material-lock", uc.SetMaterialLock, admin)
	users.DELETE("/:uid", uc.DeleteUser, admin)

	// Sales specifications: admin edits, the user reads their own.
	users.GET("/:uid/sales-specifications", sc.ListSalesSpecifications)
	users.GET("/:uid/sales-specifications/prefill", sc.PrefillSalesSpecification)
	users.PUT("/:uid/sales-specifications", sc.UpsertSalesSpecification, admin)
}

func RegisterOrganizationRoutes(api *echo.Group, oc *controllers.OrganizationController) {
	admin := middleware.RequireRoles()

	orgs := api.Group("/organizations")
	orgs.GET("", oc.ListOrganizations)
	orgs.POST("", oc.CreateOrganization, admin)
	orgs.PUT("/:id", oc.RenameOrganization, admin)
	orgs.DELETE("/:id", oc.DeleteOrganization, admin)
}
