package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/teamsales/salesportal/services"
)

type DashboardController struct {
	dashboards *services.DashboardService
}

func NewDashboardController(dashboards *services.DashboardService) *DashboardController {
	return &DashboardController{dashboards: dashboards}
}

// dashboardMessage tells the portal when some sections could not be loaded.
func dashboardMessage(d services.Degraded) string {
	if d.Partial {
		return "Dashboard partially loaded"
	}
	return "Dashboard loaded"
}

func (dc *DashboardController) UserDashboard(c echo.Context) error {
	actor, ok := actorOf(c)
	if !ok {
		return unauthenticated(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	d, err := dc.dashboards.UserDashboard(ctx, actor)
	if err != nil {
		return fail(c, err, "Could not load dashboard")
	}
	return respond(c, http.StatusOK, dashboardMessage(d.Degraded), d)
}

// ManagerDashboard serves /dashboard/manager for the caller's own team and
// /dashboard/manager/:managerUid for admin.
func (dc *DashboardController) ManagerDashboard(c echo.Context) error {
	actor, ok := actorOf(c)
	if !ok {
		return unauthenticated(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	d, err := dc.dashboards.ManagerDashboard(ctx, actor, c.Param("managerUid"))
	if err != nil {
		return fail(c, err, "Could not load dashboard")
	}
	return respond(c, http.StatusOK, dashboardMessage(d.Degraded), d)
}

func (dc *DashboardController) AdminDashboard(c echo.Context) error {
	actor, ok := actorOf(c)
	if !ok {
		return unauthenticated(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	d, err := dc.dashboards.AdminDashboard(ctx, actor)
	if err != nil {
		return fail(c, err, "Could not load dashboard")
	}
	return respond(c, http.StatusOK, dashboardMessage(d.Degraded), d)
}

func (dc *DashboardController) QualityDashboard(c echo.Context) error {
	actor, ok := actorOf(c)
	if !ok {
		return unauthenticated(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	d, err := dc.dashboards.QualityDashboard(ctx, actor)
	if err != nil {
		return fail(c, err, "Could not load dashboard")
	}
	return respond(c, http.StatusOK, dashboardMessage(d.Degraded), d)
}

func (dc *DashboardController) ClientDashboard(c echo.Context) error {
	actor, ok := actorOf(c)
	if !ok {
		return unauthenticated(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	d, err := dc.dashboards.ClientDashboard(ctx, actor)
	if err != nil {
		return fail(c, err, "Could not load dashboard")
	}
	return respond(c, http.StatusOK, dashboardMessage(d.Degraded), d)
}
