package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/teamsales/salesportal/models"
	"github.com/teamsales/salesportal/services"
)

type MaterialController struct {
	material *services.MaterialService
}

func NewMaterialController(material *services.MaterialService) *MaterialController {
	return &MaterialController{material: material}
}

// managerOf returns the :managerUid path parameter, or the caller on the
// /material/mine routes.
func managerOf(c echo.Context, actor services.Actor) string {
	if uid := c.Param("managerUid"); uid != "" {
		return uid
	}
	return actor.UID
}

func (mc *MaterialController) ListItems(c echo.Context) error {
	actor, ok := actorOf(c)
	if !ok {
		return unauthenticated(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	items, err := mc.material.List(ctx, actor, managerOf(c, actor))
	if err != nil {
		return fail(c, err, "Could not load material")
	}
	return respond(c, http.StatusOK, "Material retrieved", items)
}

func (mc *MaterialController) GetItem(c echo.Context) error {
	actor, ok := actorOf(c)
	if !ok {
		return unauthenticated(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	item, err := mc.material.Get(ctx, actor, managerOf(c, actor), c.Param("itemId"))
	if err != nil {
		return fail(c, err, "Could not load material")
	}
	return respond(c, http.StatusOK, "Material retrieved", item)
}

func (mc *MaterialController) CreateItem(c echo.Context) error {
	actor, ok := actorOf(c)
	if !ok {
		return unauthenticated(c)
	}
	var req models.MaterialItemRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	item, err := mc.material.Create(ctx, actor, managerOf(c, actor), req)
	if err != nil {
		return fail(c, err, "Could not save material")
	}
	return respond(c, http.StatusCreated, "Material saved", item)
}

func (mc *MaterialController) UpdateItem(c echo.Context) error {
	actor, ok := actorOf(c)
	if !ok {
		return unauthenticated(c)
	}
	var req models.MaterialItemRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	item, err := mc.material.Update(ctx, actor, managerOf(c, actor), c.Param("itemId"), req)
	if err != nil {
		return fail(c, err, "Could not save material")
	}
	return respond(c, http.StatusOK, "Material saved", item)
}

func (mc *MaterialController) DeleteItem(c echo.Context) error {
	actor, ok := actorOf(c)
	if !ok {
		return unauthenticated(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := mc.material.Delete(ctx, actor, managerOf(c, actor), c.Param("itemId")); err != nil {
		return fail(c, err, "Could not delete material")
	}
	return respond(c, http.StatusOK, "Material deleted", nil)
}

// ReportIncident appends to the item's incident log.
func (mc *MaterialController) ReportIncident(c echo.Context) error {
	actor, ok := actorOf(c)
	if !ok {
		return unauthenticated(c)
	}
	var req models.IncidentReportRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	report, err := mc.material.Report(ctx, actor, managerOf(c, actor), c.Param("itemId"), req)
	if err != nil {
		return fail(c, err, "Could not save incident")
	}
	return respond(c, http.StatusCreated, "Incident saved", report)
}

// Label returns the item's barcode as a PNG.
func (mc *MaterialController) Label(c echo.Context) error {
	actor, ok := actorOf(c)
	if !ok {
		return unauthenticated(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	png, err := mc.material.Label(ctx, actor, managerOf(c, actor), c.Param("itemId"))
	if err != nil {
		return fail(c, err, "Could not render label")
	}
	return c.Blob(http.StatusOK, "image/png", png)
}
