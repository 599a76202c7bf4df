package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/teamsales/salesportal/models"
	"github.com/teamsales/salesportal/services"
)

type SalesSpecController struct {
	specs *services.SalesSpecService
}

func NewSalesSpecController(specs *services.SalesSpecService) *SalesSpecController {
	return &SalesSpecController{specs: specs}
}

func (sc *SalesSpecController) ListSalesSpecifications(c echo.Context) error {
	actor, ok := actorOf(c)
	if !ok {
		return unauthenticated(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	specs, err := sc.specs.List(ctx, actor, c.Param("uid"))
	if err != nil {
		return fail(c, err, "Could not load sales specifications")
	}
	return respond(c, http.StatusOK, "Sales specifications retrieved", specs)
}

// PrefillSalesSpecification computes the approved counts for ?period=<label>.
func (sc *SalesSpecController) PrefillSalesSpecification(c echo.Context) error {
	actor, ok := actorOf(c)
	if !ok {
		return unauthenticated(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	spec, err := sc.specs.Prefill(ctx, actor, c.Param("uid"), c.QueryParam("period"))
	if err != nil {
		return fail(c, err, "Could not compute sales specification")
	}
	return respond(c, http.StatusOK, "Sales specification computed", spec)
}

func (sc *SalesSpecController) UpsertSalesSpecification(c echo.Context) error {
	actor, ok := actorOf(c)
	if !ok {
		return unauthenticated(c)
	}
	var req models.SalesSpecificationRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	spec, err := sc.specs.Upsert(ctx, actor, c.Param("uid"), req)
	if err != nil {
		return fail(c, err, "Could not save sales specification")
	}
	return respond(c, http.StatusOK, "Sales specification saved", spec)
}
