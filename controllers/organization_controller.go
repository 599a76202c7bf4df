package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/teamsales/salesportal/models"
	"github.com/teamsales/salesportal/services"
)

type OrganizationController struct {
	orgs *services.OrganizationService
}

func NewOrganizationController(orgs *services.OrganizationService) *OrganizationController {
	return &OrganizationController{orgs: orgs}
}

func (oc *OrganizationController) ListOrganizations(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	orgs, err := oc.orgs.List(ctx)
	if err != nil {
		return fail(c, err, "Could not load organizations")
	}
	return respond(c, http.StatusOK, "Organizations retrieved", orgs)
}

func (oc *OrganizationController) CreateOrganization(c echo.Context) error {
	actor, ok := actorOf(c)
	if !ok {
		return unauthenticated(c)
	}
	var req models.Organization
	if ok, err := bind(c, &req); !ok {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	org, err := oc.orgs.Create(ctx, actor, req.Name)
	if err != nil {
		return fail(c, err, "Could not create organization")
	}
	return respond(c, http.StatusCreated, "Organization created", org)
}

func (oc *OrganizationController) RenameOrganization(c echo.Context) error {
	actor, ok := actorOf(c)
	if !ok {
		return unauthenticated(c)
	}
	var req models.Organization
	if ok, err := bind(c, &req); !ok {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	id := c.Param("id")
	if err := oc.orgs.Rename(ctx, actor, id, req.Name); err != nil {
		return fail(c, err, "Could not rename organization")
	}
	return respond(c, http.StatusOK, "Organization renamed", models.Organization{ID: id, Name: req.Name})
}

func (oc *OrganizationController) DeleteOrganization(c echo.Context) error {
	actor, ok := actorOf(c)
	if !ok {
		return unauthenticated(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := oc.orgs.Delete(ctx, actor, c.Param("id")); err != nil {
		return fail(c, err, "Could not delete organization")
	}
	return respond(c, http.StatusOK, "Organization deleted", nil)
}
