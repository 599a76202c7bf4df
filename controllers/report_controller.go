package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/teamsales/salesportal/models"
	"github.com/teamsales/salesportal/services"
)

// ReportController serves the final (team) reports and the quality audits.
type ReportController struct {
	final   *services.FinalReportService
	quality *services.QualityReportService
}

func NewReportController(final *services.FinalReportService, quality *services.QualityReportService) *ReportController {
	return &ReportController{final: final, quality: quality}
}

func reportQuery(c echo.Context) models.ReportQuery {
	return models.ReportQuery{
		ManagerUID: c.QueryParam("managerUid"),
		From:       c.QueryParam("from"),
		To:         c.QueryParam("to"),
	}
}

func (rc *ReportController) SubmitFinalReport(c echo.Context) error {
	actor, ok := actorOf(c)
	if !ok {
		return unauthenticated(c)
	}
	var req models.FinalReportRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	report, err := rc.final.Submit(ctx, actor, req)
	if err != nil {
		return fail(c, err, services.ErrWriteFailed)
	}
	return respond(c, http.StatusCreated, "Report saved", report)
}

func (rc *ReportController) UpdateFinalReport(c echo.Context) error {
	actor, ok := actorOf(c)
	if !ok {
		return unauthenticated(c)
	}
	var req models.FinalReportRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	report, err := rc.final.Update(ctx, actor, c.Param("id"), req)
	if err != nil {
		return fail(c, err, services.ErrWriteFailed)
	}
	return respond(c, http.StatusOK, "Report saved", report)
}

func (rc *ReportController) DeleteFinalReport(c echo.Context) error {
	actor, ok := actorOf(c)
	if !ok {
		return unauthenticated(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := rc.final.Delete(ctx, actor, c.Param("id")); err != nil {
		return fail(c, err, services.ErrWriteFailed)
	}
	return respond(c, http.StatusOK, "Report deleted", nil)
}

func (rc *ReportController) GetFinalReport(c echo.Context) error {
	actor, ok := actorOf(c)
	if !ok {
		return unauthenticated(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	report, err := rc.final.Get(ctx, actor, c.Param("id"))
	if err != nil {
		return fail(c, err, "Could not load report")
	}
	return respond(c, http.StatusOK, "Report retrieved", report)
}

// ListFinalReports filters by ?managerUid=&from=&to=.
func (rc *ReportController) ListFinalReports(c echo.Context) error {
	actor, ok := actorOf(c)
	if !ok {
		return unauthenticated(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	reports, err := rc.final.List(ctx, actor, reportQuery(c))
	if err != nil {
		return fail(c, err, "Could not load reports")
	}
	return respond(c, http.StatusOK, "Reports retrieved", reports)
}

// ListMyReports returns the caller's own report copies.
func (rc *ReportController) ListMyReports(c echo.Context) error {
	actor, ok := actorOf(c)
	if !ok {
		return unauthenticated(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	reports, err := rc.final.ListMine(ctx, actor, reportQuery(c))
	if err != nil {
		return fail(c, err, "Could not load reports")
	}
	return respond(c, http.StatusOK, "Reports retrieved", reports)
}

func (rc *ReportController) SubmitQualityReport(c echo.Context) error {
	actor, ok := actorOf(c)
	if !ok {
		return unauthenticated(c)
	}
	var req models.QualityReportRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	report, err := rc.quality.Submit(ctx, actor, req)
	if err != nil {
		return fail(c, err, services.ErrWriteFailed)
	}
	return respond(c, http.StatusCreated, "Report saved", report)
}

func (rc *ReportController) UpdateQualityReport(c echo.Context) error {
	actor, ok := actorOf(c)
	if !ok {
		return unauthenticated(c)
	}
	var req models.QualityReportRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	report, err := rc.quality.Update(ctx, actor, c.Param("id"), req)
	if err != nil {
		return fail(c, err, services.ErrWriteFailed)
	}
	return respond(c, http.StatusOK, "Report saved", report)
}

func (rc *ReportController) DeleteQualityReport(c echo.Context) error {
	actor, ok := actorOf(c)
	if !ok {
		return unauthenticated(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := rc.quality.Delete(ctx, actor, c.Param("id")); err != nil {
		return fail(c, err, services.ErrWriteFailed)
	}
	return respond(c, http.StatusOK, "Report deleted", nil)
}

func (rc *ReportController) GetQualityReport(c echo.Context) error {
	actor, ok := actorOf(c)
	if !ok {
		return unauthenticated(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	report, err := rc.quality.Get(ctx, actor, c.Param("id"))
	if err != nil {
		return fail(c, err, "Could not load report")
	}
	return respond(c, http.StatusOK, "Report retrieved", report)
}

func (rc *ReportController) ListQualityReports(c echo.Context) error {
	actor, ok := actorOf(c)
	if !ok {
		return unauthenticated(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	reports, err := rc.quality.List(ctx, actor, reportQuery(c))
	if err != nil {
		return fail(c, err, "Could not load reports")
	}
	return respond(c, http.StatusOK, "Reports retrieved", reports)
}

func (rc *ReportController) ListMyQualityReports(c echo.Context) error {
	actor, ok := actorOf(c)
	if !ok {
		return unauthenticated(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	reports, err := rc.quality.ListMine(ctx, actor, reportQuery(c))
	if err != nil {
		return fail(c, err, "Could not load reports")
	}
	return respond(c, http.StatusOK, "Reports retrieved", reports)
}
