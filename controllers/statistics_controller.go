package controllers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/teamsales/salesportal/services"
	"github.com/teamsales/salesportal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type StatisticsController struct {
	stats   *services.StatisticsService
	exports *services.ExportService
}

func NewStatisticsController(stats *services.StatisticsService, exports *services.ExportService) *StatisticsController {
	return &StatisticsController{stats: stats, exports: exports}
}

func attachment(c echo.Context, filename string, data *bytes.Buffer) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, xlsxContentType, data.Bytes())
}

// Statistics serves ?from=&to=. Both default to the current period.
func (sc *StatisticsController) Statistics(c echo.Context) error {
	actor, ok := actorOf(c)
	if !ok {
		return unauthenticated(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	stats, err := sc.stats.Statistics(ctx, actor, c.QueryParam("from"), c.QueryParam("to"))
	if err != nil {
		return fail(c, err, "Could not load statistics")
	}
	return respond(c, http.StatusOK, dashboardMessage(stats.Degraded), stats)
}

func (sc *StatisticsController) QualityStatistics(c echo.Context) error {
	actor, ok := actorOf(c)
	if !ok {
		return unauthenticated(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	stats, err := sc.stats.QualityStatistics(ctx, actor, c.QueryParam("from"), c.QueryParam("to"))
	if err != nil {
		return fail(c, err, "Could not load statistics")
	}
	return respond(c, http.StatusOK, dashboardMessage(stats.Degraded), stats)
}

func (sc *StatisticsController) ExportStatistics(c echo.Context) error {
	actor, ok := actorOf(c)
	if !ok {
		return unauthenticated(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	stats, err := sc.stats.Statistics(ctx, actor, c.QueryParam("from"), c.QueryParam("to"))
	if err != nil {
		return fail(c, err, "Could not load statistics")
	}
	data, err := sc.exports.Statistics(stats)
	if err != nil {
		return fail(c, err, "Could not build export")
	}
	return attachment(c, fmt.Sprintf("statistik-%s.xlsx", utils.FormatDate(stats.Period.Start)), data)
}

func (sc *StatisticsController) ExportQuality(c echo.Context) error {
	actor, ok := actorOf(c)
	if !ok {
		return unauthenticated(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	stats, err := sc.stats.QualityStatistics(ctx, actor, c.QueryParam("from"), c.QueryParam("to"))
	if err != nil {
		return fail(c, err, "Could not load statistics")
	}
	data, err := sc.exports.Quality(stats)
	if err != nil {
		return fail(c, err, "Could not build export")
	}
	return attachment(c, fmt.Sprintf("kvalitet-%s.xlsx", utils.FormatDate(stats.Period.Start)), data)
}
