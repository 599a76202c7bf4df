package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamsales/salesportal/models"
)

func client(menu ...string) Actor {
	return Actor{UID: "c1", Role: models.RoleUppdragsgivare, Menu: menu}
}

func TestClientMenu_DashboardOnlyIsForbiddenElsewhere(t *testing.T) {
	f := newDashboardFixture()
	stats := NewStatisticsService(f.users, f.reports, f.quality, f.orgs, stockholm())
	finals := NewFinalReportService(f.reports, f.users, nil)
	audits := NewQualityReportService(f.quality, nil)
	ctx := context.Background()
	c := client("client-dashboard")

	_, err := audits.List(ctx, c, models.ReportQuery{})
	assert.True(t, errors.Is(err, ErrForbidden), "quality reports")
	_, err = finals.List(ctx, c, models.ReportQuery{})
	assert.True(t, errors.Is(err, ErrForbidden), "final reports")
	_, err = stats.Statistics(ctx, c, "", "")
	assert.True(t, errors.Is(err, ErrForbidden), "statistics")
	_, err = stats.QualityStatistics(ctx, c, "", "")
	assert.True(t, errors.Is(err, ErrForbidden), "quality statistics")
}

func TestClientMenu_EnabledSectionsAreServed(t *testing.T) {
	f := newDashboardFixture()
	ctx := context.Background()

	audits, err := NewQualityReportService(f.quality, nil).List(ctx, client("client-quality"), models.ReportQuery{})
	require.NoError(t, err)
	assert.Len(t, audits, 1)

	reports, err := NewFinalReportService(f.reports, f.users, nil).List(ctx, client("client-reports"), models.ReportQuery{})
	require.NoError(t, err)
	assert.NotEmpty(t, reports)

	_, err = NewFinalReportService(f.reports, f.users, nil).List(ctx, client("client-quality"), models.ReportQuery{})
	assert.True(t, errors.Is(err, ErrForbidden))
}

func TestClientMenu_OtherRolesIgnoreMenu(t *testing.T) {
	assert.NoError(t, requireMenu(Actor{UID: "q-1", Role: models.RoleQuality}, "client-quality"))
	assert.NoError(t, requireMenu(Actor{UID: "admin-1", Role: models.RoleAdmin}))
	assert.Error(t, requireMenu(client("bogus"), "client-reports"))
}
