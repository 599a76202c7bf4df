package services

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/teamsales/salesportal/models"
)

func readSheet(t *testing.T, buf *bytes.Buffer, sheet string) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	return rows
}

func TestExportUsers(t *testing.T) {
	buf, err := NewExportService().Users([]models.User{
		{ID: "m1", Name: "Maria", Email: "maria@example.com", Role: models.RoleSalesManager},
		{ID: "u1", Name: "Ulla", Email: "ulla@example.com", Role: models.RoleUser, ManagerUID: "m1",
			SalesID: "S-1", SistaArbetsdag: "2024-05-31", Profile: models.Profile{Telefon: "070-1234567"}},
	})
	require.NoError(t, err)

	rows := readSheet(t, buf, "Användare")
	require.Len(t, rows, 3)
	assert.Equal(t, UserColumns, rows[0])
	assert.Equal(t, []string{"Ulla", "ulla@example.com", "user", "S-1", "Maria", "2024-05-31", "070-1234567"}, rows[2])
}

func TestExportStatistics(t *testing.T) {
	buf, err := NewExportService().Statistics(&Statistics{
		Rows:   []StatRow{{Name: "Ulla", SalesID: "S-1", Sales: 7, Reactivations: 1, DaysPresent: 2, MeanPerDay: 3.5}},
		Totals: StatRow{Name: "Totalt", Sales: 7, Reactivations: 1, DaysPresent: 2, MeanPerDay: 3.5},
	})
	require.NoError(t, err)

	rows := readSheet(t, buf, "Statistik")
	require.Len(t, rows, 3)
	assert.Equal(t, StatisticsColumns, rows[0])
	assert.Equal(t, "Ulla", rows[1][0])
	assert.Equal(t, "7", rows[1][2])
	assert.Equal(t, "Totalt", rows[2][0])
}

func TestExportQuality(t *testing.T) {
	stats := &QualityStatistics{Rows: []QualityRow{{Key: "u1", Name: "Ulla", Organisation: "Org A",
		QualityTotals: QualityTotals{RegSales: 5, InvalidAmount: 1, Total: 5}}}}
	buf, err := NewExportService().Quality(stats)
	require.NoError(t, err)

	rows := readSheet(t, buf, "Kvalitet")
	require.Len(t, rows, 2)
	assert.Equal(t, QualityColumns, rows[0])
	assert.Equal(t, []string{"Ulla", "Org A", "5", "1", "0", "0", "5"}, rows[1])
}
