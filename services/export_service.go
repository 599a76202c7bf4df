package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/teamsales/salesportal/models"
)

// Column headings of each exported screen.
var (
	UserColumns       = []string{"Namn", "E-post", "Roll", "Sälj-ID", "Chef", "Sista arbetsdag", "Telefon"}
	StatisticsColumns = []string{"Namn", "Sälj-ID", "Försäljning", "Återaktiveringar", "Dagar närvarande", "Snitt per dag"}
	QualityColumns    = []string{"Namn", "Organisation", "Reg. sälj", "Ogiltiga", "Utanför mål", "Väntande", "Totalt"}
)

// ExportService renders the rows a screen shows as an xlsx workbook.
type ExportService struct{}

func NewExportService() *ExportService { return &ExportService{} }

// Users exports users with their manager's name resolved from the same list.
func (ExportService) Users(users []models.User) (*bytes.Buffer, error) {
	names := userNames(users)
	rows := make([][]interface{}, 0, len(users))
	for _, u := range users {
		rows = append(rows, []interface{}{
			u.Name, u.Email, string(u.Role), u.SalesID, names[u.ManagerUID], u.SistaArbetsdag, u.Telefon,
		})
	}
	return workbook("Användare", UserColumns, rows)
}

func (ExportService) Statistics(stats *Statistics) (*bytes.Buffer, error) {
	rows := make([][]interface{}, 0, len(stats.Rows)+1)
	for _, r := range stats.Rows {
		rows = append(rows, statLine(r))
	}
	rows = append(rows, statLine(stats.Totals))
	return workbook("Statistik", StatisticsColumns, rows)
}

func (ExportService) Quality(stats *QualityStatistics) (*bytes.Buffer, error) {
	rows := make([][]interface{}, 0, len(stats.Rows))
	for _, r := range stats.Rows {
		rows = append(rows, []interface{}{r.Name, r.Organisation, r.RegSales, r.InvalidAmount, r.OutOfTarget, r.Pending, r.Total})
	}
	return workbook("Kvalitet", QualityColumns, rows)
}

func statLine(r StatRow) []interface{} {
	return []interface{}{r.Name, r.SalesID, r.Sales, r.Reactivations, r.DaysPresent, round2(r.MeanPerDay)}
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}

// workbook writes one sheet with a bold header row followed by rows.
func workbook(sheet string, header []string, rows [][]interface{}) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}
	head := make([]interface{}, len(header))
	for i, h := range header {
		head[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &head); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := row
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	return f.WriteToBuffer()
}
