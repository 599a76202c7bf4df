package services

import (
	"context"
	"sort"
	"time"

	"github.com/teamsales/salesportal/models"
	"github.com/teamsales/salesportal/security"
	"github.com/teamsales/salesportal/utils"
)

// StatisticsService computes per-seller figures over an arbitrary date range.
type StatisticsService struct {
	users   UserStore
	reports FinalReportStore
	quality QualityReportStore
	orgs    OrganizationStore
	loc     *time.Location
	now     func() time.Time
}

func NewStatisticsService(users UserStore, reports FinalReportStore, quality QualityReportStore, orgs OrganizationStore, loc *time.Location) *StatisticsService {
	return &StatisticsService{users: users, reports: reports, quality: quality, orgs: orgs, loc: loc, now: time.Now}
}

// StatRow is one seller's line on the statistics screen.
type StatRow struct {
	UID           string  `json:"uid"`
	Name          string  `json:"name"`
	SalesID       string  `json:"salesId"`
	Sales         int     `json:"sales"`
	Reactivations int     `json:"reactivations"`
	DaysPresent   int     `json:"daysPresent"`
	MeanPerDay    float64 `json:"meanPerDay"`
}

// Statistics is the statistics screen for one date range.
type Statistics struct {
	Period PeriodInfo `json:"period"`
	Rows   []StatRow  `json:"rows"`
	Totals StatRow    `json:"totals"`
	Degraded
}

// QualityStatistics is the per-member quality table for one date range.
type QualityStatistics struct {
	Period PeriodInfo   `json:"period"`
	Rows   []QualityRow `json:"rows"`
	Degraded
}

func (s *StatisticsService) window(from, to string) (utils.Period, models.ReportQuery, error) {
	p, err := utils.DateRange(from, to, s.now().In(s.loc))
	if err != nil {
		return utils.Period{}, models.ReportQuery{}, invalid("%v", err)
	}
	return p, models.ReportQuery{From: utils.FormatDate(p.Start), To: utils.FormatDate(p.End)}, nil
}

// Statistics returns rows for every user in the actor's scope: all sellers
// for admin, quality and clients, the team for a sales-manager, and the
// caller alone for a seller. Rows are ordered by sales, highest first.
func (s *StatisticsService) Statistics(ctx context.Context, actor Actor, from, to string) (*Statistics, error) {
	if err := requireMenu(actor, security.ScreenClientStatistics); err != nil {
		return nil, err
	}
	p, q, err := s.window(from, to)
	if err != nil {
		return nil, err
	}

	var (
		rows  []saleRow
		users []models.User
	)
	f := newFetchGroup(ctx)
	switch actor.Role {
	case models.RoleAdmin, models.RoleQuality, models.RoleUppdragsgivare:
		f.Go("finalReports", func(ctx context.Context) error {
			reports, err := s.reports.List(ctx, q)
			rows = flatten(reports, s.loc, nil)
			return err
		})
		f.Go("users", func(ctx context.Context) (err error) {
			users, err = s.users.List(ctx)
			return
		})
	case models.RoleSalesManager:
		team := q
		team.ManagerUID = actor.UID
		f.Go("finalReports", func(ctx context.Context) error {
			reports, err := s.reports.List(ctx, team)
			rows = flatten(reports, s.loc, nil)
			return err
		})
		f.Go("users", func(ctx context.Context) (err error) {
			users, err = s.users.ListByManager(ctx, actor.UID)
			return
		})
	case models.RoleUser:
		f.Go("reports", func(ctx context.Context) error {
			copies, err := s.reports.ListForUser(ctx, actor.UID, q)
			rows = copyRows(copies, s.loc)
			return err
		})
		f.Go("users", func(ctx context.Context) error {
			u, err := s.users.Get(ctx, actor.UID)
			if err == nil {
				users = []models.User{*u}
			}
			return err
		})
	default:
		return nil, forbidden("%s may not view statistics", actor.Role)
	}
	degraded := f.Wait()

	stats := &Statistics{Period: periodInfo(p), Rows: statRows(utils.FilterByPeriod(rows, rowDate, p), users), Degraded: degraded}
	for _, r := range stats.Rows {
		stats.Totals.Sales += r.Sales
		stats.Totals.Reactivations += r.Reactivations
		stats.Totals.DaysPresent += r.DaysPresent
	}
	stats.Totals.Name = "Totalt"
	stats.Totals.MeanPerDay = meanPerDay(stats.Totals.Sales, stats.Totals.DaysPresent)
	return stats, nil
}

func copyRows(copies []models.UserReport, loc *time.Location) []saleRow {
	rows := make([]saleRow, 0, len(copies))
	for _, c := range copies {
		d, err := utils.ParseDate(c.Date, loc)
		if err != nil {
			continue
		}
		rows = append(rows, saleRow{
			ReportID: c.FinalReportID, UID: c.UserID, Name: c.Name, SalesID: c.SalesID,
			ManagerUID: c.ManagerUID, Organisation: c.Organisation, Date: d,
			Sales: c.Sales, Reactivations: c.Reactivations, Status: c.Status,
		})
	}
	return rows
}

func meanPerDay(sales, days int) float64 {
	if days == 0 {
		return 0
	}
	return float64(sales) / float64(days)
}

// statRows builds one row per seller in scope plus anyone else who appears
// on the reports, ordered by sales, highest first.
func statRows(rows []saleRow, users []models.User) []StatRow {
	out := make([]StatRow, 0, len(users))
	index := make(map[string]int)
	add := func(uid, name, salesID string) int {
		if i, ok := index[uid]; ok {
			return i
		}
		index[uid] = len(out)
		out = append(out, StatRow{UID: uid, Name: name, SalesID: salesID})
		return len(out) - 1
	}
	for _, u := range users {
		if u.Role == models.RoleUser || u.Role == models.RoleSalesManager {
			add(u.ID, u.Name, u.SalesID)
		}
	}

	salesBy := utils.GroupSum(rows, rowUID, rowSales)
	reactBy := utils.GroupSum(rows, rowUID, rowReact)
	names := memberNames(rows)
	for gi, g := range salesBy {
		i := add(g.Key, names[g.Key], "")
		out[i].Sales = int(g.Value)
		out[i].Reactivations = int(reactBy[gi].Value)
	}
	for _, r := range rows {
		if out[index[r.UID]].SalesID == "" {
			out[index[r.UID]].SalesID = r.SalesID
		}
	}

	present := make(map[string]map[string]bool)
	for _, r := range rows {
		if r.Status != models.AttendancePresent {
			continue
		}
		if present[r.UID] == nil {
			present[r.UID] = make(map[string]bool)
		}
		present[r.UID][utils.FormatDate(r.Date)] = true
	}
	for i := range out {
		out[i].DaysPresent = len(present[out[i].UID])
		out[i].MeanPerDay = meanPerDay(out[i].Sales, out[i].DaysPresent)
	}

	sort.SliceStable(out, func(a, b int) bool { return out[a].Sales > out[b].Sales })
	return out
}

// QualityStatistics returns per-member quality totals for the date range.
func (s *StatisticsService) QualityStatistics(ctx context.Context, actor Actor, from, to string) (*QualityStatistics, error) {
	if err := requireMenu(actor, security.ScreenClientQuality); err != nil {
		return nil, err
	}
	p, q, err := s.window(from, to)
	if err != nil {
		return nil, err
	}

	var (
		reports  []models.QualityReport
		resolver *Resolver
	)
	f := newFetchGroup(ctx)
	f.Go("qualityReports", func(ctx context.Context) (err error) {
		switch actor.Role {
		case models.RoleAdmin, models.RoleQuality, models.RoleUppdragsgivare:
			reports, err = s.quality.List(ctx, q)
		default:
			reports, err = s.quality.ListAssignedTo(ctx, actor.UID, q)
		}
		return
	})
	f.Go("organizations", func(ctx context.Context) error {
		orgs, err := s.orgs.List(ctx)
		if err != nil {
			return err
		}
		resolver = NewResolver(orgs)
		return nil
	})
	degraded := f.Wait()

	rows := qualityBy(reports, resolver, false)
	if actor.Role == models.RoleUser {
		mine := make([]QualityRow, 0, 1)
		for _, r := range rows {
			if r.Key == actor.UID {
				mine = append(mine, r)
			}
		}
		rows = mine
	}
	return &QualityStatistics{Period: periodInfo(p), Rows: rows, Degraded: degraded}, nil
}
