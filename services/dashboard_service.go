package services

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/teamsales/salesportal/logger"
	"github.com/teamsales/salesportal/models"
	"github.com/teamsales/salesportal/security"
	"github.com/teamsales/salesportal/utils"
)

// DashboardService builds the per-role dashboards from reports fetched
// concurrently. A fetch that fails leaves its section empty and marks the
// dashboard partial.
type DashboardService struct {
	users   UserStore
	reports FinalReportStore
	quality QualityReportStore
	orgs    OrganizationStore
	loc     *time.Location
	now     func() time.Time
}

func NewDashboardService(users UserStore, reports FinalReportStore, quality QualityReportStore, orgs OrganizationStore, loc *time.Location) *DashboardService {
	return &DashboardService{users: users, reports: reports, quality: quality, orgs: orgs, loc: loc, now: time.Now}
}

// fetchGroup runs named fetches in parallel and records which ones failed.
type fetchGroup struct {
	eg     *errgroup.Group
	ctx    context.Context
	mu     sync.Mutex
	failed []string
}

func newFetchGroup(ctx context.Context) *fetchGroup {
	eg, egCtx := errgroup.WithContext(ctx)
	return &fetchGroup{eg: eg, ctx: egCtx}
}

func (f *fetchGroup) Go(name string, fetch func(ctx context.Context) error) {
	f.eg.Go(func() error {
		if err := fetch(f.ctx); err != nil {
			logger.Get("app").WithError(err).WithField("collection", name).Error("dashboard fetch failed")
			f.mu.Lock()
			f.failed = append(f.failed, name)
			f.mu.Unlock()
		}
		return nil
	})
}

// fetchResolver loads the organizations into dst. When the fetch fails dst
// stays nil and names pass through unresolved.
func (s *DashboardService) fetchResolver(f *fetchGroup, dst **Resolver) {
	f.Go("organizations", func(ctx context.Context) error {
		orgs, err := s.orgs.List(ctx)
		if err != nil {
			return err
		}
		*dst = NewResolver(orgs)
		return nil
	})
}

func (f *fetchGroup) Wait() Degraded {
	_ = f.eg.Wait()
	return Degraded{Partial: len(f.failed) > 0, FailedSections: f.failed}
}

// Degraded flags a response built from incomplete data.
type Degraded struct {
	Partial        bool     `json:"partial"`
	FailedSections []string `json:"failedSections,omitempty"`
}

// saleRow is one member's result on one final report.
type saleRow struct {
	ReportID      string
	UID           string
	Name          string
	SalesID       string
	ManagerUID    string
	Organisation  string
	Date          time.Time
	Sales         int
	Reactivations int
	Status        string
}

func rowDate(r saleRow) time.Time { return r.Date }
func rowSales(r saleRow) float64 { return float64(r.Sales) }
func rowReact(r saleRow) float64 { return float64(r.Reactivations) }
func rowUID(r saleRow) string { return r.UID }
func rowManager(r saleRow) string { return r.ManagerUID }
func rowOrg(r saleRow) string { return r.Organisation }
func reportSales(r models.FinalReport) float64 { return float64(r.TotalSales) }

// flatten expands reports into member rows in report order, members sorted by id.
func flatten(reports []models.FinalReport, loc *time.Location, orgs *Resolver) []saleRow {
	var rows []saleRow
	for _, rep := range reports {
		d, err := utils.ParseDate(rep.Date, loc)
		if err != nil {
			logger.Get("app").WithFields(logrus.Fields{"reportId": rep.ID, "date": rep.Date}).Warn("skipping report with bad date")
			continue
		}
		for _, uid := range models.SortedKeys(rep.Members) {
			m := rep.Members[uid]
			rows = append(rows, saleRow{
				ReportID:      rep.ID,
				UID:           uid,
				Name:          m.Name,
				SalesID:       m.SalesID,
				ManagerUID:    rep.ManagerUID,
				Organisation:  orgs.ResolveName(rep.Organisation),
				Date:          d,
				Sales:         m.Sales,
				Reactivations: m.Reactivations,
				Status:        m.Status,
			})
		}
	}
	return rows
}

// label fills in display names for grouped keys.
func label(groups []utils.Group, names map[string]string) []utils.Group {
	for i := range groups {
		if n, ok := names[groups[i].Key]; ok && n != "" {
			groups[i].Label = n
		} else {
			groups[i].Label = groups[i].Key
		}
	}
	return groups
}

func memberNames(rows []saleRow) map[string]string {
	names := make(map[string]string)
	for _, r := range rows {
		names[r.UID] = r.Name
	}
	return names
}

func userNames(users []models.User) map[string]string {
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}
	return names
}

// Trend compares a period against the same number of days of the one before.
type Trend struct {
	Current       float64 `json:"current"`
	Yesterday     float64 `json:"yesterday"`
	Previous      float64 `json:"previous"`
	Comparison    float64 `json:"comparison"`
	ChangePercent float64 `json:"changePercent"`
	ElapsedDays   int     `json:"elapsedDays"`
}

// windows are the date windows every dashboard is computed over.
type windows struct {
	now        time.Time
	current    utils.Period
	previous   utils.Period
	yesterday  utils.Period
	comparison utils.Period
	elapsed    int
}

func (s *DashboardService) windows() windows {
	now := s.now().In(s.loc)
	w := windows{
		now:       now,
		current:   utils.CurrentPeriod(now),
		previous:  utils.PreviousPeriod(now),
		yesterday: utils.YesterdayPeriod(now),
	}
	w.elapsed = utils.ElapsedDays(w.current, now)
	w.comparison = utils.ComparisonWindow(w.previous, w.elapsed)
	return w
}

// span is the query covering the previous and current periods.
func (w windows) span() models.ReportQuery {
	return models.ReportQuery{From: utils.FormatDate(w.previous.Start), To: utils.FormatDate(w.current.End)}
}

func (w windows) currentQuery() models.ReportQuery {
	return models.ReportQuery{From: utils.FormatDate(w.current.Start), To: utils.FormatDate(w.current.End)}
}

func (w windows) trend(rows []saleRow) Trend {
	cur := utils.Sum(utils.FilterByPeriod(rows, rowDate, w.current), rowSales)
	cmp := utils.Sum(utils.FilterByPeriod(rows, rowDate, w.comparison), rowSales)
	return Trend{
		Current:       cur,
		Yesterday:     utils.Sum(utils.FilterByPeriod(rows, rowDate, w.yesterday), rowSales),
		Previous:      utils.Sum(utils.FilterByPeriod(rows, rowDate, w.previous), rowSales),
		Comparison:    cmp,
		ChangePercent: utils.PercentChange(cur, cmp),
		ElapsedDays:   w.elapsed,
	}
}

// PeriodInfo names the current period.
type PeriodInfo struct {
	utils.Period
	Label string `json:"label"`
}

func periodInfo(p utils.Period) PeriodInfo { return PeriodInfo{Period: p, Label: p.Label()} }

// QualityTotals sums quality metrics.
type QualityTotals struct {
	RegSales      int `json:"regSales"`
	InvalidAmount int `json:"invalidAmount"`
	OutOfTarget   int `json:"outOfTarget"`
	Pending       int `json:"pending"`
	Total         int `json:"total"`
}

func (t *QualityTotals) add(m models.QualityMetrics) {
	t.RegSales += m.RegSales
	t.InvalidAmount += m.InvalidAmount
	t.OutOfTarget += m.OutOfTarget
	t.Pending += m.Pending
	t.Total += m.Total
}

// QualityRow is the quality totals of one member or organisation.
type QualityRow struct {
	Key          string `json:"key"`
	Name         string `json:"name"`
	Organisation string `json:"organisation,omitempty"`
	QualityTotals
}

// qualityBy sums metrics per key, keeping first-seen order.
func qualityBy(reports []models.QualityReport, orgs *Resolver, byOrg bool) []QualityRow {
	index := make(map[string]int)
	rows := make([]QualityRow, 0)
	for _, rep := range reports {
		org := orgs.ResolveName(rep.Organisation)
		for _, uid := range models.SortedKeys(rep.Members) {
			m := rep.Members[uid]
			key, name := uid, m.Name
			if byOrg {
				key, name = org, org
			}
			i, ok := index[key]
			if !ok {
				i = len(rows)
				index[key] = i
				rows = append(rows, QualityRow{Key: key, Name: name})
				if !byOrg {
					rows[i].Organisation = org
				}
			}
			rows[i].add(m)
		}
	}
	return rows
}

func qualityTotal(reports []models.QualityReport) QualityTotals {
	var t QualityTotals
	for _, rep := range reports {
		for _, m := range rep.Members {
			t.add(m)
		}
	}
	return t
}

// UserDashboard is the seller's start page.
type UserDashboard struct {
	Period        PeriodInfo    `json:"period"`
	Sales         Trend         `json:"sales"`
	Reactivations float64       `json:"reactivations"`
	Individuals   []utils.Group `json:"individuals"`
	Teams         []utils.Group `json:"teams"`
	Quality       QualityTotals `json:"quality"`
	Degraded
}

// UserDashboard builds the dashboard of a seller.
func (s *DashboardService) UserDashboard(ctx context.Context, actor Actor) (*UserDashboard, error) {
	w := s.windows()

	var (
		reports  []models.FinalReport
		copies   []models.UserQualityReport
		users    []models.User
		resolver *Resolver
	)
	f := newFetchGroup(ctx)
	f.Go("finalReports", func(ctx context.Context) (err error) {
		reports, err = s.reports.List(ctx, w.span())
		return
	})
	f.Go("qualityReports", func(ctx context.Context) (err error) {
		copies, err = s.quality.ListForUser(ctx, actor.UID, w.currentQuery())
		return
	})
	f.Go("users", func(ctx context.Context) (err error) {
		users, err = s.users.List(ctx)
		return
	})
	s.fetchResolver(f, &resolver)
	degraded := f.Wait()

	rows := flatten(reports, s.loc, resolver)
	own := make([]saleRow, 0)
	for _, r := range rows {
		if r.UID == actor.UID {
			own = append(own, r)
		}
	}
	inPeriod := utils.FilterByPeriod(rows, rowDate, w.current)

	var q QualityTotals
	for _, c := range copies {
		q.add(c.QualityMetrics)
	}

	return &UserDashboard{
		Period:        periodInfo(w.current),
		Sales:         w.trend(own),
		Reactivations: utils.Sum(utils.FilterByPeriod(own, rowDate, w.current), rowReact),
		Individuals:   label(utils.TopN(utils.GroupSum(inPeriod, rowUID, rowSales), utils.IndividualLeaderboardSize), memberNames(rows)),
		Teams:         label(utils.TopN(utils.GroupSum(inPeriod, rowManager, rowSales), utils.TeamLeaderboardSize), userNames(users)),
		Quality:       q,
		Degraded:      degraded,
	}, nil
}

// ManagerDashboard is a sales-manager's team overview.
type ManagerDashboard struct {
	Period        PeriodInfo    `json:"period"`
	Sales         Trend         `json:"sales"`
	Reactivations float64       `json:"reactivations"`
	Reports       int           `json:"reports"`
	MeanPerReport float64       `json:"meanPerReport"`
	Members       []utils.Group `json:"members"`
	Organisations []utils.Group `json:"organisations"`
	Team          []models.User `json:"team"`
	Quality       QualityTotals `json:"quality"`
	Degraded
}

// ManagerDashboard builds the dashboard of managerUID's team.
func (s *DashboardService) ManagerDashboard(ctx context.Context, actor Actor, managerUID string) (*ManagerDashboard, error) {
	if managerUID == "" {
		managerUID = actor.UID
	}
	if !actor.IsAdmin() && managerUID != actor.UID {
		return nil, forbidden("not your team")
	}
	w := s.windows()

	var (
		reports  []models.FinalReport
		quality  []models.QualityReport
		team     []models.User
		resolver *Resolver
	)
	span := w.span()
	span.ManagerUID = managerUID
	f := newFetchGroup(ctx)
	f.Go("finalReports", func(ctx context.Context) (err error) {
		reports, err = s.reports.List(ctx, span)
		return
	})
	f.Go("qualityReports", func(ctx context.Context) (err error) {
		quality, err = s.quality.ListAssignedTo(ctx, managerUID, w.currentQuery())
		return
	})
	f.Go("users", func(ctx context.Context) (err error) {
		team, err = s.users.ListByManager(ctx, managerUID)
		return
	})
	s.fetchResolver(f, &resolver)
	degraded := f.Wait()

	rows := flatten(reports, s.loc, resolver)
	inPeriod := utils.FilterByPeriod(rows, rowDate, w.current)
	periodReports := utils.FilterByPeriod(reports, s.reportDate, w.current)
	if team == nil {
		team = []models.User{}
	}

	return &ManagerDashboard{
		Period:        periodInfo(w.current),
		Sales:         w.trend(rows),
		Reactivations: utils.Sum(inPeriod, rowReact),
		Reports:       len(periodReports),
		MeanPerReport: utils.Mean(periodReports, reportSales),
		Members:       label(utils.TopN(utils.GroupSum(inPeriod, rowUID, rowSales), utils.IndividualLeaderboardSize), memberNames(rows)),
		Organisations: label(utils.GroupSum(inPeriod, rowOrg, rowSales), nil),
		Team:          team,
		Quality:       qualityTotal(quality),
		Degraded:      degraded,
	}, nil
}

func (s *DashboardService) reportDate(r models.FinalReport) time.Time {
	d, err := utils.ParseDate(r.Date, s.loc)
	if err != nil {
		return time.Time{}
	}
	return d
}

// AdminDashboard is the company-wide overview.
type AdminDashboard struct {
	Period        PeriodInfo    `json:"period"`
	Sales         Trend         `json:"sales"`
	Reactivations float64       `json:"reactivations"`
	Reports       int           `json:"reports"`
	MeanPerReport float64       `json:"meanPerReport"`
	Individuals   []utils.Group `json:"individuals"`
	Teams         []utils.Group `json:"teams"`
	Organisations []utils.Group `json:"organisations"`
	Users         int           `json:"users"`
	Quality       QualityTotals `json:"quality"`
	Degraded
}

func (s *DashboardService) AdminDashboard(ctx context.Context, actor Actor) (*AdminDashboard, error) {
	if !actor.IsAdmin() {
		return nil, forbidden("admin only")
	}
	w := s.windows()

	var (
		reports  []models.FinalReport
		quality  []models.QualityReport
		users    []models.User
		resolver *Resolver
	)
	f := newFetchGroup(ctx)
	f.Go("finalReports", func(ctx context.Context) (err error) {
		reports, err = s.reports.List(ctx, w.span())
		return
	})
	f.Go("qualityReports", func(ctx context.Context) (err error) {
		quality, err = s.quality.List(ctx, w.currentQuery())
		return
	})
	f.Go("users", func(ctx context.Context) (err error) {
		users, err = s.users.List(ctx)
		return
	})
	s.fetchResolver(f, &resolver)
	degraded := f.Wait()

	rows := flatten(reports, s.loc, resolver)
	inPeriod := utils.FilterByPeriod(rows, rowDate, w.current)
	periodReports := utils.FilterByPeriod(reports, s.reportDate, w.current)

	return &AdminDashboard{
		Period:        periodInfo(w.current),
		Sales:         w.trend(rows),
		Reactivations: utils.Sum(inPeriod, rowReact),
		Reports:       len(periodReports),
		MeanPerReport: utils.Mean(periodReports, reportSales),
		Individuals:   label(utils.TopN(utils.GroupSum(inPeriod, rowUID, rowSales), utils.IndividualLeaderboardSize), memberNames(rows)),
		Teams:         label(utils.TopN(utils.GroupSum(inPeriod, rowManager, rowSales), utils.TeamLeaderboardSize), userNames(users)),
		Organisations: label(utils.GroupSum(inPeriod, rowOrg, rowSales), nil),
		Users:         len(users),
		Quality:       qualityTotal(quality),
		Degraded:      degraded,
	}, nil
}

// QualityDashboard is the quality team's overview of the period.
type QualityDashboard struct {
	Period        PeriodInfo    `json:"period"`
	Totals        QualityTotals `json:"totals"`
	Reports       int           `json:"reports"`
	Members       []QualityRow  `json:"members"`
	Organisations []QualityRow  `json:"organisations"`
	Degraded
}

func (s *DashboardService) QualityDashboard(ctx context.Context, actor Actor) (*QualityDashboard, error) {
	if actor.Role != models.RoleQuality && !actor.IsAdmin() {
		return nil, forbidden("quality only")
	}
	w := s.windows()

	var (
		quality  []models.QualityReport
		resolver *Resolver
	)
	f := newFetchGroup(ctx)
	f.Go("qualityReports", func(ctx context.Context) (err error) {
		quality, err = s.quality.List(ctx, w.currentQuery())
		return
	})
	s.fetchResolver(f, &resolver)
	degraded := f.Wait()

	return &QualityDashboard{
		Period:        periodInfo(w.current),
		Totals:        qualityTotal(quality),
		Reports:       len(quality),
		Members:       qualityBy(quality, resolver, false),
		Organisations: qualityBy(quality, resolver, true),
		Degraded:      degraded,
	}, nil
}

// ClientDashboard is what an uppdragsgivare sees. Sections not enabled in
// the client's menuComponents stay nil.
type ClientDashboard struct {
	Period        PeriodInfo    `json:"period"`
	Sales         *Trend        `json:"sales,omitempty"`
	Organisations []utils.Group `json:"organisations,omitempty"`
	Quality       []QualityRow  `json:"quality,omitempty"`
	Degraded
}

func (s *DashboardService) ClientDashboard(ctx context.Context, actor Actor) (*ClientDashboard, error) {
	if actor.Role != models.RoleUppdragsgivare && !actor.IsAdmin() {
		return nil, forbidden("client only")
	}
	client, err := s.users.Get(ctx, actor.UID)
	if err != nil {
		return nil, err
	}
	enabled := make(map[security.ScreenKey]bool)
	for _, scr := range security.NavigationFor(client) {
		enabled[scr.Key] = true
	}
	showSales := actor.IsAdmin() || enabled[security.ScreenClientDashboard] || enabled[security.ScreenClientStatistics]
	showQuality := actor.IsAdmin() || enabled[security.ScreenClientQuality]
	w := s.windows()

	var (
		reports  []models.FinalReport
		quality  []models.QualityReport
		resolver *Resolver
	)
	f := newFetchGroup(ctx)
	if showSales {
		f.Go("finalReports", func(ctx context.Context) (err error) {
			reports, err = s.reports.List(ctx, w.span())
			return
		})
	}
	if showQuality {
		f.Go("qualityReports", func(ctx context.Context) (err error) {
			quality, err = s.quality.List(ctx, w.currentQuery())
			return
		})
	}
	s.fetchResolver(f, &resolver)
	degraded := f.Wait()

	out := &ClientDashboard{Period: periodInfo(w.current), Degraded: degraded}
	if showSales {
		rows := flatten(reports, s.loc, resolver)
		trend := w.trend(rows)
		out.Sales = &trend
		out.Organisations = label(utils.GroupSum(utils.FilterByPeriod(rows, rowDate, w.current), rowOrg, rowSales), nil)
	}
	if showQuality {
		out.Quality = qualityBy(quality, resolver, true)
	}
	return out, nil
}
