package services

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/teamsales/salesportal/logger"
	"github.com/teamsales/salesportal/models"
	"github.com/teamsales/salesportal/security"
)

// FinalReportService writes and reads team final reports.
type FinalReportService struct {
	reports FinalReportStore
	users   UserStore
	notify  Notifier
}

func NewFinalReportService(reports FinalReportStore, users UserStore, notify Notifier) *FinalReportService {
	if notify == nil {
		notify = noopNotifier{}
	}
	return &FinalReportService{reports: reports, users: users, notify: notify}
}

func canWriteFinalReport(actor Actor, managerUID string) bool {
	return actor.IsAdmin() || (actor.Role == models.RoleSalesManager && actor.UID == managerUID)
}

func (s *FinalReportService) build(actor Actor, req models.FinalReportRequest) (*models.FinalReport, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	managerUID := strings.TrimSpace(req.ManagerUID)
	if actor.Role == models.RoleSalesManager && managerUID == "" {
		managerUID = actor.UID
	}
	if managerUID == "" {
		return nil, invalid("managerUid is required")
	}
	if !canWriteFinalReport(actor, managerUID) {
		return nil, forbidden("you may only file reports for your own team")
	}

	members := make(map[string]models.MemberResult, len(req.Members))
	for uid, m := range req.Members {
		uid = strings.TrimSpace(uid)
		if uid == "" {
			return nil, invalid("member id is required")
		}
		members[uid] = m
	}
	report := &models.FinalReport{
		ManagerUID:   managerUID,
		Date:         req.Date,
		Organisation: strings.TrimSpace(req.Organisation),
		Location:     strings.TrimSpace(req.Location),
		Goal:         req.Goal,
		Members:      members,
	}
	report.Recount()
	return report, nil
}

// checkTeam rejects members a sales-manager may not credit: anyone other
// than the manager and their team. Members already on the report being
// edited are kept even if they have since left the team. Admins are not
// limited.
func (s *FinalReportService) checkTeam(ctx context.Context, actor Actor, report *models.FinalReport, existing map[string]models.MemberResult) error {
	if actor.IsAdmin() {
		return nil
	}
	team, err := s.users.ListByManager(ctx, report.ManagerUID)
	if err != nil {
		return err
	}
	onTeam := map[string]bool{report.ManagerUID: true}
	for _, u := range team {
		onTeam[u.ID] = true
	}
	for _, uid := range models.SortedKeys(report.Members) {
		if _, kept := existing[uid]; kept || onTeam[uid] {
			continue
		}
		return forbidden("%s is not on your team", uid)
	}
	return nil
}

func (s *FinalReportService) audience(report *models.FinalReport, extra ...string) []string {
	uids := append([]string{report.ManagerUID}, models.SortedKeys(report.Members)...)
	return append(uids, extra...)
}

func logWriteFailure(op, id string, err error) {
	if errors.Is(err, ErrConflict) {
		return
	}
	logger.Get("app").WithError(err).WithFields(logrus.Fields{"op": op, "reportId": id}).Error(ErrWriteFailed)
}

// Submit stores a new report and its per-member copies atomically.
func (s *FinalReportService) Submit(ctx context.Context, actor Actor, req models.FinalReportRequest) (*models.FinalReport, error) {
	report, err := s.build(actor, req)
	if err != nil {
		return nil, err
	}
	if err := s.checkTeam(ctx, actor, report, nil); err != nil {
		return nil, err
	}
	if err := s.reports.Create(ctx, report); err != nil {
		logWriteFailure("submit final report", report.ID, err)
		return nil, err
	}
	logger.Get("audit").WithFields(logrus.Fields{
		"reportId": report.ID, "managerUid": report.ManagerUID, "by": actor.UID, "members": len(report.Members),
	}).Info("final report submitted")
	s.notify.NotifyDashboardChanged(s.audience(report)...)
	return report, nil
}

// Update overwrites an existing report in place. Members dropped from the
// report lose their copy.
func (s *FinalReportService) Update(ctx context.Context, actor Actor, id string, req models.FinalReportRequest) (*models.FinalReport, error) {
	existing, err := s.reports.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canWriteFinalReport(actor, existing.ManagerUID) {
		return nil, forbidden("you may only edit your own team's reports")
	}
	if req.ManagerUID == "" {
		req.ManagerUID = existing.ManagerUID
	}
	report, err := s.build(actor, req)
	if err != nil {
		return nil, err
	}
	if err := s.checkTeam(ctx, actor, report, existing.Members); err != nil {
		return nil, err
	}
	report.ID = id
	removed, err := s.reports.Replace(ctx, report)
	if err != nil {
		logWriteFailure("edit final report", id, err)
		return nil, err
	}
	logger.Get("audit").WithFields(logrus.Fields{"reportId": id, "by": actor.UID, "removed": removed}).Info("final report edited")
	s.notify.NotifyDashboardChanged(s.audience(report, removed...)...)
	return report, nil
}

// Delete removes the report and every member copy referencing it.
func (s *FinalReportService) Delete(ctx context.Context, actor Actor, id string) error {
	existing, err := s.reports.Get(ctx, id)
	if err != nil {
		return err
	}
	if !canWriteFinalReport(actor, existing.ManagerUID) {
		return forbidden("you may only delete your own team's reports")
	}
	deleted, err := s.reports.Delete(ctx, id)
	if err != nil {
		logWriteFailure("delete final report", id, err)
		return err
	}
	logger.Get("audit").WithFields(logrus.Fields{"reportId": id, "by": actor.UID}).Info("final report deleted")
	s.notify.NotifyDashboardChanged(s.audience(deleted)...)
	return nil
}

// Get returns one report if the actor may see it.
func (s *FinalReportService) Get(ctx context.Context, actor Actor, id string) (*models.FinalReport, error) {
	if err := requireMenu(actor, security.ScreenClientReports); err != nil {
		return nil, err
	}
	report, err := s.reports.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	switch actor.Role {
	case models.RoleAdmin, models.RoleQuality, models.RoleUppdragsgivare:
		return report, nil
	case models.RoleSalesManager:
		if report.ManagerUID == actor.UID {
			return report, nil
		}
	case models.RoleUser:
		if _, ok := report.Members[actor.UID]; ok {
			return report, nil
		}
	}
	return nil, forbidden("not your report")
}

// List returns reports in q. Sales-managers only see their own team's.
func (s *FinalReportService) List(ctx context.Context, actor Actor, q models.ReportQuery) ([]models.FinalReport, error) {
	if err := requireMenu(actor, security.ScreenClientReports); err != nil {
		return nil, err
	}
	switch actor.Role {
	case models.RoleAdmin, models.RoleQuality, models.RoleUppdragsgivare:
		return s.reports.List(ctx, q)
	case models.RoleSalesManager:
		q.ManagerUID = actor.UID
		return s.reports.List(ctx, q)
	}
	return nil, forbidden("%s may not list final reports", actor.Role)
}

// ListMine returns the actor's own per-member copies in q.
func (s *FinalReportService) ListMine(ctx context.Context, actor Actor, q models.ReportQuery) ([]models.UserReport, error) {
	return s.reports.ListForUser(ctx, actor.UID, q)
}
