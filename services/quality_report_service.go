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

// QualityReportService writes and reads quality audits.
type QualityReportService struct {
	reports QualityReportStore
	notify  Notifier
}

func NewQualityReportService(reports QualityReportStore, notify Notifier) *QualityReportService {
	if notify == nil {
		notify = noopNotifier{}
	}
	return &QualityReportService{reports: reports, notify: notify}
}

func canWriteQualityReport(actor Actor) bool {
	return actor.Role == models.RoleQuality || actor.IsAdmin()
}

func (s *QualityReportService) build(actor Actor, req models.QualityReportRequest) (*models.QualityReport, error) {
	if !canWriteQualityReport(actor) {
		return nil, forbidden("only quality may file quality reports")
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	members := make(map[string]models.QualityMetrics, len(req.Members))
	for uid, m := range req.Members {
		uid = strings.TrimSpace(uid)
		if uid == "" {
			return nil, invalid("member id is required")
		}
		members[uid] = m
	}
	report := &models.QualityReport{
		Date:         req.Date,
		Organisation: strings.TrimSpace(req.Organisation),
		ManagerUID:   strings.TrimSpace(req.ManagerUID),
		CreatedBy:    actor.UID,
		Members:      members,
	}
	report.AssignedTo = report.Assignees()
	return report, nil
}

func (s *QualityReportService) Submit(ctx context.Context, actor Actor, req models.QualityReportRequest) (*models.QualityReport, error) {
	report, err := s.build(actor, req)
	if err != nil {
		return nil, err
	}
	if err := s.reports.Create(ctx, report); err != nil {
		logWriteFailure("submit quality report", report.ID, err)
		return nil, err
	}
	logger.Get("audit").WithFields(logrus.Fields{"reportId": report.ID, "by": actor.UID}).Info("quality report submitted")
	s.notify.NotifyDashboardChanged(report.AssignedTo...)
	return report, nil
}

func (s *QualityReportService) Update(ctx context.Context, actor Actor, id string, req models.QualityReportRequest) (*models.QualityReport, error) {
	if _, err := s.reports.Get(ctx, id); err != nil {
		return nil, err
	}
	report, err := s.build(actor, req)
	if err != nil {
		return nil, err
	}
	report.ID = id
	removed, err := s.reports.Replace(ctx, report)
	if err != nil {
		logWriteFailure("edit quality report", id, err)
		return nil, err
	}
	logger.Get("audit").WithFields(logrus.Fields{"reportId": id, "by": actor.UID, "removed": removed}).Info("quality report edited")
	audience := append(append([]string{}, report.AssignedTo...), removed...)
	s.notify.NotifyDashboardChanged(audience...)
	return report, nil
}

func (s *QualityReportService) Delete(ctx context.Context, actor Actor, id string) error {
	if !canWriteQualityReport(actor) {
		return forbidden("only quality may delete quality reports")
	}
	deleted, err := s.reports.Delete(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logWriteFailure("delete quality report", id, err)
		}
		return err
	}
	logger.Get("audit").WithFields(logrus.Fields{"reportId": id, "by": actor.UID}).Info("quality report deleted")
	s.notify.NotifyDashboardChanged(deleted.AssignedTo...)
	return nil
}

func (s *QualityReportService) Get(ctx context.Context, actor Actor, id string) (*models.QualityReport, error) {
	if err := requireMenu(actor, security.ScreenClientQuality); err != nil {
		return nil, err
	}
	report, err := s.reports.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	switch actor.Role {
	case models.RoleAdmin, models.RoleQuality, models.RoleUppdragsgivare:
		return report, nil
	}
	for _, uid := range report.AssignedTo {
		if uid == actor.UID {
			return report, nil
		}
	}
	return nil, forbidden("not your report")
}

// List returns quality reports in q. Sales-managers and sellers see the
// reports assigned to them.
func (s *QualityReportService) List(ctx context.Context, actor Actor, q models.ReportQuery) ([]models.QualityReport, error) {
	if err := requireMenu(actor, security.ScreenClientQuality); err != nil {
		return nil, err
	}
	switch actor.Role {
	case models.RoleAdmin, models.RoleQuality, models.RoleUppdragsgivare:
		return s.reports.List(ctx, q)
	}
	return s.reports.ListAssignedTo(ctx, actor.UID, q)
}

// ListMine returns the actor's own per-member copies in q.
func (s *QualityReportService) ListMine(ctx context.Context, actor Actor, q models.ReportQuery) ([]models.UserQualityReport, error) {
	return s.reports.ListForUser(ctx, actor.UID, q)
}
