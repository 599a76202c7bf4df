package services

import (
	"context"

	"github.com/teamsales/salesportal/models"
	"github.com/teamsales/salesportal/security"
)

// UserStore is the users collection.
type UserStore interface {
	Get(ctx context.Context, uid string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	ListByManager(ctx context.Context, managerUID string) ([]models.User, error)
	ListByLastWorkingDay(ctx context.Context, date string) ([]models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateProfile(ctx context.Context, uid, name string, profile models.Profile) error
	Patch(ctx context.Context, uid string, patch models.UserPatch) error
	ClearManager(ctx context.Context, uid string) error
	Delete(ctx context.Context, uid string) error
}

// FinalReportStore is finalReports with the users/{uid}/reports copies.
type FinalReportStore interface {
	Create(ctx context.Context, report *models.FinalReport) error
	Replace(ctx context.Context, report *models.FinalReport) ([]string, error)
	Delete(ctx context.Context, id string) (*models.FinalReport, error)
	Get(ctx context.Context, id string) (*models.FinalReport, error)
	List(ctx context.Context, q models.ReportQuery) ([]models.FinalReport, error)
	ListForUser(ctx context.Context, uid string, q models.ReportQuery) ([]models.UserReport, error)
}

// QualityReportStore is qualityReports with the users/{uid}/qualityReports copies.
type QualityReportStore interface {
	Create(ctx context.Context, report *models.QualityReport) error
	Replace(ctx context.Context, report *models.QualityReport) ([]string, error)
	Delete(ctx context.Context, id string) (*models.QualityReport, error)
	Get(ctx context.Context, id string) (*models.QualityReport, error)
	List(ctx context.Context, q models.ReportQuery) ([]models.QualityReport, error)
	ListAssignedTo(ctx context.Context, uid string, q models.ReportQuery) ([]models.QualityReport, error)
	ListForUser(ctx context.Context, uid string, q models.ReportQuery) ([]models.UserQualityReport, error)
}

type OrganizationStore interface {
	List(ctx context.Context) ([]models.Organization, error)
	Create(ctx context.Context, org *models.Organization) error
	Rename(ctx context.Context, id, name string) error
	Delete(ctx context.Context, id string) error
}

type SalesSpecStore interface {
	Upsert(ctx context.Context, uid, periodKey string, spec models.SalesSpecification) error
	ListStored(ctx context.Context, uid string) (map[string]models.SalesSpecification, error)
}

type MaterialStore interface {
	List(ctx context.Context, managerUID string) ([]models.MaterialItem, error)
	Get(ctx context.Context, managerUID, itemID string) (*models.MaterialItem, error)
	Save(ctx context.Context, item *models.MaterialItem) error
	AppendReport(ctx context.Context, managerUID, itemID string, report models.IncidentReport) error
	Delete(ctx context.Context, managerUID, itemID string) error
}

// Notifier tells connected clients that dashboards changed.
type Notifier interface {
	NotifyDashboardChanged(uids ...string)
}

type noopNotifier struct{}

func (noopNotifier) NotifyDashboardChanged(...string) {}

// Actor is the signed-in caller of a service operation.
type Actor struct {
	UID  string
	Role models.Role
	// Menu is the menuComponents of an uppdragsgivare.
	Menu []string
}

func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }

// requireMenu rejects an uppdragsgivare whose menu enables none of keys.
// Other roles pass.
func requireMenu(actor Actor, keys ...security.ScreenKey) error {
	if actor.Role != models.RoleUppdragsgivare {
		return nil
	}
	client := &models.User{Role: actor.Role, MenuComponents: actor.Menu}
	for _, k := range keys {
		if security.MenuAllows(client, k) {
			return nil
		}
	}
	return forbidden("section not enabled for this client")
}
