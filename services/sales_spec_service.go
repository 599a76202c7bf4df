package services

import (
	"context"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/teamsales/salesportal/logger"
	"github.com/teamsales/salesportal/models"
	"github.com/teamsales/salesportal/utils"
)

type SalesSpecService struct {
	users   UserStore
	specs   SalesSpecStore
	reports FinalReportStore
	quality QualityReportStore
	loc     *time.Location
}

func NewSalesSpecService(users UserStore, specs SalesSpecStore, reports FinalReportStore, quality QualityReportStore, loc *time.Location) *SalesSpecService {
	return &SalesSpecService{users: users, specs: specs, reports: reports, quality: quality, loc: loc}
}

func canReadSpecs(actor Actor, uid string) bool {
	return actor.IsAdmin() || actor.UID == uid
}

// List returns every stored specification of uid, newest period first. The
// map on the user document wins; sub-collection documents only fill in
// labels the map does not have.
func (s *SalesSpecService) List(ctx context.Context, actor Actor, uid string) ([]models.SalesSpecification, error) {
	if !canReadSpecs(actor, uid) {
		return nil, forbidden("sales specifications of %s", uid)
	}
	user, err := s.users.Get(ctx, uid)
	if err != nil {
		return nil, err
	}

	merged := make(map[string]models.SalesSpecification, len(user.SalesSpecifications))
	for label, spec := range user.SalesSpecifications {
		spec.Period = label
		merged[label] = spec
	}
	stored, err := s.specs.ListStored(ctx, uid)
	if err != nil {
		logger.Get("app").WithError(err).WithField("uid", uid).Warn("sales specification fallback unavailable")
	}
	for label, spec := range stored {
		if _, ok := merged[label]; !ok {
			spec.Period = label
			merged[label] = spec
		}
	}

	out := make([]models.SalesSpecification, 0, len(merged))
	for _, label := range models.SortedKeys(merged) {
		out = append(out, merged[label])
	}
	starts := make(map[string]time.Time, len(out))
	for _, spec := range out {
		if p, err := utils.PeriodFromLabel(spec.Period, s.loc); err == nil {
			starts[spec.Period] = p.Start
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return starts[out[i].Period].After(starts[out[j].Period])
	})
	return out, nil
}

// Prefill computes the approved counts of uid for the labelled period from
// the final and quality reports.
func (s *SalesSpecService) Prefill(ctx context.Context, actor Actor, uid, label string) (*models.SalesSpecification, error) {
	if !canReadSpecs(actor, uid) {
		return nil, forbidden("sales specifications of %s", uid)
	}
	p, err := utils.PeriodFromLabel(label, s.loc)
	if err != nil {
		return nil, invalid("%v", err)
	}
	approved, total, err := s.approved(ctx, uid, p)
	if err != nil {
		return nil, err
	}
	return &models.SalesSpecification{Period: p.Label(), Approved: approved, TotalApproved: total}, nil
}

func (s *SalesSpecService) approved(ctx context.Context, uid string, p utils.Period) (int, int, error) {
	q := models.ReportQuery{From: utils.FormatDate(p.Start), To: utils.FormatDate(p.End)}
	sales, err := s.reports.ListForUser(ctx, uid, q)
	if err != nil {
		return 0, 0, err
	}
	audits, err := s.quality.ListForUser(ctx, uid, q)
	if err != nil {
		return 0, 0, err
	}
	approved := 0
	for _, r := range sales {
		approved += r.Sales
	}
	invalidAmount := 0
	for _, a := range audits {
		invalidAmount += a.InvalidAmount
	}
	total := approved - invalidAmount
	if total < 0 {
		total = 0
	}
	return approved, total, nil
}

// Upsert stores the specification for the labelled period. Admin only.
func (s *SalesSpecService) Upsert(ctx context.Context, actor Actor, uid string, req models.SalesSpecificationRequest) (*models.SalesSpecification, error) {
	if !actor.IsAdmin() {
		return nil, forbidden("%s may not edit sales specifications", actor.Role)
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	p, err := utils.PeriodFromLabel(req.Period, s.loc)
	if err != nil {
		return nil, invalid("%v", err)
	}

	spec := models.SalesSpecification{
		Period:     p.Label(),
		Commission: req.Commission,
		Salary:     req.Salary,
	}
	if req.Approved == nil || req.TotalApproved == nil {
		approved, total, err := s.approved(ctx, uid, p)
		if err != nil {
			return nil, err
		}
		spec.Approved, spec.TotalApproved = approved, total
	}
	if req.Approved != nil {
		spec.Approved = *req.Approved
	}
	if req.TotalApproved != nil {
		spec.TotalApproved = *req.TotalApproved
	}

	if err := s.specs.Upsert(ctx, uid, utils.FormatDate(p.Start), spec); err != nil {
		return nil, err
	}
	logger.Get("app").WithFields(logrus.Fields{"uid": uid, "period": spec.Period, "by": actor.UID}).Info("sales specification saved")
	return &spec, nil
}
