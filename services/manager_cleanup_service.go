package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/teamsales/salesportal/logger"
	"github.com/teamsales/salesportal/utils"
)

// ManagerCleanupService unlinks users from their sales-manager on their last
// working day.
type ManagerCleanupService struct {
	users UserStore
	cache SessionCache
	loc   *time.Location
	now   func() time.Time
}

func NewManagerCleanupService(users UserStore, cache SessionCache, loc *time.Location) *ManagerCleanupService {
	return &ManagerCleanupService{users: users, cache: cache, loc: loc, now: time.Now}
}

// Run removes managerUid from every user whose sistaArbetsdag is today in
// the configured zone and returns how many were unlinked. Running it twice
// on the same day changes nothing further.
func (s *ManagerCleanupService) Run(ctx context.Context) (int, error) {
	log := logger.Get("job")
	today := utils.FormatDate(s.now().In(s.loc))

	users, err := s.users.ListByLastWorkingDay(ctx, today)
	if err != nil {
		return 0, err
	}

	cleared := 0
	for _, u := range users {
		if u.SistaArbetsdag != today || u.ManagerUID == "" {
			continue
		}
		if err := s.users.ClearManager(ctx, u.ID); err != nil {
			log.WithError(err).WithField("uid", u.ID).Error("failed to unlink manager")
			continue
		}
		s.cache.EvictUser(ctx, u.ID)
		cleared++
		log.WithFields(logrus.Fields{"uid": u.ID, "managerUid": u.ManagerUID}).Info("manager unlinked on last working day")
	}
	log.WithFields(logrus.Fields{"date": today, "matched": len(users), "cleared": cleared}).Info("manager cleanup finished")
	return cleared, nil
}
