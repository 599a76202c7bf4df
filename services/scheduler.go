package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/teamsales/salesportal/logger"
)

// cronLogger sends cron's own messages to the job logger.
type cronLogger struct {
	entry *logrus.Entry
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(cronFields(keysAndValues)).Debug(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.entry.WithError(err).WithFields(cronFields(keysAndValues)).Error(msg)
}

func cronFields(keysAndValues []interface{}) logrus.Fields {
	fields := make(logrus.Fields, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return fields
}

// DailySpec is the cron expression for hour:minute every day.
func DailySpec(hour, minute int) string {
	return fmt.Sprintf("%d %d * * *", minute, hour)
}

// NewDailyCron returns a cron that runs job every day at hour:minute in loc.
// A failing run is logged and a panicking one is recovered, so the next
// day's run still happens. The caller owns Start and Stop.
func NewDailyCron(ctx context.Context, name string, hour, minute int, loc *time.Location, job func(ctx context.Context) error) (*cron.Cron, error) {
	log := logger.Get("job").WithField("job", name)
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cronLogger{entry: log}),
		cron.WithChain(cron.Recover(cronLogger{entry: log})),
	)
	if _, err := c.AddFunc(DailySpec(hour, minute), func() {
		if err := job(ctx); err != nil {
			log.WithError(err).Error("scheduled job failed")
		}
	}); err != nil {
		return nil, fmt.Errorf("schedule %s: %w", name, err)
	}
	return c, nil
}
