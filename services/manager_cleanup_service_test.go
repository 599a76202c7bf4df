package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/teamsales/salesportal/models"
)

func TestManagerCleanup_UnlinksOnLastWorkingDay(t *testing.T) {
	loc := stockholm()
	users := newFakeUsers(
		models.User{ID: "leaving", Role: models.RoleUser, ManagerUID: "m1", SistaArbetsdag: "2024-05-31"},
		models.User{ID: "staying", Role: models.RoleUser, ManagerUID: "m1"},
		models.User{ID: "later", Role: models.RoleUser, ManagerUID: "m1", SistaArbetsdag: "2024-06-01"},
	)
	cache := newFakeCache()
	svc := NewManagerCleanupService(users, cache, loc)
	svc.now = func() time.Time { return time.Date(2024, time.May, 31, 0, 5, 0, 0, loc) }

	n, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	for id, want := range map[string]string{"leaving": "", "staying": "m1", "later": "m1"} {
		u, err := users.Get(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, want, u.ManagerUID, id)
	}

	assert.Equal(t, []string{"leaving"}, cache.evicted, "the cached session is dropped")

	n, err = svc.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n, "a second run changes nothing")
}

func TestManagerCleanup_UsesConfiguredZone(t *testing.T) {
	loc := stockholm()
	users := newFakeUsers(models.User{ID: "leaving", ManagerUID: "m1", SistaArbetsdag: "2024-05-31"})
	svc := NewManagerCleanupService(users, newFakeCache(), loc)
	// 22:30 UTC on the 30th is already the 31st in Stockholm.
	svc.now = func() time.Time { return time.Date(2024, time.May, 30, 22, 30, 0, 0, time.UTC) }

	n, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestDailyCron_NextRun(t *testing.T) {
	loc := stockholm()
	c, err := NewDailyCron(context.Background(), "test", 0, 5, loc, func(context.Context) error { return nil })
	require.NoError(t, err)
	entries := c.Entries()
	require.Len(t, entries, 1)

	tests := []struct {
		now  time.Time
		want time.Time
	}{
		{time.Date(2024, 5, 31, 0, 1, 0, 0, loc), time.Date(2024, 5, 31, 0, 5, 0, 0, loc)},
		{time.Date(2024, 5, 31, 0, 5, 0, 0, loc), time.Date(2024, 6, 1, 0, 5, 0, 0, loc)},
		{time.Date(2024, 12, 31, 23, 0, 0, 0, loc), time.Date(2025, 1, 1, 0, 5, 0, 0, loc)},
		{time.Date(2024, 3, 30, 12, 0, 0, 0, loc), time.Date(2024, 3, 31, 0, 5, 0, 0, loc)},
	}
	for _, tt := range tests {
		assert.True(t, tt.want.Equal(entries[0].Schedule.Next(tt.now)), "now %s", tt.now)
	}
	assert.Equal(t, "5 0 * * *", DailySpec(0, 5))
}

func TestDailyCron_RecoversAndStops(t *testing.T) {
	defer goleak.VerifyNone(t)

	var runs int32
	c, err := NewDailyCron(context.Background(), "test", 0, 5, stockholm(), func(context.Context) error {
		switch atomic.AddInt32(&runs, 1) {
		case 1:
			panic("boom")
		case 2:
			return errors.New("store unavailable")
		}
		return nil
	})
	require.NoError(t, err)

	job := c.Entries()[0].WrappedJob
	for i := 0; i < 3; i++ {
		assert.NotPanics(t, job.Run)
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&runs))

	c.Start()
	select {
	case <-c.Stop().Done():
	case <-time.After(time.Second):
		t.Fatal("cron did not stop")
	}
}
