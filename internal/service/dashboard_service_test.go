package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fets-ops/console-api/internal/models"
	appErrors "github.com/fets-ops/console-api/pkg/errors"
)

type dashboardCounters struct {
	sessions     int
	candidates   int
	byStatus     map[models.CandidateStatus]int
	pending      int
	openCount    int
	activeStaff  int
	sessionCalls int
}

func (d *dashboardCounters) CountOnDate(ctx context.Context, date string) (int, int, error) {
	d.sessionCalls++
	return d.sessions, d.candidates, nil
}

func (d *dashboardCounters) CountByStatusOnDate(ctx context.Context, date string, status models.CandidateStatus) (int, error) {
	return d.byStatus[status], nil
}

func (d *dashboardCounters) CountPending(ctx context.Context) (int, error) {
	return d.pending, nil
}

func (d *dashboardCounters) CountOpen(ctx context.Context) (int, error) {
	return d.openCount, nil
}

func (d *dashboardCounters) CountByStatus(ctx context.Context, status models.StaffStatus) (int, error) {
	return d.activeStaff, nil
}

type fakeDashboardCache struct {
	entries map[string]DashboardSummary
	sets    int
}

func (c *fakeDashboardCache) Get(ctx context.Context, key string, dest interface{}) error {
	cached, ok := c.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	*dest.(*DashboardSummary) = cached
	return nil
}

func (c *fakeDashboardCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.entries == nil {
		c.entries = make(map[string]DashboardSummary)
	}
	c.entries[key] = *value.(*DashboardSummary)
	c.sets++
	return nil
}

func (c *fakeDashboardCache) DeleteByPattern(ctx context.Context, pattern string) error {
	c.entries = nil
	return nil
}

func newDashboardFixture(counters *dashboardCounters, cache *fakeDashboardCache) *DashboardService {
	svc := NewDashboardService(DashboardServiceParams{
		Sessions:   counters,
		Candidates: counters,
		Leaves:     counters,
		Incidents:  counters,
		Staff:      counters,
		Cache:      cache,
		Logger:     zap.NewNop(),
	})
	svc.now = func() time.Time { return time.Date(2025, 4, 12, 9, 0, 0, 0, time.UTC) }
	return svc
}

func TestDashboardSummaryComposesCounts(t *testing.T) {
	counters := &dashboardCounters{
		sessions:   3,
		candidates: 35,
		byStatus: map[models.CandidateStatus]int{
			models.CandidateCheckedIn:  12,
			models.CandidateInProgress: 8,
			models.CandidateCompleted:  10,
			models.CandidateNoShow:     2,
		},
		pending:     4,
		openCount:   1,
		activeStaff: 9,
	}
	svc := newDashboardFixture(counters, &fakeDashboardCache{})

	summary, cacheHit, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.False(t, cacheHit)
	assert.Equal(t, 3, summary.SessionsToday)
	assert.Equal(t, 35, summary.CandidatesToday)
	assert.Equal(t, 12, summary.CheckedIn)
	assert.Equal(t, 2, summary.NoShows)
	assert.Equal(t, 4, summary.PendingRequests)
	assert.Equal(t, 1, summary.OpenIncidents)
	assert.Equal(t, 9, summary.ActiveStaff)
	assert.Equal(t, CapacityWarning, summary.Capacity.Level)
}

func TestDashboardSummaryServedFromCache(t *testing.T) {
	counters := &dashboardCounters{sessions: 2, candidates: 10}
	cache := &fakeDashboardCache{}
	svc := newDashboardFixture(counters, cache)

	_, cacheHit, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.False(t, cacheHit)
	assert.Equal(t, 1, cache.sets)

	summary, cacheHit, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.True(t, cacheHit)
	assert.Equal(t, 2, summary.SessionsToday)
	assert.Equal(t, 1, counters.sessionCalls)
}

func TestDashboardInvalidateDropsCache(t *testing.T) {
	counters := &dashboardCounters{sessions: 1}
	cache := &fakeDashboardCache{}
	svc := newDashboardFixture(counters, cache)

	_, _, err := svc.Summary(context.Background())
	require.NoError(t, err)

	svc.Invalidate(context.Background())

	_, cacheHit, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.False(t, cacheHit)
	assert.Equal(t, 2, counters.sessionCalls)
}
