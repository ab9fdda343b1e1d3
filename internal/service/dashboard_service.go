package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fets-ops/console-api/internal/models"
	appErrors "github.com/fets-ops/console-api/pkg/errors"
	"github.com/fets-ops/console-api/pkg/timeutil"
)

type dashboardSessionCounter interface {
	CountOnDate(ctx context.Context, date string) (sessions int, candidates int, err error)
}

type dashboardCandidateCounter interface {
	CountByStatusOnDate(ctx context.Context, date string, status models.CandidateStatus) (int, error)
}

type dashboardLeaveCounter interface {
	CountPending(ctx context.Context) (int, error)
}

type dashboardIncidentCounter interface {
	CountOpen(ctx context.Context) (int, error)
}

type dashboardStaffCounter interface {
	CountByStatus(ctx context.Context, status models.StaffStatus) (int, error)
}

type dashboardCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// DashboardSummary is the operations overview for one center day.
type DashboardSummary struct {
	Date            string        `json:"date"`
	SessionsToday   int           `json:"sessions_today"`
	CandidatesToday int           `json:"candidates_today"`
	CheckedIn       int           `json:"checked_in"`
	InProgress      int           `json:"in_progress"`
	Completed       int           `json:"completed"`
	NoShows         int           `json:"no_shows"`
	PendingRequests int           `json:"pending_requests"`
	OpenIncidents   int           `json:"open_incidents"`
	ActiveStaff     int           `json:"active_staff"`
	Capacity        CapacityCheck `json:"capacity"`
	GeneratedAt     time.Time     `json:"generated_at"`
}

// DashboardService composes the day's operations summary, cached briefly so
// every console load does not fan out to five counts.
type DashboardService struct {
	sessions   dashboardSessionCounter
	candidates dashboardCandidateCounter
	leaves     dashboardLeaveCounter
	incidents  dashboardIncidentCounter
	staff      dashboardStaffCounter
	cache      dashboardCache
	logger     *zap.Logger
	now        func() time.Time
	cacheTTL   time.Duration
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Sessions   dashboardSessionCounter
	Candidates dashboardCandidateCounter
	Leaves     dashboardLeaveCounter
	Incidents  dashboardIncidentCounter
	Staff      dashboardStaffCounter
	Cache      dashboardCache
	Logger     *zap.Logger
	CacheTTL   time.Duration
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := params.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &DashboardService{
		sessions:   params.Sessions,
		candidates: params.Candidates,
		leaves:     params.Leaves,
		incidents:  params.Incidents,
		staff:      params.Staff,
		cache:      params.Cache,
		logger:     logger,
		now:        time.Now,
		cacheTTL:   ttl,
	}
}

// Summary returns the operations overview for today in the center timezone
// and reports whether it was served from cache.
func (s *DashboardService) Summary(ctx context.Context) (*DashboardSummary, bool, error) {
	date := timeutil.DateKey(s.now())
	cacheKey := fmt.Sprintf("dash:summary:%s", date)

	if s.cache != nil {
		var cached DashboardSummary
		err := s.cache.Get(ctx, cacheKey, &cached)
		if err == nil {
			return &cached, true, nil
		}
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("dashboard cache read failed", zap.Error(err))
		}
	}

	summary, err := s.compose(ctx, date)
	if err != nil {
		return nil, false, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, summary, s.cacheTTL); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.Error(err))
		}
	}
	return summary, false, nil
}

// Invalidate drops every cached summary. Staleness is otherwise bounded by
// the cache TTL; this is the manual refresh path.
func (s *DashboardService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "dash:summary:*"); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}

func (s *DashboardService) compose(ctx context.Context, date string) (*DashboardSummary, error) {
	sessions, candidates, err := s.sessions.CountOnDate(ctx, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count sessions")
	}

	summary := &DashboardSummary{
		Date:            date,
		SessionsToday:   sessions,
		CandidatesToday: candidates,
		Capacity:        ValidateCapacity(candidates),
		GeneratedAt:     s.now().UTC(),
	}

	statusCounts := []struct {
		status models.CandidateStatus
		dest   *int
	}{
		{models.CandidateCheckedIn, &summary.CheckedIn},
		{models.CandidateInProgress, &summary.InProgress},
		{models.CandidateCompleted, &summary.Completed},
		{models.CandidateNoShow, &summary.NoShows},
	}
	for _, sc := range statusCounts {
		count, err := s.candidates.CountByStatusOnDate(ctx, date, sc.status)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count candidates")
		}
		*sc.dest = count
	}

	if summary.PendingRequests, err = s.leaves.CountPending(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count pending requests")
	}
	if summary.OpenIncidents, err = s.incidents.CountOpen(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count open incidents")
	}
	if summary.ActiveStaff, err = s.staff.CountByStatus(ctx, models.StaffActive); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count active staff")
	}

	return summary, nil
}
