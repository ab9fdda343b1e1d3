package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fets-ops/console-api/internal/models"
	appErrors "github.com/fets-ops/console-api/pkg/errors"
)

type sessionRepository interface {
	List(ctx context.Context, filter models.SessionFilter) ([]models.Session, int, error)
	FindByID(ctx context.Context, id string) (*models.Session, error)
	CountOnDate(ctx context.Context, date string) (sessions int, candidates int, err error)
	Create(ctx context.Context, session *models.Session) error
	Update(ctx context.Context, session *models.Session) error
	Delete(ctx context.Context, id string) error
}

// CreateSessionRequest is the payload for scheduling a session.
type CreateSessionRequest struct {
	ClientName     string `json:"client_name" validate:"required"`
	ExamName       string `json:"exam_name" validate:"required"`
	SessionDate    string `json:"session_date" validate:"required,datetime=2006-01-02"`
	CandidateCount int    `json:"candidate_count" validate:"required,min=1"`
	StartTime      string `json:"start_time" validate:"required"`
	EndTime        string `json:"end_time" validate:"required"`
}

// UpdateSessionRequest is the payload for editing a session.
type UpdateSessionRequest struct {
	ClientName     string `json:"client_name" validate:"required"`
	ExamName       string `json:"exam_name" validate:"required"`
	SessionDate    string `json:"session_date" validate:"required,datetime=2006-01-02"`
	CandidateCount int    `json:"candidate_count" validate:"required,min=1"`
	StartTime      string `json:"start_time" validate:"required"`
	EndTime        string `json:"end_time" validate:"required"`
}

// SessionResult pairs a persisted session with its capacity advisory.
type SessionResult struct {
	Session  *models.Session `json:"session"`
	Capacity CapacityCheck   `json:"capacity"`
}

// SessionService manages exam session scheduling with day-level capacity
// enforcement.
type SessionService struct {
	repo      sessionRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSessionService constructs a SessionService.
func NewSessionService(repo sessionRepository, validate *validator.Validate, logger *zap.Logger) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SessionService{repo: repo, validator: validate, logger: logger}
}

// List returns sessions matching the filter.
func (s *SessionService) List(ctx context.Context, filter models.SessionFilter) ([]models.Session, *models.Pagination, error) {
	sessions, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	return sessions, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Get returns a session by ID.
func (s *SessionService) Get(ctx context.Context, id string) (*models.Session, error) {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	return session, nil
}

// CheckDate reports the day's booked totals and the capacity verdict a new
// session with extraCandidates would receive.
func (s *SessionService) CheckDate(ctx context.Context, date string, extraCandidates int) (CapacityCheck, int, error) {
	_, booked, err := s.repo.CountOnDate(ctx, date)
	if err != nil {
		return CapacityCheck{}, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count booked candidates")
	}
	return ValidateCapacity(booked + extraCandidates), booked, nil
}

// Create schedules a session. The day's combined candidate count is checked
// against the seat limit first; exceeding it rejects the session outright.
func (s *SessionService) Create(ctx context.Context, req CreateSessionRequest, actorID string) (*SessionResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}

	_, booked, err := s.repo.CountOnDate(ctx, req.SessionDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count booked candidates")
	}

	check := ValidateCapacity(booked + req.CandidateCount)
	if check.Level == CapacityError {
		return nil, appErrors.Clone(appErrors.ErrCapacityExceeded, check.Message)
	}

	session := &models.Session{
		ID:             uuid.NewString(),
		ClientName:     req.ClientName,
		ExamName:       req.ExamName,
		SessionDate:    req.SessionDate,
		CandidateCount: req.CandidateCount,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		CreatedBy:      actorID,
	}

	if err := s.repo.Create(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session")
	}

	if check.Level == CapacityWarning {
		s.logger.Warn("session booked near capacity",
			zap.String("session_id", session.ID),
			zap.String("date", session.SessionDate),
			zap.Int("booked", booked+req.CandidateCount))
	}

	return &SessionResult{Session: session, Capacity: check}, nil
}

// Update edits a session. The capacity check excludes the session's own
// current count so resizing within the limit is always possible.
func (s *SessionService) Update(ctx context.Context, id string, req UpdateSessionRequest) (*SessionResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}

	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}

	_, booked, err := s.repo.CountOnDate(ctx, req.SessionDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count booked candidates")
	}
	if session.SessionDate == req.SessionDate {
		booked -= session.CandidateCount
	}

	check := ValidateCapacity(booked + req.CandidateCount)
	if check.Level == CapacityError {
		return nil, appErrors.Clone(appErrors.ErrCapacityExceeded, check.Message)
	}

	session.ClientName = req.ClientName
	session.ExamName = req.ExamName
	session.SessionDate = req.SessionDate
	session.CandidateCount = req.CandidateCount
	session.StartTime = req.StartTime
	session.EndTime = req.EndTime

	if err := s.repo.Update(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update session")
	}

	return &SessionResult{Session: session, Capacity: check}, nil
}

// Delete removes a session.
func (s *SessionService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete session")
	}
	return nil
}
