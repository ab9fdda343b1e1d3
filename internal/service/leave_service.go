package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/fets-ops/console-api/internal/models"
	appErrors "github.com/fets-ops/console-api/pkg/errors"
	"github.com/fets-ops/console-api/pkg/timeutil"
)

type leaveRepository interface {
	List(ctx context.Context, filter models.LeaveFilter) ([]models.LeaveRequest, int, error)
	FindByID(ctx context.Context, id string) (*models.LeaveRequest, error)
	Create(ctx context.Context, request *models.LeaveRequest) error
	Decide(ctx context.Context, id string, status models.LeaveStatus, decidedBy string, decidedAt time.Time) (bool, error)
}

type rosterWriter interface {
	Upsert(ctx context.Context, entry *models.ScheduleEntry) error
	SwapShifts(ctx context.Context, staffA, dateA, staffB, dateB string) error
}

type auditRecorder interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// SubmitLeaveRequest is the payload for a staff leave or swap request.
type SubmitLeaveRequest struct {
	StaffProfileID string           `json:"staff_profile_id" validate:"required"`
	Type           models.LeaveType `json:"type" validate:"required,oneof=leave half_day shift_swap off_day_swap"`
	RequestDate    string           `json:"request_date" validate:"required,datetime=2006-01-02"`
	SwapPartnerID  *string          `json:"swap_partner_id"`
	SwapDate       *string          `json:"swap_date" validate:"omitempty,datetime=2006-01-02"`
	Reason         *string          `json:"reason"`
}

// LeaveService runs the request workflow: staff submit, admins decide, and
// approval writes the outcome back onto the roster.
type LeaveService struct {
	repo      leaveRepository
	roster    rosterWriter
	versions  rosterVersionLedger
	audit     auditRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewLeaveService constructs a LeaveService.
func NewLeaveService(repo leaveRepository, roster rosterWriter, versions rosterVersionLedger, audit auditRecorder, validate *validator.Validate, logger *zap.Logger) *LeaveService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &LeaveService{repo: repo, roster: roster, versions: versions, audit: audit, validator: validate, logger: logger}
}

// List returns requests matching the filter.
func (s *LeaveService) List(ctx context.Context, filter models.LeaveFilter) ([]models.LeaveRequest, *models.Pagination, error) {
	requests, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list requests")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	return requests, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Get returns a request by ID.
func (s *LeaveService) Get(ctx context.Context, id string) (*models.LeaveRequest, error) {
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request")
	}
	return request, nil
}

// Submit files a new pending request. Swap types must name a partner and a
// swap date; a staff member cannot swap with themselves.
func (s *LeaveService) Submit(ctx context.Context, req SubmitLeaveRequest) (*models.LeaveRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request payload")
	}

	if isSwapType(req.Type) {
		if req.SwapPartnerID == nil || *req.SwapPartnerID == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "swap requests require a partner")
		}
		if req.SwapDate == nil || *req.SwapDate == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "swap requests require a swap date")
		}
		if *req.SwapPartnerID == req.StaffProfileID {
			return nil, appErrors.Clone(appErrors.ErrValidation, "cannot swap with yourself")
		}
	}

	request := &models.LeaveRequest{
		StaffProfileID: req.StaffProfileID,
		Type:           req.Type,
		RequestDate:    req.RequestDate,
		SwapPartnerID:  req.SwapPartnerID,
		SwapDate:       req.SwapDate,
		Reason:         req.Reason,
		Status:         models.LeavePending,
	}

	if err := s.repo.Create(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create request")
	}
	return request, nil
}

// Approve moves a pending request to approved and applies its roster effect:
// leave types overwrite the day's shift cell, swap types exchange the two
// cells. A request that is no longer pending is rejected.
func (s *LeaveService) Approve(ctx context.Context, id, actorID string) (*models.LeaveRequest, error) {
	request, err := s.decide(ctx, id, models.LeaveApproved, actorID)
	if err != nil {
		return nil, err
	}

	if err := s.applyToRoster(ctx, request, actorID); err != nil {
		return nil, err
	}

	s.recordDecision(ctx, request, actorID)
	return request, nil
}

// Reject moves a pending request to rejected. The roster is untouched.
func (s *LeaveService) Reject(ctx context.Context, id, actorID string) (*models.LeaveRequest, error) {
	request, err := s.decide(ctx, id, models.LeaveRejected, actorID)
	if err != nil {
		return nil, err
	}
	s.recordDecision(ctx, request, actorID)
	return request, nil
}

func (s *LeaveService) decide(ctx context.Context, id string, status models.LeaveStatus, actorID string) (*models.LeaveRequest, error) {
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request")
	}
	if request.Status != models.LeavePending {
		return nil, appErrors.Clone(appErrors.ErrRequestFinalized, fmt.Sprintf("request already %s", request.Status))
	}

	decidedAt := time.Now().UTC()
	won, err := s.repo.Decide(ctx, id, status, actorID, decidedAt)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decide request")
	}
	if !won {
		return nil, appErrors.Clone(appErrors.ErrRequestFinalized, "request was decided concurrently")
	}

	request.Status = status
	request.DecidedBy = &actorID
	request.DecidedAt = &decidedAt
	return request, nil
}

func (s *LeaveService) applyToRoster(ctx context.Context, request *models.LeaveRequest, actorID string) error {
	switch request.Type {
	case models.LeaveFullDay, models.LeaveHalfDay:
		code := models.ShiftLeave
		if request.Type == models.LeaveHalfDay {
			code = models.ShiftHalfDay
		}
		entry := &models.ScheduleEntry{
			StaffProfileID: request.StaffProfileID,
			ShiftDate:      request.RequestDate,
			ShiftCode:      code,
		}
		if err := s.roster.Upsert(ctx, entry); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to apply leave to roster")
		}
	case models.LeaveShiftSwap, models.LeaveOffDaySwap:
		if request.SwapPartnerID == nil || request.SwapDate == nil {
			return appErrors.Clone(appErrors.ErrValidation, "swap request is missing partner details")
		}
		if err := s.roster.SwapShifts(ctx, request.StaffProfileID, request.RequestDate, *request.SwapPartnerID, *request.SwapDate); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to apply swap to roster")
		}
	default:
		return appErrors.Clone(appErrors.ErrValidation, "unknown request type")
	}

	day, err := timeutil.ParseDateKey(request.RequestDate)
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "invalid request date")
	}
	editLog := fmt.Sprintf("approved %s request for %s on %s", request.Type, request.StaffProfileID, request.RequestDate)
	if _, err := s.versions.RecordEdit(ctx, int(day.Month()), day.Year(), editLog, actorID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record roster version")
	}
	return nil
}

func (s *LeaveService) recordDecision(ctx context.Context, request *models.LeaveRequest, actorID string) {
	if s.audit == nil {
		return
	}
	payload, _ := json.Marshal(map[string]interface{}{
		"type":   request.Type,
		"status": request.Status,
		"date":   request.RequestDate,
	})
	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &actorID,
		Action:     models.AuditActionRequestDecide,
		Resource:   "leave_requests",
		ResourceID: &request.ID,
		NewValues:  payload,
	}); err != nil {
		s.logger.Warn("failed to record request decision audit log", zap.Error(err))
	}
}

func isSwapType(t models.LeaveType) bool {
	return t == models.LeaveShiftSwap || t == models.LeaveOffDaySwap
}
