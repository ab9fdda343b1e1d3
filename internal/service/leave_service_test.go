package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fets-ops/console-api/internal/models"
	appErrors "github.com/fets-ops/console-api/pkg/errors"
)

type mockLeaveRepo struct {
	requests map[string]models.LeaveRequest
	created  *models.LeaveRequest
	decided  []string
}

func (m *mockLeaveRepo) List(ctx context.Context, filter models.LeaveFilter) ([]models.LeaveRequest, int, error) {
	var list []models.LeaveRequest
	for _, r := range m.requests {
		list = append(list, r)
	}
	return list, len(list), nil
}

func (m *mockLeaveRepo) FindByID(ctx context.Context, id string) (*models.LeaveRequest, error) {
	if r, ok := m.requests[id]; ok {
		return &r, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockLeaveRepo) Create(ctx context.Context, request *models.LeaveRequest) error {
	if m.requests == nil {
		m.requests = make(map[string]models.LeaveRequest)
	}
	if request.ID == "" {
		request.ID = "req-new"
	}
	m.requests[request.ID] = *request
	m.created = request
	return nil
}

func (m *mockLeaveRepo) Decide(ctx context.Context, id string, status models.LeaveStatus, decidedBy string, decidedAt time.Time) (bool, error) {
	r, ok := m.requests[id]
	if !ok || r.Status != models.LeavePending {
		return false, nil
	}
	r.Status = status
	r.DecidedBy = &decidedBy
	r.DecidedAt = &decidedAt
	m.requests[id] = r
	m.decided = append(m.decided, id)
	return true, nil
}

type mockAuditRecorder struct {
	logs []models.AuditLog
}

func (m *mockAuditRecorder) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.logs = append(m.logs, *log)
	return nil
}

func pendingRequest(id string, reqType models.LeaveType) models.LeaveRequest {
	return models.LeaveRequest{
		ID:             id,
		StaffProfileID: "staff-x",
		Type:           reqType,
		RequestDate:    "2025-03-10",
		Status:         models.LeavePending,
	}
}

func TestLeaveApprovalWritesHalfDayShift(t *testing.T) {
	repo := &mockLeaveRepo{requests: map[string]models.LeaveRequest{"r1": pendingRequest("r1", models.LeaveHalfDay)}}
	roster := &mockScheduleRepo{}
	ledger := &mockVersionLedger{}
	audit := &mockAuditRecorder{}
	svc := NewLeaveService(repo, roster, ledger, audit, validator.New(), zap.NewNop())

	request, err := svc.Approve(context.Background(), "r1", "admin-1")
	require.NoError(t, err)
	assert.Equal(t, models.LeaveApproved, request.Status)

	entry := roster.entries[roster.key("staff-x", "2025-03-10")]
	assert.Equal(t, models.ShiftHalfDay, entry.ShiftCode)
	assert.Len(t, ledger.edits, 1)
	assert.Len(t, audit.logs, 1)
}

func TestLeaveApprovalOverwritesExistingShift(t *testing.T) {
	repo := &mockLeaveRepo{requests: map[string]models.LeaveRequest{"r1": pendingRequest("r1", models.LeaveFullDay)}}
	roster := &mockScheduleRepo{entries: map[string]models.ScheduleEntry{}}
	roster.entries[roster.key("staff-x", "2025-03-10")] = models.ScheduleEntry{
		StaffProfileID: "staff-x", ShiftDate: "2025-03-10", ShiftCode: models.ShiftDay,
	}
	svc := NewLeaveService(repo, roster, &mockVersionLedger{}, &mockAuditRecorder{}, validator.New(), zap.NewNop())

	_, err := svc.Approve(context.Background(), "r1", "admin-1")
	require.NoError(t, err)

	entry := roster.entries[roster.key("staff-x", "2025-03-10")]
	assert.Equal(t, models.ShiftLeave, entry.ShiftCode)
}

func TestSwapApprovalExchangesBothCells(t *testing.T) {
	partner := "staff-y"
	swapDate := "2025-03-15"
	request := pendingRequest("r1", models.LeaveShiftSwap)
	request.SwapPartnerID = &partner
	request.SwapDate = &swapDate

	repo := &mockLeaveRepo{requests: map[string]models.LeaveRequest{"r1": request}}
	roster := &mockScheduleRepo{entries: map[string]models.ScheduleEntry{}}
	roster.entries[roster.key("staff-x", "2025-03-10")] = models.ScheduleEntry{StaffProfileID: "staff-x", ShiftDate: "2025-03-10", ShiftCode: models.ShiftDay}
	roster.entries[roster.key("staff-y", "2025-03-15")] = models.ScheduleEntry{StaffProfileID: "staff-y", ShiftDate: "2025-03-15", ShiftCode: models.ShiftRestDay}
	svc := NewLeaveService(repo, roster, &mockVersionLedger{}, &mockAuditRecorder{}, validator.New(), zap.NewNop())

	_, err := svc.Approve(context.Background(), "r1", "admin-1")
	require.NoError(t, err)

	require.Len(t, roster.swaps, 1)
	assert.Equal(t, models.ShiftRestDay, roster.entries[roster.key("staff-x", "2025-03-10")].ShiftCode)
	assert.Equal(t, models.ShiftDay, roster.entries[roster.key("staff-y", "2025-03-15")].ShiftCode)
}

func TestDecidingFinalizedRequestFails(t *testing.T) {
	request := pendingRequest("r1", models.LeaveFullDay)
	request.Status = models.LeaveApproved
	repo := &mockLeaveRepo{requests: map[string]models.LeaveRequest{"r1": request}}
	svc := NewLeaveService(repo, &mockScheduleRepo{}, &mockVersionLedger{}, &mockAuditRecorder{}, validator.New(), zap.NewNop())

	_, err := svc.Reject(context.Background(), "r1", "admin-1")
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrRequestFinalized.Code, appErr.Code)
}

func TestRejectLeavesRosterUntouched(t *testing.T) {
	repo := &mockLeaveRepo{requests: map[string]models.LeaveRequest{"r1": pendingRequest("r1", models.LeaveFullDay)}}
	roster := &mockScheduleRepo{}
	svc := NewLeaveService(repo, roster, &mockVersionLedger{}, &mockAuditRecorder{}, validator.New(), zap.NewNop())

	request, err := svc.Reject(context.Background(), "r1", "admin-1")
	require.NoError(t, err)
	assert.Equal(t, models.LeaveRejected, request.Status)
	assert.Empty(t, roster.upserted)
	assert.Empty(t, roster.swaps)
}

func TestSubmitSwapRequiresPartner(t *testing.T) {
	svc := NewLeaveService(&mockLeaveRepo{}, &mockScheduleRepo{}, &mockVersionLedger{}, &mockAuditRecorder{}, validator.New(), zap.NewNop())

	_, err := svc.Submit(context.Background(), SubmitLeaveRequest{
		StaffProfileID: "staff-x",
		Type:           models.LeaveShiftSwap,
		RequestDate:    "2025-03-10",
	})
	require.Error(t, err)
}

func TestSubmitRejectsSelfSwap(t *testing.T) {
	svc := NewLeaveService(&mockLeaveRepo{}, &mockScheduleRepo{}, &mockVersionLedger{}, &mockAuditRecorder{}, validator.New(), zap.NewNop())

	self := "staff-x"
	date := "2025-03-15"
	_, err := svc.Submit(context.Background(), SubmitLeaveRequest{
		StaffProfileID: "staff-x",
		Type:           models.LeaveOffDaySwap,
		RequestDate:    "2025-03-10",
		SwapPartnerID:  &self,
		SwapDate:       &date,
	})
	require.Error(t, err)
}
