package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/fets-ops/console-api/internal/models"
)

// LeaveRepository manages staff leave and swap requests.
type LeaveRepository struct {
	db *sqlx.DB
}

// NewLeaveRepository constructs a LeaveRepository.
func NewLeaveRepository(db *sqlx.DB) *LeaveRepository {
	return &LeaveRepository{db: db}
}

const leaveColumns = "id, staff_profile_id, type, request_date, swap_partner_id, swap_date, reason, status, decided_by, decided_at, created_at, updated_at"

// List returns requests matching the filter with total count.
func (r *LeaveRepository) List(ctx context.Context, filter models.LeaveFilter) ([]models.LeaveRequest, int, error) {
	base := "FROM leave_requests WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.StaffProfileID != "" {
		conditions = append(conditions, fmt.Sprintf("staff_profile_id = $%d", len(args)+1))
		args = append(args, filter.StaffProfileID)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", leaveColumns, base, size, offset)
	var requests []models.LeaveRequest
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list leave requests: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count leave requests: %w", err)
	}

	return requests, total, nil
}

// FindByID fetches a request by ID.
func (r *LeaveRepository) FindByID(ctx context.Context, id string) (*models.LeaveRequest, error) {
	query := fmt.Sprintf("SELECT %s FROM leave_requests WHERE id = $1", leaveColumns)
	var request models.LeaveRequest
	if err := r.db.GetContext(ctx, &request, query, id); err != nil {
		return nil, err
	}
	return &request, nil
}

// CountPending returns how many requests are still pending.
func (r *LeaveRepository) CountPending(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM leave_requests WHERE status = $1", models.LeavePending); err != nil {
		return 0, fmt.Errorf("count pending requests: %w", err)
	}
	return count, nil
}

// Create inserts a new pending request.
func (r *LeaveRepository) Create(ctx context.Context, request *models.LeaveRequest) error {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if request.CreatedAt.IsZero() {
		request.CreatedAt = now
	}
	request.UpdatedAt = now
	if request.Status == "" {
		request.Status = models.LeavePending
	}

	const query = `INSERT INTO leave_requests (id, staff_profile_id, type, request_date, swap_partner_id, swap_date, reason, status, decided_by, decided_at, created_at, updated_at)
		VALUES (:id, :staff_profile_id, :type, :request_date, :swap_partner_id, :swap_date, :reason, :status, :decided_by, :decided_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, request); err != nil {
		return fmt.Errorf("create leave request: %w", err)
	}
	return nil
}

// Decide moves a pending request to its terminal status. The update is
// conditional on the row still being pending so two approvers cannot both
// win.
func (r *LeaveRepository) Decide(ctx context.Context, id string, status models.LeaveStatus, decidedBy string, decidedAt time.Time) (bool, error) {
	const query = `UPDATE leave_requests SET status = $2, decided_by = $3, decided_at = $4, updated_at = $4 WHERE id = $1 AND status = $5`
	res, err := r.db.ExecContext(ctx, query, id, status, decidedBy, decidedAt, models.LeavePending)
	if err != nil {
		return false, fmt.Errorf("decide leave request: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("decide leave request rows: %w", err)
	}
	return rows == 1, nil
}
