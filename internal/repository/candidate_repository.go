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

// CandidateRepository manages persistence for candidates.
type CandidateRepository struct {
	db *sqlx.DB
}

// NewCandidateRepository constructs a CandidateRepository.
func NewCandidateRepository(db *sqlx.DB) *CandidateRepository {
	return &CandidateRepository{db: db}
}

const candidateColumns = "id, full_name, email, phone, exam_name, exam_date, status, confirmation_number, notes, created_at, updated_at"

// List returns candidates matching filters with total count.
func (r *CandidateRepository) List(ctx context.Context, filter models.CandidateFilter) ([]models.Candidate, int, error) {
	base := "FROM candidates WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.ExamDate != "" {
		conditions = append(conditions, fmt.Sprintf("exam_date = $%d", len(args)+1))
		args = append(args, filter.ExamDate)
	}
	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		conditions = append(conditions, fmt.Sprintf("(LOWER(full_name) LIKE $%d OR LOWER(COALESCE(email, '')) LIKE $%d OR LOWER(confirmation_number) LIKE $%d)", len(args)+1, len(args)+1, len(args)+1))
		args = append(args, search)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"full_name":  "full_name",
		"exam_date":  "exam_date",
		"status":     "status",
		"created_at": "created_at",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "created_at"
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", candidateColumns, base, column, order, size, offset)
	var candidates []models.Candidate
	if err := r.db.SelectContext(ctx, &candidates, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list candidates: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count candidates: %w", err)
	}

	return candidates, total, nil
}

// FindByID fetches a candidate by ID.
func (r *CandidateRepository) FindByID(ctx context.Context, id string) (*models.Candidate, error) {
	query := fmt.Sprintf("SELECT %s FROM candidates WHERE id = $1", candidateColumns)
	var candidate models.Candidate
	if err := r.db.GetContext(ctx, &candidate, query, id); err != nil {
		return nil, err
	}
	return &candidate, nil
}

// CountByStatusOnDate returns how many candidates on a given exam date carry
// the given status.
func (r *CandidateRepository) CountByStatusOnDate(ctx context.Context, date string, status models.CandidateStatus) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM candidates WHERE exam_date = $1 AND status = $2", date, status); err != nil {
		return 0, fmt.Errorf("count candidates by status: %w", err)
	}
	return count, nil
}

// Create inserts a new candidate.
func (r *CandidateRepository) Create(ctx context.Context, candidate *models.Candidate) error {
	if candidate.ID == "" {
		candidate.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if candidate.CreatedAt.IsZero() {
		candidate.CreatedAt = now
	}
	candidate.UpdatedAt = now

	const query = `INSERT INTO candidates (id, full_name, email, phone, exam_name, exam_date, status, confirmation_number, notes, created_at, updated_at)
		VALUES (:id, :full_name, :email, :phone, :exam_name, :exam_date, :status, :confirmation_number, :notes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, candidate); err != nil {
		return fmt.Errorf("create candidate: %w", err)
	}
	return nil
}

// Update modifies an existing candidate.
func (r *CandidateRepository) Update(ctx context.Context, candidate *models.Candidate) error {
	candidate.UpdatedAt = time.Now().UTC()
	const query = `UPDATE candidates SET full_name = :full_name, email = :email, phone = :phone, exam_name = :exam_name, exam_date = :exam_date, status = :status, notes = :notes, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, candidate); err != nil {
		return fmt.Errorf("update candidate: %w", err)
	}
	return nil
}

// UpdateStatus sets only the candidate status.
func (r *CandidateRepository) UpdateStatus(ctx context.Context, id string, status models.CandidateStatus) error {
	const query = `UPDATE candidates SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update candidate status: %w", err)
	}
	return nil
}

// Delete removes a candidate row.
func (r *CandidateRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM candidates WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete candidate: %w", err)
	}
	return nil
}
