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

// SessionRepository manages persistence for exam sessions.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository constructs a SessionRepository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = "id, client_name, exam_name, session_date, candidate_count, start_time, end_time, created_by, created_at, updated_at"

// List returns sessions matching filters with total count.
func (r *SessionRepository) List(ctx context.Context, filter models.SessionFilter) ([]models.Session, int, error) {
	base := "FROM sessions WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Date != "" {
		conditions = append(conditions, fmt.Sprintf("session_date = $%d", len(args)+1))
		args = append(args, filter.Date)
	}
	if filter.FromDate != "" {
		conditions = append(conditions, fmt.Sprintf("session_date >= $%d", len(args)+1))
		args = append(args, filter.FromDate)
	}
	if filter.ToDate != "" {
		conditions = append(conditions, fmt.Sprintf("session_date <= $%d", len(args)+1))
		args = append(args, filter.ToDate)
	}
	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		conditions = append(conditions, fmt.Sprintf("(LOWER(client_name) LIKE $%d OR LOWER(exam_name) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, search)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"session_date": "session_date",
		"client_name":  "client_name",
		"created_at":   "created_at",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "session_date"
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s, start_time ASC LIMIT %d OFFSET %d", sessionColumns, base, column, order, size, offset)
	var sessions []models.Session
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list sessions: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count sessions: %w", err)
	}

	return sessions, total, nil
}

// FindByID fetches a session by ID.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.Session, error) {
	query := fmt.Sprintf("SELECT %s FROM sessions WHERE id = $1", sessionColumns)
	var session models.Session
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}

// CountOnDate returns the session count and total candidates for one day.
func (r *SessionRepository) CountOnDate(ctx context.Context, date string) (sessions int, candidates int, err error) {
	row := r.db.QueryRowxContext(ctx, "SELECT COUNT(*), COALESCE(SUM(candidate_count), 0) FROM sessions WHERE session_date = $1", date)
	if err := row.Scan(&sessions, &candidates); err != nil {
		return 0, 0, fmt.Errorf("count sessions on date: %w", err)
	}
	return sessions, candidates, nil
}

// Create inserts a new session.
func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now

	const query = `INSERT INTO sessions (id, client_name, exam_name, session_date, candidate_count, start_time, end_time, created_by, created_at, updated_at)
		VALUES (:id, :client_name, :exam_name, :session_date, :candidate_count, :start_time, :end_time, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// Update modifies an existing session.
func (r *SessionRepository) Update(ctx context.Context, session *models.Session) error {
	session.UpdatedAt = time.Now().UTC()
	const query = `UPDATE sessions SET client_name = :client_name, exam_name = :exam_name, session_date = :session_date, candidate_count = :candidate_count, start_time = :start_time, end_time = :end_time, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

// Delete removes a session row.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
