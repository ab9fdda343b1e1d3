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

// IncidentRepository manages persistence for incident reports.
type IncidentRepository struct {
	db *sqlx.DB
}

// NewIncidentRepository constructs an IncidentRepository.
func NewIncidentRepository(db *sqlx.DB) *IncidentRepository {
	return &IncidentRepository{db: db}
}

const incidentColumns = "id, title, description, severity, status, reported_by, assigned_to, created_at, updated_at"

// List returns incidents matching filters with total count.
func (r *IncidentRepository) List(ctx context.Context, filter models.IncidentFilter) ([]models.Incident, int, error) {
	base := "FROM incidents WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.Severity != nil {
		conditions = append(conditions, fmt.Sprintf("severity = $%d", len(args)+1))
		args = append(args, *filter.Severity)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"created_at": "created_at",
		"severity":   "severity",
		"status":     "status",
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", incidentColumns, base, column, order, size, offset)
	var incidents []models.Incident
	if err := r.db.SelectContext(ctx, &incidents, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list incidents: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count incidents: %w", err)
	}

	return incidents, total, nil
}

// FindByID fetches an incident by ID.
func (r *IncidentRepository) FindByID(ctx context.Context, id string) (*models.Incident, error) {
	query := fmt.Sprintf("SELECT %s FROM incidents WHERE id = $1", incidentColumns)
	var incident models.Incident
	if err := r.db.GetContext(ctx, &incident, query, id); err != nil {
		return nil, err
	}
	return &incident, nil
}

// CountOpen returns how many incidents are open or in progress.
func (r *IncidentRepository) CountOpen(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM incidents WHERE status IN ($1, $2)", models.IncidentOpen, models.IncidentInProgress); err != nil {
		return 0, fmt.Errorf("count open incidents: %w", err)
	}
	return count, nil
}

// Create inserts a new incident.
func (r *IncidentRepository) Create(ctx context.Context, incident *models.Incident) error {
	if incident.ID == "" {
		incident.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if incident.CreatedAt.IsZero() {
		incident.CreatedAt = now
	}
	incident.UpdatedAt = now

	const query = `INSERT INTO incidents (id, title, description, severity, status, reported_by, assigned_to, created_at, updated_at)
		VALUES (:id, :title, :description, :severity, :status, :reported_by, :assigned_to, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, incident); err != nil {
		return fmt.Errorf("create incident: %w", err)
	}
	return nil
}

// Update modifies an existing incident.
func (r *IncidentRepository) Update(ctx context.Context, incident *models.Incident) error {
	incident.UpdatedAt = time.Now().UTC()
	const query = `UPDATE incidents SET title = :title, description = :description, severity = :severity, status = :status, assigned_to = :assigned_to, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, incident); err != nil {
		return fmt.Errorf("update incident: %w", err)
	}
	return nil
}

// Delete removes an incident row.
func (r *IncidentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM incidents WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete incident: %w", err)
	}
	return nil
}
