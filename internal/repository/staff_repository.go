package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/fets-ops/console-api/internal/models"
)

// StaffRepository manages persistence for staff profiles.
type StaffRepository struct {
	db *sqlx.DB
}

// NewStaffRepository constructs a StaffRepository.
func NewStaffRepository(db *sqlx.DB) *StaffRepository {
	return &StaffRepository{db: db}
}

const staffColumns = "id, user_id, full_name, email, role, department, skills, certifications, status, created_at, updated_at"

// List returns staff profiles matching filters along with total count.
func (r *StaffRepository) List(ctx context.Context, filter models.StaffFilter) ([]models.StaffProfile, int, error) {
	base := "FROM staff_profiles WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.Role != nil {
		conditions = append(conditions, fmt.Sprintf("role = $%d", len(args)+1))
		args = append(args, *filter.Role)
	}
	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		conditions = append(conditions, fmt.Sprintf("(LOWER(full_name) LIKE $%d OR LOWER(email) LIKE $%d OR LOWER(COALESCE(department, '')) LIKE $%d)", len(args)+1, len(args)+1, len(args)+1))
		args = append(args, search)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"full_name":  "full_name",
		"email":      "email",
		"created_at": "created_at",
		"updated_at": "updated_at",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "full_name"
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
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", staffColumns, base, column, order, size, offset)
	var profiles []models.StaffProfile
	if err := r.db.SelectContext(ctx, &profiles, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list staff: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count staff: %w", err)
	}

	return profiles, total, nil
}

// ListActive returns every active staff profile ordered by name.
func (r *StaffRepository) ListActive(ctx context.Context) ([]models.StaffProfile, error) {
	query := fmt.Sprintf("SELECT %s FROM staff_profiles WHERE status = $1 ORDER BY full_name ASC", staffColumns)
	var profiles []models.StaffProfile
	if err := r.db.SelectContext(ctx, &profiles, query, models.StaffActive); err != nil {
		return nil, fmt.Errorf("list active staff: %w", err)
	}
	return profiles, nil
}

// FindByID fetches a staff profile by ID.
func (r *StaffRepository) FindByID(ctx context.Context, id string) (*models.StaffProfile, error) {
	query := fmt.Sprintf("SELECT %s FROM staff_profiles WHERE id = $1", staffColumns)
	var profile models.StaffProfile
	if err := r.db.GetContext(ctx, &profile, query, id); err != nil {
		return nil, err
	}
	return &profile, nil
}

// ExistsByEmail checks if another staff profile uses the same email.
func (r *StaffRepository) ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM staff_profiles WHERE LOWER(email) = LOWER($1)"
	args := []interface{}{email}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check staff email: %w", err)
	}
	return true, nil
}

// CountByStatus returns how many staff profiles carry the given status.
func (r *StaffRepository) CountByStatus(ctx context.Context, status models.StaffStatus) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM staff_profiles WHERE status = $1", status); err != nil {
		return 0, fmt.Errorf("count staff by status: %w", err)
	}
	return count, nil
}

// Create inserts a new staff profile.
func (r *StaffRepository) Create(ctx context.Context, profile *models.StaffProfile) error {
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now

	const query = `INSERT INTO staff_profiles (id, user_id, full_name, email, role, department, skills, certifications, status, created_at, updated_at)
		VALUES (:id, :user_id, :full_name, :email, :role, :department, :skills, :certifications, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("create staff profile: %w", err)
	}
	return nil
}

// Update modifies an existing staff profile.
func (r *StaffRepository) Update(ctx context.Context, profile *models.StaffProfile) error {
	profile.UpdatedAt = time.Now().UTC()
	const query = `UPDATE staff_profiles SET full_name = :full_name, email = :email, role = :role, department = :department, skills = :skills, certifications = :certifications, status = :status, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("update staff profile: %w", err)
	}
	return nil
}

// SetStatus updates only the employment status.
func (r *StaffRepository) SetStatus(ctx context.Context, id string, status models.StaffStatus) error {
	const query = `UPDATE staff_profiles SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("set staff status: %w", err)
	}
	return nil
}
