package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/fets-ops/console-api/internal/models"
)

// ScheduleRepository manages staff-day shift assignments. Rows are unique
// per (staff_profile_id, shift_date), enforced by a database constraint.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository constructs a ScheduleRepository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

const scheduleColumns = "id, staff_profile_id, shift_date, shift_code, overtime_hours, status, created_at, updated_at"

// ListRange returns all schedule entries with shift_date in [from, to].
func (r *ScheduleRepository) ListRange(ctx context.Context, from, to string) ([]models.ScheduleEntry, error) {
	query := fmt.Sprintf("SELECT %s FROM roster_schedules WHERE shift_date >= $1 AND shift_date <= $2 ORDER BY staff_profile_id, shift_date", scheduleColumns)
	var entries []models.ScheduleEntry
	if err := r.db.SelectContext(ctx, &entries, query, from, to); err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	return entries, nil
}

// ListByStaff returns one staff member's entries in [from, to].
func (r *ScheduleRepository) ListByStaff(ctx context.Context, staffID, from, to string) ([]models.ScheduleEntry, error) {
	query := fmt.Sprintf("SELECT %s FROM roster_schedules WHERE staff_profile_id = $1 AND shift_date >= $2 AND shift_date <= $3 ORDER BY shift_date", scheduleColumns)
	var entries []models.ScheduleEntry
	if err := r.db.SelectContext(ctx, &entries, query, staffID, from, to); err != nil {
		return nil, fmt.Errorf("list staff schedules: %w", err)
	}
	return entries, nil
}

// FindByStaffDate fetches the entry for one (staff, date) key.
func (r *ScheduleRepository) FindByStaffDate(ctx context.Context, staffID, date string) (*models.ScheduleEntry, error) {
	query := fmt.Sprintf("SELECT %s FROM roster_schedules WHERE staff_profile_id = $1 AND shift_date = $2 LIMIT 1", scheduleColumns)
	var entry models.ScheduleEntry
	if err := r.db.GetContext(ctx, &entry, query, staffID, date); err != nil {
		return nil, err
	}
	return &entry, nil
}

// ExistingKeys returns the set of "staffID|date" natural keys already
// present in [from, to]. Quick-add uses this to insert only missing days.
func (r *ScheduleRepository) ExistingKeys(ctx context.Context, from, to string) (map[string]struct{}, error) {
	rows, err := r.db.QueryxContext(ctx, "SELECT staff_profile_id, shift_date FROM roster_schedules WHERE shift_date >= $1 AND shift_date <= $2", from, to)
	if err != nil {
		return nil, fmt.Errorf("select schedule keys: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	keys := make(map[string]struct{})
	for rows.Next() {
		var staffID, date string
		if err := rows.Scan(&staffID, &date); err != nil {
			return nil, fmt.Errorf("scan schedule key: %w", err)
		}
		keys[ScheduleKey(staffID, date)] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate schedule keys: %w", err)
	}
	return keys, nil
}

// Upsert inserts or updates the entry for its (staff, date) key.
func (r *ScheduleRepository) Upsert(ctx context.Context, entry *models.ScheduleEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now
	if entry.Status == "" {
		entry.Status = "scheduled"
	}

	const query = `INSERT INTO roster_schedules (id, staff_profile_id, shift_date, shift_code, overtime_hours, status, created_at, updated_at)
		VALUES (:id, :staff_profile_id, :shift_date, :shift_code, :overtime_hours, :status, :created_at, :updated_at)
		ON CONFLICT (staff_profile_id, shift_date) DO UPDATE
		SET shift_code = EXCLUDED.shift_code, overtime_hours = EXCLUDED.overtime_hours, status = EXCLUDED.status, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("upsert schedule: %w", err)
	}
	return nil
}

// BulkInsert inserts entries that are known not to exist yet. Conflicting
// keys are skipped so a concurrent manual edit is never overwritten.
func (r *ScheduleRepository) BulkInsert(ctx context.Context, entries []models.ScheduleEntry) error {
	if len(entries) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for i := range entries {
		if entries[i].ID == "" {
			entries[i].ID = uuid.NewString()
		}
		if entries[i].CreatedAt.IsZero() {
			entries[i].CreatedAt = now
		}
		entries[i].UpdatedAt = now
		if entries[i].Status == "" {
			entries[i].Status = "scheduled"
		}
	}

	const query = `INSERT INTO roster_schedules (id, staff_profile_id, shift_date, shift_code, overtime_hours, status, created_at, updated_at)
		VALUES (:id, :staff_profile_id, :shift_date, :shift_code, :overtime_hours, :status, :created_at, :updated_at)
		ON CONFLICT (staff_profile_id, shift_date) DO NOTHING`
	if _, err := r.db.NamedExecContext(ctx, query, entries); err != nil {
		return fmt.Errorf("bulk insert schedules: %w", err)
	}
	return nil
}

// SwapShifts exchanges the shift codes of two (staff, date) cells in one
// transaction. A missing cell participates as a plain day shift so swapping
// against an unrostered day still yields two valid rows.
func (r *ScheduleRepository) SwapShifts(ctx context.Context, staffA, dateA, staffB, dateB string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin swap: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	codeA, err := shiftCodeInTx(ctx, tx, staffA, dateA)
	if err != nil {
		return err
	}
	codeB, err := shiftCodeInTx(ctx, tx, staffB, dateB)
	if err != nil {
		return err
	}

	if err := upsertShiftInTx(ctx, tx, staffA, dateA, codeB); err != nil {
		return err
	}
	if err := upsertShiftInTx(ctx, tx, staffB, dateB, codeA); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit swap: %w", err)
	}
	return nil
}

func shiftCodeInTx(ctx context.Context, tx *sqlx.Tx, staffID, date string) (models.ShiftCode, error) {
	var code models.ShiftCode
	err := tx.GetContext(ctx, &code, "SELECT shift_code FROM roster_schedules WHERE staff_profile_id = $1 AND shift_date = $2 LIMIT 1", staffID, date)
	if err == sql.ErrNoRows {
		return models.ShiftDay, nil
	}
	if err != nil {
		return "", fmt.Errorf("load shift for swap: %w", err)
	}
	return code, nil
}

func upsertShiftInTx(ctx context.Context, tx *sqlx.Tx, staffID, date string, code models.ShiftCode) error {
	now := time.Now().UTC()
	const query = `INSERT INTO roster_schedules (id, staff_profile_id, shift_date, shift_code, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 'scheduled', $5, $5)
		ON CONFLICT (staff_profile_id, shift_date) DO UPDATE
		SET shift_code = EXCLUDED.shift_code, updated_at = EXCLUDED.updated_at`
	if _, err := tx.ExecContext(ctx, query, uuid.NewString(), staffID, date, code, now); err != nil {
		return fmt.Errorf("write swapped shift: %w", err)
	}
	return nil
}

// Delete removes the entry for one (staff, date) key.
func (r *ScheduleRepository) Delete(ctx context.Context, staffID, date string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM roster_schedules WHERE staff_profile_id = $1 AND shift_date = $2", staffID, date); err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	return nil
}

// ScheduleKey builds the natural-key string used by ExistingKeys.
func ScheduleKey(staffID, date string) string {
	return staffID + "|" + date
}
