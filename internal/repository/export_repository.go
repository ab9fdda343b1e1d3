package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/fets-ops/console-api/internal/models"
)

// ExportRepository tracks roster export jobs.
type ExportRepository struct {
	db *sqlx.DB
}

// NewExportRepository constructs an ExportRepository.
func NewExportRepository(db *sqlx.DB) *ExportRepository {
	return &ExportRepository{db: db}
}

const exportColumns = "id, month, year, format, status, file_path, error_text, requested_by, created_at, completed_at"

// Create inserts a queued export job.
func (r *ExportRepository) Create(ctx context.Context, job *models.ExportJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	if job.Status == "" {
		job.Status = models.ExportQueued
	}

	const query = `INSERT INTO export_jobs (id, month, year, format, status, file_path, error_text, requested_by, created_at, completed_at)
		VALUES (:id, :month, :year, :format, :status, :file_path, :error_text, :requested_by, :created_at, :completed_at)`
	if _, err := r.db.NamedExecContext(ctx, query, job); err != nil {
		return fmt.Errorf("create export job: %w", err)
	}
	return nil
}

// FindByID fetches an export job.
func (r *ExportRepository) FindByID(ctx context.Context, id string) (*models.ExportJob, error) {
	query := fmt.Sprintf("SELECT %s FROM export_jobs WHERE id = $1", exportColumns)
	var job models.ExportJob
	if err := r.db.GetContext(ctx, &job, query, id); err != nil {
		return nil, err
	}
	return &job, nil
}

// MarkRunning flips a job to running.
func (r *ExportRepository) MarkRunning(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "UPDATE export_jobs SET status = $2 WHERE id = $1", id, models.ExportRunning); err != nil {
		return fmt.Errorf("mark export running: %w", err)
	}
	return nil
}

// MarkCompleted records the produced file path.
func (r *ExportRepository) MarkCompleted(ctx context.Context, id, filePath string, completedAt time.Time) error {
	const query = `UPDATE export_jobs SET status = $2, file_path = $3, completed_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.ExportCompleted, filePath, completedAt); err != nil {
		return fmt.Errorf("mark export completed: %w", err)
	}
	return nil
}

// MarkFailed records the failure reason.
func (r *ExportRepository) MarkFailed(ctx context.Context, id, errorText string, completedAt time.Time) error {
	const query = `UPDATE export_jobs SET status = $2, error_text = $3, completed_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.ExportFailed, errorText, completedAt); err != nil {
		return fmt.Errorf("mark export failed: %w", err)
	}
	return nil
}
