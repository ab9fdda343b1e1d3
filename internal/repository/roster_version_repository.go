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

// RosterVersionRepository manages the append-only roster edit ledger. The
// deactivate-then-insert pair runs inside a single transaction so a scope
// can never be observed with zero or two active versions.
type RosterVersionRepository struct {
	db *sqlx.DB
}

// NewRosterVersionRepository constructs a RosterVersionRepository.
func NewRosterVersionRepository(db *sqlx.DB) *RosterVersionRepository {
	return &RosterVersionRepository{db: db}
}

const versionColumns = "id, month, year, version, edit_log, created_by, active, created_at"

// ListByScope returns every ledger entry for a (month, year), newest first.
func (r *RosterVersionRepository) ListByScope(ctx context.Context, month, year int) ([]models.RosterVersion, error) {
	query := fmt.Sprintf("SELECT %s FROM roster_versions WHERE month = $1 AND year = $2 ORDER BY created_at DESC", versionColumns)
	var versions []models.RosterVersion
	if err := r.db.SelectContext(ctx, &versions, query, month, year); err != nil {
		return nil, fmt.Errorf("list roster versions: %w", err)
	}
	return versions, nil
}

// FindActive returns the active ledger entry for a (month, year).
func (r *RosterVersionRepository) FindActive(ctx context.Context, month, year int) (*models.RosterVersion, error) {
	query := fmt.Sprintf("SELECT %s FROM roster_versions WHERE month = $1 AND year = $2 AND active = TRUE LIMIT 1", versionColumns)
	var version models.RosterVersion
	if err := r.db.GetContext(ctx, &version, query, month, year); err != nil {
		return nil, err
	}
	return &version, nil
}

// RecordEdit appends the next ledger entry for a (month, year): the current
// active entry is deactivated and a new entry with the following version
// label is inserted, all in one transaction.
func (r *RosterVersionRepository) RecordEdit(ctx context.Context, month, year int, editLog, createdBy string) (*models.RosterVersion, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin roster version: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var prev string
	err = tx.GetContext(ctx, &prev, "SELECT version FROM roster_versions WHERE month = $1 AND year = $2 ORDER BY created_at DESC LIMIT 1", month, year)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("load latest roster version: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "UPDATE roster_versions SET active = FALSE WHERE month = $1 AND year = $2 AND active = TRUE", month, year); err != nil {
		return nil, fmt.Errorf("deactivate roster version: %w", err)
	}

	version := &models.RosterVersion{
		ID:        uuid.NewString(),
		Month:     month,
		Year:      year,
		Version:   models.NextRosterVersion(prev),
		EditLog:   editLog,
		CreatedBy: createdBy,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}

	const insert = `INSERT INTO roster_versions (id, month, year, version, edit_log, created_by, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := tx.ExecContext(ctx, insert, version.ID, version.Month, version.Year, version.Version, version.EditLog, version.CreatedBy, version.Active, version.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert roster version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit roster version: %w", err)
	}
	return version, nil
}
