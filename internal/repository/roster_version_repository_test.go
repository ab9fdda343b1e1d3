package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func newRosterVersionRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestRosterVersionRecordEditFirstEntry(t *testing.T) {
	db, mock, cleanup := newRosterVersionRepoMock(t)
	defer cleanup()

	repo := NewRosterVersionRepository(db)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT version FROM roster_versions")).
		WithArgs(4, 2025).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE roster_versions SET active = FALSE")).
		WithArgs(4, 2025).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO roster_versions")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	version, err := repo.RecordEdit(context.Background(), 4, 2025, "quick-add filled 90 shifts", "admin-1")
	require.NoError(t, err)
	require.Equal(t, "v.01", version.Version)
	require.True(t, version.Active)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRosterVersionRecordEditIncrementsLabel(t *testing.T) {
	db, mock, cleanup := newRosterVersionRepoMock(t)
	defer cleanup()

	repo := NewRosterVersionRepository(db)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT version FROM roster_versions")).
		WithArgs(4, 2025).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow("v.07"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE roster_versions SET active = FALSE")).
		WithArgs(4, 2025).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO roster_versions")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	version, err := repo.RecordEdit(context.Background(), 4, 2025, "set shift", "admin-1")
	require.NoError(t, err)
	require.Equal(t, "v.08", version.Version)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRosterVersionRecordEditRollsBackOnInsertFailure(t *testing.T) {
	db, mock, cleanup := newRosterVersionRepoMock(t)
	defer cleanup()

	repo := NewRosterVersionRepository(db)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT version FROM roster_versions")).
		WithArgs(4, 2025).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow("v.02"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE roster_versions SET active = FALSE")).
		WithArgs(4, 2025).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO roster_versions")).
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	_, err := repo.RecordEdit(context.Background(), 4, 2025, "set shift", "admin-1")
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRosterVersionFindActive(t *testing.T) {
	db, mock, cleanup := newRosterVersionRepoMock(t)
	defer cleanup()

	repo := NewRosterVersionRepository(db)
	rows := sqlmock.NewRows([]string{"id", "month", "year", "version", "edit_log", "created_by", "active", "created_at"}).
		AddRow("ver-1", 4, 2025, "v.03", "set shift", "admin-1", true, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, month, year, version")).
		WithArgs(4, 2025).
		WillReturnRows(rows)

	version, err := repo.FindActive(context.Background(), 4, 2025)
	require.NoError(t, err)
	require.Equal(t, "v.03", version.Version)
	require.NoError(t, mock.ExpectationsWereMet())
}
