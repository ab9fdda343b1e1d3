package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/fets-ops/console-api/internal/models"
)

func newScheduleRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestScheduleRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()

	repo := NewScheduleRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO roster_schedules")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	entry := &models.ScheduleEntry{
		StaffProfileID: "staff-1",
		ShiftDate:      "2025-04-07",
		ShiftCode:      models.ShiftRestDay,
	}
	require.NoError(t, repo.Upsert(context.Background(), entry))
	require.NotEmpty(t, entry.ID)
	require.Equal(t, "scheduled", entry.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryExistingKeys(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()

	repo := NewScheduleRepository(db)
	rows := sqlmock.NewRows([]string{"staff_profile_id", "shift_date"}).
		AddRow("staff-1", "2025-04-01").
		AddRow("staff-2", "2025-04-02")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT staff_profile_id, shift_date FROM roster_schedules")).
		WithArgs("2025-04-01", "2025-04-30").
		WillReturnRows(rows)

	keys, err := repo.ExistingKeys(context.Background(), "2025-04-01", "2025-04-30")
	require.NoError(t, err)
	require.Len(t, keys, 2)
	_, ok := keys[ScheduleKey("staff-1", "2025-04-01")]
	require.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositorySwapShifts(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()

	repo := NewScheduleRepository(db)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT shift_code FROM roster_schedules")).
		WithArgs("staff-1", "2025-04-10").
		WillReturnRows(sqlmock.NewRows([]string{"shift_code"}).AddRow("D"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT shift_code FROM roster_schedules")).
		WithArgs("staff-2", "2025-04-12").
		WillReturnRows(sqlmock.NewRows([]string{"shift_code"}).AddRow("RD"))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO roster_schedules")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO roster_schedules")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.SwapShifts(context.Background(), "staff-1", "2025-04-10", "staff-2", "2025-04-12"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositorySwapShiftsMissingCellDefaultsToDay(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()

	repo := NewScheduleRepository(db)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT shift_code FROM roster_schedules")).
		WithArgs("staff-1", "2025-04-10").
		WillReturnRows(sqlmock.NewRows([]string{"shift_code"}).AddRow("RD"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT shift_code FROM roster_schedules")).
		WithArgs("staff-2", "2025-04-12").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO roster_schedules")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO roster_schedules")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.SwapShifts(context.Background(), "staff-1", "2025-04-10", "staff-2", "2025-04-12"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryBulkInsertEmpty(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()

	repo := NewScheduleRepository(db)
	require.NoError(t, repo.BulkInsert(context.Background(), nil))
	require.NoError(t, mock.ExpectationsWereMet())
}
