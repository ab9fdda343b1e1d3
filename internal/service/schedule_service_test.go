package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fets-ops/console-api/internal/models"
	"github.com/fets-ops/console-api/internal/repository"
)

type mockScheduleRepo struct {
	entries  map[string]models.ScheduleEntry
	upserted []models.ScheduleEntry
	bulk     []models.ScheduleEntry
	deleted  []string
	swaps    [][4]string
}

func (m *mockScheduleRepo) key(staffID, date string) string {
	return repository.ScheduleKey(staffID, date)
}

func (m *mockScheduleRepo) ListRange(ctx context.Context, from, to string) ([]models.ScheduleEntry, error) {
	var list []models.ScheduleEntry
	for _, e := range m.entries {
		if e.ShiftDate >= from && e.ShiftDate <= to {
			list = append(list, e)
		}
	}
	return list, nil
}

func (m *mockScheduleRepo) ListByStaff(ctx context.Context, staffID, from, to string) ([]models.ScheduleEntry, error) {
	var list []models.ScheduleEntry
	for _, e := range m.entries {
		if e.StaffProfileID == staffID && e.ShiftDate >= from && e.ShiftDate <= to {
			list = append(list, e)
		}
	}
	return list, nil
}

func (m *mockScheduleRepo) ExistingKeys(ctx context.Context, from, to string) (map[string]struct{}, error) {
	keys := make(map[string]struct{})
	for _, e := range m.entries {
		if e.ShiftDate >= from && e.ShiftDate <= to {
			keys[m.key(e.StaffProfileID, e.ShiftDate)] = struct{}{}
		}
	}
	return keys, nil
}

func (m *mockScheduleRepo) Upsert(ctx context.Context, entry *models.ScheduleEntry) error {
	if m.entries == nil {
		m.entries = make(map[string]models.ScheduleEntry)
	}
	m.entries[m.key(entry.StaffProfileID, entry.ShiftDate)] = *entry
	m.upserted = append(m.upserted, *entry)
	return nil
}

func (m *mockScheduleRepo) BulkInsert(ctx context.Context, entries []models.ScheduleEntry) error {
	if m.entries == nil {
		m.entries = make(map[string]models.ScheduleEntry)
	}
	for _, e := range entries {
		key := m.key(e.StaffProfileID, e.ShiftDate)
		if _, exists := m.entries[key]; exists {
			continue
		}
		m.entries[key] = e
	}
	m.bulk = append(m.bulk, entries...)
	return nil
}

func (m *mockScheduleRepo) SwapShifts(ctx context.Context, staffA, dateA, staffB, dateB string) error {
	m.swaps = append(m.swaps, [4]string{staffA, dateA, staffB, dateB})
	keyA := m.key(staffA, dateA)
	keyB := m.key(staffB, dateB)
	codeA, codeB := models.ShiftDay, models.ShiftDay
	if e, ok := m.entries[keyA]; ok {
		codeA = e.ShiftCode
	}
	if e, ok := m.entries[keyB]; ok {
		codeB = e.ShiftCode
	}
	if m.entries == nil {
		m.entries = make(map[string]models.ScheduleEntry)
	}
	m.entries[keyA] = models.ScheduleEntry{StaffProfileID: staffA, ShiftDate: dateA, ShiftCode: codeB}
	m.entries[keyB] = models.ScheduleEntry{StaffProfileID: staffB, ShiftDate: dateB, ShiftCode: codeA}
	return nil
}

func (m *mockScheduleRepo) Delete(ctx context.Context, staffID, date string) error {
	delete(m.entries, m.key(staffID, date))
	m.deleted = append(m.deleted, m.key(staffID, date))
	return nil
}

type mockVersionLedger struct {
	versions map[string][]models.RosterVersion
	edits    []string
}

func (m *mockVersionLedger) scope(month, year int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

func (m *mockVersionLedger) ListByScope(ctx context.Context, month, year int) ([]models.RosterVersion, error) {
	return m.versions[m.scope(month, year)], nil
}

func (m *mockVersionLedger) FindActive(ctx context.Context, month, year int) (*models.RosterVersion, error) {
	list := m.versions[m.scope(month, year)]
	for i := range list {
		if list[i].Active {
			return &list[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockVersionLedger) RecordEdit(ctx context.Context, month, year int, editLog, createdBy string) (*models.RosterVersion, error) {
	if m.versions == nil {
		m.versions = make(map[string][]models.RosterVersion)
	}
	key := m.scope(month, year)
	list := m.versions[key]
	prev := ""
	for i := range list {
		list[i].Active = false
		prev = list[i].Version
	}
	version := models.RosterVersion{
		Month:     month,
		Year:      year,
		Version:   models.NextRosterVersion(prev),
		EditLog:   editLog,
		CreatedBy: createdBy,
		Active:    true,
	}
	m.versions[key] = append(list, version)
	m.edits = append(m.edits, editLog)
	return &version, nil
}

type mockStaffLister struct {
	profiles []models.StaffProfile
}

func (m *mockStaffLister) ListActive(ctx context.Context) ([]models.StaffProfile, error) {
	return m.profiles, nil
}

func threeStaff() *mockStaffLister {
	return &mockStaffLister{profiles: []models.StaffProfile{
		{ID: "staff-a", FullName: "Alice Ong", Status: models.StaffActive},
		{ID: "staff-b", FullName: "Bala Kumar", Status: models.StaffActive},
		{ID: "staff-c", FullName: "Chen Wei", Status: models.StaffActive},
	}}
}

func TestQuickAddMonthFillsRotation(t *testing.T) {
	repo := &mockScheduleRepo{}
	ledger := &mockVersionLedger{}
	svc := NewScheduleService(repo, ledger, threeStaff(), validator.New(), zap.NewNop(), "", "")

	// April 2025 has 30 days.
	result, err := svc.QuickAddMonth(context.Background(), 4, 2025, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, 90, result.Inserted)
	assert.Equal(t, 0, result.Skipped)
	require.NotNil(t, result.Version)
	assert.Equal(t, "v.01", result.Version.Version)

	// Rest days fall every seventh day counting from the first.
	for _, day := range []string{"2025-04-07", "2025-04-14", "2025-04-21", "2025-04-28"} {
		entry := repo.entries[repo.key("staff-a", day)]
		assert.Equal(t, models.ShiftRestDay, entry.ShiftCode, day)
	}
	assert.Equal(t, models.ShiftDay, repo.entries[repo.key("staff-a", "2025-04-01")].ShiftCode)
	assert.Equal(t, models.ShiftDay, repo.entries[repo.key("staff-b", "2025-04-30")].ShiftCode)
}

func TestQuickAddMonthNeverOverwrites(t *testing.T) {
	repo := &mockScheduleRepo{entries: map[string]models.ScheduleEntry{}}
	manual := models.ScheduleEntry{StaffProfileID: "staff-a", ShiftDate: "2025-04-03", ShiftCode: models.ShiftLeave}
	repo.entries[repo.key(manual.StaffProfileID, manual.ShiftDate)] = manual
	ledger := &mockVersionLedger{}
	svc := NewScheduleService(repo, ledger, threeStaff(), validator.New(), zap.NewNop(), "", "")

	result, err := svc.QuickAddMonth(context.Background(), 4, 2025, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, 89, result.Inserted)
	assert.Equal(t, 1, result.Skipped)

	kept := repo.entries[repo.key("staff-a", "2025-04-03")]
	assert.Equal(t, models.ShiftLeave, kept.ShiftCode)
}

func TestUpsertShiftRecordsVersion(t *testing.T) {
	repo := &mockScheduleRepo{}
	ledger := &mockVersionLedger{}
	svc := NewScheduleService(repo, ledger, threeStaff(), validator.New(), zap.NewNop(), "", "")

	req := UpsertShiftRequest{StaffProfileID: "staff-a", ShiftDate: "2025-03-10", ShiftCode: models.ShiftHalfDay}
	entry, version, err := svc.UpsertShift(context.Background(), req, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, models.ShiftHalfDay, entry.ShiftCode)
	require.NotNil(t, version)
	assert.Equal(t, "v.01", version.Version)
	assert.Equal(t, 3, version.Month)
	assert.Equal(t, 2025, version.Year)

	// A second edit in the same scope advances the ledger.
	req.ShiftCode = models.ShiftDay
	_, version, err = svc.UpsertShift(context.Background(), req, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, "v.02", version.Version)
}

func TestUpsertShiftRejectsUnknownCode(t *testing.T) {
	svc := NewScheduleService(&mockScheduleRepo{}, &mockVersionLedger{}, threeStaff(), validator.New(), zap.NewNop(), "", "")

	req := UpsertShiftRequest{StaffProfileID: "staff-a", ShiftDate: "2025-03-10", ShiftCode: "XX"}
	_, _, err := svc.UpsertShift(context.Background(), req, "admin-1")
	require.Error(t, err)
}

func TestUpsertShiftRejectsOvertimeHoursOnNonOT(t *testing.T) {
	svc := NewScheduleService(&mockScheduleRepo{}, &mockVersionLedger{}, threeStaff(), validator.New(), zap.NewNop(), "", "")

	hours := 2.5
	req := UpsertShiftRequest{StaffProfileID: "staff-a", ShiftDate: "2025-03-10", ShiftCode: models.ShiftDay, OvertimeHours: &hours}
	_, _, err := svc.UpsertShift(context.Background(), req, "admin-1")
	require.Error(t, err)
}

func TestGridIncludesActiveVersion(t *testing.T) {
	repo := &mockScheduleRepo{}
	ledger := &mockVersionLedger{}
	svc := NewScheduleService(repo, ledger, threeStaff(), validator.New(), zap.NewNop(), "", "")

	_, _, err := svc.UpsertShift(context.Background(), UpsertShiftRequest{StaffProfileID: "staff-a", ShiftDate: "2025-03-05", ShiftCode: models.ShiftDay}, "admin-1")
	require.NoError(t, err)

	grid, err := svc.Grid(context.Background(), 3, 2025)
	require.NoError(t, err)
	assert.Equal(t, "v.01", grid.Version)
	assert.Equal(t, 31, grid.Days)
	assert.Len(t, grid.Rows, 3)
}

func TestVersionLabelsStayOrdered(t *testing.T) {
	ledger := &mockVersionLedger{}
	var last string
	for i := 0; i < 10; i++ {
		version, err := ledger.RecordEdit(context.Background(), 3, 2025, "edit", "admin-1")
		require.NoError(t, err)
		if last != "" {
			assert.Greater(t, version.Version, last)
		}
		last = version.Version
	}
	assert.Equal(t, "v.10", last)
}
