package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/fets-ops/console-api/internal/models"
	"github.com/fets-ops/console-api/internal/repository"
	appErrors "github.com/fets-ops/console-api/pkg/errors"
	"github.com/fets-ops/console-api/pkg/timeutil"
)

type scheduleRepository interface {
	ListRange(ctx context.Context, from, to string) ([]models.ScheduleEntry, error)
	ListByStaff(ctx context.Context, staffID, from, to string) ([]models.ScheduleEntry, error)
	ExistingKeys(ctx context.Context, from, to string) (map[string]struct{}, error)
	Upsert(ctx context.Context, entry *models.ScheduleEntry) error
	BulkInsert(ctx context.Context, entries []models.ScheduleEntry) error
	Delete(ctx context.Context, staffID, date string) error
}

type rosterVersionLedger interface {
	ListByScope(ctx context.Context, month, year int) ([]models.RosterVersion, error)
	FindActive(ctx context.Context, month, year int) (*models.RosterVersion, error)
	RecordEdit(ctx context.Context, month, year int, editLog, createdBy string) (*models.RosterVersion, error)
}

type activeStaffLister interface {
	ListActive(ctx context.Context) ([]models.StaffProfile, error)
}

// UpsertShiftRequest assigns one shift cell on the roster grid.
type UpsertShiftRequest struct {
	StaffProfileID string           `json:"staff_profile_id" validate:"required"`
	ShiftDate      string           `json:"shift_date" validate:"required,datetime=2006-01-02"`
	ShiftCode      models.ShiftCode `json:"shift_code" validate:"required"`
	OvertimeHours  *float64         `json:"overtime_hours" validate:"omitempty,gt=0"`
}

// RosterRow is one staff member's month of shift cells keyed by date.
type RosterRow struct {
	Staff  models.StaffProfile             `json:"staff"`
	Shifts map[string]models.ScheduleEntry `json:"shifts"`
}

// RosterGrid is the month view of the roster with its active version label.
type RosterGrid struct {
	Month   int         `json:"month"`
	Year    int         `json:"year"`
	Days    int         `json:"days"`
	Version string      `json:"version"`
	Rows    []RosterRow `json:"rows"`
}

// QuickAddResult reports how many cells a month fill created.
type QuickAddResult struct {
	Inserted int                   `json:"inserted"`
	Skipped  int                   `json:"skipped"`
	Version  *models.RosterVersion `json:"version"`
}

// ScheduleService manages the monthly roster grid. Every mutation appends an
// entry to the version ledger for its (month, year) scope.
type ScheduleService struct {
	repo      scheduleRepository
	versions  rosterVersionLedger
	staff     activeStaffLister
	validator *validator.Validate
	logger    *zap.Logger

	defaultShift models.ShiftCode
	restShift    models.ShiftCode
}

// NewScheduleService constructs a ScheduleService. Empty shift codes fall
// back to the standard pattern of day shifts with a weekly rest day.
func NewScheduleService(repo scheduleRepository, versions rosterVersionLedger, staff activeStaffLister, validate *validator.Validate, logger *zap.Logger, defaultShift, restShift models.ShiftCode) *ScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if defaultShift == "" {
		defaultShift = models.ShiftDay
	}
	if restShift == "" {
		restShift = models.ShiftRestDay
	}
	return &ScheduleService{
		repo:         repo,
		versions:     versions,
		staff:        staff,
		validator:    validate,
		logger:       logger,
		defaultShift: defaultShift,
		restShift:    restShift,
	}
}

// Grid composes the month roster: one row per active staff member with their
// shift cells, plus the active ledger version for the scope.
func (s *ScheduleService) Grid(ctx context.Context, month, year int) (*RosterGrid, error) {
	if err := validateScope(month, year); err != nil {
		return nil, err
	}

	from, to := monthRange(month, year)
	entries, err := s.repo.ListRange(ctx, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}

	profiles, err := s.staff.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load staff")
	}

	byStaff := make(map[string]map[string]models.ScheduleEntry, len(profiles))
	for _, entry := range entries {
		cells, ok := byStaff[entry.StaffProfileID]
		if !ok {
			cells = make(map[string]models.ScheduleEntry)
			byStaff[entry.StaffProfileID] = cells
		}
		cells[entry.ShiftDate] = entry
	}

	grid := &RosterGrid{
		Month: month,
		Year:  year,
		Days:  timeutil.DaysInMonth(year, time.Month(month)),
		Rows:  make([]RosterRow, 0, len(profiles)),
	}
	for _, profile := range profiles {
		cells := byStaff[profile.ID]
		if cells == nil {
			cells = map[string]models.ScheduleEntry{}
		}
		grid.Rows = append(grid.Rows, RosterRow{Staff: profile, Shifts: cells})
	}

	active, err := s.versions.FindActive(ctx, month, year)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster version")
	}
	if active != nil {
		grid.Version = active.Version
	}

	return grid, nil
}

// StaffSchedule returns one staff member's entries for a month.
func (s *ScheduleService) StaffSchedule(ctx context.Context, staffID string, month, year int) ([]models.ScheduleEntry, error) {
	if err := validateScope(month, year); err != nil {
		return nil, err
	}
	from, to := monthRange(month, year)
	entries, err := s.repo.ListByStaff(ctx, staffID, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load staff schedule")
	}
	return entries, nil
}

// UpsertShift writes one roster cell and records the edit in the version
// ledger.
func (s *ScheduleService) UpsertShift(ctx context.Context, req UpsertShiftRequest, actorID string) (*models.ScheduleEntry, *models.RosterVersion, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid shift payload")
	}
	if !models.ValidShiftCode(req.ShiftCode) {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown shift code %q", req.ShiftCode))
	}
	if req.ShiftCode != models.ShiftOvertime && req.OvertimeHours != nil {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "overtime hours only apply to OT shifts")
	}

	entry := &models.ScheduleEntry{
		StaffProfileID: req.StaffProfileID,
		ShiftDate:      req.ShiftDate,
		ShiftCode:      req.ShiftCode,
		OvertimeHours:  req.OvertimeHours,
	}
	if err := s.repo.Upsert(ctx, entry); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save shift")
	}

	version, err := s.recordEdit(ctx, req.ShiftDate, fmt.Sprintf("set %s on %s to %s", req.StaffProfileID, req.ShiftDate, req.ShiftCode), actorID)
	if err != nil {
		return nil, nil, err
	}
	return entry, version, nil
}

// ClearShift removes one roster cell and records the edit.
func (s *ScheduleService) ClearShift(ctx context.Context, staffID, date, actorID string) (*models.RosterVersion, error) {
	if _, err := timeutil.ParseDateKey(date); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid shift date")
	}
	if err := s.repo.Delete(ctx, staffID, date); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear shift")
	}
	return s.recordEdit(ctx, date, fmt.Sprintf("cleared %s on %s", staffID, date), actorID)
}

// QuickAddMonth fills the month with the default rotation for every active
// staff member: day shifts with every seventh day a rest day, counting from
// the first of the month. Cells that already exist are never overwritten.
func (s *ScheduleService) QuickAddMonth(ctx context.Context, month, year int, actorID string) (*QuickAddResult, error) {
	if err := validateScope(month, year); err != nil {
		return nil, err
	}

	profiles, err := s.staff.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load staff")
	}
	if len(profiles) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no active staff to roster")
	}

	from, to := monthRange(month, year)
	existing, err := s.repo.ExistingKeys(ctx, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load existing roster")
	}

	days := timeutil.DaysInMonth(year, time.Month(month))
	entries := make([]models.ScheduleEntry, 0, len(profiles)*days)
	skipped := 0
	for _, profile := range profiles {
		for day := 0; day < days; day++ {
			date := fmt.Sprintf("%04d-%02d-%02d", year, month, day+1)
			if _, ok := existing[repository.ScheduleKey(profile.ID, date)]; ok {
				skipped++
				continue
			}
			code := s.defaultShift
			if day%7 == 6 {
				code = s.restShift
			}
			entries = append(entries, models.ScheduleEntry{
				StaffProfileID: profile.ID,
				ShiftDate:      date,
				ShiftCode:      code,
			})
		}
	}

	if err := s.repo.BulkInsert(ctx, entries); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fill roster")
	}

	result := &QuickAddResult{Inserted: len(entries), Skipped: skipped}
	if len(entries) > 0 {
		version, err := s.versions.RecordEdit(ctx, month, year, fmt.Sprintf("quick-add filled %d shifts", len(entries)), actorID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record roster version")
		}
		result.Version = version
	}
	return result, nil
}

// Versions returns the edit ledger for a month, newest first.
func (s *ScheduleService) Versions(ctx context.Context, month, year int) ([]models.RosterVersion, error) {
	if err := validateScope(month, year); err != nil {
		return nil, err
	}
	versions, err := s.versions.ListByScope(ctx, month, year)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list roster versions")
	}
	return versions, nil
}

func (s *ScheduleService) recordEdit(ctx context.Context, date, editLog, actorID string) (*models.RosterVersion, error) {
	day, err := timeutil.ParseDateKey(date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid shift date")
	}
	version, err := s.versions.RecordEdit(ctx, int(day.Month()), day.Year(), editLog, actorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record roster version")
	}
	return version, nil
}

func validateScope(month, year int) error {
	if month < 1 || month > 12 {
		return appErrors.Clone(appErrors.ErrValidation, "month must be between 1 and 12")
	}
	if year < 2000 || year > 2100 {
		return appErrors.Clone(appErrors.ErrValidation, "year out of range")
	}
	return nil
}

func monthRange(month, year int) (from, to string) {
	days := timeutil.DaysInMonth(year, time.Month(month))
	from = fmt.Sprintf("%04d-%02d-01", year, month)
	to = fmt.Sprintf("%04d-%02d-%02d", year, month, days)
	return from, to
}
