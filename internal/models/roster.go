package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ShiftCode enumerates the fixed shift labels assignable to a staff day.
type ShiftCode string

const (
	ShiftDay           ShiftCode = "D"
	ShiftHalfDay       ShiftCode = "HD"
	ShiftRestDay       ShiftCode = "RD"
	ShiftTimeOffInLieu ShiftCode = "TOIL"
	ShiftLeave         ShiftCode = "L"
	ShiftOvertime      ShiftCode = "OT"
)

// ValidShiftCode reports whether code is one of the fixed shift labels.
func ValidShiftCode(code ShiftCode) bool {
	switch code {
	case ShiftDay, ShiftHalfDay, ShiftRestDay, ShiftTimeOffInLieu, ShiftLeave, ShiftOvertime:
		return true
	}
	return false
}

// ScheduleEntry is one staff-day shift assignment, unique per (staff, date).
type ScheduleEntry struct {
	ID             string    `db:"id" json:"id"`
	StaffProfileID string    `db:"staff_profile_id" json:"staff_profile_id"`
	ShiftDate      string    `db:"shift_date" json:"shift_date"`
	ShiftCode      ShiftCode `db:"shift_code" json:"shift_code"`
	OvertimeHours  *float64  `db:"overtime_hours" json:"overtime_hours,omitempty"`
	Status         string    `db:"status" json:"status"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// RosterVersionNumber extracts the numeric suffix from a ledger version
// label such as "v.01". Unparseable labels yield zero.
func RosterVersionNumber(version string) int {
	raw := strings.TrimPrefix(version, "v.")
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// NextRosterVersion returns the label following prev: "v.01" after an empty
// ledger, then "v.02", "v.03" and so on with fixed-width zero padding.
func NextRosterVersion(prev string) string {
	return fmt.Sprintf("v.%02d", RosterVersionNumber(prev)+1)
}

// RosterVersion is one entry in the append-only roster edit ledger. Exactly
// one entry per (month, year) carries the active flag.
type RosterVersion struct {
	ID        string    `db:"id" json:"id"`
	Month     int       `db:"month" json:"month"`
	Year      int       `db:"year" json:"year"`
	Version   string    `db:"version" json:"version"`
	EditLog   string    `db:"edit_log" json:"edit_log"`
	CreatedBy string    `db:"created_by" json:"created_by"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
