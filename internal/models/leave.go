package models

import "time"

// LeaveType enumerates the kinds of staff requests.
type LeaveType string

const (
	LeaveFullDay    LeaveType = "leave"
	LeaveHalfDay    LeaveType = "half_day"
	LeaveShiftSwap  LeaveType = "shift_swap"
	LeaveOffDaySwap LeaveType = "off_day_swap"
)

// LeaveStatus enumerates the approval lifecycle. Approved and rejected are
// terminal.
type LeaveStatus string

const (
	LeavePending  LeaveStatus = "pending"
	LeaveApproved LeaveStatus = "approved"
	LeaveRejected LeaveStatus = "rejected"
)

// LeaveRequest is a staff-submitted leave or swap request.
type LeaveRequest struct {
	ID             string      `db:"id" json:"id"`
	StaffProfileID string      `db:"staff_profile_id" json:"staff_profile_id"`
	Type           LeaveType   `db:"type" json:"type"`
	RequestDate    string      `db:"request_date" json:"request_date"`
	SwapPartnerID  *string     `db:"swap_partner_id" json:"swap_partner_id,omitempty"`
	SwapDate       *string     `db:"swap_date" json:"swap_date,omitempty"`
	Reason         *string     `db:"reason" json:"reason,omitempty"`
	Status         LeaveStatus `db:"status" json:"status"`
	DecidedBy      *string     `db:"decided_by" json:"decided_by,omitempty"`
	DecidedAt      *time.Time  `db:"decided_at" json:"decided_at,omitempty"`
	CreatedAt      time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time   `db:"updated_at" json:"updated_at"`
}

// LeaveFilter captures query criteria for listing requests.
type LeaveFilter struct {
	Status         *LeaveStatus
	StaffProfileID string
	Page           int
	PageSize       int
}
