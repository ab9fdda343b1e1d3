package models

import (
	"time"

	"github.com/lib/pq"
)

// StaffStatus enumerates employment states for staff profiles.
type StaffStatus string

const (
	StaffActive   StaffStatus = "active"
	StaffInactive StaffStatus = "inactive"
	StaffOnLeave  StaffStatus = "on_leave"
)

// StaffProfile represents a staff member working at the exam center.
type StaffProfile struct {
	ID             string         `db:"id" json:"id"`
	UserID         *string        `db:"user_id" json:"user_id,omitempty"`
	FullName       string         `db:"full_name" json:"full_name"`
	Email          string         `db:"email" json:"email"`
	Role           UserRole       `db:"role" json:"role"`
	Department     *string        `db:"department" json:"department,omitempty"`
	Skills         pq.StringArray `db:"skills" json:"skills"`
	Certifications pq.StringArray `db:"certifications" json:"certifications"`
	Status         StaffStatus    `db:"status" json:"status"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// StaffFilter captures filtering criteria for listing staff profiles.
type StaffFilter struct {
	Status    *StaffStatus
	Role      *UserRole
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
