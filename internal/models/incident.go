package models

import "time"

// IncidentSeverity grades how serious an incident is.
type IncidentSeverity string

const (
	SeverityLow      IncidentSeverity = "low"
	SeverityMedium   IncidentSeverity = "medium"
	SeverityHigh     IncidentSeverity = "high"
	SeverityCritical IncidentSeverity = "critical"
)

// IncidentStatus tracks an incident through resolution.
type IncidentStatus string

const (
	IncidentOpen       IncidentStatus = "open"
	IncidentInProgress IncidentStatus = "in_progress"
	IncidentResolved   IncidentStatus = "resolved"
	IncidentClosed     IncidentStatus = "closed"
)

// Incident represents a logged operational incident.
type Incident struct {
	ID          string           `db:"id" json:"id"`
	Title       string           `db:"title" json:"title"`
	Description string           `db:"description" json:"description"`
	Severity    IncidentSeverity `db:"severity" json:"severity"`
	Status      IncidentStatus   `db:"status" json:"status"`
	ReportedBy  string           `db:"reported_by" json:"reported_by"`
	AssignedTo  *string          `db:"assigned_to" json:"assigned_to,omitempty"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time        `db:"updated_at" json:"updated_at"`
}

// IncidentFilter captures query criteria for the incident log.
type IncidentFilter struct {
	Status    *IncidentStatus
	Severity  *IncidentSeverity
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
