package models

import "time"

// CandidateStatus enumerates the check-in lifecycle of a candidate.
type CandidateStatus string

const (
	CandidateRegistered CandidateStatus = "registered"
	CandidateCheckedIn  CandidateStatus = "checked_in"
	CandidateInProgress CandidateStatus = "in_progress"
	CandidateCompleted  CandidateStatus = "completed"
	CandidateNoShow     CandidateStatus = "no_show"
	CandidateCancelled  CandidateStatus = "cancelled"
)

// Candidate represents one examinee tracked through check-in.
type Candidate struct {
	ID                 string          `db:"id" json:"id"`
	FullName           string          `db:"full_name" json:"full_name"`
	Email              *string         `db:"email" json:"email,omitempty"`
	Phone              *string         `db:"phone" json:"phone,omitempty"`
	ExamName           string          `db:"exam_name" json:"exam_name"`
	ExamDate           string          `db:"exam_date" json:"exam_date"`
	Status             CandidateStatus `db:"status" json:"status"`
	ConfirmationNumber string          `db:"confirmation_number" json:"confirmation_number"`
	Notes              *string         `db:"notes" json:"notes,omitempty"`
	CreatedAt          time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time       `db:"updated_at" json:"updated_at"`
}

// CandidateFilter captures query criteria for the candidate tracker.
type CandidateFilter struct {
	Status    *CandidateStatus
	ExamDate  string
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// CandidateImportRowError records one rejected row from a bulk upload.
type CandidateImportRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// CandidateImportResult summarises a bulk upload batch.
type CandidateImportResult struct {
	Imported int                       `json:"imported"`
	Failed   int                       `json:"failed"`
	Errors   []CandidateImportRowError `json:"errors,omitempty"`
}
