package models

import "time"

// Session represents one scheduled exam sitting at the center.
type Session struct {
	ID             string    `db:"id" json:"id"`
	ClientName     string    `db:"client_name" json:"client_name"`
	ExamName       string    `db:"exam_name" json:"exam_name"`
	SessionDate    string    `db:"session_date" json:"session_date"`
	CandidateCount int       `db:"candidate_count" json:"candidate_count"`
	StartTime      string    `db:"start_time" json:"start_time"`
	EndTime        string    `db:"end_time" json:"end_time"`
	CreatedBy      string    `db:"created_by" json:"created_by"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// SessionFilter captures query criteria for listing sessions.
type SessionFilter struct {
	Date      string
	FromDate  string
	ToDate    string
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
