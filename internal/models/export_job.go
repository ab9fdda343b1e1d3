package models

import "time"

// ExportFormat enumerates the available roster export formats.
type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

// ExportJobStatus tracks an export through the worker queue.
type ExportJobStatus string

const (
	ExportQueued    ExportJobStatus = "queued"
	ExportRunning   ExportJobStatus = "running"
	ExportCompleted ExportJobStatus = "completed"
	ExportFailed    ExportJobStatus = "failed"
)

// ExportJob records one requested roster export.
type ExportJob struct {
	ID          string          `db:"id" json:"id"`
	Month       int             `db:"month" json:"month"`
	Year        int             `db:"year" json:"year"`
	Format      ExportFormat    `db:"format" json:"format"`
	Status      ExportJobStatus `db:"status" json:"status"`
	FilePath    *string         `db:"file_path" json:"file_path,omitempty"`
	ErrorText   *string         `db:"error_text" json:"error_text,omitempty"`
	RequestedBy string          `db:"requested_by" json:"requested_by"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	CompletedAt *time.Time      `db:"completed_at" json:"completed_at,omitempty"`
}

// ExportDownload describes a signed download link for a completed export.
type ExportDownload struct {
	JobID     string    `json:"job_id"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}
