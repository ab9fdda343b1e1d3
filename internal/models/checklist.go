package models

import "time"

// ChecklistCategory separates pre-exam and post-exam checklists.
type ChecklistCategory string

const (
	ChecklistPreExam  ChecklistCategory = "pre_exam"
	ChecklistPostExam ChecklistCategory = "post_exam"
)

// ChecklistTemplate is a reusable item list.
type ChecklistTemplate struct {
	ID          string            `db:"id" json:"id"`
	Name        string            `db:"name" json:"name"`
	Category    ChecklistCategory `db:"category" json:"category"`
	Description *string           `db:"description" json:"description,omitempty"`
	CreatedBy   string            `db:"created_by" json:"created_by"`
	CreatedAt   time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time         `db:"updated_at" json:"updated_at"`
}

// ChecklistTemplateItem is one ordered item within a template.
type ChecklistTemplateItem struct {
	ID               string    `db:"id" json:"id"`
	TemplateID       string    `db:"template_id" json:"template_id"`
	Title            string    `db:"title" json:"title"`
	Description      *string   `db:"description" json:"description,omitempty"`
	Priority         string    `db:"priority" json:"priority"`
	EstimatedMinutes int       `db:"estimated_minutes" json:"estimated_minutes"`
	ResponsibleRole  string    `db:"responsible_role" json:"responsible_role"`
	SortOrder        int       `db:"sort_order" json:"sort_order"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// ChecklistInstance is a dated, independently trackable copy of a template.
type ChecklistInstance struct {
	ID           string    `db:"id" json:"id"`
	TemplateID   string    `db:"template_id" json:"template_id"`
	Name         string    `db:"name" json:"name"`
	InstanceDate string    `db:"instance_date" json:"instance_date"`
	CreatedBy    string    `db:"created_by" json:"created_by"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// ChecklistInstanceItem is one trackable item copied from a template item.
// SourceItemID is a traceability backlink only; the copy is unaffected by
// later template edits.
type ChecklistInstanceItem struct {
	ID               string     `db:"id" json:"id"`
	InstanceID       string     `db:"instance_id" json:"instance_id"`
	SourceItemID     string     `db:"source_item_id" json:"source_item_id"`
	Title            string     `db:"title" json:"title"`
	Description      *string    `db:"description" json:"description,omitempty"`
	Priority         string     `db:"priority" json:"priority"`
	EstimatedMinutes int        `db:"estimated_minutes" json:"estimated_minutes"`
	ResponsibleRole  string     `db:"responsible_role" json:"responsible_role"`
	SortOrder        int        `db:"sort_order" json:"sort_order"`
	Completed        bool       `db:"completed" json:"completed"`
	CompletedBy      *string    `db:"completed_by" json:"completed_by,omitempty"`
	CompletedAt      *time.Time `db:"completed_at" json:"completed_at,omitempty"`
}
