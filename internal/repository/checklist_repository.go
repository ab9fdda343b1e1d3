package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/fets-ops/console-api/internal/models"
)

// ChecklistRepository manages checklist templates and their dated instances.
type ChecklistRepository struct {
	db *sqlx.DB
}

// NewChecklistRepository constructs a ChecklistRepository.
func NewChecklistRepository(db *sqlx.DB) *ChecklistRepository {
	return &ChecklistRepository{db: db}
}

// ListTemplates returns templates, optionally filtered by category.
func (r *ChecklistRepository) ListTemplates(ctx context.Context, category *models.ChecklistCategory) ([]models.ChecklistTemplate, error) {
	query := "SELECT id, name, category, description, created_by, created_at, updated_at FROM checklist_templates"
	var args []interface{}
	if category != nil {
		query += " WHERE category = $1"
		args = append(args, *category)
	}
	query += " ORDER BY name ASC"

	var templates []models.ChecklistTemplate
	if err := r.db.SelectContext(ctx, &templates, query, args...); err != nil {
		return nil, fmt.Errorf("list checklist templates: %w", err)
	}
	return templates, nil
}

// FindTemplate fetches a template by ID.
func (r *ChecklistRepository) FindTemplate(ctx context.Context, id string) (*models.ChecklistTemplate, error) {
	const query = `SELECT id, name, category, description, created_by, created_at, updated_at FROM checklist_templates WHERE id = $1`
	var template models.ChecklistTemplate
	if err := r.db.GetContext(ctx, &template, query, id); err != nil {
		return nil, err
	}
	return &template, nil
}

// ListTemplateItems returns a template's items in sort order.
func (r *ChecklistRepository) ListTemplateItems(ctx context.Context, templateID string) ([]models.ChecklistTemplateItem, error) {
	const query = `SELECT id, template_id, title, description, priority, estimated_minutes, responsible_role, sort_order, created_at FROM checklist_template_items WHERE template_id = $1 ORDER BY sort_order ASC`
	var items []models.ChecklistTemplateItem
	if err := r.db.SelectContext(ctx, &items, query, templateID); err != nil {
		return nil, fmt.Errorf("list template items: %w", err)
	}
	return items, nil
}

// CreateTemplate inserts a template together with its items.
func (r *ChecklistRepository) CreateTemplate(ctx context.Context, template *models.ChecklistTemplate, items []models.ChecklistTemplateItem) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create template: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if template.ID == "" {
		template.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	template.CreatedAt = now
	template.UpdatedAt = now

	const insertTemplate = `INSERT INTO checklist_templates (id, name, category, description, created_by, created_at, updated_at)
		VALUES (:id, :name, :category, :description, :created_by, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, insertTemplate, template); err != nil {
		return fmt.Errorf("insert checklist template: %w", err)
	}

	const insertItem = `INSERT INTO checklist_template_items (id, template_id, title, description, priority, estimated_minutes, responsible_role, sort_order, created_at)
		VALUES (:id, :template_id, :title, :description, :priority, :estimated_minutes, :responsible_role, :sort_order, :created_at)`
	for i := range items {
		items[i].ID = uuid.NewString()
		items[i].TemplateID = template.ID
		items[i].CreatedAt = now
		if _, err := tx.NamedExecContext(ctx, insertItem, items[i]); err != nil {
			return fmt.Errorf("insert template item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create template: %w", err)
	}
	return nil
}

// DeleteTemplate removes a template and its items.
func (r *ChecklistRepository) DeleteTemplate(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete template: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM checklist_template_items WHERE template_id = $1", id); err != nil {
		return fmt.Errorf("delete template items: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM checklist_templates WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete template: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete template: %w", err)
	}
	return nil
}

// ListInstances returns instances, newest first.
func (r *ChecklistRepository) ListInstances(ctx context.Context) ([]models.ChecklistInstance, error) {
	const query = `SELECT id, template_id, name, instance_date, created_by, created_at FROM checklist_instances ORDER BY created_at DESC`
	var instances []models.ChecklistInstance
	if err := r.db.SelectContext(ctx, &instances, query); err != nil {
		return nil, fmt.Errorf("list checklist instances: %w", err)
	}
	return instances, nil
}

// FindInstance fetches an instance by ID.
func (r *ChecklistRepository) FindInstance(ctx context.Context, id string) (*models.ChecklistInstance, error) {
	const query = `SELECT id, template_id, name, instance_date, created_by, created_at FROM checklist_instances WHERE id = $1`
	var instance models.ChecklistInstance
	if err := r.db.GetContext(ctx, &instance, query, id); err != nil {
		return nil, err
	}
	return &instance, nil
}

// ListInstanceItems returns an instance's items in sort order.
func (r *ChecklistRepository) ListInstanceItems(ctx context.Context, instanceID string) ([]models.ChecklistInstanceItem, error) {
	const query = `SELECT id, instance_id, source_item_id, title, description, priority, estimated_minutes, responsible_role, sort_order, completed, completed_by, completed_at FROM checklist_instance_items WHERE instance_id = $1 ORDER BY sort_order ASC`
	var items []models.ChecklistInstanceItem
	if err := r.db.SelectContext(ctx, &items, query, instanceID); err != nil {
		return nil, fmt.Errorf("list instance items: %w", err)
	}
	return items, nil
}

// CreateInstance inserts an instance and its copied items in one transaction.
func (r *ChecklistRepository) CreateInstance(ctx context.Context, instance *models.ChecklistInstance, items []models.ChecklistInstanceItem) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create instance: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const insertInstance = `INSERT INTO checklist_instances (id, template_id, name, instance_date, created_by, created_at)
		VALUES (:id, :template_id, :name, :instance_date, :created_by, :created_at)`
	if _, err := tx.NamedExecContext(ctx, insertInstance, instance); err != nil {
		return fmt.Errorf("insert checklist instance: %w", err)
	}

	const insertItem = `INSERT INTO checklist_instance_items (id, instance_id, source_item_id, title, description, priority, estimated_minutes, responsible_role, sort_order, completed, completed_by, completed_at)
		VALUES (:id, :instance_id, :source_item_id, :title, :description, :priority, :estimated_minutes, :responsible_role, :sort_order, :completed, :completed_by, :completed_at)`
	for i := range items {
		if _, err := tx.NamedExecContext(ctx, insertItem, items[i]); err != nil {
			return fmt.Errorf("insert instance item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create instance: %w", err)
	}
	return nil
}

// SetItemCompletion toggles one instance item and records who completed it.
func (r *ChecklistRepository) SetItemCompletion(ctx context.Context, itemID string, completed bool, completedBy *string, completedAt *time.Time) error {
	const query = `UPDATE checklist_instance_items SET completed = $2, completed_by = $3, completed_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, itemID, completed, completedBy, completedAt); err != nil {
		return fmt.Errorf("set item completion: %w", err)
	}
	return nil
}
