package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fets-ops/console-api/internal/models"
	appErrors "github.com/fets-ops/console-api/pkg/errors"
)

type checklistRepository interface {
	ListTemplates(ctx context.Context, category *models.ChecklistCategory) ([]models.ChecklistTemplate, error)
	FindTemplate(ctx context.Context, id string) (*models.ChecklistTemplate, error)
	ListTemplateItems(ctx context.Context, templateID string) ([]models.ChecklistTemplateItem, error)
	CreateTemplate(ctx context.Context, template *models.ChecklistTemplate, items []models.ChecklistTemplateItem) error
	DeleteTemplate(ctx context.Context, id string) error
	ListInstances(ctx context.Context) ([]models.ChecklistInstance, error)
	FindInstance(ctx context.Context, id string) (*models.ChecklistInstance, error)
	ListInstanceItems(ctx context.Context, instanceID string) ([]models.ChecklistInstanceItem, error)
	CreateInstance(ctx context.Context, instance *models.ChecklistInstance, items []models.ChecklistInstanceItem) error
	SetItemCompletion(ctx context.Context, itemID string, completed bool, completedBy *string, completedAt *time.Time) error
}

// CreateTemplateRequest defines a new checklist template with its items.
type CreateTemplateRequest struct {
	Name        string                      `json:"name" validate:"required"`
	Category    models.ChecklistCategory    `json:"category" validate:"required,oneof=pre_exam post_exam"`
	Description *string                     `json:"description"`
	Items       []CreateTemplateItemRequest `json:"items" validate:"required,min=1,dive"`
}

// CreateTemplateItemRequest is one item within a new template.
type CreateTemplateItemRequest struct {
	Title            string  `json:"title" validate:"required"`
	Description      *string `json:"description"`
	Priority         string  `json:"priority" validate:"required,oneof=low medium high"`
	EstimatedMinutes int     `json:"estimated_minutes" validate:"min=0"`
	ResponsibleRole  string  `json:"responsible_role" validate:"required"`
}

// ChecklistInstanceDetail is an instance with its items.
type ChecklistInstanceDetail struct {
	Instance models.ChecklistInstance       `json:"instance"`
	Items    []models.ChecklistInstanceItem `json:"items"`
}

// ChecklistService manages checklist templates and their dated instances.
type ChecklistService struct {
	repo      checklistRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewChecklistService constructs a ChecklistService.
func NewChecklistService(repo checklistRepository, validate *validator.Validate, logger *zap.Logger) *ChecklistService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ChecklistService{repo: repo, validator: validate, logger: logger}
}

// ListTemplates returns templates, optionally filtered by category.
func (s *ChecklistService) ListTemplates(ctx context.Context, category *models.ChecklistCategory) ([]models.ChecklistTemplate, error) {
	templates, err := s.repo.ListTemplates(ctx, category)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list templates")
	}
	return templates, nil
}

// GetTemplate returns a template with its items.
func (s *ChecklistService) GetTemplate(ctx context.Context, id string) (*models.ChecklistTemplate, []models.ChecklistTemplateItem, error) {
	template, err := s.repo.FindTemplate(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "template not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load template")
	}
	items, err := s.repo.ListTemplateItems(ctx, id)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load template items")
	}
	return template, items, nil
}

// CreateTemplate adds a template with ordered items.
func (s *ChecklistService) CreateTemplate(ctx context.Context, req CreateTemplateRequest, actorID string) (*models.ChecklistTemplate, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid template payload")
	}

	template := &models.ChecklistTemplate{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		CreatedBy:   actorID,
	}

	items := make([]models.ChecklistTemplateItem, 0, len(req.Items))
	for i, item := range req.Items {
		items = append(items, models.ChecklistTemplateItem{
			ID:               uuid.NewString(),
			TemplateID:       template.ID,
			Title:            item.Title,
			Description:      item.Description,
			Priority:         item.Priority,
			EstimatedMinutes: item.EstimatedMinutes,
			ResponsibleRole:  item.ResponsibleRole,
			SortOrder:        i,
		})
	}

	if err := s.repo.CreateTemplate(ctx, template, items); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create template")
	}
	return template, nil
}

// DeleteTemplate removes a template and its items. Existing instances keep
// their copied items.
func (s *ChecklistService) DeleteTemplate(ctx context.Context, id string) error {
	if _, err := s.repo.FindTemplate(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "template not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load template")
	}
	if err := s.repo.DeleteTemplate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete template")
	}
	return nil
}

// ListInstances returns every checklist instance.
func (s *ChecklistService) ListInstances(ctx context.Context) ([]models.ChecklistInstance, error) {
	instances, err := s.repo.ListInstances(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list instances")
	}
	return instances, nil
}

// GetInstance returns an instance with its items.
func (s *ChecklistService) GetInstance(ctx context.Context, id string) (*ChecklistInstanceDetail, error) {
	instance, err := s.repo.FindInstance(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "instance not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instance")
	}
	items, err := s.repo.ListInstanceItems(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instance items")
	}
	return &ChecklistInstanceDetail{Instance: *instance, Items: items}, nil
}

// Instantiate deep-copies a template into a dated instance. Every item is
// copied with completion reset, so later template edits never touch the
// instance.
func (s *ChecklistService) Instantiate(ctx context.Context, templateID, date, actorID string) (*ChecklistInstanceDetail, error) {
	template, err := s.repo.FindTemplate(ctx, templateID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "template not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load template")
	}

	templateItems, err := s.repo.ListTemplateItems(ctx, templateID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load template items")
	}

	instance := &models.ChecklistInstance{
		ID:           uuid.NewString(),
		TemplateID:   template.ID,
		Name:         fmt.Sprintf("%s - %s", template.Name, date),
		InstanceDate: date,
		CreatedBy:    actorID,
	}

	items := make([]models.ChecklistInstanceItem, 0, len(templateItems))
	for _, item := range templateItems {
		items = append(items, models.ChecklistInstanceItem{
			ID:               uuid.NewString(),
			InstanceID:       instance.ID,
			SourceItemID:     item.ID,
			Title:            item.Title,
			Description:      item.Description,
			Priority:         item.Priority,
			EstimatedMinutes: item.EstimatedMinutes,
			ResponsibleRole:  item.ResponsibleRole,
			SortOrder:        item.SortOrder,
			Completed:        false,
		})
	}

	if err := s.repo.CreateInstance(ctx, instance, items); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create instance")
	}
	return &ChecklistInstanceDetail{Instance: *instance, Items: items}, nil
}

// SetItemCompletion toggles one instance item. Completing stamps who and
// when; un-completing clears both.
func (s *ChecklistService) SetItemCompletion(ctx context.Context, itemID string, completed bool, actorID string) error {
	var completedBy *string
	var completedAt *time.Time
	if completed {
		now := time.Now().UTC()
		completedBy = &actorID
		completedAt = &now
	}
	if err := s.repo.SetItemCompletion(ctx, itemID, completed, completedBy, completedAt); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update checklist item")
	}
	return nil
}
