package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fets-ops/console-api/internal/models"
	appErrors "github.com/fets-ops/console-api/pkg/errors"
)

type incidentRepository interface {
	List(ctx context.Context, filter models.IncidentFilter) ([]models.Incident, int, error)
	FindByID(ctx context.Context, id string) (*models.Incident, error)
	Create(ctx context.Context, incident *models.Incident) error
	Update(ctx context.Context, incident *models.Incident) error
	Delete(ctx context.Context, id string) error
}

// CreateIncidentRequest is the payload for logging an incident.
type CreateIncidentRequest struct {
	Title       string                  `json:"title" validate:"required"`
	Description string                  `json:"description" validate:"required"`
	Severity    models.IncidentSeverity `json:"severity" validate:"required,oneof=low medium high critical"`
}

// UpdateIncidentRequest is the payload for editing an incident.
type UpdateIncidentRequest struct {
	Title       string                  `json:"title" validate:"required"`
	Description string                  `json:"description" validate:"required"`
	Severity    models.IncidentSeverity `json:"severity" validate:"required,oneof=low medium high critical"`
	Status      models.IncidentStatus   `json:"status" validate:"required,oneof=open in_progress resolved closed"`
	AssignedTo  *string                 `json:"assigned_to"`
}

// IncidentService manages the operational incident log.
type IncidentService struct {
	repo      incidentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewIncidentService constructs an IncidentService.
func NewIncidentService(repo incidentRepository, validate *validator.Validate, logger *zap.Logger) *IncidentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &IncidentService{repo: repo, validator: validate, logger: logger}
}

// List returns incidents matching the filter.
func (s *IncidentService) List(ctx context.Context, filter models.IncidentFilter) ([]models.Incident, *models.Pagination, error) {
	incidents, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list incidents")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	return incidents, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Get returns an incident by ID.
func (s *IncidentService) Get(ctx context.Context, id string) (*models.Incident, error) {
	incident, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "incident not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load incident")
	}
	return incident, nil
}

// Create logs a new open incident.
func (s *IncidentService) Create(ctx context.Context, req CreateIncidentRequest, reporterID string) (*models.Incident, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid incident payload")
	}

	incident := &models.Incident{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Severity:    req.Severity,
		Status:      models.IncidentOpen,
		ReportedBy:  reporterID,
	}

	if err := s.repo.Create(ctx, incident); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create incident")
	}

	if incident.Severity == models.SeverityCritical {
		s.logger.Warn("critical incident logged", zap.String("incident_id", incident.ID), zap.String("title", incident.Title))
	}
	return incident, nil
}

// Update edits an incident including its resolution status.
func (s *IncidentService) Update(ctx context.Context, id string, req UpdateIncidentRequest) (*models.Incident, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid incident payload")
	}

	incident, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "incident not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load incident")
	}

	incident.Title = req.Title
	incident.Description = req.Description
	incident.Severity = req.Severity
	incident.Status = req.Status
	incident.AssignedTo = req.AssignedTo

	if err := s.repo.Update(ctx, incident); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update incident")
	}
	return incident, nil
}

// Delete removes an incident record.
func (s *IncidentService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "incident not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load incident")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete incident")
	}
	return nil
}
