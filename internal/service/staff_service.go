package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fets-ops/console-api/internal/models"
	appErrors "github.com/fets-ops/console-api/pkg/errors"
)

type staffRepository interface {
	List(ctx context.Context, filter models.StaffFilter) ([]models.StaffProfile, int, error)
	ListActive(ctx context.Context) ([]models.StaffProfile, error)
	FindByID(ctx context.Context, id string) (*models.StaffProfile, error)
	ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error)
	Create(ctx context.Context, profile *models.StaffProfile) error
	Update(ctx context.Context, profile *models.StaffProfile) error
	SetStatus(ctx context.Context, id string, status models.StaffStatus) error
}

// CreateStaffRequest is the payload for adding a staff profile.
type CreateStaffRequest struct {
	FullName       string          `json:"full_name" validate:"required"`
	Email          string          `json:"email" validate:"required,email"`
	Role           models.UserRole `json:"role" validate:"required,oneof=SUPER_ADMIN ADMIN STAFF"`
	Department     *string         `json:"department"`
	Skills         []string        `json:"skills"`
	Certifications []string        `json:"certifications"`
}

// UpdateStaffRequest is the payload for editing a staff profile.
type UpdateStaffRequest struct {
	FullName       string          `json:"full_name" validate:"required"`
	Email          string          `json:"email" validate:"required,email"`
	Role           models.UserRole `json:"role" validate:"required,oneof=SUPER_ADMIN ADMIN STAFF"`
	Department     *string         `json:"department"`
	Skills         []string        `json:"skills"`
	Certifications []string        `json:"certifications"`
}

// StaffService manages staff profiles.
type StaffService struct {
	repo      staffRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStaffService constructs a StaffService.
func NewStaffService(repo staffRepository, validate *validator.Validate, logger *zap.Logger) *StaffService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &StaffService{repo: repo, validator: validate, logger: logger}
}

// List returns staff profiles matching the filter.
func (s *StaffService) List(ctx context.Context, filter models.StaffFilter) ([]models.StaffProfile, *models.Pagination, error) {
	profiles, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list staff")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	return profiles, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// ListActive returns every active staff profile, for roster grids.
func (s *StaffService) ListActive(ctx context.Context) ([]models.StaffProfile, error) {
	profiles, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list active staff")
	}
	return profiles, nil
}

// Get returns a staff profile by ID.
func (s *StaffService) Get(ctx context.Context, id string) (*models.StaffProfile, error) {
	profile, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "staff profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load staff profile")
	}
	return profile, nil
}

// Create adds a staff profile in the active state.
func (s *StaffService) Create(ctx context.Context, req CreateStaffRequest) (*models.StaffProfile, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid staff payload")
	}

	exists, err := s.repo.ExistsByEmail(ctx, req.Email, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "staff email already exists")
	}

	profile := &models.StaffProfile{
		ID:             uuid.NewString(),
		FullName:       req.FullName,
		Email:          strings.ToLower(req.Email),
		Role:           req.Role,
		Department:     req.Department,
		Skills:         req.Skills,
		Certifications: req.Certifications,
		Status:         models.StaffActive,
	}

	if err := s.repo.Create(ctx, profile); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create staff profile")
	}
	return profile, nil
}

// Update edits a staff profile.
func (s *StaffService) Update(ctx context.Context, id string, req UpdateStaffRequest) (*models.StaffProfile, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid staff payload")
	}

	profile, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "staff profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load staff profile")
	}

	exists, err := s.repo.ExistsByEmail(ctx, req.Email, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "staff email already exists")
	}

	profile.FullName = req.FullName
	profile.Email = strings.ToLower(req.Email)
	profile.Role = req.Role
	profile.Department = req.Department
	profile.Skills = req.Skills
	profile.Certifications = req.Certifications

	if err := s.repo.Update(ctx, profile); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update staff profile")
	}
	return profile, nil
}

// SetStatus changes a staff member's employment status.
func (s *StaffService) SetStatus(ctx context.Context, id string, status models.StaffStatus) error {
	switch status {
	case models.StaffActive, models.StaffInactive, models.StaffOnLeave:
	default:
		return appErrors.Clone(appErrors.ErrValidation, "unknown staff status")
	}

	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "staff profile not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load staff profile")
	}

	if err := s.repo.SetStatus(ctx, id, status); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update staff status")
	}
	return nil
}
