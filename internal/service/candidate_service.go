package service

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fets-ops/console-api/internal/models"
	appErrors "github.com/fets-ops/console-api/pkg/errors"
)

type candidateRepository interface {
	List(ctx context.Context, filter models.CandidateFilter) ([]models.Candidate, int, error)
	FindByID(ctx context.Context, id string) (*models.Candidate, error)
	Create(ctx context.Context, candidate *models.Candidate) error
	Update(ctx context.Context, candidate *models.Candidate) error
	UpdateStatus(ctx context.Context, id string, status models.CandidateStatus) error
	Delete(ctx context.Context, id string) error
}

// candidateTransitions defines the allowed check-in lifecycle moves. A status
// absent from the map is terminal.
var candidateTransitions = map[models.CandidateStatus][]models.CandidateStatus{
	models.CandidateRegistered: {models.CandidateCheckedIn, models.CandidateNoShow, models.CandidateCancelled},
	models.CandidateCheckedIn:  {models.CandidateInProgress, models.CandidateCancelled},
	models.CandidateInProgress: {models.CandidateCompleted, models.CandidateCancelled},
}

// CanTransition reports whether a candidate may move from one status to
// another.
func CanTransition(from, to models.CandidateStatus) bool {
	for _, allowed := range candidateTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// CreateCandidateRequest is the payload for registering a candidate.
type CreateCandidateRequest struct {
	FullName           string  `json:"full_name" validate:"required"`
	Email              *string `json:"email" validate:"omitempty,email"`
	Phone              *string `json:"phone"`
	ExamName           string  `json:"exam_name" validate:"required"`
	ExamDate           string  `json:"exam_date" validate:"required,datetime=2006-01-02"`
	ConfirmationNumber string  `json:"confirmation_number"`
	Notes              *string `json:"notes"`
}

// UpdateCandidateRequest is the payload for editing candidate details.
type UpdateCandidateRequest struct {
	FullName string  `json:"full_name" validate:"required"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Phone    *string `json:"phone"`
	Notes    *string `json:"notes"`
}

// importColumns are the required headers of a candidate CSV upload. A
// confirmation_number column is honored when present but never required.
var importColumns = []string{"full_name", "exam_name", "exam_date"}

// newConfirmationNumber mints a human-readable candidate reference code.
// Codes are not guaranteed unique; duplicates are tolerated downstream.
func newConfirmationNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "FETS-" + suffix[:8]
}

// CandidateService tracks examinees through the check-in lifecycle.
type CandidateService struct {
	repo      candidateRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCandidateService constructs a CandidateService.
func NewCandidateService(repo candidateRepository, validate *validator.Validate, logger *zap.Logger) *CandidateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CandidateService{repo: repo, validator: validate, logger: logger}
}

// List returns candidates matching the tracker filter.
func (s *CandidateService) List(ctx context.Context, filter models.CandidateFilter) ([]models.Candidate, *models.Pagination, error) {
	candidates, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list candidates")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	return candidates, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Get returns a candidate by ID.
func (s *CandidateService) Get(ctx context.Context, id string) (*models.Candidate, error) {
	candidate, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "candidate not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load candidate")
	}
	return candidate, nil
}

// Create registers a new candidate in the registered state. When the payload
// carries no confirmation number, one is generated.
func (s *CandidateService) Create(ctx context.Context, req CreateCandidateRequest) (*models.Candidate, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid candidate payload")
	}

	confirmation := strings.TrimSpace(req.ConfirmationNumber)
	if confirmation == "" {
		confirmation = newConfirmationNumber()
	}

	candidate := &models.Candidate{
		ID:                 uuid.NewString(),
		FullName:           req.FullName,
		Email:              req.Email,
		Phone:              req.Phone,
		ExamName:           req.ExamName,
		ExamDate:           req.ExamDate,
		Status:             models.CandidateRegistered,
		ConfirmationNumber: confirmation,
		Notes:              req.Notes,
	}

	if err := s.repo.Create(ctx, candidate); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create candidate")
	}
	return candidate, nil
}

// Update edits candidate contact details and notes.
func (s *CandidateService) Update(ctx context.Context, id string, req UpdateCandidateRequest) (*models.Candidate, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid candidate payload")
	}

	candidate, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "candidate not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load candidate")
	}

	candidate.FullName = req.FullName
	candidate.Email = req.Email
	candidate.Phone = req.Phone
	candidate.Notes = req.Notes

	if err := s.repo.Update(ctx, candidate); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update candidate")
	}
	return candidate, nil
}

// SetStatus moves a candidate along the check-in lifecycle. Illegal moves are
// rejected with the current and requested statuses in the message.
func (s *CandidateService) SetStatus(ctx context.Context, id string, status models.CandidateStatus) (*models.Candidate, error) {
	candidate, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "candidate not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load candidate")
	}

	if !CanTransition(candidate.Status, status) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition,
			fmt.Sprintf("cannot move candidate from %s to %s", candidate.Status, status))
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update candidate status")
	}

	candidate.Status = status
	return candidate, nil
}

// Delete removes a candidate record.
func (s *CandidateService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "candidate not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load candidate")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete candidate")
	}
	return nil
}

// Import bulk-loads candidates from a CSV stream. The header row must carry
// every required column; rows that fail validation are reported individually
// and do not stop the batch.
func (s *CandidateService) Import(ctx context.Context, r io.Reader) (*models.CandidateImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to read csv header")
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range importColumns {
		if _, ok := index[required]; !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("missing required column %q", required))
		}
	}

	result := &models.CandidateImportResult{}
	row := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		row++
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, models.CandidateImportRowError{Row: row, Message: err.Error()})
			continue
		}

		candidate := candidateFromRecord(record, index)
		if candidate.FullName == "" || candidate.ExamName == "" || candidate.ExamDate == "" {
			result.Failed++
			result.Errors = append(result.Errors, models.CandidateImportRowError{Row: row, Message: "missing required field"})
			continue
		}

		if err := s.repo.Create(ctx, candidate); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, models.CandidateImportRowError{Row: row, Message: "failed to persist candidate"})
			s.logger.Warn("candidate import row failed", zap.Int("row", row), zap.Error(err))
			continue
		}
		result.Imported++
	}

	return result, nil
}

func candidateFromRecord(record []string, index map[string]int) *models.Candidate {
	field := func(name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}
	optional := func(name string) *string {
		value := field(name)
		if value == "" {
			return nil
		}
		return &value
	}

	confirmation := field("confirmation_number")
	if confirmation == "" {
		confirmation = newConfirmationNumber()
	}

	return &models.Candidate{
		ID:                 uuid.NewString(),
		FullName:           field("full_name"),
		Email:              optional("email"),
		Phone:              optional("phone"),
		ExamName:           field("exam_name"),
		ExamDate:           field("exam_date"),
		Status:             models.CandidateRegistered,
		ConfirmationNumber: confirmation,
		Notes:              optional("notes"),
	}
}
