package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fets-ops/console-api/internal/models"
	appErrors "github.com/fets-ops/console-api/pkg/errors"
)

type mockCandidateRepo struct {
	candidates map[string]models.Candidate
	statuses   map[string]models.CandidateStatus
	createErr  error
	created    int
}

func (m *mockCandidateRepo) List(ctx context.Context, filter models.CandidateFilter) ([]models.Candidate, int, error) {
	var list []models.Candidate
	for _, c := range m.candidates {
		list = append(list, c)
	}
	return list, len(list), nil
}

func (m *mockCandidateRepo) FindByID(ctx context.Context, id string) (*models.Candidate, error) {
	if c, ok := m.candidates[id]; ok {
		return &c, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockCandidateRepo) Create(ctx context.Context, candidate *models.Candidate) error {
	if m.createErr != nil {
		return m.createErr
	}
	if m.candidates == nil {
		m.candidates = make(map[string]models.Candidate)
	}
	m.candidates[candidate.ID] = *candidate
	m.created++
	return nil
}

func (m *mockCandidateRepo) Update(ctx context.Context, candidate *models.Candidate) error {
	m.candidates[candidate.ID] = *candidate
	return nil
}

func (m *mockCandidateRepo) UpdateStatus(ctx context.Context, id string, status models.CandidateStatus) error {
	if m.statuses == nil {
		m.statuses = make(map[string]models.CandidateStatus)
	}
	m.statuses[id] = status
	if c, ok := m.candidates[id]; ok {
		c.Status = status
		m.candidates[id] = c
	}
	return nil
}

func (m *mockCandidateRepo) Delete(ctx context.Context, id string) error {
	delete(m.candidates, id)
	return nil
}

func TestCandidateCheckInFlow(t *testing.T) {
	repo := &mockCandidateRepo{candidates: map[string]models.Candidate{
		"c1": {ID: "c1", FullName: "Jane Lim", Status: models.CandidateRegistered},
	}}
	svc := NewCandidateService(repo, validator.New(), zap.NewNop())

	for _, next := range []models.CandidateStatus{
		models.CandidateCheckedIn,
		models.CandidateInProgress,
		models.CandidateCompleted,
	} {
		candidate, err := svc.SetStatus(context.Background(), "c1", next)
		require.NoError(t, err)
		assert.Equal(t, next, candidate.Status)
	}
}

func TestCandidateInvalidTransitionRejected(t *testing.T) {
	repo := &mockCandidateRepo{candidates: map[string]models.Candidate{
		"c1": {ID: "c1", Status: models.CandidateRegistered},
	}}
	svc := NewCandidateService(repo, validator.New(), zap.NewNop())

	_, err := svc.SetStatus(context.Background(), "c1", models.CandidateCompleted)
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErr.Code)
	assert.Empty(t, repo.statuses)
}

func TestCandidateTerminalStatusIsFinal(t *testing.T) {
	repo := &mockCandidateRepo{candidates: map[string]models.Candidate{
		"c1": {ID: "c1", Status: models.CandidateCompleted},
	}}
	svc := NewCandidateService(repo, validator.New(), zap.NewNop())

	_, err := svc.SetStatus(context.Background(), "c1", models.CandidateCheckedIn)
	require.Error(t, err)
}

func TestCanTransitionTable(t *testing.T) {
	assert.True(t, CanTransition(models.CandidateRegistered, models.CandidateNoShow))
	assert.True(t, CanTransition(models.CandidateCheckedIn, models.CandidateCancelled))
	assert.False(t, CanTransition(models.CandidateNoShow, models.CandidateCheckedIn))
	assert.False(t, CanTransition(models.CandidateCancelled, models.CandidateRegistered))
	assert.False(t, CanTransition(models.CandidateRegistered, models.CandidateInProgress))
}

func TestCandidateCreateGeneratesConfirmationNumber(t *testing.T) {
	repo := &mockCandidateRepo{}
	svc := NewCandidateService(repo, validator.New(), zap.NewNop())

	candidate, err := svc.Create(context.Background(), CreateCandidateRequest{
		FullName: "Jane Lim",
		ExamName: "CISSP",
		ExamDate: "2025-03-10",
	})
	require.NoError(t, err)
	assert.Regexp(t, `^FETS-[0-9A-F]{8}$`, candidate.ConfirmationNumber)
}

func TestCandidateCreateKeepsSuppliedConfirmationNumber(t *testing.T) {
	repo := &mockCandidateRepo{}
	svc := NewCandidateService(repo, validator.New(), zap.NewNop())

	candidate, err := svc.Create(context.Background(), CreateCandidateRequest{
		FullName:           "Bala Kumar",
		ExamName:           "CISSP",
		ExamDate:           "2025-03-10",
		ConfirmationNumber: "CONF-777",
	})
	require.NoError(t, err)
	assert.Equal(t, "CONF-777", candidate.ConfirmationNumber)
}

func TestCandidateImport(t *testing.T) {
	repo := &mockCandidateRepo{}
	svc := NewCandidateService(repo, validator.New(), zap.NewNop())

	csv := strings.Join([]string{
		"full_name,email,exam_name,exam_date,confirmation_number",
		"Jane Lim,jane@example.com,CISSP,2025-03-10,CONF-001",
		"Bala Kumar,,CISSP,2025-03-10,CONF-002",
		",missing@example.com,CISSP,2025-03-10,CONF-003",
	}, "\n")

	result, err := svc.Import(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 4, result.Errors[0].Row)
	assert.Equal(t, 2, repo.created)
}

func TestCandidateImportMissingColumnFailsFast(t *testing.T) {
	svc := NewCandidateService(&mockCandidateRepo{}, validator.New(), zap.NewNop())

	csv := "full_name,email\nJane Lim,jane@example.com\n"
	_, err := svc.Import(context.Background(), strings.NewReader(csv))
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestCandidateImportGeneratesMissingConfirmationNumbers(t *testing.T) {
	repo := &mockCandidateRepo{}
	svc := NewCandidateService(repo, validator.New(), zap.NewNop())

	csv := "full_name,exam_name,exam_date\nJane Lim,CISSP,2025-03-10\n"
	result, err := svc.Import(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)

	for _, c := range repo.candidates {
		assert.Regexp(t, `^FETS-[0-9A-F]{8}$`, c.ConfirmationNumber)
	}
}

func TestCandidateImportAllRegistered(t *testing.T) {
	repo := &mockCandidateRepo{}
	svc := NewCandidateService(repo, validator.New(), zap.NewNop())

	csv := "full_name,exam_name,exam_date,confirmation_number\nJane Lim,CISSP,2025-03-10,CONF-001\n"
	result, err := svc.Import(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)

	for _, c := range repo.candidates {
		assert.Equal(t, models.CandidateRegistered, c.Status)
	}
}
