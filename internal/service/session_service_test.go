package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fets-ops/console-api/internal/models"
	appErrors "github.com/fets-ops/console-api/pkg/errors"
)

type mockSessionRepo struct {
	sessions map[string]models.Session
	bookedOn map[string]int
	created  *models.Session
	updated  *models.Session
	deleted  []string
}

func (m *mockSessionRepo) List(ctx context.Context, filter models.SessionFilter) ([]models.Session, int, error) {
	var list []models.Session
	for _, s := range m.sessions {
		list = append(list, s)
	}
	return list, len(list), nil
}

func (m *mockSessionRepo) FindByID(ctx context.Context, id string) (*models.Session, error) {
	if s, ok := m.sessions[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSessionRepo) CountOnDate(ctx context.Context, date string) (int, int, error) {
	sessions := 0
	for _, s := range m.sessions {
		if s.SessionDate == date {
			sessions++
		}
	}
	return sessions, m.bookedOn[date], nil
}

func (m *mockSessionRepo) Create(ctx context.Context, session *models.Session) error {
	if m.sessions == nil {
		m.sessions = make(map[string]models.Session)
	}
	m.sessions[session.ID] = *session
	m.created = session
	return nil
}

func (m *mockSessionRepo) Update(ctx context.Context, session *models.Session) error {
	m.sessions[session.ID] = *session
	m.updated = session
	return nil
}

func (m *mockSessionRepo) Delete(ctx context.Context, id string) error {
	delete(m.sessions, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func newSessionRequest(count int) CreateSessionRequest {
	return CreateSessionRequest{
		ClientName:     "Prometric",
		ExamName:       "CISSP",
		SessionDate:    "2025-03-10",
		CandidateCount: count,
		StartTime:      "09:00",
		EndTime:        "12:00",
	}
}

func TestSessionServiceCreateWithinCapacity(t *testing.T) {
	repo := &mockSessionRepo{bookedOn: map[string]int{"2025-03-10": 10}}
	svc := NewSessionService(repo, validator.New(), zap.NewNop())

	result, err := svc.Create(context.Background(), newSessionRequest(15), "admin-1")
	require.NoError(t, err)
	assert.Equal(t, CapacityOK, result.Capacity.Level)
	require.NotNil(t, repo.created)
	assert.Equal(t, 15, repo.created.CandidateCount)
	assert.Equal(t, "admin-1", repo.created.CreatedBy)
}

func TestSessionServiceCreateWarnsNearCapacity(t *testing.T) {
	repo := &mockSessionRepo{bookedOn: map[string]int{"2025-03-10": 25}}
	svc := NewSessionService(repo, validator.New(), zap.NewNop())

	result, err := svc.Create(context.Background(), newSessionRequest(10), "admin-1")
	require.NoError(t, err)
	assert.Equal(t, CapacityWarning, result.Capacity.Level)
	assert.Equal(t, "Session approaching capacity (35/40 candidates)", result.Capacity.Message)
}

func TestSessionServiceCreateRejectsOverCapacity(t *testing.T) {
	repo := &mockSessionRepo{bookedOn: map[string]int{"2025-03-10": 35}}
	svc := NewSessionService(repo, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), newSessionRequest(6), "admin-1")
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrCapacityExceeded.Code, appErr.Code)
	assert.Equal(t, "Session exceeds maximum capacity of 40 candidates", appErr.Message)
	assert.Nil(t, repo.created)
}

func TestSessionServiceUpdateExcludesOwnCount(t *testing.T) {
	repo := &mockSessionRepo{
		sessions: map[string]models.Session{
			"s1": {ID: "s1", ClientName: "Prometric", ExamName: "CISSP", SessionDate: "2025-03-10", CandidateCount: 20},
		},
		bookedOn: map[string]int{"2025-03-10": 40},
	}
	svc := NewSessionService(repo, validator.New(), zap.NewNop())

	req := UpdateSessionRequest{
		ClientName:     "Prometric",
		ExamName:       "CISSP",
		SessionDate:    "2025-03-10",
		CandidateCount: 20,
		StartTime:      "09:00",
		EndTime:        "12:00",
	}
	result, err := svc.Update(context.Background(), "s1", req)
	require.NoError(t, err)
	assert.Equal(t, CapacityWarning, result.Capacity.Level)
	require.NotNil(t, repo.updated)
}

func TestSessionServiceGetNotFound(t *testing.T) {
	svc := NewSessionService(&mockSessionRepo{}, validator.New(), zap.NewNop())

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
