package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fets-ops/console-api/internal/models"
)

type mockChecklistRepo struct {
	templates     map[string]models.ChecklistTemplate
	templateItems map[string][]models.ChecklistTemplateItem
	instances     map[string]models.ChecklistInstance
	instanceItems map[string][]models.ChecklistInstanceItem
	completions   map[string]bool
}

func newMockChecklistRepo() *mockChecklistRepo {
	return &mockChecklistRepo{
		templates:     make(map[string]models.ChecklistTemplate),
		templateItems: make(map[string][]models.ChecklistTemplateItem),
		instances:     make(map[string]models.ChecklistInstance),
		instanceItems: make(map[string][]models.ChecklistInstanceItem),
		completions:   make(map[string]bool),
	}
}

func (m *mockChecklistRepo) ListTemplates(ctx context.Context, category *models.ChecklistCategory) ([]models.ChecklistTemplate, error) {
	var list []models.ChecklistTemplate
	for _, t := range m.templates {
		if category != nil && t.Category != *category {
			continue
		}
		list = append(list, t)
	}
	return list, nil
}

func (m *mockChecklistRepo) FindTemplate(ctx context.Context, id string) (*models.ChecklistTemplate, error) {
	if t, ok := m.templates[id]; ok {
		return &t, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockChecklistRepo) ListTemplateItems(ctx context.Context, templateID string) ([]models.ChecklistTemplateItem, error) {
	return m.templateItems[templateID], nil
}

func (m *mockChecklistRepo) CreateTemplate(ctx context.Context, template *models.ChecklistTemplate, items []models.ChecklistTemplateItem) error {
	m.templates[template.ID] = *template
	m.templateItems[template.ID] = items
	return nil
}

func (m *mockChecklistRepo) DeleteTemplate(ctx context.Context, id string) error {
	delete(m.templates, id)
	delete(m.templateItems, id)
	return nil
}

func (m *mockChecklistRepo) ListInstances(ctx context.Context) ([]models.ChecklistInstance, error) {
	var list []models.ChecklistInstance
	for _, in := range m.instances {
		list = append(list, in)
	}
	return list, nil
}

func (m *mockChecklistRepo) FindInstance(ctx context.Context, id string) (*models.ChecklistInstance, error) {
	if in, ok := m.instances[id]; ok {
		return &in, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockChecklistRepo) ListInstanceItems(ctx context.Context, instanceID string) ([]models.ChecklistInstanceItem, error) {
	return m.instanceItems[instanceID], nil
}

func (m *mockChecklistRepo) CreateInstance(ctx context.Context, instance *models.ChecklistInstance, items []models.ChecklistInstanceItem) error {
	m.instances[instance.ID] = *instance
	m.instanceItems[instance.ID] = items
	return nil
}

func (m *mockChecklistRepo) SetItemCompletion(ctx context.Context, itemID string, completed bool, completedBy *string, completedAt *time.Time) error {
	m.completions[itemID] = completed
	return nil
}

func seedTemplate(t *testing.T, repo *mockChecklistRepo, svc *ChecklistService, name string) *models.ChecklistTemplate {
	t.Helper()
	desc := "lock down the testing room"
	template, err := svc.CreateTemplate(context.Background(), CreateTemplateRequest{
		Name:     name,
		Category: models.ChecklistPreExam,
		Items: []CreateTemplateItemRequest{
			{Title: "Verify camera coverage", Priority: "high", EstimatedMinutes: 10, ResponsibleRole: "ADMIN"},
			{Title: "Seal storage lockers", Description: &desc, Priority: "medium", EstimatedMinutes: 5, ResponsibleRole: "STAFF"},
			{Title: "Post quiet signage", Priority: "low", ResponsibleRole: "STAFF"},
		},
	}, "admin-1")
	require.NoError(t, err)
	return template
}

func TestInstantiateCopiesEveryItem(t *testing.T) {
	repo := newMockChecklistRepo()
	svc := NewChecklistService(repo, validator.New(), zap.NewNop())
	template := seedTemplate(t, repo, svc, "Morning Opening")

	detail, err := svc.Instantiate(context.Background(), template.ID, "2025-04-12", "admin-1")
	require.NoError(t, err)

	assert.Equal(t, "Morning Opening - 2025-04-12", detail.Instance.Name)
	assert.Equal(t, template.ID, detail.Instance.TemplateID)
	assert.Equal(t, "2025-04-12", detail.Instance.InstanceDate)
	require.Len(t, detail.Items, 3)

	source := repo.templateItems[template.ID]
	for i, item := range detail.Items {
		assert.Equal(t, detail.Instance.ID, item.InstanceID)
		assert.Equal(t, source[i].ID, item.SourceItemID)
		assert.Equal(t, source[i].Title, item.Title)
		assert.Equal(t, source[i].Priority, item.Priority)
		assert.Equal(t, source[i].SortOrder, item.SortOrder)
		assert.False(t, item.Completed)
		assert.Nil(t, item.CompletedBy)
		assert.Nil(t, item.CompletedAt)
	}
}

func TestInstanceSurvivesTemplateDeletion(t *testing.T) {
	repo := newMockChecklistRepo()
	svc := NewChecklistService(repo, validator.New(), zap.NewNop())
	template := seedTemplate(t, repo, svc, "Closing Checks")

	detail, err := svc.Instantiate(context.Background(), template.ID, "2025-04-12", "admin-1")
	require.NoError(t, err)
	require.NoError(t, svc.DeleteTemplate(context.Background(), template.ID))

	got, err := svc.GetInstance(context.Background(), detail.Instance.ID)
	require.NoError(t, err)
	assert.Len(t, got.Items, 3)
}

func TestInstantiateUnknownTemplate(t *testing.T) {
	svc := NewChecklistService(newMockChecklistRepo(), validator.New(), zap.NewNop())
	_, err := svc.Instantiate(context.Background(), "missing", "2025-04-12", "admin-1")
	require.Error(t, err)
}

func TestCreateTemplateRejectsBadPriority(t *testing.T) {
	svc := NewChecklistService(newMockChecklistRepo(), validator.New(), zap.NewNop())
	_, err := svc.CreateTemplate(context.Background(), CreateTemplateRequest{
		Name:     "Broken",
		Category: models.ChecklistPreExam,
		Items: []CreateTemplateItemRequest{
			{Title: "Item", Priority: "urgent", ResponsibleRole: "STAFF"},
		},
	}, "admin-1")
	require.Error(t, err)
}

func TestSetItemCompletionToggle(t *testing.T) {
	repo := newMockChecklistRepo()
	svc := NewChecklistService(repo, validator.New(), zap.NewNop())

	require.NoError(t, svc.SetItemCompletion(context.Background(), "item-1", true, "staff-7"))
	assert.True(t, repo.completions["item-1"])

	require.NoError(t, svc.SetItemCompletion(context.Background(), "item-1", false, "staff-7"))
	assert.False(t, repo.completions["item-1"])
}
