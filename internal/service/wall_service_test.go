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

type mockWallRepo struct {
	posts    map[string]models.WallPost
	comments map[string][]models.WallComment
	likes    map[string]map[string]struct{}
}

func newMockWallRepo() *mockWallRepo {
	return &mockWallRepo{
		posts:    make(map[string]models.WallPost),
		comments: make(map[string][]models.WallComment),
		likes:    make(map[string]map[string]struct{}),
	}
}

func (m *mockWallRepo) ListPosts(ctx context.Context, viewerID string, limit int) ([]models.WallPostSummary, error) {
	var list []models.WallPostSummary
	for _, p := range m.posts {
		list = append(list, models.WallPostSummary{WallPost: p})
	}
	return list, nil
}

func (m *mockWallRepo) FindPost(ctx context.Context, id string) (*models.WallPost, error) {
	if p, ok := m.posts[id]; ok {
		return &p, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockWallRepo) CreatePost(ctx context.Context, post *models.WallPost) error {
	m.posts[post.ID] = *post
	return nil
}

func (m *mockWallRepo) DeletePost(ctx context.Context, id string) error {
	delete(m.posts, id)
	return nil
}

func (m *mockWallRepo) ListComments(ctx context.Context, postID string) ([]models.WallComment, error) {
	return m.comments[postID], nil
}

func (m *mockWallRepo) CreateComment(ctx context.Context, comment *models.WallComment) error {
	m.comments[comment.PostID] = append(m.comments[comment.PostID], *comment)
	return nil
}

func (m *mockWallRepo) Like(ctx context.Context, postID, userID string) error {
	if m.likes[postID] == nil {
		m.likes[postID] = make(map[string]struct{})
	}
	m.likes[postID][userID] = struct{}{}
	return nil
}

func (m *mockWallRepo) Unlike(ctx context.Context, postID, userID string) error {
	delete(m.likes[postID], userID)
	return nil
}

func TestWallDeletePostByAuthor(t *testing.T) {
	repo := newMockWallRepo()
	repo.posts["p1"] = models.WallPost{ID: "p1", AuthorID: "u1"}
	svc := NewWallService(repo, validator.New(), zap.NewNop())

	require.NoError(t, svc.DeletePost(context.Background(), "p1", "u1", models.RoleStaff))
	assert.Empty(t, repo.posts)
}

func TestWallDeletePostByModerator(t *testing.T) {
	repo := newMockWallRepo()
	repo.posts["p1"] = models.WallPost{ID: "p1", AuthorID: "u1"}
	svc := NewWallService(repo, validator.New(), zap.NewNop())

	require.NoError(t, svc.DeletePost(context.Background(), "p1", "admin", models.RoleAdmin))
	assert.Empty(t, repo.posts)
}

func TestWallDeletePostForbiddenForOtherStaff(t *testing.T) {
	repo := newMockWallRepo()
	repo.posts["p1"] = models.WallPost{ID: "p1", AuthorID: "u1"}
	svc := NewWallService(repo, validator.New(), zap.NewNop())

	err := svc.DeletePost(context.Background(), "p1", "u2", models.RoleStaff)
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
	assert.Len(t, repo.posts, 1)
}
