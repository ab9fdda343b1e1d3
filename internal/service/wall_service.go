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
	"github.com/fets-ops/console-api/internal/permissions"
	appErrors "github.com/fets-ops/console-api/pkg/errors"
)

type wallRepository interface {
	ListPosts(ctx context.Context, viewerID string, limit int) ([]models.WallPostSummary, error)
	FindPost(ctx context.Context, id string) (*models.WallPost, error)
	CreatePost(ctx context.Context, post *models.WallPost) error
	DeletePost(ctx context.Context, id string) error
	ListComments(ctx context.Context, postID string) ([]models.WallComment, error)
	CreateComment(ctx context.Context, comment *models.WallComment) error
	Like(ctx context.Context, postID, userID string) error
	Unlike(ctx context.Context, postID, userID string) error
}

// maxWallPostLength bounds post and comment content.
const maxWallPostLength = 2000

// WallService manages the staff activity feed.
type WallService struct {
	repo      wallRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewWallService constructs a WallService.
func NewWallService(repo wallRepository, validate *validator.Validate, logger *zap.Logger) *WallService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &WallService{repo: repo, validator: validate, logger: logger}
}

// Feed returns the latest posts decorated with counts and the viewer's like
// state.
func (s *WallService) Feed(ctx context.Context, viewerID string, limit int) ([]models.WallPostSummary, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	posts, err := s.repo.ListPosts(ctx, viewerID, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load wall feed")
	}
	return posts, nil
}

// CreatePost publishes a post to the wall.
func (s *WallService) CreatePost(ctx context.Context, authorID, content string) (*models.WallPost, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "post content is required")
	}
	if len(content) > maxWallPostLength {
		return nil, appErrors.Clone(appErrors.ErrValidation, "post content is too long")
	}

	post := &models.WallPost{
		ID:       uuid.NewString(),
		AuthorID: authorID,
		Content:  content,
	}
	if err := s.repo.CreatePost(ctx, post); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create post")
	}
	return post, nil
}

// DeletePost removes a post with its comments and likes. Only the author or
// a role granted wall moderation may delete.
func (s *WallService) DeletePost(ctx context.Context, postID, actorID string, actorRole models.UserRole) error {
	post, err := s.repo.FindPost(ctx, postID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "post not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load post")
	}

	if post.AuthorID != actorID && !permissions.Can(actorRole, permissions.ActionModerateWall) {
		return appErrors.Clone(appErrors.ErrForbidden, "only the author or a moderator may delete a post")
	}

	if err := s.repo.DeletePost(ctx, postID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete post")
	}
	return nil
}

// Comments returns a post's comments, oldest first.
func (s *WallService) Comments(ctx context.Context, postID string) ([]models.WallComment, error) {
	if _, err := s.repo.FindPost(ctx, postID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "post not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load post")
	}
	comments, err := s.repo.ListComments(ctx, postID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load comments")
	}
	return comments, nil
}

// AddComment attaches a comment to a post.
func (s *WallService) AddComment(ctx context.Context, postID, authorID, content string) (*models.WallComment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "comment content is required")
	}
	if len(content) > maxWallPostLength {
		return nil, appErrors.Clone(appErrors.ErrValidation, "comment content is too long")
	}

	if _, err := s.repo.FindPost(ctx, postID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "post not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load post")
	}

	comment := &models.WallComment{
		ID:       uuid.NewString(),
		PostID:   postID,
		AuthorID: authorID,
		Content:  content,
	}
	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create comment")
	}
	return comment, nil
}

// Like records the viewer liking a post. Liking twice is a no-op.
func (s *WallService) Like(ctx context.Context, postID, userID string) error {
	if _, err := s.repo.FindPost(ctx, postID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "post not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load post")
	}
	if err := s.repo.Like(ctx, postID, userID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to like post")
	}
	return nil
}

// Unlike removes the viewer's like from a post.
func (s *WallService) Unlike(ctx context.Context, postID, userID string) error {
	if err := s.repo.Unlike(ctx, postID, userID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to unlike post")
	}
	return nil
}
