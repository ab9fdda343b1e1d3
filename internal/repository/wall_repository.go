package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/fets-ops/console-api/internal/models"
)

// WallRepository manages the staff activity feed. Like and comment counts
// come back from a single aggregate query rather than one count query per
// post.
type WallRepository struct {
	db *sqlx.DB
}

// NewWallRepository constructs a WallRepository.
func NewWallRepository(db *sqlx.DB) *WallRepository {
	return &WallRepository{db: db}
}

// ListPosts returns the newest posts decorated with counts and the viewer's
// like state.
func (r *WallRepository) ListPosts(ctx context.Context, viewerID string, limit int) ([]models.WallPostSummary, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	const query = `SELECT p.id, p.author_id, p.content, p.created_at, p.updated_at,
			u.full_name AS author_name,
			COUNT(DISTINCT l.id) AS like_count,
			COUNT(DISTINCT c.id) AS comment_count,
			BOOL_OR(l.user_id = $1) IS TRUE AS liked_by_me
		FROM wall_posts p
		JOIN users u ON u.id = p.author_id
		LEFT JOIN wall_likes l ON l.post_id = p.id
		LEFT JOIN wall_comments c ON c.post_id = p.id
		GROUP BY p.id, u.full_name
		ORDER BY p.created_at DESC
		LIMIT $2`
	var posts []models.WallPostSummary
	if err := r.db.SelectContext(ctx, &posts, query, viewerID, limit); err != nil {
		return nil, fmt.Errorf("list wall posts: %w", err)
	}
	return posts, nil
}

// FindPost fetches a post by ID.
func (r *WallRepository) FindPost(ctx context.Context, id string) (*models.WallPost, error) {
	const query = `SELECT id, author_id, content, created_at, updated_at FROM wall_posts WHERE id = $1`
	var post models.WallPost
	if err := r.db.GetContext(ctx, &post, query, id); err != nil {
		return nil, err
	}
	return &post, nil
}

// CreatePost inserts a new post.
func (r *WallRepository) CreatePost(ctx context.Context, post *models.WallPost) error {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now

	const query = `INSERT INTO wall_posts (id, author_id, content, created_at, updated_at) VALUES (:id, :author_id, :content, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, post); err != nil {
		return fmt.Errorf("create wall post: %w", err)
	}
	return nil
}

// DeletePost removes a post with its comments and likes.
func (r *WallRepository) DeletePost(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete post: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM wall_comments WHERE post_id = $1", id); err != nil {
		return fmt.Errorf("delete post comments: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM wall_likes WHERE post_id = $1", id); err != nil {
		return fmt.Errorf("delete post likes: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM wall_posts WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete post: %w", err)
	}
	return nil
}

// ListComments returns a post's comments, oldest first.
func (r *WallRepository) ListComments(ctx context.Context, postID string) ([]models.WallComment, error) {
	const query = `SELECT c.id, c.post_id, c.author_id, u.full_name AS author_name, c.content, c.created_at
		FROM wall_comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.post_id = $1
		ORDER BY c.created_at ASC`
	var comments []models.WallComment
	if err := r.db.SelectContext(ctx, &comments, query, postID); err != nil {
		return nil, fmt.Errorf("list wall comments: %w", err)
	}
	return comments, nil
}

// CreateComment inserts a comment on a post.
func (r *WallRepository) CreateComment(ctx context.Context, comment *models.WallComment) error {
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	comment.CreatedAt = time.Now().UTC()

	const query = `INSERT INTO wall_comments (id, post_id, author_id, content, created_at) VALUES (:id, :post_id, :author_id, :content, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, comment); err != nil {
		return fmt.Errorf("create wall comment: %w", err)
	}
	return nil
}

// Like records a like, idempotently per (post, user).
func (r *WallRepository) Like(ctx context.Context, postID, userID string) error {
	const query = `INSERT INTO wall_likes (id, post_id, user_id, created_at) VALUES ($1, $2, $3, $4)
		ON CONFLICT (post_id, user_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, uuid.NewString(), postID, userID, time.Now().UTC()); err != nil {
		return fmt.Errorf("like wall post: %w", err)
	}
	return nil
}

// Unlike removes a like if present.
func (r *WallRepository) Unlike(ctx context.Context, postID, userID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM wall_likes WHERE post_id = $1 AND user_id = $2", postID, userID); err != nil {
		return fmt.Errorf("unlike wall post: %w", err)
	}
	return nil
}
