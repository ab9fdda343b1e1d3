package models

import "time"

// WallPost is one entry on the staff activity feed.
type WallPost struct {
	ID        string    `db:"id" json:"id"`
	AuthorID  string    `db:"author_id" json:"author_id"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// WallPostSummary decorates a post with aggregate counts and the viewer's
// like state, computed in a single listing query.
type WallPostSummary struct {
	WallPost
	AuthorName   string `db:"author_name" json:"author_name"`
	LikeCount    int    `db:"like_count" json:"like_count"`
	CommentCount int    `db:"comment_count" json:"comment_count"`
	LikedByMe    bool   `db:"liked_by_me" json:"liked_by_me"`
}

// WallComment is a comment on a wall post.
type WallComment struct {
	ID         string    `db:"id" json:"id"`
	PostID     string    `db:"post_id" json:"post_id"`
	AuthorID   string    `db:"author_id" json:"author_id"`
	AuthorName string    `db:"author_name" json:"author_name"`
	Content    string    `db:"content" json:"content"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// WallLike records one user liking one post. Unique per (post, user).
type WallLike struct {
	ID        string    `db:"id" json:"id"`
	PostID    string    `db:"post_id" json:"post_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
