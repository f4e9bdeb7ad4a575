package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sakif/markdown-blog/internal/apperror"
	"github.com/sakif/markdown-blog/internal/model"
	"github.com/sakif/markdown-blog/internal/repository"
)

// compile-time check that *DB implements repository.PostRepository
var _ repository.PostRepository = (*DB)(nil)

// CreatePost inserts a new post and sets post.ID.
//
// TIMESTAMPS:
// The date column holds Unix milliseconds. Integers sort correctly and
// survive the round trip exactly, which DATETIME text does not guarantee.
func (db *DB) CreatePost(ctx context.Context, post *model.Post) error {
	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO posts (author, title, content, date) VALUES (?, ?, ?, ?)`,
		post.AuthorID,
		post.Title,
		post.Content,
		post.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating post: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading post id: %w", err)
	}
	post.ID = id

	return nil
}

// ListPostSummaries returns id, title and date of every post, newest first.
// Posts created in the same millisecond fall back to id order.
func (db *DB) ListPostSummaries(ctx context.Context) ([]model.PostSummary, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, title, date FROM posts ORDER BY date DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing posts: %w", err)
	}
	// CRITICAL: always close rows when done!
	defer rows.Close()

	summaries := make([]model.PostSummary, 0)
	for rows.Next() {
		var (
			s      model.PostSummary
			millis int64
		)
		if err := rows.Scan(&s.ID, &s.Title, &millis); err != nil {
			return nil, fmt.Errorf("sqlite: scanning post row: %w", err)
		}
		s.CreatedAt = time.UnixMilli(millis)
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating posts: %w", err)
	}

	return summaries, nil
}

// GetPostByID retrieves a single post.
// Returns apperror.ErrNotFound if it does not exist.
func (db *DB) GetPostByID(ctx context.Context, id int64) (*model.Post, error) {
	var (
		p      model.Post
		millis int64
	)

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, author, title, content, date FROM posts WHERE id = ?`,
		id,
	).Scan(&p.ID, &p.AuthorID, &p.Title, &p.Content, &millis)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("post", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("sqlite: getting post %d: %w", id, err)
	}
	p.CreatedAt = time.UnixMilli(millis)

	return &p, nil
}

// UpdatePost rewrites title and content. author and date are immutable and
// never part of the SET clause.
func (db *DB) UpdatePost(ctx context.Context, post *model.Post) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE posts SET title = ?, content = ? WHERE id = ?`,
		post.Title,
		post.Content,
		post.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating post %d: %w", post.ID, err)
	}

	return expectAffected(result, "post", post.ID)
}

// DeletePost removes a post by id.
func (db *DB) DeletePost(ctx context.Context, id int64) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting post %d: %w", id, err)
	}

	return expectAffected(result, "post", id)
}

// expectAffected turns "0 rows affected" into apperror.ErrNotFound.
func expectAffected(result sql.Result, resource string, id int64) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound(resource, strconv.FormatInt(id, 10))
	}
	return nil
}
