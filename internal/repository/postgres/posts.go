package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sakif/markdown-blog/internal/apperror"
	"github.com/sakif/markdown-blog/internal/model"
)

func (d *DB) CreatePost(ctx context.Context, post *model.Post) error {
	query :=
		`INSERT INTO posts (author, title, content, date)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`

	err := d.db.QueryRowContext(ctx, query,
		post.AuthorID, post.Title, post.Content, post.CreatedAt.UnixMilli()).Scan(&post.ID)
	if err != nil {
		return fmt.Errorf("postgres: creating post: %w", err)
	}

	return nil
}

func (d *DB) ListPostSummaries(ctx context.Context) ([]model.PostSummary, error) {
	query :=
		`SELECT id, title, date FROM posts
		 ORDER BY date DESC, id DESC`

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: listing posts: %w", err)
	}
	defer rows.Close()

	summaries := make([]model.PostSummary, 0)
	for rows.Next() {
		var (
			s      model.PostSummary
			millis int64
		)
		if err := rows.Scan(&s.ID, &s.Title, &millis); err != nil {
			return nil, fmt.Errorf("postgres: scanning post row: %w", err)
		}
		s.CreatedAt = time.UnixMilli(millis)
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterating posts: %w", err)
	}

	return summaries, nil
}

func (d *DB) GetPostByID(ctx context.Context, id int64) (*model.Post, error) {
	query :=
		`SELECT id, author, title, content, date FROM posts
		 WHERE id = $1`

	var (
		post   model.Post
		millis int64
	)
	err := d.db.QueryRowContext(ctx, query, id).
		Scan(&post.ID, &post.AuthorID, &post.Title, &post.Content, &millis)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("post", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("postgres: getting post %d: %w", id, err)
	}
	post.CreatedAt = time.UnixMilli(millis)

	return &post, nil
}

func (d *DB) UpdatePost(ctx context.Context, post *model.Post) error {
	query :=
		`UPDATE posts SET title = $1, content = $2
		 WHERE id = $3`

	res, err := d.db.ExecContext(ctx, query, post.Title, post.Content, post.ID)
	if err != nil {
		return fmt.Errorf("postgres: updating post %d: %w", post.ID, err)
	}

	return expectAffected(res, post.ID)
}

func (d *DB) DeletePost(ctx context.Context, id int64) error {
	query := `DELETE FROM posts WHERE id = $1`

	res, err := d.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("postgres: deleting post %d: %w", id, err)
	}

	return expectAffected(res, id)
}

func expectAffected(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("postgres: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("post", strconv.FormatInt(id, 10))
	}
	return nil
}
