package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakif/markdown-blog/internal/apperror"
	"github.com/sakif/markdown-blog/internal/model"
	"github.com/sakif/markdown-blog/internal/repository"
)

const MsgPostFieldsRequired = "Title and content are required"

// PostService validates and stores blog posts.
// Ownership is not checked here; the route guards do that before any
// mutating call reaches the service.
type PostService struct {
	posts  repository.PostRepository
	now    func() time.Time
	logger *slog.Logger
}

func NewPostService(posts repository.PostRepository, logger *slog.Logger) *PostService {
	return &PostService{
		posts:  posts,
		now:    time.Now,
		logger: logger,
	}
}

// Create stores a new post by authorID, stamped with the current time.
// Title and content are stored exactly as given.
func (s *PostService) Create(ctx context.Context, authorID int64, title, content string) (*model.Post, error) {
	if err := validatePost(title, content); err != nil {
		return nil, err
	}

	post := &model.Post{
		AuthorID:  authorID,
		Title:     title,
		Content:   content,
		CreatedAt: s.now(),
	}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		s.logger.Error("failed to create post",
			slog.Int64("author_id", authorID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating post: %w", err)
	}

	s.logger.Info("post created",
		slog.Int64("id", post.ID),
		slog.Int64("author_id", authorID),
	)
	return post, nil
}

// Get returns apperror.ErrNotFound if the post doesn't exist.
func (s *PostService) Get(ctx context.Context, id int64) (*model.Post, error) {
	return s.posts.GetPostByID(ctx, id)
}

// List returns every post, newest first.
func (s *PostService) List(ctx context.Context) ([]model.PostSummary, error) {
	summaries, err := s.posts.ListPostSummaries(ctx)
	if err != nil {
		s.logger.Error("failed to list posts", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	return summaries, nil
}

// Update replaces title and content of post. Author and date never change.
// On success post holds the new values.
func (s *PostService) Update(ctx context.Context, post *model.Post, title, content string) error {
	if err := validatePost(title, content); err != nil {
		return err
	}

	updated := *post
	updated.Title = title
	updated.Content = content
	if err := s.posts.UpdatePost(ctx, &updated); err != nil {
		return fmt.Errorf("updating post: %w", err)
	}
	*post = updated

	s.logger.Info("post updated", slog.Int64("id", post.ID))
	return nil
}

func (s *PostService) Delete(ctx context.Context, id int64) error {
	if err := s.posts.DeletePost(ctx, id); err != nil {
		return fmt.Errorf("deleting post: %w", err)
	}

	s.logger.Info("post deleted", slog.Int64("id", id))
	return nil
}

func validatePost(title, content string) error {
	if title == "" || content == "" {
		return apperror.ValidationFailed("title", MsgPostFieldsRequired)
	}
	return nil
}
