// Package repository declares the storage contracts the services depend on.
//
// Repositories persist and fetch; they enforce no ownership rules. Whether
// the caller may touch a post is decided by the guard pipeline in package web
// before any mutation reaches here.
package repository

import (
	"context"

	"github.com/sakif/markdown-blog/internal/model"
)

// UserRepository is the credential store.
//
// Implementations return apperror.ErrNotFound for missing rows and
// apperror.ErrConflict when CreateUser hits the username uniqueness
// constraint.
type UserRepository interface {
	// CreateUser inserts user and sets user.ID.
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
}

// PostRepository stores posts.
type PostRepository interface {
	// CreatePost inserts post (AuthorID, Title, Content, CreatedAt) and sets post.ID.
	CreatePost(ctx context.Context, post *model.Post) error
	// ListPostSummaries returns every post, newest first.
	ListPostSummaries(ctx context.Context) ([]model.PostSummary, error)
	GetPostByID(ctx context.Context, id int64) (*model.Post, error)
	// UpdatePost rewrites Title and Content of post.ID.
	UpdatePost(ctx context.Context, post *model.Post) error
	DeletePost(ctx context.Context, id int64) error
}

// Store is a backing database serving both repositories.
type Store interface {
	UserRepository
	PostRepository
	Close() error
}
