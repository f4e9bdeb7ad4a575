// Package handler contains the blog's route handlers.
//
// HANDLER RESPONSIBILITIES:
//  1. Read the form values of the request
//  2. Call the service layer
//  3. Answer with a rendered view or a 303 redirect
//
// Handlers run as the last stage of a web.Route, so the route's guards have
// already passed: a handler on a requireAuth route can take the session's
// user id for granted, and one behind requireOwn can assume c.Post belongs
// to the caller.
//
// ERROR MAPPING:
// Services return domain errors. Recoverable ones (validation, duplicate
// username, bad credentials) are shown on the originating form with status
// 400. Everything else is returned to the dispatcher, which logs it and
// renders a generic 500.
package handler

import (
	"context"
	"errors"
	"html/template"

	"github.com/sakif/markdown-blog/internal/apperror"
	"github.com/sakif/markdown-blog/internal/model"
)

// Accounts is the slice of service.AuthService the handlers use.
type Accounts interface {
	Signup(ctx context.Context, username, password string) (*model.User, error)
	Login(ctx context.Context, username, password string) (*model.User, error)
	UserByID(ctx context.Context, id int64) (*model.User, error)
}

// Posts is the slice of service.PostService the handlers use.
type Posts interface {
	Create(ctx context.Context, authorID int64, title, content string) (*model.Post, error)
	List(ctx context.Context) ([]model.PostSummary, error)
	Update(ctx context.Context, post *model.Post, title, content string) error
	Delete(ctx context.Context, id int64) error
}

// ContentRenderer turns stored markdown into HTML safe to embed in a page.
type ContentRenderer interface {
	Render(src string) (template.HTML, error)
}

// formErrors returns the messages to show on a form for err, or false when
// err is not something a form can display.
func formErrors(err error) ([]string, bool) {
	if !apperror.IsRecoverable(err) {
		return nil, false
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return []string{appErr.Message}, true
	}
	return nil, false
}
