// Package web is the request pipeline every blog route runs through.
//
// PIPELINE:
// A Route is three stages run in a fixed order:
//
//	Resolve  → load the entity named in the path (the post behind {id})
//	Guards   → access checks, left to right, first failure wins
//	Handler  → the action itself
//
// Each stage either lets the request continue or has already written the
// full response (a redirect, a 403 or 404 page) and stops it. A request that
// stopped never reaches a later stage, so a handler can rely on every guard
// of its route having passed.
//
// Resolution runs before the guards: a missing post is a 404 even for a
// visitor who is not signed in.
package web

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/markdown-blog/internal/auth"
	"github.com/sakif/markdown-blog/internal/model"
	"github.com/sakif/markdown-blog/internal/view"
)

// Context is the per-request state shared by the pipeline stages.
type Context struct {
	W       http.ResponseWriter
	R       *http.Request
	Session *auth.Session
	// Post is set by a post resolver before the guards run.
	Post *model.Post

	views  *view.Renderer
	logger *slog.Logger
}

// UserID returns the signed-in user's id, if any.
func (c *Context) UserID() (int64, bool) {
	return c.Session.UserID()
}

func (c *Context) SignedIn() bool {
	_, ok := c.Session.UserID()
	return ok
}

// Redirect answers with 303 See Other, so a POST is always followed by a GET.
func (c *Context) Redirect(path string) {
	http.Redirect(c.W, c.R, path, http.StatusSeeOther)
}

// Render writes page with the given status. Nothing is written if the
// template fails; the error is returned for the caller to handle.
func (c *Context) Render(status int, page view.Page) error {
	var buf bytes.Buffer
	if err := c.views.Render(&buf, page, c.SignedIn()); err != nil {
		return err
	}

	c.W.Header().Set("Content-Type", "text/html; charset=utf-8")
	c.W.WriteHeader(status)
	if _, err := buf.WriteTo(c.W); err != nil {
		// Status line already sent, the client probably went away.
		c.Logger().Debug("writing response body", slog.String("error", err.Error()))
	}
	return nil
}

// RenderError renders the error view for status, e.g. "404 Not Found".
func (c *Context) RenderError(status int) {
	message := fmt.Sprintf("%d %s", status, http.StatusText(status))
	if err := c.Render(status, view.ErrorPage(message)); err != nil {
		c.Logger().Error("failed to render error view",
			slog.Int("status", status),
			slog.String("error", err.Error()),
		)
		http.Error(c.W, message, status)
	}
}

// Logger is the dispatcher's logger tagged with the request id.
func (c *Context) Logger() *slog.Logger {
	if id := chimiddleware.GetReqID(c.R.Context()); id != "" {
		return c.logger.With(slog.String("request_id", id))
	}
	return c.logger
}
