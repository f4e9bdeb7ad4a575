package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sakif/markdown-blog/internal/apperror"
	"github.com/sakif/markdown-blog/internal/view"
	"github.com/sakif/markdown-blog/internal/web"
)

// PostHandler serves the post list, the post page and the post forms.
type PostHandler struct {
	posts    Posts
	accounts Accounts
	content  ContentRenderer
	logger   *slog.Logger
}

func NewPostHandler(posts Posts, accounts Accounts, content ContentRenderer, logger *slog.Logger) *PostHandler {
	return &PostHandler{
		posts:    posts,
		accounts: accounts,
		content:  content,
		logger:   logger,
	}
}

// Index handles GET /: every post, newest first, and the visitor's username
// when signed in.
//
// A session naming a user that no longer exists is cleared and the page is
// shown as to an anonymous visitor.
func (h *PostHandler) Index(c *web.Context) error {
	data := view.IndexData{}

	if uid, ok := c.UserID(); ok {
		user, err := h.accounts.UserByID(c.R.Context(), uid)
		switch {
		case err == nil:
			data.Username = user.Username
		case errors.Is(err, apperror.ErrNotFound):
			c.Logger().Warn("clearing session of unknown user", slog.Int64("user_id", uid))
			c.Session.Clear()
		default:
			return err
		}
	}

	posts, err := h.posts.List(c.R.Context())
	if err != nil {
		return err
	}
	data.Posts = posts

	return c.Render(http.StatusOK, view.Index.With(data))
}

// CreateForm handles GET /posts/create/.
func (h *PostHandler) CreateForm(c *web.Context) error {
	return c.Render(http.StatusOK, view.PostForm.With(view.PostFormData{}))
}

// Create handles POST /posts/create/.
func (h *PostHandler) Create(c *web.Context) error {
	uid, _ := c.UserID()
	title := c.R.PostFormValue("title")
	content := c.R.PostFormValue("content")

	post, err := h.posts.Create(c.R.Context(), uid, title, content)
	if err != nil {
		msgs, ok := formErrors(err)
		if !ok {
			return err
		}
		return c.Render(http.StatusBadRequest, view.PostForm.With(view.PostFormData{
			Errors:  msgs,
			Title:   title,
			Content: content,
		}))
	}

	c.Redirect(postPath(post.ID))
	return nil
}

// EditForm handles GET /posts/{id}/edit/.
func (h *PostHandler) EditForm(c *web.Context) error {
	return c.Render(http.StatusOK, view.PostForm.With(view.PostFormData{
		PostID:  c.Post.ID,
		Title:   c.Post.Title,
		Content: c.Post.Content,
	}))
}

// Edit handles POST /posts/{id}/edit/.
func (h *PostHandler) Edit(c *web.Context) error {
	title := c.R.PostFormValue("title")
	content := c.R.PostFormValue("content")

	if err := h.posts.Update(c.R.Context(), c.Post, title, content); err != nil {
		msgs, ok := formErrors(err)
		if !ok {
			return err
		}
		return c.Render(http.StatusBadRequest, view.PostForm.With(view.PostFormData{
			Errors:  msgs,
			PostID:  c.Post.ID,
			Title:   title,
			Content: content,
		}))
	}

	c.Redirect(postPath(c.Post.ID))
	return nil
}

// Delete handles POST /posts/{id}/delete/.
func (h *PostHandler) Delete(c *web.Context) error {
	if err := h.posts.Delete(c.R.Context(), c.Post.ID); err != nil {
		return err
	}
	c.Redirect("/")
	return nil
}

// View handles GET /posts/{id}/. The stored markdown is rendered and
// sanitized on every view.
func (h *PostHandler) View(c *web.Context) error {
	author, err := h.accounts.UserByID(c.R.Context(), c.Post.AuthorID)
	if err != nil {
		return fmt.Errorf("loading author of post %d: %w", c.Post.ID, err)
	}

	body, err := h.content.Render(c.Post.Content)
	if err != nil {
		return fmt.Errorf("rendering post %d: %w", c.Post.ID, err)
	}

	uid, signedIn := c.UserID()
	return c.Render(http.StatusOK, view.PostView.With(view.PostData{
		ID:      c.Post.ID,
		Title:   c.Post.Title,
		Author:  author.Username,
		Date:    c.Post.CreatedAt,
		Content: body,
		CanEdit: signedIn && uid == c.Post.AuthorID,
	}))
}

func postPath(id int64) string {
	return fmt.Sprintf("/posts/%d/", id)
}
