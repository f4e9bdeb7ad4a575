package web

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/markdown-blog/internal/apperror"
	"github.com/sakif/markdown-blog/internal/model"
)

// Resolver loads the entity a route's path refers to. Like a Guard it
// returns Stop after writing a response; a non-nil error is a server
// failure and is rendered as a 500 by the dispatcher.
type Resolver func(c *Context) (Decision, error)

// PostParam is the path parameter holding a post id.
const PostParam = "id"

// PostFinder is what PostResolver needs from the post service.
type PostFinder interface {
	Get(ctx context.Context, id int64) (*model.Post, error)
}

// PostResolver loads the post named by {id} into c.Post.
// Ids that don't parse, overflow or don't exist are 404s.
func PostResolver(posts PostFinder) Resolver {
	return func(c *Context) (Decision, error) {
		id, err := strconv.ParseInt(chi.URLParam(c.R, PostParam), 10, 64)
		if err != nil || id <= 0 {
			c.RenderError(http.StatusNotFound)
			return Stop, nil
		}

		post, err := posts.Get(c.R.Context(), id)
		if err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				c.RenderError(http.StatusNotFound)
				return Stop, nil
			}
			return Stop, err
		}

		c.Post = post
		return Continue, nil
	}
}
