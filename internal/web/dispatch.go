package web

import (
	"log/slog"
	"net/http"

	"github.com/sakif/markdown-blog/internal/auth"
	"github.com/sakif/markdown-blog/internal/view"
)

// Handler is the final stage of a route. Returning an error renders a 500;
// any response meant for the user (forms with errors, redirects) is written
// by the handler itself and returns nil.
type Handler func(c *Context) error

// Route is one entry of the route table.
type Route struct {
	Method  string
	Pattern string
	Resolve Resolver // optional
	Guards  []Guard
	Handler Handler
}

// Dispatcher turns routes into http.HandlerFuncs.
type Dispatcher struct {
	views  *view.Renderer
	logger *slog.Logger
}

func NewDispatcher(views *view.Renderer, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{views: views, logger: logger}
}

// Compose builds the handler for route: resolve, then each guard in order,
// then the route's handler, stopping at the first stage that says Stop.
func (d *Dispatcher) Compose(route Route) http.HandlerFunc {
	guards := append([]Guard(nil), route.Guards...)

	return func(w http.ResponseWriter, r *http.Request) {
		c := d.newContext(w, r)

		if route.Resolve != nil {
			decision, err := route.Resolve(c)
			if err != nil {
				d.fail(c, err)
				return
			}
			if decision == Stop {
				return
			}
		}

		for _, guard := range guards {
			if guard(c) == Stop {
				return
			}
		}

		if err := route.Handler(c); err != nil {
			d.fail(c, err)
		}
	}
}

// NotFound renders the 404 view. It backs unknown paths and unsupported
// methods alike.
func (d *Dispatcher) NotFound() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d.newContext(w, r).RenderError(http.StatusNotFound)
	}
}

func (d *Dispatcher) newContext(w http.ResponseWriter, r *http.Request) *Context {
	sess, ok := auth.SessionFromContext(r.Context())
	if !ok {
		// No session middleware in front: anonymous, never persisted.
		sess = auth.NewSession()
	}
	return &Context{
		W:       w,
		R:       r,
		Session: sess,
		views:   d.views,
		logger:  d.logger,
	}
}

func (d *Dispatcher) fail(c *Context, err error) {
	c.Logger().Error("request failed",
		slog.String("method", c.R.Method),
		slog.String("path", c.R.URL.Path),
		slog.String("error", err.Error()),
	)
	c.RenderError(http.StatusInternalServerError)
}
