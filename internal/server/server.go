// Package server wires the blog together and runs the HTTP server.
//
// It is the composition root: the store, services, views, session codec and
// handlers are all created in New, and the route table in routes decides
// which guards protect which handler.
//
// DEPENDENCY CHAIN:
//
//	config → store (sqlite | postgres) → services → handlers → routes
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/markdown-blog/internal/auth"
	"github.com/sakif/markdown-blog/internal/config"
	"github.com/sakif/markdown-blog/internal/handler"
	"github.com/sakif/markdown-blog/internal/markdown"
	"github.com/sakif/markdown-blog/internal/middleware"
	"github.com/sakif/markdown-blog/internal/repository"
	"github.com/sakif/markdown-blog/internal/repository/postgres"
	"github.com/sakif/markdown-blog/internal/repository/sqlite"
	"github.com/sakif/markdown-blog/internal/service"
	"github.com/sakif/markdown-blog/internal/view"
	"github.com/sakif/markdown-blog/internal/web"
)

const shutdownTimeout = 30 * time.Second

// Server owns the router and the store. Close (or Start returning) releases
// the store.
type Server struct {
	router *chi.Mux
	cfg    config.Config
	logger *slog.Logger
	store  repository.Store
}

// New opens the store and builds the router. Templates are parsed and the
// schema is migrated here, so a Server that was created successfully is
// ready to serve.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Server, error) {
	generated, err := cfg.EnsureSessionSecret()
	if err != nil {
		return nil, err
	}
	if generated {
		logger.Warn("no session.secret configured, using a random one; sessions will not survive a restart")
	}

	codec, err := auth.NewSessionCodec(cfg.Session.Secret, cfg.Session.MaxAge)
	if err != nil {
		return nil, fmt.Errorf("creating session codec: %w", err)
	}

	views, err := view.New()
	if err != nil {
		return nil, fmt.Errorf("loading views: %w", err)
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		logger: logger,
		store:  store,
	}

	accounts := service.NewAuthService(store, auth.NewPasswordHasher(), logger)
	posts := service.NewPostService(store, logger)

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(codec.Middleware(auth.CookieOptions{Secure: cfg.Session.Secure}, logger))

	d := web.NewDispatcher(views, logger)
	for _, route := range routes(
		handler.NewAuthHandler(accounts, logger),
		handler.NewPostHandler(posts, accounts, markdown.New(), logger),
		web.PostResolver(posts),
	) {
		s.router.Method(route.Method, route.Pattern, d.Compose(route))
	}
	s.router.NotFound(d.NotFound())
	s.router.MethodNotAllowed(d.NotFound())

	return s, nil
}

// routes is the blog's route table. Trailing slashes are significant:
// /login and /login/ are different paths and only the latter exists.
func routes(authH *handler.AuthHandler, postH *handler.PostHandler, post web.Resolver) []web.Route {
	const postID = "/posts/{" + web.PostParam + ":[0-9]+}"

	return []web.Route{
		{Method: http.MethodGet, Pattern: "/", Handler: postH.Index},

		{Method: http.MethodGet, Pattern: "/signup/", Guards: []web.Guard{web.RequireUnauth}, Handler: authH.SignupForm},
		{Method: http.MethodPost, Pattern: "/signup/", Guards: []web.Guard{web.RequireUnauth}, Handler: authH.Signup},
		{Method: http.MethodGet, Pattern: "/login/", Guards: []web.Guard{web.RequireUnauth}, Handler: authH.LoginForm},
		{Method: http.MethodPost, Pattern: "/login/", Guards: []web.Guard{web.RequireUnauth}, Handler: authH.Login},
		{Method: http.MethodPost, Pattern: "/logout/", Guards: []web.Guard{web.RequireAuth}, Handler: authH.Logout},

		{Method: http.MethodGet, Pattern: "/posts/create/", Guards: []web.Guard{web.RequireAuth}, Handler: postH.CreateForm},
		{Method: http.MethodPost, Pattern: "/posts/create/", Guards: []web.Guard{web.RequireAuth}, Handler: postH.Create},

		{Method: http.MethodGet, Pattern: postID + "/edit/", Resolve: post, Guards: []web.Guard{web.RequireAuth, web.RequireOwn}, Handler: postH.EditForm},
		{Method: http.MethodPost, Pattern: postID + "/edit/", Resolve: post, Guards: []web.Guard{web.RequireAuth, web.RequireOwn}, Handler: postH.Edit},
		{Method: http.MethodPost, Pattern: postID + "/delete/", Resolve: post, Guards: []web.Guard{web.RequireAuth, web.RequireOwn}, Handler: postH.Delete},
		{Method: http.MethodGet, Pattern: postID + "/", Resolve: post, Handler: postH.View},
	}
}

func openStore(ctx context.Context, cfg config.Config) (repository.Store, error) {
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		if dir := filepath.Dir(cfg.Database.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating database directory: %w", err)
			}
		}
		db, err := sqlite.New(ctx, cfg.Database.Path)
		if err != nil {
			return nil, err
		}
		return db, nil
	case config.DriverPostgres:
		db, err := postgres.New(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

// Handler exposes the router, e.g. for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Close() error {
	return s.store.Close()
}

// Start serves until SIGINT or SIGTERM, then shuts down gracefully:
// stop accepting connections, give in-flight requests up to 30 seconds,
// close the store.
func (s *Server) Start() error {
	defer s.store.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.cfg.Server.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.cfg.Server.Port)),
			slog.String("database", s.cfg.Database.Driver),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
