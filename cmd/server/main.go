// Package main is the entry point for the blog server.
//
// main stays minimal: load configuration, build the logger, create the
// server, start it. Everything else lives under internal/.
//
// Configuration comes from BLOG_* environment variables, an optional .env
// file and an optional config file (see internal/config):
//
//	BLOG_SERVER_PORT=3000
//	BLOG_DATABASE_DRIVER=sqlite BLOG_DATABASE_PATH=data/blog.db
//	BLOG_DATABASE_DRIVER=postgres BLOG_DATABASE_DSN=postgres://...
//	BLOG_SESSION_SECRET=$(openssl rand -hex 32)
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/sakif/markdown-blog/internal/config"
	"github.com/sakif/markdown-blog/internal/server"
)

func main() {
	configFile := flag.String("config", "", "path to a config file (yaml, json or toml)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Validate has already checked the level.
	level, _ := cfg.LogLevel()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	srv, err := server.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until the server is shut down (Ctrl+C or SIGTERM).
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
