// Package main is the entry point for the code sandbox server: load
// configuration, build the Docker executor, start the HTTP server.
package main

import (
	"log/slog"
	"os"

	"github.com/sakif/code-sandbox/internal/config"
	"github.com/sakif/code-sandbox/internal/executor/docker"
	"github.com/sakif/code-sandbox/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	exec, err := docker.New(docker.Config{
		Image:        cfg.Image,
		MemoryLimit:  cfg.MemoryLimit,
		CPULimit:     cfg.CPULimit,
		CPUTimeLimit: cfg.CPUTimeLimit,
		PidsLimit:    cfg.PidsLimit,
		Timeout:      cfg.Timeout,
		MaxTimeout:   cfg.MaxTimeout,
		OutputLimit:  cfg.OutputLimit,
		PoolSize:     cfg.PoolSize,
	}, logger)
	if err != nil {
		logger.Error("failed to initialize docker executor", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer exec.Close()

	srv := server.New(cfg, logger, exec)

	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM)
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
