// Package config loads the server configuration from environment
// variables, with a .env file picked up in development. Every knob has a
// safe default so the server runs with no configuration at all.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every deployment knob for the execution engine.
type Config struct {
	// Port the HTTP server listens on.
	Port int

	// Workers is the size of the dispatcher's worker pool.
	Workers int
	// QueueSize bounds the dispatcher's FIFO request queue; once full,
	// submissions are rejected with a busy status.
	QueueSize int

	// Image is the Docker image sandboxes run in.
	Image string
	// PoolSize is the number of pre-warmed sandbox containers.
	PoolSize int

	// Timeout is the default wall-clock ceiling per execution.
	Timeout time.Duration
	// MaxTimeout bounds per-request timeout_ms overrides.
	MaxTimeout time.Duration
	// CPUTimeLimit is the per-execution CPU budget.
	CPUTimeLimit time.Duration
	// MemoryLimit is the sandbox memory ceiling in bytes.
	MemoryLimit int64
	// CPULimit is the number of CPUs a sandbox may use.
	CPULimit float64
	// PidsLimit caps processes/threads inside a sandbox.
	PidsLimit int64
	// OutputLimit caps captured stdout and stderr, each, in bytes.
	OutputLimit int

	// MaxCodeSize caps the accepted source text in bytes.
	MaxCodeSize int
	// MaxStdinSize caps the accepted stdin payload in bytes.
	MaxStdinSize int
}

// Load reads the configuration from the environment. A .env file in the
// working directory is merged in first if present; real environment
// variables win.
func Load() (Config, error) {
	// Ignore the error: no .env file is the normal production case.
	_ = godotenv.Load()

	cfg := Config{
		Port:         envInt("PORT", 8080),
		Workers:      envInt("WORKER_COUNT", 4),
		QueueSize:    envInt("QUEUE_SIZE", 16),
		Image:        envString("SANDBOX_IMAGE", "python:3.12-alpine"),
		PoolSize:     envInt("POOL_SIZE", 3),
		Timeout:      envDurationMS("EXEC_TIMEOUT_MS", 5000),
		MaxTimeout:   envDurationMS("MAX_TIMEOUT_MS", 10000),
		CPUTimeLimit: envDurationMS("CPU_TIME_LIMIT_MS", 5000),
		MemoryLimit:  envInt64("MEMORY_LIMIT_BYTES", 128*1024*1024),
		CPULimit:     envFloat("CPU_LIMIT", 0.5),
		PidsLimit:    envInt64("PIDS_LIMIT", 16),
		OutputLimit:  envInt("OUTPUT_LIMIT_BYTES", 64*1024),
		MaxCodeSize:  envInt("MAX_CODE_SIZE_BYTES", 64*1024),
		MaxStdinSize: envInt("MAX_STDIN_SIZE_BYTES", 64*1024),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch {
	case c.Port < 1 || c.Port > 65535:
		return fmt.Errorf("PORT must be in 1..65535, got %d", c.Port)
	case c.Workers < 1:
		return fmt.Errorf("WORKER_COUNT must be at least 1, got %d", c.Workers)
	case c.QueueSize < 0:
		return fmt.Errorf("QUEUE_SIZE must not be negative, got %d", c.QueueSize)
	case c.PoolSize < 1:
		return fmt.Errorf("POOL_SIZE must be at least 1, got %d", c.PoolSize)
	case c.Timeout <= 0:
		return fmt.Errorf("EXEC_TIMEOUT_MS must be positive")
	case c.MaxTimeout < c.Timeout:
		return fmt.Errorf("MAX_TIMEOUT_MS (%v) must not be below EXEC_TIMEOUT_MS (%v)", c.MaxTimeout, c.Timeout)
	case c.MemoryLimit < 16*1024*1024:
		return fmt.Errorf("MEMORY_LIMIT_BYTES must be at least 16MiB, got %d", c.MemoryLimit)
	case c.CPULimit <= 0:
		return fmt.Errorf("CPU_LIMIT must be positive")
	case c.OutputLimit < 1024:
		return fmt.Errorf("OUTPUT_LIMIT_BYTES must be at least 1024, got %d", c.OutputLimit)
	case c.MaxCodeSize < 1:
		return fmt.Errorf("MAX_CODE_SIZE_BYTES must be positive")
	case c.MaxStdinSize < 0:
		return fmt.Errorf("MAX_STDIN_SIZE_BYTES must not be negative")
	}
	return nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationMS(key string, fallbackMS int64) time.Duration {
	return time.Duration(envInt64(key, fallbackMS)) * time.Millisecond
}
