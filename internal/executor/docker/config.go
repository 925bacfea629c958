package docker

import (
	"time"

	"github.com/sakif/code-sandbox/internal/executor/capability"
)

// Config holds the sandbox configuration for Docker-backed execution.
// The container-level limits (memory, CPU shares, pids, no network) are the
// hard isolation boundary; the rlimits applied inside the harness are
// defense in depth on top of it.
type Config struct {
	// Image is the Docker image sandboxes run in.
	Image string
	// MemoryLimit is the container memory ceiling in bytes. The harness
	// additionally sets RLIMIT_AS slightly below it so well-behaved
	// allocations fail with MemoryError before the OOM killer fires.
	MemoryLimit int64
	// CPULimit is the number of CPUs the container may use.
	CPULimit float64
	// CPUTimeLimit is the per-execution CPU time budget.
	CPUTimeLimit time.Duration
	// PidsLimit caps how many processes/threads the sandbox may spawn.
	PidsLimit int64
	// Timeout is the default wall-clock ceiling per execution.
	Timeout time.Duration
	// MaxTimeout bounds per-request timeout overrides.
	MaxTimeout time.Duration
	// OutputLimit caps captured stdout and stderr, each, in bytes.
	OutputLimit int
	// PoolSize is the number of pre-warmed containers to maintain.
	PoolSize int
	// Capabilities is the allow-list exposed to the sandbox namespace.
	Capabilities *capability.Filter
}

// DefaultConfig provides sensible defaults for a Python sandbox.
func DefaultConfig() Config {
	return Config{
		Image:        "python:3.12-alpine",
		MemoryLimit:  128 * 1024 * 1024,
		CPULimit:     0.5,
		CPUTimeLimit: 5 * time.Second,
		PidsLimit:    16,
		Timeout:      5 * time.Second,
		MaxTimeout:   10 * time.Second,
		OutputLimit:  64 * 1024,
		PoolSize:     3,
		Capabilities: capability.Default(),
	}
}
