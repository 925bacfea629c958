// Package docker runs untrusted code inside disposable Docker containers.
// The container is the isolation boundary: no network, read-only rootfs,
// dropped capabilities, memory/CPU/pid ceilings. The Python harness adds a
// capability allow-list and rlimits inside it, and a Go-side watchdog
// enforces the wall-clock timeout regardless of what the code does.
package docker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"

	"github.com/sakif/code-sandbox/internal/executor"
	"github.com/sakif/code-sandbox/internal/executor/capability"
	"github.com/sakif/code-sandbox/internal/executor/capture"
)

// Executor implements executor.Executor using one pooled container per run.
type Executor struct {
	cli     *client.Client
	config  Config
	logger  *slog.Logger
	pool    *Pool
	harness string
}

// New creates a Docker Executor, pulls the sandbox image, and starts the
// container pool.
func New(cfg Config, logger *slog.Logger) (*Executor, error) {
	if cfg.Capabilities == nil {
		cfg.Capabilities = capability.Default()
	}
	if err := capability.Validate(cfg.Capabilities.Modules()); err != nil {
		return nil, fmt.Errorf("invalid capability allow-list: %w", err)
	}

	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	logger.Info("ensuring sandbox image is available", slog.String("image", cfg.Image))
	reader, err := cli.ImagePull(ctx, cfg.Image, image.PullOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to pull image: %w", err)
	}
	defer reader.Close()
	// Read everything to block until the pull is complete
	io.Copy(io.Discard, reader)
	logger.Info("sandbox image is ready")

	exec := &Executor{
		cli:     cli,
		config:  cfg,
		logger:  logger,
		harness: buildHarness(cfg),
	}

	exec.pool = NewPool(cli, cfg, logger)
	exec.pool.Start()

	return exec, nil
}

// Close shuts down the container pool and the docker client.
func (e *Executor) Close() error {
	e.pool.Stop()
	return e.cli.Close()
}

// timeoutFor resolves the wall-clock ceiling for a request, clamping
// per-request overrides to the configured hard maximum.
func (e *Executor) timeoutFor(req executor.Request) time.Duration {
	if req.TimeoutMS <= 0 {
		return e.config.Timeout
	}
	t := time.Duration(req.TimeoutMS) * time.Millisecond
	if t > e.config.MaxTimeout {
		return e.config.MaxTimeout
	}
	return t
}

// Execute runs the submitted code in a fresh sandbox container. The
// container is force-removed on every exit path, including timeout: removal
// kills the exec'd process, so a hung submission can never outlive its
// request. Outcomes of the code itself (faults, violations, exhausted
// budgets) come back as a Result; a non-nil error means the engine could
// not run it at all.
func (e *Executor) Execute(ctx context.Context, req executor.Request) (*executor.Result, error) {
	start := time.Now()
	timeout := e.timeoutFor(req)

	containerID, err := e.pool.Acquire(ctx)
	if err != nil {
		if ctx.Err() != nil {
			// Caller gave up while we were waiting for a sandbox.
			return timeoutResult(timeout, start), nil
		}
		return nil, fmt.Errorf("failed to acquire sandbox container: %w", err)
	}

	// The sandbox is single-use. Removing it tears down the namespace and
	// everything the submission created, on every exit path.
	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err := e.cli.ContainerRemove(cleanupCtx, containerID, container.RemoveOptions{
			Force: true,
		})
		if err != nil {
			e.logger.Error("failed to remove sandbox container", slog.String("id", containerID), slog.String("error", err.Error()))
		}
	}()

	executeCtx, executeCancel := context.WithTimeout(ctx, timeout)
	defer executeCancel()

	// The harness is the -c script; the submission rides as a separate
	// argv element so it can never alter the harness.
	execConfig := container.ExecOptions{
		AttachStdin:  true,
		AttachStdout: true,
		AttachStderr: true,
		Cmd:          []string{"python3", "-u", "-B", "-I", "-c", e.harness, req.Code},
	}

	execResp, err := e.cli.ContainerExecCreate(executeCtx, containerID, execConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create exec: %w", err)
	}

	attachResp, err := e.cli.ContainerExecAttach(executeCtx, execResp.ID, container.ExecStartOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to attach to exec: %w", err)
	}
	defer attachResp.Close()

	// Feed stdin and signal EOF so input() at exhaustion raises EOFError
	// instead of blocking forever.
	go func() {
		if req.Stdin != "" {
			_, _ = attachResp.Conn.Write([]byte(req.Stdin))
		}
		_ = attachResp.CloseWrite()
	}()

	stdout := capture.NewBuffer(e.config.OutputLimit)
	stderr := capture.NewBuffer(e.config.OutputLimit)

	done := make(chan struct{})
	go func() {
		// Demultiplex stdout from stderr into the bounded buffers. The
		// buffers never error, so this drains the stream even after the
		// output cap is hit.
		_, _ = stdcopy.StdCopy(stdout, stderr, attachResp.Reader)
		close(done)
	}()

	select {
	case <-done:
	case <-executeCtx.Done():
		// Watchdog fired (or the caller canceled). The deferred removal
		// kills the process; classify what we captured so far.
		return classify(0, true, timeout, stdout, stderr, time.Since(start)), nil
	}

	inspectCtx, inspectCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer inspectCancel()

	// Without the exit code the run cannot be classified; surface the
	// engine failure instead of guessing.
	inspectResp, err := e.cli.ContainerExecInspect(inspectCtx, execResp.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect exec result: %w", err)
	}

	return classify(inspectResp.ExitCode, false, timeout, stdout, stderr, time.Since(start)), nil
}

func timeoutResult(timeout time.Duration, start time.Time) *executor.Result {
	return &executor.Result{
		Status:     executor.StatusTimeout,
		DurationMS: time.Since(start).Milliseconds(),
		Message:    fmt.Sprintf("execution exceeded %dms", timeout.Milliseconds()),
	}
}
