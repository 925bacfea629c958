package docker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/rs/xid"
)

// Pool maintains pre-warmed sandbox containers so an execution never pays
// the container startup cost. Containers leave the pool exactly once: the
// runner that takes one owns it and force-removes it when the execution
// finishes. Nothing is ever returned to the pool.
type Pool struct {
	cli        *client.Client
	config     Config
	logger     *slog.Logger
	containers chan string
	done       chan struct{}
	wg         sync.WaitGroup
	startOnce  sync.Once
}

// NewPool initializes a sandbox container pool.
func NewPool(cli *client.Client, cfg Config, logger *slog.Logger) *Pool {
	return &Pool{
		cli:        cli,
		config:     cfg,
		logger:     logger,
		containers: make(chan string, cfg.PoolSize),
		done:       make(chan struct{}),
	}
}

// Start begins filling the pool in the background.
func (p *Pool) Start() {
	p.startOnce.Do(func() {
		p.logger.Info("starting sandbox container pool", slog.Int("poolSize", p.config.PoolSize))
		p.wg.Add(1)
		go p.fill()
	})
}

// Stop shuts down the filler and removes any unclaimed containers.
func (p *Pool) Stop() {
	p.logger.Info("shutting down sandbox container pool")
	close(p.done)
	p.wg.Wait()

	for {
		select {
		case id := <-p.containers:
			p.removeContainer(id)
		default:
			return
		}
	}
}

// Acquire returns a fresh sandbox container ID, blocking until one is
// warm or the context is canceled. Ownership transfers to the caller.
func (p *Pool) Acquire(ctx context.Context) (string, error) {
	select {
	case id := <-p.containers:
		return id, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// fill keeps the pool at capacity until Stop is called.
func (p *Pool) fill() {
	defer p.wg.Done()

	for {
		select {
		case <-p.done:
			return
		default:
			if len(p.containers) < cap(p.containers) {
				id, err := p.createContainer()
				if err != nil {
					p.logger.Error("failed to create sandbox container", slog.String("error", err.Error()))
					time.Sleep(1 * time.Second) // backoff on failure
					continue
				}

				select {
				case p.containers <- id:
				case <-p.done:
					// Shutting down while trying to push
					p.removeContainer(id)
					return
				}
			} else {
				time.Sleep(100 * time.Millisecond)
			}
		}
	}
}

// createContainer starts a hardened idle container: no network, read-only
// rootfs, all Linux capabilities dropped, unprivileged user, memory/CPU/pid
// ceilings from the config. It just sleeps until a runner claims it.
func (p *Pool) createContainer() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pids := p.config.PidsLimit
	hostConfig := &container.HostConfig{
		NetworkMode: "none",
		Resources: container.Resources{
			Memory:    p.config.MemoryLimit,
			NanoCPUs:  int64(p.config.CPULimit * 1e9),
			PidsLimit: &pids,
		},
		AutoRemove:     false,
		ReadonlyRootfs: true,
		CapDrop:        []string{"ALL"},
		SecurityOpt:    []string{"no-new-privileges"},
	}

	name := fmt.Sprintf("sandbox-%s", xid.New().String())
	resp, err := p.cli.ContainerCreate(ctx, &container.Config{
		Image:           p.config.Image,
		Cmd:             []string{"sleep", "infinity"},
		Tty:             false,
		NetworkDisabled: true,
		User:            "nobody",
		Env:             []string{"PYTHONDONTWRITEBYTECODE=1"},
	}, hostConfig, nil, nil, name)
	if err != nil {
		return "", fmt.Errorf("ContainerCreate failed: %w", err)
	}

	if err := p.cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		p.removeContainer(resp.ID)
		return "", fmt.Errorf("ContainerStart failed: %w", err)
	}

	return resp.ID, nil
}

// removeContainer force removes a container by ID.
func (p *Pool) removeContainer(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_ = p.cli.ContainerRemove(ctx, id, container.RemoveOptions{
		Force: true,
	})
}
