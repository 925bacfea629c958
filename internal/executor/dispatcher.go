package executor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/code-sandbox/internal/apperror"
	"github.com/sakif/code-sandbox/internal/metrics"
)

// Submitter is the engine facade the transport layer calls. The returned
// error is only ever a caller-facing rejection (queue full); every outcome
// of accepted code comes back as a Result.
type Submitter interface {
	Submit(ctx context.Context, req Request) (*Result, error)
}

// DispatcherConfig sizes the worker pool and its request queue. Both
// bounds are finite: saturation produces backpressure (Busy), never
// unbounded memory growth.
type DispatcherConfig struct {
	// Workers is the number of concurrent executions.
	Workers int
	// QueueSize bounds how many accepted requests may wait for a worker.
	QueueSize int
}

// DefaultDispatcherConfig returns a small pool suitable for one host.
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		Workers:   4,
		QueueSize: 16,
	}
}

type task struct {
	id     string
	ctx    context.Context
	req    Request
	result chan *Result
}

// Dispatcher owns a fixed pool of workers, each running one request
// end-to-end against the wrapped Executor. Requests beyond the pool wait
// in a bounded FIFO queue; when the queue is also full, Submit fails fast
// with apperror.ErrBusy.
type Dispatcher struct {
	exec     Executor
	config   DispatcherConfig
	logger   *slog.Logger
	queue    chan *task
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewDispatcher starts the worker pool immediately.
func NewDispatcher(exec Executor, cfg DispatcherConfig, logger *slog.Logger) *Dispatcher {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.QueueSize < 0 {
		cfg.QueueSize = 0
	}

	d := &Dispatcher{
		exec:   exec,
		config: cfg,
		logger: logger,
		queue:  make(chan *task, cfg.QueueSize),
		done:   make(chan struct{}),
	}

	d.logger.Info("starting execution dispatcher",
		slog.Int("workers", cfg.Workers),
		slog.Int("queueSize", cfg.QueueSize),
	)
	for i := 0; i < cfg.Workers; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}

	return d
}

// Stop shuts the pool down. In-flight executions finish; tasks still
// queued are answered with an internal error result so no caller hangs.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		d.logger.Info("stopping execution dispatcher")
		close(d.done)
		d.wg.Wait()

		for {
			select {
			case t := <-d.queue:
				metrics.QueueDepth.Dec()
				t.result <- InternalError(0)
			default:
				return
			}
		}
	})
}

// Submit enqueues a request and blocks until its result is ready. Returns
// apperror.ErrBusy when the queue is full. Caller-driven cancellation
// while queued or running yields a Timeout result, never a hung call.
func (d *Dispatcher) Submit(ctx context.Context, req Request) (*Result, error) {
	t := &task{
		id:     xid.New().String(),
		ctx:    ctx,
		req:    req,
		result: make(chan *Result, 1),
	}

	select {
	case d.queue <- t:
		metrics.QueueDepth.Inc()
	default:
		metrics.RejectedTotal.Inc()
		return nil, apperror.Busy(d.config.QueueSize)
	}

	select {
	case res := <-t.result:
		return res, nil
	case <-ctx.Done():
		// The worker will notice the dead context and skip or abort the
		// run; the buffered result channel lets it finish without us.
		return canceledResult(), nil
	}
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()

	for {
		select {
		case <-d.done:
			return
		case t := <-d.queue:
			metrics.QueueDepth.Dec()

			if t.ctx.Err() != nil {
				// Caller gave up while the task sat in the queue.
				t.result <- canceledResult()
				continue
			}

			metrics.BusyWorkers.Inc()
			start := time.Now()
			res := d.run(t)
			metrics.BusyWorkers.Dec()

			metrics.ExecutionsTotal.WithLabelValues(string(res.Status)).Inc()
			metrics.ExecutionDuration.Observe(time.Since(start).Seconds())

			if res.Status == StatusInternalError {
				d.logger.Error("execution failed internally",
					slog.String("execution", t.id),
					slog.Int("worker", id),
				)
			} else {
				d.logger.Debug("execution finished",
					slog.String("execution", t.id),
					slog.Int("worker", id),
					slog.String("status", string(res.Status)),
					slog.Int64("durationMs", res.DurationMS),
				)
			}

			t.result <- res
		}
	}
}

// run executes one task, converting every engine-side failure mode
// (returned errors and panics alike) into a structured Result. Nothing a
// submission does may take the worker down.
func (d *Dispatcher) run(t *task) (res *Result) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("executor panic recovered",
				slog.String("execution", t.id),
				slog.Any("panic", r),
			)
			res = InternalError(time.Since(start))
		}
	}()

	res, err := d.exec.Execute(t.ctx, t.req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return canceledResult()
		}
		d.logger.Error("executor error",
			slog.String("execution", t.id),
			slog.String("error", err.Error()),
		)
		return InternalError(time.Since(start))
	}
	return res
}

func canceledResult() *Result {
	return &Result{
		Status:  StatusTimeout,
		Message: "request canceled before execution completed",
	}
}
