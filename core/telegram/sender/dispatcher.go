package sender

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m3rciful/vedbot/core/logger"
	"github.com/m3rciful/vedbot/core/netutil"
)

var (
	// ErrQueueClosed is returned by Enqueue after Close.
	ErrQueueClosed = errors.New("telegram sender: queue closed")
	// ErrQueueFull is returned when the chat's worker queue has no room.
	ErrQueueFull = errors.New("telegram sender: queue full")
)

// Options tunes the dispatcher. Zero values pick the defaults.
type Options struct {
	QueueSize    int // per worker
	Workers      int
	MaxRetries   int
	RetryBackoff time.Duration // grows linearly with the attempt number
	MaxDuration  time.Duration // cap on one job including retries
}

func (o Options) withDefaults() Options {
	if o.QueueSize <= 0 {
		o.QueueSize = 64
	}
	if o.Workers <= 0 {
		o.Workers = 4
	}
	o.MaxRetries = max(o.MaxRetries, 0)
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 2 * time.Second
	}
	if o.MaxDuration <= 0 {
		o.MaxDuration = 12 * time.Second
	}
	return o
}

type job struct {
	ctx      context.Context
	action   string
	endpoint string
	run      func() error
}

func (j job) attrs(extra ...slog.Attr) []slog.Attr {
	attrs := append(make([]slog.Attr, 0, 2+len(extra)), slog.String("action", j.action))
	if j.endpoint != "" {
		attrs = append(attrs, slog.String("endpoint", j.endpoint))
	}
	return append(attrs, extra...)
}

// Dispatcher runs outbound Bot API calls off the handler goroutine. Each chat
// is pinned to one worker, so replies to a chat go out in the order queued.
type Dispatcher struct {
	opts    Options
	workers []chan job
	wg      sync.WaitGroup
	failed  atomic.Uint64

	mu     sync.RWMutex
	closed bool
}

// NewDispatcher starts the workers.
func NewDispatcher(opts Options) *Dispatcher {
	opts = opts.withDefaults()
	d := &Dispatcher{opts: opts, workers: make([]chan job, opts.Workers)}
	for i := range d.workers {
		q := make(chan job, opts.QueueSize)
		d.workers[i] = q
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for j := range q {
				d.process(j)
			}
		}()
	}
	return d
}

// Enqueue hands run to the worker that owns the chat id stored in ctx. run may
// be called more than once when a transient error is retried.
func (d *Dispatcher) Enqueue(ctx context.Context, action, endpoint string, run func() error) error {
	if run == nil {
		return errors.New("telegram sender: nil run function")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrQueueClosed
	}
	select {
	case d.workers[d.shard(logger.ChatIDFrom(ctx))] <- job{ctx: ctx, action: action, endpoint: endpoint, run: run}:
		return nil
	default:
		return ErrQueueFull
	}
}

func (d *Dispatcher) shard(chatID int64) int {
	n := int64(len(d.workers))
	return int((chatID%n + n) % n)
}

// ErrorCount is the number of jobs that failed for good.
func (d *Dispatcher) ErrorCount() uint64 {
	return d.failed.Load()
}

// Close rejects new jobs, lets queued ones finish and waits for the workers.
// Calling it again is a no-op.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, q := range d.workers {
			close(q)
		}
	}
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) process(j job) {
	start := time.Now()
	logger.Debug(j.ctx, "tg.sender", "send.start", j.attrs()...)

	attempts, err := d.deliver(j)
	elapsed := slog.Int64("elapsed_ms", logger.Millis(time.Since(start)))
	if err == nil {
		logger.Debug(j.ctx, "tg.sender", "send.success", j.attrs(slog.Int("attempts", attempts), elapsed)...)
		return
	}

	d.failed.Add(1)
	logger.Error(j.ctx, "tg.sender", "send.fail", j.attrs(
		slog.String("err", sanitizeErrorMessage(err)),
		slog.String("err_kind", classifyError(err)),
		slog.Int("attempts", attempts),
		elapsed,
	)...)
}

// deliver calls j.run until it succeeds, fails permanently, runs out of
// retries or hits MaxDuration.
func (d *Dispatcher) deliver(j job) (int, error) {
	ctx, cancel := context.WithTimeout(j.ctx, d.opts.MaxDuration)
	defer cancel()

	for attempt := 1; ; attempt++ {
		err := j.run()
		if err == nil || attempt > d.opts.MaxRetries || !netutil.ShouldRetry(err) {
			return attempt, err
		}

		delay := d.opts.RetryBackoff * time.Duration(attempt)
		logger.Debug(j.ctx, "tg.sender", "send.retry.backoff",
			j.attrs(slog.Int("attempt", attempt), slog.Duration("delay", delay))...)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return attempt, ctx.Err()
		case <-timer.C:
		}
	}
}
