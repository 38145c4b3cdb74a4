package bot

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/go-monolith/mono/pkg/types"
)

// ErrPoolStopped is returned when submitting to a pool that is not running.
var ErrPoolStopped = errors.New("worker pool is not running")

// HandlerFunc processes one event.
type HandlerFunc func(ctx context.Context, ev Event) error

// PoolConfig holds worker pool configuration.
type PoolConfig struct {
	NumWorkers     int
	QueueSize      int
	ProcessTimeout time.Duration
}

// DefaultPoolConfig returns the default pool configuration.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		NumWorkers:     5,
		QueueSize:      64,
		ProcessTimeout: time.Minute,
	}
}

// Pool runs events on a fixed set of workers. Events of one user always go
// to the same worker, so they are handled in arrival order while different
// users proceed concurrently.
type Pool struct {
	config  PoolConfig
	handler HandlerFunc
	logger  types.Logger
	queues  []chan Event
	wg      sync.WaitGroup
	cancel  context.CancelFunc
	mu      sync.RWMutex
	running bool
}

// NewPool creates a new keyed worker pool.
func NewPool(cfg PoolConfig, handler HandlerFunc, logger types.Logger) *Pool {
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultPoolConfig().QueueSize
	}
	return &Pool{
		config:  cfg,
		handler: handler,
		logger:  logger,
	}
}

// Start starts the workers.
func (p *Pool) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return fmt.Errorf("pool is already running")
	}

	workerCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.queues = make([]chan Event, p.config.NumWorkers)

	for i := range p.queues {
		queue := make(chan Event, p.config.QueueSize)
		p.queues[i] = queue

		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			p.run(workerCtx, id, queue)
		}(i + 1)
	}

	p.running = true
	p.logger.Info("Worker pool started", "workers", p.config.NumWorkers)
	return nil
}

// Submit queues ev on the worker owning ev.UserID. It blocks while that
// worker's queue is full.
func (p *Pool) Submit(ctx context.Context, ev Event) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.running {
		return ErrPoolStopped
	}

	queue := p.queues[p.shard(ev.UserID)]
	select {
	case queue <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop closes the queues and waits for queued events to drain.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = false
	for _, queue := range p.queues {
		close(queue)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("All workers stopped gracefully")
	case <-ctx.Done():
		p.cancel()
		p.logger.Warn("Timeout waiting for workers to stop")
		return ctx.Err()
	}

	p.cancel()
	return nil
}

// IsRunning returns true if the pool is running.
func (p *Pool) IsRunning() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.running
}

func (p *Pool) shard(userID int64) int {
	return int(uint64(userID) % uint64(len(p.queues)))
}

func (p *Pool) run(ctx context.Context, id int, queue <-chan Event) {
	log := p.logger.With("worker", id)
	log.Debug("Worker started")

	for ev := range queue {
		p.process(ctx, log, ev)
	}
	log.Debug("Queue closed, worker stopping")
}

func (p *Pool) process(ctx context.Context, log types.Logger, ev Event) {
	log = log.With("trace_id", ev.TraceID, "user_id", ev.UserID)
	defer func() {
		if r := recover(); r != nil {
			log.Error("Panic while handling event", "panic", r, "stack", string(debug.Stack()))
		}
	}()

	processCtx := ctx
	if p.config.ProcessTimeout > 0 {
		var cancel context.CancelFunc
		processCtx, cancel = context.WithTimeout(ctx, p.config.ProcessTimeout)
		defer cancel()
	}

	start := time.Now()
	if err := p.handler(processCtx, ev); err != nil {
		log.WithError(err).Error("Failed to handle event", "duration", time.Since(start))
		return
	}
	log.Debug("Event handled", "duration", time.Since(start))
}
