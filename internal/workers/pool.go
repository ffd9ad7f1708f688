// Package workers provides a bounded worker pool for background analytics
// recomputation. Tasks submitted under the same key coalesce: a recompute
// already waiting in the queue absorbs later submissions for the same user.
package workers

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Task is a unit of background work
type Task func() error

// PoolConfig configures the worker pool
type PoolConfig struct {
	Name            string
	NumWorkers      int
	QueueSize       int
	ShutdownTimeout time.Duration
}

// DefaultPoolConfig returns sensible defaults for analytics recomputation
func DefaultPoolConfig(name string) *PoolConfig {
	return &PoolConfig{
		Name:            name,
		NumWorkers:      4,
		QueueSize:       64,
		ShutdownTimeout: 10 * time.Second,
	}
}

// PoolStats contains pool counters
type PoolStats struct {
	Submitted int64 `json:"submitted"`
	Coalesced int64 `json:"coalesced"`
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
	Recovered int64 `json:"recovered"`
}

type queuedTask struct {
	key  string
	task Task
}

// Pool manages a fixed set of worker goroutines over a bounded queue
type Pool struct {
	logger *zap.Logger
	config *PoolConfig

	tasks chan queuedTask
	wg    sync.WaitGroup

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc

	mu     sync.Mutex
	queued map[string]struct{}

	submitted atomic.Int64
	coalesced atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
	recovered atomic.Int64
}

// NewPool creates a new worker pool
func NewPool(logger *zap.Logger, config *PoolConfig) *Pool {
	if config == nil {
		config = DefaultPoolConfig("default")
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		logger: logger,
		config: config,
		tasks:  make(chan queuedTask, config.QueueSize),
		ctx:    ctx,
		cancel: cancel,
		queued: make(map[string]struct{}),
	}
}

// Start launches the workers
func (p *Pool) Start() {
	if p.running.Swap(true) {
		return
	}

	p.logger.Info("Starting worker pool",
		zap.String("name", p.config.Name),
		zap.Int("workers", p.config.NumWorkers),
		zap.Int("queueSize", p.config.QueueSize),
	)

	for i := 0; i < p.config.NumWorkers; i++ {
		p.wg.Add(1)
		go p.run(i)
	}
}

func (p *Pool) run(id int) {
	defer p.wg.Done()

	logger := p.logger.With(zap.Int("workerId", id))
	for {
		select {
		case <-p.ctx.Done():
			return
		case qt, ok := <-p.tasks:
			if !ok {
				return
			}
			p.execute(logger, qt)
		}
	}
}

func (p *Pool) execute(logger *zap.Logger, qt queuedTask) {
	if qt.key != "" {
		p.mu.Lock()
		delete(p.queued, qt.key)
		p.mu.Unlock()
	}

	defer func() {
		if r := recover(); r != nil {
			p.recovered.Add(1)
			p.failed.Add(1)
			logger.Error("Worker recovered from panic", zap.Any("panic", r))
		}
	}()

	if err := qt.task(); err != nil {
		p.failed.Add(1)
		logger.Warn("Background task failed",
			zap.String("key", qt.key), zap.Error(err))
		return
	}
	p.completed.Add(1)
}

// Submit queues a task. Returns false when the pool is stopped or the queue
// is full.
func (p *Pool) Submit(task Task) bool {
	return p.enqueue(queuedTask{task: task})
}

// SubmitKeyed queues a task under a key. A task already queued under the same
// key absorbs the submission.
func (p *Pool) SubmitKeyed(key string, task Task) bool {
	if !p.running.Load() {
		return false
	}

	p.mu.Lock()
	if _, pending := p.queued[key]; pending {
		p.mu.Unlock()
		p.coalesced.Add(1)
		return true
	}
	p.queued[key] = struct{}{}
	p.mu.Unlock()

	if !p.enqueue(queuedTask{key: key, task: task}) {
		p.mu.Lock()
		delete(p.queued, key)
		p.mu.Unlock()
		return false
	}
	return true
}

func (p *Pool) enqueue(qt queuedTask) bool {
	if !p.running.Load() {
		return false
	}

	select {
	case p.tasks <- qt:
		p.submitted.Add(1)
		return true
	default:
		p.logger.Warn("Worker pool queue full, dropping task",
			zap.String("name", p.config.Name))
		return false
	}
}

// Stop drains in-flight work and shuts the pool down
func (p *Pool) Stop() error {
	if !p.running.Swap(false) {
		return nil
	}

	p.cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("Worker pool stopped", zap.String("name", p.config.Name))
		return nil
	case <-time.After(p.config.ShutdownTimeout):
		p.logger.Warn("Worker pool shutdown timed out",
			zap.String("name", p.config.Name),
			zap.Duration("timeout", p.config.ShutdownTimeout),
		)
		return ErrShutdownTimeout
	}
}

// QueueLength returns the number of queued tasks
func (p *Pool) QueueLength() int {
	return len(p.tasks)
}

// IsRunning reports whether the pool accepts work
func (p *Pool) IsRunning() bool {
	return p.running.Load()
}

// Stats returns current counters
func (p *Pool) Stats() PoolStats {
	return PoolStats{
		Submitted: p.submitted.Load(),
		Coalesced: p.coalesced.Load(),
		Completed: p.completed.Load(),
		Failed:    p.failed.Load(),
		Recovered: p.recovered.Load(),
	}
}

// ErrShutdownTimeout is returned when workers fail to drain in time
var ErrShutdownTimeout = &PoolError{Message: "shutdown timed out"}

// PoolError represents a pool error
type PoolError struct {
	Message string
}

func (e *PoolError) Error() string { return e.Message }
