package qnn

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/theapemachine/errnie"
)

var ErrPoolClosed = errors.New("worker pool closed")

/*
Q is a fixed-size worker pool. Jobs are handed to whichever worker is free;
results come back through per-job channels, so the caller decides the order
it collects them in.
*/
type Q struct {
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	workers chan chan Job
	jobs    chan Job
	space   *space
	metrics *Metrics
	config  *PoolConfig

	// mu orders Schedule against the manager shutting down, so no job can
	// land in jobs after it has been drained.
	mu      sync.RWMutex
	stopped bool

	closeOnce sync.Once
}

// NewQ starts size workers that live until ctx ends or Close is called.
func NewQ(ctx context.Context, size int, config *PoolConfig) *Q {
	if size < 1 {
		size = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	q := &Q{
		ctx:     ctx,
		cancel:  cancel,
		jobs:    make(chan Job, size*10),
		workers: make(chan chan Job, size),
		space:   newSpace(),
		metrics: NewMetrics(),
		config:  config,
	}

	for i := 0; i < size; i++ {
		q.startWorker()
	}

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		q.manage()
	}()

	errnie.Info("NewQ - workers %d", size)
	return q
}

func (q *Q) manage() {
	defer q.stop()

	for {
		select {
		case <-q.ctx.Done():
			return
		case job := <-q.jobs:
			select {
			case <-q.ctx.Done():
				q.space.Store(job.ID, nil, ErrPoolClosed)
				return
			case workerChan := <-q.workers:
				select {
				case workerChan <- job:
				case <-q.ctx.Done():
					q.space.Store(job.ID, nil, ErrPoolClosed)
					return
				}
			}
		}
	}
}

// stop fails every job still queued once the manager quits. Jobs already
// handed to a worker finish and store their own result.
func (q *Q) stop() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.stopped = true
	for {
		select {
		case job := <-q.jobs:
			q.space.Store(job.ID, nil, ErrPoolClosed)
		default:
			return
		}
	}
}

// Schedule queues fn under id and returns the channel its result arrives on.
// Ids must be unique among jobs that are in flight at the same time.
func (q *Q) Schedule(id string, fn func() (any, error)) chan Result {
	result := q.space.Await(id)

	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.stopped || q.ctx.Err() != nil {
		q.space.Store(id, nil, ErrPoolClosed)
		return result
	}

	job := Job{
		ID:        id,
		Fn:        fn,
		StartTime: time.Now(),
	}

	timer := time.NewTimer(q.getSchedulingTimeout())
	defer timer.Stop()

	select {
	case q.jobs <- job:
	case <-q.ctx.Done():
		q.space.Store(id, nil, ErrPoolClosed)
	case <-timer.C:
		q.metrics.recordSchedulingFailure()
		q.space.Store(id, nil, fmt.Errorf("job %s scheduling timeout after %v", id, q.getSchedulingTimeout()))
	}

	return result
}

func (q *Q) Metrics() MetricsSnapshot {
	return q.metrics.Snapshot()
}

func (q *Q) startWorker() {
	worker := &Worker{
		pool: q,
		jobs: make(chan Job),
	}

	q.metrics.mu.Lock()
	q.metrics.WorkerCount++
	q.metrics.mu.Unlock()

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		worker.run()
	}()
}

func (q *Q) getSchedulingTimeout() time.Duration {
	if q.config != nil && q.config.SchedulingTimeout > 0 {
		return q.config.SchedulingTimeout
	}
	return 5 * time.Second
}

// Close stops the workers and fails any job that never got to run.
func (q *Q) Close() {
	if q == nil {
		return
	}

	q.closeOnce.Do(func() {
		q.cancel()
		q.wg.Wait()
		q.space.Drain(ErrPoolClosed)

		snapshot := q.metrics.Snapshot()
		errnie.Info("Q closed - jobs %d, mean latency %v", snapshot.JobCount, snapshot.AverageJobLatency)
	})
}
