package qnn

import (
	"fmt"
)

// Worker pulls jobs from the pool one at a time.
type Worker struct {
	pool *Q
	jobs chan Job
}

func (w *Worker) run() {
	for {
		// Offer this worker's channel to the manager.
		select {
		case <-w.pool.ctx.Done():
			return
		case w.pool.workers <- w.jobs:
		}

		select {
		case <-w.pool.ctx.Done():
			return
		case job, ok := <-w.jobs:
			if !ok {
				return
			}
			result, err := w.processJob(job)
			w.pool.space.Store(job.ID, result, err)
		}
	}
}

// processJob runs the job to completion. There is no timeout: a simulation
// in flight always finishes, so qubit counts must be bounded instead.
func (w *Worker) processJob(job Job) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("job %s panicked: %v", job.ID, r)
		}
		w.pool.metrics.recordJobExecution(job.StartTime, err == nil)
	}()

	return job.Fn()
}
