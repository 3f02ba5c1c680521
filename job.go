package qnn

import "time"

// Job is one unit of pool work. For the gradient pool that is a single
// gradient component: two full forward passes.
type Job struct {
	ID        string
	Fn        func() (any, error)
	StartTime time.Time
}

// Result is what a job's Await channel delivers.
type Result struct {
	Value     any
	Error     error
	CreatedAt time.Time
}
