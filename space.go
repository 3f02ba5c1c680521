package qnn

import (
	"sync"
	"time"
)

/*
space holds finished job results until their owner collects them. Every
result is delivered exactly once: either straight to a waiting channel, or
kept until the matching Await and then dropped.
*/
type space struct {
	mu      sync.Mutex
	values  map[string]Result
	waiting map[string][]chan Result
}

func newSpace() *space {
	return &space{
		values:  make(map[string]Result),
		waiting: make(map[string][]chan Result),
	}
}

// Store records the outcome of job id and wakes anyone waiting on it.
func (s *space) Store(id string, value any, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := Result{
		Value:     value,
		Error:     err,
		CreatedAt: time.Now(),
	}

	channels, ok := s.waiting[id]
	if !ok {
		s.values[id] = result
		return
	}

	for _, ch := range channels {
		ch <- result
		close(ch)
	}
	delete(s.waiting, id)
}

// Await returns a channel that receives the result of job id once.
func (s *space) Await(id string) chan Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Result, 1)

	if result, ok := s.values[id]; ok {
		ch <- result
		close(ch)
		delete(s.values, id)
		return ch
	}

	s.waiting[id] = append(s.waiting[id], ch)
	return ch
}

// Drain fails every outstanding waiter with err.
func (s *space) Drain(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for id, channels := range s.waiting {
		for _, ch := range channels {
			ch <- Result{Error: err, CreatedAt: now}
			close(ch)
		}
		delete(s.waiting, id)
	}
}

// Pending counts results stored but not yet collected plus open waiters.
func (s *space) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.values) + len(s.waiting)
}
