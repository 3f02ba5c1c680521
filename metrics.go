package qnn

import (
	"sort"
	"sync"
	"time"
)

// Metrics tracks job throughput and latency for a pool.
type Metrics struct {
	mu                 sync.RWMutex
	WorkerCount        int
	JobCount           int64
	FailedJobs         int64
	SchedulingFailures int64
	TotalJobTime       time.Duration

	AverageJobLatency time.Duration
	P95JobLatency     time.Duration
	P99JobLatency     time.Duration
	JobSuccessRate    float64

	// Sliding window of the most recent latencies for the percentiles.
	latencies  []time.Duration
	windowSize int
}

// MetricsSnapshot is a consistent copy of Metrics without the lock.
type MetricsSnapshot struct {
	WorkerCount        int
	JobCount           int64
	FailedJobs         int64
	SchedulingFailures int64
	AverageJobLatency  time.Duration
	P95JobLatency      time.Duration
	P99JobLatency      time.Duration
	JobSuccessRate     float64
}

func NewMetrics() *Metrics {
	return &Metrics{
		latencies:  make([]time.Duration, 0, 1000),
		windowSize: 1000,
	}
}

func (m *Metrics) recordJobExecution(startTime time.Time, success bool) {
	duration := time.Since(startTime)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalJobTime += duration
	m.JobCount++
	if !success {
		m.FailedJobs++
	}
	m.JobSuccessRate = float64(m.JobCount-m.FailedJobs) / float64(m.JobCount)

	m.updateLatencyPercentiles(duration)
}

func (m *Metrics) recordSchedulingFailure() {
	m.mu.Lock()
	m.SchedulingFailures++
	m.mu.Unlock()
}

func (m *Metrics) updateLatencyPercentiles(duration time.Duration) {
	m.AverageJobLatency = m.TotalJobTime / time.Duration(m.JobCount)

	m.latencies = append(m.latencies, duration)
	if len(m.latencies) > m.windowSize {
		m.latencies = m.latencies[1:]
	}

	sorted := append([]time.Duration(nil), m.latencies...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})

	m.P95JobLatency = sorted[percentileIndex(len(sorted), 0.95)]
	m.P99JobLatency = sorted[percentileIndex(len(sorted), 0.99)]
}

func percentileIndex(n int, p float64) int {
	idx := int(float64(n) * p)
	if idx >= n {
		idx = n - 1
	}
	return idx
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return MetricsSnapshot{
		WorkerCount:        m.WorkerCount,
		JobCount:           m.JobCount,
		FailedJobs:         m.FailedJobs,
		SchedulingFailures: m.SchedulingFailures,
		AverageJobLatency:  m.AverageJobLatency,
		P95JobLatency:      m.P95JobLatency,
		P99JobLatency:      m.P99JobLatency,
		JobSuccessRate:     m.JobSuccessRate,
	}
}

// ExportMetrics flattens the snapshot for log lines.
func (m *Metrics) ExportMetrics() map[string]interface{} {
	s := m.Snapshot()

	return map[string]interface{}{
		"worker_count":   s.WorkerCount,
		"job_count":      s.JobCount,
		"failed_jobs":    s.FailedJobs,
		"success_rate":   s.JobSuccessRate,
		"avg_latency_us": s.AverageJobLatency.Microseconds(),
		"p95_latency_us": s.P95JobLatency.Microseconds(),
		"p99_latency_us": s.P99JobLatency.Microseconds(),
	}
}
