package monitoring

import (
	"sync"
	"time"
)

// PipelineStats summarises the runs of one pipeline.
type PipelineStats struct {
	Requests    int64         `json:"requests"`
	Errors      int64         `json:"errors"`
	LastLatency time.Duration `json:"last_latency_ns"`
	AvgLatency  time.Duration `json:"avg_latency_ns"`
	LastRun     time.Time     `json:"last_run"`
}

// Stats counts pipeline runs for the health endpoint.
type Stats struct {
	mu        sync.RWMutex
	pipelines map[string]*pipelineCounter
	startTime time.Time
}

type pipelineCounter struct {
	requests int64
	errors   int64
	total    time.Duration
	last     time.Duration
	lastRun  time.Time
}

func NewStats() *Stats {
	return &Stats{
		pipelines: make(map[string]*pipelineCounter),
		startTime: time.Now(),
	}
}

// Record adds one run of pipeline that took elapsed.
func (s *Stats) Record(pipeline string, elapsed time.Duration, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.pipelines[pipeline]
	if !ok {
		c = &pipelineCounter{}
		s.pipelines[pipeline] = c
	}
	c.requests++
	if err != nil {
		c.errors++
	}
	c.total += elapsed
	c.last = elapsed
	c.lastRun = time.Now()
}

// Snapshot returns a copy of the counters keyed by pipeline.
func (s *Stats) Snapshot() map[string]PipelineStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]PipelineStats, len(s.pipelines))
	for name, c := range s.pipelines {
		ps := PipelineStats{
			Requests:    c.requests,
			Errors:      c.errors,
			LastLatency: c.last,
			LastRun:     c.lastRun,
		}
		if c.requests > 0 {
			ps.AvgLatency = c.total / time.Duration(c.requests)
		}
		out[name] = ps
	}
	return out
}

func (s *Stats) Uptime() time.Duration {
	return time.Since(s.startTime)
}
