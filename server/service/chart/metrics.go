package chart

import "sync/atomic"

// Metrics counts cache and generation outcomes across all entry kinds.
// Counters are monotonic for the lifetime of the process.
type Metrics struct {
	hits        atomic.Int64
	misses      atomic.Int64
	generations atomic.Int64
	failures    atomic.Int64
	readErrors  atomic.Int64
	writeErrors atomic.Int64
}

// MetricsSnapshot is a point-in-time copy of the counters.
type MetricsSnapshot struct {
	CacheHits        int64 `json:"cacheHits"`
	CacheMisses      int64 `json:"cacheMisses"`
	Generations      int64 `json:"generations"`
	GenerationErrors int64 `json:"generationErrors"`
	CacheReadErrors  int64 `json:"cacheReadErrors"`
	CacheWriteErrors int64 `json:"cacheWriteErrors"`
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		CacheHits:        m.hits.Load(),
		CacheMisses:      m.misses.Load(),
		Generations:      m.generations.Load(),
		GenerationErrors: m.failures.Load(),
		CacheReadErrors:  m.readErrors.Load(),
		CacheWriteErrors: m.writeErrors.Load(),
	}
}
