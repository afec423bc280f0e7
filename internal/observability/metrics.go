// ABOUTME: Pipeline metrics collection for observability
// ABOUTME: Counters, latency percentiles, and per-source statistics

package observability

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// MetricsSnapshot contains a point-in-time snapshot of all metrics.
type MetricsSnapshot struct {
	// Total error reports captured.
	Captured int64

	// Reports suppressed as duplicates.
	Duplicates int64

	// Reports suppressed as expected test errors.
	Expected int64

	// Internal handler failures recovered from.
	HandlerFailures int64

	// Records persisted to the archive.
	Archived int64

	// Reports currently being processed.
	InFlight int64

	// Intake queue depth.
	QueueDepth int64

	// Timestamp of snapshot.
	Timestamp time.Time
}

// String returns a human-readable representation.
func (s *MetricsSnapshot) String() string {
	return fmt.Sprintf(
		"captured=%d duplicates=%d expected=%d failures=%d archived=%d inflight=%d queue=%d",
		s.Captured, s.Duplicates, s.Expected,
		s.HandlerFailures, s.Archived,
		s.InFlight, s.QueueDepth,
	)
}

// LatencyPercentiles contains latency distribution.
type LatencyPercentiles struct {
	P50 time.Duration
	P75 time.Duration
	P90 time.Duration
	P95 time.Duration
	P99 time.Duration
	Max time.Duration
}

// SourceStat contains statistics for a single report source.
type SourceStat struct {
	Captured   int64
	Duplicates int64
	Categories map[string]int64
}

// sourceStats holds per-source metrics.
type sourceStats struct {
	mu         sync.Mutex
	captured   int64
	duplicates int64
	categories map[string]int64
}

// PipelineMetrics collects metrics for error-report processing.
type PipelineMetrics struct {
	// Atomic counters.
	captured        atomic.Int64
	duplicates      atomic.Int64
	expected        atomic.Int64
	handlerFailures atomic.Int64
	archived        atomic.Int64
	inFlight        atomic.Int64
	queueDepth      atomic.Int64

	// Latency histogram (protected by mutex).
	mu        sync.RWMutex
	latencies []time.Duration

	// Per-source stats.
	sourceStats map[string]*sourceStats
}

// NewPipelineMetrics creates a new metrics collector.
func NewPipelineMetrics() *PipelineMetrics {
	return &PipelineMetrics{
		latencies:   make([]time.Duration, 0, 1000),
		sourceStats: make(map[string]*sourceStats),
	}
}

// RecordCapture records a processed error report.
func (m *PipelineMetrics) RecordCapture(source, category string, duration time.Duration, duplicate bool) {
	if duplicate {
		m.duplicates.Add(1)
	} else {
		m.captured.Add(1)
	}

	// Record latency.
	m.mu.Lock()
	m.latencies = append(m.latencies, duration)

	// Limit latency slice size.
	if len(m.latencies) > 10000 {
		m.latencies = m.latencies[len(m.latencies)-5000:]
	}

	// Record per-source stats.
	stats, ok := m.sourceStats[source]
	if !ok {
		stats = &sourceStats{categories: make(map[string]int64)}
		m.sourceStats[source] = stats
	}
	m.mu.Unlock()

	stats.mu.Lock()
	if duplicate {
		stats.duplicates++
	} else {
		stats.captured++
		stats.categories[category]++
	}
	stats.mu.Unlock()
}

// RecordExpected records a report suppressed as an expected test error.
func (m *PipelineMetrics) RecordExpected() {
	m.expected.Add(1)
}

// RecordHandlerFailure records a recovered internal failure.
func (m *PipelineMetrics) RecordHandlerFailure() {
	m.handlerFailures.Add(1)
}

// RecordArchived records records persisted to the archive.
func (m *PipelineMetrics) RecordArchived(count int64) {
	m.archived.Add(count)
}

// IncrementInFlight increments the in-flight report counter.
func (m *PipelineMetrics) IncrementInFlight() {
	m.inFlight.Add(1)
}

// DecrementInFlight decrements the in-flight report counter.
func (m *PipelineMetrics) DecrementInFlight() {
	m.inFlight.Add(-1)
}

// SetQueueDepth sets the current intake queue depth.
func (m *PipelineMetrics) SetQueueDepth(depth int64) {
	m.queueDepth.Store(depth)
}

// Snapshot returns a point-in-time snapshot of all metrics.
func (m *PipelineMetrics) Snapshot() *MetricsSnapshot {
	return &MetricsSnapshot{
		Captured:        m.captured.Load(),
		Duplicates:      m.duplicates.Load(),
		Expected:        m.expected.Load(),
		HandlerFailures: m.handlerFailures.Load(),
		Archived:        m.archived.Load(),
		InFlight:        m.inFlight.Load(),
		QueueDepth:      m.queueDepth.Load(),
		Timestamp:       time.Now(),
	}
}

// LatencyPercentiles returns latency distribution percentiles.
func (m *PipelineMetrics) LatencyPercentiles() LatencyPercentiles {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.latencies) == 0 {
		return LatencyPercentiles{}
	}

	// Make a copy and sort.
	sorted := make([]time.Duration, len(m.latencies))
	copy(sorted, m.latencies)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})

	return LatencyPercentiles{
		P50: percentile(sorted, 50),
		P75: percentile(sorted, 75),
		P90: percentile(sorted, 90),
		P95: percentile(sorted, 95),
		P99: percentile(sorted, 99),
		Max: sorted[len(sorted)-1],
	}
}

// percentile calculates the pth percentile of a sorted slice.
func percentile(sorted []time.Duration, p int) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := (p * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// SourceStats returns per-source statistics.
func (m *PipelineMetrics) SourceStats() map[string]*SourceStat {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string]*SourceStat, len(m.sourceStats))
	for name, stats := range m.sourceStats {
		stats.mu.Lock()
		stat := &SourceStat{
			Captured:   stats.captured,
			Duplicates: stats.duplicates,
			Categories: make(map[string]int64, len(stats.categories)),
		}
		for cat, n := range stats.categories {
			stat.Categories[cat] = n
		}
		stats.mu.Unlock()
		result[name] = stat
	}
	return result
}

// Reset resets all metrics to zero.
func (m *PipelineMetrics) Reset() {
	m.captured.Store(0)
	m.duplicates.Store(0)
	m.expected.Store(0)
	m.handlerFailures.Store(0)
	m.archived.Store(0)
	m.inFlight.Store(0)
	m.queueDepth.Store(0)

	m.mu.Lock()
	m.latencies = m.latencies[:0]
	m.sourceStats = make(map[string]*sourceStats)
	m.mu.Unlock()
}

// String returns a summary string.
func (m *PipelineMetrics) String() string {
	snapshot := m.Snapshot()
	percentiles := m.LatencyPercentiles()

	var sb strings.Builder
	sb.WriteString(snapshot.String())
	sb.WriteString(fmt.Sprintf(" p50=%v p99=%v", percentiles.P50, percentiles.P99))
	return sb.String()
}
