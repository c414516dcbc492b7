package infra

import (
	"sync/atomic"
	"time"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety.
type Metrics struct {
	// Counters
	transcriptions atomic.Uint64
	wakeDetections atomic.Uint64
	commandsParsed atomic.Uint64
	ordersExecuted atomic.Uint64
	ordersFailed   atomic.Uint64
	errorsTotal    atomic.Uint64

	// Transcription latency tracking
	latencySumNs atomic.Int64
	latencyCount atomic.Uint64

	// Gauges
	activeConnections atomic.Int32
}

// GlobalMetrics is the singleton metrics instance.
var GlobalMetrics = &Metrics{}

// RecordTranscription records one speech-to-text call with its latency.
func (m *Metrics) RecordTranscription(latencyNs int64) {
	m.transcriptions.Add(1)
	m.latencySumNs.Add(latencyNs)
	m.latencyCount.Add(1)
}

// RecordWakeDetection records a detected wake word.
func (m *Metrics) RecordWakeDetection() {
	m.wakeDetections.Add(1)
}

// RecordCommandParsed records a successfully parsed voice command.
func (m *Metrics) RecordCommandParsed() {
	m.commandsParsed.Add(1)
}

// RecordOrderExecuted records a successful order.
func (m *Metrics) RecordOrderExecuted() {
	m.ordersExecuted.Add(1)
}

// RecordOrderFailed records a failed order.
func (m *Metrics) RecordOrderFailed() {
	m.ordersFailed.Add(1)
}

// RecordError records an error occurrence.
func (m *Metrics) RecordError() {
	m.errorsTotal.Add(1)
}

// IncrementConnections increments active websocket connections by 1.
func (m *Metrics) IncrementConnections() {
	m.activeConnections.Add(1)
}

// DecrementConnections decrements active websocket connections by 1.
func (m *Metrics) DecrementConnections() {
	m.activeConnections.Add(-1)
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	Transcriptions    uint64
	WakeDetections    uint64
	CommandsParsed    uint64
	OrdersExecuted    uint64
	OrdersFailed      uint64
	ErrorsTotal       uint64
	AvgLatencyNs      int64
	ActiveConnections int32
	Timestamp         time.Time
}

// Snapshot returns current metrics as a snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	var avgLatency int64
	count := m.latencyCount.Load()
	if count > 0 {
		avgLatency = m.latencySumNs.Load() / int64(count)
	}

	return MetricsSnapshot{
		Transcriptions:    m.transcriptions.Load(),
		WakeDetections:    m.wakeDetections.Load(),
		CommandsParsed:    m.commandsParsed.Load(),
		OrdersExecuted:    m.ordersExecuted.Load(),
		OrdersFailed:      m.ordersFailed.Load(),
		ErrorsTotal:       m.errorsTotal.Load(),
		AvgLatencyNs:      avgLatency,
		ActiveConnections: m.activeConnections.Load(),
		Timestamp:         time.Now(),
	}
}

// Reset clears all metrics (for testing).
func (m *Metrics) Reset() {
	m.transcriptions.Store(0)
	m.wakeDetections.Store(0)
	m.commandsParsed.Store(0)
	m.ordersExecuted.Store(0)
	m.ordersFailed.Store(0)
	m.errorsTotal.Store(0)
	m.latencySumNs.Store(0)
	m.latencyCount.Store(0)
	m.activeConnections.Store(0)
}
