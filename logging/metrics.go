package logging

import "sync"

// Metrics holds event counters maintained by the router plus free-form
// telemetry gauges and counters recorded by other components.
type Metrics struct {
	mu        sync.Mutex
	events    map[EventType]uint64
	telemetry map[string]uint64
	sinks     map[string]SinkStats
}

// SinkStats counts delivery outcomes for one sink.
type SinkStats struct {
	Written uint64 `json:"written"`
	Failed  uint64 `json:"failed"`
	Dropped uint64 `json:"dropped"`
}

func NewMetrics() *Metrics {
	return &Metrics{
		events:    make(map[EventType]uint64),
		telemetry: make(map[string]uint64),
		sinks:     make(map[string]SinkStats),
	}
}

type sinkOutcome int

const (
	sinkWritten sinkOutcome = iota
	sinkFailed
	sinkDropped
)

func (m *Metrics) countSink(name string, outcome sinkOutcome) {
	if m == nil {
		return
	}
	m.mu.Lock()
	stats := m.sinks[name]
	switch outcome {
	case sinkWritten:
		stats.Written++
	case sinkFailed:
		stats.Failed++
	case sinkDropped:
		stats.Dropped++
	}
	m.sinks[name] = stats
	m.mu.Unlock()
}

// SinkCounts copies the per-sink delivery counters.
func (m *Metrics) SinkCounts() map[string]SinkStats {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sinks) == 0 {
		return nil
	}
	out := make(map[string]SinkStats, len(m.sinks))
	for k, v := range m.sinks {
		out[k] = v
	}
	return out
}

func (m *Metrics) countEvent(eventType EventType) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.events[eventType]++
	m.mu.Unlock()
}

// TelemetryAdd increments the named counter.
func (m *Metrics) TelemetryAdd(key string, delta uint64) {
	if m == nil || key == "" {
		return
	}
	m.mu.Lock()
	m.telemetry[key] += delta
	m.mu.Unlock()
}

// TelemetryStore overwrites the named gauge.
func (m *Metrics) TelemetryStore(key string, value uint64) {
	if m == nil || key == "" {
		return
	}
	m.mu.Lock()
	m.telemetry[key] = value
	m.mu.Unlock()
}

func (m *Metrics) EventCounts() map[string]uint64 {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.events) == 0 {
		return nil
	}
	out := make(map[string]uint64, len(m.events))
	for k, v := range m.events {
		out[string(k)] = v
	}
	return out
}

// TelemetrySnapshot copies the telemetry values.
func (m *Metrics) TelemetrySnapshot() map[string]uint64 {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]uint64, len(m.telemetry))
	for k, v := range m.telemetry {
		out[k] = v
	}
	return out
}
