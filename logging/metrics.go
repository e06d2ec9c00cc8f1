package logging

import "sync"

// Metrics keeps coarse counters and gauges for the simulation process.
// Writers call TelemetryAdd for counters and TelemetryStore for gauges; the
// diagnostics endpoint snapshots the whole map.
type Metrics struct {
	mu     sync.Mutex
	values map[string]int64
}

func NewMetrics() *Metrics {
	return &Metrics{values: make(map[string]int64)}
}

func (m *Metrics) TelemetryAdd(name string, delta int64) {
	if m == nil || name == "" {
		return
	}
	m.mu.Lock()
	if m.values == nil {
		m.values = make(map[string]int64)
	}
	m.values[name] += delta
	m.mu.Unlock()
}

func (m *Metrics) TelemetryStore(name string, value int64) {
	if m == nil || name == "" {
		return
	}
	m.mu.Lock()
	if m.values == nil {
		m.values = make(map[string]int64)
	}
	m.values[name] = value
	m.mu.Unlock()
}

func (m *Metrics) Snapshot() map[string]int64 {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int64, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}
