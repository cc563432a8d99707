package bus

import "sync"

// Memory is an in-process Bus backed by a mutex-guarded map. It is the
// deterministic substitute used by tests and by the in-process
// simulator; it implements exactly the same last-value-wins semantics
// as the NATS-backed bus.
type Memory struct {
	mu     sync.RWMutex
	values map[string]float64
}

// NewMemory returns an empty in-memory bus.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]float64)}
}

// Publish overwrites the value held by topic.
func (m *Memory) Publish(topic string, value float64) error {
	m.mu.Lock()
	m.values[topic] = value
	m.mu.Unlock()
	return nil
}

// Read returns the latest value published on topic, or absent if the
// topic has never been published.
func (m *Memory) Read(topic string) (float64, bool, error) {
	m.mu.RLock()
	value, ok := m.values[topic]
	m.mu.RUnlock()
	return value, ok, nil
}
