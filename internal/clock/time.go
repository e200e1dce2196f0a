package clock

import (
	"sync"
	"time"
)

// TimeProvider is the wall clock a Song reads from
type TimeProvider interface {
	Now() time.Time
}

// SystemTime reads time.Now, keeping the monotonic reading
type SystemTime struct{}

func (SystemTime) Now() time.Time {
	return time.Now()
}

// MockTime is a controllable TimeProvider for tests
type MockTime struct {
	mu      sync.RWMutex
	current time.Time
}

func NewMockTime(start time.Time) *MockTime {
	return &MockTime{current: start}
}

func (m *MockTime) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

func (m *MockTime) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = t
}

func (m *MockTime) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.current.Add(d)
}
