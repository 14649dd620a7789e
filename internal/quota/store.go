package quota

import (
	"context"
	"strconv"
	"strings"
	"sync"
)

// Store persists quota values by key.
type Store interface {
	// Get returns the stored value. found is false when the key was never set.
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Counter is implemented by stores that can check and bump the daily count in
// one atomic step, so trackers in separate processes never overshoot the limit.
type Counter interface {
	// Consume resets the window when the stored date is not req.Today, then
	// increments the count if it is below req.Limit. It returns the stored
	// count after the call and whether the answer was accepted.
	Consume(ctx context.Context, req ConsumeRequest) (count int, accepted bool, err error)
}

// ConsumeRequest names the keys and the window for Counter.Consume.
type ConsumeRequest struct {
	CountKey string
	DateKey  string
	Today    string
	Limit    int
}

// Backend is a Store that holds resources until closed.
type Backend interface {
	Store
	Close() error
}

// MemoryStore keeps values in process memory. The zero value is ready to use.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

var _ Backend = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.values[key]
	return value, ok, nil
}

// Set implements Store.
func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values == nil {
		m.values = make(map[string]string)
	}
	m.values[key] = value
	return nil
}

// Consume implements Counter.
func (m *MemoryStore) Consume(_ context.Context, req ConsumeRequest) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values == nil {
		m.values = make(map[string]string)
	}
	count, accepted := nextCount(m.values[req.DateKey], m.values[req.CountKey], req)
	m.values[req.CountKey] = strconv.Itoa(count)
	m.values[req.DateKey] = req.Today
	return count, accepted, nil
}

// Close implements Backend.
func (m *MemoryStore) Close() error { return nil }

// nextCount applies one answer to the stored window. An unreadable or negative
// count is treated as zero.
func nextCount(storedDate, storedCount string, req ConsumeRequest) (int, bool) {
	count := 0
	if storedDate == req.Today {
		count = parseCount(storedCount)
	}
	if count >= req.Limit {
		return count, false
	}
	return count + 1, true
}

func parseCount(raw string) int {
	count, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || count < 0 {
		return 0
	}
	return count
}
