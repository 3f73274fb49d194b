package store

import (
	"sync"
)

// DefaultCapacity is the number of polls a [MemoryStore] keeps by default.
const DefaultCapacity = 256

const subscriberBuffer = 100

// MemoryStore is an in-memory implementation of [Store].
//
// Records are keyed by poll id. When a new poll id arrives and the store is
// full, the poll that first appeared earliest is evicted.
//
// Subscribers receive updates via buffered channels. Updates are sent
// non-blocking; a full subscriber buffer drops the update for that
// subscriber only.
type MemoryStore struct {
	mu       sync.RWMutex
	records  map[string]ProgressRecord
	order    []string // poll ids, oldest first
	capacity int

	subMu       sync.RWMutex
	subscribers map[chan ProgressRecord]struct{}
}

// NewMemoryStore creates a store holding at most capacity polls.
// A capacity below 1 uses [DefaultCapacity].
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &MemoryStore{
		records:     make(map[string]ProgressRecord),
		capacity:    capacity,
		subscribers: make(map[chan ProgressRecord]struct{}),
	}
}

// Update stores record and notifies all subscribers.
func (m *MemoryStore) Update(record ProgressRecord) {
	m.mu.Lock()
	if _, ok := m.records[record.PollID]; !ok {
		if len(m.order) >= m.capacity {
			oldest := m.order[0]
			m.order = m.order[1:]
			delete(m.records, oldest)
		}
		m.order = append(m.order, record.PollID)
	}
	m.records[record.PollID] = record
	m.mu.Unlock()

	m.notifySubscribers(record)
}

// GetAll returns a copy of all records, oldest poll first.
func (m *MemoryStore) GetAll() []ProgressRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()

	results := make([]ProgressRecord, 0, len(m.order))
	for _, id := range m.order {
		results = append(results, m.records[id])
	}
	return results
}

// Get returns the latest record for pollID.
func (m *MemoryStore) Get(pollID string) (ProgressRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.records[pollID]
	return r, ok
}

// Len returns the number of polls held.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.order)
}

// Subscribe creates a subscription with a buffer of 100 records.
//
// Caller must call [MemoryStore.Unsubscribe] when done to prevent resource leaks.
func (m *MemoryStore) Subscribe() <-chan ProgressRecord {
	ch := make(chan ProgressRecord, subscriberBuffer)

	m.subMu.Lock()
	m.subscribers[ch] = struct{}{}
	m.subMu.Unlock()

	return ch
}

// Unsubscribe removes a subscription and closes its channel.
// Safe to call multiple times or with an unknown channel.
func (m *MemoryStore) Unsubscribe(ch <-chan ProgressRecord) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	for subCh := range m.subscribers {
		if subCh == ch {
			delete(m.subscribers, subCh)
			close(subCh)
			break
		}
	}
}

func (m *MemoryStore) notifySubscribers(record ProgressRecord) {
	m.subMu.RLock()
	defer m.subMu.RUnlock()

	for ch := range m.subscribers {
		select {
		case ch <- record:
		default:
			// slow subscriber, drop
		}
	}
}
