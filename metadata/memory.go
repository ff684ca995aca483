package metadata

import "sync"

// MemoryStore keeps encoded snapshots in a map.
type MemoryStore struct {
	mu     sync.RWMutex
	blobs  map[int][]byte
	closed bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[int][]byte)}
}

// Insert encodes value and stores it at iteration.
func (m *MemoryStore) Insert(iteration int, value any) error {
	data, err := Marshal(value)
	if err != nil {
		return &StoreError{Op: "insert", Iteration: iteration, Err: err}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return &StoreError{Op: "insert", Iteration: iteration, Err: ErrClosed}
	}
	m.blobs[iteration] = data
	return nil
}

// Get decodes the value at iteration into out.
func (m *MemoryStore) Get(iteration int, out any) (bool, error) {
	m.mu.RLock()
	data, ok := m.blobs[iteration]
	closed := m.closed
	m.mu.RUnlock()

	if closed {
		return false, &StoreError{Op: "get", Iteration: iteration, Err: ErrClosed}
	}
	if !ok {
		return false, nil
	}
	if err := Unmarshal(data, out); err != nil {
		return false, &StoreError{Op: "get", Iteration: iteration, Err: err}
	}
	return true, nil
}

// Len returns the number of stored iterations.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}

// Close marks the store closed. Stored data is dropped.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.blobs = nil
	return nil
}
