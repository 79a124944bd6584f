package store

import (
	"context"
	"fmt"
	"sync"

	"asi_schedules/pkg/core/schedule"
)

// MemoryStore is an in-memory ScheduleStore for tests. It round-trips every
// document through the persisted form so tests exercise the same
// serialization path as the real stores.
type MemoryStore struct {
	mu   sync.Mutex
	docs map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string][]byte)}
}

func key(runID, block string) string {
	return runID + "/" + block
}

// Save stores one block's encoded document.
func (m *MemoryStore) Save(_ context.Context, runID, block string, s *schedule.Schedule) error {
	doc, err := s.Encode()
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[key(runID, block)] = doc
	return nil
}

// Load retrieves and re-decodes one block's document.
func (m *MemoryStore) Load(_ context.Context, runID, block string) (*schedule.Schedule, error) {
	m.mu.Lock()
	doc, ok := m.docs[key(runID, block)]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("store: no schedule for run %s block %s", runID, block)
	}
	return schedule.Decode(doc)
}
