package session

import (
	"context"
	"sync"
)

// MemoryStorage keeps everything in process. Used for tests and for
// running without Redis (session.store=memory).
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string]map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string]map[string]string)}
}

func (m *MemoryStorage) Get(_ context.Context, clientID, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[clientID][key]
	return v, ok, nil
}

func (m *MemoryStorage) Set(_ context.Context, clientID, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ns, ok := m.data[clientID]
	if !ok {
		ns = make(map[string]string)
		m.data[clientID] = ns
	}
	ns[key] = value
	return nil
}

func (m *MemoryStorage) Remove(_ context.Context, clientID string, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ns, ok := m.data[clientID]
	if !ok {
		return nil
	}
	for _, k := range keys {
		delete(ns, k)
	}
	if len(ns) == 0 {
		delete(m.data, clientID)
	}
	return nil
}

// Keys lists the keys stored for clientID.
func (m *MemoryStorage) Keys(clientID string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.data[clientID]))
	for k := range m.data[clientID] {
		keys = append(keys, k)
	}
	return keys
}
