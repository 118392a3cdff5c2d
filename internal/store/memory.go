package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
)

// Memory keeps documents as JSON blobs in process memory. It backs the test
// suites; production uses the Mongo or SQL store.
type Memory struct {
	mu   sync.RWMutex
	data map[string]map[string][]byte
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{data: make(map[string]map[string][]byte)}
}

func (m *Memory) Get(ctx context.Context, collection, key string, out any) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	raw, ok := m.data[collection][key]
	if !ok {
		return ErrNotFound
	}
	return json.Unmarshal(raw, out)
}

func (m *Memory) FindOne(ctx context.Context, collection, field, value string, out any) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, raw := range m.data[collection] {
		if fieldEquals(raw, field, value) {
			return json.Unmarshal(raw, out)
		}
	}
	return ErrNotFound
}

func (m *Memory) List(ctx context.Context, collection string, out any) error {
	return m.list(collection, func([]byte) bool { return true }, out)
}

func (m *Memory) ListByField(ctx context.Context, collection, field, value string, out any) error {
	return m.list(collection, func(raw []byte) bool { return fieldEquals(raw, field, value) }, out)
}

func (m *Memory) Upsert(ctx context.Context, collection, key string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data[collection] == nil {
		m.data[collection] = make(map[string][]byte)
	}
	m.data[collection][key] = raw
	return nil
}

func (m *Memory) Delete(ctx context.Context, collection, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.data[collection][key]; !ok {
		return false, nil
	}
	delete(m.data[collection], key)
	return true, nil
}

func (m *Memory) list(collection string, keep func([]byte) bool, out any) error {
	m.mu.RLock()
	keys := make([]string, 0, len(m.data[collection]))
	for k := range m.data[collection] {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	docs := make([]json.RawMessage, 0, len(keys))
	for _, k := range keys {
		if raw := m.data[collection][k]; keep(raw) {
			docs = append(docs, raw)
		}
	}
	m.mu.RUnlock()

	raw, err := json.Marshal(docs)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func fieldEquals(raw []byte, field, value string) bool {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return false
	}
	s, ok := doc[field].(string)
	return ok && s == value
}
