// Package localstore is the client's small key/value cache: the signed-in
// identity, form drafts and per-viewer toggles. Values are JSON.
package localstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

type Store interface {
	// Get decodes the value at key into v. found is false when absent.
	Get(ctx context.Context, key string, v interface{}) (found bool, err error)
	Set(ctx context.Context, key string, v interface{}) error
	Delete(ctx context.Context, keys ...string) error
}

type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key string, v interface{}) (bool, error) {
	m.mu.RLock()
	raw, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (m *Memory) Set(_ context.Context, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	m.mu.Lock()
	m.data[key] = raw
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	for _, k := range keys {
		delete(m.data, k)
	}
	m.mu.Unlock()
	return nil
}
