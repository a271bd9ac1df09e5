package storage

import (
	"context"
	"sync"

	"github.com/mabino/atmo/pkg/device"
)

// Memory is a Store kept in process memory. It backs mock mode and tests.
type Memory struct {
	mu       sync.Mutex
	settings map[string]*Settings
	saves    int
}

// NewMemory creates an empty Memory store.
func NewMemory() *Memory {
	return &Memory{settings: make(map[string]*Settings)}
}

func (m *Memory) Settings(_ context.Context, cfg device.Config) (*Settings, error) {
	key := deviceKey(cfg)

	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.settings[key]
	if !ok {
		s = NewSettings(key)
		m.settings[key] = s
	}
	return s, nil
}

func (m *Memory) Save(ctx context.Context) error {
	m.mu.Lock()
	m.saves++
	m.mu.Unlock()
	return ctx.Err()
}

// Saves returns how many times Save was called.
func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
