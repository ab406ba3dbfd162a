// internal/store/memory.go
package store

import (
	"context"
	"sync"
)

// Memory keeps rooms in process memory only.
type Memory[T Versioned] struct {
	mu    sync.Mutex
	rooms map[string]T
}

// NewMemory returns an empty in-memory store.
func NewMemory[T Versioned]() *Memory[T] {
	return &Memory[T]{
		rooms: make(map[string]T),
	}
}

var _ Store[Versioned] = (*Memory[Versioned])(nil)

func (m *Memory[T]) Get(_ context.Context, roomID string) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.rooms[roomID]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	return s, nil
}

func (m *Memory[T]) Put(_ context.Context, roomID string, state T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[roomID] = state
	return nil
}

func (m *Memory[T]) PutIfVersion(_ context.Context, roomID string, state T, expected int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var current int64
	if s, ok := m.rooms[roomID]; ok {
		current = s.StateVersion()
	}
	if current != expected {
		return ErrVersionConflict
	}
	m.rooms[roomID] = state
	return nil
}

func (m *Memory[T]) Delete(_ context.Context, roomID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, roomID)
	return nil
}

func (m *Memory[T]) Exists(_ context.Context, roomID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.rooms[roomID]
	return ok, nil
}

// Len reports how many rooms are stored.
func (m *Memory[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rooms)
}
