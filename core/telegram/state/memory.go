package state

import (
	"context"
	"sync"
)

// memoryStore keys sessions by chat id in a sync.Map: chats touch disjoint
// keys, which is the case sync.Map is built for.
type memoryStore[T any] struct {
	sessions sync.Map
}

// NewMemoryStore returns a Store kept in process memory. Sessions are lost on restart.
func NewMemoryStore[T any]() Store[T] {
	return &memoryStore[T]{}
}

func (m *memoryStore[T]) Get(_ context.Context, chatID int64) (T, bool, error) {
	if v, ok := m.sessions.Load(chatID); ok {
		return v.(T), true, nil
	}
	var zero T
	return zero, false, nil
}

func (m *memoryStore[T]) Put(_ context.Context, chatID int64, v T) error {
	m.sessions.Store(chatID, v)
	return nil
}

func (m *memoryStore[T]) Delete(_ context.Context, chatID int64) error {
	m.sessions.Delete(chatID)
	return nil
}
