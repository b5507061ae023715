// Package state keeps per-chat dialogue sessions behind a small store
// interface, so handlers do not care whether sessions live in memory or in
// a database.
package state

import "context"

// Store holds at most one session value per chat.
type Store[T any] interface {
	// Get returns the session for chatID and whether one exists.
	Get(ctx context.Context, chatID int64) (T, bool, error)
	// Put creates or replaces the session for chatID.
	Put(ctx context.Context, chatID int64, v T) error
	// Delete removes the session; deleting a missing session is not an error.
	Delete(ctx context.Context, chatID int64) error
}
