package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/vedbot/internal/memory"
)

// MemoryStore keeps conversation turns in chat_memory, ordered by id.
type MemoryStore struct {
	db *sqlx.DB
}

var _ memory.Store = (*MemoryStore)(nil)

// NewMemoryStore wraps db.
func NewMemoryStore(db *sqlx.DB) *MemoryStore {
	return &MemoryStore{db: db}
}

// Get implements memory.Store.
func (m *MemoryStore) Get(ctx context.Context, chatID int64) ([]memory.Turn, error) {
	turns := []memory.Turn{}
	err := m.db.SelectContext(ctx, &turns,
		`SELECT role, text FROM chat_memory WHERE chat_id = $1 ORDER BY id`, chatID)
	if err != nil {
		return nil, fmt.Errorf("get memory: %w", err)
	}
	return turns, nil
}

// Append implements memory.Store. Insert and trim run in one transaction so
// readers never observe more than limit turns.
func (m *MemoryStore) Append(ctx context.Context, chatID int64, limit int, turns ...memory.Turn) (err error) {
	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("append memory: begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, t := range turns {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO chat_memory (chat_id, role, text) VALUES ($1, $2, $3)`,
			chatID, string(t.Role), t.Text); err != nil {
			return fmt.Errorf("append memory: insert: %w", err)
		}
	}

	if _, err = tx.ExecContext(ctx, `
DELETE FROM chat_memory
WHERE chat_id = $1 AND id NOT IN (
    SELECT id FROM chat_memory WHERE chat_id = $1 ORDER BY id DESC LIMIT $2
)`, chatID, max(limit, 0)); err != nil {
		return fmt.Errorf("append memory: trim: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("append memory: commit: %w", err)
	}
	return nil
}

// Clear implements memory.Store.
func (m *MemoryStore) Clear(ctx context.Context, chatID int64) error {
	if _, err := m.db.ExecContext(ctx, `DELETE FROM chat_memory WHERE chat_id = $1`, chatID); err != nil {
		return fmt.Errorf("clear memory: %w", err)
	}
	return nil
}
