// Package postgres persists calculator sessions and assistant memory so that
// both survive a restart. It is selected with storage.driver: postgres.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/vedbot/core/logger"
	"github.com/m3rciful/vedbot/core/telegram/state"
	"github.com/m3rciful/vedbot/internal/calculator"
)

// SessionStore keeps one calculator.Step per chat in chat_sessions.
type SessionStore struct {
	db *sqlx.DB
}

var _ state.Store[calculator.Step] = (*SessionStore)(nil)

// NewSessionStore wraps db.
func NewSessionStore(db *sqlx.DB) *SessionStore {
	return &SessionStore{db: db}
}

const upsertSession = `
INSERT INTO chat_sessions (chat_id, step, from_location, to_location, weight, volume, updated_at)
VALUES (:chat_id, :step, :from_location, :to_location, :weight, :volume, now())
ON CONFLICT (chat_id) DO UPDATE SET
    step = EXCLUDED.step,
    from_location = EXCLUDED.from_location,
    to_location = EXCLUDED.to_location,
    weight = EXCLUDED.weight,
    volume = EXCLUDED.volume,
    updated_at = now()`

type sessionRow struct {
	ChatID int64 `db:"chat_id"`
	calculator.Record
}

// Get implements state.Store. A row that no longer describes a valid step is
// reported as an error wrapping calculator.ErrInvalidRecord.
func (s *SessionStore) Get(ctx context.Context, chatID int64) (calculator.Step, bool, error) {
	var rec calculator.Record
	err := s.db.GetContext(ctx, &rec,
		`SELECT step, from_location, to_location, weight, volume FROM chat_sessions WHERE chat_id = $1`, chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get session: %w", err)
	}
	step, err := calculator.FromRecord(rec)
	if err != nil {
		return nil, false, err
	}
	return step, true, nil
}

// Put implements state.Store.
func (s *SessionStore) Put(ctx context.Context, chatID int64, step calculator.Step) error {
	row := sessionRow{ChatID: chatID, Record: calculator.ToRecord(step)}
	if _, err := s.db.NamedExecContext(ctx, upsertSession, row); err != nil {
		return fmt.Errorf("put session: %w", err)
	}
	return nil
}

// Delete implements state.Store.
func (s *SessionStore) Delete(ctx context.Context, chatID int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM chat_sessions WHERE chat_id = $1`, chatID)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		logger.Store.LogAttrs(ctx, slog.LevelDebug, "",
			slog.String("event", "session.delete"),
			slog.Int64("chat_id", chatID),
		)
	}
	return nil
}
