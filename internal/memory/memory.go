// Package memory keeps the bounded per-chat history fed to the assistant.
package memory

import (
	"context"
	"strings"
	"sync"
	"unicode/utf8"
)

// Role tells who produced a Turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is one message of a conversation.
type Turn struct {
	Role Role   `db:"role"`
	Text string `db:"text"`
}

// Store holds conversation history per chat.
type Store interface {
	// Get returns the chat history, oldest first. Unknown chats yield an empty slice.
	Get(ctx context.Context, chatID int64) ([]Turn, error)
	// Append adds turns and keeps only the trailing max entries.
	Append(ctx context.Context, chatID int64, max int, turns ...Turn) error
	// Clear forgets the chat history.
	Clear(ctx context.Context, chatID int64) error
}

// Trim keeps the trailing max entries of turns. It counts entries, not pairs,
// so an odd max may leave a model turn without its question.
func Trim(turns []Turn, max int) []Turn {
	if max <= 0 {
		return nil
	}
	if len(turns) <= max {
		return turns
	}
	return turns[len(turns)-max:]
}

// Label returns the prompt prefix for r.
func (r Role) Label() string {
	if r == RoleUser {
		return "Пользователь"
	}
	return "Бот"
}

// Render formats turns as "Label: text" lines, one per turn.
func Render(turns []Turn) string {
	var b strings.Builder
	for _, t := range turns {
		b.WriteString(t.Role.Label())
		b.WriteString(": ")
		b.WriteString(t.Text)
		b.WriteByte('\n')
	}
	return b.String()
}

// ApproxTokens estimates the token count of turns as runes/4 + 2 per turn.
// It is a rough figure for logs.
func ApproxTokens(turns []Turn) int {
	total := 0
	for _, t := range turns {
		total += utf8.RuneCountInString(t.Text)/4 + 2
	}
	return total
}

// InMemory is a Store kept in process memory.
type InMemory struct {
	mu    sync.Mutex
	chats map[int64][]Turn
}

// NewInMemory returns an empty in-process store.
func NewInMemory() *InMemory {
	return &InMemory{chats: make(map[int64][]Turn)}
}

// Get implements Store.
func (m *InMemory) Get(_ context.Context, chatID int64) ([]Turn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Turn(nil), m.chats[chatID]...), nil
}

// Append implements Store.
func (m *InMemory) Append(_ context.Context, chatID int64, max int, turns ...Turn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := Trim(append(m.chats[chatID], turns...), max)
	if len(kept) == 0 {
		delete(m.chats, chatID)
		return nil
	}
	m.chats[chatID] = append([]Turn(nil), kept...)
	return nil
}

// Clear implements Store.
func (m *InMemory) Clear(_ context.Context, chatID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.chats, chatID)
	return nil
}
