package middleware

import (
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/vedbot/core/logger"
	tghelpers "github.com/m3rciful/vedbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// ChatLocker serializes work per chat id. Locks are reference counted and
// dropped once no update for the chat is waiting.
type ChatLocker struct {
	mu    sync.Mutex
	chats map[int64]*chatLock
}

type chatLock struct {
	mu      sync.Mutex
	waiters int
}

// NewChatLocker returns an empty locker.
func NewChatLocker() *ChatLocker {
	return &ChatLocker{chats: make(map[int64]*chatLock)}
}

// Lock blocks until chatID is free and returns the matching unlock func.
func (l *ChatLocker) Lock(chatID int64) func() {
	l.mu.Lock()
	cl, ok := l.chats[chatID]
	if !ok {
		cl = &chatLock{}
		l.chats[chatID] = cl
	}
	cl.waiters++
	l.mu.Unlock()

	cl.mu.Lock()
	return func() {
		cl.mu.Unlock()
		l.mu.Lock()
		cl.waiters--
		if cl.waiters == 0 {
			delete(l.chats, chatID)
		}
		l.mu.Unlock()
	}
}

// Len reports how many chats currently hold or wait for a lock.
func (l *ChatLocker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.chats)
}

// ChatLock returns a middleware that handles updates of one chat one at a time.
// Updates without a chat pass through.
func ChatLock(l *ChatLocker) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			chat := c.Chat()
			if chat == nil {
				return next(c)
			}
			start := time.Now()
			unlock := l.Lock(chat.ID)
			defer unlock()
			if waited := time.Since(start); waited > time.Second {
				logger.LogEvent(tghelpers.BuildContext(c), logger.TG, slog.LevelDebug, "tg.chat_lock",
					slog.Duration("duration", logger.RoundMS(waited)),
				)
			}
			return next(c)
		}
	}
}
