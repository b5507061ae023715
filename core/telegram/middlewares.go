package telegram

import (
	"github.com/m3rciful/vedbot/core/telegram/middleware"
)

// DefaultMiddlewares builds the shared middleware chain: panics are recovered
// first, then updates of one chat are serialized before logging and counters.
func DefaultMiddlewares(locker *middleware.ChatLocker) []Middleware {
	mws := []Middleware{
		{Name: "recover", Use: middleware.RecoverMiddleware},
	}
	if locker != nil {
		mws = append(mws, Middleware{Name: "chat_lock", Use: middleware.ChatLock(locker)})
	}
	return append(mws,
		Middleware{Name: "logger", Use: middleware.LoggerMiddleware},
		Middleware{Name: "metrics", Use: middleware.MessageMetricsMiddleware},
	)
}
