package middleware

import (
	tghelpers "github.com/m3rciful/vedbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// MessageMetricsMiddleware zeroes the per-update send counters before the
// handler runs.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		tghelpers.ResetCounters(c)
		return next(c)
	}
}

// GetCounters returns how many messages the handler queued and whether any
// carried a keyboard.
func GetCounters(c tele.Context) (int, bool) {
	return tghelpers.Counters(c)
}
