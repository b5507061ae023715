package ui

import tele "gopkg.in/telebot.v4"

// FallbackProvider exposes handlers for updates that no command, button or
// dialogue step claims.
type FallbackProvider interface {
	UnknownText() tele.HandlerFunc
	UnknownMedia() tele.HandlerFunc
}
