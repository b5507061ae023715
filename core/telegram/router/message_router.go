package router

import (
	"context"
	"strings"
	"time"

	tg "github.com/m3rciful/vedbot/core/telegram"
	tghelpers "github.com/m3rciful/vedbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// FSM is a multi-step dialogue that claims text while a chat is inside it.
type FSM interface {
	InProgress(ctx context.Context, chatID int64) bool
	Handle(c tele.Context) error
}

// TextOptions supplies the handlers used when nothing else matches.
type TextOptions struct {
	UnknownText  tele.HandlerFunc
	UnknownMedia tele.HandlerFunc
}

// TextRoutes builds the text and media handlers. Text is matched in order:
// slash command, exact button label, active dialogue, registry fallback,
// UnknownText.
func TextRoutes(fsm FSM, reg *tg.Registry, opts TextOptions) []tg.Route {
	text := func(c tele.Context) error {
		start := time.Now()
		name, h := resolveText(c, fsm, reg, opts)
		if h == nil {
			track(c, name, start).skip(c)
			return nil
		}
		return track(c, name, start).run(c, h)
	}
	media := func(c tele.Context) error {
		s := track(c, "unexpected_media", time.Now())
		if opts.UnknownMedia == nil {
			s.skip(c)
			return nil
		}
		return s.run(c, opts.UnknownMedia)
	}
	return []tg.Route{
		{Endpoint: tele.OnText, Handler: text},
		{Endpoint: tele.OnDocument, Handler: media},
		{Endpoint: tele.OnPhoto, Handler: media},
	}
}

// resolveText picks the handler for a text update and the name to log it under.
// Admin commands are reachable only through their command route, and bare
// words never match a command so "status" stays a dialogue answer.
func resolveText(c tele.Context, fsm FSM, reg *tg.Registry, opts TextOptions) (string, tele.HandlerFunc) {
	msg := c.Text()
	if reg != nil {
		if key, cmd, ok := lookupCommand(reg, msg); ok && !cmd.AdminOnly {
			return normalizeHandlerName(key), cmd.Handler
		}
		if h, ok := reg.LookupButton(msg); ok {
			return "button", h
		}
	}
	if fsm != nil && c.Chat() != nil && fsm.InProgress(tghelpers.BuildContext(c), c.Chat().ID) {
		return "fsm", fsm.Handle
	}
	if reg != nil && reg.TextFallback() != nil {
		return "fallback", reg.TextFallback()
	}
	return "unknown_text", opts.UnknownText
}

func lookupCommand(reg *tg.Registry, text string) (string, tg.Command, bool) {
	if !strings.HasPrefix(text, "/") {
		return "", tg.Command{}, false
	}
	key, cmd, ok := reg.LookupCommand(text)
	return key, cmd, ok && cmd.Handler != nil
}
