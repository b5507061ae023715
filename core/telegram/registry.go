package telegram

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/m3rciful/vedbot/core/logger"

	tele "gopkg.in/telebot.v4"
)

// Command is a slash command with its menu metadata.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	AdminOnly   bool
	// Hidden commands work but are left out of the Telegram command menu.
	Hidden bool
}

// Registry collects what a bot module exposes: commands, reply-keyboard
// buttons and the handler for otherwise unmatched text.
type Registry struct {
	commands     map[string]Command
	buttons      map[string]tele.HandlerFunc
	textFallback tele.HandlerFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		commands: map[string]Command{},
		buttons:  map[string]tele.HandlerFunc{},
	}
}

// RegisterCommand adds cmd under name, which must start with a slash.
// Invalid or duplicate registrations are logged and ignored.
func (r *Registry) RegisterCommand(name string, cmd Command) {
	cause := ""
	switch {
	case cmd.Handler == nil || cmd.Description == "":
		cause = "invalid"
	case !strings.HasPrefix(name, "/"):
		cause = "no_slash_prefix"
	case r.commands[name].Handler != nil:
		cause = "duplicate"
	}
	if cause != "" {
		wireSkip("register.command.skip", slog.String("name", name), slog.String("cause", cause))
		return
	}
	r.commands[name] = cmd
}

// RegisterButton binds an exact reply-keyboard label to h. The first
// registration of a label wins.
func (r *Registry) RegisterButton(label string, h tele.HandlerFunc) {
	cause := ""
	switch {
	case label == "" || h == nil:
		cause = "invalid"
	case r.buttons[label] != nil:
		cause = "duplicate"
	}
	if cause != "" {
		wireSkip("register.button.skip", slog.String("button", label), slog.String("cause", cause))
		return
	}
	r.buttons[label] = h
}

// ListCommands returns commands sorted by name for the Telegram menu. With
// visibleOnly, hidden and admin-only commands are left out.
func (r *Registry) ListCommands(visibleOnly bool) []tele.Command {
	list := make([]tele.Command, 0, len(r.commands))
	for name, c := range r.commands {
		if visibleOnly && (c.Hidden || c.AdminOnly) {
			continue
		}
		list = append(list, tele.Command{Text: strings.TrimPrefix(name, "/"), Description: c.Description})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Text < list[j].Text })
	return list
}

// LookupCommand resolves a name, with or without the slash, to the
// registered command.
func (r *Registry) LookupCommand(name string) (string, Command, bool) {
	name = slashed(name)
	cmd, ok := r.commands[name]
	if !ok {
		return "", Command{}, false
	}
	return name, cmd, true
}

// LookupButton returns the handler for an exact label.
func (r *Registry) LookupButton(label string) (tele.HandlerFunc, bool) {
	h, ok := r.buttons[label]
	return h, ok
}

// Commands exposes the registered commands keyed by "/name".
func (r *Registry) Commands() map[string]Command { return r.commands }

// Buttons returns the registered labels in sorted order.
func (r *Registry) Buttons() []string {
	labels := make([]string, 0, len(r.buttons))
	for l := range r.buttons {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

// SetTextFallback sets the handler for text nothing else claimed.
func (r *Registry) SetTextFallback(h tele.HandlerFunc) { r.textFallback = h }

// TextFallback returns the handler set by SetTextFallback.
func (r *Registry) TextFallback() tele.HandlerFunc { return r.textFallback }

// InitBotCommands publishes the visible commands as the bot's menu.
func InitBotCommands(bot *tele.Bot, reg *Registry) {
	cmds := reg.ListCommands(true)
	if err := bot.SetCommands(cmds); err != nil {
		logger.LogEvent(context.Background(), logger.TWire, slog.LevelError, "register.commands.set_failed",
			slog.String("err", err.Error()))
		return
	}
	logger.LogEvent(context.Background(), logger.TWire, slog.LevelInfo, "register.commands.set",
		slog.Int("count", len(cmds)))
}

func slashed(name string) string {
	if strings.HasPrefix(name, "/") {
		return name
	}
	return "/" + name
}

func wireSkip(event string, attrs ...slog.Attr) {
	logger.LogEvent(context.Background(), logger.TWire, slog.LevelWarn, event, attrs...)
}
