package router

import (
	"context"
	"log/slog"
	"sort"

	"github.com/m3rciful/vedbot/core/logger"
	tg "github.com/m3rciful/vedbot/core/telegram"
	"github.com/m3rciful/vedbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CommandRouteOptions configures the admin guard.
type CommandRouteOptions struct {
	AdminID       int64
	OnAdminReject tele.HandlerFunc
}

// CommandRoutes returns one route per registered command, in name order.
// Admin-only commands get the admin guard in front of the summary wrapper.
func CommandRoutes(reg *tg.Registry, opts CommandRouteOptions) []tg.Route {
	if reg == nil {
		return nil
	}
	guard := middleware.AdminOnlyMiddleware(middleware.AdminOptions{
		AdminID:  opts.AdminID,
		OnReject: opts.OnAdminReject,
	})

	cmds := reg.Commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)

	routes := make([]tg.Route, 0, len(names))
	for _, name := range names {
		def := cmds[name]
		h := summarized(normalizeHandlerName(name), def.Handler)
		if def.AdminOnly {
			h = guard(h)
		}
		routes = append(routes, tg.Route{Endpoint: name, Handler: h})
	}

	logger.LogEvent(context.Background(), logger.TWire, slog.LevelInfo, "complete",
		slog.Int("commands", len(routes)),
		slog.Int("buttons", len(reg.Buttons())),
	)
	return routes
}
