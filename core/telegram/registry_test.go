package telegram

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

func noop(tele.Context) error { return nil }

func TestRegistryCommands(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("/start", Command{Handler: noop, Description: "Меню"})
	reg.RegisterCommand("/clear", Command{Handler: noop, Description: "Очистить"})
	reg.RegisterCommand("/rates", Command{Handler: noop, Description: "Тарифы", AdminOnly: true, Hidden: true})
	reg.RegisterCommand("status", Command{Handler: noop, Description: "no slash"})
	reg.RegisterCommand("/empty", Command{Handler: noop})

	if n := len(reg.Commands()); n != 3 {
		t.Fatalf("commands = %d, want 3", n)
	}

	visible := reg.ListCommands(true)
	if len(visible) != 2 || visible[0].Text != "clear" || visible[1].Text != "start" {
		t.Fatalf("visible commands = %+v", visible)
	}
	if all := reg.ListCommands(false); len(all) != 3 {
		t.Fatalf("all commands = %+v", all)
	}

	reg.RegisterCommand("/clear", Command{Handler: noop, Description: "again"})
	if _, cmd, _ := reg.LookupCommand("/clear"); cmd.Description != "Очистить" {
		t.Fatalf("duplicate registration replaced command: %+v", cmd)
	}
	if key, _, ok := reg.LookupCommand("start"); !ok || key != "/start" {
		t.Fatalf("bare lookup = %q, %v", key, ok)
	}
	if _, _, ok := reg.LookupCommand("/missing"); ok {
		t.Fatal("unexpected match for /missing")
	}
}

func TestRegistryButtons(t *testing.T) {
	reg := NewRegistry()
	called := ""
	reg.RegisterButton("🚚 Расчет логистики", func(tele.Context) error { called = "calc"; return nil })
	reg.RegisterButton("🚚 Расчет логистики", func(tele.Context) error { called = "dup"; return nil })
	reg.RegisterButton("", noop)

	h, ok := reg.LookupButton("🚚 Расчет логистики")
	if !ok {
		t.Fatal("button not found")
	}
	_ = h(nil)
	if called != "calc" {
		t.Fatalf("duplicate registration replaced handler: %s", called)
	}
	if _, ok := reg.LookupButton("🚚 расчет логистики"); ok {
		t.Fatal("labels must match exactly")
	}
	if got := reg.Buttons(); len(got) != 1 {
		t.Fatalf("buttons = %v", got)
	}
}
