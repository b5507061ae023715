package router

import (
	"context"
	"errors"
	"testing"

	tg "github.com/m3rciful/vedbot/core/telegram"

	tele "gopkg.in/telebot.v4"
)

// fakeContext implements the parts of tele.Context the routes touch.
type fakeContext struct {
	tele.Context
	text  string
	chat  *tele.Chat
	store map[string]any
}

func newFakeContext(text string) *fakeContext {
	return &fakeContext{text: text, chat: &tele.Chat{ID: 42}, store: map[string]any{}}
}

func (f *fakeContext) Text() string          { return f.text }
func (f *fakeContext) Chat() *tele.Chat      { return f.chat }
func (f *fakeContext) Sender() *tele.User    { return &tele.User{ID: 7} }
func (f *fakeContext) Update() tele.Update   { return tele.Update{ID: 1} }
func (f *fakeContext) Get(key string) any    { return f.store[key] }
func (f *fakeContext) Set(key string, v any) { f.store[key] = v }

type fakeFSM struct {
	active  bool
	handled int
}

func (f *fakeFSM) InProgress(context.Context, int64) bool { return f.active }
func (f *fakeFSM) Handle(tele.Context) error              { f.handled++; return nil }

func textHandler(t *testing.T, routes []tg.Route) tele.HandlerFunc {
	t.Helper()
	for _, r := range routes {
		if r.Endpoint == tele.OnText {
			return r.Handler
		}
	}
	t.Fatal("no OnText route")
	return nil
}

func TestTextRoutesPriority(t *testing.T) {
	var hits []string
	record := func(name string) tele.HandlerFunc {
		return func(tele.Context) error { hits = append(hits, name); return nil }
	}

	reg := tg.NewRegistry()
	reg.RegisterCommand("/clear", tg.Command{Handler: record("clear"), Description: "c"})
	reg.RegisterCommand("/rates", tg.Command{Handler: record("rates"), Description: "r", AdminOnly: true})
	reg.RegisterButton("🚚 Расчет логистики", record("calc"))
	reg.SetTextFallback(record("assistant"))

	fsm := &fakeFSM{active: true}
	h := textHandler(t, TextRoutes(fsm, reg, TextOptions{}))

	for _, in := range []string{"/clear", "🚚 Расчет логистики", "Москва", "/rates", "clear"} {
		if err := h(newFakeContext(in)); err != nil {
			t.Fatalf("%q: %v", in, err)
		}
	}
	want := []string{"clear", "calc"}
	if len(hits) != len(want) || hits[0] != want[0] || hits[1] != want[1] {
		t.Fatalf("hits = %v, want %v", hits, want)
	}
	if fsm.handled != 3 {
		t.Fatalf("fsm handled %d, want 3 (text, admin command and bare command word)", fsm.handled)
	}

	fsm.active = false
	_ = h(newFakeContext("Какие документы нужны?"))
	if hits[len(hits)-1] != "assistant" {
		t.Fatalf("fallback not reached: %v", hits)
	}
}

func TestTextRoutesUnknownText(t *testing.T) {
	called := false
	h := textHandler(t, TextRoutes(nil, nil, TextOptions{
		UnknownText: func(tele.Context) error { called = true; return errors.New("send failed") },
	}))
	if err := h(newFakeContext("hi")); err == nil || !called {
		t.Fatalf("err = %v, called = %v", err, called)
	}
}

func TestCommandRoutesGuardAdmin(t *testing.T) {
	reg := tg.NewRegistry()
	ran := false
	rejected := false
	reg.RegisterCommand("/rates", tg.Command{Handler: func(tele.Context) error { ran = true; return nil }, Description: "r", AdminOnly: true})

	routes := CommandRoutes(reg, CommandRouteOptions{
		AdminID:       99,
		OnAdminReject: func(tele.Context) error { rejected = true; return nil },
	})
	if len(routes) != 1 || routes[0].Endpoint != "/rates" {
		t.Fatalf("routes = %+v", routes)
	}
	if err := routes[0].Handler(newFakeContext("/rates")); err != nil {
		t.Fatal(err)
	}
	if ran || !rejected {
		t.Fatalf("ran = %v, rejected = %v", ran, rejected)
	}
}

type codedErr struct{}

func (codedErr) Error() string { return "x" }
func (codedErr) Code() string  { return "rates unavailable" }

type plainErr struct{}

func (*plainErr) Error() string { return "y" }

func TestDeriveErrorCode(t *testing.T) {
	if got := deriveErrorCode(codedErr{}); got != "RATES_UNAVAILABLE" {
		t.Fatalf("coded = %q", got)
	}
	if got := deriveErrorCode(&plainErr{}); got != "PLAINERR" {
		t.Fatalf("plain = %q", got)
	}
	if got := deriveErrorCode(errors.New("z")); got != "ERRORSTRING" {
		t.Fatalf("errors.New = %q", got)
	}
	if got := normalizeHandlerName("/Start "); got != "start" {
		t.Fatalf("name = %q", got)
	}
}
