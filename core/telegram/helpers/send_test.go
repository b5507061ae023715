package helpers

import (
	"errors"
	"testing"

	tele "gopkg.in/telebot.v4"
)

type fakeContext struct {
	tele.Context
	store   map[string]any
	modes   []tele.ParseMode
	failMD  error
	sendErr error
}

func newFakeContext() *fakeContext { return &fakeContext{store: map[string]any{}} }

func (f *fakeContext) Chat() *tele.Chat      { return &tele.Chat{ID: 3} }
func (f *fakeContext) Sender() *tele.User    { return &tele.User{ID: 4} }
func (f *fakeContext) Update() tele.Update   { return tele.Update{ID: 5} }
func (f *fakeContext) Get(key string) any    { return f.store[key] }
func (f *fakeContext) Set(key string, v any) { f.store[key] = v }

func (f *fakeContext) Send(_ any, opts ...any) error {
	o := opts[0].(*tele.SendOptions)
	f.modes = append(f.modes, o.ParseMode)
	if o.ParseMode == tele.ModeMarkdown && f.failMD != nil {
		return f.failMD
	}
	return f.sendErr
}

func TestSendMDFallsBackToPlainText(t *testing.T) {
	c := newFakeContext()
	c.failMD = errors.New("telegram: Bad Request: can't parse entities: Can't find end of the entity (400)")
	ResetCounters(c)

	if err := SendMD(c, "*broken", &tele.ReplyMarkup{}); err != nil {
		t.Fatal(err)
	}
	if len(c.modes) != 2 || c.modes[0] != tele.ModeMarkdown || c.modes[1] != tele.ModeDefault {
		t.Fatalf("modes = %v", c.modes)
	}
	if msgs, kb := Counters(c); msgs != 1 || !kb {
		t.Fatalf("counters = %d, %v", msgs, kb)
	}
}

func TestSendMDKeepsOtherErrors(t *testing.T) {
	c := newFakeContext()
	c.failMD = errors.New("telegram: Forbidden: bot was blocked by the user (403)")
	if err := SendMD(c, "hi"); err == nil {
		t.Fatal("expected error")
	}
	if len(c.modes) != 1 {
		t.Fatalf("unexpected resend: %v", c.modes)
	}
}

func TestSendTextCounts(t *testing.T) {
	c := newFakeContext()
	ResetCounters(c)
	_ = SendText(c, "a")
	_ = SendText(c, "b")
	if msgs, kb := Counters(c); msgs != 2 || kb {
		t.Fatalf("counters = %d, %v", msgs, kb)
	}
	if IsParseError(nil) {
		t.Fatal("nil is not a parse error")
	}
}
