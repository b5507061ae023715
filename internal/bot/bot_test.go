package bot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tg "github.com/m3rciful/vedbot/core/telegram"
	"github.com/m3rciful/vedbot/core/telegram/format"
	"github.com/m3rciful/vedbot/internal/assistant"
	"github.com/m3rciful/vedbot/internal/calculator"
	"github.com/m3rciful/vedbot/internal/memory"
	"github.com/m3rciful/vedbot/internal/rates"

	tele "gopkg.in/telebot.v4"
)

type sent struct {
	text string
	opts *tele.SendOptions
}

// fakeContext records what handlers send.
type fakeContext struct {
	tele.Context
	text  string
	store map[string]any
	sent  []sent
}

func newContext(text string) *fakeContext {
	return &fakeContext{text: text, store: map[string]any{}}
}

func (f *fakeContext) Text() string          { return f.text }
func (f *fakeContext) Chat() *tele.Chat      { return &tele.Chat{ID: chat} }
func (f *fakeContext) Sender() *tele.User    { return &tele.User{ID: chat} }
func (f *fakeContext) Update() tele.Update   { return tele.Update{ID: 9} }
func (f *fakeContext) Get(key string) any    { return f.store[key] }
func (f *fakeContext) Set(key string, v any) { f.store[key] = v }

func (f *fakeContext) Send(what any, opts ...any) error {
	s := sent{text: what.(string)}
	if len(opts) > 0 {
		s.opts, _ = opts[0].(*tele.SendOptions)
	}
	f.sent = append(f.sent, s)
	return nil
}

func (f *fakeContext) texts() []string {
	out := make([]string, len(f.sent))
	for i, s := range f.sent {
		out[i] = s.text
	}
	return out
}

type fakeModel struct {
	answer string
	err    error
}

func (m *fakeModel) Generate(context.Context, string) (string, error) { return m.answer, m.err }

type botFixture struct {
	bot   *Bot
	calc  calcFixture
	model *fakeModel
	file  *rates.File
}

func newBotFixture(t *testing.T) botFixture {
	t.Helper()
	file := rates.NewFile(filepath.Join(t.TempDir(), "stavki-china.txt"))
	require.NoError(t, file.Seed(false))

	cf := newCalcFixture(file)
	model := &fakeModel{answer: "Да, нужен сертификат."}
	svc := assistant.New(model, cf.mem, assistant.Options{SystemPrompt: "sys", MaxMemory: 4})
	return botFixture{
		bot:   New(Deps{Calculator: cf.calc, Assistant: svc, Tariffs: file}),
		calc:  cf,
		model: model,
		file:  file,
	}
}

func TestRegister(t *testing.T) {
	f := newBotFixture(t)
	reg := tg.NewRegistry()
	f.bot.Register(reg)

	for _, cmd := range []string{"/start", "/test", "/clear", "/status", "/rates"} {
		_, _, ok := reg.LookupCommand(cmd)
		assert.True(t, ok, cmd)
	}
	assert.Equal(t, []string{ButtonCalcAgain, ButtonCalc, ButtonAsk}, reg.Buttons())
	assert.NotNil(t, reg.TextFallback())

	visible := reg.ListCommands(true)
	for _, c := range visible {
		assert.NotEqual(t, "rates", c.Text)
	}
}

func TestQuestionAnswered(t *testing.T) {
	f := newBotFixture(t)
	c := newContext("  Нужен ли сертификат?  ")

	require.NoError(t, f.bot.handleQuestion(c))
	assert.Equal(t, []string{textThinking, "Да, нужен сертификат."}, c.texts())
	assert.Equal(t, tele.ModeMarkdown, c.sent[1].opts.ParseMode)
	assert.NotNil(t, c.sent[1].opts.ReplyMarkup)

	turns, err := f.calc.mem.Get(context.Background(), chat)
	require.NoError(t, err)
	assert.Equal(t, []memory.Turn{
		{Role: memory.RoleUser, Text: "Нужен ли сертификат?"},
		{Role: memory.RoleModel, Text: "Да, нужен сертификат."},
	}, turns)
}

func TestLongAnswerSentInParts(t *testing.T) {
	f := newBotFixture(t)
	f.model.answer = strings.Repeat("Декларация соответствия ТР ТС.\n", 300)
	c := newContext("Какие документы нужны?")

	require.NoError(t, f.bot.handleQuestion(c))
	require.Greater(t, len(c.sent), 2)
	for _, s := range c.sent[1:] {
		assert.LessOrEqual(t, len([]rune(s.text)), format.MessageLimit)
	}
	assert.Nil(t, c.sent[1].opts.ReplyMarkup, "keyboard only on the last part")
	assert.NotNil(t, c.sent[len(c.sent)-1].opts.ReplyMarkup)
}

func TestQuestionFailureShowsDiagnostic(t *testing.T) {
	f := newBotFixture(t)
	f.calc.seedMemory(t)
	f.model.err = &assistant.Error{Kind: assistant.KindQuota, Message: strings.Repeat("x", 300)}
	c := newContext("вопрос")

	require.NoError(t, f.bot.handleQuestion(c))
	require.Len(t, c.sent, 2)
	assert.True(t, strings.HasPrefix(c.sent[1].text, "❌ Ошибка Gemini: "))
	assert.Empty(t, c.sent[1].opts.ParseMode)

	turns, _ := f.calc.mem.Get(context.Background(), chat)
	assert.Len(t, turns, 2, "memory unchanged after a failed call")
}

func TestClearRemovesSessionAndMemory(t *testing.T) {
	f := newBotFixture(t)
	require.NoError(t, f.bot.handleCalcStart(newContext(ButtonCalc)))
	f.calc.seedMemory(t)

	c := newContext("/clear")
	require.NoError(t, f.bot.handleClear(c))
	assert.Equal(t, []string{textCleared}, c.texts())

	_, ok := f.calc.step(t)
	assert.False(t, ok)
	turns, _ := f.calc.mem.Get(context.Background(), chat)
	assert.Empty(t, turns)
}

func TestCalculatorHandleSendsPrompt(t *testing.T) {
	f := newBotFixture(t)
	require.NoError(t, f.bot.handleCalcStart(newContext(ButtonCalc)))

	c := newContext("Гуанчжоу")
	require.NoError(t, f.bot.FSM().Handle(c))
	assert.Equal(t, []string{textPromptDestination}, c.texts())
	assert.Equal(t, calculator.BackLabel, c.sent[0].opts.ReplyMarkup.ReplyKeyboard[0][0].Text)
}

func TestProbe(t *testing.T) {
	f := newBotFixture(t)
	c := newContext("/test")
	require.NoError(t, f.bot.handleTest(c))
	assert.Equal(t, []string{textTesting, "✅ *ИИ РАБОТАЕТ!*\nДа, нужен сертификат."}, c.texts())

	f.model.err = errors.New("dial tcp: refused")
	c = newContext("/test")
	require.NoError(t, f.bot.handleTest(c))
	assert.True(t, strings.HasPrefix(c.texts()[1], "❌ "))
}

func TestRatesCommand(t *testing.T) {
	f := newBotFixture(t)
	c := newContext("/rates")
	require.NoError(t, f.bot.handleRates(c))
	require.Len(t, c.sent, 1)
	assert.Contains(t, c.sent[0].text, "До Манчжурии: 50 USD/м³")
	assert.Contains(t, c.sent[0].text, "Плотность: 300 кг/м³")

	require.NoError(t, os.WriteFile(f.file.Path(), []byte("oops"), 0o644))
	c = newContext("/rates")
	require.NoError(t, f.bot.handleRates(c))
	assert.True(t, strings.HasPrefix(c.sent[0].text, "❌ Не удалось прочитать тарифы"))
}
