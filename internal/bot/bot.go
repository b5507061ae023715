// Package bot wires the calculator dialogue and the assistant into Telegram
// commands, reply buttons and free text.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/m3rciful/vedbot/core/logger"
	tg "github.com/m3rciful/vedbot/core/telegram"
	tghelpers "github.com/m3rciful/vedbot/core/telegram/helpers"
	"github.com/m3rciful/vedbot/core/telegram/ui"
	"github.com/m3rciful/vedbot/internal/assistant"
	"github.com/m3rciful/vedbot/internal/rates"

	tele "gopkg.in/telebot.v4"
)

// Assistant answers questions; *assistant.Service implements it.
type Assistant interface {
	Ask(ctx context.Context, chatID int64, question string) (string, error)
	Probe(ctx context.Context) (string, error)
	ClearMemory(ctx context.Context, chatID int64) error
}

// Deps are the services the handlers use.
type Deps struct {
	Calculator *Calculator
	Assistant  Assistant
	Tariffs    *rates.File
}

// Bot holds the Telegram handlers.
type Bot struct {
	calc    *Calculator
	ai      Assistant
	tariffs *rates.File
}

var _ ui.FallbackProvider = (*Bot)(nil)

// New returns a Bot.
func New(d Deps) *Bot {
	return &Bot{calc: d.Calculator, ai: d.Assistant, tariffs: d.Tariffs}
}

// Register binds commands, menu buttons and the assistant fallback to reg.
func (b *Bot) Register(reg *tg.Registry) {
	reg.RegisterCommand("/start", tg.Command{Handler: b.handleStart, Description: "Главное меню"})
	reg.RegisterCommand("/test", tg.Command{Handler: b.handleTest, Description: "Проверить ИИ"})
	reg.RegisterCommand("/clear", tg.Command{Handler: b.handleClear, Description: "Очистить чат"})
	reg.RegisterCommand("/status", tg.Command{Handler: b.handleStatus, Description: "Статус бота"})
	reg.RegisterCommand("/rates", tg.Command{
		Handler:     b.handleRates,
		Description: "Текущие тарифы",
		AdminOnly:   true,
		Hidden:      true,
	})

	reg.RegisterButton(ButtonCalc, b.handleCalcStart)
	reg.RegisterButton(ButtonCalcAgain, b.handleCalcStart)
	reg.RegisterButton(ButtonAsk, b.handleAskIntro)

	reg.SetTextFallback(b.handleQuestion)
}

// FSM exposes the calculator to the text router.
func (b *Bot) FSM() *Calculator { return b.calc }

// UnknownText implements ui.FallbackProvider. Plain text always reaches the
// assistant fallback, so this only answers when no fallback is registered.
func (b *Bot) UnknownText() tele.HandlerFunc { return b.handleQuestion }

// UnknownMedia implements ui.FallbackProvider.
func (b *Bot) UnknownMedia() tele.HandlerFunc {
	return func(c tele.Context) error {
		return sendAll(c, plain(textMediaOnly, mainMenu()))
	}
}

// AdminReject answers non-admin callers of admin commands.
func (b *Bot) AdminReject(c tele.Context) error {
	return sendAll(c, plain(textAdminOnly, nil))
}

func (b *Bot) handleStart(c tele.Context) error {
	return sendAll(c, md(textStart, mainMenu()))
}

func (b *Bot) handleCalcStart(c tele.Context) error {
	replies, err := b.calc.Start(tghelpers.BuildContext(c), c.Chat().ID)
	if err != nil {
		return err
	}
	return sendAll(c, replies...)
}

func (b *Bot) handleAskIntro(c tele.Context) error {
	return sendAll(c, md(textAskIntro, nil))
}

func (b *Bot) handleQuestion(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	question := strings.TrimSpace(c.Text())

	if err := sendAll(c, md(textThinking, nil)); err != nil {
		return err
	}
	answer, err := b.ai.Ask(ctx, c.Chat().ID, question)
	if err != nil {
		var aerr *assistant.Error
		if errors.As(err, &aerr) {
			return sendAll(c, plain(assistant.Diagnostic(aerr), mainMenu()))
		}
		logger.AI.LogAttrs(ctx, slog.LevelError, "assistant.ask",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return sendAll(c, plain(textAskFailed, mainMenu()))
	}
	return sendAll(c, md(answer, mainMenu()))
}

func (b *Bot) handleTest(c tele.Context) error {
	if err := sendAll(c, plain(textTesting, nil)); err != nil {
		return err
	}
	answer, err := b.ai.Probe(tghelpers.BuildContext(c))
	if err != nil {
		return sendAll(c, plain(fmt.Sprintf(textTestFailed, err.Error()), nil))
	}
	return sendAll(c, md(fmt.Sprintf(textTestOK, answer), nil))
}

func (b *Bot) handleClear(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	chatID := c.Chat().ID
	if err := b.ai.ClearMemory(ctx, chatID); err != nil {
		return fmt.Errorf("clear memory: %w", err)
	}
	if err := b.calc.Cancel(ctx, chatID); err != nil {
		return err
	}
	return sendAll(c, md(textCleared, nil))
}

func (b *Bot) handleStatus(c tele.Context) error {
	return sendAll(c, md(textStatus, nil))
}

func (b *Bot) handleRates(c tele.Context) error {
	t, err := b.tariffs.Load(tghelpers.BuildContext(c))
	if err != nil {
		return sendAll(c, plain(fmt.Sprintf(textRatesFailed, err.Error()), nil))
	}
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return sendAll(c, md(fmt.Sprintf(textRates, f(t.RateTo), f(t.RateFrom), f(t.KgPerCubicMeter), b.tariffs.Path()), nil))
}
