package bot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/m3rciful/vedbot/core/logger"
	"github.com/m3rciful/vedbot/core/telegram/format"
	tghelpers "github.com/m3rciful/vedbot/core/telegram/helpers"
	"github.com/m3rciful/vedbot/core/telegram/state"
	"github.com/m3rciful/vedbot/internal/calculator"
	"github.com/m3rciful/vedbot/internal/memory"
	"github.com/m3rciful/vedbot/internal/rates"

	tele "gopkg.in/telebot.v4"
)

// TariffSource returns the current tariffs. rates.File re-reads its file on every call.
type TariffSource interface {
	Load(ctx context.Context) (rates.Tariffs, error)
}

// Calculator drives the logistics dialogue. It owns the session store and
// clears assistant memory when a dialogue starts or is abandoned.
type Calculator struct {
	sessions state.Store[calculator.Step]
	memory   memory.Store
	tariffs  TariffSource
	contact  string
}

// NewCalculator returns a Calculator.
func NewCalculator(sessions state.Store[calculator.Step], mem memory.Store, tariffs TariffSource, contact string) *Calculator {
	return &Calculator{sessions: sessions, memory: mem, tariffs: tariffs, contact: contact}
}

// InProgress reports whether chatID has a live session. Store errors count as
// no session, so the message falls through to the assistant.
func (k *Calculator) InProgress(ctx context.Context, chatID int64) bool {
	_, ok, err := k.sessions.Get(ctx, chatID)
	if err != nil {
		logger.Calc.LogAttrs(ctx, slog.LevelError, "calc.session",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return false
	}
	return ok
}

// Handle applies the message text to the chat's session.
func (k *Calculator) Handle(c tele.Context) error {
	replies, err := k.Apply(tghelpers.BuildContext(c), c.Chat().ID, c.Text())
	if err != nil {
		return err
	}
	return sendAll(c, replies...)
}

// Start forgets the chat's assistant memory and opens a fresh session.
func (k *Calculator) Start(ctx context.Context, chatID int64) ([]Reply, error) {
	if err := k.memory.Clear(ctx, chatID); err != nil {
		return nil, fmt.Errorf("clear memory: %w", err)
	}
	step := calculator.Start()
	if err := k.sessions.Put(ctx, chatID, step); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	logger.Calc.LogAttrs(ctx, slog.LevelInfo, "calc.start",
		slog.String("status", "ok"),
		slog.String("step", step.Name()),
	)
	return []Reply{prompt(step)}, nil
}

// Cancel drops the chat's session, if any.
func (k *Calculator) Cancel(ctx context.Context, chatID int64) error {
	if err := k.sessions.Delete(ctx, chatID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Apply advances the chat's session with input and returns the messages to send.
// Without a live session it returns nothing.
func (k *Calculator) Apply(ctx context.Context, chatID int64, input string) ([]Reply, error) {
	step, ok, err := k.sessions.Get(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !ok {
		return nil, nil
	}

	tr := calculator.Advance(step, input)
	attrs := []slog.Attr{
		slog.String("step", step.Name()),
		slog.String("outcome", tr.Outcome.String()),
	}
	if input == calculator.BackLabel {
		attrs = append(attrs, slog.String("button", "back"))
	}

	var replies []Reply
	switch tr.Outcome {
	case calculator.OutcomeNext:
		if err := k.sessions.Put(ctx, chatID, tr.Next); err != nil {
			return nil, fmt.Errorf("save session: %w", err)
		}
		attrs = append(attrs, slog.String("next_step", tr.Next.Name()))
		replies = []Reply{prompt(tr.Next)}

	case calculator.OutcomeReprompt:
		replies = []Reply{reprompt(step)}

	case calculator.OutcomeExit:
		if err := k.sessions.Delete(ctx, chatID); err != nil {
			return nil, fmt.Errorf("delete session: %w", err)
		}
		if err := k.memory.Clear(ctx, chatID); err != nil {
			return nil, fmt.Errorf("clear memory: %w", err)
		}
		replies = []Reply{plain(textBackToMenu, mainMenu())}

	case calculator.OutcomeComplete:
		t, err := k.tariffs.Load(ctx)
		if err != nil {
			logger.Calc.LogAttrs(ctx, slog.LevelError, "calc.tariffs",
				slog.String("status", "fail"),
				slog.String("step", step.Name()),
				slog.String("err", err.Error()),
			)
			return []Reply{plain(textTariffsUnavailable, backMenu())}, nil
		}
		cost := calculator.Compute(tr.Quote, t)
		if err := k.sessions.Delete(ctx, chatID); err != nil {
			return nil, fmt.Errorf("delete session: %w", err)
		}
		attrs = append(attrs, slog.Float64("total_usd", cost.Total))
		replies = []Reply{
			md(Summary(tr.Quote, cost), nil),
			plain(fmt.Sprintf(textContact, k.contact), afterQuoteMenu()),
		}
	}

	logger.Calc.LogAttrs(ctx, slog.LevelInfo, "calc.advance", attrs...)
	return replies, nil
}

// Summary renders a completed calculation. Locations are user text and are escaped.
func Summary(q calculator.Quote, c calculator.Cost) string {
	return fmt.Sprintf(textQuote,
		format.EscapeV1(q.From), format.EscapeV1(q.To),
		q.Weight, q.Volume, q.Places,
		c.ToManzhouli, c.FromManzhouli, c.Total,
	)
}

func prompt(step calculator.Step) Reply {
	var text string
	switch step.(type) {
	case calculator.AwaitOrigin:
		text = textPromptOrigin
	case calculator.AwaitDestination:
		text = textPromptDestination
	case calculator.AwaitWeight:
		text = textPromptWeight
	case calculator.AwaitVolume:
		text = textPromptVolume
	case calculator.AwaitPlaces:
		text = textPromptPlaces
	}
	return md(text, backMenu())
}

func reprompt(step calculator.Step) Reply {
	var text string
	switch step.(type) {
	case calculator.AwaitWeight:
		text = textBadWeight
	case calculator.AwaitVolume:
		text = textBadVolume
	default:
		text = textBadPlaces
	}
	return plain(text, backMenu())
}
