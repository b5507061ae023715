// Package assistant answers free-form foreign-trade questions with a language
// model, carrying per-chat history between questions.
package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/m3rciful/vedbot/core/logger"
	"github.com/m3rciful/vedbot/internal/memory"
)

// Model generates a text completion for a prompt.
type Model interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

const (
	// PromptSuffix closes every prompt and keeps the model on topic.
	PromptSuffix = "Ответьте, учитывая контекст предыдущих сообщений и оставаясь в рамках темы ВЭД, " +
		"сертификации или логистики. Предоставляйте только фактическую информацию без рекомендаций, " +
		"советов или предложений действий."
	// ProbePrompt is sent by Probe.
	ProbePrompt = "Привет!"
)

// Options configures a Service.
type Options struct {
	SystemPrompt string
	// MaxMemory caps the stored turns per chat.
	MaxMemory int
	// Timeout bounds one model call; zero means no limit.
	Timeout time.Duration
	// ModelName is reported in logs only.
	ModelName string
}

// Service builds prompts, calls the model and maintains memory.
type Service struct {
	model  Model
	memory memory.Store
	opts   Options
}

// New returns a Service.
func New(model Model, mem memory.Store, opts Options) *Service {
	return &Service{model: model, memory: mem, opts: opts}
}

// BuildPrompt assembles the system instruction, the rendered history, the new
// question and the fixed suffix.
func BuildPrompt(system string, history []memory.Turn, question string) string {
	var b strings.Builder
	b.WriteString(system)
	b.WriteString("\n\n")
	b.WriteString(memory.Render(history))
	b.WriteString(memory.RoleUser.Label())
	b.WriteString(": ")
	b.WriteString(question)
	b.WriteString("\n\n")
	b.WriteString(PromptSuffix)
	return b.String()
}

// Ask answers question in the context of the chat history. On success the
// question and the answer are appended to memory. Model failures are returned
// as *Error and leave memory untouched.
func (s *Service) Ask(ctx context.Context, chatID int64, question string) (string, error) {
	ctx = logger.WithTrace(ctx, uuid.NewString())
	history, err := s.memory.Get(ctx, chatID)
	if err != nil {
		return "", fmt.Errorf("load memory: %w", err)
	}
	prompt := BuildPrompt(s.opts.SystemPrompt, history, question)

	start := time.Now()
	answer, err := s.generate(ctx, prompt)
	took := logger.Took(start)
	if err != nil {
		aerr := AsError(err)
		logger.AI.LogAttrs(ctx, slog.LevelWarn, "assistant.ask",
			slog.String("status", "fail"),
			slog.String("model", s.opts.ModelName),
			slog.Int("memory_len", len(history)),
			slog.Int("prompt_len", utf8.RuneCountInString(prompt)),
			slog.Duration("duration", took),
			slog.String("err_kind", string(aerr.Kind)),
			slog.String("err", logger.SanitizeLimit(aerr.Error(), 256)),
		)
		return "", aerr
	}

	turns := []memory.Turn{
		{Role: memory.RoleUser, Text: question},
		{Role: memory.RoleModel, Text: answer},
	}
	if err := s.memory.Append(ctx, chatID, s.opts.MaxMemory, turns...); err != nil {
		logger.AI.LogAttrs(ctx, slog.LevelError, "assistant.memory",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
	}

	kept := memory.Trim(append(history, turns...), s.opts.MaxMemory)
	logger.AI.LogAttrs(ctx, slog.LevelInfo, "assistant.ask",
		slog.String("status", "ok"),
		slog.String("model", s.opts.ModelName),
		slog.Int("memory_len", len(kept)),
		slog.Int("tokens_approx", memory.ApproxTokens(kept)),
		slog.Int("prompt_len", utf8.RuneCountInString(prompt)),
		slog.Int("answer_len", utf8.RuneCountInString(answer)),
		slog.Duration("duration", took),
	)
	return answer, nil
}

// Probe sends ProbePrompt without history to check the model is reachable.
func (s *Service) Probe(ctx context.Context) (string, error) {
	ctx = logger.WithTrace(ctx, uuid.NewString())
	start := time.Now()
	answer, err := s.generate(ctx, ProbePrompt)
	if err != nil {
		aerr := AsError(err)
		logger.AI.LogAttrs(ctx, slog.LevelWarn, "assistant.probe",
			slog.String("status", "fail"),
			slog.String("model", s.opts.ModelName),
			slog.String("err_kind", string(aerr.Kind)),
			slog.String("err", logger.SanitizeLimit(aerr.Error(), 256)),
		)
		return "", aerr
	}
	logger.AI.LogAttrs(ctx, slog.LevelInfo, "assistant.probe",
		slog.String("status", "ok"),
		slog.String("model", s.opts.ModelName),
		slog.Duration("duration", logger.Took(start)),
	)
	return answer, nil
}

// ClearMemory forgets the chat history.
func (s *Service) ClearMemory(ctx context.Context, chatID int64) error {
	return s.memory.Clear(ctx, chatID)
}

func (s *Service) generate(ctx context.Context, prompt string) (string, error) {
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}
	answer, err := s.model.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(answer) == "" {
		return "", &Error{Kind: KindMalformed, Message: "empty response"}
	}
	return answer, nil
}
