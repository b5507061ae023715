package assistant

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"
)

// Kind classifies a failed model call.
type Kind string

const (
	// KindTransport covers network failures and timeouts before a response arrived.
	KindTransport Kind = "transport"
	// KindQuota covers rate limits and exhausted quotas.
	KindQuota Kind = "quota"
	// KindMalformed covers responses without usable text.
	KindMalformed Kind = "malformed"
	// KindUpstream covers every other error reported by the model API.
	KindUpstream Kind = "upstream"
)

// Error is returned by Service when the model call fails.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// AsError converts any model error into *Error. Errors that are already typed
// pass through; context expiry maps to KindTransport, the rest to KindUpstream.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &Error{Kind: KindTransport, Err: err}
	}
	return &Error{Kind: KindUpstream, Err: err}
}

// DiagnosticLimit bounds the error text shown to users, in runes.
const DiagnosticLimit = 100

// Diagnostic renders err for the chat: a fixed prefix plus at most
// DiagnosticLimit runes of the error text.
func Diagnostic(err error) string {
	msg := "unknown error"
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	if utf8.RuneCountInString(msg) > DiagnosticLimit {
		msg = string([]rune(msg)[:DiagnosticLimit])
	}
	return "❌ Ошибка Gemini: " + msg
}
