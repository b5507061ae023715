package logger

import (
	"log/slog"
	"slices"
	"strings"
)

// outcomes is the closed set of values accepted in the outcome field.
var outcomes = []string{"ok", "fail", "reprompt", "complete", "exit", "cancelled"}

// normalizeLevel maps slog level names onto the four canonical ones.
// Offsets such as "INFO+2" are kept as slog printed them.
func normalizeLevel(level string) string {
	var l slog.Level
	if level == "" {
		return slog.LevelInfo.String()
	}
	if strings.EqualFold(level, "warning") {
		return slog.LevelWarn.String()
	}
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return strings.ToUpper(level)
	}
	return l.String()
}

// lineKeys describe the line itself and are never nested under a group.
var lineKeys = []string{"event", "component", "status", "outcome"}

func isLineKey(key string) bool {
	return slices.Contains(lineKeys, key)
}

func normalizeStatus(status string) string {
	return strings.ToLower(strings.TrimSpace(status))
}

func normalizeOutcome(outcome string) (string, bool) {
	outcome = strings.ToLower(strings.TrimSpace(outcome))
	for _, o := range outcomes {
		if o == outcome {
			return o, true
		}
	}
	return "", false
}

// defaultKeyOrder puts identity first, then calculator and assistant fields,
// then transport details and errors last.
var defaultKeyOrder = strings.Fields(`
	ts level component event status
	rid rid_full trace_id ts_unix_nano update_id user_id chat_id handler
	op button step next_step outcome duration_ms
	model memory_len tokens_approx prompt_len answer_len
	from to weight volume places total_usd
	path mode listen public_url http_code db host port
	err err_kind cause retryable attempts backoff_ms
`)
