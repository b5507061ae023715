package format

import (
	"strings"
	"unicode/utf8"
)

// MessageLimit is the longest text sent in one message. Telegram allows 4096
// UTF-16 units; emoji take two, so the limit stays below that.
const MessageLimit = 4000

// Split cuts text into pieces of at most limit runes. A piece ends at the last
// line break, or failing that the last space, in its second half; otherwise
// the text is cut mid-word.
func Split(text string, limit int) []string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}
	var parts []string
	rest := []rune(text)
	for len(rest) > limit {
		cut := breakAt(rest[:limit])
		if part := strings.TrimRight(string(rest[:cut]), " \n"); part != "" {
			parts = append(parts, part)
		}
		rest = rest[cut:]
	}
	if tail := strings.TrimSpace(string(rest)); tail != "" {
		parts = append(parts, string(rest))
	}
	return parts
}

func breakAt(window []rune) int {
	for _, sep := range []rune{'\n', ' '} {
		for i := len(window) - 1; i >= len(window)/2; i-- {
			if window[i] == sep {
				return i + 1
			}
		}
	}
	return len(window)
}
