// Package format holds text helpers for Telegram's legacy Markdown mode,
// the parse mode every formatted bot message uses.
package format

import "strings"

var v1Escaper = strings.NewReplacer(
	"_", `\_`,
	"*", `\*`,
	"`", "\\`",
	"[", `\[`,
)

// EscapeV1 makes user text render literally inside a legacy Markdown message.
func EscapeV1(text string) string {
	return v1Escaper.Replace(text)
}
