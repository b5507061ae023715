package format

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitShortText(t *testing.T) {
	if got := Split("Привет", 10); len(got) != 1 || got[0] != "Привет" {
		t.Fatalf("Split = %q", got)
	}
	if got := Split("", MessageLimit); len(got) != 1 {
		t.Fatalf("empty text must stay one message, got %q", got)
	}
}

func TestSplitPrefersLineBreaks(t *testing.T) {
	text := "Сертификат ЕАЭС\nДекларация о соответствии\nОтказное письмо"
	got := Split(text, 30)
	want := []string{"Сертификат ЕАЭС", "Декларация о соответствии", "Отказное письмо"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("Split = %q, want %q", got, want)
	}
}

func TestSplitRespectsLimit(t *testing.T) {
	text := strings.Repeat("таможня ", 1200) + strings.Repeat("я", 5000)
	parts := Split(text, MessageLimit)
	if len(parts) < 3 {
		t.Fatalf("parts = %d", len(parts))
	}
	total := 0
	for i, p := range parts {
		n := utf8.RuneCountInString(p)
		if n == 0 || n > MessageLimit {
			t.Fatalf("part %d has %d runes", i, n)
		}
		total += utf8.RuneCountInString(strings.TrimSpace(p))
	}
	if want := utf8.RuneCountInString(strings.ReplaceAll(text, " ", "")); total < want {
		t.Fatalf("lost text: %d runes kept, want at least %d", total, want)
	}
}
