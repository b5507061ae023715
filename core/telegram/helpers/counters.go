package helpers

import tele "gopkg.in/telebot.v4"

const (
	keyMessages = "messages"
	keyKeyboard = "kb"
)

// ResetCounters zeroes the message counters of the current update.
func ResetCounters(c tele.Context) {
	c.Set(keyMessages, 0)
	c.Set(keyKeyboard, false)
}

// Counters returns how many messages were queued for the current update and
// whether any of them carried a keyboard.
func Counters(c tele.Context) (int, bool) {
	msgs, _ := c.Get(keyMessages).(int)
	kb, _ := c.Get(keyKeyboard).(bool)
	return msgs, kb
}

func markSent(c tele.Context, opts *tele.SendOptions) {
	n, _ := c.Get(keyMessages).(int)
	c.Set(keyMessages, n+1)
	if opts != nil && opts.ReplyMarkup != nil {
		c.Set(keyKeyboard, true)
	}
}
