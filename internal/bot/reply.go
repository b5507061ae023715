package bot

import (
	"github.com/m3rciful/vedbot/core/telegram/format"
	tghelpers "github.com/m3rciful/vedbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// Reply is one outbound message.
type Reply struct {
	Text     string
	Markup   *tele.ReplyMarkup
	Markdown bool
}

func md(text string, markup *tele.ReplyMarkup) Reply {
	return Reply{Text: text, Markup: markup, Markdown: true}
}

func plain(text string, markup *tele.ReplyMarkup) Reply {
	return Reply{Text: text, Markup: markup}
}

// sendAll sends replies in order. Text over the message limit goes out in
// several messages with the keyboard on the last one.
func sendAll(c tele.Context, replies ...Reply) error {
	for _, r := range replies {
		parts := format.Split(r.Text, format.MessageLimit)
		for i, part := range parts {
			var markup *tele.ReplyMarkup
			if i == len(parts)-1 {
				markup = r.Markup
			}
			if err := send(c, r.Markdown, part, markup); err != nil {
				return err
			}
		}
	}
	return nil
}

func send(c tele.Context, markdown bool, text string, markup *tele.ReplyMarkup) error {
	if markdown {
		return tghelpers.SendMD(c, text, markup)
	}
	return tghelpers.SendText(c, text, markup)
}
