package bot

import (
	"github.com/m3rciful/vedbot/core/telegram/keyboard"
	"github.com/m3rciful/vedbot/internal/calculator"

	tele "gopkg.in/telebot.v4"
)

const menuRowWidth = 2

func mainMenu() *tele.ReplyMarkup {
	return keyboard.ReplyGrid(menuRowWidth, ButtonCalc, ButtonAsk)
}

func backMenu() *tele.ReplyMarkup {
	return keyboard.ReplyButtons([]string{calculator.BackLabel})
}

func afterQuoteMenu() *tele.ReplyMarkup {
	return keyboard.ReplyGrid(menuRowWidth, ButtonCalcAgain, ButtonAsk)
}
