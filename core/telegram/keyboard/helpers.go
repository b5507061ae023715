package keyboard

import tele "gopkg.in/telebot.v4"

// ReplyButtons builds a resizable reply keyboard from rows of text.
func ReplyButtons(rows ...[]string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{ResizeKeyboard: true}
	keyboard := make([]tele.Row, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tele.Btn, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, markup.Text(label))
		}
		keyboard = append(keyboard, markup.Row(buttons...))
	}
	markup.Reply(keyboard...)
	return markup
}

// ReplyGrid lays labels out left to right with up to rowWidth buttons per row.
func ReplyGrid(rowWidth int, labels ...string) *tele.ReplyMarkup {
	return ReplyButtons(ChunkLabels(labels, rowWidth)...)
}

// ChunkLabels splits labels into rows with up to n labels per row.
// If n <= 1, each label gets its own row.
func ChunkLabels(labels []string, n int) [][]string {
	if n < 1 {
		n = 1
	}
	rows := make([][]string, 0, (len(labels)+n-1)/n)
	for i := 0; i < len(labels); i += n {
		rows = append(rows, labels[i:min(i+n, len(labels))])
	}
	return rows
}
