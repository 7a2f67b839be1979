package view

import (
	"fmt"
	"html"
	"strings"

	"github.com/IT-Nick/exambot/internal/domain/attempts"
	"github.com/IT-Nick/exambot/internal/domain/model"
	"gopkg.in/telebot.v4"
)

// ReasonLabel - подпись причины на кнопке
func ReasonLabel(reason model.Reason) string {
	switch reason {
	case model.ReasonGuess:
		return "🎲 Угадал"
	case model.ReasonTimePressure:
		return "⏱ Не хватило времени"
	case model.ReasonConceptError:
		return "📖 Не знаю тему"
	}
	return string(reason)
}

// FirstPending - индекс первого вопроса без причины, иначе 0
func FirstPending(flow *attempts.ReviewFlow) int {
	for i, q := range flow.Questions() {
		if _, ok := flow.Reason(q.ID); !ok {
			return i
		}
	}
	return 0
}

// ReviewScreen - сбор причин: список отмеченных вопросов и выбор причины для одного из них
func ReviewScreen(flow *attempts.ReviewFlow, index int, intro string) (string, *telebot.ReplyMarkup) {
	questions := flow.Questions()
	if index < 0 || index >= len(questions) {
		index = 0
	}
	done, total := flow.Progress()
	sid := flow.SubmissionID()

	var b strings.Builder
	fmt.Fprintf(&b, "🔖 <b>%s</b>\nГотово: %d из %d\n\n", html.EscapeString(intro), done, total)
	for i, q := range questions {
		mark := "▫️"
		if reason, ok := flow.Reason(q.ID); ok {
			mark = ReasonLabel(reason)
		}
		pointer := ""
		if i == index {
			pointer = "👉 "
		}
		fmt.Fprintf(&b, "%s%d. %s · %s\n", pointer, i+1, html.EscapeString(truncate(q.QuestionText, 60)), mark)
	}
	current := questions[index]
	fmt.Fprintf(&b, "\n<b>Вопрос %d:</b> %s", index+1, html.EscapeString(truncate(current.QuestionText, 1000)))

	markup := &telebot.ReplyMarkup{}
	reasons := make([]telebot.Row, 0, len(model.Reasons))
	selected, _ := flow.Reason(current.ID)
	for _, reason := range model.Reasons {
		label := ReasonLabel(reason)
		if reason == selected {
			label = "✅ " + label
		}
		reasons = append(reasons, markup.Row(markup.Data(label, data(ReasonPrefix, sid, current.ID, string(reason)))))
	}

	var nav []telebot.Btn
	if index > 0 {
		nav = append(nav, markup.Data("◀️", data(ReviewPrefix, sid, index-1)))
	}
	if index < len(questions)-1 {
		nav = append(nav, markup.Data("▶️", data(ReviewPrefix, sid, index+1)))
	}
	rows := reasons
	if len(nav) > 0 {
		rows = append(rows, markup.Row(nav...))
	}

	finish := "💾 Сохранить причины"
	if done < total {
		finish = fmt.Sprintf("💾 Сохранить (%d/%d)", done, total)
	}
	rows = append(rows, markup.Row(markup.Data(finish, data(FinalizePrefix, sid))))

	markup.Inline(rows...)
	return truncate(b.String(), maxMessage), markup
}
