package view

import (
	"fmt"
	"html"
	"strings"

	"github.com/IT-Nick/exambot/internal/domain/attempts"
	"github.com/IT-Nick/exambot/internal/domain/model"
	"github.com/IT-Nick/exambot/internal/infra/timer"
	"gopkg.in/telebot.v4"
)

const paletteColumns = 5

// PalettePageSize - вопросов на одной странице палитры (Telegram ограничивает число кнопок)
const PalettePageSize = 40

// StatusIcon - значок вопроса в палитре
func StatusIcon(status attempts.Status) string {
	switch status {
	case attempts.StatusMarked:
		return "🔖"
	case attempts.StatusAnswered:
		return "✅"
	default:
		return "⬜"
	}
}

// QuestionScreen - текущий вопрос попытки с вариантами и навигацией
func QuestionScreen(s attempts.Snapshot) (string, *telebot.ReplyMarkup) {
	q := s.CurrentQuestion()
	answer := s.Answers[q.ID]
	total := len(s.Questions)

	var b strings.Builder
	fmt.Fprintf(&b, "📝 <b>%s</b>\n", html.EscapeString(s.TestName))
	fmt.Fprintf(&b, "Вопрос %d/%d · ⏰ %s", s.Current+1, total, timer.FormatClock(s.Remaining))
	if answer.Marked {
		b.WriteString(" · 🔖")
	}
	b.WriteString("\n")
	if q.Section != "" {
		fmt.Fprintf(&b, "<i>%s</i>\n", html.EscapeString(q.Section))
	}
	fmt.Fprintf(&b, "\n%s\n\n", html.EscapeString(q.QuestionText))

	for _, o := range model.Options {
		text := q.OptionText(o)
		if text == "" {
			continue
		}
		prefix := "▫️"
		if answer.Selected == o {
			prefix = "✅"
		}
		fmt.Fprintf(&b, "%s <b>%s)</b> %s\n", prefix, o, html.EscapeString(text))
	}

	if s.CountdownState == attempts.CountdownExpired && s.Phase == attempts.PhaseActive {
		b.WriteString("\n⏰ Время вышло. Нажмите «Завершить», чтобы отправить ответы.")
	}
	if s.LastErr != nil {
		fmt.Fprintf(&b, "\n⚠️ Ответы не отправлены: %s", ErrorHTML(s.LastErr))
	}

	markup := &telebot.ReplyMarkup{}
	var options []telebot.Btn
	for _, o := range model.Options {
		if q.OptionText(o) == "" {
			continue
		}
		label := string(o)
		if answer.Selected == o {
			label = "✅ " + label
		}
		options = append(options, markup.Data(label, data(AnswerPrefix, q.ID, string(o))))
	}

	markLabel := "🔖 Отметить"
	if answer.Marked {
		markLabel = "🔖 Снять отметку"
	}

	nav := make([]telebot.Btn, 0, 3)
	if s.Current > 0 {
		nav = append(nav, markup.Data("◀️", data(NavPrefix, s.Current-1)))
	}
	nav = append(nav, markup.Data(fmt.Sprintf("🔢 %d/%d", s.Current+1, total), data(PalettePrefix, s.Current/PalettePageSize)))
	if s.Current < total-1 {
		nav = append(nav, markup.Data("▶️", data(NavPrefix, s.Current+1)))
	}

	rows := make([]telebot.Row, 0, 4)
	// после истечения времени ответы не меняются, остается навигация и отправка
	if s.CountdownState != attempts.CountdownExpired {
		rows = append(rows,
			markup.Row(options...),
			markup.Row(markup.Data(markLabel, data(MarkPrefix, q.ID))),
		)
	}
	rows = append(rows,
		markup.Row(nav...),
		markup.Row(markup.Data("📤 Завершить", SubmitData)),
	)
	markup.Inline(rows...)
	return truncate(b.String(), maxMessage), markup
}

// Palette - сетка вопросов со статусами, одна страница
func Palette(s attempts.Snapshot, page int) (string, *telebot.ReplyMarkup) {
	total := len(s.Questions)
	pages := (total + PalettePageSize - 1) / PalettePageSize
	if page < 0 || page >= pages {
		page = 0
	}

	answered, marked := s.Answers.Counts()
	text := fmt.Sprintf("🔢 <b>Вопросы</b>\n✅ отвечено: %d · 🔖 отмечено: %d · ⬜ без ответа: %d\n⏰ %s",
		answered, marked, total-answered, timer.FormatClock(s.Remaining))

	markup := &telebot.ReplyMarkup{}
	var rows []telebot.Row
	var row []telebot.Btn
	from := page * PalettePageSize
	to := min(from+PalettePageSize, total)
	for i := from; i < to; i++ {
		q := s.Questions[i]
		label := fmt.Sprintf("%s%d", StatusIcon(s.Answers[q.ID].Status()), i+1)
		if i == s.Current {
			label = "[" + label + "]"
		}
		row = append(row, markup.Data(label, data(NavPrefix, i)))
		if len(row) == paletteColumns {
			rows = append(rows, markup.Row(row...))
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, markup.Row(row...))
	}

	if pages > 1 {
		var pager []telebot.Btn
		if page > 0 {
			pager = append(pager, markup.Data("◀️ Назад", data(PalettePrefix, page-1)))
		}
		if page < pages-1 {
			pager = append(pager, markup.Data("Далее ▶️", data(PalettePrefix, page+1)))
		}
		rows = append(rows, markup.Row(pager...))
	}
	rows = append(rows, markup.Row(
		markup.Data("↩️ К вопросу", data(NavPrefix, s.Current)),
		markup.Data("📤 Завершить", SubmitData),
	))

	markup.Inline(rows...)
	return text, markup
}

// SubmitConfirm - подтверждение отправки с числом отвеченных вопросов
func SubmitConfirm(s attempts.Snapshot, template string) (string, *telebot.ReplyMarkup) {
	answered, marked := s.Answers.Counts()
	text := html.EscapeString(fmt.Sprintf(template, answered, len(s.Questions)))
	if marked > 0 {
		text += fmt.Sprintf("\n🔖 Отмечено: %d. После отправки нужно будет указать причины.", marked)
	}

	markup := &telebot.ReplyMarkup{}
	markup.Inline(markup.Row(
		markup.Data("✅ Отправить", SubmitYesData),
		markup.Data("↩️ Вернуться", SubmitNoData),
	))
	return text, markup
}
