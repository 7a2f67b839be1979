package view

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"github.com/IT-Nick/exambot/internal/domain/model"
	"gopkg.in/telebot.v4"
)

// ResultsScreen - итог попытки. Все числа считает сервер.
func ResultsScreen(result *model.SubmissionResult) (string, *telebot.ReplyMarkup) {
	var b strings.Builder
	fmt.Fprintf(&b, "🏁 <b>%s</b>\n\n", html.EscapeString(result.TestCard.Name))
	fmt.Fprintf(&b, "Баллы: <b>%.2f</b>\n", result.Score)
	fmt.Fprintf(&b, "Процент: <b>%.1f%%</b> · %s\n", result.Percentage, model.Grade(result.Percentage))
	fmt.Fprintf(&b, "Точность: %.1f%%\n", result.PerformanceAnalysis.Accuracy)

	correct, wrong, skipped := 0, 0, 0
	for _, a := range result.Answers {
		switch {
		case a.SelectedOption == nil:
			skipped++
		case a.IsCorrect:
			correct++
		default:
			wrong++
		}
	}
	fmt.Fprintf(&b, "✅ %d · ❌ %d · ⬜ %d\n", correct, wrong, skipped)

	writeBreakdown(&b, "По разделам", result.PerformanceAnalysis.BySection)
	writeBreakdown(&b, "По сложности", result.PerformanceAnalysis.ByDifficulty)

	markup := &telebot.ReplyMarkup{}
	markup.Inline(
		markup.Row(markup.Data("📄 Отчет PDF", data(PDFPrefix, result.ID))),
		markup.Row(markup.Data("📚 К экзаменам", MenuPrefix+model.ExamsButtonKey)),
	)
	return truncate(b.String(), maxMessage), markup
}

func writeBreakdown(b *strings.Builder, title string, items map[string]model.Breakdown) {
	if len(items) == 0 {
		return
	}
	keys := make([]string, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(b, "\n<b>%s:</b>\n", title)
	for _, k := range keys {
		item := items[k]
		fmt.Fprintf(b, "• %s: %d/%d (%.1f%%)\n", html.EscapeString(k), item.Correct, item.Total, item.Percentage)
	}
}

// MyResultsScreen - история попыток
func MyResultsScreen(results []model.MyResult, empty string) (string, *telebot.ReplyMarkup) {
	if len(results) == 0 {
		return html.EscapeString(empty), nil
	}

	var b strings.Builder
	b.WriteString("📊 <b>Мои результаты</b>\n\n")
	markup := &telebot.ReplyMarkup{}
	var rows []telebot.Row
	for i, r := range results {
		if i >= 20 {
			break
		}
		finished := ""
		if r.FinishedAt != nil {
			finished = r.FinishedAt.Format("02.01.2006")
		}
		fmt.Fprintf(&b, "%d. %s · %.1f%% · %s\n", i+1, html.EscapeString(r.TestName), r.Percentage, finished)
		rows = append(rows, markup.Row(markup.Data(fmt.Sprintf("%d. %s", i+1, truncate(r.TestName, 30)), data(ResultPrefix, r.ID))))
	}
	markup.Inline(rows...)
	return b.String(), markup
}
