package view

import (
	"fmt"
	"html"
	"strings"

	"github.com/IT-Nick/exambot/internal/domain/model"
	"gopkg.in/telebot.v4"
)

// MainMenu - кнопки главного меню по две в ряд
func MainMenu(buttons map[string]string) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	var rows []telebot.Row
	var row []telebot.Btn
	for _, key := range model.MenuButtons {
		text, ok := buttons[key]
		if !ok {
			continue
		}
		row = append(row, markup.Data(text, MenuPrefix+key))
		if len(row) == 2 {
			rows = append(rows, markup.Row(row...))
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, markup.Row(row...))
	}
	markup.Inline(rows...)
	return markup
}

// ExamsScreen - список экзаменов
func ExamsScreen(exams []model.Exam) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	rows := make([]telebot.Row, 0, len(exams))
	for _, e := range exams {
		rows = append(rows, markup.Row(markup.Data("📚 "+e.Name, data(ExamPrefix, e.ID))))
	}
	markup.Inline(rows...)
	return markup
}

// SubExamsScreen - разделы экзамена
func SubExamsScreen(subExams []model.SubExam) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	rows := make([]telebot.Row, 0, len(subExams)+1)
	for _, s := range subExams {
		rows = append(rows, markup.Row(markup.Data("📂 "+s.Name, data(SectionPrefix, s.ID))))
	}
	rows = append(rows, markup.Row(markup.Data("↩️ К экзаменам", MenuPrefix+model.ExamsButtonKey)))
	markup.Inline(rows...)
	return markup
}

// TestCardsScreen - тесты раздела. Пройденные помечены полученными баллами.
func TestCardsScreen(cards []model.TestCard) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	rows := make([]telebot.Row, 0, len(cards)+1)
	for _, c := range cards {
		label := fmt.Sprintf("📝 %s · %d мин", c.Name, c.DurationMinutes)
		if c.RewardPointsEarned != nil {
			label = fmt.Sprintf("✅ %s · +%d", c.Name, *c.RewardPointsEarned)
		}
		rows = append(rows, markup.Row(markup.Data(label, data(CardPrefix, c.ID))))
	}
	rows = append(rows, markup.Row(markup.Data("↩️ К экзаменам", MenuPrefix+model.ExamsButtonKey)))
	markup.Inline(rows...)
	return markup
}

// FullTestsScreen - полные тесты по разделам
func FullTestsScreen(groups []model.SubExamWithTests) (string, *telebot.ReplyMarkup) {
	var b strings.Builder
	b.WriteString("🔒 <b>Полные тесты</b>\n")

	markup := &telebot.ReplyMarkup{}
	var rows []telebot.Row
	for _, g := range groups {
		if len(g.FullLengthTests) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n<b>%s</b>\n", html.EscapeString(g.Name))
		for _, t := range g.FullLengthTests {
			fmt.Fprintf(&b, "• %s · %d вопросов · %d мин · %d баллов\n",
				html.EscapeString(t.Name), t.QuestionCount, t.DurationMinutes, t.PricePoints)
			rows = append(rows, markup.Row(markup.Data("🔒 "+t.Name, data(FullTestPrefix, t.ID))))
		}
	}
	markup.Inline(rows...)
	return truncate(b.String(), maxMessage), markup
}

// UnlockConfirm - предложение открыть тест за баллы
func UnlockConfirm(cardID model.ID) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	markup.Inline(
		markup.Row(markup.Data("🔓 Открыть", data(UnlockPrefix, cardID))),
		markup.Row(markup.Data("↩️ Назад", MenuPrefix+model.FullTestsButtonKey)),
	)
	return markup
}

// ProfileScreen - профиль пользователя
func ProfileScreen(p *model.UserProfile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "👤 <b>%s</b>\n", html.EscapeString(p.Username))
	if p.Email != "" {
		fmt.Fprintf(&b, "%s\n", html.EscapeString(p.Email))
	}
	fmt.Fprintf(&b, "\n🏆 Баллы: %d\n🔥 Серия: %d дн.\n", p.RewardPoints, p.CurrentStreak)
	fmt.Fprintf(&b, "Сегодня: %d тестов, средний результат %.1f%%\n", p.CompletedTestsToday, p.AverageScoreToday)
	switch {
	case p.HasActiveSubscription && p.SubscriptionEndDate != nil:
		fmt.Fprintf(&b, "💳 Подписка до %s\n", html.EscapeString(*p.SubscriptionEndDate))
	case p.HasActiveSubscription:
		b.WriteString("💳 Подписка активна\n")
	default:
		b.WriteString("💳 Подписки нет: /plans\n")
	}
	return b.String()
}

// PerformanceScreen - сводка успеваемости с выбором периода
func PerformanceScreen(hub *model.PerformanceHub, filter string) (string, *telebot.ReplyMarkup) {
	var b strings.Builder
	qs := hub.QuickStats
	fmt.Fprintf(&b, "📈 <b>Успеваемость</b> (%s)\n\n", periodLabel(filter))
	fmt.Fprintf(&b, "Тестов: %d · Средний балл: %.1f%%\nТочность: %.1f%% · Серия: %d дн.\n",
		qs.TotalTestsCompleted, qs.AvgScore, qs.Accuracy, qs.StudyStreak)

	if len(hub.SubjectPerformance) > 0 {
		b.WriteString("\n<b>По разделам:</b>\n")
		for _, s := range hub.SubjectPerformance {
			fmt.Fprintf(&b, "• %s: %.1f%% (%d тестов)\n", html.EscapeString(s.SubExamName), s.Score, s.Tests)
		}
	}
	if len(hub.QuestionAnalysis) > 0 {
		b.WriteString("\n<b>По темам:</b>\n")
		for i, t := range hub.QuestionAnalysis {
			if i >= 15 {
				break
			}
			fmt.Fprintf(&b, "• %s: ✅ %d · ❌ %d · ⬜ %d\n", html.EscapeString(t.Topic), t.Correct, t.Wrong, t.Skipped)
		}
	}
	if len(hub.Achievements) > 0 {
		b.WriteString("\n🏅 " + html.EscapeString(strings.Join(hub.Achievements, ", ")) + "\n")
	}

	markup := &telebot.ReplyMarkup{}
	buttons := make([]telebot.Btn, 0, 3)
	for _, f := range []string{"all", "7d", "30d"} {
		label := periodLabel(f)
		if f == filter {
			label = "• " + label
		}
		buttons = append(buttons, markup.Data(label, PerformancePrefix+f))
	}
	markup.Inline(markup.Row(buttons...))
	return truncate(b.String(), maxMessage), markup
}

func periodLabel(filter string) string {
	switch filter {
	case "7d":
		return "7 дней"
	case "30d":
		return "30 дней"
	}
	return "все время"
}

// PlansScreen - тарифы подписки
func PlansScreen(plans []model.Plan) (string, *telebot.ReplyMarkup) {
	var b strings.Builder
	b.WriteString("💳 <b>Тарифы</b>\n\n")
	markup := &telebot.ReplyMarkup{}
	rows := make([]telebot.Row, 0, len(plans))
	for _, p := range plans {
		fmt.Fprintf(&b, "• %s · %s · %d дн.\n", html.EscapeString(p.Name), html.EscapeString(p.Price), p.DurationDays)
		rows = append(rows, markup.Row(markup.Data("Купить "+p.Name, data(PlanPrefix, p.ID))))
	}
	markup.Inline(rows...)
	return b.String(), markup
}

// OrderScreen - созданный заказ. Оплата проходит у платежного провайдера.
func OrderScreen(o *model.Order) string {
	return fmt.Sprintf("🧾 <b>Заказ создан</b>\nТариф: %s\nСумма: %.2f %s\nНомер заказа: <code>%s</code>",
		html.EscapeString(o.PlanName), float64(o.Amount)/100, html.EscapeString(o.Currency), html.EscapeString(o.OrderID))
}
