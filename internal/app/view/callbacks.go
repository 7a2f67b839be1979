package view

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/IT-Nick/exambot/internal/domain/model"
)

// Префиксы данных callback кнопок. Разбираются в bootstrapHandlersTelegram.
const (
	MenuPrefix        = "menu_"
	ExamPrefix        = "exam_"
	SectionPrefix     = "sec_"
	CardPrefix        = "card_"
	FullTestPrefix    = "full_"
	UnlockPrefix      = "unlock_"
	AnswerPrefix      = "ans_"
	MarkPrefix        = "mark_"
	NavPrefix         = "nav_"
	PalettePrefix     = "pal_"
	SubmitData        = "submit"
	SubmitYesData     = "submit_yes"
	SubmitNoData      = "submit_no"
	ReasonPrefix      = "rsn_"
	ReviewPrefix      = "rvw_"
	FinalizePrefix    = "fin_"
	ResultPrefix      = "res_"
	PDFPrefix         = "pdf_"
	PerformancePrefix = "perf_"
	PlanPrefix        = "plan_"
)

// maxMessage - запас до лимита Telegram в 4096 символов
const maxMessage = 4000

// CleanCallback очищает данные callback от служебных символов telebot
func CleanCallback(data string) string {
	cleaned := strings.TrimSpace(data)
	cleaned = strings.ReplaceAll(cleaned, "\f", "")
	cleaned = strings.ReplaceAll(cleaned, "\\f", "")
	return cleaned
}

// Args возвращает части данных после префикса
func Args(data, prefix string) []string {
	rest, ok := strings.CutPrefix(data, prefix)
	if !ok || rest == "" {
		return nil
	}
	return strings.Split(rest, "_")
}

// IntArg разбирает числовую часть данных
func IntArg(args []string, i int) (int, bool) {
	if i >= len(args) {
		return 0, false
	}
	n, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, false
	}
	return n, true
}

// IDArg возвращает идентификатор из данных
func IDArg(args []string, i int) (model.ID, bool) {
	if i >= len(args) || args[i] == "" {
		return "", false
	}
	return model.ID(args[i]), true
}

func data(prefix string, parts ...any) string {
	var b strings.Builder
	b.WriteString(prefix)
	for i, p := range parts {
		if i > 0 {
			b.WriteByte('_')
		}
		switch v := p.(type) {
		case int:
			b.WriteString(strconv.Itoa(v))
		case model.ID:
			b.WriteString(string(v))
		case string:
			b.WriteString(v)
		}
	}
	return b.String()
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-1]) + "…"
}
