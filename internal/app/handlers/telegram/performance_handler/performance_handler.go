package performance_handler

import (
	"context"
	"slices"

	"github.com/IT-Nick/exambot/internal/app/navigator"
	"github.com/IT-Nick/exambot/internal/app/view"
	examsService "github.com/IT-Nick/exambot/internal/domain/exams/service"
	"gopkg.in/telebot.v4"
)

// PerformanceHandler показывает сводку успеваемости за период
type PerformanceHandler struct {
	examService *examsService.ExamService
}

// NewPerformanceHandler возвращает структуру обработчика
func NewPerformanceHandler(examService *examsService.ExamService) *PerformanceHandler {
	return &PerformanceHandler{examService: examService}
}

// Handle обрабатывает /performance и perf_<период>
func (h *PerformanceHandler) Handle(c telebot.Context) error {
	filter := "all"
	if c.Callback() != nil {
		if args := view.Args(view.CleanCallback(c.Callback().Data), view.PerformancePrefix); len(args) > 0 {
			filter = args[0]
		}
	}
	if !slices.Contains(examsService.PerformanceFilters, filter) {
		filter = "all"
	}

	navigator.Ack(c)
	hub, err := h.examService.PerformanceHub(context.Background(), c.Chat().ID, filter)
	if err != nil {
		return c.Send(view.ErrorText(err))
	}
	text, markup := view.PerformanceScreen(hub, filter)
	return navigator.Reply(c, text, markup)
}

// GetHandlerFunc возвращает обработчик в формате telebot.HandlerFunc
func (h *PerformanceHandler) GetHandlerFunc() telebot.HandlerFunc {
	return func(c telebot.Context) error {
		return h.Handle(c)
	}
}
