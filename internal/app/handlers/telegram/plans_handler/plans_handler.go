package plans_handler

import (
	"context"

	"github.com/IT-Nick/exambot/internal/app/navigator"
	"github.com/IT-Nick/exambot/internal/app/view"
	examsService "github.com/IT-Nick/exambot/internal/domain/exams/service"
	messageService "github.com/IT-Nick/exambot/internal/domain/messages/service"
	"github.com/IT-Nick/exambot/internal/domain/model"
	"gopkg.in/telebot.v4"
)

// PlansHandler показывает тарифы и создает заказ на оплату
type PlansHandler struct {
	examService    *examsService.ExamService
	messageService *messageService.MessageService
}

// NewPlansHandler возвращает структуру обработчика
func NewPlansHandler(examService *examsService.ExamService, messageService *messageService.MessageService) *PlansHandler {
	return &PlansHandler{
		examService:    examService,
		messageService: messageService,
	}
}

// Handle обрабатывает /plans и plan_<id>
func (h *PlansHandler) Handle(c telebot.Context) error {
	ctx := context.Background()
	chatID := c.Chat().ID

	if c.Callback() != nil {
		if planID, ok := view.IntArg(view.Args(view.CleanCallback(c.Callback().Data), view.PlanPrefix), 0); ok {
			order, err := h.examService.CreateOrder(ctx, chatID, planID)
			if err != nil {
				return navigator.Alert(c, view.ErrorText(err))
			}
			navigator.Ack(c)
			return c.Send(view.OrderScreen(order), telebot.ModeHTML)
		}
	}

	navigator.Ack(c)
	plans, err := h.examService.Plans(ctx, chatID)
	if err != nil {
		return c.Send(view.ErrorText(err))
	}
	if len(plans) == 0 {
		return c.Send(h.messageService.Text(ctx, model.NoPlansKey))
	}
	text, markup := view.PlansScreen(plans)
	return navigator.Reply(c, text, markup)
}

// GetHandlerFunc возвращает обработчик в формате telebot.HandlerFunc
func (h *PlansHandler) GetHandlerFunc() telebot.HandlerFunc {
	return func(c telebot.Context) error {
		return h.Handle(c)
	}
}
