package logout_handler

import (
	"context"

	"github.com/IT-Nick/exambot/internal/app/navigator"
	"github.com/IT-Nick/exambot/internal/app/view"
	examsService "github.com/IT-Nick/exambot/internal/domain/exams/service"
	"github.com/IT-Nick/exambot/internal/domain/model"
	"gopkg.in/telebot.v4"
)

// LogoutHandler структура для обработки команды /logout
type LogoutHandler struct {
	examService *examsService.ExamService
	navigator   *navigator.Navigator
}

// NewLogoutHandler возвращает структуру обработчика
func NewLogoutHandler(examService *examsService.ExamService, navigator *navigator.Navigator) *LogoutHandler {
	return &LogoutHandler{
		examService: examService,
		navigator:   navigator,
	}
}

// Handle бросает активную попытку и удаляет токены чата
func (h *LogoutHandler) Handle(c telebot.Context) error {
	ctx := context.Background()
	chatID := c.Chat().ID

	h.navigator.Abandon(chatID)
	if err := h.examService.Logout(ctx, chatID); err != nil {
		return c.Send(view.ErrorText(err))
	}
	return c.Send(h.navigator.Messages().Text(ctx, model.LogoutKey))
}

// GetHandlerFunc возвращает обработчик в формате telebot.HandlerFunc
func (h *LogoutHandler) GetHandlerFunc() telebot.HandlerFunc {
	return func(c telebot.Context) error {
		return h.Handle(c)
	}
}
