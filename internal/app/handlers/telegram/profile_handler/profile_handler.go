package profile_handler

import (
	"context"

	"github.com/IT-Nick/exambot/internal/app/navigator"
	"github.com/IT-Nick/exambot/internal/app/view"
	examsService "github.com/IT-Nick/exambot/internal/domain/exams/service"
	"gopkg.in/telebot.v4"
)

// ProfileHandler показывает профиль пользователя
type ProfileHandler struct {
	examService *examsService.ExamService
}

// NewProfileHandler возвращает структуру обработчика
func NewProfileHandler(examService *examsService.ExamService) *ProfileHandler {
	return &ProfileHandler{examService: examService}
}

func (h *ProfileHandler) Handle(c telebot.Context) error {
	navigator.Ack(c)

	profile, err := h.examService.Profile(context.Background(), c.Chat().ID)
	if err != nil {
		return c.Send(view.ErrorText(err))
	}
	return c.Send(view.ProfileScreen(profile), &telebot.SendOptions{ParseMode: telebot.ModeHTML})
}

// GetHandlerFunc возвращает обработчик в формате telebot.HandlerFunc
func (h *ProfileHandler) GetHandlerFunc() telebot.HandlerFunc {
	return func(c telebot.Context) error {
		return h.Handle(c)
	}
}
