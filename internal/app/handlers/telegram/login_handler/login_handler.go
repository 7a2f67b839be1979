package login_handler

import (
	"context"
	"strings"

	"github.com/IT-Nick/exambot/internal/app/handlers/telegram/start_handler"
	"github.com/IT-Nick/exambot/internal/app/view"
	examsService "github.com/IT-Nick/exambot/internal/domain/exams/service"
	messageService "github.com/IT-Nick/exambot/internal/domain/messages/service"
	"github.com/IT-Nick/exambot/internal/domain/model"
	"github.com/rs/zerolog/log"
	"gopkg.in/telebot.v4"
)

// LoginHandler структура для обработки команды /login <логин> <пароль>
type LoginHandler struct {
	examService    *examsService.ExamService
	messageService *messageService.MessageService
	startHandler   *start_handler.StartHandler
}

// NewLoginHandler возвращает структуру обработчика
func NewLoginHandler(
	examService *examsService.ExamService,
	messageService *messageService.MessageService,
	startHandler *start_handler.StartHandler,
) *LoginHandler {
	return &LoginHandler{
		examService:    examService,
		messageService: messageService,
		startHandler:   startHandler,
	}
}

// Handle входит в backend API. Сообщение с паролем удаляется из чата.
func (h *LoginHandler) Handle(c telebot.Context) error {
	ctx := context.Background()
	chatID := c.Chat().ID

	fields := strings.Fields(c.Message().Payload)
	if len(fields) != 2 {
		return c.Send(h.messageService.Text(ctx, model.LoginUsageKey))
	}

	if err := c.Delete(); err != nil {
		log.Warn().Err(err).Int64("chat_id", chatID).Msg("failed to delete login message")
	}

	if err := h.examService.Login(ctx, chatID, fields[0], fields[1]); err != nil {
		log.Info().Err(err).Int64("chat_id", chatID).Msg("login failed")
		return c.Send(view.ErrorText(err))
	}

	if err := c.Send(h.messageService.Text(ctx, model.LoginSuccessKey)); err != nil {
		return err
	}
	return h.startHandler.SendMenu(ctx, c)
}

// GetHandlerFunc возвращает обработчик в формате telebot.HandlerFunc
func (h *LoginHandler) GetHandlerFunc() telebot.HandlerFunc {
	return func(c telebot.Context) error {
		return h.Handle(c)
	}
}
