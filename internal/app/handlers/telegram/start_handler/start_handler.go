package start_handler

import (
	"context"

	"github.com/IT-Nick/exambot/internal/app/navigator"
	"github.com/IT-Nick/exambot/internal/app/view"
	examsService "github.com/IT-Nick/exambot/internal/domain/exams/service"
	messageService "github.com/IT-Nick/exambot/internal/domain/messages/service"
	"github.com/IT-Nick/exambot/internal/domain/model"
	"github.com/IT-Nick/exambot/internal/infra/deeplink"
	"github.com/rs/zerolog/log"
	"gopkg.in/telebot.v4"
)

// StartHandler структура для обработки команды /start
type StartHandler struct {
	examService    *examsService.ExamService
	messageService *messageService.MessageService
	navigator      *navigator.Navigator
}

// NewStartHandler возвращает структуру обработчика
func NewStartHandler(
	examService *examsService.ExamService,
	messageService *messageService.MessageService,
	navigator *navigator.Navigator,
) *StartHandler {
	return &StartHandler{
		examService:    examService,
		messageService: messageService,
		navigator:      navigator,
	}
}

// Handle показывает главное меню. /start card_<id> сразу начинает тест из ссылки.
func (h *StartHandler) Handle(c telebot.Context) error {
	ctx := context.Background()
	chatID := c.Chat().ID

	loggedIn, err := h.examService.LoggedIn(ctx, chatID)
	if err != nil {
		return c.Send(view.ErrorText(err))
	}
	if !loggedIn {
		return c.Send(h.messageService.Text(ctx, model.WelcomeGuestKey))
	}

	if c.Message() != nil {
		if cardID, ref, ok := deeplink.ParseStart(c.Message().Payload); ok {
			log.Info().Int64("chat_id", chatID).Str("card_id", string(cardID)).Str("ref", ref).Msg("test card opened from link")
			if err := h.navigator.Launch(ctx, chatID, cardID); err != nil {
				return c.Send(view.ErrorText(err))
			}
			return nil
		}
	}

	return h.SendMenu(ctx, c)
}

// SendMenu отправляет приветствие с кнопками главного меню
func (h *StartHandler) SendMenu(ctx context.Context, c telebot.Context) error {
	buttons, err := h.messageService.GetButtons(ctx)
	if err != nil {
		return c.Send(view.ErrorText(err))
	}

	return c.Send(h.messageService.Text(ctx, model.WelcomeKey), &telebot.SendOptions{
		ReplyMarkup: view.MainMenu(buttons),
	})
}

// GetHandlerFunc возвращает обработчик в формате telebot.HandlerFunc
func (h *StartHandler) GetHandlerFunc() telebot.HandlerFunc {
	return func(c telebot.Context) error {
		return h.Handle(c)
	}
}
