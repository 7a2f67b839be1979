package start_test_handler

import (
	"context"

	"github.com/IT-Nick/exambot/internal/app/navigator"
	"github.com/IT-Nick/exambot/internal/app/view"
	"github.com/rs/zerolog/log"
	"gopkg.in/telebot.v4"
)

// StartTestHandler начинает попытку по кнопке card_<id>
type StartTestHandler struct {
	navigator *navigator.Navigator
}

// NewStartTestHandler возвращает структуру обработчика
func NewStartTestHandler(navigator *navigator.Navigator) *StartTestHandler {
	return &StartTestHandler{navigator: navigator}
}

func (h *StartTestHandler) Handle(c telebot.Context) error {
	data := view.CleanCallback(c.Callback().Data)
	cardID, ok := view.IDArg(view.Args(data, view.CardPrefix), 0)
	if !ok {
		return navigator.Alert(c, "Неизвестный тест")
	}

	navigator.Ack(c)
	if err := h.navigator.Launch(context.Background(), c.Chat().ID, cardID); err != nil {
		log.Warn().Err(err).Int64("chat_id", c.Chat().ID).Str("card_id", string(cardID)).Msg("failed to start test")
		return c.Send(view.ErrorText(err))
	}
	return nil
}

// GetHandlerFunc возвращает обработчик в формате telebot.HandlerFunc
func (h *StartTestHandler) GetHandlerFunc() telebot.HandlerFunc {
	return func(c telebot.Context) error {
		return h.Handle(c)
	}
}
