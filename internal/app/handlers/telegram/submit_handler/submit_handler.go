package submit_handler

import (
	"context"
	"errors"

	"github.com/IT-Nick/exambot/internal/app/navigator"
	"github.com/IT-Nick/exambot/internal/app/view"
	"github.com/IT-Nick/exambot/internal/domain/attempts"
	"github.com/IT-Nick/exambot/internal/domain/model"
	"github.com/rs/zerolog/log"
	"gopkg.in/telebot.v4"
)

// SubmitHandler подтверждает и отправляет ответы попытки
type SubmitHandler struct {
	navigator *navigator.Navigator
}

// NewSubmitHandler возвращает структуру обработчика
func NewSubmitHandler(navigator *navigator.Navigator) *SubmitHandler {
	return &SubmitHandler{navigator: navigator}
}

// Handle обрабатывает submit, submit_yes и submit_no.
// Переход на результаты или сбор причин делает сама попытка через навигатор.
func (h *SubmitHandler) Handle(c telebot.Context) error {
	ctx := context.Background()
	chatID := c.Chat().ID
	messages := h.navigator.Messages()

	attempt, ok := h.navigator.Attempt(chatID)
	if !ok {
		return navigator.Alert(c, messages.Text(ctx, model.NoActiveAttemptKey))
	}

	switch view.CleanCallback(c.Callback().Data) {
	case view.SubmitNoData:
		navigator.Ack(c)
		text, markup := view.QuestionScreen(attempt.Snapshot())
		return navigator.Reply(c, text, markup)

	case view.SubmitYesData:
		navigator.Ack(c)
		if _, err := attempt.Submit(ctx, attempts.TriggerManual); err != nil {
			if errors.Is(err, attempts.ErrSubmissionInFlight) || errors.Is(err, attempts.ErrAlreadySubmitted) {
				return c.Send(view.ErrorText(err))
			}
			log.Warn().Err(err).Int64("chat_id", chatID).Int("submission_id", attempt.SubmissionID()).Msg("manual submit failed")
			snapshot := attempt.Snapshot()
			if snapshot.Phase == attempts.PhaseSubmitted {
				// ответы приняты, не сохранился только список вопросов на проверку
				return navigator.Reply(c, view.ErrorHTML(err), nil)
			}
			text, markup := view.QuestionScreen(snapshot)
			return navigator.Reply(c, text, markup)
		}
		return navigator.Reply(c, "✅ Ответы отправлены.", nil)
	}

	navigator.Ack(c)
	text, markup := view.SubmitConfirm(attempt.Snapshot(), messages.Text(ctx, model.SubmitConfirmKey))
	return navigator.Reply(c, text, markup)
}

// GetHandlerFunc возвращает обработчик в формате telebot.HandlerFunc
func (h *SubmitHandler) GetHandlerFunc() telebot.HandlerFunc {
	return func(c telebot.Context) error {
		return h.Handle(c)
	}
}
