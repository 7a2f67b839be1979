package reason_handler

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

// ReasonHandler собирает причины для отмеченных вопросов и сохраняет их
type ReasonHandler struct {
	navigator *navigator.Navigator
}

// NewReasonHandler возвращает структуру обработчика
func NewReasonHandler(navigator *navigator.Navigator) *ReasonHandler {
	return &ReasonHandler{navigator: navigator}
}

// Handle обрабатывает rsn_<sid>_<qid>_<причина>, rvw_<sid>_<индекс> и fin_<sid>
func (h *ReasonHandler) Handle(c telebot.Context) error {
	ctx := context.Background()
	chatID := c.Chat().ID
	data := view.CleanCallback(c.Callback().Data)

	if args := view.Args(data, view.ReasonPrefix); args != nil {
		submissionID, okSID := view.IntArg(args, 0)
		questionID, okQID := view.IntArg(args, 1)
		if !okSID || !okQID || len(args) < 3 {
			return navigator.Alert(c, "Неверные данные кнопки")
		}
		flow, err := h.navigator.OpenReview(ctx, chatID, submissionID)
		if err != nil {
			return navigator.Alert(c, view.ErrorText(err))
		}
		if err := flow.SetReason(questionID, model.Reason(args[2])); err != nil {
			return navigator.Alert(c, view.ErrorText(err))
		}
		navigator.Ack(c)
		text, markup := h.navigator.ReviewScreen(ctx, flow, view.FirstPending(flow))
		return navigator.Reply(c, text, markup)
	}

	if args := view.Args(data, view.ReviewPrefix); args != nil {
		submissionID, okSID := view.IntArg(args, 0)
		index, okIdx := view.IntArg(args, 1)
		if !okSID || !okIdx {
			return navigator.Alert(c, "Неверные данные кнопки")
		}
		flow, err := h.navigator.OpenReview(ctx, chatID, submissionID)
		if err != nil {
			return navigator.Alert(c, view.ErrorText(err))
		}
		navigator.Ack(c)
		text, markup := h.navigator.ReviewScreen(ctx, flow, index)
		return navigator.Reply(c, text, markup)
	}

	submissionID, ok := view.IntArg(view.Args(data, view.FinalizePrefix), 0)
	if !ok {
		return navigator.Alert(c, "Неверные данные кнопки")
	}
	flow, err := h.navigator.OpenReview(ctx, chatID, submissionID)
	if err != nil {
		return navigator.Alert(c, view.ErrorText(err))
	}

	target, err := flow.Finalize(ctx)
	switch {
	case errors.Is(err, attempts.ErrReasonsIncomplete), errors.Is(err, attempts.ErrFinalizeInFlight):
		return navigator.Alert(c, view.ErrorText(err))
	case err != nil:
		log.Warn().Err(err).Int64("chat_id", chatID).Int("submission_id", submissionID).Msg("failed to save mark reasons")
		return navigator.Alert(c, view.ErrorText(err))
	}

	navigator.Ack(c)
	h.navigator.Registry().RemoveReview(chatID)
	if err := navigator.Reply(c, "✅ Причины сохранены.", nil); err != nil {
		log.Warn().Err(err).Int64("chat_id", chatID).Msg("failed to close review screen")
	}
	h.navigator.Navigate(ctx, chatID, target)
	return nil
}

// GetHandlerFunc возвращает обработчик в формате telebot.HandlerFunc
func (h *ReasonHandler) GetHandlerFunc() telebot.HandlerFunc {
	return func(c telebot.Context) error {
		return h.Handle(c)
	}
}
