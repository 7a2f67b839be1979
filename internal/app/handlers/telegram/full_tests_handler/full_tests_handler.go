package full_tests_handler

import (
	"context"

	"github.com/IT-Nick/exambot/internal/app/navigator"
	"github.com/IT-Nick/exambot/internal/app/view"
	examsService "github.com/IT-Nick/exambot/internal/domain/exams/service"
	"github.com/IT-Nick/exambot/internal/domain/model"
	"gopkg.in/telebot.v4"
)

// FullTestsHandler показывает платные полные тесты и открывает их за баллы
type FullTestsHandler struct {
	examService *examsService.ExamService
	navigator   *navigator.Navigator
}

// NewFullTestsHandler возвращает структуру обработчика
func NewFullTestsHandler(examService *examsService.ExamService, navigator *navigator.Navigator) *FullTestsHandler {
	return &FullTestsHandler{
		examService: examService,
		navigator:   navigator,
	}
}

// Handle обрабатывает /fulltests, full_<id> (проверка доступа) и unlock_<id> (покупка)
func (h *FullTestsHandler) Handle(c telebot.Context) error {
	ctx := context.Background()
	chatID := c.Chat().ID
	messages := h.navigator.Messages()

	var data string
	if c.Callback() != nil {
		data = view.CleanCallback(c.Callback().Data)
	}

	if cardID, ok := view.IDArg(view.Args(data, view.FullTestPrefix), 0); ok {
		status, err := h.examService.UnlockStatus(ctx, chatID, cardID)
		if err != nil {
			return navigator.Alert(c, view.ErrorText(err))
		}
		switch {
		case status.IsUnlocked:
			navigator.Ack(c)
			return h.launch(ctx, c, cardID)
		case !status.CanAfford:
			return navigator.Alert(c, messages.Textf(ctx, model.NotEnoughPointsKey, status.UserPoints))
		}
		navigator.Ack(c)
		return navigator.Reply(c, messages.Textf(ctx, model.UnlockConfirmKey, status.UserPoints), view.UnlockConfirm(cardID))
	}

	if cardID, ok := view.IDArg(view.Args(data, view.UnlockPrefix), 0); ok {
		if err := h.examService.Unlock(ctx, chatID, cardID); err != nil {
			return navigator.Alert(c, view.ErrorText(err))
		}
		navigator.Ack(c)
		return h.launch(ctx, c, cardID)
	}

	navigator.Ack(c)
	groups, err := h.examService.ListFullLengthTests(ctx, chatID)
	if err != nil {
		return c.Send(view.ErrorText(err))
	}
	text, markup := view.FullTestsScreen(groups)
	if len(markup.InlineKeyboard) == 0 {
		return c.Send(messages.Text(ctx, model.NoFullTestsKey))
	}
	return navigator.Reply(c, text, markup)
}

func (h *FullTestsHandler) launch(ctx context.Context, c telebot.Context, cardID model.ID) error {
	if err := h.navigator.Launch(ctx, c.Chat().ID, cardID); err != nil {
		return c.Send(view.ErrorText(err))
	}
	return nil
}

// GetHandlerFunc возвращает обработчик в формате telebot.HandlerFunc
func (h *FullTestsHandler) GetHandlerFunc() telebot.HandlerFunc {
	return func(c telebot.Context) error {
		return h.Handle(c)
	}
}
