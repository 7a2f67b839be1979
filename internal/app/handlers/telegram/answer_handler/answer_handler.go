package answer_handler

import (
	"context"

	"github.com/IT-Nick/exambot/internal/app/navigator"
	"github.com/IT-Nick/exambot/internal/app/view"
	"github.com/IT-Nick/exambot/internal/domain/model"
	"gopkg.in/telebot.v4"
)

// AnswerHandler меняет ответы попытки: выбор варианта, отметка, переход между вопросами, палитра
type AnswerHandler struct {
	navigator *navigator.Navigator
}

// NewAnswerHandler возвращает структуру обработчика
func NewAnswerHandler(navigator *navigator.Navigator) *AnswerHandler {
	return &AnswerHandler{navigator: navigator}
}

// Handle обрабатывает ans_<qid>_<opt>, mark_<qid>, nav_<index> и pal_<page>
func (h *AnswerHandler) Handle(c telebot.Context) error {
	attempt, ok := h.navigator.Attempt(c.Chat().ID)
	if !ok {
		return navigator.Alert(c, h.navigator.Messages().Text(context.Background(), model.NoActiveAttemptKey))
	}

	data := view.CleanCallback(c.Callback().Data)

	if args := view.Args(data, view.PalettePrefix); args != nil {
		page, _ := view.IntArg(args, 0)
		navigator.Ack(c)
		text, markup := view.Palette(attempt.Snapshot(), page)
		return navigator.Reply(c, text, markup)
	}

	var err error
	switch {
	case view.Args(data, view.AnswerPrefix) != nil:
		args := view.Args(data, view.AnswerPrefix)
		questionID, ok := view.IntArg(args, 0)
		if !ok || len(args) < 2 {
			return navigator.Alert(c, "Неверные данные кнопки")
		}
		_, err = attempt.SelectOption(questionID, model.Option(args[1]))
	case view.Args(data, view.MarkPrefix) != nil:
		questionID, ok := view.IntArg(view.Args(data, view.MarkPrefix), 0)
		if !ok {
			return navigator.Alert(c, "Неверные данные кнопки")
		}
		_, err = attempt.ToggleMark(questionID)
	case view.Args(data, view.NavPrefix) != nil:
		index, ok := view.IntArg(view.Args(data, view.NavPrefix), 0)
		if !ok {
			return navigator.Alert(c, "Неверные данные кнопки")
		}
		err = attempt.GoTo(index)
	}
	if err != nil {
		return navigator.Alert(c, view.ErrorText(err))
	}

	navigator.Ack(c)
	text, markup := view.QuestionScreen(attempt.Snapshot())
	return navigator.Reply(c, text, markup)
}

// GetHandlerFunc возвращает обработчик в формате telebot.HandlerFunc
func (h *AnswerHandler) GetHandlerFunc() telebot.HandlerFunc {
	return func(c telebot.Context) error {
		return h.Handle(c)
	}
}
