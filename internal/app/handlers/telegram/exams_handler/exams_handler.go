package exams_handler

import (
	"context"

	"github.com/IT-Nick/exambot/internal/app/navigator"
	"github.com/IT-Nick/exambot/internal/app/view"
	examsService "github.com/IT-Nick/exambot/internal/domain/exams/service"
	messageService "github.com/IT-Nick/exambot/internal/domain/messages/service"
	"github.com/IT-Nick/exambot/internal/domain/model"
	"gopkg.in/telebot.v4"
)

// ExamsHandler ведет по каталогу: экзамены, разделы, тесты раздела
type ExamsHandler struct {
	examService    *examsService.ExamService
	messageService *messageService.MessageService
}

// NewExamsHandler возвращает структуру обработчика
func NewExamsHandler(examService *examsService.ExamService, messageService *messageService.MessageService) *ExamsHandler {
	return &ExamsHandler{
		examService:    examService,
		messageService: messageService,
	}
}

// Handle обрабатывает /exams, exam_<id> и sec_<id>
func (h *ExamsHandler) Handle(c telebot.Context) error {
	ctx := context.Background()
	chatID := c.Chat().ID
	navigator.Ack(c)

	var data string
	if c.Callback() != nil {
		data = view.CleanCallback(c.Callback().Data)
	}

	if examID, ok := view.IDArg(view.Args(data, view.ExamPrefix), 0); ok {
		subExams, err := h.examService.ListSubExams(ctx, chatID, examID)
		if err != nil {
			return c.Send(view.ErrorText(err))
		}
		return navigator.Reply(c, h.messageService.Text(ctx, model.ChooseSubExamKey), view.SubExamsScreen(subExams))
	}

	if subExamID, ok := view.IDArg(view.Args(data, view.SectionPrefix), 0); ok {
		cards, err := h.examService.ListTestCards(ctx, chatID, subExamID)
		if err != nil {
			return c.Send(view.ErrorText(err))
		}
		return navigator.Reply(c, h.messageService.Text(ctx, model.ChooseTestCardKey), view.TestCardsScreen(cards))
	}

	exams, err := h.examService.ListExams(ctx, chatID)
	if err != nil {
		return c.Send(view.ErrorText(err))
	}
	if len(exams) == 0 {
		return c.Send(h.messageService.Text(ctx, model.NoExamsKey))
	}
	return navigator.Reply(c, h.messageService.Text(ctx, model.ChooseExamKey), view.ExamsScreen(exams))
}

// GetHandlerFunc возвращает обработчик в формате telebot.HandlerFunc
func (h *ExamsHandler) GetHandlerFunc() telebot.HandlerFunc {
	return func(c telebot.Context) error {
		return h.Handle(c)
	}
}
