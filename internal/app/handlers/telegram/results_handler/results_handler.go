package results_handler

import (
	"context"

	"github.com/IT-Nick/exambot/internal/app/navigator"
	"github.com/IT-Nick/exambot/internal/app/view"
	examsService "github.com/IT-Nick/exambot/internal/domain/exams/service"
	"github.com/IT-Nick/exambot/internal/domain/model"
	"github.com/rs/zerolog/log"
	"gopkg.in/telebot.v4"
)

// ResultsHandler показывает историю попыток, отдельный результат и PDF отчет
type ResultsHandler struct {
	examService *examsService.ExamService
	navigator   *navigator.Navigator
}

// NewResultsHandler возвращает структуру обработчика
func NewResultsHandler(examService *examsService.ExamService, navigator *navigator.Navigator) *ResultsHandler {
	return &ResultsHandler{
		examService: examService,
		navigator:   navigator,
	}
}

// Handle обрабатывает /myresults, res_<sid> и pdf_<sid>
func (h *ResultsHandler) Handle(c telebot.Context) error {
	ctx := context.Background()
	chatID := c.Chat().ID

	var data string
	if c.Callback() != nil {
		data = view.CleanCallback(c.Callback().Data)
	}

	if submissionID, ok := view.IntArg(view.Args(data, view.ResultPrefix), 0); ok {
		navigator.Ack(c)
		if err := h.navigator.ShowResults(ctx, chatID, submissionID); err != nil {
			return c.Send(view.ErrorText(err))
		}
		return nil
	}

	if submissionID, ok := view.IntArg(view.Args(data, view.PDFPrefix), 0); ok {
		navigator.Ack(c)
		_ = c.Notify(telebot.UploadingDocument)
		if err := h.navigator.SendReport(ctx, chatID, submissionID); err != nil {
			log.Error().Err(err).Int64("chat_id", chatID).Int("submission_id", submissionID).Msg("failed to send pdf report")
			return c.Send(view.ErrorText(err))
		}
		return nil
	}

	navigator.Ack(c)
	results, err := h.examService.MyResults(ctx, chatID)
	if err != nil {
		return c.Send(view.ErrorText(err))
	}
	text, markup := view.MyResultsScreen(results, h.navigator.Messages().Text(ctx, model.NoResultsKey))
	return navigator.Reply(c, text, markup)
}

// GetHandlerFunc возвращает обработчик в формате telebot.HandlerFunc
func (h *ResultsHandler) GetHandlerFunc() telebot.HandlerFunc {
	return func(c telebot.Context) error {
		return h.Handle(c)
	}
}
