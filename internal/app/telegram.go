package app

import (
	"context"
	"strings"

	"github.com/IT-Nick/exambot/internal/app/handlers/telegram/answer_handler"
	"github.com/IT-Nick/exambot/internal/app/handlers/telegram/exams_handler"
	"github.com/IT-Nick/exambot/internal/app/handlers/telegram/full_tests_handler"
	"github.com/IT-Nick/exambot/internal/app/handlers/telegram/login_handler"
	"github.com/IT-Nick/exambot/internal/app/handlers/telegram/logout_handler"
	"github.com/IT-Nick/exambot/internal/app/handlers/telegram/performance_handler"
	"github.com/IT-Nick/exambot/internal/app/handlers/telegram/plans_handler"
	"github.com/IT-Nick/exambot/internal/app/handlers/telegram/profile_handler"
	"github.com/IT-Nick/exambot/internal/app/handlers/telegram/reason_handler"
	"github.com/IT-Nick/exambot/internal/app/handlers/telegram/results_handler"
	"github.com/IT-Nick/exambot/internal/app/handlers/telegram/share_handler"
	"github.com/IT-Nick/exambot/internal/app/handlers/telegram/start_handler"
	"github.com/IT-Nick/exambot/internal/app/handlers/telegram/start_test_handler"
	"github.com/IT-Nick/exambot/internal/app/handlers/telegram/submit_handler"
	"github.com/IT-Nick/exambot/internal/app/navigator"
	"github.com/IT-Nick/exambot/internal/app/view"
	"github.com/IT-Nick/exambot/internal/domain/model"
	"github.com/IT-Nick/exambot/internal/infra/middleware"
	"github.com/rs/zerolog/log"
	"gopkg.in/telebot.v4"
)

var commands = []telebot.Command{
	{Text: "start", Description: "Главное меню"},
	{Text: "login", Description: "Войти: /login <логин> <пароль>"},
	{Text: "exams", Description: "Экзамены и тесты"},
	{Text: "fulltests", Description: "Полные тесты"},
	{Text: "myresults", Description: "Мои результаты"},
	{Text: "performance", Description: "Успеваемость"},
	{Text: "profile", Description: "Профиль"},
	{Text: "plans", Description: "Подписка"},
	{Text: "share", Description: "Ссылка на тест: /share <id>"},
	{Text: "logout", Description: "Выйти"},
}

// callbackRoute - обработчик для callback данных с одним из префиксов или точным совпадением
type callbackRoute struct {
	prefixes []string
	exact    []string
	handler  telebot.HandlerFunc
}

// callbackRouter разбирает данные кнопок. Кнопки главного меню приходят как menu_<ключ кнопки>.
type callbackRouter struct {
	routes []callbackRoute
	menu   map[string]telebot.HandlerFunc
}

func (r *callbackRouter) match(data string) telebot.HandlerFunc {
	if key, ok := strings.CutPrefix(data, view.MenuPrefix); ok {
		return r.menu[key]
	}
	for _, route := range r.routes {
		for _, exact := range route.exact {
			if data == exact {
				return route.handler
			}
		}
		for _, prefix := range route.prefixes {
			if strings.HasPrefix(data, prefix) {
				return route.handler
			}
		}
	}
	return nil
}

// Handle передает callback найденному обработчику
func (r *callbackRouter) Handle(c telebot.Context) error {
	data := view.CleanCallback(c.Callback().Data)
	if handler := r.match(data); handler != nil {
		return handler(c)
	}
	log.Debug().Str("data", data).Msg("unknown callback")
	navigator.Ack(c)
	return nil
}

// bootstrapHandlersTelegram - регистрирует обработчики для бота
func (app *App) bootstrapHandlersTelegram() {
	app.bot.Use(
		middleware.Recover(app.logger, func(err error, c telebot.Context) {
			app.logger.Error().Err(err).Int("update_id", c.Update().ID).Msg("recovered from panic")
			if c.Chat() != nil {
				_ = c.Send("Что-то пошло не так. Попробуйте еще раз.")
			}
		}),
		middleware.Logger(app.logger),
	)

	if err := app.bot.SetCommands(commands); err != nil {
		app.logger.Warn().Err(err).Msg("failed to set bot commands")
	}

	startHandler := start_handler.NewStartHandler(app.examService, app.messageService, app.navigator)
	examsHandler := exams_handler.NewExamsHandler(app.examService, app.messageService).GetHandlerFunc()
	fullTestsHandler := full_tests_handler.NewFullTestsHandler(app.examService, app.navigator).GetHandlerFunc()
	resultsHandler := results_handler.NewResultsHandler(app.examService, app.navigator).GetHandlerFunc()
	performanceHandler := performance_handler.NewPerformanceHandler(app.examService).GetHandlerFunc()
	profileHandler := profile_handler.NewProfileHandler(app.examService).GetHandlerFunc()
	plansHandler := plans_handler.NewPlansHandler(app.examService, app.messageService).GetHandlerFunc()

	// Команды без входа в аккаунт
	app.bot.Handle("/start", startHandler.GetHandlerFunc())
	app.bot.Handle("/login", login_handler.NewLoginHandler(app.examService, app.messageService, startHandler).GetHandlerFunc())
	app.bot.Handle("/logout", logout_handler.NewLogoutHandler(app.examService, app.navigator).GetHandlerFunc())
	app.bot.Handle("/share", share_handler.NewShareHandler(app.messageService, app.config.TelegramBot.Username).GetHandlerFunc())

	// Все остальное требует входа
	auth := app.bot.Group()
	auth.Use(app.requireLogin)
	auth.Handle("/exams", examsHandler)
	auth.Handle("/fulltests", fullTestsHandler)
	auth.Handle("/myresults", resultsHandler)
	auth.Handle("/performance", performanceHandler)
	auth.Handle("/profile", profileHandler)
	auth.Handle("/plans", plansHandler)

	router := &callbackRouter{
		menu: map[string]telebot.HandlerFunc{
			model.ExamsButtonKey:       examsHandler,
			model.FullTestsButtonKey:   fullTestsHandler,
			model.ResultsButtonKey:     resultsHandler,
			model.PerformanceButtonKey: performanceHandler,
			model.ProfileButtonKey:     profileHandler,
			model.PlansButtonKey:       plansHandler,
		},
		routes: []callbackRoute{
			{prefixes: []string{view.ExamPrefix, view.SectionPrefix}, handler: examsHandler},
			{prefixes: []string{view.CardPrefix}, handler: start_test_handler.NewStartTestHandler(app.navigator).GetHandlerFunc()},
			{prefixes: []string{view.FullTestPrefix, view.UnlockPrefix}, handler: fullTestsHandler},
			{
				prefixes: []string{view.AnswerPrefix, view.MarkPrefix, view.NavPrefix, view.PalettePrefix},
				handler:  answer_handler.NewAnswerHandler(app.navigator).GetHandlerFunc(),
			},
			{
				exact:   []string{view.SubmitData, view.SubmitYesData, view.SubmitNoData},
				handler: submit_handler.NewSubmitHandler(app.navigator).GetHandlerFunc(),
			},
			{
				prefixes: []string{view.ReasonPrefix, view.ReviewPrefix, view.FinalizePrefix},
				handler:  reason_handler.NewReasonHandler(app.navigator).GetHandlerFunc(),
			},
			{prefixes: []string{view.ResultPrefix, view.PDFPrefix}, handler: resultsHandler},
			{prefixes: []string{view.PerformancePrefix}, handler: performanceHandler},
			{prefixes: []string{view.PlanPrefix}, handler: plansHandler},
		},
	}
	auth.Handle(telebot.OnCallback, router.Handle)

	app.bot.Handle(telebot.OnText, func(c telebot.Context) error {
		return startHandler.SendMenu(context.Background(), c)
	}, app.requireLogin)
}
