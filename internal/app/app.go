package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/IT-Nick/exambot/internal/app/handlers/http/active_sessions_handler"
	"github.com/IT-Nick/exambot/internal/app/handlers/http/generate_test_link_handler"
	"github.com/IT-Nick/exambot/internal/app/navigator"
	"github.com/IT-Nick/exambot/internal/app/view"
	"github.com/IT-Nick/exambot/internal/domain/attempts"
	credService "github.com/IT-Nick/exambot/internal/domain/credentials/service"
	examsService "github.com/IT-Nick/exambot/internal/domain/exams/service"
	msgService "github.com/IT-Nick/exambot/internal/domain/messages/service"
	"github.com/IT-Nick/exambot/internal/domain/model"
	"github.com/IT-Nick/exambot/internal/infra/apiclient"
	"github.com/IT-Nick/exambot/internal/infra/config"
	"github.com/IT-Nick/exambot/internal/infra/logger"
	"github.com/IT-Nick/exambot/internal/infra/middleware"
	"github.com/IT-Nick/exambot/internal/infra/report"
	"github.com/IT-Nick/exambot/internal/infra/timer"
	httpError "github.com/IT-Nick/exambot/pkg/http"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gopkg.in/telebot.v4"
)

const (
	purgeInterval   = time.Hour
	shutdownTimeout = 10 * time.Second
)

type Services struct {
	credentialService *credService.CredentialService
	examService       *examsService.ExamService
	messageService    *msgService.MessageService
}

type App struct {
	config  *config.Config
	logger  zerolog.Logger
	bot     *telebot.Bot
	storage *Storage
	server  *http.Server

	Services
	registry  *attempts.Registry
	timer     *timer.Updater
	navigator *navigator.Navigator
}

// NewApp собирает приложение. ctx ограничивает жизнь таймеров попыток.
func NewApp(ctx context.Context, configPath string) (*App, error) {
	configImpl, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("config.LoadConfig: %w", err)
	}

	appLogger, err := logger.Init(configImpl.Logging.Level, configImpl.Logging.Format)
	if err != nil {
		return nil, fmt.Errorf("logger.Init: %w", err)
	}

	storage, err := InitStorage(ctx, configImpl)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	app := &App{
		config:   configImpl,
		logger:   appLogger,
		storage:  storage,
		registry: attempts.NewRegistry(),
	}

	if err := app.initBot(); err != nil {
		storage.Close()
		return nil, err
	}
	app.initServices(ctx)

	return app, nil
}

func (app *App) initBot() error {
	bot, err := telebot.NewBot(telebot.Settings{
		Token:   app.config.TelegramBot.Token,
		Poller:  &telebot.LongPoller{Timeout: app.config.TelegramBot.PollTimeout},
		Verbose: app.config.TelegramBot.Debug,
		OnError: func(err error, c telebot.Context) {
			event := app.logger.Error().Err(err)
			if c != nil && c.Chat() != nil {
				event = event.Int64("chat_id", c.Chat().ID)
			}
			event.Msg("telegram handler failed")
		},
	})
	if err != nil {
		return fmt.Errorf("telebot.NewBot: %w", err)
	}
	app.bot = bot
	return nil
}

// Функция для инициализации сервисов и репозиториев
func (app *App) initServices(ctx context.Context) {
	cfg := app.config

	app.credentialService = credService.NewCredentialService(app.storage.Credentials)
	app.messageService = msgService.NewMessageService(app.storage.Messages)

	// Навигатор создается после пула, поэтому хук выхода связывается через app
	pool := apiclient.NewPool(cfg.API.BaseURL,
		func(chatID int64) apiclient.TokenStore { return app.credentialService.ForChat(chatID) },
		func(ctx context.Context, chatID int64) { app.navigator.SessionExpired(ctx, chatID) },
		apiclient.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
		apiclient.WithUserAgent(cfg.API.UserAgent),
	)
	app.examService = examsService.NewExamService(pool, apiclient.NewKeyLedger(cfg.Idempotency.TTL))

	app.timer = timer.NewTimerUpdater(app.bot, cfg.Timer.RefreshInterval)
	app.navigator = navigator.New(ctx, app.bot, app.examService, app.messageService,
		app.registry, app.storage.Reviews, app.timer, report.NewGenerator(cfg.Report.FontDir),
		navigator.Settings{
			TickInterval:  cfg.Timer.Tick,
			SubmitTimeout: cfg.Timer.SubmitTimeout,
		})
}

// requireLogin пропускает дальше только чаты, вошедшие в backend API
func (app *App) requireLogin(next telebot.HandlerFunc) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		ctx := context.Background()
		loggedIn, err := app.examService.LoggedIn(ctx, c.Chat().ID)
		if err != nil {
			return navigator.Alert(c, view.ErrorText(err))
		}
		if !loggedIn {
			return navigator.Alert(c, app.messageService.Text(ctx, model.WelcomeGuestKey))
		}
		return next(c)
	}
}

// routes - служебный HTTP API
func (app *App) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.Recoverer, middleware.RequestLogger(app.logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpError.JSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/sessions/active", active_sessions_handler.NewActiveSessionsHandler(app.registry))
	r.Method(http.MethodPost, "/links/test_card", generate_test_link_handler.NewGenerateTestLinkHandler(app.config.TelegramBot.Username))

	return r
}

// purgeExpiredReviews удаляет ожидающие причины старше storage.review_ttl
func (app *App) purgeExpiredReviews(ctx context.Context) error {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			deleted, err := app.storage.Reviews.DeleteExpired(ctx, time.Now().Add(-app.config.Storage.ReviewTTL))
			if err != nil {
				app.logger.Warn().Err(err).Msg("failed to purge expired reviews")
				continue
			}
			if deleted > 0 {
				app.logger.Info().Int64("deleted", deleted).Msg("expired reviews purged")
			}
		}
	}
}

// ListenAndServe запускает Telegram бота, HTTP сервер и очистку хранилища до отмены ctx
func (app *App) ListenAndServe(ctx context.Context) error {
	app.bootstrapHandlersTelegram()

	app.server = &http.Server{
		Addr:              app.config.Addr(),
		Handler:           app.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.logger.Info().Str("bot", app.bot.Me.Username).Msg("telegram bot started")
		app.bot.Start()
		return nil
	})
	g.Go(func() error {
		app.logger.Info().Str("addr", app.server.Addr).Msg("http server started")
		if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return app.purgeExpiredReviews(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		app.bot.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return app.server.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	app.timer.Wait()
	app.storage.Close()
	app.logger.Info().Msg("app stopped")
	return err
}
