package navigator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/IT-Nick/exambot/internal/app/view"
	"github.com/IT-Nick/exambot/internal/domain/attempts"
	msgService "github.com/IT-Nick/exambot/internal/domain/messages/service"
	"github.com/IT-Nick/exambot/internal/domain/model"
	"github.com/IT-Nick/exambot/internal/infra/report"
	"github.com/IT-Nick/exambot/internal/infra/timer"
	"github.com/rs/zerolog/log"
	"gopkg.in/telebot.v4"
)

// Bot - часть telebot.Bot, через которую навигатор пишет в чат
type Bot interface {
	Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error)
	Edit(msg telebot.Editable, what interface{}, opts ...interface{}) (*telebot.Message, error)
}

// Exams - операции backend API, нужные навигатору
type Exams interface {
	StartAttempt(ctx context.Context, chatID int64, cardID model.ID) (*model.Attempt, error)
	GetResult(ctx context.Context, chatID int64, submissionID int) (*model.SubmissionResult, error)
	SubmitterFor(chatID int64) attempts.Submitter
	ReasonSaverFor(chatID int64) attempts.ReasonSaver
}

// Settings - параметры таймера попыток
type Settings struct {
	TickInterval  time.Duration
	SubmitTimeout time.Duration
}

// Navigator запускает попытки и показывает экран, на который указывает результат отправки
type Navigator struct {
	ctx      context.Context
	bot      Bot
	exams    Exams
	messages *msgService.MessageService
	registry *attempts.Registry
	reviews  attempts.ReviewStore
	timer    *timer.Updater
	reports  *report.Generator
	settings Settings
}

// New создает новый экземпляр Navigator. ctx ограничивает жизнь таймеров попыток.
func New(
	ctx context.Context,
	bot Bot,
	exams Exams,
	messages *msgService.MessageService,
	registry *attempts.Registry,
	reviews attempts.ReviewStore,
	timerUpdater *timer.Updater,
	reports *report.Generator,
	settings Settings,
) *Navigator {
	return &Navigator{
		ctx:      ctx,
		bot:      bot,
		exams:    exams,
		messages: messages,
		registry: registry,
		reviews:  reviews,
		timer:    timerUpdater,
		reports:  reports,
		settings: settings,
	}
}

// Messages возвращает сервис текстов
func (n *Navigator) Messages() *msgService.MessageService { return n.messages }

// Registry возвращает реестр попыток
func (n *Navigator) Registry() *attempts.Registry { return n.registry }

// Attempt возвращает активную попытку чата
func (n *Navigator) Attempt(chatID int64) (*attempts.Attempt, bool) {
	return n.registry.Get(chatID)
}

// Launch начинает попытку на сервере, запускает таймер и показывает первый вопрос.
// Прежняя попытка чата отключается. Пока запуск идет, повторный Launch в чате
// возвращает attempts.ErrLaunchInFlight.
func (n *Navigator) Launch(ctx context.Context, chatID int64, cardID model.ID) error {
	if !n.registry.BeginLaunch(chatID) {
		return attempts.ErrLaunchInFlight
	}
	defer n.registry.EndLaunch(chatID)

	started, err := n.exams.StartAttempt(ctx, chatID, cardID)
	if err != nil {
		return err
	}

	var attempt *attempts.Attempt
	attempt, err = attempts.New(attempts.Config{
		ChatID:        chatID,
		Attempt:       started,
		Submitter:     n.exams.SubmitterFor(chatID),
		Reviews:       n.reviews,
		TickInterval:  n.settings.TickInterval,
		SubmitTimeout: n.settings.SubmitTimeout,
		OnTick:        n.timer.OnTick(chatID),
		OnNavigate: func(ctx context.Context, target model.Target) {
			n.registry.RemoveIf(chatID, attempt)
			n.timer.Forget(chatID)
			n.Navigate(ctx, chatID, target)
		},
		OnAutoSubmitError: func(err error) {
			n.autoSubmitFailed(chatID, attempt, err)
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create attempt: %w", err)
	}

	n.registry.Put(chatID, attempt)

	chat := &telebot.Chat{ID: chatID}
	timerMsg, err := n.bot.Send(chat, fmt.Sprintf("⏰ Осталось: *%s*", timer.FormatClock(started.DurationSeconds())), &telebot.SendOptions{
		ParseMode: telebot.ModeMarkdown,
	})
	if err != nil {
		log.Warn().Err(err).Int64("chat_id", chatID).Msg("failed to send timer message")
	} else {
		n.timer.Track(chatID, timerMsg.ID)
	}

	if err := attempt.Start(n.ctx); err != nil {
		n.registry.RemoveIf(chatID, attempt)
		n.timer.Forget(chatID)
		return err
	}

	text, markup := view.QuestionScreen(attempt.Snapshot())
	if _, err := n.bot.Send(chat, text, &telebot.SendOptions{ParseMode: telebot.ModeHTML, ReplyMarkup: markup}); err != nil {
		return fmt.Errorf("failed to send question: %w", err)
	}
	return nil
}

// Navigate показывает экран после отправки: результаты или сбор причин
func (n *Navigator) Navigate(ctx context.Context, chatID int64, target model.Target) {
	var err error
	switch target.View {
	case model.ViewMarkReasons:
		var flow *attempts.ReviewFlow
		flow, err = n.OpenReview(ctx, chatID, target.SubmissionID)
		if err == nil {
			text, markup := n.ReviewScreen(ctx, flow, view.FirstPending(flow))
			err = n.send(chatID, text, markup)
		}
	default:
		err = n.ShowResults(ctx, chatID, target.SubmissionID)
	}

	if err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Str("view", string(target.View)).Msg("failed to navigate")
		n.notify(chatID, view.ErrorText(err))
	}
}

// ShowResults загружает результат попытки и отправляет его новым сообщением
func (n *Navigator) ShowResults(ctx context.Context, chatID int64, submissionID int) error {
	result, err := n.exams.GetResult(ctx, chatID, submissionID)
	if err != nil {
		return err
	}
	text, markup := view.ResultsScreen(result)
	return n.send(chatID, text, markup)
}

// OpenReview возвращает сбор причин попытки: из памяти или из хранилища
func (n *Navigator) OpenReview(ctx context.Context, chatID int64, submissionID int) (*attempts.ReviewFlow, error) {
	if flow, ok := n.registry.Review(chatID); ok && flow.SubmissionID() == submissionID {
		return flow, nil
	}

	flow, err := attempts.LoadReview(ctx, n.reviews, n.exams.ReasonSaverFor(chatID), submissionID)
	if err != nil {
		return nil, err
	}
	n.registry.PutReview(chatID, flow)
	return flow, nil
}

// ReviewScreen - экран сбора причин с текстом из сервиса сообщений
func (n *Navigator) ReviewScreen(ctx context.Context, flow *attempts.ReviewFlow, index int) (string, *telebot.ReplyMarkup) {
	return view.ReviewScreen(flow, index, n.messages.Text(ctx, model.ReviewIntroKey))
}

// SendReport отправляет PDF отчет по попытке
func (n *Navigator) SendReport(ctx context.Context, chatID int64, submissionID int) error {
	result, err := n.exams.GetResult(ctx, chatID, submissionID)
	if err != nil {
		return err
	}
	pdf, err := n.reports.GeneratePDFReport(result)
	if err != nil {
		return err
	}

	doc := &telebot.Document{
		File:     telebot.FromReader(bytes.NewReader(pdf)),
		FileName: report.FileName(result),
		MIME:     "application/pdf",
	}
	if _, err := n.bot.Send(&telebot.Chat{ID: chatID}, doc); err != nil {
		return fmt.Errorf("failed to send report: %w", err)
	}
	return nil
}

// Abandon отключает попытку и сбор причин чата
func (n *Navigator) Abandon(chatID int64) {
	n.registry.Reset(chatID)
	n.timer.Forget(chatID)
}

// SessionExpired вызывается после принудительного выхода: попытка бросается, пользователь получает сообщение
func (n *Navigator) SessionExpired(ctx context.Context, chatID int64) {
	n.Abandon(chatID)
	n.notify(chatID, n.messages.Text(ctx, model.SessionExpiredKey))
}

func (n *Navigator) autoSubmitFailed(chatID int64, attempt *attempts.Attempt, err error) {
	if attempt.Detached() {
		return
	}
	log.Warn().Err(err).Int64("chat_id", chatID).Msg("auto submit failed")

	text, markup := view.QuestionScreen(attempt.Snapshot())
	if sendErr := n.send(chatID, text, markup); sendErr != nil && !errors.Is(sendErr, context.Canceled) {
		log.Error().Err(sendErr).Int64("chat_id", chatID).Msg("failed to report auto submit failure")
	}
}

func (n *Navigator) send(chatID int64, text string, markup *telebot.ReplyMarkup) error {
	_, err := n.bot.Send(&telebot.Chat{ID: chatID}, text, &telebot.SendOptions{
		ParseMode:   telebot.ModeHTML,
		ReplyMarkup: markup,
	})
	return err
}

func (n *Navigator) notify(chatID int64, text string) {
	if _, err := n.bot.Send(&telebot.Chat{ID: chatID}, text); err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("failed to notify chat")
	}
}
