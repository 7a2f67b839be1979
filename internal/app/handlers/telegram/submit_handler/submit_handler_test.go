package submit_handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/IT-Nick/exambot/internal/app/navigator"
	"github.com/IT-Nick/exambot/internal/domain/attempts"
	msgRepo "github.com/IT-Nick/exambot/internal/domain/messages/repository"
	msgService "github.com/IT-Nick/exambot/internal/domain/messages/service"
	"github.com/IT-Nick/exambot/internal/domain/model"
	reviewsRepo "github.com/IT-Nick/exambot/internal/domain/reviews/repository"
	"github.com/IT-Nick/exambot/internal/infra/apiclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/telebot.v4"
)

// 1. TestSubmitHandler_Confirm - кнопка "Завершить" спрашивает подтверждение со счетчиком ответов.
// 2. TestSubmitHandler_SubmitYes - подтверждение отправляет ответы, повторное нажатие ничего не отправляет.
// 3. TestSubmitHandler_FailureKeepsQuestion - при ошибке сети экран вопроса остается с текстом ошибки.
// 4. TestSubmitHandler_ReviewNotSaved - ответы приняты, но вопросы на проверку не сохранились: вопрос не показывается.
// 5. TestSubmitHandler_SubmitNo - отказ возвращает к вопросу без отправки.

const chatID = 77

type call struct {
	method string
	params map[string]any
}

// telegramAPI - фейковый Bot API, который запоминает вызовы
type telegramAPI struct {
	mu    sync.Mutex
	calls []call
}

func (api *telegramAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	params := map[string]any{}
	_ = json.NewDecoder(r.Body).Decode(&params)

	api.mu.Lock()
	api.calls = append(api.calls, call{method: r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:], params: params})
	api.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1,"chat":{"id":77}}}`))
}

func (api *telegramAPI) last(method string) map[string]any {
	api.mu.Lock()
	defer api.mu.Unlock()
	for i := len(api.calls) - 1; i >= 0; i-- {
		if api.calls[i].method == method {
			return api.calls[i].params
		}
	}
	return nil
}

// fakeSubmitter отдает ошибки по очереди, затем outcome
type fakeSubmitter struct {
	mu      sync.Mutex
	calls   int
	outcome model.SubmitOutcome
	errs    []error
}

func (f *fakeSubmitter) SubmitAttempt(context.Context, int, model.SubmitRequest) (*model.SubmitOutcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return nil, err
	}
	outcome := f.outcome
	return &outcome, nil
}

func (f *fakeSubmitter) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// brokenReviews не может сохранить вопросы на проверку
type brokenReviews struct {
	*reviewsRepo.MemoryRepository
}

func (brokenReviews) SavePendingReview(context.Context, model.PendingReview) error {
	return errors.New("disk full")
}

type env struct {
	api      *telegramAPI
	bot      *telebot.Bot
	registry *attempts.Registry
	handler  *SubmitHandler
}

func newEnv(t *testing.T) *env {
	t.Helper()
	api := &telegramAPI{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	bot, err := telebot.NewBot(telebot.Settings{URL: srv.URL, Token: "test", Offline: true})
	require.NoError(t, err)

	registry := attempts.NewRegistry()
	nav := navigator.New(context.Background(), bot, nil,
		msgService.NewMessageService(msgRepo.NewMemoryRepository(nil)),
		registry, nil, nil, nil, navigator.Settings{})

	return &env{api: api, bot: bot, registry: registry, handler: NewSubmitHandler(nav)}
}

func (e *env) startAttempt(t *testing.T, submitter attempts.Submitter, reviews attempts.ReviewStore) *attempts.Attempt {
	t.Helper()
	attempt, err := attempts.New(attempts.Config{
		ChatID: chatID,
		Attempt: &model.Attempt{
			SubmissionID: 5,
			TestCard: model.AttemptTestCard{
				ID:              "card-5",
				Name:            "Геометрия",
				DurationMinutes: 10,
				Questions: []model.Question{
					{ID: 1, QuestionText: "Сумма углов треугольника", OptionA: "90", OptionB: "180", OptionC: "270", OptionD: "360"},
					{ID: 2, QuestionText: "Число сторон квадрата", OptionA: "3", OptionB: "4", OptionC: "5", OptionD: "6"},
				},
			},
		},
		Submitter: submitter,
		Reviews:   reviews,
	})
	require.NoError(t, err)
	require.NoError(t, attempt.Start(context.Background()))
	t.Cleanup(attempt.Detach)
	e.registry.Put(chatID, attempt)
	return attempt
}

func (e *env) press(t *testing.T, data string) error {
	t.Helper()
	chat := &telebot.Chat{ID: chatID}
	return e.handler.Handle(e.bot.NewContext(telebot.Update{
		Callback: &telebot.Callback{
			ID:      "cb",
			Data:    "\f" + data,
			Sender:  &telebot.User{ID: chatID},
			Message: &telebot.Message{ID: 10, Chat: chat},
		},
	}))
}

func TestSubmitHandler_Confirm(t *testing.T) {
	e := newEnv(t)
	submitter := &fakeSubmitter{}
	attempt := e.startAttempt(t, submitter, nil)
	_, err := attempt.SelectOption(1, model.OptionB)
	require.NoError(t, err)

	require.NoError(t, e.press(t, "submit"))

	edit := e.api.last("editMessageText")
	require.NotNil(t, edit)
	assert.Contains(t, edit["text"], "Отправить ответы? Отвечено 1 из 2.")
	assert.Contains(t, edit["reply_markup"], "submit_yes")
	assert.Contains(t, edit["reply_markup"], "submit_no")
	assert.Zero(t, submitter.Calls(), "без подтверждения ничего не отправляется")
}

func TestSubmitHandler_SubmitYes(t *testing.T) {
	e := newEnv(t)
	submitter := &fakeSubmitter{outcome: model.SubmitOutcome{ID: 5}}
	attempt := e.startAttempt(t, submitter, nil)

	require.NoError(t, e.press(t, "submit_yes"))

	assert.Equal(t, attempts.PhaseSubmitted, attempt.Snapshot().Phase)
	assert.Equal(t, "✅ Ответы отправлены.", e.api.last("editMessageText")["text"])

	require.NoError(t, e.press(t, "submit_yes"))
	assert.Equal(t, 1, submitter.Calls(), "повторное подтверждение не отправляет ответы")
	assert.Equal(t, "Попытка уже отправлена.", e.api.last("sendMessage")["text"])
}

func TestSubmitHandler_FailureKeepsQuestion(t *testing.T) {
	e := newEnv(t)
	submitter := &fakeSubmitter{errs: []error{&apiclient.NetworkError{Op: "POST", Err: errors.New("connection reset")}}}
	attempt := e.startAttempt(t, submitter, nil)

	require.NoError(t, e.press(t, "submit_yes"))

	s := attempt.Snapshot()
	assert.Equal(t, attempts.PhaseActive, s.Phase, "попытку можно отправить еще раз")
	assert.Equal(t, attempts.CountdownRunning, s.CountdownState)

	edit := e.api.last("editMessageText")
	require.NotNil(t, edit)
	assert.Contains(t, edit["text"], "Сумма углов треугольника")
	assert.Contains(t, edit["text"], "Ответы не отправлены")
	assert.Contains(t, edit["text"], "Нет связи с сервером")
	assert.Contains(t, edit["reply_markup"], "ans_1_A")
}

func TestSubmitHandler_ReviewNotSaved(t *testing.T) {
	e := newEnv(t)
	submitter := &fakeSubmitter{outcome: model.SubmitOutcome{
		ID:                 5,
		RequiresMarkReview: true,
		MarkedQuestions:    []model.MarkedQuestion{{ID: 2, QuestionText: "Число сторон квадрата"}},
	}}
	attempt := e.startAttempt(t, submitter, brokenReviews{reviewsRepo.NewMemoryRepository()})
	_, err := attempt.ToggleMark(2)
	require.NoError(t, err)

	require.NoError(t, e.press(t, "submit_yes"))

	assert.Equal(t, attempts.PhaseSubmitted, attempt.Snapshot().Phase, "сервер принял ответы")

	edit := e.api.last("editMessageText")
	require.NotNil(t, edit)
	assert.Equal(t, "⚠️ Что-то пошло не так. Попробуйте еще раз.", edit["text"])
	assert.NotContains(t, edit["text"], "Сумма углов треугольника", "экран вопроса больше не показывается")
	assert.Nil(t, edit["reply_markup"], "кнопок ответа нет")
}

func TestSubmitHandler_SubmitNo(t *testing.T) {
	e := newEnv(t)
	submitter := &fakeSubmitter{}
	attempt := e.startAttempt(t, submitter, nil)

	require.NoError(t, e.press(t, "submit_no"))

	assert.Zero(t, submitter.Calls())
	assert.Equal(t, attempts.PhaseActive, attempt.Snapshot().Phase)
	assert.Contains(t, e.api.last("editMessageText")["text"], "Сумма углов треугольника")
}
