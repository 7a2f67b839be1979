package navigator

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/IT-Nick/exambot/internal/domain/attempts"
	msgRepo "github.com/IT-Nick/exambot/internal/domain/messages/repository"
	msgService "github.com/IT-Nick/exambot/internal/domain/messages/service"
	"github.com/IT-Nick/exambot/internal/domain/model"
	reviewsRepo "github.com/IT-Nick/exambot/internal/domain/reviews/repository"
	"github.com/IT-Nick/exambot/internal/infra/report"
	"github.com/IT-Nick/exambot/internal/infra/timer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/telebot.v4"
)

/*
	1. TestLaunch_AutoSubmitShowsResults - таймер на нуле отправляет ответы и показывает результаты по id от сервера.
	2. TestLaunch_MarkedQuestionsOpenReview - отмеченные вопросы ведут к сбору причин, вопросы сохраняются по номеру попытки.
	3. TestSessionExpired - принудительный выход бросает попытку и сообщает пользователю.
	4. TestSendReport - отчет уходит PDF документом.
	5. TestLaunch_DoubleTapStartsOnce - второй запуск, пока первый ждет сервер, не отправляет start_test.
*/

const chat int64 = 77

type fakeBot struct {
	mu   sync.Mutex
	sent []any
	id   int
}

func (b *fakeBot) Send(_ telebot.Recipient, what interface{}, _ ...interface{}) (*telebot.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, what)
	b.id++
	return &telebot.Message{ID: b.id}, nil
}

func (b *fakeBot) Edit(telebot.Editable, interface{}, ...interface{}) (*telebot.Message, error) {
	return &telebot.Message{}, nil
}

func (b *fakeBot) texts() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for _, s := range b.sent {
		if text, ok := s.(string); ok {
			out = append(out, text)
		}
	}
	return out
}

type fakeExams struct {
	outcome  model.SubmitOutcome
	resultID int
	saved    []model.SaveReasonsRequest

	mu      sync.Mutex
	starts  int
	entered chan struct{}
	gate    chan struct{}
}

type submitFunc func(ctx context.Context, submissionID int, req model.SubmitRequest) (*model.SubmitOutcome, error)

func (f submitFunc) SubmitAttempt(ctx context.Context, submissionID int, req model.SubmitRequest) (*model.SubmitOutcome, error) {
	return f(ctx, submissionID, req)
}

type saveFunc func(ctx context.Context, submissionID int, req model.SaveReasonsRequest) error

func (f saveFunc) SaveMarkReasons(ctx context.Context, submissionID int, req model.SaveReasonsRequest) error {
	return f(ctx, submissionID, req)
}

func (f *fakeExams) StartAttempt(context.Context, int64, model.ID) (*model.Attempt, error) {
	f.mu.Lock()
	f.starts++
	entered, gate := f.entered, f.gate
	f.mu.Unlock()
	if entered != nil {
		close(entered)
	}
	if gate != nil {
		<-gate
	}

	return &model.Attempt{
		SubmissionID: 7,
		TestCard: model.AttemptTestCard{
			ID:              "5",
			Name:            "Mock",
			DurationMinutes: 1,
			Questions: []model.Question{
				{ID: 1, QuestionText: "2+2?", OptionA: "4", OptionB: "5"},
				{ID: 2, QuestionText: "3+3?", OptionA: "6", OptionB: "7"},
			},
		},
	}, nil
}

func (f *fakeExams) GetResult(_ context.Context, _ int64, submissionID int) (*model.SubmissionResult, error) {
	f.resultID = submissionID
	return &model.SubmissionResult{ID: submissionID, Score: 4, Percentage: 100, TestCard: model.ResultTestCard{Name: "Mock"}}, nil
}

func (f *fakeExams) SubmitterFor(int64) attempts.Submitter {
	return submitFunc(func(context.Context, int, model.SubmitRequest) (*model.SubmitOutcome, error) {
		outcome := f.outcome
		return &outcome, nil
	})
}

func (f *fakeExams) ReasonSaverFor(int64) attempts.ReasonSaver {
	return saveFunc(func(_ context.Context, _ int, req model.SaveReasonsRequest) error {
		f.saved = append(f.saved, req)
		return nil
	})
}

type env struct {
	nav     *Navigator
	bot     *fakeBot
	exams   *fakeExams
	reviews *reviewsRepo.MemoryRepository
	timer   *timer.Updater
}

func newEnv(t *testing.T, outcome model.SubmitOutcome) *env {
	t.Helper()
	bot := &fakeBot{}
	exams := &fakeExams{outcome: outcome}
	reviews := reviewsRepo.NewMemoryRepository()
	updater := timer.NewTimerUpdater(bot, time.Hour)
	nav := New(context.Background(), bot, exams,
		msgService.NewMessageService(msgRepo.NewMemoryRepository(nil)),
		attempts.NewRegistry(), reviews, updater, report.NewGenerator(""),
		Settings{SubmitTimeout: time.Second},
	)
	return &env{nav: nav, bot: bot, exams: exams, reviews: reviews, timer: updater}
}

func expire(t *testing.T, a *attempts.Attempt) {
	t.Helper()
	for i := 0; i < 60; i++ {
		a.Countdown().Tick()
	}
}

func TestLaunch_AutoSubmitShowsResults(t *testing.T) {
	e := newEnv(t, model.SubmitOutcome{ID: 900})
	ctx := context.Background()

	require.NoError(t, e.nav.Launch(ctx, chat, "5"))
	a, ok := e.nav.Attempt(chat)
	require.True(t, ok)

	texts := e.bot.texts()
	require.Len(t, texts, 2)
	assert.Contains(t, texts[0], "00:01:00")
	assert.Contains(t, texts[1], "2+2?")

	expire(t, a)
	e.timer.Wait()

	assert.Equal(t, 900, e.exams.resultID, "результаты запрашиваются по id из ответа сервера")
	texts = e.bot.texts()
	assert.Contains(t, texts[len(texts)-1], "Процент: <b>100.0%</b>")

	_, ok = e.nav.Attempt(chat)
	assert.False(t, ok, "отправленная попытка убирается из реестра")
}

func TestLaunch_MarkedQuestionsOpenReview(t *testing.T) {
	e := newEnv(t, model.SubmitOutcome{
		ID:                 900,
		RequiresMarkReview: true,
		MarkedQuestions:    []model.MarkedQuestion{{ID: 2, QuestionText: "3+3?"}},
	})
	ctx := context.Background()

	require.NoError(t, e.nav.Launch(ctx, chat, "5"))
	a, _ := e.nav.Attempt(chat)
	_, err := a.ToggleMark(2)
	require.NoError(t, err)

	target, err := a.Submit(ctx, attempts.TriggerManual)
	require.NoError(t, err)
	assert.Equal(t, model.Target{View: model.ViewMarkReasons, SubmissionID: 7}, target)

	review, err := e.reviews.GetPendingReview(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, review)
	assert.Equal(t, chat, review.ChatID)

	flow, ok := e.nav.Registry().Review(chat)
	require.True(t, ok)
	assert.Equal(t, 7, flow.SubmissionID())

	texts := e.bot.texts()
	assert.True(t, strings.Contains(texts[len(texts)-1], "Готово: 0 из 1"))

	// Сбор причин поднимается из хранилища и после потери памяти
	e.nav.Abandon(chat)
	flow, err = e.nav.OpenReview(ctx, chat, 7)
	require.NoError(t, err)
	require.NoError(t, flow.SetReason(2, model.ReasonTimePressure))
	target, err = flow.Finalize(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.Target{View: model.ViewResults, SubmissionID: 7}, target)
	require.Len(t, e.exams.saved, 1)
	assert.Equal(t, model.ReasonTimePressure, e.exams.saved[0].Reasons[0].Reason)
}

func TestSessionExpired(t *testing.T) {
	e := newEnv(t, model.SubmitOutcome{ID: 900})
	ctx := context.Background()
	require.NoError(t, e.nav.Launch(ctx, chat, "5"))
	a, _ := e.nav.Attempt(chat)

	e.nav.SessionExpired(ctx, chat)

	assert.True(t, a.Detached())
	_, ok := e.nav.Attempt(chat)
	assert.False(t, ok)
	texts := e.bot.texts()
	assert.Contains(t, texts[len(texts)-1], "Сессия истекла")
}

func TestSendReport(t *testing.T) {
	e := newEnv(t, model.SubmitOutcome{})
	require.NoError(t, e.nav.SendReport(context.Background(), chat, 900))

	e.bot.mu.Lock()
	defer e.bot.mu.Unlock()
	doc, ok := e.bot.sent[len(e.bot.sent)-1].(*telebot.Document)
	require.True(t, ok)
	assert.Equal(t, "result_900.pdf", doc.FileName)
}

func TestLaunch_DoubleTapStartsOnce(t *testing.T) {
	e := newEnv(t, model.SubmitOutcome{ID: 900})
	e.exams.entered = make(chan struct{})
	e.exams.gate = make(chan struct{})
	ctx := context.Background()

	first := make(chan error, 1)
	go func() {
		first <- e.nav.Launch(ctx, chat, "5")
	}()
	<-e.exams.entered

	err := e.nav.Launch(ctx, chat, "5")
	assert.ErrorIs(t, err, attempts.ErrLaunchInFlight, "повторное нажатие во время запуска отклоняется")

	close(e.exams.gate)
	require.NoError(t, <-first)

	e.exams.mu.Lock()
	starts := e.exams.starts
	e.exams.mu.Unlock()
	assert.Equal(t, 1, starts, "на сервер ушел один start_test")

	a, ok := e.nav.Attempt(chat)
	require.True(t, ok)
	assert.False(t, a.Detached())

	// после завершения запуска можно начать тест заново
	e.exams.entered, e.exams.gate = nil, nil
	require.NoError(t, e.nav.Launch(ctx, chat, "5"))
	assert.True(t, a.Detached(), "новый запуск заменяет прежнюю попытку")
}
