package attempts

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/IT-Nick/exambot/internal/domain/model"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	ErrSubmissionInFlight = errors.New("submission already in flight")
	ErrAlreadySubmitted   = errors.New("attempt already submitted")
	ErrAttemptClosed      = errors.New("attempt is closed for changes")
	ErrUnknownQuestion    = errors.New("unknown question")
	ErrUnknownOption      = errors.New("unknown option")
	ErrQuestionIndex      = errors.New("question index out of range")
	ErrLaunchInFlight     = errors.New("attempt launch already in flight")

	// ErrTimeExpired - правки после истечения времени, частный случай ErrAttemptClosed
	ErrTimeExpired = fmt.Errorf("%w: time is up", ErrAttemptClosed)
)

// Submitter отправляет ответы попытки
type Submitter interface {
	SubmitAttempt(ctx context.Context, submissionID int, req model.SubmitRequest) (*model.SubmitOutcome, error)
}

// ReviewStore хранит вопросы, ожидающие причин, по номеру попытки
type ReviewStore interface {
	SavePendingReview(ctx context.Context, review model.PendingReview) error
	GetPendingReview(ctx context.Context, submissionID int) (*model.PendingReview, error)
	DeletePendingReview(ctx context.Context, submissionID int) error
}

// Trigger - источник отправки
type Trigger int

const (
	TriggerManual Trigger = iota
	TriggerAuto
)

func (t Trigger) String() string {
	if t == TriggerAuto {
		return "auto"
	}
	return "manual"
}

// Phase - стадия отправки попытки
type Phase int

const (
	PhaseActive Phase = iota
	PhaseSubmitting
	PhaseSubmitted
)

func (p Phase) String() string {
	switch p {
	case PhaseSubmitting:
		return "submitting"
	case PhaseSubmitted:
		return "submitted"
	}
	return "active"
}

// Config - зависимости попытки
type Config struct {
	ChatID    int64
	Attempt   *model.Attempt
	Submitter Submitter
	Reviews   ReviewStore

	// TickInterval - интервал тиков таймера. 0 - тики подаются снаружи через Countdown().Tick().
	TickInterval time.Duration
	// SubmitTimeout ограничивает автоотправку, у которой нет контекста обработчика
	SubmitTimeout time.Duration

	OnTick     func(remaining int)
	OnNavigate func(ctx context.Context, target model.Target)
	// OnAutoSubmitError сообщает пользователю, что автоотправка не удалась. Повтора нет.
	OnAutoSubmitError func(err error)

	Logger *zerolog.Logger
}

// Attempt - клиентская сессия одной попытки: ответы, таймер и отправка
type Attempt struct {
	mu sync.Mutex

	chatID       int64
	submissionID int
	card         model.AttemptTestCard
	positions    map[int]int

	answers   Answers
	current   int
	phase     Phase
	lastErr   error
	detached  bool
	startedAt time.Time
	now       func() time.Time

	countdown     *Countdown
	cancel        context.CancelFunc
	baseCtx       context.Context
	tickInterval  time.Duration
	submitTimeout time.Duration

	submitter         Submitter
	reviews           ReviewStore
	onNavigate        func(ctx context.Context, target model.Target)
	onAutoSubmitError func(err error)

	logger zerolog.Logger
}

// New создает попытку с пустыми ответами на все вопросы
func New(cfg Config) (*Attempt, error) {
	if cfg.Attempt == nil {
		return nil, errors.New("attempt is required")
	}
	if cfg.Submitter == nil {
		return nil, errors.New("submitter is required")
	}
	if len(cfg.Attempt.TestCard.Questions) == 0 {
		return nil, fmt.Errorf("attempt %d has no questions", cfg.Attempt.SubmissionID)
	}

	positions := make(map[int]int, len(cfg.Attempt.TestCard.Questions))
	for i, q := range cfg.Attempt.TestCard.Questions {
		positions[q.ID] = i
	}

	logger := log.Logger
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}
	submitTimeout := cfg.SubmitTimeout
	if submitTimeout <= 0 {
		submitTimeout = 30 * time.Second
	}

	a := &Attempt{
		chatID:            cfg.ChatID,
		submissionID:      cfg.Attempt.SubmissionID,
		card:              cfg.Attempt.TestCard,
		positions:         positions,
		answers:           NewAnswers(cfg.Attempt.TestCard.Questions),
		tickInterval:      cfg.TickInterval,
		submitTimeout:     submitTimeout,
		submitter:         cfg.Submitter,
		reviews:           cfg.Reviews,
		onNavigate:        cfg.OnNavigate,
		onAutoSubmitError: cfg.OnAutoSubmitError,
		now:               time.Now,
		logger: logger.With().
			Int64("chat_id", cfg.ChatID).
			Int("submission_id", cfg.Attempt.SubmissionID).
			Logger(),
	}
	a.countdown = NewCountdown(cfg.OnTick, a.autoSubmit)
	return a, nil
}

// Start запускает таймер попытки. Контекст задает время жизни тиков.
func (a *Attempt) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)

	a.mu.Lock()
	a.cancel = cancel
	a.baseCtx = context.WithoutCancel(ctx)
	a.startedAt = a.now()
	a.mu.Unlock()

	seconds := a.card.DurationMinutes * 60
	if a.tickInterval > 0 {
		if err := a.countdown.Start(runCtx, seconds, a.tickInterval); err != nil {
			cancel()
			return fmt.Errorf("failed to start countdown: %w", err)
		}
	} else if err := a.countdown.Arm(seconds); err != nil {
		cancel()
		return fmt.Errorf("failed to arm countdown: %w", err)
	}

	a.logger.Info().Int("duration_seconds", seconds).Int("questions", len(a.card.Questions)).Msg("attempt started")
	return nil
}

// SubmissionID возвращает идентификатор попытки
func (a *Attempt) SubmissionID() int { return a.submissionID }

// ChatID возвращает чат, в котором идет попытка
func (a *Attempt) ChatID() int64 { return a.chatID }

// Countdown возвращает таймер попытки
func (a *Attempt) Countdown() *Countdown { return a.countdown }

// SelectOption выбирает вариант ответа и возвращает новый снимок
func (a *Attempt) SelectOption(questionID int, option model.Option) (Answers, error) {
	if !option.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOption, option)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.checkEditable(questionID); err != nil {
		return nil, err
	}
	a.answers = a.answers.Select(questionID, option)
	return a.answers, nil
}

// ToggleMark переключает отметку "на проверку" и возвращает новый снимок
func (a *Attempt) ToggleMark(questionID int) (Answers, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.checkEditable(questionID); err != nil {
		return nil, err
	}
	a.answers = a.answers.ToggleMark(questionID)
	return a.answers, nil
}

// GoTo меняет только отображаемый вопрос
func (a *Attempt) GoTo(index int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if index < 0 || index >= len(a.card.Questions) {
		return fmt.Errorf("%w: %d", ErrQuestionIndex, index)
	}
	a.current = index
	return nil
}

// checkEditable закрывает правки во время и после отправки, а также после истечения времени.
// После истечения остается только повторная отправка.
func (a *Attempt) checkEditable(questionID int) error {
	if a.phase != PhaseActive {
		return ErrAttemptClosed
	}
	if a.countdown.State() == CountdownExpired {
		return ErrTimeExpired
	}
	if _, ok := a.positions[questionID]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownQuestion, questionID)
	}
	return nil
}

// Snapshot - состояние попытки для отрисовки
type Snapshot struct {
	SubmissionID   int
	TestName       string
	Questions      []model.Question
	Answers        Answers
	Current        int
	Remaining      int
	CountdownState CountdownState
	Phase          Phase
	LastErr        error
	StartedAt      time.Time
}

// CurrentQuestion возвращает отображаемый вопрос
func (s Snapshot) CurrentQuestion() model.Question {
	return s.Questions[s.Current]
}

// Snapshot возвращает текущее состояние попытки
func (a *Attempt) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	return Snapshot{
		SubmissionID:   a.submissionID,
		TestName:       a.card.Name,
		Questions:      a.card.Questions,
		Answers:        a.answers,
		Current:        a.current,
		Remaining:      a.countdown.Remaining(),
		CountdownState: a.countdown.State(),
		Phase:          a.phase,
		LastErr:        a.lastErr,
		StartedAt:      a.startedAt,
	}
}

// Submit отправляет ответы. Пока запрос в полете, повторные вызовы ничего не отправляют.
func (a *Attempt) Submit(ctx context.Context, trigger Trigger) (model.Target, error) {
	a.mu.Lock()
	switch a.phase {
	case PhaseSubmitting:
		a.mu.Unlock()
		return model.Target{}, ErrSubmissionInFlight
	case PhaseSubmitted:
		a.mu.Unlock()
		return model.Target{}, ErrAlreadySubmitted
	}

	a.phase = PhaseSubmitting
	a.lastErr = nil
	a.countdown.Stop()
	req := payload(a.card.Questions, a.answers)
	sentAt := a.now()
	a.mu.Unlock()

	a.logger.Info().Str("trigger", trigger.String()).Int("answers", len(req.Answers)).Msg("submitting attempt")

	outcome, err := a.submitter.SubmitAttempt(ctx, a.submissionID, req)
	if err != nil {
		a.mu.Lock()
		a.phase = PhaseActive
		a.lastErr = err
		if trigger == TriggerManual {
			// пока запрос шел, время попытки не стояло
			a.countdown.Resume(int(a.now().Sub(sentAt) / time.Second))
		}
		a.mu.Unlock()

		a.logger.Error().Err(err).Str("trigger", trigger.String()).Msg("failed to submit attempt")
		return model.Target{}, fmt.Errorf("failed to submit attempt %d: %w", a.submissionID, err)
	}

	target := model.Target{View: model.ViewResults, SubmissionID: outcome.ID}
	if outcome.RequiresMarkReview && len(outcome.MarkedQuestions) > 0 {
		target = model.Target{View: model.ViewMarkReasons, SubmissionID: a.submissionID}
	}

	// Ответ применяется даже после ухода из чата, чтобы не разойтись с сервером
	a.mu.Lock()
	a.phase = PhaseSubmitted
	detached := a.detached
	cancel := a.cancel
	a.mu.Unlock()
	if cancel != nil {
		cancel()
	}

	if target.View == model.ViewMarkReasons {
		if a.reviews == nil {
			return model.Target{}, errors.New("review store is not configured")
		}
		review := model.PendingReview{
			SubmissionID: a.submissionID,
			ChatID:       a.chatID,
			Questions:    outcome.MarkedQuestions,
			CreatedAt:    time.Now(),
		}
		if err := a.reviews.SavePendingReview(ctx, review); err != nil {
			return model.Target{}, fmt.Errorf("failed to save pending review: %w", err)
		}
	}

	a.logger.Info().Str("view", string(target.View)).Bool("detached", detached).Msg("attempt submitted")

	if !detached && a.onNavigate != nil {
		a.onNavigate(ctx, target)
	}
	return target, nil
}

// autoSubmit вызывается таймером на нуле ровно один раз
func (a *Attempt) autoSubmit() {
	a.mu.Lock()
	base := a.baseCtx
	a.mu.Unlock()
	if base == nil {
		base = context.Background()
	}

	ctx, cancel := context.WithTimeout(base, a.submitTimeout)
	defer cancel()

	_, err := a.Submit(ctx, TriggerAuto)
	switch {
	case err == nil, errors.Is(err, ErrSubmissionInFlight), errors.Is(err, ErrAlreadySubmitted):
		return
	}

	if a.onAutoSubmitError != nil {
		a.onAutoSubmitError(err)
	}
}

// Detach отключает попытку от чата: тики прекращаются, навигации больше нет.
// Отправка, уже ушедшая на сервер, будет применена.
func (a *Attempt) Detach() {
	a.mu.Lock()
	a.detached = true
	cancel := a.cancel
	a.mu.Unlock()

	a.countdown.Stop()
	if cancel != nil {
		cancel()
	}
}

// Detached сообщает, отключена ли попытка от чата
func (a *Attempt) Detached() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.detached
}
