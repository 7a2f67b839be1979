package attempts

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/IT-Nick/exambot/internal/domain/model"
	"github.com/rs/zerolog/log"
)

var (
	ErrReasonsIncomplete = errors.New("not every marked question has a reason")
	ErrFinalizeInFlight  = errors.New("finalize already in flight")
	ErrReviewFinalized   = errors.New("review already finalized")
	ErrUnknownReason     = errors.New("unknown reason")
	ErrReviewNotFound    = errors.New("no questions awaiting review")
)

// ReasonSaver отправляет причины отметок
type ReasonSaver interface {
	SaveMarkReasons(ctx context.Context, submissionID int, req model.SaveReasonsRequest) error
}

// ReviewFlow собирает по одной причине на каждый отмеченный вопрос и отправляет их одним запросом
type ReviewFlow struct {
	mu sync.Mutex

	submissionID int
	questions    []model.MarkedQuestion
	reasons      map[int]model.Reason
	finalizing   bool
	finalized    bool

	saver   ReasonSaver
	reviews ReviewStore
}

// LoadReview поднимает вопросы, ожидающие причин, по номеру попытки
func LoadReview(ctx context.Context, reviews ReviewStore, saver ReasonSaver, submissionID int) (*ReviewFlow, error) {
	review, err := reviews.GetPendingReview(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending review: %w", err)
	}
	if review == nil || len(review.Questions) == 0 {
		return nil, ErrReviewNotFound
	}
	return NewReviewFlow(submissionID, review.Questions, saver, reviews), nil
}

// NewReviewFlow создает сбор причин. Повторяющиеся вопросы учитываются один раз.
func NewReviewFlow(submissionID int, questions []model.MarkedQuestion, saver ReasonSaver, reviews ReviewStore) *ReviewFlow {
	seen := make(map[int]bool, len(questions))
	unique := make([]model.MarkedQuestion, 0, len(questions))
	for _, q := range questions {
		if seen[q.ID] {
			continue
		}
		seen[q.ID] = true
		unique = append(unique, q)
	}

	return &ReviewFlow{
		submissionID: submissionID,
		questions:    unique,
		reasons:      make(map[int]model.Reason, len(unique)),
		saver:        saver,
		reviews:      reviews,
	}
}

// SubmissionID возвращает номер попытки
func (f *ReviewFlow) SubmissionID() int { return f.submissionID }

// Questions возвращает вопросы, для которых нужна причина
func (f *ReviewFlow) Questions() []model.MarkedQuestion { return f.questions }

// SetReason записывает причину, перезаписывая прежнюю
func (f *ReviewFlow) SetReason(questionID int, reason model.Reason) error {
	if !reason.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownReason, reason)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.finalized {
		return ErrReviewFinalized
	}
	if !f.has(questionID) {
		return fmt.Errorf("%w: %d", ErrUnknownQuestion, questionID)
	}
	f.reasons[questionID] = reason
	return nil
}

// Reason возвращает записанную причину
func (f *ReviewFlow) Reason(questionID int) (model.Reason, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	reason, ok := f.reasons[questionID]
	return reason, ok
}

// Ready сообщает, что причины есть у всех вопросов
func (f *ReviewFlow) Ready() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reasons) == len(f.questions)
}

// Progress возвращает число записанных причин и общее число вопросов
func (f *ReviewFlow) Progress() (done, total int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reasons), len(f.questions)
}

// Finalize отправляет все причины одним запросом. Пока причин не хватает, запроса нет.
func (f *ReviewFlow) Finalize(ctx context.Context) (model.Target, error) {
	f.mu.Lock()
	switch {
	case f.finalized:
		f.mu.Unlock()
		return model.Target{}, ErrReviewFinalized
	case f.finalizing:
		f.mu.Unlock()
		return model.Target{}, ErrFinalizeInFlight
	case len(f.reasons) != len(f.questions):
		f.mu.Unlock()
		return model.Target{}, ErrReasonsIncomplete
	}

	f.finalizing = true
	req := model.SaveReasonsRequest{Reasons: make([]model.ReasonPayload, 0, len(f.questions))}
	for _, q := range f.questions {
		req.Reasons = append(req.Reasons, model.ReasonPayload{QuestionID: q.ID, Reason: f.reasons[q.ID]})
	}
	f.mu.Unlock()

	err := f.saver.SaveMarkReasons(ctx, f.submissionID, req)

	f.mu.Lock()
	f.finalizing = false
	if err == nil {
		f.finalized = true
	}
	f.mu.Unlock()

	if err != nil {
		return model.Target{}, fmt.Errorf("failed to save mark reasons for %d: %w", f.submissionID, err)
	}

	if f.reviews != nil {
		if err := f.reviews.DeletePendingReview(ctx, f.submissionID); err != nil {
			// Причины уже сохранены сервером, запись удалится по сроку хранения
			log.Warn().Err(err).Int("submission_id", f.submissionID).Msg("failed to delete pending review")
		}
	}

	return model.Target{View: model.ViewResults, SubmissionID: f.submissionID}, nil
}

func (f *ReviewFlow) has(questionID int) bool {
	for _, q := range f.questions {
		if q.ID == questionID {
			return true
		}
	}
	return false
}
