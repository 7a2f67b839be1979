package attempts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/IT-Nick/exambot/internal/domain/model"
	reviewsRepo "github.com/IT-Nick/exambot/internal/domain/reviews/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoMarked() []model.MarkedQuestion {
	return []model.MarkedQuestion{
		{ID: 1, QuestionText: "Вопрос 1"},
		{ID: 2, QuestionText: "Вопрос 2"},
	}
}

// TestFinalize_BlockedUntilAllReasons проверяет, что без всех причин запрос не уходит
func TestFinalize_BlockedUntilAllReasons(t *testing.T) {
	saver := &fakeSaver{}
	flow := NewReviewFlow(7, twoMarked(), saver, nil)

	_, err := flow.Finalize(context.Background())
	assert.ErrorIs(t, err, ErrReasonsIncomplete)

	require.NoError(t, flow.SetReason(1, model.ReasonGuess))
	assert.False(t, flow.Ready())

	_, err = flow.Finalize(context.Background())
	assert.ErrorIs(t, err, ErrReasonsIncomplete)
	assert.Empty(t, saver.requests, "запросов быть не должно")

	require.NoError(t, flow.SetReason(2, model.ReasonConceptError))
	assert.True(t, flow.Ready())
	done, total := flow.Progress()
	assert.Equal(t, 2, done)
	assert.Equal(t, 2, total)
}

func TestSetReason_OverwritesAndValidates(t *testing.T) {
	flow := NewReviewFlow(7, twoMarked(), &fakeSaver{}, nil)

	require.NoError(t, flow.SetReason(1, model.ReasonGuess))
	require.NoError(t, flow.SetReason(1, model.ReasonTimePressure))
	reason, ok := flow.Reason(1)
	require.True(t, ok)
	assert.Equal(t, model.ReasonTimePressure, reason)

	done, _ := flow.Progress()
	assert.Equal(t, 1, done, "перезапись не добавляет причину")

	assert.ErrorIs(t, flow.SetReason(3, model.ReasonGuess), ErrUnknownQuestion)
	assert.ErrorIs(t, flow.SetReason(2, model.Reason("LAZY")), ErrUnknownReason)
}

func TestFinalize_FailurePreservesReasons(t *testing.T) {
	saver := &fakeSaver{errs: []error{errors.New("bad gateway")}}
	reviews := reviewsRepo.NewMemoryRepository()
	ctx := context.Background()
	require.NoError(t, reviews.SavePendingReview(ctx, model.PendingReview{SubmissionID: 7, ChatID: 1, Questions: twoMarked(), CreatedAt: time.Now()}))

	flow, err := LoadReview(ctx, reviews, saver, 7)
	require.NoError(t, err)
	require.NoError(t, flow.SetReason(1, model.ReasonGuess))
	require.NoError(t, flow.SetReason(2, model.ReasonTimePressure))

	_, err = flow.Finalize(ctx)
	require.Error(t, err)
	assert.True(t, flow.Ready(), "причины сохраняются после ошибки")

	review, err := reviews.GetPendingReview(ctx, 7)
	require.NoError(t, err)
	assert.NotNil(t, review, "запись остается до успешного сохранения")

	target, err := flow.Finalize(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.Target{View: model.ViewResults, SubmissionID: 7}, target)
	require.Len(t, saver.requests, 2)
	assert.Equal(t, saver.requests[0], saver.requests[1], "повтор отправляет тот же набор причин")

	_, err = flow.Finalize(ctx)
	assert.ErrorIs(t, err, ErrReviewFinalized)
	assert.Len(t, saver.requests, 2)
}

func TestLoadReview(t *testing.T) {
	ctx := context.Background()
	reviews := reviewsRepo.NewMemoryRepository()

	_, err := LoadReview(ctx, reviews, &fakeSaver{}, 404)
	assert.ErrorIs(t, err, ErrReviewNotFound)

	// Повторы в списке учитываются один раз
	questions := append(twoMarked(), model.MarkedQuestion{ID: 2, QuestionText: "Вопрос 2"})
	require.NoError(t, reviews.SavePendingReview(ctx, model.PendingReview{SubmissionID: 8, Questions: questions}))

	flow, err := LoadReview(ctx, reviews, &fakeSaver{}, 8)
	require.NoError(t, err)
	assert.Len(t, flow.Questions(), 2)
	assert.Equal(t, 8, flow.SubmissionID())
}
