package repository

import (
	"context"
	"testing"
	"time"

	"github.com/IT-Nick/exambot/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_DeleteExpired(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	now := time.Now()

	require.NoError(t, repo.SavePendingReview(ctx, model.PendingReview{SubmissionID: 1, CreatedAt: now.Add(-8 * 24 * time.Hour)}))
	require.NoError(t, repo.SavePendingReview(ctx, model.PendingReview{
		SubmissionID: 2,
		Questions:    []model.MarkedQuestion{{ID: 5}},
		CreatedAt:    now,
	}))

	deleted, err := repo.DeleteExpired(ctx, now.Add(-7*24*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted, "удалена только старая запись")

	old, err := repo.GetPendingReview(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, old)

	fresh, err := repo.GetPendingReview(ctx, 2)
	require.NoError(t, err)
	require.NotNil(t, fresh)
	assert.Equal(t, 5, fresh.Questions[0].ID)
}
