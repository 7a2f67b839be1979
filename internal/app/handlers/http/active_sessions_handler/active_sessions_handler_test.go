package active_sessions_handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/IT-Nick/exambot/internal/domain/attempts"
	"github.com/IT-Nick/exambot/internal/domain/dto"
	"github.com/IT-Nick/exambot/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopSubmitter struct{}

func (noopSubmitter) SubmitAttempt(context.Context, int, model.SubmitRequest) (*model.SubmitOutcome, error) {
	return &model.SubmitOutcome{}, nil
}

// TestActiveSessions проверяет снимок попытки: прогресс ответов, отметки и оставшееся время.
func TestActiveSessions(t *testing.T) {
	registry := attempts.NewRegistry()

	attempt, err := attempts.New(attempts.Config{
		ChatID: 42,
		Attempt: &model.Attempt{
			SubmissionID: 9,
			TestCard: model.AttemptTestCard{
				ID:              "card-9",
				Name:            "Алгебра",
				DurationMinutes: 2,
				Questions: []model.Question{
					{ID: 1, QuestionText: "2+2", OptionA: "3", OptionB: "4"},
					{ID: 2, QuestionText: "3+3", OptionA: "6", OptionB: "7"},
				},
			},
		},
		Submitter: noopSubmitter{},
	})
	require.NoError(t, err)
	require.NoError(t, attempt.Start(context.Background()))
	t.Cleanup(attempt.Detach)
	registry.Put(42, attempt)

	_, err = attempt.SelectOption(1, model.OptionB)
	require.NoError(t, err)
	_, err = attempt.ToggleMark(2)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	NewActiveSessionsHandler(registry).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions/active", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body dto.ActiveSessionsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))

	require.Equal(t, 1, body.TotalActiveChats)
	s := body.ActiveSessions[0]
	assert.EqualValues(t, 42, s.ChatID)
	assert.Equal(t, 9, s.SubmissionID)
	assert.Equal(t, 2, s.TotalQuestions)
	assert.Equal(t, 1, s.Answered, "отвечен один вопрос")
	assert.Equal(t, 1, s.Marked, "отмечен один вопрос")
	assert.Equal(t, "00:02:00", s.RemainingTime)
	assert.Equal(t, "active", s.Phase)
}

func TestActiveSessions_Empty(t *testing.T) {
	rec := httptest.NewRecorder()
	NewActiveSessionsHandler(attempts.NewRegistry()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions/active", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total_active_chats":0,"active_sessions":[]}`, rec.Body.String())
}
