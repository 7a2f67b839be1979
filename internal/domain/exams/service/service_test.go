package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	credentialsRepo "github.com/IT-Nick/exambot/internal/domain/credentials/repository"
	credentialsService "github.com/IT-Nick/exambot/internal/domain/credentials/service"
	"github.com/IT-Nick/exambot/internal/domain/model"
	"github.com/IT-Nick/exambot/internal/infra/apiclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
	1. TestStartAttempt - попытка стартует с номером от сервера, пустая попытка отклоняется.
	2. TestSubmitterFor - отправка ответов идет в submit_test нужной попытки с токеном чата.
	3. TestUnlock_ReusesKeyAfterNetworkFailure - после обрыва ключ идемпотентности повторяется, после успеха выдается новый.
	4. TestListSubExams_QueryAndIDs - фильтр передается в query, числовые id читаются как строки.
	5. TestForcedLogoutNotifiesChat - отказ обновления токена очищает сессию и уведомляет чат.
*/

const testChat int64 = 42

type env struct {
	service *ExamService
	creds   *credentialsService.CredentialService
	logouts []int64
	mu      sync.Mutex
}

func newEnv(t *testing.T, handler http.Handler) *env {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	e := &env{creds: credentialsService.NewCredentialService(credentialsRepo.NewMemoryRepository())}
	pool := apiclient.NewPool(srv.URL,
		func(chatID int64) apiclient.TokenStore { return e.creds.ForChat(chatID) },
		func(_ context.Context, chatID int64) {
			e.mu.Lock()
			defer e.mu.Unlock()
			e.logouts = append(e.logouts, chatID)
		},
	)
	e.service = NewExamService(pool, apiclient.NewKeyLedger(time.Hour))

	require.NoError(t, e.creds.ForChat(testChat).Save(context.Background(), model.Credentials{Access: "access", Refresh: "refresh"}))
	return e
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestStartAttempt(t *testing.T) {
	empty := false
	e := newEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/exams/api/submissions/start_test/", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "5", body["test_card_id"])

		if empty {
			writeJSON(w, http.StatusOK, map[string]any{"submission_id": 0, "test_card": map[string]any{}})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"submission_id": 900,
			"test_card": map[string]any{
				"id":               5,
				"name":             "Mock 1",
				"duration_minutes": 1,
				"questions":        []map[string]any{{"id": 1, "question_text": "2+2?", "option_a": "4"}},
			},
		})
	}))

	attempt, err := e.service.StartAttempt(context.Background(), testChat, "5")
	require.NoError(t, err)
	assert.Equal(t, 900, attempt.SubmissionID)
	assert.Equal(t, model.ID("5"), attempt.TestCard.ID)
	assert.Equal(t, 60, attempt.DurationSeconds())

	empty = true
	_, err = e.service.StartAttempt(context.Background(), testChat, "5")
	assert.ErrorIs(t, err, ErrEmptyAttempt)
}

func TestSubmitterFor(t *testing.T) {
	e := newEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/exams/api/submissions/900/submit_test/", r.URL.Path)
		assert.Equal(t, "Bearer access", r.Header.Get("Authorization"))

		var req model.SubmitRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Answers, 1)
		assert.True(t, req.Answers[0].IsMarked)

		writeJSON(w, http.StatusOK, map[string]any{
			"id":                   900,
			"requires_mark_review": true,
			"marked_questions":     []map[string]any{{"id": 1, "question_text": "2+2?"}},
		})
	}))

	outcome, err := e.service.SubmitterFor(testChat).SubmitAttempt(context.Background(), 900, model.SubmitRequest{
		Answers: []model.AnswerPayload{{QuestionID: 1, IsMarked: true}},
	})
	require.NoError(t, err)
	assert.True(t, outcome.RequiresMarkReview)
	assert.Len(t, outcome.MarkedQuestions, 1)
}

func TestUnlock_ReusesKeyAfterNetworkFailure(t *testing.T) {
	var keys []string
	calls := 0
	e := newEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		keys = append(keys, r.Header.Get("Idempotency-Key"))
		if calls == 1 {
			// Обрыв соединения без ответа
			hj, ok := w.(http.Hijacker)
			require.True(t, ok)
			conn, _, err := hj.Hijack()
			require.NoError(t, err)
			_ = conn.Close()
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}))

	ctx := context.Background()
	err := e.service.Unlock(ctx, testChat, "7")
	require.Error(t, err)
	assert.Equal(t, apiclient.KindNetwork, apiclient.Classify(err))

	require.NoError(t, e.service.Unlock(ctx, testChat, "7"))
	require.NoError(t, e.service.Unlock(ctx, testChat, "7"))

	require.Len(t, keys, 3)
	assert.NotEmpty(t, keys[0])
	assert.Equal(t, keys[0], keys[1], "повтор после обрыва использует тот же ключ")
	assert.NotEqual(t, keys[1], keys[2], "после успеха выдается новый ключ")
}

func TestListSubExams_QueryAndIDs(t *testing.T) {
	e := newEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/exams/api/sub-exams/", r.URL.Path)
		assert.Equal(t, "3", r.URL.Query().Get("exam"))
		writeJSON(w, http.StatusOK, []map[string]any{{"id": 11, "name": "Quant"}, {"id": "ab-12", "name": "Verbal"}})
	}))

	subExams, err := e.service.ListSubExams(context.Background(), testChat, "3")
	require.NoError(t, err)
	require.Len(t, subExams, 2)
	assert.Equal(t, model.ID("11"), subExams[0].ID)
	assert.Equal(t, model.ID("ab-12"), subExams[1].ID)
}

func TestForcedLogoutNotifiesChat(t *testing.T) {
	e := newEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "token expired"})
	}))

	_, err := e.service.Profile(context.Background(), testChat)
	require.Error(t, err)
	assert.Equal(t, apiclient.KindAuth, apiclient.Classify(err))

	loggedIn, err := e.service.LoggedIn(context.Background(), testChat)
	require.NoError(t, err)
	assert.False(t, loggedIn)
	assert.Equal(t, []int64{testChat}, e.logouts)
}
