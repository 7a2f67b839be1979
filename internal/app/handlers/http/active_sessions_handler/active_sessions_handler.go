package active_sessions_handler

import (
	"net/http"
	"time"

	"github.com/IT-Nick/exambot/internal/domain/attempts"
	"github.com/IT-Nick/exambot/internal/domain/dto"
	"github.com/IT-Nick/exambot/internal/infra/timer"
	httpError "github.com/IT-Nick/exambot/pkg/http"
)

// Sessions - источник активных попыток
type Sessions interface {
	Active() []*attempts.Attempt
}

// ActiveSessionsHandler структура для обработчика
type ActiveSessionsHandler struct {
	sessions Sessions
}

// NewActiveSessionsHandler создает новый экземпляр обработчика
func NewActiveSessionsHandler(sessions Sessions) *ActiveSessionsHandler {
	return &ActiveSessionsHandler{sessions: sessions}
}

// ServeHTTP отдает снимок активных попыток всех чатов
func (h *ActiveSessionsHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	active := h.sessions.Active()

	response := dto.ActiveSessionsResponse{
		TotalActiveChats: len(active),
		ActiveSessions:   make([]dto.ActiveSessionInfo, 0, len(active)),
	}
	for _, attempt := range active {
		s := attempt.Snapshot()
		answered, marked := s.Answers.Counts()
		response.ActiveSessions = append(response.ActiveSessions, dto.ActiveSessionInfo{
			ChatID:          attempt.ChatID(),
			SubmissionID:    s.SubmissionID,
			TestName:        s.TestName,
			CurrentQuestion: s.Current + 1,
			TotalQuestions:  len(s.Questions),
			Answered:        answered,
			Marked:          marked,
			RemainingTime:   timer.FormatClock(s.Remaining),
			TimerState:      s.CountdownState.String(),
			Phase:           s.Phase.String(),
			StartedAt:       s.StartedAt.Format(time.RFC3339),
		})
	}

	httpError.JSONResponse(w, http.StatusOK, response)
}
