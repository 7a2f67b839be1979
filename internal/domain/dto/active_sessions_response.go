package dto

// ActiveSessionsResponse структура для отчета по активным попыткам
type ActiveSessionsResponse struct {
	TotalActiveChats int                 `json:"total_active_chats"`
	ActiveSessions   []ActiveSessionInfo `json:"active_sessions"`
}

type ActiveSessionInfo struct {
	ChatID          int64  `json:"chat_id"`
	SubmissionID    int    `json:"submission_id"`
	TestName        string `json:"test_name"`
	CurrentQuestion int    `json:"current_question"`
	TotalQuestions  int    `json:"total_questions"`
	Answered        int    `json:"answered"`
	Marked          int    `json:"marked"`
	RemainingTime   string `json:"remaining_time"`
	TimerState      string `json:"timer_state"`
	Phase           string `json:"phase"`
	StartedAt       string `json:"started_at"`
}
