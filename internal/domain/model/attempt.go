package model

// AttemptTestCard - определение теста внутри попытки
type AttemptTestCard struct {
	ID              ID         `json:"id"`
	Name            string     `json:"name"`
	SubExam         string     `json:"sub_exam,omitempty"`
	TestType        string     `json:"test_type,omitempty"`
	DurationMinutes int        `json:"duration_minutes"`
	Questions       []Question `json:"questions"`
}

// Attempt - ответ start_test. SubmissionID назначается сервером один раз.
type Attempt struct {
	SubmissionID int             `json:"submission_id"`
	TestCard     AttemptTestCard `json:"test_card"`
}

// DurationSeconds - начальное значение таймера
func (a Attempt) DurationSeconds() int {
	return a.TestCard.DurationMinutes * 60
}
