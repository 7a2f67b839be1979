package model

import "time"

// Reason - причина отметки вопроса "на проверку"
type Reason string

const (
	ReasonGuess        Reason = "GUESS"
	ReasonTimePressure Reason = "TIME"
	ReasonConceptError Reason = "CONCEPT"
)

// Reasons - причины в порядке отображения
var Reasons = []Reason{ReasonGuess, ReasonTimePressure, ReasonConceptError}

// Valid проверяет, что причина известна
func (r Reason) Valid() bool {
	switch r {
	case ReasonGuess, ReasonTimePressure, ReasonConceptError:
		return true
	}
	return false
}

// AnswerPayload - элемент тела submit_test
type AnswerPayload struct {
	QuestionID     int     `json:"question_id"`
	SelectedOption *Option `json:"selected_option"`
	IsMarked       bool    `json:"is_marked"`
}

// SubmitRequest - тело submit_test
type SubmitRequest struct {
	Answers []AnswerPayload `json:"answers"`
}

// MarkedQuestion - вопрос, для которого нужна причина отметки
type MarkedQuestion struct {
	ID           int    `json:"id"`
	QuestionText string `json:"question_text"`
}

// SubmitOutcome - ответ submit_test
type SubmitOutcome struct {
	ID                 int              `json:"id"`
	RequiresMarkReview bool             `json:"requires_mark_review"`
	MarkedQuestions    []MarkedQuestion `json:"marked_questions,omitempty"`
}

// ReasonPayload - элемент тела save_mark_reasons
type ReasonPayload struct {
	QuestionID int    `json:"question_id"`
	Reason     Reason `json:"reason"`
}

// SaveReasonsRequest - тело save_mark_reasons
type SaveReasonsRequest struct {
	Reasons []ReasonPayload `json:"reasons"`
}

// Breakdown - статистика по разделу или сложности
type Breakdown struct {
	Correct    int     `json:"correct"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// PerformanceAnalysis - аналитика попытки, считается сервером
type PerformanceAnalysis struct {
	Accuracy     float64              `json:"accuracy"`
	BySection    map[string]Breakdown `json:"by_section"`
	ByDifficulty map[string]Breakdown `json:"by_difficulty"`
}

// ResultQuestion - вопрос в результатах, уже с правильным ответом
type ResultQuestion struct {
	ID            int    `json:"id"`
	QuestionText  string `json:"question_text"`
	CorrectOption Option `json:"correct_option"`
	Section       string `json:"section"`
	Topic         string `json:"topic"`
	Difficulty    string `json:"difficulty"`
}

// ResultAnswer - исход ответа на вопрос
type ResultAnswer struct {
	ID             int            `json:"id"`
	Question       ResultQuestion `json:"question"`
	SelectedOption *Option        `json:"selected_option"`
	IsCorrect      bool           `json:"is_correct"`
	Marks          *float64       `json:"marks,omitempty"`
}

// ResultTestCard - краткое описание теста в результатах
type ResultTestCard struct {
	ID              ID     `json:"id"`
	Name            string `json:"name"`
	DurationMinutes int    `json:"duration_minutes"`
}

// SubmissionResult - результат попытки. Принадлежит серверу, клиент только читает.
type SubmissionResult struct {
	ID                  int                 `json:"id"`
	Score               float64             `json:"score"`
	Percentage          float64             `json:"percentage"`
	FinishedAt          *time.Time          `json:"finished_at"`
	TestCard            ResultTestCard      `json:"test_card"`
	PerformanceAnalysis PerformanceAnalysis `json:"performance_analysis"`
	Answers             []ResultAnswer      `json:"answers"`
}

// Grade - словесная оценка процента
func Grade(percentage float64) string {
	switch {
	case percentage >= 90:
		return "Отлично"
	case percentage >= 75:
		return "Очень хорошо"
	case percentage >= 60:
		return "Хорошо"
	default:
		return "Нужно подтянуть"
	}
}

// MyResult - элемент списка my_results
type MyResult struct {
	ID         int        `json:"id"`
	TestName   string     `json:"test_name"`
	Score      float64    `json:"score"`
	Percentage float64    `json:"percentage"`
	FinishedAt *time.Time `json:"finished_at"`
}
