package attempts

import "github.com/IT-Nick/exambot/internal/domain/model"

// Answer - текущее состояние ответа на вопрос
type Answer struct {
	QuestionID int
	Selected   model.Option
	Marked     bool
	Reason     model.Reason
}

// Answered сообщает, выбран ли вариант
func (a Answer) Answered() bool {
	return a.Selected != ""
}

// Status - состояние вопроса для палитры
type Status int

const (
	StatusUnanswered Status = iota
	StatusAnswered
	StatusMarked
)

// Status возвращает состояние для палитры. Отметка важнее ответа.
func (a Answer) Status() Status {
	switch {
	case a.Marked:
		return StatusMarked
	case a.Answered():
		return StatusAnswered
	default:
		return StatusUnanswered
	}
}

// Answers - снимок ответов по id вопроса.
// Снимок не изменяется: Select и ToggleMark возвращают новую карту.
type Answers map[int]Answer

// NewAnswers создает пустые ответы для каждого вопроса попытки
func NewAnswers(questions []model.Question) Answers {
	answers := make(Answers, len(questions))
	for _, q := range questions {
		answers[q.ID] = Answer{QuestionID: q.ID}
	}
	return answers
}

// Select выбирает вариант, сохраняя отметку и причину
func (a Answers) Select(questionID int, option model.Option) Answers {
	next := a.clone()
	answer := next[questionID]
	answer.QuestionID = questionID
	answer.Selected = option
	next[questionID] = answer
	return next
}

// ToggleMark переключает отметку, сохраняя выбранный вариант
func (a Answers) ToggleMark(questionID int) Answers {
	next := a.clone()
	answer := next[questionID]
	answer.QuestionID = questionID
	answer.Marked = !answer.Marked
	next[questionID] = answer
	return next
}

// Counts считает отвеченные и отмеченные вопросы
func (a Answers) Counts() (answered, marked int) {
	for _, answer := range a {
		if answer.Answered() {
			answered++
		}
		if answer.Marked {
			marked++
		}
	}
	return answered, marked
}

func (a Answers) clone() Answers {
	next := make(Answers, len(a)+1)
	for id, answer := range a {
		next[id] = answer
	}
	return next
}

// payload сериализует ответы в порядке вопросов попытки
func payload(questions []model.Question, answers Answers) model.SubmitRequest {
	req := model.SubmitRequest{Answers: make([]model.AnswerPayload, 0, len(questions))}
	for _, q := range questions {
		answer := answers[q.ID]
		item := model.AnswerPayload{QuestionID: q.ID, IsMarked: answer.Marked}
		if answer.Answered() {
			selected := answer.Selected
			item.SelectedOption = &selected
		}
		req.Answers = append(req.Answers, item)
	}
	return req
}
