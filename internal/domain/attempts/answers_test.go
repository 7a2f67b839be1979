package attempts

import (
	"testing"

	"github.com/IT-Nick/exambot/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testQuestions(ids ...int) []model.Question {
	questions := make([]model.Question, 0, len(ids))
	for _, id := range ids {
		questions = append(questions, model.Question{
			ID:           id,
			QuestionText: "Вопрос",
			OptionA:      "1",
			OptionB:      "2",
			OptionC:      "3",
			OptionD:      "4",
		})
	}
	return questions
}

// TestAnswers_LastWriteWins проверяет, что последняя операция над вопросом определяет его состояние,
// а на каждый затронутый вопрос приходится ровно одна запись.
func TestAnswers_LastWriteWins(t *testing.T) {
	type op struct {
		question int
		option   model.Option
		toggle   bool
	}

	ops := []op{
		{question: 1, option: model.OptionA},
		{question: 2, toggle: true},
		{question: 1, option: model.OptionC},
		{question: 3, option: model.OptionB},
		{question: 2, option: model.OptionD},
		{question: 3, toggle: true},
		{question: 3, toggle: true},
		{question: 1, toggle: true},
		{question: 1, option: model.OptionC},
	}

	answers := Answers{}
	for _, o := range ops {
		if o.toggle {
			answers = answers.ToggleMark(o.question)
		} else {
			answers = answers.Select(o.question, o.option)
		}
	}

	require.Len(t, answers, 3)
	assert.Equal(t, Answer{QuestionID: 1, Selected: model.OptionC, Marked: true}, answers[1])
	assert.Equal(t, Answer{QuestionID: 2, Selected: model.OptionD, Marked: true}, answers[2])
	assert.Equal(t, Answer{QuestionID: 3, Selected: model.OptionB, Marked: false}, answers[3])
}

// TestAnswers_SnapshotsAreImmutable проверяет, что прежний снимок не меняется
func TestAnswers_SnapshotsAreImmutable(t *testing.T) {
	first := NewAnswers(testQuestions(1, 2))
	second := first.Select(1, model.OptionA)
	third := second.ToggleMark(1)

	assert.Equal(t, model.Option(""), first[1].Selected)
	assert.Equal(t, model.OptionA, second[1].Selected)
	assert.False(t, second[1].Marked)
	assert.True(t, third[1].Marked)
	assert.Equal(t, model.OptionA, third[1].Selected, "отметка сохраняет выбранный вариант")

	// Повторный выбор того же варианта ничего не меняет по сути
	fourth := third.Select(1, model.OptionA)
	assert.Equal(t, third, fourth)
}

func TestAnswers_StatusAndCounts(t *testing.T) {
	answers := NewAnswers(testQuestions(1, 2, 3)).
		Select(1, model.OptionB).
		ToggleMark(2).
		Select(3, model.OptionA).
		ToggleMark(3)

	assert.Equal(t, StatusAnswered, answers[1].Status())
	assert.Equal(t, StatusMarked, answers[2].Status())
	assert.Equal(t, StatusMarked, answers[3].Status(), "отметка важнее ответа")

	answered, marked := answers.Counts()
	assert.Equal(t, 2, answered)
	assert.Equal(t, 2, marked)
}

func TestPayload_OrderedByQuestions(t *testing.T) {
	questions := testQuestions(10, 20, 30)
	answers := NewAnswers(questions).Select(30, model.OptionD).ToggleMark(20)

	req := payload(questions, answers)
	require.Len(t, req.Answers, 3)

	assert.Equal(t, 10, req.Answers[0].QuestionID)
	assert.Nil(t, req.Answers[0].SelectedOption)
	assert.Equal(t, 20, req.Answers[1].QuestionID)
	assert.True(t, req.Answers[1].IsMarked)
	assert.Equal(t, 30, req.Answers[2].QuestionID)
	require.NotNil(t, req.Answers[2].SelectedOption)
	assert.Equal(t, model.OptionD, *req.Answers[2].SelectedOption)
}
