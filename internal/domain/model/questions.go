package model

// Option - код варианта ответа
type Option string

const (
	OptionA Option = "A"
	OptionB Option = "B"
	OptionC Option = "C"
	OptionD Option = "D"
)

// Options - варианты в порядке отображения
var Options = []Option{OptionA, OptionB, OptionC, OptionD}

// Valid проверяет, что код варианта известен
func (o Option) Valid() bool {
	switch o {
	case OptionA, OptionB, OptionC, OptionD:
		return true
	}
	return false
}

// Question представляет вопрос теста. Не меняется после получения.
type Question struct {
	ID            int     `json:"id"`
	QuestionText  string  `json:"question_text"`
	OptionA       string  `json:"option_a"`
	OptionB       string  `json:"option_b"`
	OptionC       string  `json:"option_c"`
	OptionD       string  `json:"option_d"`
	Section       string  `json:"section"`
	Topic         string  `json:"topic"`
	Difficulty    string  `json:"difficulty"`
	PositiveMarks float64 `json:"positive_marks"`
	NegativeMarks float64 `json:"negative_marks"`
}

// OptionText возвращает текст варианта по коду
func (q Question) OptionText(o Option) string {
	switch o {
	case OptionA:
		return q.OptionA
	case OptionB:
		return q.OptionB
	case OptionC:
		return q.OptionC
	case OptionD:
		return q.OptionD
	}
	return ""
}
