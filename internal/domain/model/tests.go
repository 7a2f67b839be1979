package model

// Exam - экзамен в каталоге
type Exam struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// SubExam - раздел экзамена
type SubExam struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// TestCard - карточка теста, из которой стартует попытка
type TestCard struct {
	ID                 ID     `json:"id"`
	Name               string `json:"name"`
	TestType           string `json:"test_type,omitempty"`
	DurationMinutes    int    `json:"duration_minutes"`
	NumQuestions       int    `json:"num_questions,omitempty"`
	RewardPointsEarned *int   `json:"reward_points_earned,omitempty"`
}

// FullLengthTest - платный полный тест, открывается за баллы
type FullLengthTest struct {
	ID              ID     `json:"id"`
	Name            string `json:"name"`
	PricePoints     int    `json:"price_points"`
	QuestionCount   int    `json:"question_count"`
	DurationMinutes int    `json:"duration_minutes"`
}

// SubExamWithTests - раздел со списком полных тестов
type SubExamWithTests struct {
	ID              ID               `json:"id"`
	Name            string           `json:"name"`
	ExamID          ID               `json:"exam_id"`
	FullLengthTests []FullLengthTest `json:"full_length_tests"`
}

// UnlockStatus - ответ check_unlock_status
type UnlockStatus struct {
	IsUnlocked bool `json:"is_unlocked"`
	CanAfford  bool `json:"can_afford"`
	UserPoints int  `json:"user_points"`
}
