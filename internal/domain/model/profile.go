package model

// UserProfile - профиль пользователя backend API
type UserProfile struct {
	ID                    int     `json:"id"`
	Username              string  `json:"username"`
	Email                 string  `json:"email"`
	RewardPoints          int     `json:"reward_points"`
	CompletedTestsToday   int     `json:"completed_tests_today"`
	AverageScoreToday     float64 `json:"average_score_today"`
	CurrentStreak         int     `json:"current_streak"`
	HasActiveSubscription bool    `json:"has_active_subscription"`
	SubscriptionEndDate   *string `json:"subscription_end_date"`
}

// Plan - тариф подписки
type Plan struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Price        string `json:"price"`
	DurationDays int    `json:"duration_days"`
}

// Order - заказ на оплату тарифа. Оплата проходит у платежного провайдера.
type Order struct {
	RazorpayKey string `json:"razorpay_key"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	OrderID     string `json:"order_id"`
	PlanName    string `json:"plan_name"`
	UserName    string `json:"user_name"`
	UserEmail   string `json:"user_email"`
}

// QuickStats - сводка performance-hub
type QuickStats struct {
	TotalTestsCompleted int     `json:"total_tests_completed"`
	AvgScore            float64 `json:"avg_score"`
	StudyStreak         int     `json:"study_streak"`
	Accuracy            float64 `json:"accuracy"`
}

// SubjectPerformance - успеваемость по разделу
type SubjectPerformance struct {
	SubExamName string  `json:"test_card__sub_exam__name"`
	Score       float64 `json:"score"`
	Tests       int     `json:"tests"`
	Accuracy    float64 `json:"accuracy"`
}

// RecentActivity - последняя попытка
type RecentActivity struct {
	ID           int     `json:"id"`
	TestCardName string  `json:"test_card__name"`
	Percentage   float64 `json:"percentage"`
	FinishedAt   string  `json:"finished_at"`
	TestCardID   ID      `json:"test_card_id"`
}

// TopicAnalysis - разбор ответов по теме
type TopicAnalysis struct {
	Topic   string `json:"question__topic"`
	Correct int    `json:"correct"`
	Wrong   int    `json:"wrong"`
	Skipped int    `json:"skipped"`
	Total   int    `json:"total"`
}

// PerformanceHub - ответ performance-hub
type PerformanceHub struct {
	QuickStats         QuickStats           `json:"quick_stats"`
	SubjectPerformance []SubjectPerformance `json:"subject_performance"`
	RecentActivity     []RecentActivity     `json:"recent_activity"`
	QuestionAnalysis   []TopicAnalysis      `json:"question_analysis"`
	Achievements       []string             `json:"achievements"`
}
