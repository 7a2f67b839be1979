package model

import "time"

// View - экран, на который переходит чат после отправки
type View string

const (
	ViewResults     View = "results"
	ViewMarkReasons View = "mark_reasons"
)

// Target - куда перейти после отправки попытки или причин
type Target struct {
	View         View
	SubmissionID int
}

// PendingReview - вопросы, ожидающие причин, хранятся на стороне бота по номеру попытки
type PendingReview struct {
	SubmissionID int              `json:"submission_id"`
	ChatID       int64            `json:"chat_id"`
	Questions    []MarkedQuestion `json:"questions"`
	CreatedAt    time.Time        `json:"created_at"`
}
