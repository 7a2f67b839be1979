package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/IT-Nick/exambot/internal/domain/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReviewRepository хранит вопросы, ожидающие причин отметки
type ReviewRepository interface {
	SavePendingReview(ctx context.Context, review model.PendingReview) error
	GetPendingReview(ctx context.Context, submissionID int) (*model.PendingReview, error)
	DeletePendingReview(ctx context.Context, submissionID int) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// PostgresRepository хранит ожидающие причины в таблице pending_reviews
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository создает новый экземпляр PostgresRepository
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// SavePendingReview сохраняет вопросы попытки. Повторное сохранение заменяет список.
func (r *PostgresRepository) SavePendingReview(ctx context.Context, review model.PendingReview) error {
	questions, err := json.Marshal(review.Questions)
	if err != nil {
		return fmt.Errorf("failed to encode marked questions: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO pending_reviews (submission_id, chat_id, questions, created_at)
		VALUES ($1, $2, $3::jsonb, $4)
		ON CONFLICT (submission_id) DO UPDATE
		SET chat_id = EXCLUDED.chat_id, questions = EXCLUDED.questions, created_at = EXCLUDED.created_at`,
		review.SubmissionID, review.ChatID, string(questions), review.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save pending review: %w", err)
	}
	return nil
}

// GetPendingReview возвращает вопросы попытки или nil, если их нет
func (r *PostgresRepository) GetPendingReview(ctx context.Context, submissionID int) (*model.PendingReview, error) {
	var (
		review    model.PendingReview
		questions []byte
	)
	err := r.db.QueryRow(ctx, `
		SELECT submission_id, chat_id, questions, created_at
		FROM pending_reviews
		WHERE submission_id = $1`, submissionID).
		Scan(&review.SubmissionID, &review.ChatID, &questions, &review.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get pending review: %w", err)
	}

	if err := json.Unmarshal(questions, &review.Questions); err != nil {
		return nil, fmt.Errorf("failed to decode marked questions: %w", err)
	}
	return &review, nil
}

// DeletePendingReview удаляет вопросы после сохранения причин
func (r *PostgresRepository) DeletePendingReview(ctx context.Context, submissionID int) error {
	if _, err := r.db.Exec(ctx, "DELETE FROM pending_reviews WHERE submission_id = $1", submissionID); err != nil {
		return fmt.Errorf("failed to delete pending review: %w", err)
	}
	return nil
}

// DeleteExpired удаляет записи старше before
func (r *PostgresRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, "DELETE FROM pending_reviews WHERE created_at < $1", before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired reviews: %w", err)
	}
	return tag.RowsAffected(), nil
}
