package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/IT-Nick/exambot/internal/domain/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CredentialRepository описывает хранилище токенов чатов
type CredentialRepository interface {
	GetCredentials(ctx context.Context, chatID int64) (*model.Credentials, error)
	SaveCredentials(ctx context.Context, chatID int64, creds model.Credentials) error
	UpdateAccessToken(ctx context.Context, chatID int64, access string, expiresAt *time.Time) error
	DeleteCredentials(ctx context.Context, chatID int64) error
}

// PostgresRepository хранит токены в таблице api_credentials
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository создает новый экземпляр PostgresRepository
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetCredentials возвращает токены чата или nil, если чат не входил
func (r *PostgresRepository) GetCredentials(ctx context.Context, chatID int64) (*model.Credentials, error) {
	var creds model.Credentials
	err := r.db.QueryRow(ctx, `
		SELECT access_token, refresh_token, access_expires_at
		FROM api_credentials
		WHERE chat_id = $1`, chatID).
		Scan(&creds.Access, &creds.Refresh, &creds.AccessExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get credentials: %w", err)
	}
	return &creds, nil
}

// SaveCredentials сохраняет пару токенов после входа
func (r *PostgresRepository) SaveCredentials(ctx context.Context, chatID int64, creds model.Credentials) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO api_credentials (chat_id, access_token, refresh_token, access_expires_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (chat_id) DO UPDATE
		SET access_token = EXCLUDED.access_token,
		    refresh_token = EXCLUDED.refresh_token,
		    access_expires_at = EXCLUDED.access_expires_at,
		    updated_at = NOW()`,
		chatID, creds.Access, creds.Refresh, creds.AccessExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	return nil
}

// UpdateAccessToken заменяет access токен после обновления
func (r *PostgresRepository) UpdateAccessToken(ctx context.Context, chatID int64, access string, expiresAt *time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE api_credentials
		SET access_token = $2, access_expires_at = $3, updated_at = NOW()
		WHERE chat_id = $1`,
		chatID, access, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to update access token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("credentials for chat %d not found", chatID)
	}
	return nil
}

// DeleteCredentials удаляет токены чата
func (r *PostgresRepository) DeleteCredentials(ctx context.Context, chatID int64) error {
	if _, err := r.db.Exec(ctx, "DELETE FROM api_credentials WHERE chat_id = $1", chatID); err != nil {
		return fmt.Errorf("failed to delete credentials: %w", err)
	}
	return nil
}
