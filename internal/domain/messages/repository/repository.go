package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrMessageNotFound - текста с таким ключом нет в хранилище
var ErrMessageNotFound = errors.New("message not found")

// MessageStore - хранилище переопределенных текстов
type MessageStore interface {
	GetMessageByKey(ctx context.Context, messageKey string) (string, error)
}

// MessageRepository реализация интерфейса для работы с сообщениями
type MessageRepository struct {
	db *pgxpool.Pool
}

// NewMessageRepository создает новый экземпляр MessageRepository
func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db}
}

// GetMessageByKey возвращает текст сообщения по ключу
func (r *MessageRepository) GetMessageByKey(ctx context.Context, messageKey string) (string, error) {
	var messageText string
	err := r.db.QueryRow(ctx, "SELECT message_text FROM messages WHERE message_key=$1", messageKey).
		Scan(&messageText)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("message with key %s: %w", messageKey, ErrMessageNotFound)
		}
		return "", fmt.Errorf("failed to get message: %w", err)
	}
	return messageText, nil
}

// MemoryRepository - тексты в памяти для режима storage: memory
type MemoryRepository struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryRepository создаёт новый MemoryRepository
func NewMemoryRepository(messages map[string]string) *MemoryRepository {
	data := make(map[string]string, len(messages))
	for k, v := range messages {
		data[k] = v
	}
	return &MemoryRepository{data: data}
}

func (m *MemoryRepository) GetMessageByKey(_ context.Context, messageKey string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	text, ok := m.data[messageKey]
	if !ok {
		return "", fmt.Errorf("message with key %s: %w", messageKey, ErrMessageNotFound)
	}
	return text, nil
}
