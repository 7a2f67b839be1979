package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/IT-Nick/exambot/internal/domain/model"
)

// MemoryRepository - in‑memory реализация для тестов и режима storage: memory
type MemoryRepository struct {
	mu   sync.RWMutex
	data map[int64]model.Credentials
}

// NewMemoryRepository создаёт новый MemoryRepository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{data: make(map[int64]model.Credentials)}
}

func (m *MemoryRepository) GetCredentials(_ context.Context, chatID int64) (*model.Credentials, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	creds, ok := m.data[chatID]
	if !ok {
		return nil, nil
	}
	return &creds, nil
}

func (m *MemoryRepository) SaveCredentials(_ context.Context, chatID int64, creds model.Credentials) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[chatID] = creds
	return nil
}

func (m *MemoryRepository) UpdateAccessToken(_ context.Context, chatID int64, access string, expiresAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	creds, ok := m.data[chatID]
	if !ok {
		return fmt.Errorf("credentials for chat %d not found", chatID)
	}
	creds.Access = access
	creds.AccessExpiresAt = expiresAt
	m.data[chatID] = creds
	return nil
}

func (m *MemoryRepository) DeleteCredentials(_ context.Context, chatID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, chatID)
	return nil
}
