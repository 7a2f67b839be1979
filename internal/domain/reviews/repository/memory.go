package repository

import (
	"context"
	"sync"
	"time"

	"github.com/IT-Nick/exambot/internal/domain/model"
)

// MemoryRepository - in‑memory реализация для тестов и режима storage: memory
type MemoryRepository struct {
	mu   sync.RWMutex
	data map[int]model.PendingReview
}

// NewMemoryRepository создаёт новый MemoryRepository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{data: make(map[int]model.PendingReview)}
}

func (m *MemoryRepository) SavePendingReview(_ context.Context, review model.PendingReview) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	review.Questions = append([]model.MarkedQuestion(nil), review.Questions...)
	m.data[review.SubmissionID] = review
	return nil
}

func (m *MemoryRepository) GetPendingReview(_ context.Context, submissionID int) (*model.PendingReview, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	review, ok := m.data[submissionID]
	if !ok {
		return nil, nil
	}
	return &review, nil
}

func (m *MemoryRepository) DeletePendingReview(_ context.Context, submissionID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, submissionID)
	return nil
}

func (m *MemoryRepository) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var deleted int64
	for id, review := range m.data {
		if review.CreatedAt.Before(before) {
			delete(m.data, id)
			deleted++
		}
	}
	return deleted, nil
}
