package service

import (
	"context"
	"fmt"
	"time"

	"github.com/IT-Nick/exambot/internal/domain/credentials/repository"
	"github.com/IT-Nick/exambot/internal/domain/model"
	"github.com/IT-Nick/exambot/internal/infra/apiclient"
)

// CredentialService выдает хранилища токенов, привязанные к чату
type CredentialService struct {
	repo repository.CredentialRepository
}

// NewCredentialService создает новый экземпляр CredentialService
func NewCredentialService(repo repository.CredentialRepository) *CredentialService {
	return &CredentialService{repo: repo}
}

// ForChat возвращает хранилище токенов одного чата
func (s *CredentialService) ForChat(chatID int64) *ChatTokenStore {
	return &ChatTokenStore{repo: s.repo, chatID: chatID}
}

// ChatTokenStore реализует apiclient.TokenStore поверх репозитория
type ChatTokenStore struct {
	repo   repository.CredentialRepository
	chatID int64
}

var _ apiclient.TokenStore = (*ChatTokenStore)(nil)

// Credentials возвращает токены чата. Пустая структура, если чат не входил.
func (s *ChatTokenStore) Credentials(ctx context.Context) (model.Credentials, error) {
	creds, err := s.repo.GetCredentials(ctx, s.chatID)
	if err != nil {
		return model.Credentials{}, fmt.Errorf("failed to get credentials for chat %d: %w", s.chatID, err)
	}
	if creds == nil {
		return model.Credentials{}, nil
	}
	return *creds, nil
}

// Save сохраняет токены после входа
func (s *ChatTokenStore) Save(ctx context.Context, creds model.Credentials) error {
	if creds.AccessExpiresAt == nil {
		creds.AccessExpiresAt = expiry(creds.Access)
	}
	return s.repo.SaveCredentials(ctx, s.chatID, creds)
}

// SaveAccess сохраняет обновленный access токен
func (s *ChatTokenStore) SaveAccess(ctx context.Context, access string) error {
	return s.repo.UpdateAccessToken(ctx, s.chatID, access, expiry(access))
}

// Clear удаляет оба токена
func (s *ChatTokenStore) Clear(ctx context.Context) error {
	return s.repo.DeleteCredentials(ctx, s.chatID)
}

func expiry(access string) *time.Time {
	if exp, ok := apiclient.AccessExpiry(access); ok {
		return &exp
	}
	return nil
}
