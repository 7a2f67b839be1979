package service

import (
	"context"
	"errors"
	"testing"

	"github.com/IT-Nick/exambot/internal/domain/messages/repository"
	"github.com/IT-Nick/exambot/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenStore struct{}

func (brokenStore) GetMessageByKey(context.Context, string) (string, error) {
	return "", errors.New("connection refused")
}

func TestGetMessageByKey(t *testing.T) {
	ctx := context.Background()
	s := NewMessageService(repository.NewMemoryRepository(map[string]string{model.WelcomeKey: "Здравствуйте"}))

	text, err := s.GetMessageByKey(ctx, model.WelcomeKey)
	require.NoError(t, err)
	assert.Equal(t, "Здравствуйте", text, "текст из хранилища важнее встроенного")

	text, err = s.GetMessageByKey(ctx, model.LogoutKey)
	require.NoError(t, err)
	assert.Equal(t, defaults[model.LogoutKey], text)

	_, err = s.GetMessageByKey(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrMessageNotFound)
	assert.Equal(t, "missing", s.Text(ctx, "missing"))
}

func TestGetMessageByKey_StoreDown(t *testing.T) {
	s := NewMessageService(brokenStore{})

	text, err := s.GetMessageByKey(context.Background(), model.NoExamsKey)
	require.NoError(t, err)
	assert.Equal(t, defaults[model.NoExamsKey], text)

	assert.Equal(t, "Отправить ответы? Отвечено 3 из 5.", s.Textf(context.Background(), model.SubmitConfirmKey, 3, 5))
}

func TestGetButtons(t *testing.T) {
	s := NewMessageService(repository.NewMemoryRepository(nil))
	buttons, err := s.GetButtons(context.Background())
	require.NoError(t, err)
	assert.Len(t, buttons, len(model.MenuButtons))
	for _, key := range model.MenuButtons {
		assert.NotEmpty(t, buttons[key])
	}
}
