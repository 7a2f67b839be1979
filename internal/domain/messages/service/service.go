package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/IT-Nick/exambot/internal/domain/messages/repository"
	"github.com/IT-Nick/exambot/internal/domain/model"
	"github.com/rs/zerolog/log"
)

var defaults = map[string]string{
	model.WelcomeKey:         "Привет! Выберите, чем займемся:",
	model.WelcomeGuestKey:    "Привет! Чтобы проходить тесты, войдите: /login <логин> <пароль>",
	model.LoginUsageKey:      "Использование: /login <логин> <пароль>",
	model.LoginSuccessKey:    "Вы вошли в аккаунт.",
	model.LogoutKey:          "Вы вышли из аккаунта.",
	model.SessionExpiredKey:  "Сессия истекла, войдите снова: /login <логин> <пароль>",
	model.NoExamsKey:         "Пока нет доступных экзаменов.",
	model.ChooseExamKey:      "Выберите экзамен:",
	model.ChooseSubExamKey:   "Выберите раздел:",
	model.ChooseTestCardKey:  "Выберите тест:",
	model.NoFullTestsKey:     "Полных тестов пока нет.",
	model.UnlockConfirmKey:   "Тест закрыт. Открыть его за баллы? У вас %d баллов.",
	model.NotEnoughPointsKey: "Недостаточно баллов: у вас %d.",
	model.SubmitConfirmKey:   "Отправить ответы? Отвечено %d из %d.",
	model.ReviewIntroKey:     "Укажите, почему вы отметили эти вопросы.",
	model.NoResultsKey:       "У вас пока нет результатов.",
	model.NoPlansKey:         "Тарифов пока нет.",
	model.ShareUsageKey:      "Использование: /share <id теста>",
	model.NoActiveAttemptKey: "Нет активной попытки. Выберите тест: /exams",

	model.ExamsButtonKey:       "📚 Экзамены",
	model.FullTestsButtonKey:   "🔒 Полные тесты",
	model.ResultsButtonKey:     "📊 Мои результаты",
	model.PerformanceButtonKey: "📈 Успеваемость",
	model.ProfileButtonKey:     "👤 Профиль",
	model.PlansButtonKey:       "💳 Подписка",
}

// MessageService содержит логику для работы с сообщениями
type MessageService struct {
	messageRepo repository.MessageStore
}

// NewMessageService создает новый экземпляр MessageService
func NewMessageService(messageRepo repository.MessageStore) *MessageService {
	return &MessageService{messageRepo: messageRepo}
}

// GetMessageByKey возвращает сообщение по ключу: из базы, если текст переопределен, иначе встроенный
func (s *MessageService) GetMessageByKey(ctx context.Context, messageKey string) (string, error) {
	message, err := s.messageRepo.GetMessageByKey(ctx, messageKey)
	if err == nil {
		return message, nil
	}
	if text, ok := defaults[messageKey]; ok {
		if !errors.Is(err, repository.ErrMessageNotFound) {
			log.Warn().Err(err).Str("key", messageKey).Msg("message store unavailable, using default text")
		}
		return text, nil
	}
	return "", fmt.Errorf("failed to get message by key: %w", err)
}

// Text возвращает сообщение по ключу, в крайнем случае сам ключ
func (s *MessageService) Text(ctx context.Context, messageKey string) string {
	text, err := s.GetMessageByKey(ctx, messageKey)
	if err != nil {
		log.Error().Err(err).Str("key", messageKey).Msg("unknown message key")
		return messageKey
	}
	return text
}

// Textf форматирует сообщение по ключу
func (s *MessageService) Textf(ctx context.Context, messageKey string, args ...any) string {
	return fmt.Sprintf(s.Text(ctx, messageKey), args...)
}

// GetButtons возвращает мапу с кнопками главного меню
func (s *MessageService) GetButtons(ctx context.Context) (map[string]string, error) {
	buttons := make(map[string]string, len(model.MenuButtons))
	for _, key := range model.MenuButtons {
		text, err := s.GetMessageByKey(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("failed to get button text for key %s: %w", key, err)
		}
		buttons[key] = text
	}
	return buttons, nil
}
