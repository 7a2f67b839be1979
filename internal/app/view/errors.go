package view

import (
	"errors"
	"html"

	"github.com/IT-Nick/exambot/internal/domain/attempts"
	"github.com/IT-Nick/exambot/internal/infra/apiclient"
)

// ErrorText переводит ошибку в сообщение для пользователя
func ErrorText(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, attempts.ErrSubmissionInFlight), errors.Is(err, attempts.ErrFinalizeInFlight):
		return "⏳ Запрос уже отправляется, подождите."
	case errors.Is(err, attempts.ErrLaunchInFlight):
		return "⏳ Тест уже запускается, подождите."
	case errors.Is(err, attempts.ErrTimeExpired):
		return "⏰ Время вышло, ответы больше не меняются. Нажмите «Завершить»."
	case errors.Is(err, attempts.ErrAlreadySubmitted), errors.Is(err, attempts.ErrAttemptClosed):
		return "Попытка уже отправлена."
	case errors.Is(err, attempts.ErrReasonsIncomplete):
		return "Укажите причину для каждого отмеченного вопроса."
	case errors.Is(err, attempts.ErrReviewFinalized):
		return "Причины уже сохранены."
	case errors.Is(err, attempts.ErrReviewNotFound):
		return "Нет вопросов, ожидающих причин."
	}

	switch apiclient.Classify(err) {
	case apiclient.KindDomain:
		var domainErr *apiclient.DomainError
		if errors.As(err, &domainErr) && domainErr.Message != "" {
			return "⚠️ " + domainErr.Message
		}
		return "⚠️ Сервер отклонил запрос."
	case apiclient.KindAuth:
		return "🔑 Сессия истекла, войдите снова: /login"
	case apiclient.KindNetwork:
		return "📡 Нет связи с сервером. Попробуйте еще раз."
	case apiclient.KindUnexpected:
		return "⚠️ Сервер ответил неожиданно. Войдите снова: /login или обратитесь в поддержку."
	}
	return "⚠️ Что-то пошло не так. Попробуйте еще раз."
}

// ErrorHTML - ErrorText для сообщений в режиме HTML
func ErrorHTML(err error) string {
	return html.EscapeString(ErrorText(err))
}
