package apiclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Kind классифицирует результат обращения к API
type Kind int

const (
	KindOK Kind = iota
	KindDomain
	KindUnexpected
	KindNetwork
	KindAuth
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindDomain:
		return "domain"
	case KindUnexpected:
		return "unexpected_response"
	case KindNetwork:
		return "network"
	case KindAuth:
		return "auth"
	default:
		return "unknown"
	}
}

// ErrNoRefreshToken возвращается, когда обновить access токен нечем
var ErrNoRefreshToken = errors.New("no refresh token")

// DomainError - структурированная ошибка сервера (неверный пароль, не хватает баллов и т.п.)
type DomainError struct {
	Status  int
	Message string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// UnexpectedResponseError - ответ, который не удалось разобрать как JSON (чаще всего HTML страница прокси)
type UnexpectedResponseError struct {
	Status      int
	ContentType string
	Snippet     string
	Err         error
}

func (e *UnexpectedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unexpected response %d (%s): %v", e.Status, e.ContentType, e.Err)
	}
	return fmt.Sprintf("unexpected response %d (%s)", e.Status, e.ContentType)
}

func (e *UnexpectedResponseError) Unwrap() error { return e.Err }

// NetworkError - запрос не дошел до сервера или ответ не был получен
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error on %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Retryable всегда true: запрос можно повторить вручную
func (e *NetworkError) Retryable() bool { return true }

// AuthError - 401, который не удалось исправить обновлением токена. Сессия завершена.
type AuthError struct {
	Status int
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authorization failed (%d): %v", e.Status, e.Err)
	}
	return fmt.Sprintf("authorization failed (%d)", e.Status)
}

func (e *AuthError) Unwrap() error { return e.Err }

// Classify возвращает вид ошибки
func Classify(err error) Kind {
	if err == nil {
		return KindOK
	}

	var (
		domainErr     *DomainError
		unexpectedErr *UnexpectedResponseError
		networkErr    *NetworkError
		authErr       *AuthError
	)
	switch {
	case errors.As(err, &authErr):
		return KindAuth
	case errors.As(err, &domainErr):
		return KindDomain
	case errors.As(err, &unexpectedErr):
		return KindUnexpected
	case errors.As(err, &networkErr):
		return KindNetwork
	default:
		return KindUnknown
	}
}

// decodeError превращает неуспешный ответ в DomainError или UnexpectedResponseError
func decodeError(res *response) error {
	body := bytes.TrimSpace(res.body)
	if len(body) == 0 || (body[0] != '{' && body[0] != '[') {
		return &UnexpectedResponseError{
			Status:      res.status,
			ContentType: res.contentType,
			Snippet:     snippet(body),
		}
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return &UnexpectedResponseError{
			Status:      res.status,
			ContentType: res.contentType,
			Snippet:     snippet(body),
			Err:         err,
		}
	}

	message := extractMessage(payload)
	if message == "" {
		message = http.StatusText(res.status)
	}

	return &DomainError{Status: res.status, Message: message}
}

// extractMessage достает текст ошибки из тела в формате backend API
func extractMessage(payload any) string {
	switch v := payload.(type) {
	case string:
		return v
	case []any:
		for _, item := range v {
			if msg := extractMessage(item); msg != "" {
				return msg
			}
		}
	case map[string]any:
		for _, key := range []string{"error", "detail", "message", "non_field_errors"} {
			if msg := extractMessage(v[key]); msg != "" {
				return msg
			}
		}

		// Ошибки валидации полей: {"field": ["msg"]}
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if msg := extractMessage(v[key]); msg != "" {
				return fmt.Sprintf("%s: %s", key, msg)
			}
		}
	}
	return ""
}

func snippet(body []byte) string {
	const limit = 120
	s := strings.TrimSpace(string(body))
	if len(s) > limit {
		return s[:limit]
	}
	return s
}
