package apiclient

import (
	"context"
	"time"

	"github.com/IT-Nick/exambot/internal/domain/model"
	"github.com/golang-jwt/jwt/v5"
)

// TokenStore хранит токены одной сессии (одного чата)
type TokenStore interface {
	Credentials(ctx context.Context) (model.Credentials, error)
	Save(ctx context.Context, creds model.Credentials) error
	SaveAccess(ctx context.Context, access string) error
	Clear(ctx context.Context) error
}

// AccessExpiry читает exp из access токена без проверки подписи.
// Подпись проверяет backend, клиенту срок нужен только для отображения.
func AccessExpiry(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
