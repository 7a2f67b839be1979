package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/IT-Nick/exambot/internal/domain/model"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Login получает пару токенов и сохраняет ее в хранилище сессии.
// Запрос уходит без старого токена, чтобы просроченный access не мешал входу.
func (c *Client) Login(ctx context.Context, username, password string) error {
	var tokens loginResponse
	err := c.Do(ctx, http.MethodPost, loginPath, loginRequest{Username: username, Password: password}, &tokens, anonymous())
	if err != nil {
		return err
	}

	if tokens.Access == "" || tokens.Refresh == "" {
		return &UnexpectedResponseError{Status: http.StatusOK, ContentType: "application/json", Snippet: "login response without tokens"}
	}

	creds := model.Credentials{Access: tokens.Access, Refresh: tokens.Refresh}
	if exp, ok := AccessExpiry(tokens.Access); ok {
		creds.AccessExpiresAt = &exp
	}

	if err := c.tokens.Save(ctx, creds); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	return nil
}

// Logout завершает сессию локально
func (c *Client) Logout(ctx context.Context) error {
	if err := c.tokens.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}

// LoggedIn сообщает, есть ли у сессии токены
func (c *Client) LoggedIn(ctx context.Context) (bool, error) {
	creds, err := c.tokens.Credentials(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to load credentials: %w", err)
	}
	return creds.LoggedIn(), nil
}
