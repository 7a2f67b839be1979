package apiclient

import (
	"context"
	"strconv"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// Pool выдает клиентов API, привязанных к чатам.
// Клиенты одного чата делят обновление токена.
type Pool struct {
	baseURL  string
	tokens   func(chatID int64) TokenStore
	onLogout func(ctx context.Context, chatID int64)
	opts     []Option
	group    singleflight.Group
}

// NewPool создает новый экземпляр Pool
func NewPool(baseURL string, tokens func(chatID int64) TokenStore, onLogout func(ctx context.Context, chatID int64), opts ...Option) *Pool {
	return &Pool{
		baseURL:  baseURL,
		tokens:   tokens,
		onLogout: onLogout,
		opts:     opts,
	}
}

// ForChat возвращает клиента для чата
func (p *Pool) ForChat(chatID int64) *Client {
	opts := make([]Option, 0, len(p.opts)+3)
	opts = append(opts, WithLogger(log.Logger.With().Int64("chat_id", chatID).Logger()))
	opts = append(opts, p.opts...)
	opts = append(opts,
		WithRefreshGroup(&p.group, strconv.FormatInt(chatID, 10)),
		WithLogoutHook(func(ctx context.Context) {
			if p.onLogout != nil {
				p.onLogout(ctx, chatID)
			}
		}),
	)
	return New(p.baseURL, p.tokens(chatID), opts...)
}
