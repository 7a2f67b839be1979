package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const (
	loginPath   = "/accounts/login/"
	refreshPath = "/accounts/token/refresh/"

	maxBodySize = 10 << 20
)

// Client - шлюз к backend API для одной сессии.
// Подставляет Bearer токен и один раз повторяет запрос после обновления токена.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	tokens     TokenStore

	refreshes  *singleflight.Group
	refreshKey string
	onLogout   func(ctx context.Context)

	logger zerolog.Logger
}

// Option настраивает Client
type Option func(*Client)

// WithHTTPClient подменяет http.Client (таймауты, транспорт в тестах)
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithUserAgent задает User-Agent исходящих запросов
func WithUserAgent(userAgent string) Option {
	return func(c *Client) { c.userAgent = userAgent }
}

// WithRefreshGroup объединяет параллельные обновления токена одной сессии в один запрос
func WithRefreshGroup(group *singleflight.Group, key string) Option {
	return func(c *Client) {
		c.refreshes = group
		c.refreshKey = key
	}
}

// WithLogoutHook вызывается после принудительного выхода из сессии
func WithLogoutHook(hook func(ctx context.Context)) Option {
	return func(c *Client) { c.onLogout = hook }
}

// WithLogger задает логгер клиента
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New создает новый экземпляр Client
func New(baseURL string, tokens TokenStore, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		tokens:     tokens,
		refreshes:  &singleflight.Group{},
		refreshKey: "refresh",
		logger:     log.Logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RequestOption настраивает отдельный запрос
type RequestOption func(*requestOptions)

type requestOptions struct {
	idempotencyKey string
	anonymous      bool
}

// WithIdempotencyKey добавляет заголовок Idempotency-Key.
// Ключ сохраняется и при повторе запроса после обновления токена.
func WithIdempotencyKey(key string) RequestOption {
	return func(o *requestOptions) { o.idempotencyKey = key }
}

// anonymous отправляет запрос без токена и без обновления по 401
func anonymous() RequestOption {
	return func(o *requestOptions) { o.anonymous = true }
}

type response struct {
	status      int
	contentType string
	body        []byte
}

// Get выполняет GET запрос и декодирует ответ в out
func (c *Client) Get(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodGet, path, nil, out, opts...)
}

// Post выполняет POST запрос с JSON телом и декодирует ответ в out
func (c *Client) Post(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodPost, path, body, out, opts...)
}

// Do выполняет запрос к API. nil ошибка означает успех, ответ декодирован в out.
func (c *Client) Do(ctx context.Context, method, path string, body, out any, opts ...RequestOption) error {
	var payload []byte
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		payload = encoded
	}

	var ro requestOptions
	for _, opt := range opts {
		opt(&ro)
	}

	return c.do(ctx, method, path, payload, out, ro, false)
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte, out any, ro requestOptions, retried bool) error {
	var creds struct{ access, refresh string }
	if !ro.anonymous {
		stored, err := c.tokens.Credentials(ctx)
		if err != nil {
			return fmt.Errorf("failed to load credentials: %w", err)
		}
		creds.access, creds.refresh = stored.Access, stored.Refresh
	}

	res, err := c.send(ctx, method, path, payload, creds.access, ro.idempotencyKey)
	if err != nil {
		return err
	}

	if res.status == http.StatusUnauthorized && !ro.anonymous {
		if retried {
			// Повторный 401 не запускает новое обновление, иначе получим бесконечный цикл
			c.forceLogout(ctx, path, "retried request unauthorized")
			return &AuthError{Status: res.status}
		}

		if _, err := c.refresh(ctx, creds.refresh); err != nil {
			c.forceLogout(ctx, path, err.Error())
			return &AuthError{Status: res.status, Err: err}
		}

		return c.do(ctx, method, path, payload, out, ro, true)
	}

	return decodeResponse(res, out)
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte, access, idempotencyKey string) (*response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &NetworkError{Op: method + " " + path, Err: err}
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(started)).
		Msg("api request")

	return &response{
		status:      resp.StatusCode,
		contentType: resp.Header.Get("Content-Type"),
		body:        data,
	}, nil
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type refreshResponse struct {
	Access string `json:"access"`
}

// refresh получает новый access токен. Параллельные вызовы одной сессии делят один запрос.
func (c *Client) refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", ErrNoRefreshToken
	}

	access, err, _ := c.refreshes.Do(c.refreshKey, func() (any, error) {
		payload, err := json.Marshal(refreshRequest{Refresh: refreshToken})
		if err != nil {
			return "", fmt.Errorf("failed to encode refresh request: %w", err)
		}

		res, err := c.send(ctx, http.MethodPost, refreshPath, payload, "", "")
		if err != nil {
			return "", err
		}

		var tokens refreshResponse
		if err := decodeResponse(res, &tokens); err != nil {
			return "", err
		}
		if tokens.Access == "" {
			return "", &UnexpectedResponseError{Status: res.status, ContentType: res.contentType, Snippet: "empty access token"}
		}

		if err := c.tokens.SaveAccess(ctx, tokens.Access); err != nil {
			return "", fmt.Errorf("failed to save access token: %w", err)
		}
		return tokens.Access, nil
	})
	if err != nil {
		return "", err
	}
	return access.(string), nil
}

// forceLogout очищает токены и возвращает пользователя к входу
func (c *Client) forceLogout(ctx context.Context, path, reason string) {
	c.logger.Warn().Str("path", path).Str("reason", reason).Msg("session expired, forcing logout")

	if err := c.tokens.Clear(ctx); err != nil {
		c.logger.Error().Err(err).Msg("failed to clear credentials")
	}
	if c.onLogout != nil {
		c.onLogout(ctx)
	}
}

func (c *Client) url(path string) string {
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

func decodeResponse(res *response, out any) error {
	if res.status < 200 || res.status >= 300 {
		return decodeError(res)
	}

	if out == nil || len(bytes.TrimSpace(res.body)) == 0 {
		return nil
	}

	if err := json.Unmarshal(res.body, out); err != nil {
		return &UnexpectedResponseError{
			Status:      res.status,
			ContentType: res.contentType,
			Snippet:     snippet(res.body),
			Err:         err,
		}
	}
	return nil
}
