package middleware

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/telebot.v4"
)

// Logger возвращает middleware, которое логирует входящие обновления и ошибки обработчиков
func Logger(logger zerolog.Logger) telebot.MiddlewareFunc {
	return func(next telebot.HandlerFunc) telebot.HandlerFunc {
		return func(c telebot.Context) error {
			start := time.Now()
			err := next(c)

			event := logger.Debug()
			if err != nil {
				event = logger.Error().Err(err)
			}
			if chat := c.Chat(); chat != nil {
				event = event.Int64("chat_id", chat.ID)
			}
			if cb := c.Callback(); cb != nil {
				event = event.Str("callback", cb.Data)
			} else if msg := c.Message(); msg != nil {
				event = event.Str("text", msg.Text)
			}
			event.Int("update_id", c.Update().ID).
				Dur("latency", time.Since(start)).
				Msg("update handled")
			return err
		}
	}
}

// Recover возвращает middleware, которое перехватывает панику в обработчике и вызывает onError.
// Без onError паника только логируется.
func Recover(logger zerolog.Logger, onError ...func(error, telebot.Context)) telebot.MiddlewareFunc {
	handleError := func(err error, c telebot.Context) {
		logger.Error().Err(err).Int("update_id", c.Update().ID).Msg("recovered from panic")
	}
	if len(onError) > 0 {
		handleError = onError[0]
	}

	return func(next telebot.HandlerFunc) telebot.HandlerFunc {
		return func(c telebot.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					var e error
					switch x := r.(type) {
					case error:
						e = x
					case string:
						e = errors.New(x)
					default:
						e = fmt.Errorf("unknown panic: %v", x)
					}
					handleError(e, c)
					err = e
				}
			}()
			return next(c)
		}
	}
}
