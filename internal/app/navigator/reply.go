package navigator

import (
	"errors"

	"gopkg.in/telebot.v4"
)

// Reply редактирует сообщение с кнопкой, если обновление пришло из callback, иначе отправляет новое
func Reply(c telebot.Context, text string, markup *telebot.ReplyMarkup) error {
	opts := &telebot.SendOptions{ParseMode: telebot.ModeHTML, ReplyMarkup: markup}
	if c.Callback() != nil && c.Message() != nil {
		err := c.Edit(text, opts)
		if err == nil || errors.Is(err, telebot.ErrSameMessageContent) {
			return nil
		}
		return err
	}
	return c.Send(text, opts)
}

// Alert показывает короткое уведомление: всплывающее для callback, сообщением для команды
func Alert(c telebot.Context, text string) error {
	if c.Callback() != nil {
		return c.Respond(&telebot.CallbackResponse{Text: text, ShowAlert: true})
	}
	return c.Send(text)
}

// Ack закрывает часики на кнопке
func Ack(c telebot.Context) {
	if c.Callback() != nil {
		_ = c.Respond()
	}
}
