package share_handler

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/IT-Nick/exambot/internal/domain/model"
	messageService "github.com/IT-Nick/exambot/internal/domain/messages/service"
	"github.com/IT-Nick/exambot/internal/infra/deeplink"
	"github.com/rs/zerolog/log"
	"gopkg.in/telebot.v4"
)

const qrSize = 512

// ShareHandler генерирует ссылку на тест и QR код с ней
type ShareHandler struct {
	messageService *messageService.MessageService
	botUsername    string
}

// NewShareHandler возвращает структуру обработчика
func NewShareHandler(messageService *messageService.MessageService, botUsername string) *ShareHandler {
	return &ShareHandler{
		messageService: messageService,
		botUsername:    botUsername,
	}
}

// Handle обрабатывает /share <id теста>
func (h *ShareHandler) Handle(c telebot.Context) error {
	ctx := context.Background()

	cardID := strings.TrimSpace(c.Message().Payload)
	if cardID == "" {
		return c.Send(h.messageService.Text(ctx, model.ShareUsageKey))
	}

	link, err := deeplink.TestCardLink(h.botUsername, model.ID(cardID))
	if err != nil {
		return c.Send(h.messageService.Text(ctx, model.ShareUsageKey))
	}

	png, err := deeplink.QRCode(link.URL, qrSize)
	if err != nil {
		log.Error().Err(err).Str("card_id", cardID).Msg("failed to generate qr code")
		return c.Send(link.URL)
	}

	photo := &telebot.Photo{
		File:    telebot.FromReader(bytes.NewReader(png)),
		Caption: fmt.Sprintf("Ссылка на тест: %s", link.URL),
	}
	return c.Send(photo)
}

// GetHandlerFunc возвращает обработчик в формате telebot.HandlerFunc
func (h *ShareHandler) GetHandlerFunc() telebot.HandlerFunc {
	return func(c telebot.Context) error {
		return h.Handle(c)
	}
}
