package deeplink

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/IT-Nick/exambot/internal/domain/model"
	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
)

const (
	cardPrefix = "card_"
	// Telegram принимает в start не больше 64 символов [A-Za-z0-9_-]
	maxPayload = 64
	refLength  = 8
)

var (
	ErrInvalidCardID = errors.New("test card id cannot be used in a start link")

	cardIDPattern = regexp.MustCompile(`^[A-Za-z0-9-]+$`)
)

// Link - ссылка на тест, открывающая бота
type Link struct {
	URL     string
	Payload string
	Ref     string
}

// TestCardLink формирует ссылку вида https://t.me/<bot>?start=card_<id>_<ref>.
// ref - короткая метка, по которой в логах видно, из какой ссылки пришел пользователь.
func TestCardLink(botUsername string, cardID model.ID) (Link, error) {
	id := string(cardID)
	if !cardIDPattern.MatchString(id) {
		return Link{}, fmt.Errorf("%w: %q", ErrInvalidCardID, id)
	}

	ref := strings.ReplaceAll(uuid.NewString(), "-", "")[:refLength]
	payload := cardPrefix + id + "_" + ref
	if len(payload) > maxPayload {
		return Link{}, fmt.Errorf("%w: %q is too long", ErrInvalidCardID, id)
	}

	return Link{
		URL:     fmt.Sprintf("https://t.me/%s?start=%s", strings.TrimPrefix(botUsername, "@"), payload),
		Payload: payload,
		Ref:     ref,
	}, nil
}

// ParseStart разбирает параметр команды /start. ref может отсутствовать.
func ParseStart(payload string) (cardID model.ID, ref string, ok bool) {
	rest, found := strings.CutPrefix(strings.TrimSpace(payload), cardPrefix)
	if !found || rest == "" {
		return "", "", false
	}

	id, ref, _ := strings.Cut(rest, "_")
	if !cardIDPattern.MatchString(id) {
		return "", "", false
	}
	return model.ID(id), ref, true
}

// QRCode возвращает PNG с QR кодом ссылки
func QRCode(url string, size int) ([]byte, error) {
	png, err := qrcode.Encode(url, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}
	return png, nil
}
