package generate_test_link_handler

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/IT-Nick/exambot/internal/domain/dto"
	"github.com/IT-Nick/exambot/internal/domain/model"
	"github.com/IT-Nick/exambot/internal/infra/deeplink"
	httpError "github.com/IT-Nick/exambot/pkg/http"
	"github.com/rs/zerolog/log"
)

const qrSize = 256

// GenerateTestLinkHandler структура для обработчика
type GenerateTestLinkHandler struct {
	botUsername string
}

// NewGenerateTestLinkHandler создает новый экземпляр обработчика
func NewGenerateTestLinkHandler(botUsername string) *GenerateTestLinkHandler {
	return &GenerateTestLinkHandler{botUsername: botUsername}
}

// ServeHTTP формирует ссылку на тест и QR код к ней
func (h *GenerateTestLinkHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req dto.TestLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.TestCardID == "" {
		httpError.ErrorResponse(w, http.StatusBadRequest, "Missing test_card_id")
		return
	}

	link, err := deeplink.TestCardLink(h.botUsername, model.ID(req.TestCardID))
	if err != nil {
		if errors.Is(err, deeplink.ErrInvalidCardID) {
			httpError.ErrorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		httpError.ErrorResponse(w, http.StatusInternalServerError, "Failed to build link")
		return
	}

	png, err := deeplink.QRCode(link.URL, qrSize)
	if err != nil {
		log.Error().Err(err).Str("card_id", req.TestCardID).Msg("failed to generate qr code")
		httpError.ErrorResponse(w, http.StatusInternalServerError, "Failed to generate QR code")
		return
	}

	httpError.JSONResponse(w, http.StatusOK, dto.TestLinkResponse{
		Link:      link.URL,
		Ref:       link.Ref,
		QRCodePNG: base64.StdEncoding.EncodeToString(png),
	})
}
