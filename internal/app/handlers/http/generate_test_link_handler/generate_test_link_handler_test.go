package generate_test_link_handler

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/IT-Nick/exambot/internal/domain/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func post(body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/links/test_card", strings.NewReader(body))
	NewGenerateTestLinkHandler("@exam_bot").ServeHTTP(rec, req)
	return rec
}

func TestGenerateTestLink(t *testing.T) {
	rec := post(`{"test_card_id":"a1b2-c3"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body dto.TestLinkResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.True(t, strings.HasPrefix(body.Link, "https://t.me/exam_bot?start=card_a1b2-c3_"), body.Link)
	assert.Len(t, body.Ref, 8)

	png, err := base64.StdEncoding.DecodeString(body.QRCodePNG)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")), "QR код в формате PNG")
}

func TestGenerateTestLink_BadRequests(t *testing.T) {
	cases := map[string]string{
		"не JSON":            `{`,
		"пустой id":          `{"test_card_id":""}`,
		"недопустимый id":    `{"test_card_id":"a b"}`,
		"подчеркивание в id": `{"test_card_id":"a_b"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := post(body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
		})
	}
}
