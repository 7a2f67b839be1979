package deeplink

import (
	"bytes"
	"strings"
	"testing"

	"github.com/IT-Nick/exambot/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestCardLink_RoundTrip(t *testing.T) {
	link, err := TestCardLink("@exam_bot", "42")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(link.URL, "https://t.me/exam_bot?start=card_42_"))
	assert.Len(t, link.Ref, refLength)

	id, ref, ok := ParseStart(link.Payload)
	require.True(t, ok)
	assert.Equal(t, model.ID("42"), id)
	assert.Equal(t, link.Ref, ref)
}

func TestTestCardLink_Rejects(t *testing.T) {
	_, err := TestCardLink("bot", "4 2")
	assert.ErrorIs(t, err, ErrInvalidCardID)

	_, err = TestCardLink("bot", model.ID(strings.Repeat("a", 60)))
	assert.ErrorIs(t, err, ErrInvalidCardID)
}

func TestParseStart(t *testing.T) {
	cases := []struct {
		payload string
		id      model.ID
		ok      bool
	}{
		{payload: "card_7", id: "7", ok: true},
		{payload: "card_0b6f-11_ab12cd34", id: "0b6f-11", ok: true},
		{payload: "test_7", ok: false},
		{payload: "card_", ok: false},
		{payload: "", ok: false},
	}
	for _, tc := range cases {
		id, _, ok := ParseStart(tc.payload)
		assert.Equal(t, tc.ok, ok, tc.payload)
		assert.Equal(t, tc.id, id, tc.payload)
	}
}

func TestQRCode(t *testing.T) {
	png, err := QRCode("https://t.me/exam_bot?start=card_7", 256)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}
