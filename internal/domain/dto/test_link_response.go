package dto

// TestLinkRequest - тело запроса на ссылку к тесту
type TestLinkRequest struct {
	TestCardID string `json:"test_card_id"`
}

// TestLinkResponse - ссылка на тест и QR код в base64 (PNG)
type TestLinkResponse struct {
	Link      string `json:"link"`
	Ref       string `json:"ref"`
	QRCodePNG string `json:"qr_code_png"`
}
