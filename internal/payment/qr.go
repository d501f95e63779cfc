package payment

import (
	"net/url"
	"strings"
)

// DefaultQRServiceURL is the public QR rendering endpoint used by the till.
const DefaultQRServiceURL = "https://api.qrserver.com/v1/create-qr-code/"

// QRCode describes how to ask the external rendering service for an image.
type QRCode struct {
	BaseURL    string
	Size       string
	Color      string
	Background string
}

// ImageURL returns the image URL that renders data as a QR code.
func (q QRCode) ImageURL(data string) string {
	base := strings.TrimSpace(q.BaseURL)
	if base == "" {
		base = DefaultQRServiceURL
	}
	params := url.Values{}
	params.Set("data", data)
	params.Set("size", valueOr(q.Size, "200x200"))
	params.Set("color", valueOr(q.Color, "000000"))
	params.Set("bgcolor", valueOr(q.Background, "E0F2FE"))
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + params.Encode()
}

func valueOr(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return strings.TrimSpace(v)
}
