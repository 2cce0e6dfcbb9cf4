// Package qrcode renders links as PNG QR codes for the success page.
package qrcode

import (
	"encoding/base64"
	"fmt"

	"github.com/DanielPopoola/photobooth/internal/application"
	qr "github.com/skip2/go-qrcode"
)

const defaultSize = 256

type Renderer struct {
	size  int
	level qr.RecoveryLevel
}

var _ application.QRRenderer = (*Renderer)(nil)

func NewRenderer() *Renderer {
	return &Renderer{size: defaultSize, level: qr.Medium}
}

func (r *Renderer) PNG(content string) ([]byte, error) {
	png, err := qr.Encode(content, r.level, r.size)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}
	return png, nil
}

// PNGBase64 returns the PNG as standard base64, ready for a data URL.
func (r *Renderer) PNGBase64(content string) (string, error) {
	png, err := r.PNG(content)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(png), nil
}
