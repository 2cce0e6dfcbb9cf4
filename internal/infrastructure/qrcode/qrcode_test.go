package qrcode_test

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"testing"

	"github.com/DanielPopoola/photobooth/internal/infrastructure/qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_PNGBase64(t *testing.T) {
	encoded, err := qrcode.NewRenderer().PNGBase64("http://kiosk.local/view-secure-image?token=abc&download=true")
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 256, img.Bounds().Dx())
}
