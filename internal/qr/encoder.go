// Package qr renders short URLs as QR code images.
package qr

import (
	"encoding/base64"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// DefaultSize is the PNG edge length in pixels.
const DefaultSize = 256

const dataURIPrefix = "data:image/png;base64,"

// Encoder turns text into QR images.
type Encoder interface {
	PNG(content string) ([]byte, error)
	DataURI(content string) (string, error)
}

type pngEncoder struct {
	size  int
	level qrcode.RecoveryLevel
}

// NewEncoder returns an Encoder producing size×size PNGs with high error recovery.
func NewEncoder(size int) Encoder {
	if size <= 0 {
		size = DefaultSize
	}
	return &pngEncoder{size: size, level: qrcode.High}
}

// PNG encodes content as a PNG image
func (e *pngEncoder) PNG(content string) ([]byte, error) {
	png, err := qrcode.Encode(content, e.level, e.size)
	if err != nil {
		return nil, fmt.Errorf("QR code generation failed: %w", err)
	}
	return png, nil
}

// DataURI encodes content as a base64 PNG data URI
func (e *pngEncoder) DataURI(content string) (string, error) {
	png, err := e.PNG(content)
	if err != nil {
		return "", err
	}
	return dataURIPrefix + base64.StdEncoding.EncodeToString(png), nil
}
