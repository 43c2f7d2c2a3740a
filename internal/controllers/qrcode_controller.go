package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"linkly/internal/qr"
)

type QRCodeController struct {
	encoder qr.Encoder
	baseURL string
}

func NewQRCodeController(encoder qr.Encoder, baseURL string) *QRCodeController {
	return &QRCodeController{
		encoder: encoder,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// GenerateQRCode handles GET /api/v1/qrcode/:shortCode - generates QR code for a short URL
func (qc *QRCodeController) GenerateQRCode(c *gin.Context) {
	shortCode := strings.TrimSpace(c.Param("shortCode"))
	if shortCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Short code is required",
		})
		return
	}

	pngData, err := qc.encoder.PNG(qc.baseURL + "/" + shortCode)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to generate QR code image",
		})
		return
	}

	c.Header("Content-Disposition", "inline; filename=qrcode.png")
	c.Data(http.StatusOK, "image/png", pngData)
}
