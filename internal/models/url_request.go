package models

// CreateURLRequest represents the request body for creating a short URL
type CreateURLRequest struct {
	URL        string  `json:"url" binding:"required,url"` // Gin validation: required and must be valid URL
	Slug       *string `json:"slug,omitempty"`             // Optional custom short code (signed-in users only)
	GenerateQR bool    `json:"generate_qr,omitempty"`      // Attach a QR code data URI to the record
}
