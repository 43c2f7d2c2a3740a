package entities

import "time"

// URL represents a shortened URL entity in the database
type URL struct {
	ID          string    `json:"id"` // UUID
	ShortCode   string    `json:"short_code"`
	OriginalURL string    `json:"original_url"`
	UserID      *string   `json:"user_id,omitempty"` // nil for anonymous URLs
	ClickCount  int64     `json:"click_count"`
	QRCode      *string   `json:"qrcode_image,omitempty"` // PNG data URI, set once at creation
	CreatedAt   time.Time `json:"created_at"`
}
