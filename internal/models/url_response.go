package models

import "time"

// CreateURLResponse represents the response after creating a short URL
type CreateURLResponse struct {
	ID          string    `json:"id"`
	ShortCode   string    `json:"short_code"`
	OriginalURL string    `json:"original_url"`
	ShortURL    string    `json:"short_url"` // Full short URL (base URL + short code)
	Clicks      int64     `json:"clicks"`
	QRCodeImage *string   `json:"qrcode_image"` // null unless requested
	CreatedAt   time.Time `json:"created_at"`
}

// URLStatsResponse represents one entry of the signed-in user's URL list
type URLStatsResponse struct {
	ID          string    `json:"id"`
	ShortCode   string    `json:"short_code"`
	OriginalURL string    `json:"original_url"`
	ShortURL    string    `json:"short_url"`
	ClickCount  int64     `json:"click_count"`
	QRCodeImage *string   `json:"qrcode_image,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
