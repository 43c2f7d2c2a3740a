package entities

import "time"

// Device classes recorded for a click.
const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
)

// Placeholder values for fields that could not be resolved.
const (
	Unknown        = "Unknown"
	PrivateCountry = "Private"
	PrivateCity    = "Private Network"
)

// Click is one recorded visit of a short URL
type Click struct {
	ID        string    `json:"id"` // UUID
	URLID     string    `json:"url_id"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"user_agent"`
	Referrer  string    `json:"referrer"`
	Country   string    `json:"country"`
	City      string    `json:"city"`
	Device    string    `json:"device"`
	Browser   string    `json:"browser"`
	OS        string    `json:"os"`
	ClickedAt time.Time `json:"clicked_at"`
}

// ClickContext is the raw request data captured on the redirect path.
type ClickContext struct {
	IP        string
	UserAgent string
	Referrer  string
	At        time.Time // when the redirect was served
}
