package models

import "time"

// AnalyticsFilter narrows the dashboard to a date range and/or a single URL.
// Dates are YYYY-MM-DD; both must be set for the range to apply.
type AnalyticsFilter struct {
	StartDate string `form:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate   string `form:"end_date" binding:"omitempty,datetime=2006-01-02"`
	URLID     string `form:"url_id" binding:"omitempty"`
}

// AnalyticsSummary holds headline numbers for a user's links.
type AnalyticsSummary struct {
	TotalClicks     int64   `json:"total_clicks"`
	TotalURLs       int     `json:"total_urls"`
	ActiveURLs      int     `json:"active_urls"`
	AvgClicksPerURL float64 `json:"avg_clicks_per_url"`
}

// DailyClicks is the number of clicks on one calendar day (UTC).
type DailyClicks struct {
	Date   string `json:"date"`
	Clicks int64  `json:"clicks"`
}

// LabelCount is a click count grouped by a single dimension (country, device, browser).
type LabelCount struct {
	Label  string `json:"label"`
	Clicks int64  `json:"clicks"`
}

// GeoCount is a click count grouped by country and city.
type GeoCount struct {
	Country string `json:"country"`
	City    string `json:"city"`
	Clicks  int64  `json:"clicks"`
}

// TimeBucket is a click count for one timeline bucket.
type TimeBucket struct {
	Time  time.Time `json:"time"`
	Count int64     `json:"count"`
}

// RecentClick is a recent visit joined with the link it hit.
type RecentClick struct {
	ShortCode   string    `json:"short_code"`
	OriginalURL string    `json:"original_url"`
	IP          string    `json:"ip"`
	Country     string    `json:"country"`
	City        string    `json:"city"`
	Device      string    `json:"device"`
	Browser     string    `json:"browser"`
	ClickedAt   time.Time `json:"clicked_at"`
}

// DashboardResponse is the payload of GET /api/v1/analytics
type DashboardResponse struct {
	Summary      AnalyticsSummary    `json:"summary"`
	ClickTrends  []DailyClicks       `json:"click_trends"`
	GeoData      []LabelCount        `json:"geo_data"`
	DeviceData   []LabelCount        `json:"device_data"`
	BrowserData  []LabelCount        `json:"browser_data"`
	TopURLs      []*URLStatsResponse `json:"top_urls"`
	RecentClicks []RecentClick       `json:"recent_clicks"`
	URLs         []*URLStatsResponse `json:"urls"`
}

// URLAnalyticsResponse is the payload of GET /api/v1/analytics/url/:urlId
type URLAnalyticsResponse struct {
	URL             URLStatsResponse `json:"url"`
	TotalClicks     int64            `json:"total_clicks"`
	DailyClicks     []DailyClicks    `json:"daily_clicks"`
	GeoDistribution []GeoCount       `json:"geo_distribution"`
	DeviceStats     []LabelCount     `json:"device_stats"`
	Timeline        []TimeBucket     `json:"timeline"`
}
