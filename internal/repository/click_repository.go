package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"linkly/internal/entities"
	"linkly/internal/models"
)

// Dimension is a click attribute analytics can group by.
type Dimension string

const (
	DimensionCountry Dimension = "country"
	DimensionDevice  Dimension = "device"
	DimensionBrowser Dimension = "browser"
)

// TimeRange bounds a click query. Zero values leave that side open.
type TimeRange struct {
	From time.Time
	To   time.Time
}

func (tr TimeRange) contains(t time.Time) bool {
	if !tr.From.IsZero() && t.Before(tr.From) {
		return false
	}
	if !tr.To.IsZero() && t.After(tr.To) {
		return false
	}
	return true
}

// ClickRepository persists click events.
type ClickRepository interface {
	Create(ctx context.Context, click *entities.Click) error
}

// ClickAnalyticsRepository aggregates recorded clicks.
type ClickAnalyticsRepository interface {
	DailyClicks(ctx context.Context, urlIDs []string, tr TimeRange) ([]models.DailyClicks, error)
	CountBy(ctx context.Context, dim Dimension, urlIDs []string, tr TimeRange, limit int) ([]models.LabelCount, error)
	GeoDistribution(ctx context.Context, urlID string, limit int) ([]models.GeoCount, error)
	RecentClicks(ctx context.Context, urlIDs []string, limit int) ([]models.RecentClick, error)
	Timeline(ctx context.Context, urlID string, hours int, now time.Time) ([]models.TimeBucket, error)
}

// ClickStore is implemented by stores that both persist and aggregate clicks.
type ClickStore interface {
	ClickRepository
	ClickAnalyticsRepository
}

type clickRepository struct {
	db *sql.DB
}

// NewClickRepository creates a click repository backed by PostgreSQL
func NewClickRepository(db *sql.DB) ClickStore {
	return &clickRepository{db: db}
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}

// Create inserts a click event
func (r *clickRepository) Create(ctx context.Context, click *entities.Click) error {
	query := `
		INSERT INTO url_clicks (id, url_id, ip, user_agent, referrer, country, city, device, browser, os, clicked_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(ctx, query,
		click.ID,
		click.URLID,
		click.IP,
		click.UserAgent,
		click.Referrer,
		click.Country,
		click.City,
		click.Device,
		click.Browser,
		click.OS,
		click.ClickedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to log click: %w", err)
	}

	return nil
}

// DailyClicks counts clicks per UTC calendar day, oldest first
func (r *clickRepository) DailyClicks(ctx context.Context, urlIDs []string, tr TimeRange) ([]models.DailyClicks, error) {
	query := `
		SELECT TO_CHAR(clicked_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day, COUNT(*)
		FROM url_clicks
		WHERE url_id = ANY($1::uuid[])
		AND ($2::timestamptz IS NULL OR clicked_at >= $2)
		AND ($3::timestamptz IS NULL OR clicked_at <= $3)
		GROUP BY day
		ORDER BY day ASC
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(urlIDs), nullableTime(tr.From), nullableTime(tr.To))
	if err != nil {
		return nil, fmt.Errorf("failed to get daily clicks: %w", err)
	}
	defer rows.Close()

	result := []models.DailyClicks{}
	for rows.Next() {
		var d models.DailyClicks
		if err := rows.Scan(&d.Date, &d.Clicks); err != nil {
			return nil, fmt.Errorf("failed to scan daily clicks: %w", err)
		}
		result = append(result, d)
	}

	return result, rows.Err()
}

// CountBy groups clicks by one dimension, most clicked first. A non-positive limit returns every group.
func (r *clickRepository) CountBy(ctx context.Context, dim Dimension, urlIDs []string, tr TimeRange, limit int) ([]models.LabelCount, error) {
	switch dim {
	case DimensionCountry, DimensionDevice, DimensionBrowser:
	default:
		return nil, fmt.Errorf("unsupported analytics dimension %q", dim)
	}

	query := fmt.Sprintf(`
		SELECT %[1]s, COUNT(*) AS clicks
		FROM url_clicks
		WHERE url_id = ANY($1::uuid[])
		AND ($2::timestamptz IS NULL OR clicked_at >= $2)
		AND ($3::timestamptz IS NULL OR clicked_at <= $3)
		GROUP BY %[1]s
		ORDER BY clicks DESC, %[1]s ASC
	`, dim)

	args := []any{pq.Array(urlIDs), nullableTime(tr.From), nullableTime(tr.To)}
	if limit > 0 {
		query += " LIMIT $4"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count clicks by %s: %w", dim, err)
	}
	defer rows.Close()

	result := []models.LabelCount{}
	for rows.Next() {
		var lc models.LabelCount
		if err := rows.Scan(&lc.Label, &lc.Clicks); err != nil {
			return nil, fmt.Errorf("failed to scan clicks by %s: %w", dim, err)
		}
		result = append(result, lc)
	}

	return result, rows.Err()
}

// GeoDistribution groups a URL's clicks by country and city
func (r *clickRepository) GeoDistribution(ctx context.Context, urlID string, limit int) ([]models.GeoCount, error) {
	query := `
		SELECT country, city, COUNT(*) AS clicks
		FROM url_clicks
		WHERE url_id = $1
		GROUP BY country, city
		ORDER BY clicks DESC, country ASC, city ASC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, urlID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get geo distribution: %w", err)
	}
	defer rows.Close()

	result := []models.GeoCount{}
	for rows.Next() {
		var g models.GeoCount
		if err := rows.Scan(&g.Country, &g.City, &g.Clicks); err != nil {
			return nil, fmt.Errorf("failed to scan geo distribution: %w", err)
		}
		result = append(result, g)
	}

	return result, rows.Err()
}

// RecentClicks returns the latest clicks across urlIDs, newest first
func (r *clickRepository) RecentClicks(ctx context.Context, urlIDs []string, limit int) ([]models.RecentClick, error) {
	query := `
		SELECT u.short_code, u.original_url, c.ip, c.country, c.city, c.device, c.browser, c.clicked_at
		FROM url_clicks c
		JOIN urls u ON u.id = c.url_id
		WHERE c.url_id = ANY($1::uuid[])
		ORDER BY c.clicked_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(urlIDs), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent clicks: %w", err)
	}
	defer rows.Close()

	result := []models.RecentClick{}
	for rows.Next() {
		var rc models.RecentClick
		err := rows.Scan(&rc.ShortCode, &rc.OriginalURL, &rc.IP, &rc.Country, &rc.City, &rc.Device, &rc.Browser, &rc.ClickedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recent click: %w", err)
		}
		result = append(result, rc)
	}

	return result, rows.Err()
}

// TimelineBucket picks the bucket width for a look-back window of hours.
func TimelineBucket(hours int) time.Duration {
	switch {
	case hours <= 6:
		return 10 * time.Minute
	case hours <= 12:
		return 30 * time.Minute
	case hours <= 24:
		return time.Hour
	case hours <= 72:
		return 6 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// Timeline counts a URL's clicks over the last hours, grouped into UTC-aligned buckets
func (r *clickRepository) Timeline(ctx context.Context, urlID string, hours int, now time.Time) ([]models.TimeBucket, error) {
	bucket := int64(TimelineBucket(hours) / time.Second)

	query := `
		SELECT TO_TIMESTAMP(FLOOR(EXTRACT(EPOCH FROM clicked_at) / $2) * $2) AS time_bucket, COUNT(*)
		FROM url_clicks
		WHERE url_id = $1
		AND clicked_at >= $3
		GROUP BY time_bucket
		ORDER BY time_bucket ASC
	`

	since := now.UTC().Add(-time.Duration(hours) * time.Hour)
	rows, err := r.db.QueryContext(ctx, query, urlID, bucket, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get click analytics: %w", err)
	}
	defer rows.Close()

	result := []models.TimeBucket{}
	for rows.Next() {
		var tb models.TimeBucket
		if err := rows.Scan(&tb.Time, &tb.Count); err != nil {
			return nil, fmt.Errorf("failed to scan analytics: %w", err)
		}
		tb.Time = tb.Time.UTC()
		result = append(result, tb)
	}

	return result, rows.Err()
}
