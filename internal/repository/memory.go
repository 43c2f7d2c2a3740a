package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"linkly/internal/apperrors"
	"linkly/internal/entities"
	"linkly/internal/models"
)

// MemoryStore keeps URLs, clicks and users in process memory. It satisfies URLRepository,
// ClickStore and UserRepository and is meant for tests and single-instance runs without
// a database; nothing survives a restart.
type MemoryStore struct {
	mu     sync.RWMutex
	urls   map[string]*entities.URL // by short code
	clicks []*entities.Click
	users  map[string]*entities.User // by id
	now    func() time.Time
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		urls:  make(map[string]*entities.URL),
		users: make(map[string]*entities.User),
		now:   time.Now,
	}
}

func copyURL(u *entities.URL) *entities.URL {
	c := *u
	return &c
}

// Create inserts a URL, failing with ErrDuplicateCode if the code exists
func (m *MemoryStore) Create(ctx context.Context, shortCode, originalURL string, userID, qrCode *string) (*entities.URL, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.urls[shortCode]; exists {
		return nil, fmt.Errorf("short code %q: %w", shortCode, apperrors.ErrDuplicateCode)
	}

	url := &entities.URL{
		ID:          uuid.NewString(),
		ShortCode:   shortCode,
		OriginalURL: originalURL,
		UserID:      userID,
		QRCode:      qrCode,
		CreatedAt:   m.now().UTC(),
	}
	m.urls[shortCode] = url
	return copyURL(url), nil
}

// FindByShortCode returns a copy of the record or nil
func (m *MemoryStore) FindByShortCode(ctx context.Context, shortCode string) (*entities.URL, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	url, ok := m.urls[shortCode]
	if !ok {
		return nil, nil
	}
	return copyURL(url), nil
}

// ResolveAndIncrement bumps the counter under the write lock and returns the new state
func (m *MemoryStore) ResolveAndIncrement(ctx context.Context, shortCode string) (*entities.URL, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	url, ok := m.urls[shortCode]
	if !ok {
		return nil, nil
	}
	url.ClickCount++
	return copyURL(url), nil
}

// ListByOwner returns the user's URLs, newest first
func (m *MemoryStore) ListByOwner(ctx context.Context, userID string) ([]*entities.URL, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	urls := []*entities.URL{}
	for _, url := range m.urls {
		if url.UserID != nil && *url.UserID == userID {
			urls = append(urls, copyURL(url))
		}
	}
	sort.Slice(urls, func(i, j int) bool {
		return urls[i].CreatedAt.After(urls[j].CreatedAt)
	})
	return urls, nil
}

// FindByID finds a URL by id, restricted to its owner
func (m *MemoryStore) FindByID(ctx context.Context, id, userID string) (*entities.URL, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, url := range m.urls {
		if url.ID == id && url.UserID != nil && *url.UserID == userID {
			return copyURL(url), nil
		}
	}
	return nil, nil
}

// ---- clicks ----

// createClick appends a click event.
func (m *MemoryStore) createClick(ctx context.Context, click *entities.Click) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	c := *click
	m.clicks = append(m.clicks, &c)
	return nil
}

// Clicks returns a snapshot of every recorded click for urlID.
func (m *MemoryStore) Clicks(urlID string) []entities.Click {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []entities.Click
	for _, c := range m.clicks {
		if c.URLID == urlID {
			out = append(out, *c)
		}
	}
	return out
}

func (m *MemoryStore) selectClicks(urlIDs []string, tr TimeRange) []*entities.Click {
	ids := make(map[string]struct{}, len(urlIDs))
	for _, id := range urlIDs {
		ids[id] = struct{}{}
	}

	var out []*entities.Click
	for _, c := range m.clicks {
		if _, ok := ids[c.URLID]; ok && tr.contains(c.ClickedAt) {
			out = append(out, c)
		}
	}
	return out
}

func (m *MemoryStore) dailyClicks(urlIDs []string, tr TimeRange) []models.DailyClicks {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := map[string]int64{}
	for _, c := range m.selectClicks(urlIDs, tr) {
		counts[c.ClickedAt.UTC().Format("2006-01-02")]++
	}

	result := make([]models.DailyClicks, 0, len(counts))
	for day, n := range counts {
		result = append(result, models.DailyClicks{Date: day, Clicks: n})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date < result[j].Date })
	return result
}

func (m *MemoryStore) countBy(dim Dimension, urlIDs []string, tr TimeRange, limit int) ([]models.LabelCount, error) {
	var field func(*entities.Click) string
	switch dim {
	case DimensionCountry:
		field = func(c *entities.Click) string { return c.Country }
	case DimensionDevice:
		field = func(c *entities.Click) string { return c.Device }
	case DimensionBrowser:
		field = func(c *entities.Click) string { return c.Browser }
	default:
		return nil, fmt.Errorf("unsupported analytics dimension %q", dim)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := map[string]int64{}
	for _, c := range m.selectClicks(urlIDs, tr) {
		counts[field(c)]++
	}

	result := make([]models.LabelCount, 0, len(counts))
	for label, n := range counts {
		result = append(result, models.LabelCount{Label: label, Clicks: n})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Clicks != result[j].Clicks {
			return result[i].Clicks > result[j].Clicks
		}
		return result[i].Label < result[j].Label
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MemoryStore) geoDistribution(urlID string, limit int) []models.GeoCount {
	m.mu.RLock()
	defer m.mu.RUnlock()

	type key struct{ country, city string }
	counts := map[key]int64{}
	for _, c := range m.selectClicks([]string{urlID}, TimeRange{}) {
		counts[key{c.Country, c.City}]++
	}

	result := make([]models.GeoCount, 0, len(counts))
	for k, n := range counts {
		result = append(result, models.GeoCount{Country: k.country, City: k.city, Clicks: n})
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.Clicks != b.Clicks {
			return a.Clicks > b.Clicks
		}
		if a.Country != b.Country {
			return a.Country < b.Country
		}
		return a.City < b.City
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}

func (m *MemoryStore) recentClicks(urlIDs []string, limit int) []models.RecentClick {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byID := make(map[string]*entities.URL, len(m.urls))
	for _, u := range m.urls {
		byID[u.ID] = u
	}

	selected := m.selectClicks(urlIDs, TimeRange{})
	sort.Slice(selected, func(i, j int) bool {
		return selected[i].ClickedAt.After(selected[j].ClickedAt)
	})
	if limit > 0 && len(selected) > limit {
		selected = selected[:limit]
	}

	result := make([]models.RecentClick, 0, len(selected))
	for _, c := range selected {
		rc := models.RecentClick{
			IP:        c.IP,
			Country:   c.Country,
			City:      c.City,
			Device:    c.Device,
			Browser:   c.Browser,
			ClickedAt: c.ClickedAt,
		}
		if u, ok := byID[c.URLID]; ok {
			rc.ShortCode = u.ShortCode
			rc.OriginalURL = u.OriginalURL
		}
		result = append(result, rc)
	}
	return result
}

func (m *MemoryStore) timeline(urlID string, hours int, now time.Time) []models.TimeBucket {
	m.mu.RLock()
	defer m.mu.RUnlock()

	width := TimelineBucket(hours)
	since := now.UTC().Add(-time.Duration(hours) * time.Hour)

	counts := map[time.Time]int64{}
	for _, c := range m.selectClicks([]string{urlID}, TimeRange{From: since}) {
		counts[c.ClickedAt.UTC().Truncate(width)]++
	}

	result := make([]models.TimeBucket, 0, len(counts))
	for t, n := range counts {
		result = append(result, models.TimeBucket{Time: t, Count: n})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Time.Before(result[j].Time) })
	return result
}

// ClickStore exposes the click side of the memory store. URL and click repositories
// both declare Create, so the click methods live on a separate view.
func (m *MemoryStore) ClickStore() ClickStore {
	return clickView{m}
}

type clickView struct{ m *MemoryStore }

func (v clickView) Create(ctx context.Context, click *entities.Click) error {
	return v.m.createClick(ctx, click)
}

func (v clickView) DailyClicks(ctx context.Context, urlIDs []string, tr TimeRange) ([]models.DailyClicks, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return v.m.dailyClicks(urlIDs, tr), nil
}

func (v clickView) CountBy(ctx context.Context, dim Dimension, urlIDs []string, tr TimeRange, limit int) ([]models.LabelCount, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return v.m.countBy(dim, urlIDs, tr, limit)
}

func (v clickView) GeoDistribution(ctx context.Context, urlID string, limit int) ([]models.GeoCount, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return v.m.geoDistribution(urlID, limit), nil
}

func (v clickView) RecentClicks(ctx context.Context, urlIDs []string, limit int) ([]models.RecentClick, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return v.m.recentClicks(urlIDs, limit), nil
}

func (v clickView) Timeline(ctx context.Context, urlID string, hours int, now time.Time) ([]models.TimeBucket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return v.m.timeline(urlID, hours, now), nil
}

// ---- users ----

// UserStore exposes the user side of the memory store.
func (m *MemoryStore) UserStore() UserRepository {
	return userView{m}
}

type userView struct{ m *MemoryStore }

func (v userView) Create(ctx context.Context, email, passwordHash string, name *string) (*entities.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v.m.mu.Lock()
	defer v.m.mu.Unlock()

	for _, u := range v.m.users {
		if strings.EqualFold(u.Email, email) {
			return nil, ErrEmailTaken
		}
	}

	now := v.m.now().UTC()
	user := &entities.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	v.m.users[user.ID] = user

	c := *user
	return &c, nil
}

func (v userView) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v.m.mu.RLock()
	defer v.m.mu.RUnlock()

	for _, u := range v.m.users {
		if strings.EqualFold(u.Email, email) {
			c := *u
			return &c, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", email, apperrors.ErrNotFound)
}

func (v userView) FindByID(ctx context.Context, id string) (*entities.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v.m.mu.RLock()
	defer v.m.mu.RUnlock()

	u, ok := v.m.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, apperrors.ErrNotFound)
	}
	c := *u
	return &c, nil
}

var (
	_ URLRepository  = (*MemoryStore)(nil)
	_ ClickStore     = clickView{}
	_ UserRepository = userView{}
)
