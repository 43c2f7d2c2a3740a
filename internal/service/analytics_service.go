package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"linkly/internal/apperrors"
	"linkly/internal/cache"
	"linkly/internal/entities"
	"linkly/internal/models"
	"linkly/internal/repository"
)

const (
	dashboardCacheTTL   = time.Minute
	defaultRangeDays    = 30
	topGroupLimit       = 10
	recentClicksLimit   = 100
	geoDistributionSize = 20
	defaultTimelineHrs  = 24
	maxTimelineHrs      = 720
)

// AnalyticsService aggregates click data for signed-in users.
type AnalyticsService interface {
	Dashboard(ctx context.Context, userID string, filter models.AnalyticsFilter) (*models.DashboardResponse, error)
	URLAnalytics(ctx context.Context, userID, urlID string, hours int) (*models.URLAnalyticsResponse, error)
}

type analyticsService struct {
	urls    repository.URLRepository
	clicks  repository.ClickAnalyticsRepository
	cache   cache.Cache
	baseURL string
	logger  *zap.Logger
	now     func() time.Time
}

// NewAnalyticsService creates an analytics service. cacheClient may be nil.
func NewAnalyticsService(
	urls repository.URLRepository,
	clicks repository.ClickAnalyticsRepository,
	cacheClient cache.Cache,
	baseURL string,
	logger *zap.Logger,
) AnalyticsService {
	return &analyticsService{
		urls:    urls,
		clicks:  clicks,
		cache:   cacheClient,
		baseURL: baseURL,
		logger:  logger,
		now:     time.Now,
	}
}

// dashboardRange resolves the filter dates. Both must be present to apply; otherwise
// the last 30 days up to the end of today are used.
func (s *analyticsService) dashboardRange(filter models.AnalyticsFilter) (repository.TimeRange, error) {
	if filter.StartDate != "" && filter.EndDate != "" {
		start, err := time.Parse(time.DateOnly, filter.StartDate)
		if err != nil {
			return repository.TimeRange{}, apperrors.NewValidation("start_date", "must be formatted YYYY-MM-DD")
		}
		end, err := time.Parse(time.DateOnly, filter.EndDate)
		if err != nil {
			return repository.TimeRange{}, apperrors.NewValidation("end_date", "must be formatted YYYY-MM-DD")
		}
		if end.Before(start) {
			return repository.TimeRange{}, apperrors.NewValidation("end_date", "must not be before start_date")
		}
		return repository.TimeRange{From: start, To: endOfDay(end)}, nil
	}

	today := startOfDay(s.now())
	return repository.TimeRange{
		From: today.AddDate(0, 0, -defaultRangeDays),
		To:   endOfDay(today),
	}, nil
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).Add(24*time.Hour - time.Millisecond)
}

func (s *analyticsService) dashboardCacheKey(userID string, filter models.AnalyticsFilter, tr repository.TimeRange) string {
	return fmt.Sprintf("analytics:dashboard:%s:%s:%s:%s",
		userID, tr.From.Format(time.DateOnly), tr.To.Format(time.DateOnly), filter.URLID)
}

// Dashboard builds the overview for every URL userID owns
func (s *analyticsService) Dashboard(ctx context.Context, userID string, filter models.AnalyticsFilter) (*models.DashboardResponse, error) {
	tr, err := s.dashboardRange(filter)
	if err != nil {
		return nil, err
	}

	key := s.dashboardCacheKey(userID, filter, tr)
	if s.cache != nil {
		var cached models.DashboardResponse
		if err := s.cache.GetJSON(ctx, key, &cached); err == nil {
			return &cached, nil
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("dashboard cache read failed", zap.Error(err))
		}
	}

	urls, err := s.urls.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list urls: %w", err)
	}
	if filter.URLID != "" && filter.URLID != "all" {
		urls = filterByID(urls, filter.URLID)
	}

	resp := emptyDashboard()
	if len(urls) == 0 {
		return resp, nil
	}

	ids := make([]string, len(urls))
	for i, u := range urls {
		ids[i] = u.ID
		resp.URLs = append(resp.URLs, toStatsResponse(u, s.baseURL))
		resp.Summary.TotalClicks += u.ClickCount
		if u.ClickCount > 0 {
			resp.Summary.ActiveURLs++
		}
	}
	resp.Summary.TotalURLs = len(urls)
	resp.Summary.AvgClicksPerURL = roundTenth(float64(resp.Summary.TotalClicks) / float64(len(urls)))

	if resp.ClickTrends, err = s.clicks.DailyClicks(ctx, ids, tr); err != nil {
		return nil, err
	}
	if resp.GeoData, err = s.clicks.CountBy(ctx, repository.DimensionCountry, ids, tr, topGroupLimit); err != nil {
		return nil, err
	}
	if resp.DeviceData, err = s.clicks.CountBy(ctx, repository.DimensionDevice, ids, tr, 0); err != nil {
		return nil, err
	}
	if resp.BrowserData, err = s.clicks.CountBy(ctx, repository.DimensionBrowser, ids, tr, topGroupLimit); err != nil {
		return nil, err
	}
	if resp.RecentClicks, err = s.clicks.RecentClicks(ctx, ids, recentClicksLimit); err != nil {
		return nil, err
	}
	resp.TopURLs = topByClicks(resp.URLs, topGroupLimit)

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, resp, dashboardCacheTTL); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.Error(err))
		}
	}
	return resp, nil
}

// URLAnalytics returns the detail view of one URL owned by userID
func (s *analyticsService) URLAnalytics(ctx context.Context, userID, urlID string, hours int) (*models.URLAnalyticsResponse, error) {
	if _, err := uuid.Parse(urlID); err != nil {
		return nil, fmt.Errorf("url %q: %w", urlID, apperrors.ErrNotFound)
	}

	url, err := s.urls.FindByID(ctx, urlID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find url: %w", err)
	}
	if url == nil {
		return nil, fmt.Errorf("url %q: %w", urlID, apperrors.ErrNotFound)
	}

	if hours <= 0 {
		hours = defaultTimelineHrs
	}
	if hours > maxTimelineHrs {
		hours = maxTimelineHrs
	}

	now := s.now()
	ids := []string{url.ID}
	resp := &models.URLAnalyticsResponse{
		URL:         *toStatsResponse(url, s.baseURL),
		TotalClicks: url.ClickCount,
	}

	last30 := repository.TimeRange{From: startOfDay(now).AddDate(0, 0, -defaultRangeDays)}
	if resp.DailyClicks, err = s.clicks.DailyClicks(ctx, ids, last30); err != nil {
		return nil, err
	}
	if resp.GeoDistribution, err = s.clicks.GeoDistribution(ctx, url.ID, geoDistributionSize); err != nil {
		return nil, err
	}
	if resp.DeviceStats, err = s.clicks.CountBy(ctx, repository.DimensionDevice, ids, repository.TimeRange{}, 0); err != nil {
		return nil, err
	}
	if resp.Timeline, err = s.clicks.Timeline(ctx, url.ID, hours, now); err != nil {
		return nil, err
	}
	return resp, nil
}

func emptyDashboard() *models.DashboardResponse {
	return &models.DashboardResponse{
		ClickTrends:  []models.DailyClicks{},
		GeoData:      []models.LabelCount{},
		DeviceData:   []models.LabelCount{},
		BrowserData:  []models.LabelCount{},
		TopURLs:      []*models.URLStatsResponse{},
		RecentClicks: []models.RecentClick{},
		URLs:         []*models.URLStatsResponse{},
	}
}

func filterByID(urls []*entities.URL, id string) []*entities.URL {
	for _, u := range urls {
		if u.ID == id {
			return []*entities.URL{u}
		}
	}
	return nil
}

func topByClicks(urls []*models.URLStatsResponse, n int) []*models.URLStatsResponse {
	sorted := make([]*models.URLStatsResponse, len(urls))
	copy(sorted, urls)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ClickCount > sorted[j].ClickCount
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func roundTenth(f float64) float64 {
	return float64(int64(f*10+0.5)) / 10
}
