package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"linkly/internal/clicks"
	"linkly/internal/jwt"
	"linkly/internal/middleware"
	"linkly/internal/models"
	"linkly/internal/qr"
	"linkly/internal/ratelimit"
	"linkly/internal/repository"
	"linkly/internal/service"
	"linkly/internal/shortcode"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type jobSink struct {
	mu   sync.Mutex
	jobs []clicks.Job
}

func (s *jobSink) Dispatch(job clicks.Job) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, job)
	return true
}

type testServer struct {
	engine *gin.Engine
	sink   *jobSink
}

func newTestServer(t *testing.T, anonLimit int64, trustedProxies ...string) *testServer {
	t.Helper()
	logger := zap.NewNop()
	store := repository.NewMemoryStore()
	tokens := jwt.NewJWTService("test-secret", time.Hour)
	encoder := qr.NewEncoder(qr.DefaultSize)
	sink := &jobSink{}
	limiter := ratelimit.NewLimiter(ratelimit.NewMemoryStore(nil), ratelimit.Config{Limit: anonLimit, Window: 24 * time.Hour}, logger)

	urlService := service.NewURLService(store, shortcode.NewGenerator(), limiter, encoder, sink,
		service.URLServiceConfig{BaseURL: "https://lnk.test"}, logger)
	authService := service.NewAuthService(store.UserStore(), tokens)
	analyticsService := service.NewAnalyticsService(store, store.ClickStore(), nil, "https://lnk.test", logger)

	bucket := func() *middleware.RateLimiter {
		return middleware.NewRateLimiter("test", rate.Limit(1000), 1000, logger)
	}

	r := &Router{
		Shortener: NewShortenerController(urlService),
		Auth:      NewAuthController(authService),
		Analytics: NewAnalyticsController(analyticsService),
		QRCode:    NewQRCodeController(encoder, "https://lnk.test"),
		JWT:       tokens,
		Limiters:  RateLimiters{General: bucket(), Auth: bucket(), Shorten: bucket(), Redirect: bucket()},
		Logger:    logger,

		TrustedProxies: trustedProxies,
	}
	engine, err := r.Engine()
	require.NoError(t, err)
	return &testServer{engine: engine, sink: sink}
}

func (s *testServer) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	return s.doWithHeaders(t, method, path, body, token, nil)
}

func (s *testServer) doWithHeaders(t *testing.T, method, path string, body any, token string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "router-test")
	req.RemoteAddr = "203.0.113.50:4242"
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestShortenAndRedirect(t *testing.T) {
	s := newTestServer(t, 20)
	target := "https://example.com/very/long/path"

	w := s.do(t, http.MethodPost, "/api/v1/shorten", gin.H{"url": target}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	raw := decode[map[string]any](t, w)
	assert.Contains(t, raw, "qrcode_image")
	assert.Nil(t, raw["qrcode_image"])

	created := decode[models.CreateURLResponse](t, w)
	assert.Len(t, created.ShortCode, 7)
	assert.Equal(t, "https://lnk.test/"+created.ShortCode, created.ShortURL)
	assert.Equal(t, int64(0), created.Clicks)

	w = s.do(t, http.MethodGet, "/"+created.ShortCode, nil, "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, target, w.Header().Get("Location"))

	w = s.do(t, http.MethodGet, "/api/v1/redirect/"+created.ShortCode, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, target, decode[map[string]string](t, w)["original_url"])

	require.Len(t, s.sink.jobs, 2)
	assert.Equal(t, "203.0.113.50", s.sink.jobs[0].Context.IP)
	assert.Equal(t, "router-test", s.sink.jobs[0].Context.UserAgent)
}

func TestRedirectUnknownCode(t *testing.T) {
	s := newTestServer(t, 20)

	w := s.do(t, http.MethodGet, "/nothere", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, s.sink.jobs)
}

func TestShortenErrors(t *testing.T) {
	s := newTestServer(t, 1)

	// rejected by binding before the quota is consulted
	w := s.do(t, http.MethodPost, "/api/v1/shorten", gin.H{"url": "nope"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// anonymous slugs are refused without touching the quota
	for i := 0; i < 3; i++ {
		w = s.do(t, http.MethodPost, "/api/v1/shorten", gin.H{"url": "https://example.com", "slug": "mine"}, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}

	w = s.do(t, http.MethodPost, "/api/v1/shorten", gin.H{"url": "https://example.com"}, "")
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/v1/shorten", gin.H{"url": "https://example.com"}, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "limit of 1 creations per day")
}

func TestShortenQuotaIgnoresUntrustedForwardedFor(t *testing.T) {
	s := newTestServer(t, 2)

	codes := make([]int, 0, 6)
	for i := 0; i < 6; i++ {
		headers := map[string]string{
			"X-Forwarded-For": fmt.Sprintf("198.51.100.%d", i+1),
			"X-Real-IP":       fmt.Sprintf("192.0.2.%d", i+1),
		}
		w := s.doWithHeaders(t, http.MethodPost, "/api/v1/shorten", gin.H{"url": "https://example.com"}, "", headers)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{201, 201, 429, 429, 429, 429}, codes)

	w := s.doWithHeaders(t, http.MethodGet, "/nothere", nil, "", map[string]string{"X-Forwarded-For": "198.51.100.77"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestShortenQuotaFollowsTrustedProxy(t *testing.T) {
	s := newTestServer(t, 1, "203.0.113.0/24")

	for i := 0; i < 3; i++ {
		headers := map[string]string{"X-Forwarded-For": fmt.Sprintf("198.51.100.%d", i+1)}
		w := s.doWithHeaders(t, http.MethodPost, "/api/v1/shorten", gin.H{"url": "https://example.com"}, "", headers)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		created := decode[models.CreateURLResponse](t, w)

		w = s.doWithHeaders(t, http.MethodGet, "/"+created.ShortCode, nil, "", headers)
		require.Equal(t, http.StatusFound, w.Code)
	}

	require.Len(t, s.sink.jobs, 3)
	assert.Equal(t, "198.51.100.3", s.sink.jobs[2].Context.IP)
}

func TestEngine_RejectsInvalidTrustedProxy(t *testing.T) {
	r := &Router{TrustedProxies: []string{"not-a-cidr"}}
	_, err := r.Engine()
	assert.Error(t, err)
}

func TestAuthenticatedFlow(t *testing.T) {
	s := newTestServer(t, 20)

	w := s.do(t, http.MethodPost, "/api/v1/auth/register", gin.H{"email": "jane@example.com", "password": "secret1"}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/v1/auth/register", gin.H{"email": "jane@example.com", "password": "secret1"}, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/auth/login", gin.H{"email": "jane@example.com", "password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/auth/login", gin.H{"email": "jane@example.com", "password": "secret1"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	token := decode[models.AuthResponse](t, w).Token
	require.NotEmpty(t, token)

	w = s.do(t, http.MethodGet, "/api/v1/auth/me", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "jane@example.com", decode[models.AuthResponse](t, w).Email)

	body := gin.H{"url": "https://example.com/docs", "slug": "docs-link", "generate_qr": true}
	w = s.do(t, http.MethodPost, "/api/v1/shorten", body, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[models.CreateURLResponse](t, w)
	assert.Equal(t, "docs-link", created.ShortCode)
	require.NotNil(t, created.QRCodeImage)
	assert.True(t, strings.HasPrefix(*created.QRCodeImage, "data:image/png;base64,"))

	w = s.do(t, http.MethodPost, "/api/v1/shorten", body, token)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/urls", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.URLStatsResponse](t, w), 1)

	w = s.do(t, http.MethodGet, "/api/v1/analytics?start_date=2026-01-01&end_date=2026-01-31", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[models.DashboardResponse](t, w).Summary.TotalURLs)

	w = s.do(t, http.MethodGet, "/api/v1/analytics?start_date=January", nil, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/analytics/url/"+created.ID+"?hours=6", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "docs-link", decode[models.URLAnalyticsResponse](t, w).URL.ShortCode)

	w = s.do(t, http.MethodGet, "/api/v1/analytics/url/00000000-0000-0000-0000-000000000000", nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/urls", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestQRCodeAndHealth(t *testing.T) {
	s := newTestServer(t, 20)

	w := s.do(t, http.MethodGet, "/api/v1/qrcode/abc1234", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Body.Bytes())

	w = s.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}
