package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"linkly/internal/apperrors"
	"linkly/internal/clicks"
	"linkly/internal/entities"
	"linkly/internal/metrics"
	"linkly/internal/models"
	"linkly/internal/qr"
	"linkly/internal/ratelimit"
	"linkly/internal/repository"
	"linkly/internal/shortcode"
)

const maxTargetURLLength = 2048

// URLService defines the interface for URL business logic
type URLService interface {
	CreateShortURL(ctx context.Context, in CreateInput) (*models.CreateURLResponse, error)
	// ResolveShortURL counts a visit and returns the target. The click itself is recorded
	// asynchronously and never delays the caller.
	ResolveShortURL(ctx context.Context, shortCode string, cc entities.ClickContext) (string, error)
	GetUserURLs(ctx context.Context, userID string) ([]*models.URLStatsResponse, error)
}

// CreateInput carries one creation request. OwnerID is nil for anonymous callers,
// who are identified by Fingerprint instead.
type CreateInput struct {
	TargetURL   string
	OwnerID     *string
	CustomSlug  *string
	WantQR      bool
	Fingerprint string
}

// ClickDispatcher hands clicks to the background recorder.
type ClickDispatcher interface {
	Dispatch(job clicks.Job) bool
}

type URLServiceConfig struct {
	BaseURL     string // prefix for short URLs and QR content
	CodeLength  int
	MaxAttempts int // total generation attempts before giving up
}

type urlService struct {
	repo       repository.URLRepository
	generator  shortcode.Generator
	limiter    ratelimit.Limiter
	encoder    qr.Encoder
	dispatcher ClickDispatcher
	validate   *validator.Validate
	cfg        URLServiceConfig
	logger     *zap.Logger
}

// NewURLService creates a new URL service
func NewURLService(
	repo repository.URLRepository,
	generator shortcode.Generator,
	limiter ratelimit.Limiter,
	encoder qr.Encoder,
	dispatcher ClickDispatcher,
	cfg URLServiceConfig,
	logger *zap.Logger,
) URLService {
	if cfg.CodeLength <= 0 {
		cfg.CodeLength = shortcode.DefaultLength
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &urlService{
		repo:       repo,
		generator:  generator,
		limiter:    limiter,
		encoder:    encoder,
		dispatcher: dispatcher,
		validate:   validator.New(),
		cfg:        cfg,
		logger:     logger,
	}
}

// Reserved short codes that cannot be used
var reservedCodes = map[string]bool{
	"admin":     true,
	"api":       true,
	"www":       true,
	"mail":      true,
	"ftp":       true,
	"localhost": true,
	"health":    true,
	"metrics":   true,
	"auth":      true,
	"login":     true,
	"register":  true,
	"signin":    true,
	"signup":    true,
	"signout":   true,
	"logout":    true,
	"shorten":   true,
	"urls":      true,
	"url":       true,
	"stats":     true,
	"analytics": true,
	"redirect":  true,
	"qrcode":    true,
}

var shortCodePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// validateCustomShortCode validates a custom short code
func validateCustomShortCode(shortCode string) error {
	if len(shortCode) < 3 {
		return apperrors.NewValidation("slug", "short code must be at least 3 characters long")
	}
	if len(shortCode) > 20 {
		return apperrors.NewValidation("slug", "short code must be at most 20 characters long")
	}
	if !shortCodePattern.MatchString(shortCode) {
		return apperrors.NewValidation("slug", "short code can only contain letters, numbers, hyphens, and underscores")
	}
	if reservedCodes[strings.ToLower(shortCode)] {
		return apperrors.NewValidation("slug", "short code '%s' is reserved and cannot be used", shortCode)
	}
	return nil
}

func (s *urlService) validateTargetURL(target string) error {
	if len(target) > maxTargetURLLength {
		return apperrors.NewValidation("url", "URL must be at most %d characters long", maxTargetURLLength)
	}
	if err := s.validate.Var(target, "required,http_url"); err != nil {
		return apperrors.NewValidation("url", "must be an absolute http or https URL")
	}
	return nil
}

// CreateShortURL creates a new short URL
func (s *urlService) CreateShortURL(ctx context.Context, in CreateInput) (*models.CreateURLResponse, error) {
	wantsSlug := in.CustomSlug != nil && strings.TrimSpace(*in.CustomSlug) != ""
	if in.OwnerID == nil {
		if wantsSlug {
			return nil, apperrors.NewValidation("slug", "custom short codes are only available to signed-in users")
		}
		if err := s.limiter.CheckAndIncrement(ctx, in.Fingerprint); err != nil {
			var rl *apperrors.RateLimitError
			if errors.As(err, &rl) {
				metrics.QuotaDenied()
			}
			return nil, err
		}
	}

	target := strings.TrimSpace(in.TargetURL)
	if err := s.validateTargetURL(target); err != nil {
		return nil, err
	}

	var (
		url *entities.URL
		err error
	)
	if wantsSlug {
		url, err = s.createWithSlug(ctx, strings.TrimSpace(*in.CustomSlug), target, in)
	} else {
		url, err = s.createWithGeneratedCode(ctx, target, in)
	}
	if err != nil {
		return nil, err
	}

	metrics.URLCreated(in.OwnerID != nil)
	s.logger.Info("short url created",
		zap.String("short_code", url.ShortCode),
		zap.Bool("anonymous", in.OwnerID == nil),
	)

	return &models.CreateURLResponse{
		ID:          url.ID,
		ShortCode:   url.ShortCode,
		OriginalURL: url.OriginalURL,
		ShortURL:    s.shortURL(url.ShortCode),
		Clicks:      url.ClickCount,
		QRCodeImage: url.QRCode,
		CreatedAt:   url.CreatedAt,
	}, nil
}

func (s *urlService) createWithSlug(ctx context.Context, slug, target string, in CreateInput) (*entities.URL, error) {
	if err := validateCustomShortCode(slug); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByShortCode(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to check short code availability: %w", err)
	}
	if existing != nil {
		return nil, apperrors.NewConflict("short code '%s' is already taken", slug)
	}

	url, err := s.insert(ctx, slug, target, in)
	if errors.Is(err, apperrors.ErrDuplicateCode) {
		// lost a race with a concurrent create of the same slug
		return nil, apperrors.NewConflict("short code '%s' is already taken", slug)
	}
	return url, err
}

// createWithGeneratedCode draws codes until one inserts cleanly or MaxAttempts is spent.
func (s *urlService) createWithGeneratedCode(ctx context.Context, target string, in CreateInput) (*entities.URL, error) {
	backoff := retry.WithMaxRetries(uint64(s.cfg.MaxAttempts-1), retry.BackoffFunc(func() (time.Duration, bool) {
		return 0, false
	}))

	var url *entities.URL
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		code, err := s.generator.Generate(s.cfg.CodeLength)
		if err != nil {
			return fmt.Errorf("failed to generate short code: %w", err)
		}

		created, err := s.insert(ctx, code, target, in)
		if errors.Is(err, apperrors.ErrDuplicateCode) {
			s.logger.Warn("generated short code collided, retrying", zap.String("short_code", code))
			return retry.RetryableError(err)
		}
		if err != nil {
			return err
		}
		url = created
		return nil
	})
	if errors.Is(err, apperrors.ErrDuplicateCode) {
		s.logger.Error("short code space exhausted", zap.Int("attempts", s.cfg.MaxAttempts))
		return nil, fmt.Errorf("%w after %d attempts", apperrors.ErrCodeSpaceExhausted, s.cfg.MaxAttempts)
	}
	if err != nil {
		return nil, err
	}
	return url, nil
}

// insert renders the QR image for code, if wanted, and persists the record.
func (s *urlService) insert(ctx context.Context, code, target string, in CreateInput) (*entities.URL, error) {
	var qrImage *string
	if in.WantQR {
		uri, err := s.encoder.DataURI(s.shortURL(code))
		if err != nil {
			return nil, fmt.Errorf("failed to generate QR code: %w", err)
		}
		qrImage = &uri
	}

	url, err := s.repo.Create(ctx, code, target, in.OwnerID, qrImage)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicateCode) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create URL: %w", err)
	}
	return url, nil
}

// ResolveShortURL retrieves the original URL and increments the click count
func (s *urlService) ResolveShortURL(ctx context.Context, shortCode string, cc entities.ClickContext) (string, error) {
	shortCode = strings.TrimSpace(shortCode)
	if shortCode == "" {
		return "", fmt.Errorf("empty short code: %w", apperrors.ErrNotFound)
	}

	url, err := s.repo.ResolveAndIncrement(ctx, shortCode)
	if err != nil {
		return "", fmt.Errorf("failed to resolve short code: %w", err)
	}
	if url == nil {
		return "", fmt.Errorf("short code %q: %w", shortCode, apperrors.ErrNotFound)
	}

	metrics.Redirect()
	if cc.At.IsZero() {
		cc.At = time.Now()
	}
	s.dispatcher.Dispatch(clicks.Job{
		URLID:     url.ID,
		ShortCode: url.ShortCode,
		Context:   cc,
	})

	return url.OriginalURL, nil
}

// GetUserURLs retrieves all URLs for a specific user
func (s *urlService) GetUserURLs(ctx context.Context, userID string) ([]*models.URLStatsResponse, error) {
	urls, err := s.repo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]*models.URLStatsResponse, len(urls))
	for i, url := range urls {
		responses[i] = toStatsResponse(url, s.cfg.BaseURL)
	}
	return responses, nil
}

func (s *urlService) shortURL(code string) string {
	return shortURL(s.cfg.BaseURL, code)
}

func shortURL(baseURL, code string) string {
	return fmt.Sprintf("%s/%s", strings.TrimRight(baseURL, "/"), code)
}

func toStatsResponse(url *entities.URL, baseURL string) *models.URLStatsResponse {
	return &models.URLStatsResponse{
		ID:          url.ID,
		ShortCode:   url.ShortCode,
		OriginalURL: url.OriginalURL,
		ShortURL:    shortURL(baseURL, url.ShortCode),
		ClickCount:  url.ClickCount,
		QRCodeImage: url.QRCode,
		CreatedAt:   url.CreatedAt,
	}
}
