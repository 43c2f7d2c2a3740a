// Package clicks turns raw redirect requests into stored click records. The Recorder
// does the enrichment and the write; the Dispatcher runs it off the request path.
package clicks

import (
	"context"
	"fmt"
	"net/netip"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"linkly/internal/entities"
	"linkly/internal/geo"
	"linkly/internal/repository"
)

// Widths of the url_clicks text columns.
const (
	maxCountryLen = 64
	maxCityLen    = 128
	maxBrowserLen = 64
	maxOSLen      = 64
)

type Recorder struct {
	clicks  repository.ClickRepository
	locator geo.Locator
	logger  *zap.Logger
	now     func() time.Time
}

// NewRecorder creates a Recorder. A nil locator disables geolocation.
func NewRecorder(clicks repository.ClickRepository, locator geo.Locator, logger *zap.Logger) *Recorder {
	if locator == nil {
		locator = geo.NopLocator{}
	}
	return &Recorder{
		clicks:  clicks,
		locator: locator,
		logger:  logger,
		now:     time.Now,
	}
}

// Record enriches cc and stores it as a click on urlID.
func (r *Recorder) Record(ctx context.Context, urlID string, cc entities.ClickContext) (*entities.Click, error) {
	ip := NormalizeIP(cc.IP)
	client := ParseUserAgent(cc.UserAgent)
	country, city := r.locate(ctx, ip)

	clickedAt := cc.At
	if clickedAt.IsZero() {
		clickedAt = r.now()
	}

	click := &entities.Click{
		ID:        uuid.NewString(),
		URLID:     urlID,
		IP:        ip,
		UserAgent: cc.UserAgent,
		Referrer:  cc.Referrer,
		Country:   clip(country, maxCountryLen),
		City:      clip(city, maxCityLen),
		Device:    client.Device,
		Browser:   clip(client.Browser, maxBrowserLen),
		OS:        clip(client.OS, maxOSLen),
		ClickedAt: clickedAt.UTC(),
	}

	if err := r.clicks.Create(ctx, click); err != nil {
		return nil, fmt.Errorf("failed to store click for url %s: %w", urlID, err)
	}
	return click, nil
}

func (r *Recorder) locate(ctx context.Context, ip string) (country, city string) {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return entities.Unknown, entities.Unknown
	}
	if isNonPublic(addr) {
		return entities.PrivateCountry, entities.PrivateCity
	}

	loc, err := r.locator.Lookup(ctx, addr)
	if err != nil {
		r.logger.Warn("geo lookup failed", zap.String("ip", ip), zap.Error(err))
		return entities.Unknown, entities.Unknown
	}
	if loc == nil {
		return entities.Unknown, entities.Unknown
	}
	return orUnknown(loc.Country), orUnknown(loc.City)
}

// clip shortens s to at most n runes.
func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
