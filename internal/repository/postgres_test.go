package repository

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"linkly/internal/apperrors"
	"linkly/internal/database"
	"linkly/internal/entities"
)

func setupPostgres(t *testing.T) *sql.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("linkly"),
		postgres.WithUsername("linkly"),
		postgres.WithPassword("linkly"),
		postgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = testcontainers.TerminateContainer(container)
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := database.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.RunMigrations(db))
	return db
}

func TestPostgres_URLRepository(t *testing.T) {
	db := setupPostgres(t)
	ctx := context.Background()
	users := NewUserRepository(db)
	urls := NewURLRepository(db)

	owner, err := users.Create(ctx, "owner@example.com", "hash", nil)
	require.NoError(t, err)

	qr := "data:image/png;base64,AAAA"
	created, err := urls.Create(ctx, "abc1234", "https://example.com/very/long/path", &owner.ID, &qr)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, int64(0), created.ClickCount)
	require.NotNil(t, created.QRCode)

	_, err = urls.Create(ctx, "abc1234", "https://other.example", nil, nil)
	require.ErrorIs(t, err, apperrors.ErrDuplicateCode)

	found, err := urls.FindByShortCode(ctx, "abc1234")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/very/long/path", found.OriginalURL)

	missing, err := urls.FindByShortCode(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, missing)

	const n = 40
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := urls.ResolveAndIncrement(ctx, "abc1234")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	found, err = urls.FindByShortCode(ctx, "abc1234")
	require.NoError(t, err)
	assert.Equal(t, int64(n), found.ClickCount)

	list, err := urls.ListByOwner(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	byID, err := urls.FindByID(ctx, created.ID, owner.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
}

func TestPostgres_UserRepository(t *testing.T) {
	db := setupPostgres(t)
	ctx := context.Background()
	users := NewUserRepository(db)

	name := "Jane"
	u, err := users.Create(ctx, "jane@example.com", "hash", &name)
	require.NoError(t, err)

	_, err = users.Create(ctx, "jane@example.com", "hash", nil)
	assert.ErrorIs(t, err, ErrEmailTaken)

	found, err := users.FindByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	_, err = users.FindByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPostgres_ClickRepository(t *testing.T) {
	db := setupPostgres(t)
	ctx := context.Background()
	urls := NewURLRepository(db)
	clicks := NewClickRepository(db)

	u, err := urls.Create(ctx, "clicky1", "https://example.com", nil, nil)
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Second)
	add := func(country, device, browser string, at time.Time) {
		require.NoError(t, clicks.Create(ctx, &entities.Click{
			ID: uuid.NewString(), URLID: u.ID, IP: "203.0.113.1", Country: country, City: "Unknown",
			Device: device, Browser: browser, OS: "Linux", ClickedAt: at,
		}))
	}
	add("US", entities.DeviceDesktop, "Chrome", now.Add(-5*time.Minute))
	add("US", entities.DeviceMobile, "Safari", now.Add(-10*time.Minute))
	add("DE", entities.DeviceDesktop, "Chrome", now.Add(-72*time.Hour))

	ids := []string{u.ID}

	daily, err := clicks.DailyClicks(ctx, ids, TimeRange{From: now.Add(-time.Hour)})
	require.NoError(t, err)
	require.NotEmpty(t, daily)
	var total int64
	for _, d := range daily {
		total += d.Clicks
	}
	assert.Equal(t, int64(2), total)

	countries, err := clicks.CountBy(ctx, DimensionCountry, ids, TimeRange{}, 1)
	require.NoError(t, err)
	require.Len(t, countries, 1)
	assert.Equal(t, "US", countries[0].Label)
	assert.Equal(t, int64(2), countries[0].Clicks)

	browsers, err := clicks.CountBy(ctx, DimensionBrowser, ids, TimeRange{}, 0)
	require.NoError(t, err)
	assert.Len(t, browsers, 2)

	geo, err := clicks.GeoDistribution(ctx, u.ID, 20)
	require.NoError(t, err)
	assert.Len(t, geo, 2)

	recent, err := clicks.RecentClicks(ctx, ids, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "clicky1", recent[0].ShortCode)

	timeline, err := clicks.Timeline(ctx, u.ID, 24, now)
	require.NoError(t, err)
	var inWindow int64
	for _, b := range timeline {
		inWindow += b.Count
	}
	assert.Equal(t, int64(2), inWindow)
}
