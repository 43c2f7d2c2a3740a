package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkly/internal/apperrors"
	"linkly/internal/entities"
)

func TestMemoryStore_CreateAndFind(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	owner := "owner-1"

	created, err := store.Create(ctx, "abc1234", "https://example.com", &owner, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, int64(0), created.ClickCount)

	_, err = store.Create(ctx, "abc1234", "https://other.example", nil, nil)
	require.ErrorIs(t, err, apperrors.ErrDuplicateCode)

	found, err := store.FindByShortCode(ctx, "abc1234")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", found.OriginalURL)

	missing, err := store.FindByShortCode(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	byID, err := store.FindByID(ctx, created.ID, owner)
	require.NoError(t, err)
	require.NotNil(t, byID)

	notMine, err := store.FindByID(ctx, created.ID, "someone-else")
	require.NoError(t, err)
	assert.Nil(t, notMine)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	created, err := store.Create(ctx, "abc1234", "https://example.com", nil, nil)
	require.NoError(t, err)
	created.OriginalURL = "https://mutated.example"

	found, err := store.FindByShortCode(ctx, "abc1234")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", found.OriginalURL)
}

func TestMemoryStore_ConcurrentResolve(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	_, err := store.Create(ctx, "hot", "https://example.com", nil, nil)
	require.NoError(t, err)

	const n = 200
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.ResolveAndIncrement(ctx, "hot")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	found, err := store.FindByShortCode(ctx, "hot")
	require.NoError(t, err)
	assert.Equal(t, int64(n), found.ClickCount)

	missing, err := store.ResolveAndIncrement(ctx, "cold")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemoryStore_ListByOwnerNewestFirst(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	owner := "owner-1"
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, code := range []string{"first", "second", "third"} {
		at := base.Add(time.Duration(i) * time.Minute)
		store.now = func() time.Time { return at }
		_, err := store.Create(ctx, code, "https://example.com/"+code, &owner, nil)
		require.NoError(t, err)
	}
	_, err := store.Create(ctx, "anon", "https://example.com", nil, nil)
	require.NoError(t, err)

	urls, err := store.ListByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, urls, 3)
	assert.Equal(t, "third", urls[0].ShortCode)
	assert.Equal(t, "first", urls[2].ShortCode)
}

func TestMemoryStore_Users(t *testing.T) {
	users := NewMemoryStore().UserStore()
	ctx := context.Background()

	u, err := users.Create(ctx, "jane@example.com", "hash", nil)
	require.NoError(t, err)

	_, err = users.Create(ctx, "JANE@example.com", "hash", nil)
	assert.ErrorIs(t, err, ErrEmailTaken)

	found, err := users.FindByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	_, err = users.FindByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestMemoryStore_ClickAggregations(t *testing.T) {
	store := NewMemoryStore()
	clicks := store.ClickStore()
	ctx := context.Background()

	u, err := store.Create(ctx, "abc1234", "https://example.com", nil, nil)
	require.NoError(t, err)

	now := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	add := func(country, city, device string, at time.Time) {
		require.NoError(t, clicks.Create(ctx, &entities.Click{
			ID: uuid.NewString(), URLID: u.ID, Country: country, City: city, Device: device, Browser: "Chrome", ClickedAt: at,
		}))
	}
	add("US", "Boston", entities.DeviceDesktop, now.Add(-10*time.Minute))
	add("US", "Boston", entities.DeviceMobile, now.Add(-20*time.Minute))
	add("DE", "Berlin", entities.DeviceDesktop, now.Add(-48*time.Hour))

	geo, err := clicks.GeoDistribution(ctx, u.ID, 1)
	require.NoError(t, err)
	require.Len(t, geo, 1)
	assert.Equal(t, "Boston", geo[0].City)
	assert.Equal(t, int64(2), geo[0].Clicks)

	devices, err := clicks.CountBy(ctx, DimensionDevice, []string{u.ID}, TimeRange{From: now.Add(-time.Hour)}, 0)
	require.NoError(t, err)
	assert.Len(t, devices, 2)

	_, err = clicks.CountBy(ctx, Dimension("ip"), []string{u.ID}, TimeRange{}, 0)
	assert.Error(t, err)

	timeline, err := clicks.Timeline(ctx, u.ID, 6, now)
	require.NoError(t, err)
	require.Len(t, timeline, 2)
	assert.Equal(t, now.Add(-20*time.Minute), timeline[0].Time)

	recent, err := clicks.RecentClicks(ctx, []string{u.ID}, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "abc1234", recent[0].ShortCode)
	assert.True(t, recent[0].ClickedAt.After(recent[1].ClickedAt))

	assert.Len(t, store.Clicks(u.ID), 3)
}

func TestTimelineBucket(t *testing.T) {
	assert.Equal(t, 10*time.Minute, TimelineBucket(1))
	assert.Equal(t, 30*time.Minute, TimelineBucket(12))
	assert.Equal(t, time.Hour, TimelineBucket(24))
	assert.Equal(t, 6*time.Hour, TimelineBucket(72))
	assert.Equal(t, 24*time.Hour, TimelineBucket(168))
}
