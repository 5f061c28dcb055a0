package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/prafullkumar/chronos/internal/cache"
	"github.com/prafullkumar/chronos/internal/database/testutil"
	"github.com/prafullkumar/chronos/internal/grouping"
	"github.com/prafullkumar/chronos/internal/models"
	"github.com/prafullkumar/chronos/internal/store"
)

func newHomeFixture(t *testing.T, now time.Time) (*HomeService, *store.Documents, *cache.Memory) {
	t.Helper()

	db := testutil.MustOpenTestDB(t)
	docs, err := store.NewDocuments(db)
	require.NoError(t, err)

	memory := cache.NewMemory()
	service, err := NewHomeService(docs, memory, WithHomeNow(func() time.Time { return now }))
	require.NoError(t, err)

	return service, docs, memory
}

func seedReminder(t *testing.T, docs *store.Documents, userID, title string, fireTime time.Time) {
	t.Helper()
	require.NoError(t, docs.CreateReminder(context.Background(), &models.Reminder{
		UserID:   userID,
		Title:    title,
		FireTime: fireTime,
	}))
}

func TestUpcomingAndPastSplitAtStartOfDay(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	service, docs, _ := newHomeFixture(t, now)
	ctx := context.Background()

	seedReminder(t, docs, "uid-1", "yesterday", now.Add(-24*time.Hour))
	seedReminder(t, docs, "uid-1", "this morning", now.Add(-3*time.Hour))
	seedReminder(t, docs, "uid-1", "tonight", now.Add(8*time.Hour))
	seedReminder(t, docs, "uid-1", "next week", now.Add(7*24*time.Hour))

	upcoming, err := service.Upcoming(ctx, "uid-1")
	require.NoError(t, err)
	require.Len(t, upcoming, 3)
	require.Equal(t, "this morning", upcoming[0].Title)
	require.Equal(t, "next week", upcoming[2].Title)

	past, err := service.Past(ctx, "uid-1")
	require.NoError(t, err)
	require.Len(t, past, 1)
	require.Equal(t, "yesterday", past[0].Title)
}

func TestUpcomingServesFromCacheUntilInvalidated(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	service, docs, _ := newHomeFixture(t, now)
	ctx := context.Background()

	seedReminder(t, docs, "uid-1", "first", now.Add(time.Hour))

	upcoming, err := service.Upcoming(ctx, "uid-1")
	require.NoError(t, err)
	require.Len(t, upcoming, 1)

	// A write behind the cache's back stays invisible until invalidation.
	seedReminder(t, docs, "uid-1", "second", now.Add(2*time.Hour))

	cached, err := service.Upcoming(ctx, "uid-1")
	require.NoError(t, err)
	require.Len(t, cached, 1)

	service.InvalidateCache("uid-1")

	fresh, err := service.Upcoming(ctx, "uid-1")
	require.NoError(t, err)
	require.Len(t, fresh, 2)
}

func TestPastOrdersMostRecentFirst(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	service, docs, _ := newHomeFixture(t, now)
	ctx := context.Background()

	seedReminder(t, docs, "uid-1", "oldest", now.Add(-72*time.Hour))
	seedReminder(t, docs, "uid-1", "newest", now.Add(-24*time.Hour))

	past, err := service.Past(ctx, "uid-1")
	require.NoError(t, err)
	require.Len(t, past, 2)
	require.Equal(t, "newest", past[0].Title)
	require.Equal(t, "oldest", past[1].Title)
}

func TestGroupedUpcomingBuildsSections(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	service, docs, _ := newHomeFixture(t, now)
	ctx := context.Background()

	seedReminder(t, docs, "uid-1", "this morning", now.Add(-3*time.Hour))
	seedReminder(t, docs, "uid-1", "tonight", now.Add(8*time.Hour))
	seedReminder(t, docs, "uid-1", "next week", now.Add(7*24*time.Hour))

	sections, err := service.GroupedUpcoming(ctx, "uid-1")
	require.NoError(t, err)
	require.Len(t, sections, 3)
	require.Equal(t, grouping.BucketToday, sections[0].Bucket)
	require.Equal(t, grouping.BucketOverdueToday, sections[1].Bucket)
	require.Equal(t, grouping.BucketUpcoming, sections[2].Bucket)
}

func TestUpcomingIsScopedPerUser(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	service, docs, _ := newHomeFixture(t, now)
	ctx := context.Background()

	seedReminder(t, docs, "uid-1", "mine", now.Add(time.Hour))
	seedReminder(t, docs, "uid-2", "theirs", now.Add(time.Hour))

	upcoming, err := service.Upcoming(ctx, "uid-1")
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	require.Equal(t, "mine", upcoming[0].Title)
}
