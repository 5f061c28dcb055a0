package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/prafullkumar/chronos/internal/cache"
	"github.com/prafullkumar/chronos/internal/database/testutil"
	"github.com/prafullkumar/chronos/internal/models"
	"github.com/prafullkumar/chronos/internal/scheduler"
	"github.com/prafullkumar/chronos/internal/services"
	"github.com/prafullkumar/chronos/internal/store"
)

type noopDispatcher struct{}

func (noopDispatcher) Fire(userID, reminderID, title, description, emoji string) {}

func TestRunOnceSweepsEveryUser(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	docs, err := store.NewDocuments(db)
	require.NoError(t, err)

	alarms := scheduler.NewAlarmScheduler(noopDispatcher{})
	t.Cleanup(alarms.Stop)

	reminders, err := services.NewReminderService(docs, nil, alarms, cache.NewMemory(), nil)
	require.NoError(t, err)

	ctx := context.Background()
	for _, uid := range []string{"uid-1", "uid-2"} {
		require.NoError(t, docs.PutUser(ctx, &models.User{ID: uid}))
		require.NoError(t, docs.CreateReminder(ctx, &models.Reminder{
			UserID:   uid,
			Title:    "elapsed",
			FireTime: time.Now().Add(-24 * time.Hour),
		}))
		require.NoError(t, docs.CreateReminder(ctx, &models.Reminder{
			UserID:   uid,
			Title:    "future",
			FireTime: time.Now().Add(24 * time.Hour),
		}))
	}

	sweeper, err := NewSweeper(docs, reminders)
	require.NoError(t, err)

	require.NoError(t, sweeper.RunOnce(ctx))

	for _, uid := range []string{"uid-1", "uid-2"} {
		remaining, err := docs.ListReminders(ctx, uid, store.ReminderQuery{})
		require.NoError(t, err)
		require.Len(t, remaining, 1)
		require.Equal(t, "future", remaining[0].Title)
	}
}

func TestNewSweeperRequiresDependencies(t *testing.T) {
	_, err := NewSweeper(nil, nil)
	require.Error(t, err)
}
