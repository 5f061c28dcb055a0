package notifications

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/prafullkumar/chronos/internal/database/testutil"
	"github.com/prafullkumar/chronos/internal/models"
)

func TestFireComposesTitleAndBody(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	hub := NewHub()
	dispatcher := NewDispatcher(db, hub)

	sub := hub.Subscribe("uid-1")
	defer sub.Close()

	dispatcher.Fire("uid-1", "rem-1", "Pay rent", "before noon", "💸")

	var stored models.Notification
	require.NoError(t, db.Take(&stored, "reminder_id = ?", "rem-1").Error)
	require.Equal(t, "💸 Pay rent", stored.Title)
	require.Equal(t, "📝 before noon", stored.Body)
	require.Equal(t, DedupeKey("rem-1"), stored.DedupeKey)

	event := <-sub.C
	require.Equal(t, EventNotification, event.Event)
	require.Equal(t, "rem-1", event.ReminderID)
}

func TestFireWithoutDescriptionUsesPlaceholder(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	dispatcher := NewDispatcher(db, NewHub())

	dispatcher.Fire("uid-1", "rem-1", "Stretch", "  ", "🧘")

	var stored models.Notification
	require.NoError(t, db.Take(&stored, "reminder_id = ?", "rem-1").Error)
	require.Equal(t, "🔔 Reminder notification", stored.Body)
}

func TestReFiringReplacesInsteadOfDuplicating(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	dispatcher := NewDispatcher(db, NewHub())

	dispatcher.Fire("uid-1", "rem-1", "Old title", "old", "⏰")
	dispatcher.Fire("uid-1", "rem-1", "New title", "new", "⏰")

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Where("reminder_id = ?", "rem-1").Count(&count).Error)
	require.EqualValues(t, 1, count)

	var stored models.Notification
	require.NoError(t, db.Take(&stored, "reminder_id = ?", "rem-1").Error)
	require.Equal(t, "⏰ New title", stored.Title)
}

func TestDedupeKeyIsStable(t *testing.T) {
	require.Equal(t, DedupeKey("rem-1"), DedupeKey("rem-1"))
	require.NotEqual(t, DedupeKey("rem-1"), DedupeKey("rem-2"))
}
