package notifications

import (
	"encoding/json"
	"hash/fnv"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/prafullkumar/chronos/internal/models"
	"github.com/prafullkumar/chronos/pkg/logger"
	"github.com/prafullkumar/chronos/pkg/metrics"
)

const (
	// EventNotification is pushed when a reminder fires.
	EventNotification = "notification"
	// EventRemindersChanged is pushed after any reminder mutation.
	EventRemindersChanged = "reminders.changed"

	bodyPrefix   = "📝 "
	fallbackBody = "🔔 Reminder notification"
)

// DedupeKey derives the stable notification key for a reminder id. Re-firing
// the same reminder replaces the previous notification.
func DedupeKey(reminderID string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(reminderID))
	return h.Sum32()
}

// Dispatcher renders fired alarms into user-visible notifications: one row in
// the notification store, replaced on re-fire, plus a push to any connected
// subscribers. This is a fire-and-forget presentation path; failures are
// logged, never propagated.
type Dispatcher struct {
	db  *gorm.DB
	hub *Hub
	log *zap.Logger
}

// NewDispatcher constructs a Dispatcher writing to db and pushing through hub.
func NewDispatcher(db *gorm.DB, hub *Hub) *Dispatcher {
	return &Dispatcher{
		db:  db,
		hub: hub,
		log: logger.WithModule("notifications"),
	}
}

// Fire produces the notification for a fired reminder.
func (d *Dispatcher) Fire(userID, reminderID, title, description, emoji string) {
	if d == nil || reminderID == "" {
		return
	}

	renderedTitle := strings.TrimSpace(emoji + " " + title)
	body := fallbackBody
	if strings.TrimSpace(description) != "" {
		body = bodyPrefix + description
	}

	notification := models.Notification{
		UserID:     userID,
		ReminderID: reminderID,
		DedupeKey:  DedupeKey(reminderID),
		Title:      renderedTitle,
		Body:       body,
	}

	if payload, err := json.Marshal(map[string]string{
		"reminderId": reminderID,
		"emoji":      emoji,
	}); err == nil {
		notification.Payload = payload
	}

	if d.db != nil {
		err := d.db.
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "dedupe_key"}},
				DoUpdates: clause.AssignmentColumns([]string{"title", "body", "payload", "updated_at"}),
			}).Create(&notification).Error
		if err != nil {
			d.log.Error("failed to persist notification",
				zap.String("reminder_id", reminderID), zap.Error(err))
		}
	}

	if d.hub != nil {
		delivered := d.hub.Publish(userID, Event{
			Event:        EventNotification,
			Notification: &notification,
			ReminderID:   reminderID,
		})
		if delivered > 0 {
			metrics.NotificationsDelivered.Inc()
		}
	}

	d.log.Info("notification fired",
		zap.String("reminder_id", reminderID),
		zap.String("user_id", userID))
}
