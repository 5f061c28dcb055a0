package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reminder is the persisted document for a user-scheduled reminder. The wire
// shape is {uid, title, description, dateTime, emoji, type, imageUrl} with
// dateTime carried as milliseconds since the epoch in both directions; the
// custom JSON methods below own that mapping.
type Reminder struct {
	ID     string `gorm:"primaryKey;type:uuid"`
	UserID string `gorm:"type:uuid;index:idx_reminders_user_time;not null"`

	Title       string `gorm:"type:varchar(255);not null"`
	Description string `gorm:"type:text"`
	Emoji       string `gorm:"type:varchar(16)"`
	Type        string `gorm:"type:varchar(64);default:'general'"`

	// FireTime is the absolute instant the reminder should fire.
	FireTime time.Time `gorm:"column:date_time;index:idx_reminders_user_time"`

	ImageURL *string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// reminderJSON is the client-facing document shape.
type reminderJSON struct {
	ID          string  `json:"uid"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Emoji       string  `json:"emoji"`
	Type        string  `json:"type"`
	DateTime    int64   `json:"dateTime"`
	ImageURL    *string `json:"imageUrl"`
}

// MarshalJSON emits the wire document with dateTime in epoch milliseconds.
func (r Reminder) MarshalJSON() ([]byte, error) {
	return json.Marshal(reminderJSON{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Emoji:       r.Emoji,
		Type:        r.Type,
		DateTime:    r.FireTimeMillis(),
		ImageURL:    r.ImageURL,
	})
}

// UnmarshalJSON reads the wire document, converting dateTime back from epoch
// milliseconds.
func (r *Reminder) UnmarshalJSON(data []byte) error {
	var payload reminderJSON
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}

	r.ID = payload.ID
	r.Title = payload.Title
	r.Description = payload.Description
	r.Emoji = payload.Emoji
	r.Type = payload.Type
	r.FireTime = time.UnixMilli(payload.DateTime)
	r.ImageURL = payload.ImageURL
	return nil
}

// BeforeCreate ensures a UUID is present before persisting.
func (r *Reminder) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// FireTimeMillis reports the fire time as milliseconds since the epoch, the
// unit used by API clients.
func (r *Reminder) FireTimeMillis() int64 {
	return r.FireTime.UnixMilli()
}

// Schedulable reports whether the reminder has the fields required to
// register an alarm.
func (r *Reminder) Schedulable() bool {
	return r.ID != "" && r.Title != "" && !r.FireTime.IsZero()
}
