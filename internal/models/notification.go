package models

import (
	"gorm.io/datatypes"
)

// Notification is the rendered, user-visible record of a fired reminder.
// DedupeKey is derived from the reminder id so re-firing the same reminder
// replaces the previous notification instead of duplicating it.
type Notification struct {
	BaseModel

	UserID     string `gorm:"type:uuid;index;not null" json:"user_id"`
	ReminderID string `gorm:"type:uuid;index" json:"reminder_id"`
	DedupeKey  uint32 `gorm:"uniqueIndex;not null" json:"-"`

	Title   string         `gorm:"type:varchar(255);not null" json:"title"`
	Body    string         `gorm:"type:text" json:"body"`
	Payload datatypes.JSON `json:"payload"`
}
