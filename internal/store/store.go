package store

import (
	"context"
	"errors"
	"time"

	"github.com/prafullkumar/chronos/internal/models"
)

// ErrNotFound indicates the requested document does not exist.
var ErrNotFound = errors.New("store: document not found")

// ReminderQuery narrows a reminder listing. Nil bounds are open.
type ReminderQuery struct {
	// Since keeps reminders with FireTime >= Since.
	Since *time.Time
	// Before keeps reminders with FireTime < Before.
	Before *time.Time
	// Descending orders by fire time descending instead of ascending.
	Descending bool
}

// DocumentStore abstracts the backend document database holding per-user
// reminder and user documents. The reminder lifecycle logic depends only on
// this interface so it can be exercised against in-memory fakes.
type DocumentStore interface {
	// CreateReminder persists a new reminder, assigning an id when absent.
	CreateReminder(ctx context.Context, reminder *models.Reminder) error
	// PutReminder overwrites the full document at the reminder's id. A write
	// to an unknown id creates it (upsert semantics).
	PutReminder(ctx context.Context, reminder *models.Reminder) error
	GetReminder(ctx context.Context, userID, id string) (*models.Reminder, error)
	DeleteReminder(ctx context.Context, userID, id string) error
	ListReminders(ctx context.Context, userID string, query ReminderQuery) ([]models.Reminder, error)

	GetUser(ctx context.Context, id string) (*models.User, error)
	// PutUser creates the user document or, when it already exists, bumps
	// only the last-login timestamp.
	PutUser(ctx context.Context, user *models.User) error
	AdjustReminderCount(ctx context.Context, userID string, delta int) error
	ListUserIDs(ctx context.Context) ([]string, error)
}

// BlobStore abstracts object storage for reminder images.
type BlobStore interface {
	// Put stores data at path, overwriting any existing object, and returns
	// a retrievable URL.
	Put(ctx context.Context, path string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, path string) error
}
