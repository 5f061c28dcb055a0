package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/prafullkumar/chronos/internal/models"
)

// Documents implements DocumentStore on the primary SQL database.
type Documents struct {
	db *gorm.DB
}

// NewDocuments constructs a database-backed DocumentStore.
func NewDocuments(db *gorm.DB) (*Documents, error) {
	if db == nil {
		return nil, errors.New("store: db is required")
	}
	return &Documents{db: db}, nil
}

func ensuredContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

// CreateReminder persists a new reminder document. The id is assigned by the
// model hook when empty.
func (d *Documents) CreateReminder(ctx context.Context, reminder *models.Reminder) error {
	if reminder == nil {
		return errors.New("store: reminder is required")
	}
	return d.db.WithContext(ensuredContext(ctx)).Create(reminder).Error
}

// PutReminder overwrites the full document at the reminder's id, creating it
// when absent. No existence check is performed.
func (d *Documents) PutReminder(ctx context.Context, reminder *models.Reminder) error {
	if reminder == nil || reminder.ID == "" {
		return errors.New("store: reminder id is required")
	}
	return d.db.WithContext(ensuredContext(ctx)).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(reminder).Error
}

// GetReminder fetches a single reminder document scoped to the user.
func (d *Documents) GetReminder(ctx context.Context, userID, id string) (*models.Reminder, error) {
	var reminder models.Reminder
	err := d.db.WithContext(ensuredContext(ctx)).
		Take(&reminder, "id = ? AND user_id = ?", id, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &reminder, nil
}

// DeleteReminder removes the document. Deleting an unknown id is a no-op.
func (d *Documents) DeleteReminder(ctx context.Context, userID, id string) error {
	return d.db.WithContext(ensuredContext(ctx)).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Reminder{}).Error
}

// ListReminders returns the user's reminders within the query bounds, ordered
// by fire time.
func (d *Documents) ListReminders(ctx context.Context, userID string, query ReminderQuery) ([]models.Reminder, error) {
	q := d.db.WithContext(ensuredContext(ctx)).
		Model(&models.Reminder{}).
		Where("user_id = ?", userID)

	if query.Since != nil {
		q = q.Where("date_time >= ?", *query.Since)
	}
	if query.Before != nil {
		q = q.Where("date_time < ?", *query.Before)
	}

	order := "date_time ASC"
	if query.Descending {
		order = "date_time DESC"
	}

	var reminders []models.Reminder
	if err := q.Order(order).Find(&reminders).Error; err != nil {
		return nil, err
	}
	return reminders, nil
}

// GetUser fetches a user document by id.
func (d *Documents) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := d.db.WithContext(ensuredContext(ctx)).Take(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// PutUser creates the user document on first sign-in. An existing document
// only has its last-login timestamp bumped; profile fields are left as the
// first sign-in recorded them.
func (d *Documents) PutUser(ctx context.Context, user *models.User) error {
	if user == nil || user.ID == "" {
		return errors.New("store: user id is required")
	}
	return d.db.WithContext(ensuredContext(ctx)).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"last_login", "updated_at"}),
		}).Create(user).Error
}

// AdjustReminderCount moves the denormalized reminder counter by delta.
// Creates and deletes are paired with matching adjustments, so the counter
// only drifts if a sweep races a concurrent create.
func (d *Documents) AdjustReminderCount(ctx context.Context, userID string, delta int) error {
	if delta == 0 {
		return nil
	}
	return d.db.WithContext(ensuredContext(ctx)).
		Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("number_of_reminders",
			gorm.Expr("number_of_reminders + ?", delta)).Error
}

// ListUserIDs enumerates every known user, used by maintenance sweeps.
func (d *Documents) ListUserIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := d.db.WithContext(ensuredContext(ctx)).
		Model(&models.User{}).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

var _ DocumentStore = (*Documents)(nil)
