package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/prafullkumar/chronos/internal/cache"
	"github.com/prafullkumar/chronos/internal/models"
	"github.com/prafullkumar/chronos/internal/notifications"
	"github.com/prafullkumar/chronos/internal/scheduler"
	"github.com/prafullkumar/chronos/internal/store"
	"github.com/prafullkumar/chronos/pkg/logger"
)

// ReminderService owns the reminder write path: each mutation persists the
// document, keeps the alarm registry in step, patches the warm cache in place
// and notifies connected clients. Image blobs ride along best-effort; a
// reminder is never lost because its picture could not be stored or removed.
type ReminderService struct {
	docs   store.DocumentStore
	blobs  store.BlobStore
	alarms *scheduler.AlarmScheduler
	cache  cache.Store
	hub    *notifications.Hub
	log    *zap.Logger
	now    func() time.Time
}

// ReminderOption customises the ReminderService.
type ReminderOption func(*ReminderService)

// WithReminderNow overrides the clock, primarily for tests.
func WithReminderNow(now func() time.Time) ReminderOption {
	return func(s *ReminderService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewReminderService wires the reminder write path. The hub may be nil when
// real-time push is disabled.
func NewReminderService(
	docs store.DocumentStore,
	blobs store.BlobStore,
	alarms *scheduler.AlarmScheduler,
	cacheStore cache.Store,
	hub *notifications.Hub,
	opts ...ReminderOption,
) (*ReminderService, error) {
	if docs == nil {
		return nil, errors.New("reminder service: document store is required")
	}
	if alarms == nil {
		return nil, errors.New("reminder service: alarm scheduler is required")
	}
	if cacheStore == nil {
		return nil, errors.New("reminder service: cache store is required")
	}

	s := &ReminderService{
		docs:   docs,
		blobs:  blobs,
		alarms: alarms,
		cache:  cacheStore,
		hub:    hub,
		log:    logger.WithModule("reminders"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// CreateReminderInput carries the client-supplied fields of a new reminder.
// Image holds the raw uploaded bytes when the client attached a picture.
type CreateReminderInput struct {
	Title       string
	Description string
	Emoji       string
	Type        string
	FireTime    time.Time
	Image       []byte
}

// Create persists a new reminder, registers its alarm and appends it to the
// warm upcoming cache. The image, when present, is compressed and uploaded
// before the document is written so the stored document already carries its
// URL.
func (s *ReminderService) Create(ctx context.Context, userID string, input CreateReminderInput) (*models.Reminder, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTitleRequired
	}
	if input.FireTime.IsZero() {
		return nil, ErrFireTimeRequired
	}

	reminder := &models.Reminder{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       input.Title,
		Description: input.Description,
		Emoji:       input.Emoji,
		Type:        input.Type,
		FireTime:    input.FireTime,
	}

	if len(input.Image) > 0 {
		url, err := s.UploadImage(ctx, userID, reminder.ID, input.Image)
		if err != nil {
			return nil, fmt.Errorf("upload reminder image: %w", err)
		}
		reminder.ImageURL = &url
	}

	if err := s.docs.CreateReminder(ctx, reminder); err != nil {
		return nil, fmt.Errorf("create reminder: %w", err)
	}

	if err := s.docs.AdjustReminderCount(ctx, userID, 1); err != nil {
		s.log.Warn("failed to bump reminder count",
			zap.String("user_id", userID), zap.Error(err))
	}

	s.alarms.ScheduleReminder(reminder)
	s.appendToCachedUpcoming(userID, *reminder)
	s.publishChanged(userID)

	s.log.Info("reminder created",
		zap.String("reminder_id", reminder.ID),
		zap.String("user_id", userID),
		zap.Time("fire_time", reminder.FireTime))
	return reminder, nil
}

// UpdateReminderInput carries the full replacement document for an existing
// reminder. A non-nil Image replaces the stored picture at the same path.
type UpdateReminderInput struct {
	Title       string
	Description string
	Emoji       string
	Type        string
	FireTime    time.Time
	Image       []byte
}

// Update overwrites the reminder document, re-arms its alarm and patches any
// cached copy in place. An update to an unknown id creates the document.
func (s *ReminderService) Update(ctx context.Context, userID, id string, input UpdateReminderInput) (*models.Reminder, error) {
	if id == "" {
		return nil, ErrReminderNotFound
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTitleRequired
	}
	if input.FireTime.IsZero() {
		return nil, ErrFireTimeRequired
	}

	reminder := &models.Reminder{
		ID:          id,
		UserID:      userID,
		Title:       input.Title,
		Description: input.Description,
		Emoji:       input.Emoji,
		Type:        input.Type,
		FireTime:    input.FireTime,
	}

	if len(input.Image) > 0 {
		url, err := s.UploadImage(ctx, userID, id, input.Image)
		if err != nil {
			return nil, fmt.Errorf("upload reminder image: %w", err)
		}
		reminder.ImageURL = &url
	} else if existing, err := s.docs.GetReminder(ctx, userID, id); err == nil {
		reminder.ImageURL = existing.ImageURL
	}

	if err := s.docs.PutReminder(ctx, reminder); err != nil {
		return nil, fmt.Errorf("update reminder: %w", err)
	}

	s.alarms.ScheduleReminder(reminder)
	s.replaceInCachedUpcoming(userID, *reminder)
	s.publishChanged(userID)

	s.log.Info("reminder updated",
		zap.String("reminder_id", id), zap.String("user_id", userID))
	return reminder, nil
}

// Delete cancels the alarm, removes the document and its cached copy, and
// deletes the stored image best-effort. A missing image is not an error.
func (s *ReminderService) Delete(ctx context.Context, userID, id string) error {
	if id == "" {
		return ErrReminderNotFound
	}

	s.alarms.Cancel(id)

	if err := s.docs.DeleteReminder(ctx, userID, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrReminderNotFound
		}
		return fmt.Errorf("delete reminder: %w", err)
	}

	s.deleteImage(ctx, userID, id)

	if err := s.docs.AdjustReminderCount(ctx, userID, -1); err != nil {
		s.log.Warn("failed to decrement reminder count",
			zap.String("user_id", userID), zap.Error(err))
	}

	s.removeFromCachedUpcoming(userID, id)
	s.publishChanged(userID)

	s.log.Info("reminder deleted",
		zap.String("reminder_id", id), zap.String("user_id", userID))
	return nil
}

// DeleteAll removes every reminder of the user: each alarm is cancelled, each
// document deleted and each image removed best-effort. The sweep is not
// transactional; it keeps going past individual failures and reports document
// deletion errors aggregated at the end. Image deletion failures never fail
// the sweep.
func (s *ReminderService) DeleteAll(ctx context.Context, userID string) error {
	reminders, err := s.docs.ListReminders(ctx, userID, store.ReminderQuery{})
	if err != nil {
		return fmt.Errorf("list reminders for delete-all: %w", err)
	}

	var errs error
	deleted := 0
	for i := range reminders {
		reminder := &reminders[i]
		s.alarms.Cancel(reminder.ID)
		s.deleteImage(ctx, userID, reminder.ID)

		if err := s.docs.DeleteReminder(ctx, userID, reminder.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
			errs = multierr.Append(errs, fmt.Errorf("delete reminder %s: %w", reminder.ID, err))
			continue
		}
		deleted++
	}

	if deleted > 0 {
		if err := s.docs.AdjustReminderCount(ctx, userID, -deleted); err != nil {
			s.log.Warn("failed to adjust reminder count after sweep",
				zap.String("user_id", userID), zap.Error(err))
		}
	}

	s.cache.Clear(upcomingCacheKey(userID), pastCacheKey(userID))
	s.publishChanged(userID)

	s.log.Info("all reminders deleted",
		zap.String("user_id", userID), zap.Int("count", deleted))
	return errs
}

// DeleteOlderThanNow removes every reminder whose fire time has already
// elapsed, then invalidates the warm caches so the next read repopulates.
func (s *ReminderService) DeleteOlderThanNow(ctx context.Context, userID string) (int, error) {
	now := s.now()
	reminders, err := s.docs.ListReminders(ctx, userID, store.ReminderQuery{Before: &now})
	if err != nil {
		return 0, fmt.Errorf("list past reminders: %w", err)
	}

	var errs error
	deleted := 0
	for i := range reminders {
		reminder := &reminders[i]
		s.alarms.Cancel(reminder.ID)
		s.deleteImage(ctx, userID, reminder.ID)

		if err := s.docs.DeleteReminder(ctx, userID, reminder.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
			errs = multierr.Append(errs, fmt.Errorf("delete reminder %s: %w", reminder.ID, err))
			continue
		}
		deleted++
	}

	if deleted > 0 {
		if err := s.docs.AdjustReminderCount(ctx, userID, -deleted); err != nil {
			s.log.Warn("failed to adjust reminder count after sweep",
				zap.String("user_id", userID), zap.Error(err))
		}
	}

	s.cache.Clear(upcomingCacheKey(userID), pastCacheKey(userID))
	s.publishChanged(userID)

	s.log.Info("past reminders deleted",
		zap.String("user_id", userID), zap.Int("count", deleted))
	return deleted, errs
}

// GetByID resolves a single reminder, serving from the warm upcoming cache
// when the item is present there and falling back to the document store.
func (s *ReminderService) GetByID(ctx context.Context, userID, id string) (*models.Reminder, error) {
	if cached, ok := cache.GetTyped[[]models.Reminder](s.cache, upcomingCacheKey(userID)); ok {
		for i := range cached {
			if cached[i].ID == id {
				reminder := cached[i]
				return &reminder, nil
			}
		}
	}

	reminder, err := s.docs.GetReminder(ctx, userID, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrReminderNotFound
		}
		return nil, fmt.Errorf("get reminder: %w", err)
	}
	return reminder, nil
}

// UploadImage compresses the raw image and stores it at the canonical per-user
// path, returning the retrievable URL. Re-uploading for the same reminder
// overwrites the previous object.
func (s *ReminderService) UploadImage(ctx context.Context, userID, reminderID string, data []byte) (string, error) {
	if s.blobs == nil {
		return "", errors.New("reminder service: blob store not configured")
	}

	compressed, err := store.CompressImage(data, store.ImageMaxSide)
	if err != nil {
		return "", fmt.Errorf("compress image: %w", err)
	}

	url, err := s.blobs.Put(ctx, store.ReminderImagePath(userID, reminderID), compressed, "image/jpeg")
	if err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}
	return url, nil
}

func (s *ReminderService) deleteImage(ctx context.Context, userID, reminderID string) {
	if s.blobs == nil {
		return
	}
	err := s.blobs.Delete(ctx, store.ReminderImagePath(userID, reminderID))
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		s.log.Warn("failed to delete reminder image",
			zap.String("reminder_id", reminderID), zap.Error(err))
	}
}

func (s *ReminderService) publishChanged(userID string) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(userID, notifications.Event{Event: notifications.EventRemindersChanged})
}

// Cache patches replace the warm upcoming collection with an updated copy
// instead of invalidating it, keeping the home screen responsive between
// refreshes. The cached slice is shared with every caller that has read it,
// so patches must never write into its backing array; each helper builds a
// fresh slice and stores that. An absent or expired cache entry is left
// alone.

func (s *ReminderService) appendToCachedUpcoming(userID string, reminder models.Reminder) {
	key := upcomingCacheKey(userID)
	cached, ok := cache.GetTyped[[]models.Reminder](s.cache, key)
	if !ok {
		return
	}
	patched := make([]models.Reminder, 0, len(cached)+1)
	patched = append(patched, cached...)
	patched = append(patched, reminder)
	s.cache.Put(key, patched, upcomingCacheTTL)
}

func (s *ReminderService) replaceInCachedUpcoming(userID string, reminder models.Reminder) {
	key := upcomingCacheKey(userID)
	cached, ok := cache.GetTyped[[]models.Reminder](s.cache, key)
	if !ok {
		return
	}
	patched := make([]models.Reminder, 0, len(cached)+1)
	patched = append(patched, cached...)
	for i := range patched {
		if patched[i].ID == reminder.ID {
			patched[i] = reminder
			s.cache.Put(key, patched, upcomingCacheTTL)
			return
		}
	}
	s.cache.Put(key, append(patched, reminder), upcomingCacheTTL)
}

func (s *ReminderService) removeFromCachedUpcoming(userID, id string) {
	key := upcomingCacheKey(userID)
	cached, ok := cache.GetTyped[[]models.Reminder](s.cache, key)
	if !ok {
		return
	}
	patched := make([]models.Reminder, 0, len(cached))
	for i := range cached {
		if cached[i].ID != id {
			patched = append(patched, cached[i])
		}
	}
	s.cache.Put(key, patched, upcomingCacheTTL)
}
