package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/prafullkumar/chronos/internal/cache"
	"github.com/prafullkumar/chronos/internal/grouping"
	"github.com/prafullkumar/chronos/internal/models"
	"github.com/prafullkumar/chronos/internal/store"
	"github.com/prafullkumar/chronos/pkg/logger"
)

// HomeService serves the read side of the home screen: the upcoming and past
// reminder collections, cached per user with query-specific TTLs, plus the
// grouped presentation built on top of the upcoming list.
type HomeService struct {
	docs  store.DocumentStore
	cache cache.Store
	log   *zap.Logger
	now   func() time.Time
}

// HomeOption customises the HomeService.
type HomeOption func(*HomeService)

// WithHomeNow overrides the clock, primarily for tests.
func WithHomeNow(now func() time.Time) HomeOption {
	return func(s *HomeService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewHomeService wires the home screen read path.
func NewHomeService(docs store.DocumentStore, cacheStore cache.Store, opts ...HomeOption) (*HomeService, error) {
	if docs == nil {
		return nil, errors.New("home service: document store is required")
	}
	if cacheStore == nil {
		return nil, errors.New("home service: cache store is required")
	}

	s := &HomeService{
		docs:  docs,
		cache: cacheStore,
		log:   logger.WithModule("home"),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Upcoming returns the user's reminders from the start of today onward,
// soonest first. Results are cached for five minutes.
func (s *HomeService) Upcoming(ctx context.Context, userID string) ([]models.Reminder, error) {
	key := upcomingCacheKey(userID)
	if cached, ok := cache.GetTyped[[]models.Reminder](s.cache, key); ok {
		return cached, nil
	}

	since := startOfDay(s.now())
	reminders, err := s.docs.ListReminders(ctx, userID, store.ReminderQuery{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("list upcoming reminders: %w", err)
	}

	s.cache.Put(key, reminders, upcomingCacheTTL)
	s.log.Debug("upcoming reminders loaded from store",
		zap.String("user_id", userID), zap.Int("count", len(reminders)))
	return reminders, nil
}

// Past returns the user's reminders before the start of today, most recent
// first. Results are cached for fifteen minutes.
func (s *HomeService) Past(ctx context.Context, userID string) ([]models.Reminder, error) {
	key := pastCacheKey(userID)
	if cached, ok := cache.GetTyped[[]models.Reminder](s.cache, key); ok {
		return cached, nil
	}

	before := startOfDay(s.now())
	reminders, err := s.docs.ListReminders(ctx, userID, store.ReminderQuery{Before: &before, Descending: true})
	if err != nil {
		return nil, fmt.Errorf("list past reminders: %w", err)
	}

	s.cache.Put(key, reminders, pastCacheTTL)
	s.log.Debug("past reminders loaded from store",
		zap.String("user_id", userID), zap.Int("count", len(reminders)))
	return reminders, nil
}

// GroupedUpcoming buckets the upcoming collection into the home screen
// sections.
func (s *HomeService) GroupedUpcoming(ctx context.Context, userID string) ([]grouping.Section, error) {
	reminders, err := s.Upcoming(ctx, userID)
	if err != nil {
		return nil, err
	}
	return grouping.Group(reminders, s.now()), nil
}

// InvalidateCache drops both warm collections for the user, forcing the next
// read to hit the document store.
func (s *HomeService) InvalidateCache(userID string) {
	s.cache.Clear(upcomingCacheKey(userID), pastCacheKey(userID))
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
