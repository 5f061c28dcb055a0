// Package maintenance runs the periodic past-reminder sweep. Users who never
// open the app still get elapsed reminders cleared out of their collection.
package maintenance

import (
	"context"
	"errors"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/prafullkumar/chronos/internal/services"
	"github.com/prafullkumar/chronos/internal/store"
	"github.com/prafullkumar/chronos/pkg/logger"
)

const defaultSchedule = "0 3 * * *"

// Sweeper periodically removes every user's elapsed reminders.
type Sweeper struct {
	docs      store.DocumentStore
	reminders *services.ReminderService
	cron      *cron.Cron
	schedule  string
	log       *zap.Logger
}

// Option customises the Sweeper.
type Option func(*Sweeper)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(s *Sweeper) {
		if c != nil {
			s.cron = c
		}
	}
}

// WithSchedule overrides the cron specification for the sweep.
func WithSchedule(spec string) Option {
	return func(s *Sweeper) {
		if spec != "" {
			s.schedule = spec
		}
	}
}

// NewSweeper constructs a Sweeper over every known user.
func NewSweeper(docs store.DocumentStore, reminders *services.ReminderService, opts ...Option) (*Sweeper, error) {
	if docs == nil {
		return nil, errors.New("maintenance: document store is required")
	}
	if reminders == nil {
		return nil, errors.New("maintenance: reminder service is required")
	}

	s := &Sweeper{
		docs:      docs,
		reminders: reminders,
		schedule:  defaultSchedule,
		log:       logger.WithModule("maintenance"),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.cron == nil {
		s.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}
	return s, nil
}

// Start registers the sweep with the cron scheduler and launches it.
func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.RunOnce(context.Background()); err != nil {
			s.log.Warn("reminder sweep finished with errors", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (s *Sweeper) Stop() context.Context {
	if s.cron == nil {
		return context.Background()
	}
	return s.cron.Stop()
}

// RunOnce sweeps every user sequentially. One user's failure does not stop
// the others.
func (s *Sweeper) RunOnce(ctx context.Context) error {
	userIDs, err := s.docs.ListUserIDs(ctx)
	if err != nil {
		return err
	}

	var errs error
	total := 0
	for _, userID := range userIDs {
		deleted, err := s.reminders.DeleteOlderThanNow(ctx, userID)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		total += deleted
	}

	s.log.Info("reminder sweep complete",
		zap.Int("users", len(userIDs)), zap.Int("deleted", total))
	return errs
}
