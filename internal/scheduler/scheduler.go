// Package scheduler registers one-shot, exact alarms for reminders. It is the
// in-process analogue of an OS alarm service: each schedule call arms a timer
// keyed by the reminder id, and firing hands the payload to the notification
// dispatcher.
package scheduler

import (
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/prafullkumar/chronos/internal/models"
	"github.com/prafullkumar/chronos/pkg/logger"
	"github.com/prafullkumar/chronos/pkg/metrics"
)

// GracePeriod is the forward offset applied when a requested fire time is not
// strictly in the future. Reminders whose time has just elapsed due to clock
// or processing skew still fire instead of being dropped.
const GracePeriod = 5 * time.Second

// Alarm is the payload carried from scheduling to notification.
type Alarm struct {
	ReminderID  string
	UserID      string
	Title       string
	Description string
	Emoji       string
	FireTime    time.Time
}

// Dispatcher consumes fired alarms.
type Dispatcher interface {
	Fire(userID, reminderID, title, description, emoji string)
}

// AlarmScheduler keeps one pending timer per reminder id.
type AlarmScheduler struct {
	mu         sync.Mutex
	timers     map[string]*time.Timer
	dispatcher Dispatcher
	now        func() time.Time
	grace      time.Duration
	log        *zap.Logger
}

// Option customises the AlarmScheduler.
type Option func(*AlarmScheduler)

// WithNow overrides the clock, primarily for tests.
func WithNow(now func() time.Time) Option {
	return func(s *AlarmScheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// WithGrace overrides the clamp offset for past-dated fire times.
func WithGrace(grace time.Duration) Option {
	return func(s *AlarmScheduler) {
		if grace > 0 {
			s.grace = grace
		}
	}
}

// NewAlarmScheduler constructs a scheduler that delivers fired alarms to the
// supplied dispatcher.
func NewAlarmScheduler(dispatcher Dispatcher, opts ...Option) *AlarmScheduler {
	s := &AlarmScheduler{
		timers:     make(map[string]*time.Timer),
		dispatcher: dispatcher,
		now:        time.Now,
		grace:      GracePeriod,
		log:        logger.WithModule("scheduler"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScheduleReminder is a convenience wrapper building the alarm payload from a
// reminder document. Documents missing the fields an alarm needs are refused
// here rather than producing a blank notification later.
func (s *AlarmScheduler) ScheduleReminder(reminder *models.Reminder) time.Time {
	if s == nil || reminder == nil {
		return time.Time{}
	}
	if !reminder.Schedulable() {
		s.log.Warn("reminder is not schedulable; alarm not registered",
			zap.String("reminder_id", reminder.ID))
		return time.Time{}
	}
	return s.Schedule(Alarm{
		ReminderID:  reminder.ID,
		UserID:      reminder.UserID,
		Title:       reminder.Title,
		Description: reminder.Description,
		Emoji:       reminder.Emoji,
		FireTime:    reminder.FireTime,
	})
}

// Schedule registers a one-shot alarm, replacing any pending alarm for the
// same reminder id. A fire time not strictly in the future is clamped to
// now + grace rather than rejected. Scheduling problems are logged and
// swallowed; the caller's persistence path proceeds regardless.
func (s *AlarmScheduler) Schedule(alarm Alarm) time.Time {
	if s == nil {
		return time.Time{}
	}
	if alarm.ReminderID == "" {
		s.log.Error("cannot schedule alarm without reminder id")
		return time.Time{}
	}
	if s.dispatcher == nil {
		s.log.Error("no dispatcher configured; alarm not scheduled",
			zap.String("reminder_id", alarm.ReminderID))
		return time.Time{}
	}

	now := s.now()
	effective := alarm.FireTime
	clamped := false
	if !effective.After(now) {
		s.log.Warn("reminder fire time is in the past; clamping forward",
			zap.String("reminder_id", alarm.ReminderID),
			zap.Time("requested", alarm.FireTime))
		effective = now.Add(s.grace)
		clamped = true
	}
	metrics.AlarmsScheduled.WithLabelValues(strconv.FormatBool(clamped)).Inc()

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.timers[alarm.ReminderID]; ok {
		existing.Stop()
	}

	id := alarm.ReminderID
	s.timers[id] = time.AfterFunc(effective.Sub(now), func() {
		s.mu.Lock()
		delete(s.timers, id)
		s.mu.Unlock()

		metrics.AlarmsFired.Inc()
		s.dispatcher.Fire(alarm.UserID, alarm.ReminderID, alarm.Title, alarm.Description, alarm.Emoji)
	})

	s.log.Debug("alarm scheduled",
		zap.String("reminder_id", alarm.ReminderID),
		zap.Time("fire_time", effective))

	return effective
}

// Cancel unregisters any pending alarm for the reminder id. Cancelling an
// unknown id is a no-op.
func (s *AlarmScheduler) Cancel(reminderID string) {
	if s == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if timer, ok := s.timers[reminderID]; ok {
		timer.Stop()
		delete(s.timers, reminderID)
		s.log.Debug("alarm cancelled", zap.String("reminder_id", reminderID))
	}
}

// Pending reports whether an alarm is currently registered for the id.
func (s *AlarmScheduler) Pending(reminderID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[reminderID]
	return ok
}

// Stop cancels every pending alarm, used during shutdown.
func (s *AlarmScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
}
