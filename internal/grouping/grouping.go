// Package grouping buckets reminder lists for display. The bucket order and
// per-bucket sort must match the client exactly, so treat changes here as
// breaking.
package grouping

import (
	"sort"
	"time"

	"github.com/prafullkumar/chronos/internal/models"
)

// Bucket names a display classification for a reminder.
type Bucket string

const (
	BucketToday        Bucket = "Today"
	BucketOverdueToday Bucket = "Overdue Today"
	BucketOverdue      Bucket = "Overdue"
	BucketUpcoming     Bucket = "Upcoming"
)

// displayOrder fixes the emitted section order.
var displayOrder = []Bucket{BucketToday, BucketOverdueToday, BucketOverdue, BucketUpcoming}

// Section is one emitted bucket with its ordered reminders.
type Section struct {
	Bucket    Bucket            `json:"bucket"`
	Reminders []models.Reminder `json:"reminders"`
}

// Classify places a single reminder into exactly one bucket relative to now.
// The rule depends only on the reminder's fire time, now's calendar date, and
// now itself.
func Classify(reminder models.Reminder, now time.Time) Bucket {
	fire := reminder.FireTime.In(now.Location())

	sameDay := fire.Year() == now.Year() && fire.YearDay() == now.YearDay()
	switch {
	case sameDay && !fire.Before(now):
		return BucketToday
	case sameDay:
		return BucketOverdueToday
	case fire.Before(now):
		return BucketOverdue
	default:
		return BucketUpcoming
	}
}

// Group buckets reminders and orders them for display: Today and Upcoming
// soonest first, the overdue buckets most-recently-missed first. Empty
// buckets are omitted.
func Group(reminders []models.Reminder, now time.Time) []Section {
	buckets := make(map[Bucket][]models.Reminder)
	for _, reminder := range reminders {
		bucket := Classify(reminder, now)
		buckets[bucket] = append(buckets[bucket], reminder)
	}

	sections := make([]Section, 0, len(buckets))
	for _, bucket := range displayOrder {
		group, ok := buckets[bucket]
		if !ok {
			continue
		}

		ascending := bucket == BucketToday || bucket == BucketUpcoming
		sort.SliceStable(group, func(i, j int) bool {
			if ascending {
				return group[i].FireTime.Before(group[j].FireTime)
			}
			return group[i].FireTime.After(group[j].FireTime)
		})

		sections = append(sections, Section{Bucket: bucket, Reminders: group})
	}

	return sections
}
