package services

import "time"

// Cache keys are scoped per user and per query kind. Upcoming reminders are
// more time-sensitive than past ones, hence the shorter TTL.
const (
	upcomingCacheTTL = 5 * time.Minute
	pastCacheTTL     = 15 * time.Minute
)

func upcomingCacheKey(userID string) string {
	return "upcoming_reminders_" + userID
}

func pastCacheKey(userID string) string {
	return "past_reminders_" + userID
}
