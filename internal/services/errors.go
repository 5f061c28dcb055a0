package services

import "errors"

var (
	// ErrReminderNotFound indicates the requested reminder does not exist.
	ErrReminderNotFound = errors.New("reminder service: reminder not found")

	// ErrUserNotFound indicates the user document has not been created yet.
	ErrUserNotFound = errors.New("user service: user not found")

	// ErrTitleRequired rejects reminders without a title.
	ErrTitleRequired = errors.New("reminder service: title is required")

	// ErrFireTimeRequired rejects reminders without a fire time.
	ErrFireTimeRequired = errors.New("reminder service: fire time is required")
)
