package constants

import "time"

const (
	DefaultTimeout = 15 * time.Second

	DatabaseSSLMode         = "disable"
	DatabaseMaxOpenConns    = 25
	DatabaseMaxIdleConns    = 5
	DatabaseConnMaxLifetime = 30 // minutes

	ServerShutdownTimeout = 10 * time.Second
)

// Calendar
const (
	ProviderGoogle = "google"

	GoogleCalendarScope  = "https://www.googleapis.com/auth/calendar.readonly"
	GoogleCalendarID     = "primary"
	SyncMaxResults       = 50
	DefaultEventTitle    = "No title"
	DefaultEventColor    = "#4285f4"
	TokenExpirySkew      = 5 * time.Minute
	CallbackPath         = "/api/calendars/callback"
	SettingsPath         = "/settings"
	StatusConnected      = "connected"
	StatusError          = "error"
	SyncLockTTL          = 2 * time.Minute
	SyncLockWait         = 30 * time.Second
	SyncLockRetryBackoff = 100 * time.Millisecond
)

// Background tasks
const (
	TaskCalendarSync    = "calendar:sync"
	TaskCalendarSyncAll = "calendar:sync_all"
	QueueDefault        = "default"
	DefaultSyncCron     = "@every 30m"
	SyncTaskUniqueTTL   = 5 * time.Minute
)
