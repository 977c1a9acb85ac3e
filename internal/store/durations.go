package store

import "time"

// Named lifespans for common cache durations. Pure data; pass them
// anywhere a lifespan is accepted.
const (
	OneMinute      = time.Minute
	FiveMinutes    = 5 * time.Minute
	TenMinutes     = 10 * time.Minute
	FifteenMinutes = 15 * time.Minute
	ThirtyMinutes  = 30 * time.Minute
	OneHour        = time.Hour
	OneDay         = 24 * time.Hour
	OneWeek        = 7 * OneDay
)
