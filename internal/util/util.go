package util

import "time"

// NowUTC is the clock for event timestamps.
func NowUTC() time.Time {
	return time.Now().UTC()
}
