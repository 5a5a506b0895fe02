package util

import "time"

// DayMillis is one calendar day in epoch milliseconds.
const DayMillis int64 = 24 * 60 * 60 * 1000

// ToEpochMillis converts t to milliseconds since the Unix epoch.
func ToEpochMillis(t time.Time) int64 {
	return t.UnixMilli()
}
