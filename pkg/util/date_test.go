package util

import (
	"testing"
	"time"
)

func TestToEpochMillis(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
	if got := ToEpochMillis(ts); got != 1728555010000 {
		t.Fatalf("unexpected millis %d", got)
	}
}

func TestDayMillis(t *testing.T) {
	if time.Duration(DayMillis)*time.Millisecond != 24*time.Hour {
		t.Fatalf("unexpected day length %d", DayMillis)
	}
}
