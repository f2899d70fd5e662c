package testfixtures

import (
	"testing"
	"time"
)

func TestClockDefaultsToReferenceTime(t *testing.T) {
	clock := NewClock(time.Time{})
	if !clock.Now().Equal(ReferenceTime) {
		t.Fatalf("expected ReferenceTime, got %v", clock.Now())
	}
	if ReferenceTime.Weekday() != time.Wednesday {
		t.Fatalf("expected a Wednesday, got %v", ReferenceTime.Weekday())
	}
}

func TestClockAdvanceAndSet(t *testing.T) {
	clock := NewClock(ReferenceTime)

	updated := clock.Advance(36 * time.Hour)
	if updated.Day() != 14 || updated.Hour() != 22 {
		t.Fatalf("advance returned %v", updated)
	}

	nextMonth := time.Date(2024, time.April, 1, 9, 0, 0, 0, time.UTC)
	clock.Set(nextMonth)
	if got := clock.Now(); !got.Equal(nextMonth) {
		t.Fatalf("expected %v, got %v", nextMonth, got)
	}
}
