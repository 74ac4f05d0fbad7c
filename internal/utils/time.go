package utils

import (
	"fmt"
	"time"
)

// TimeOfDayLayout is the "HH:MM" layout used for schedules and reminders
const TimeOfDayLayout = "15:04"

// TimestampLayout is how reading timestamps are shown to users and exported
const TimestampLayout = "2006-01-02 15:04:05"

// Location is the fixed timezone for every wall-clock comparison.
var Location = mustLoadLocation("Europe/Moscow")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		// Moscow has no DST since 2014, so a fixed offset is equivalent when tzdata is missing
		return time.FixedZone("MSK", 3*60*60)
	}
	return loc
}

// Now returns the current time in the fixed timezone
func Now() time.Time {
	return time.Now().In(Location)
}

// FormatTimeOfDay formats t as "HH:MM" in the fixed timezone
func FormatTimeOfDay(t time.Time) string {
	return t.In(Location).Format(TimeOfDayLayout)
}

// FormatTimestamp formats t as "YYYY-MM-DD HH:MM:SS" in the fixed timezone
func FormatTimestamp(t time.Time) string {
	return t.In(Location).Format(TimestampLayout)
}

// ParseTimeOfDay validates a "HH:MM" string and normalises it to two-digit form
func ParseTimeOfDay(s string) (string, error) {
	t, err := time.Parse(TimeOfDayLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return t.Format(TimeOfDayLayout), nil
}

// HalfHourSlots returns the 48 times of day 00:00, 00:30 … 23:30
func HalfHourSlots() []string {
	slots := make([]string, 0, 48)
	for hour := 0; hour < 24; hour++ {
		for _, minute := range []int{0, 30} {
			slots = append(slots, fmt.Sprintf("%02d:%02d", hour, minute))
		}
	}
	return slots
}
