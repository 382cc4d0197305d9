// Package availability implements the free/busy slot logic over the fixed
// business-hours grid: weekdays only, 30-minute steps, two windows
// (08:00-12:00 and 14:00-18:00) with the lunch break in between.
package availability

import "time"

// BusinessHours is the fixed grid of bookable start times. The gap between
// 11:30 and 14:00 is the practice lunch break; 12:00-13:30 must never be
// offered, so the grid lists the slots explicitly instead of deriving them
// from a single opening window.
var BusinessHours = []string{
	"08:00", "08:30", "09:00", "09:30", "10:00", "10:30", "11:00", "11:30",
	"14:00", "14:30", "15:00", "15:30", "16:00", "16:30", "17:00", "17:30",
}

// TotalSlots is the number of bookable slots per weekday.
const TotalSlots = 16

// DateString formats a civil date from local calendar fields. Never format
// dates through UTC-serializing round-trips: near midnight those shift the
// visible day.
func DateString(t time.Time) string {
	return t.Format("2006-01-02")
}

// ParseDate parses a YYYY-MM-DD string as a local civil date.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, time.Local)
}

// IsWeekend reports whether the local calendar day is Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// FreeTimes partitions the grid against the booked start times, preserving
// grid order. Booked entries outside the grid are ignored.
func FreeTimes(booked []string) []string {
	taken := make(map[string]struct{}, len(booked))
	for _, b := range booked {
		taken[b] = struct{}{}
	}
	free := make([]string, 0, len(BusinessHours))
	for _, t := range BusinessHours {
		if _, ok := taken[t]; !ok {
			free = append(free, t)
		}
	}
	return free
}
