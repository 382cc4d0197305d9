package availability

import (
	"context"
	"time"

	"github.com/sofia-praxis/dental-calendar/internal/observability/metrics"
	"github.com/sofia-praxis/dental-calendar/pkg/apperrors"
)

// MaxHorizonDays bounds every forward scan so it always terminates.
const MaxHorizonDays = 30

// BookedLookup returns the booked start times (HH:MM) for one civil date,
// counting only non-cancelled appointments. Implemented by the
// appointments store.
type BookedLookup interface {
	BookedTimes(ctx context.Context, date string) ([]string, error)
}

// Slot is one proposed (date, time) position on the grid.
type Slot struct {
	Date           string `json:"date"`
	Time           string `json:"time"`
	AvailableCount int    `json:"availableCount,omitempty"`
}

// DateAvailability is the full free/busy partition for one date, or a
// structured rejection (weekend / past date).
type DateAvailability struct {
	Date           string   `json:"date"`
	Available      bool     `json:"available"`
	IsWeekend      bool     `json:"isWeekend,omitempty"`
	IsPast         bool     `json:"isPast,omitempty"`
	AvailableTimes []string `json:"availableTimes"`
	BookedTimes    []string `json:"bookedTimes"`
	TotalSlots     int      `json:"totalSlots"`
	FreeSlots      int      `json:"freeSlots"`
}

// Finder answers availability queries against the booked-times lookup.
type Finder struct {
	booked  BookedLookup
	metrics *metrics.BookingMetrics
	now     func() time.Time
}

// NewFinder constructs an availability finder. now defaults to time.Now.
func NewFinder(booked BookedLookup, m *metrics.BookingMetrics) *Finder {
	if booked == nil {
		panic("availability: booked lookup required")
	}
	return &Finder{booked: booked, metrics: m, now: time.Now}
}

// WithClock overrides the clock; used by tests for deterministic "today".
func (f *Finder) WithClock(now func() time.Time) *Finder {
	f.now = now
	return f
}

// NextAvailable scans forward day by day from the given date, skipping
// Saturdays and Sundays, and returns the first free grid slot. On the first
// day only slots at or after afterTime are considered (pass "" for the
// whole day), so a caller whose requested slot collided can be offered the
// next position after it. Exhausting the horizon yields ErrNoSlotsAvailable;
// callers present the "call the practice" fallback, never a silent success.
func (f *Finder) NextAvailable(ctx context.Context, fromDate string, afterTime string, horizonDays int) (*Slot, error) {
	start := f.now()
	defer func() {
		f.metrics.ObserveScanLatency("next_available", time.Since(start).Seconds())
	}()

	if horizonDays <= 0 || horizonDays > MaxHorizonDays {
		horizonDays = MaxHorizonDays
	}
	if fromDate == "" {
		fromDate = DateString(f.now())
	}
	day, err := ParseDate(fromDate)
	if err != nil {
		return nil, apperrors.Validation("invalid date %q, expected YYYY-MM-DD", fromDate)
	}
	if afterTime != "" {
		if len(afterTime) > 5 {
			afterTime = afterTime[:5]
		}
	}

	for count := 0; count <= horizonDays; count++ {
		if IsWeekend(day) {
			day = day.AddDate(0, 0, 1)
			continue
		}
		dateStr := DateString(day)
		booked, err := f.booked.BookedTimes(ctx, dateStr)
		if err != nil {
			return nil, err
		}
		free := FreeTimes(booked)
		for _, t := range free {
			if count == 0 && afterTime != "" && t < afterTime {
				continue
			}
			return &Slot{Date: dateStr, Time: t, AvailableCount: len(free)}, nil
		}
		day = day.AddDate(0, 0, 1)
	}
	return nil, apperrors.ErrNoSlotsAvailable
}

// CheckDate returns the grid partition for one explicit date. Weekends and
// dates strictly before today are rejected with a structured reason, not an
// error: these are expected, recoverable outcomes. "Before today" compares
// local civil days only; time of day is never consulted.
func (f *Finder) CheckDate(ctx context.Context, dateStr string) (*DateAvailability, error) {
	start := f.now()
	defer func() {
		f.metrics.ObserveScanLatency("check_date", time.Since(start).Seconds())
	}()

	day, err := ParseDate(dateStr)
	if err != nil {
		return nil, apperrors.Validation("invalid date %q, expected YYYY-MM-DD", dateStr)
	}

	res := &DateAvailability{
		Date:           dateStr,
		AvailableTimes: []string{},
		BookedTimes:    []string{},
		TotalSlots:     TotalSlots,
	}

	if IsWeekend(day) {
		res.IsWeekend = true
		return res, nil
	}

	today, _ := ParseDate(DateString(f.now()))
	if day.Before(today) {
		res.IsPast = true
		return res, nil
	}

	booked, err := f.booked.BookedTimes(ctx, dateStr)
	if err != nil {
		return nil, err
	}
	res.BookedTimes = booked
	if res.BookedTimes == nil {
		res.BookedTimes = []string{}
	}
	res.AvailableTimes = FreeTimes(booked)
	res.FreeSlots = len(res.AvailableTimes)
	res.Available = res.FreeSlots > 0
	return res, nil
}

// Suggest collects up to maxSuggestions candidates, at most one per day,
// scanning up to daysToCheck days from today and skipping weekends. An
// empty result is a legitimate outcome, not an error.
func (f *Finder) Suggest(ctx context.Context, daysToCheck, maxSuggestions int) ([]Slot, error) {
	start := f.now()
	defer func() {
		f.metrics.ObserveScanLatency("suggest", time.Since(start).Seconds())
	}()

	if daysToCheck <= 0 {
		daysToCheck = 7
	}
	if daysToCheck > MaxHorizonDays {
		daysToCheck = MaxHorizonDays
	}
	if maxSuggestions <= 0 {
		maxSuggestions = 5
	}

	today, _ := ParseDate(DateString(f.now()))
	suggestions := []Slot{}
	for offset := 0; offset < daysToCheck && len(suggestions) < maxSuggestions; offset++ {
		day := today.AddDate(0, 0, offset)
		if IsWeekend(day) {
			continue
		}
		dateStr := DateString(day)
		booked, err := f.booked.BookedTimes(ctx, dateStr)
		if err != nil {
			return nil, err
		}
		free := FreeTimes(booked)
		if len(free) > 0 {
			suggestions = append(suggestions, Slot{
				Date:           dateStr,
				Time:           free[0],
				AvailableCount: len(free),
			})
		}
	}
	return suggestions, nil
}
