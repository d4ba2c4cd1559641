// Package calendar implements business-time arithmetic: elapsed duration
// between two instants restricted to configured work hours and days.
package calendar

import "time"

// Default workday window (9:00 to 17:00 local to the timestamps).
const (
	defaultStartHour = 9
	defaultEndHour   = 17
)

// Calendar computes elapsed time under a business-time policy. The zero
// policy counts wall-clock time.
type Calendar struct {
	businessHoursOnly bool
	excludeWeekends   bool
	startHour         int
	endHour           int
}

// Option applies a configuration option to the Calendar.
type Option func(*Calendar)

// WithBusinessHours restricts counting to the [start, end) hour window of
// each day. Out-of-range values keep the default 9..17 window.
func WithBusinessHours(startHour, endHour int) Option {
	return func(c *Calendar) {
		c.businessHoursOnly = true
		if startHour >= 0 && endHour <= 24 && startHour < endHour {
			c.startHour = startHour
			c.endHour = endHour
		}
	}
}

// WithWeekendsExcluded skips Saturday and Sunday entirely.
func WithWeekendsExcluded() Option {
	return func(c *Calendar) {
		c.excludeWeekends = true
	}
}

// New creates a Calendar with the given policy options.
func New(opts ...Option) *Calendar {
	c := &Calendar{
		startHour: defaultStartHour,
		endHour:   defaultEndHour,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Between returns the elapsed business time in [start, end). The start is
// inclusive and the end exclusive, so adjacent intervals never double-count
// a boundary minute. A non-positive interval yields zero.
func (c *Calendar) Between(start, end time.Time) time.Duration {
	if !end.After(start) {
		return 0
	}
	if !c.businessHoursOnly && !c.excludeWeekends {
		return end.Sub(start)
	}

	var total time.Duration
	day := midnight(start)
	for day.Before(end) {
		next := day.AddDate(0, 0, 1)
		if !c.excludeWeekends || !weekend(day) {
			winStart, winEnd := day, next
			if c.businessHoursOnly {
				winStart = day.Add(time.Duration(c.startHour) * time.Hour)
				winEnd = day.Add(time.Duration(c.endHour) * time.Hour)
			}
			// Overlap of [start, end) with this day's window.
			s := later(start, winStart)
			e := earlier(end, winEnd)
			if e.After(s) {
				total += e.Sub(s)
			}
		}
		day = next
	}
	return total
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func weekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func later(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func earlier(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
