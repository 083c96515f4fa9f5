package common

import (
	"time"
	_ "time/tzdata"
)

// MustLoadLocation loads a timezone, falling back to UTC when tzdata is
// unavailable (e.g. minimal containers) or the name is unknown.
func MustLoadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// CalendarDay returns the calendar day of t as observed in loc, expressed as
// midnight UTC. Stored dates carry no time-of-day component.
func CalendarDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
