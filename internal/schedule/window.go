package schedule

import (
	"time"

	"github.com/davian-ro/CoachSchedBack/internal/models"
)

// Window is one contiguous stretch of coach availability on a concrete day,
// expressed as absolute instants.
type Window struct {
	Start time.Time
	End   time.Time
}

// WindowsFor resolves the availability windows for one civil date. The date
// must be midnight in the program's location (see ParseDate). A date covered
// by any blackout period yields no windows at all; blackout date ranges are
// inclusive on both ends and compared as civil dates in the program timezone.
func WindowsFor(rules []models.AvailabilityRule, blackouts []models.BlackoutPeriod, loc *time.Location, date time.Time) []Window {
	if BlackedOut(blackouts, loc, date) {
		return nil
	}

	weekday := int(date.In(loc).Weekday())
	windows := make([]Window, 0, 1)
	for _, rule := range rules {
		if rule.DayOfWeek != weekday {
			continue
		}
		windows = append(windows, windowOn(date, loc, rule.StartMin, rule.EndMin))
	}
	return windows
}

// BlackedOut reports whether the civil date falls inside any blackout period.
func BlackedOut(blackouts []models.BlackoutPeriod, loc *time.Location, date time.Time) bool {
	y, m, d := date.In(loc).Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	for _, b := range blackouts {
		sy, sm, sd := b.StartDate.Date()
		ey, em, ed := b.EndDate.Date()
		start := time.Date(sy, sm, sd, 0, 0, 0, 0, time.UTC)
		end := time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC)
		if !day.Before(start) && !day.After(end) {
			return true
		}
	}
	return false
}

// windowOn anchors a minutes-from-midnight range onto a concrete day. Using
// time.Date with the location keeps DST transitions correct: 09:00 local is
// 09:00 local on both sides of a clock change.
func windowOn(date time.Time, loc *time.Location, startMin, endMin int) Window {
	y, m, d := date.In(loc).Date()
	return Window{
		Start: time.Date(y, m, d, startMin/60, startMin%60, 0, 0, loc),
		End:   time.Date(y, m, d, endMin/60, endMin%60, 0, 0, loc),
	}
}
