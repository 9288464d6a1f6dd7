package schedule

import (
	"time"

	"github.com/davian-ro/CoachSchedBack/internal/models"
)

// AvailableDays returns the civil dates in a month that could plausibly carry
// bookable slots: the weekday has a rule, the date is not blacked out, and
// the date intersects the notice/advance booking window. This is a cheap
// over-approximation for calendar rendering; a listed date can still produce
// zero slots once existing sessions are considered, so it must never be read
// as a booking guarantee.
func AvailableDays(rules []models.AvailabilityRule, blackouts []models.BlackoutPeriod, loc *time.Location, year int, month time.Month, now time.Time, p Policy) []string {
	ruleDays := make(map[int]bool, len(rules))
	for _, rule := range rules {
		ruleDays[rule.DayOfWeek] = true
	}
	if len(ruleDays) == 0 {
		return []string{}
	}

	floor := p.NoticeFloor(now)
	horizon := p.AdvanceHorizon(now)

	days := make([]string, 0, 16)
	for date := time.Date(year, month, 1, 0, 0, 0, 0, loc); date.Month() == month; date = date.AddDate(0, 0, 1) {
		if !ruleDays[int(date.Weekday())] {
			continue
		}
		if BlackedOut(blackouts, loc, date) {
			continue
		}
		dayEnd := date.AddDate(0, 0, 1)
		if !dayEnd.After(floor) || !date.Before(horizon) {
			continue
		}
		days = append(days, date.Format(DateLayout))
	}
	return days
}
