package schedule

import (
	"time"

	"github.com/davian-ro/CoachSchedBack/internal/models"
)

// Policy is the slot-generation portion of a program's configuration.
type Policy struct {
	DurationMin        int
	BufferMin          int
	MinNoticeHours     int
	AdvanceBookingDays int
}

func (p Policy) step() time.Duration {
	return time.Duration(p.DurationMin+p.BufferMin) * time.Minute
}

// NoticeFloor is the earliest instant a slot may start: bookings need at
// least MinNoticeHours of lead time. The comparison is inclusive, so a slot
// starting exactly at the floor is allowed.
func (p Policy) NoticeFloor(now time.Time) time.Time {
	return now.Add(time.Duration(p.MinNoticeHours) * time.Hour)
}

// AdvanceHorizon is the latest instant a slot may end.
func (p Policy) AdvanceHorizon(now time.Time) time.Time {
	return now.AddDate(0, 0, p.AdvanceBookingDays)
}

// Admits reports whether a candidate start satisfies the notice floor and
// advance horizon.
func (p Policy) Admits(now, start time.Time) bool {
	if start.Before(p.NoticeFloor(now)) {
		return false
	}
	end := start.Add(time.Duration(p.DurationMin) * time.Minute)
	return !end.After(p.AdvanceHorizon(now))
}

// SlotsInWindow generates booking candidates inside one availability window.
// Candidates start at the window start and advance by duration plus buffer,
// for as long as the start remains inside the window; candidates outside the
// notice/advance bounds are dropped. A non-positive duration generates
// nothing rather than an error: an unconfigured program simply has no
// bookable slots.
func SlotsInWindow(w Window, now time.Time, p Policy) []models.Slot {
	if p.DurationMin <= 0 || !w.End.After(w.Start) {
		return nil
	}

	duration := time.Duration(p.DurationMin) * time.Minute
	floor := p.NoticeFloor(now)
	horizon := p.AdvanceHorizon(now)

	slots := make([]models.Slot, 0, 8)
	for start := w.Start; start.Before(w.End); start = start.Add(p.step()) {
		end := start.Add(duration)
		if start.Before(floor) {
			continue
		}
		if end.After(horizon) {
			break
		}
		slots = append(slots, models.Slot{StartsAt: start, EndsAt: end})
	}
	return slots
}

// Overlaps reports whether a candidate range conflicts with an existing
// session once the mandatory buffer is honoured: two sessions need at least
// bufferMin of idle time between them.
func Overlaps(candStart, candEnd, sessStart, sessEnd time.Time, bufferMin int) bool {
	buffer := time.Duration(bufferMin) * time.Minute
	return sessStart.Before(candEnd.Add(buffer)) && sessEnd.Add(buffer).After(candStart)
}

// FilterConflicts drops candidates that collide with any scheduled session.
// Cancelled and completed sessions must already be excluded by the caller.
func FilterConflicts(slots []models.Slot, sessions []models.Session, bufferMin int) []models.Slot {
	kept := make([]models.Slot, 0, len(slots))
	for _, slot := range slots {
		conflict := false
		for _, sess := range sessions {
			if Overlaps(slot.StartsAt, slot.EndsAt, sess.StartsAt, sess.EndsAt, bufferMin) {
				conflict = true
				break
			}
		}
		if !conflict {
			kept = append(kept, slot)
		}
	}
	return kept
}
