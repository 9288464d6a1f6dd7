package schedule

import (
	"testing"
	"time"

	"github.com/davian-ro/CoachSchedBack/internal/models"
)

func mustLoc(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("LoadLocation(%s): %v", name, err)
	}
	return loc
}

func TestSlotsInWindowGrid(t *testing.T) {
	loc := mustLoc(t, "UTC")
	// Monday 09:00-12:00, 60 min sessions, 15 min buffer. The grid steps by
	// 75 minutes and a start inside the window is enough, so the 11:30 slot
	// that ends past 12:00 is still a candidate.
	window := Window{
		Start: time.Date(2025, 6, 2, 9, 0, 0, 0, loc),
		End:   time.Date(2025, 6, 2, 12, 0, 0, 0, loc),
	}
	policy := Policy{DurationMin: 60, BufferMin: 15, MinNoticeHours: 0, AdvanceBookingDays: 30}
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, loc)

	slots := SlotsInWindow(window, now, policy)
	want := []string{"09:00", "10:15", "11:30"}
	if len(slots) != len(want) {
		t.Fatalf("expected %d slots, got %d", len(want), len(slots))
	}
	for i, w := range want {
		if got := slots[i].StartsAt.Format("15:04"); got != w {
			t.Errorf("slot %d: expected start %s, got %s", i, w, got)
		}
	}
	if got := slots[0].EndsAt.Format("15:04"); got != "10:00" {
		t.Errorf("expected first slot to end 10:00, got %s", got)
	}
}

func TestSlotsInWindowNoticeFloor(t *testing.T) {
	loc := mustLoc(t, "UTC")
	window := Window{
		Start: time.Date(2025, 6, 2, 9, 0, 0, 0, loc),
		End:   time.Date(2025, 6, 2, 12, 0, 0, 0, loc),
	}
	policy := Policy{DurationMin: 60, BufferMin: 15, MinNoticeHours: 24, AdvanceBookingDays: 30}
	// 24h before Monday 10:00. The 09:00 slot falls under the floor; 10:15
	// and 11:30 survive.
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, loc)

	slots := SlotsInWindow(window, now, policy)
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}
	if got := slots[0].StartsAt.Format("15:04"); got != "10:15" {
		t.Errorf("expected first slot 10:15, got %s", got)
	}
}

func TestSlotsInWindowFloorIsInclusive(t *testing.T) {
	loc := mustLoc(t, "UTC")
	window := Window{
		Start: time.Date(2025, 6, 2, 9, 0, 0, 0, loc),
		End:   time.Date(2025, 6, 2, 12, 0, 0, 0, loc),
	}
	policy := Policy{DurationMin: 60, BufferMin: 15, MinNoticeHours: 24, AdvanceBookingDays: 30}
	// Floor lands exactly on the 09:00 start; a slot at exactly the floor
	// stays bookable.
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, loc)

	slots := SlotsInWindow(window, now, policy)
	if len(slots) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(slots))
	}
	if got := slots[0].StartsAt.Format("15:04"); got != "09:00" {
		t.Errorf("expected first slot 09:00, got %s", got)
	}
}

func TestSlotsInWindowAdvanceHorizon(t *testing.T) {
	loc := mustLoc(t, "UTC")
	window := Window{
		Start: time.Date(2025, 6, 2, 9, 0, 0, 0, loc),
		End:   time.Date(2025, 6, 2, 12, 0, 0, 0, loc),
	}
	// Horizon ends at 2025-06-02 10:30: only the 09:00 slot (ending 10:00)
	// fits entirely inside it.
	policy := Policy{DurationMin: 60, BufferMin: 15, MinNoticeHours: 0, AdvanceBookingDays: 1}
	now := time.Date(2025, 6, 1, 10, 30, 0, 0, loc)

	slots := SlotsInWindow(window, now, policy)
	if len(slots) != 1 {
		t.Fatalf("expected 1 slot, got %d", len(slots))
	}
	if got := slots[0].StartsAt.Format("15:04"); got != "09:00" {
		t.Errorf("expected 09:00, got %s", got)
	}
}

func TestSlotsInWindowUnconfiguredDuration(t *testing.T) {
	loc := mustLoc(t, "UTC")
	window := Window{
		Start: time.Date(2025, 6, 2, 9, 0, 0, 0, loc),
		End:   time.Date(2025, 6, 2, 12, 0, 0, 0, loc),
	}
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, loc)

	if slots := SlotsInWindow(window, now, Policy{DurationMin: 0, AdvanceBookingDays: 30}); len(slots) != 0 {
		t.Errorf("expected no slots without a duration, got %d", len(slots))
	}
}

func TestOverlapsBufferGap(t *testing.T) {
	loc := mustLoc(t, "UTC")
	at := func(h, m int) time.Time { return time.Date(2025, 6, 2, h, m, 0, 0, loc) }

	// Existing session 09:00-10:00, buffer 15. A candidate starting 10:15
	// leaves exactly one buffer of idle time and is legal; 10:14 is not.
	if Overlaps(at(10, 15), at(11, 15), at(9, 0), at(10, 0), 15) {
		t.Errorf("gap of exactly the buffer should not overlap")
	}
	if !Overlaps(at(10, 14), at(11, 14), at(9, 0), at(10, 0), 15) {
		t.Errorf("gap under the buffer should overlap")
	}
	if !Overlaps(at(9, 30), at(10, 30), at(9, 0), at(10, 0), 15) {
		t.Errorf("direct overlap should be detected")
	}
	// Candidate ending exactly a buffer before the session start is legal.
	if Overlaps(at(7, 45), at(8, 45), at(9, 0), at(10, 0), 15) {
		t.Errorf("candidate ending a buffer before the session should not overlap")
	}
}

func TestFilterConflicts(t *testing.T) {
	loc := mustLoc(t, "UTC")
	at := func(h, m int) time.Time { return time.Date(2025, 6, 2, h, m, 0, 0, loc) }

	slots := []models.Slot{
		{StartsAt: at(9, 0), EndsAt: at(10, 0)},
		{StartsAt: at(10, 15), EndsAt: at(11, 15)},
		{StartsAt: at(11, 30), EndsAt: at(12, 30)},
	}
	sessions := []models.Session{
		{StartsAt: at(10, 15), EndsAt: at(11, 15), Status: models.SessionScheduled},
	}

	kept := FilterConflicts(slots, sessions, 15)
	if len(kept) != 2 {
		t.Fatalf("expected 2 slots after filtering, got %d", len(kept))
	}
	if got := kept[0].StartsAt.Format("15:04"); got != "09:00" {
		t.Errorf("expected 09:00 kept, got %s", got)
	}
	if got := kept[1].StartsAt.Format("15:04"); got != "11:30" {
		t.Errorf("expected 11:30 kept, got %s", got)
	}
}
