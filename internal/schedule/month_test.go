package schedule

import (
	"testing"
	"time"

	"github.com/davian-ro/CoachSchedBack/internal/models"
)

func TestAvailableDays(t *testing.T) {
	loc := mustLoc(t, "UTC")
	rules := []models.AvailabilityRule{
		{DayOfWeek: 1, StartMin: 9 * 60, EndMin: 12 * 60},
	}
	blackouts := []models.BlackoutPeriod{
		{
			StartDate: time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC),
		},
	}
	policy := Policy{DurationMin: 60, MinNoticeHours: 0, AdvanceBookingDays: 60}
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, loc)

	// June 2025 Mondays: 2, 9, 16, 23, 30. The 9th is blacked out.
	days := AvailableDays(rules, blackouts, loc, 2025, time.June, now, policy)
	want := []string{"2025-06-02", "2025-06-16", "2025-06-23", "2025-06-30"}
	if len(days) != len(want) {
		t.Fatalf("expected %d days, got %d (%v)", len(want), len(days), days)
	}
	for i, w := range want {
		if days[i] != w {
			t.Errorf("day %d: expected %s, got %s", i, w, days[i])
		}
	}
}

func TestAvailableDaysHorizon(t *testing.T) {
	loc := mustLoc(t, "UTC")
	rules := []models.AvailabilityRule{
		{DayOfWeek: 1, StartMin: 9 * 60, EndMin: 12 * 60},
	}
	policy := Policy{DurationMin: 60, MinNoticeHours: 0, AdvanceBookingDays: 10}
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, loc)

	// Horizon ends June 11: only the Mondays on the 2nd and 9th qualify.
	days := AvailableDays(rules, nil, loc, 2025, time.June, now, policy)
	if len(days) != 2 {
		t.Fatalf("expected 2 days inside the horizon, got %d (%v)", len(days), days)
	}

	// Days entirely in the past are dropped too.
	later := time.Date(2025, 6, 20, 0, 0, 0, 0, loc)
	days = AvailableDays(rules, nil, loc, 2025, time.June, later, Policy{DurationMin: 60, AdvanceBookingDays: 30})
	want := []string{"2025-06-23", "2025-06-30"}
	if len(days) != len(want) {
		t.Fatalf("expected %d future days, got %d (%v)", len(want), len(days), days)
	}
}

func TestAvailableDaysNoRules(t *testing.T) {
	loc := mustLoc(t, "UTC")
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, loc)
	days := AvailableDays(nil, nil, loc, 2025, time.June, now, Policy{DurationMin: 60, AdvanceBookingDays: 30})
	if len(days) != 0 {
		t.Errorf("expected no days without rules, got %v", days)
	}
}
