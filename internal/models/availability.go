package models

import "time"

// AvailabilityRule opens a weekly recurring window on one weekday. Times are
// minutes from midnight in the program's timezone; a program has at most one
// rule per weekday.
type AvailabilityRule struct {
	ID        int64 `json:"id"`
	ProgramID int64 `json:"program_id"`
	DayOfWeek int   `json:"day_of_week"`
	StartMin  int   `json:"start_minute"`
	EndMin    int   `json:"end_minute"`
}

// BlackoutPeriod removes an inclusive date range from availability. A nil
// ProgramID makes the blackout coach-wide, covering every program the coach
// owns.
type BlackoutPeriod struct {
	ID        int64     `json:"id"`
	CoachID   int64     `json:"coach_id"`
	ProgramID *int64    `json:"program_id,omitempty"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// Slot is a candidate bookable window. It is a read-model value only; a slot
// becomes durable state when a booking turns it into a Session.
type Slot struct {
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}
