package models

import "time"

type SessionStatus string

const (
	SessionScheduled SessionStatus = "scheduled"
	SessionCompleted SessionStatus = "completed"
	SessionCancelled SessionStatus = "cancelled"
)

// Terminal reports whether the status permits no further transitions.
func (s SessionStatus) Terminal() bool {
	return s == SessionCompleted || s == SessionCancelled
}

// Session is a committed meeting. A 1:1 session carries the owning
// enrollment; a group session carries a cohort (or none, for open-group
// programs) and its participants live in session_attendees rows.
// OriginalStartsAt records the first scheduled time and is set exactly once,
// on the first reschedule.
type Session struct {
	ID               int64         `json:"id"`
	ProgramID        int64         `json:"program_id"`
	CohortID         *int64        `json:"cohort_id,omitempty"`
	EnrollmentID     *int64        `json:"enrollment_id,omitempty"`
	StartsAt         time.Time     `json:"starts_at"`
	EndsAt           time.Time     `json:"ends_at"`
	Timezone         string        `json:"timezone"`
	Status           SessionStatus `json:"status"`
	WeekNumber       *int          `json:"week_number,omitempty"`
	OriginalStartsAt *time.Time    `json:"original_starts_at,omitempty"`
	CancelReason     *string       `json:"cancel_reason,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

func (s *Session) DurationMin() int {
	return int(s.EndsAt.Sub(s.StartsAt) / time.Minute)
}

type SessionAttendee struct {
	ID           int64     `json:"id"`
	SessionID    int64     `json:"session_id"`
	EnrollmentID int64     `json:"enrollment_id"`
	UserID       int64     `json:"user_id"`
	CreatedAt    time.Time `json:"created_at"`
}
