package models

import "time"

// Cohort groups the sessions of one GROUP_COHORT run. Capacity, when set,
// is enforced at registration time rather than when sessions are added.
type Cohort struct {
	ID              int64      `json:"id"`
	ProgramID       int64      `json:"program_id"`
	Name            string     `json:"name"`
	StartDate       time.Time  `json:"start_date"`
	EndDate         *time.Time `json:"end_date,omitempty"`
	MaxParticipants *int       `json:"max_participants,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}
