package models

import "time"

type InteractionType string

const (
	InteractionOneOnOne InteractionType = "one_on_one"
	InteractionGroup    InteractionType = "group"
)

// ProgramFormat is the commercial format an offering is sold under. It is
// snapshotted onto enrollments at purchase time so later program edits do not
// change what an existing customer bought.
type ProgramFormat string

const (
	FormatSingleSession ProgramFormat = "single_session"
	FormatFixedPackage  ProgramFormat = "fixed_package"
	FormatSubscription  ProgramFormat = "subscription"
	FormatGroupCohort   ProgramFormat = "group_cohort"
	FormatGroupOpen     ProgramFormat = "group_open"
)

// CreditBearing reports whether enrollments under this format consume finite
// session credits. Subscription and open-group enrollments book without limit.
func (f ProgramFormat) CreditBearing() bool {
	return f == FormatSingleSession || f == FormatFixedPackage
}

func (f ProgramFormat) Group() bool {
	return f == FormatGroupCohort || f == FormatGroupOpen
}

func (f ProgramFormat) Valid() bool {
	switch f {
	case FormatSingleSession, FormatFixedPackage, FormatSubscription, FormatGroupCohort, FormatGroupOpen:
		return true
	}
	return false
}

type Program struct {
	ID                 int64           `json:"id"`
	CoachID            int64           `json:"coach_id"`
	Title              string          `json:"title"`
	Interaction        InteractionType `json:"interaction"`
	Format             ProgramFormat   `json:"format"`
	SessionDurationMin *int            `json:"session_duration_minutes"`
	TotalSessions      *int            `json:"total_sessions"`
	MaxParticipants    *int            `json:"max_participants"`
	Timezone           string          `json:"timezone"`
	BufferMin          int             `json:"buffer_minutes"`
	AdvanceBookingDays int             `json:"advance_booking_days"`
	MinNoticeHours     int             `json:"min_notice_hours"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// CurriculumWeek is one ordered unit of program content. A week may override
// the program's session duration and may carry a deliverable prompt that
// members respond to with a Submission.
type CurriculumWeek struct {
	ID                  int64   `json:"id"`
	ProgramID           int64   `json:"program_id"`
	WeekNumber          int     `json:"week_number"`
	Title               string  `json:"title"`
	DurationOverrideMin *int    `json:"duration_override_minutes,omitempty"`
	DeliverablePrompt   *string `json:"deliverable_prompt,omitempty"`
}
