package models

import "time"

// Submission is a member deliverable, targeted at either a curriculum week or
// a specific session, with text content or an uploaded file reference. The
// data model deliberately allows more than one submission per (enrollment,
// week); progress views take the latest.
type Submission struct {
	ID           int64      `json:"id"`
	EnrollmentID int64      `json:"enrollment_id"`
	WeekNumber   *int       `json:"week_number,omitempty"`
	SessionID    *int64     `json:"session_id,omitempty"`
	Content      *string    `json:"content,omitempty"`
	FileURL      *string    `json:"file_url,omitempty"`
	SubmittedAt  time.Time  `json:"submitted_at"`
	Feedback     *string    `json:"feedback,omitempty"`
	FeedbackAt   *time.Time `json:"feedback_at,omitempty"`
}
