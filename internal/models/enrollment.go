package models

import "time"

type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "active"
	EnrollmentCompleted EnrollmentStatus = "completed"
	EnrollmentCancelled EnrollmentStatus = "cancelled"
	EnrollmentExpired   EnrollmentStatus = "expired"
)

// Enrollment is a paid membership of one user in one program. It is created by
// the checkout flow once payment is confirmed; this core only reads it and
// moves its credit counters.
type Enrollment struct {
	ID               int64            `json:"id"`
	ProgramID        int64            `json:"program_id"`
	UserID           int64            `json:"user_id"`
	Format           ProgramFormat    `json:"format"`
	Status           EnrollmentStatus `json:"status"`
	SessionsIncluded *int             `json:"sessions_included"`
	SessionsUsed     int              `json:"sessions_used"`
	PackageExpiresAt *time.Time       `json:"package_expires_at"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}
