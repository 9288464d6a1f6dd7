package schedule

import "github.com/davian-ro/CoachSchedBack/internal/models"

// SessionsIncluded resolves the credit cap for an enrollment, or nil when the
// format books without limit. Single-session enrollments carry an implicit
// cap of one even when the row has no explicit counter.
func SessionsIncluded(e models.Enrollment) *int {
	switch e.Format {
	case models.FormatSingleSession:
		if e.SessionsIncluded != nil {
			return e.SessionsIncluded
		}
		one := 1
		return &one
	case models.FormatFixedPackage:
		return e.SessionsIncluded
	default:
		return nil
	}
}

// HasCredit reports whether the enrollment can pay for one more session.
func HasCredit(e models.Enrollment) bool {
	included := SessionsIncluded(e)
	return included == nil || e.SessionsUsed < *included
}

// ReserveCredit consumes one session credit and returns the updated
// enrollment. Consuming the last credit completes the enrollment. For formats
// that book without limit this is the identity. ok is false when no credit
// remains; the enrollment is returned unchanged in that case.
func ReserveCredit(e models.Enrollment) (models.Enrollment, bool) {
	included := SessionsIncluded(e)
	if included == nil {
		return e, true
	}
	if e.SessionsUsed >= *included {
		return e, false
	}
	e.SessionsUsed++
	if e.SessionsUsed == *included {
		e.Status = models.EnrollmentCompleted
	}
	return e, true
}

// ReleaseCredit is the inverse of ReserveCredit, used when a booking fails
// after the credit was taken, or on cancellation under a refunding policy.
// An enrollment completed by exhausting its credits becomes active again.
func ReleaseCredit(e models.Enrollment) models.Enrollment {
	included := SessionsIncluded(e)
	if included == nil || e.SessionsUsed == 0 {
		return e
	}
	e.SessionsUsed--
	if e.Status == models.EnrollmentCompleted && e.SessionsUsed < *included {
		e.Status = models.EnrollmentActive
	}
	return e
}
