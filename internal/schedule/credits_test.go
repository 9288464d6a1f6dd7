package schedule

import (
	"testing"

	"github.com/davian-ro/CoachSchedBack/internal/models"
)

func TestSingleSessionImplicitCredit(t *testing.T) {
	e := models.Enrollment{Format: models.FormatSingleSession, Status: models.EnrollmentActive}

	included := SessionsIncluded(e)
	if included == nil || *included != 1 {
		t.Fatalf("expected implicit credit of 1, got %v", included)
	}
	if !HasCredit(e) {
		t.Errorf("fresh single-session enrollment should have a credit")
	}

	updated, ok := ReserveCredit(e)
	if !ok {
		t.Fatalf("expected reserve to succeed")
	}
	if updated.SessionsUsed != 1 {
		t.Errorf("expected sessions_used 1, got %d", updated.SessionsUsed)
	}
	if updated.Status != models.EnrollmentCompleted {
		t.Errorf("expected enrollment completed after the only session, got %s", updated.Status)
	}

	if _, ok := ReserveCredit(updated); ok {
		t.Errorf("expected reserve to fail once the credit is spent")
	}
}

func TestFixedPackageCreditLifecycle(t *testing.T) {
	included := 3
	e := models.Enrollment{
		Format:           models.FormatFixedPackage,
		Status:           models.EnrollmentActive,
		SessionsIncluded: &included,
	}

	for i := 1; i <= 3; i++ {
		var ok bool
		e, ok = ReserveCredit(e)
		if !ok {
			t.Fatalf("reserve %d: expected success", i)
		}
		if e.SessionsUsed != i {
			t.Fatalf("reserve %d: expected sessions_used %d, got %d", i, i, e.SessionsUsed)
		}
	}
	if e.Status != models.EnrollmentCompleted {
		t.Errorf("expected completed after last credit, got %s", e.Status)
	}
	if _, ok := ReserveCredit(e); ok {
		t.Errorf("expected reserve to fail on exhausted package")
	}

	// Releasing a credit reopens the enrollment.
	e = ReleaseCredit(e)
	if e.SessionsUsed != 2 {
		t.Errorf("expected sessions_used 2 after release, got %d", e.SessionsUsed)
	}
	if e.Status != models.EnrollmentActive {
		t.Errorf("expected active after release, got %s", e.Status)
	}
}

func TestUnlimitedFormatsIgnoreCredits(t *testing.T) {
	for _, format := range []models.ProgramFormat{models.FormatSubscription, models.FormatGroupOpen, models.FormatGroupCohort} {
		e := models.Enrollment{Format: format, Status: models.EnrollmentActive, SessionsUsed: 99}
		if SessionsIncluded(e) != nil {
			t.Errorf("%s: expected nil credit cap", format)
		}
		if !HasCredit(e) {
			t.Errorf("%s: expected credit always available", format)
		}
		updated, ok := ReserveCredit(e)
		if !ok || updated.SessionsUsed != 99 {
			t.Errorf("%s: expected reserve to be the identity", format)
		}
		if released := ReleaseCredit(e); released.SessionsUsed != 99 {
			t.Errorf("%s: expected release to be the identity", format)
		}
	}
}

func TestReleaseCreditAtZero(t *testing.T) {
	included := 3
	e := models.Enrollment{
		Format:           models.FormatFixedPackage,
		Status:           models.EnrollmentActive,
		SessionsIncluded: &included,
	}
	if released := ReleaseCredit(e); released.SessionsUsed != 0 {
		t.Errorf("expected release at zero to be the identity, got %d", released.SessionsUsed)
	}
}
