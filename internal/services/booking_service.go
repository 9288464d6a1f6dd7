package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/davian-ro/CoachSchedBack/internal/models"
	"github.com/davian-ro/CoachSchedBack/internal/notify"
	"github.com/davian-ro/CoachSchedBack/internal/repository"
	"github.com/davian-ro/CoachSchedBack/internal/schedule"
)

const uniqueViolation = "23505"

// BookingService is the concurrency-critical core: it turns an advisory slot
// into a committed session. Slot queries run lock-free over multiple UI
// round-trips, so every booking re-validates inside its own transaction,
// serialized per program by an advisory lock; losing that race surfaces as
// ErrSlotUnavailable, a retryable outcome rather than a failure.
type BookingService struct {
	db             *pgxpool.Pool
	programRepo    *repository.ProgramRepository
	enrollmentRepo *repository.EnrollmentRepository
	sessionRepo    *repository.SessionRepository
	notifier       notify.Notifier
}

func NewBookingService(
	db *pgxpool.Pool,
	programRepo *repository.ProgramRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	sessionRepo *repository.SessionRepository,
	notifier notify.Notifier,
) *BookingService {
	return &BookingService{
		db:             db,
		programRepo:    programRepo,
		enrollmentRepo: enrollmentRepo,
		sessionRepo:    sessionRepo,
		notifier:       notifier,
	}
}

type BookSessionInput struct {
	EnrollmentID int64
	StartsAt     time.Time
	WeekNumber   *int
}

// Book1on1 reserves a slot for a 1:1 enrollment. The session insert and the
// credit consumption commit together or not at all.
func (s *BookingService) Book1on1(ctx context.Context, actorID int64, input BookSessionInput) (*models.Session, error) {
	if input.EnrollmentID <= 0 || input.StartsAt.IsZero() {
		return nil, ErrInvalidInput
	}

	enrollment, err := s.enrollmentRepo.GetByID(ctx, input.EnrollmentID)
	if err != nil {
		return nil, err
	}
	program, err := s.programRepo.GetByID(ctx, enrollment.ProgramID)
	if err != nil {
		return nil, err
	}
	if actorID != enrollment.UserID && actorID != program.CoachID {
		return nil, ErrForbidden
	}
	if program.Interaction != models.InteractionOneOnOne {
		return nil, ErrInvalidInput
	}

	now := time.Now().UTC()
	if err := checkEnrollmentBookable(*enrollment, now); err != nil {
		return nil, err
	}

	weeks, err := s.programRepo.ListCurriculumWeeks(ctx, program.ID)
	if err != nil {
		return nil, err
	}
	if input.WeekNumber != nil && !weekExists(weeks, *input.WeekNumber) {
		return nil, ErrInvalidInput
	}
	duration := schedule.WeekDuration(*program, weeks, input.WeekNumber)
	if duration <= 0 {
		return nil, ErrInvalidInput
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	// Serialize bookings per program. The lock is transaction-scoped and
	// never held across a user-facing wait.
	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", program.ID); err != nil {
		return nil, err
	}

	startsAt := input.StartsAt.UTC()
	endsAt := startsAt.Add(time.Duration(duration) * time.Minute)

	// Re-check everything the caller saw in the earlier slot query: the rule
	// window, blackouts, notice/advance bounds, and the buffer gap to every
	// scheduled session. Time has passed and a rival may have booked.
	if err := validateSlot(ctx, tx, program, duration, startsAt, now, nil); err != nil {
		return nil, err
	}

	txEnrollmentRepo := repository.NewEnrollmentRepository(tx)
	locked, err := txEnrollmentRepo.GetByIDForUpdate(ctx, enrollment.ID)
	if err != nil {
		return nil, err
	}
	if err := checkEnrollmentBookable(*locked, now); err != nil {
		return nil, err
	}
	reserved, ok := schedule.ReserveCredit(*locked)
	if !ok {
		return nil, ErrCreditExhausted
	}
	if reserved.SessionsUsed != locked.SessionsUsed || reserved.Status != locked.Status {
		if _, err := txEnrollmentRepo.UpdateCredits(ctx, reserved.ID, reserved.SessionsUsed, reserved.Status); err != nil {
			return nil, err
		}
	}

	txSessionRepo := repository.NewSessionRepository(tx)
	session, err := txSessionRepo.Create(ctx, repository.CreateSessionInput{
		ProgramID:    program.ID,
		EnrollmentID: &enrollment.ID,
		StartsAt:     startsAt,
		EndsAt:       endsAt,
		Timezone:     program.Timezone,
		WeekNumber:   input.WeekNumber,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.publish(notify.NewEvent(
		notify.EventSessionBooked,
		program.ID,
		session.ID,
		fmt.Sprintf("session booked for %s", startsAt.Format(time.RFC3339)),
		program.CoachID, enrollment.UserID,
	))
	return session, nil
}

// RegisterForSession adds the caller to a group session. Capacity comes from
// the cohort when the session belongs to one, otherwise from the program, and
// is checked under the session row lock so two racing registrations cannot
// both squeeze into the last seat.
func (s *BookingService) RegisterForSession(ctx context.Context, actorID, sessionID int64) (*models.SessionAttendee, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txSessionRepo := repository.NewSessionRepository(tx)
	session, err := txSessionRepo.GetByIDForUpdate(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != models.SessionScheduled {
		return nil, ErrInvalidStateTransition
	}
	if session.EnrollmentID != nil {
		// 1:1 sessions have a single owner, not an attendee list.
		return nil, ErrInvalidInput
	}

	txProgramRepo := repository.NewProgramRepository(tx)
	program, err := txProgramRepo.GetByID(ctx, session.ProgramID)
	if err != nil {
		return nil, err
	}

	txEnrollmentRepo := repository.NewEnrollmentRepository(tx)
	enrollment, err := txEnrollmentRepo.FindActiveByProgramAndUser(ctx, program.ID, actorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEnrollmentInactive
		}
		return nil, err
	}

	maxParticipants := program.MaxParticipants
	if session.CohortID != nil {
		cohort, err := repository.NewCohortRepository(tx).GetByID(ctx, *session.CohortID)
		if err != nil {
			return nil, err
		}
		if cohort.MaxParticipants != nil {
			maxParticipants = cohort.MaxParticipants
		}
	}
	if maxParticipants != nil {
		count, err := txSessionRepo.CountAttendees(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if count >= *maxParticipants {
			return nil, ErrConflict
		}
	}

	attendee, err := txSessionRepo.AddAttendee(ctx, sessionID, enrollment.ID, actorID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrConflict
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.publish(notify.NewEvent(
		notify.EventAttendeeRegistered,
		program.ID,
		session.ID,
		"attendee registered",
		program.CoachID,
	))
	return attendee, nil
}

// CancelGroupRegistration removes the caller from a group session. Immediate
// and synchronous: no grace period, no soft delete.
func (s *BookingService) CancelGroupRegistration(ctx context.Context, actorID, sessionID int64) error {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.Status.Terminal() {
		return ErrInvalidStateTransition
	}

	removed, err := s.sessionRepo.RemoveAttendee(ctx, sessionID, actorID)
	if err != nil {
		return err
	}
	if !removed {
		return pgx.ErrNoRows
	}
	return nil
}

func (s *BookingService) publish(event notify.Event) {
	if s.notifier != nil {
		s.notifier.Publish(event)
	}
}

// checkEnrollmentBookable gates a booking attempt on the enrollment itself.
// An enrollment completed by spending its last credit reports
// ErrCreditExhausted, not ErrEnrollmentInactive: the caller's problem is the
// empty credit balance, and inactivity is reserved for cancelled, expired and
// lapsed enrollments.
func checkEnrollmentBookable(e models.Enrollment, now time.Time) error {
	if e.Status == models.EnrollmentCompleted && !schedule.HasCredit(e) {
		return ErrCreditExhausted
	}
	if e.Status != models.EnrollmentActive {
		return ErrEnrollmentInactive
	}
	if e.PackageExpiresAt != nil && now.After(*e.PackageExpiresAt) {
		return ErrEnrollmentInactive
	}
	if !schedule.HasCredit(e) {
		return ErrCreditExhausted
	}
	return nil
}

func weekExists(weeks []models.CurriculumWeek, weekNumber int) bool {
	for _, week := range weeks {
		if week.WeekNumber == weekNumber {
			return true
		}
	}
	return false
}

// validateSlot re-derives the candidate grid for the target date and demands
// that startsAt is on it, then checks the buffer gap against every scheduled
// session (optionally ignoring one, for reschedules). Any miss is reported as
// ErrSlotUnavailable: the caller picked from a stale slot list and should
// re-query and retry.
func validateSlot(ctx context.Context, tx repository.DBTX, program *models.Program, durationMin int, startsAt, now time.Time, excludeSessionID *int64) error {
	loc, err := time.LoadLocation(program.Timezone)
	if err != nil {
		return fmt.Errorf("program %d has invalid timezone %q: %w", program.ID, program.Timezone, err)
	}

	availabilityRepo := repository.NewAvailabilityRepository(tx)
	rules, err := availabilityRepo.ListRules(ctx, program.ID)
	if err != nil {
		return err
	}
	blackouts, err := availabilityRepo.ListBlackouts(ctx, program.CoachID, program.ID)
	if err != nil {
		return err
	}

	policy := schedule.Policy{
		DurationMin:        durationMin,
		BufferMin:          program.BufferMin,
		MinNoticeHours:     program.MinNoticeHours,
		AdvanceBookingDays: program.AdvanceBookingDays,
	}

	y, m, d := startsAt.In(loc).Date()
	date := time.Date(y, m, d, 0, 0, 0, 0, loc)

	onGrid := false
	for _, window := range schedule.WindowsFor(rules, blackouts, loc, date) {
		for _, slot := range schedule.SlotsInWindow(window, now, policy) {
			if slot.StartsAt.Equal(startsAt) {
				onGrid = true
				break
			}
		}
	}
	if !onGrid {
		return ErrSlotUnavailable
	}

	endsAt := startsAt.Add(time.Duration(durationMin) * time.Minute)
	sessionRepo := repository.NewSessionRepository(tx)
	var overlap bool
	if excludeSessionID != nil {
		overlap, err = sessionRepo.HasOverlapExcluding(ctx, program.ID, startsAt, endsAt, program.BufferMin, *excludeSessionID)
	} else {
		overlap, err = sessionRepo.HasOverlap(ctx, program.ID, startsAt, endsAt, program.BufferMin)
	}
	if err != nil {
		return err
	}
	if overlap {
		return ErrSlotUnavailable
	}
	return nil
}
