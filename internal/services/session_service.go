package services

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/davian-ro/CoachSchedBack/internal/models"
	"github.com/davian-ro/CoachSchedBack/internal/notify"
	"github.com/davian-ro/CoachSchedBack/internal/repository"
	"github.com/davian-ro/CoachSchedBack/internal/schedule"
)

// SessionService governs the lifecycle of a committed session: scheduled is
// the only live state, completed and cancelled are terminal. Whether
// cancelling a credit-bearing session restores the credit is a deliberate
// policy knob (see config.CreditRefundOnCancel), not a hardcoded choice.
type SessionService struct {
	db                   *pgxpool.Pool
	programRepo          *repository.ProgramRepository
	enrollmentRepo       *repository.EnrollmentRepository
	sessionRepo          *repository.SessionRepository
	refundCreditOnCancel bool
	notifier             notify.Notifier
}

func NewSessionService(
	db *pgxpool.Pool,
	programRepo *repository.ProgramRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	sessionRepo *repository.SessionRepository,
	refundCreditOnCancel bool,
	notifier notify.Notifier,
) *SessionService {
	return &SessionService{
		db:                   db,
		programRepo:          programRepo,
		enrollmentRepo:       enrollmentRepo,
		sessionRepo:          sessionRepo,
		refundCreditOnCancel: refundCreditOnCancel,
		notifier:             notifier,
	}
}

// CancelSession cancels a scheduled session, immediately and permanently.
// The status guard in the update means a second cancel (or cancelling a
// completed session) fails with ErrInvalidStateTransition instead of
// silently rewriting terminal state.
func (s *SessionService) CancelSession(ctx context.Context, actorID, sessionID int64, reason *string) (*models.Session, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	program, enrollment, err := s.loadParticipants(ctx, session)
	if err != nil {
		return nil, err
	}
	if !canManageSession(actorID, program, enrollment) {
		return nil, ErrForbidden
	}
	if session.Status.Terminal() {
		return nil, ErrInvalidStateTransition
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txSessionRepo := repository.NewSessionRepository(tx)
	cancelled, err := txSessionRepo.Cancel(ctx, sessionID, reason)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}

	if s.refundCreditOnCancel && session.EnrollmentID != nil {
		txEnrollmentRepo := repository.NewEnrollmentRepository(tx)
		locked, err := txEnrollmentRepo.GetByIDForUpdate(ctx, *session.EnrollmentID)
		if err != nil {
			return nil, err
		}
		released := schedule.ReleaseCredit(*locked)
		if released.SessionsUsed != locked.SessionsUsed || released.Status != locked.Status {
			if _, err := txEnrollmentRepo.UpdateCredits(ctx, released.ID, released.SessionsUsed, released.Status); err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.publish(notify.NewEvent(notify.EventSessionCancelled, program.ID, cancelled.ID, "session cancelled", sessionParties(program, enrollment)...))
	return cancelled, nil
}

// RescheduleSession moves a scheduled session to a new start, keeping its id
// and everything linked to it. The first move records the original start;
// later moves leave that record untouched. The new time is validated exactly
// like a fresh booking, except the moving session itself is ignored in the
// overlap check.
func (s *SessionService) RescheduleSession(ctx context.Context, actorID, sessionID int64, newStartsAt time.Time) (*models.Session, error) {
	if newStartsAt.IsZero() {
		return nil, ErrInvalidInput
	}

	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	program, enrollment, err := s.loadParticipants(ctx, session)
	if err != nil {
		return nil, err
	}
	if !canManageSession(actorID, program, enrollment) {
		return nil, ErrForbidden
	}
	if session.Status != models.SessionScheduled {
		return nil, ErrInvalidStateTransition
	}

	now := time.Now().UTC()
	duration := session.DurationMin()
	newStart := newStartsAt.UTC()
	newEnd := newStart.Add(time.Duration(duration) * time.Minute)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", program.ID); err != nil {
		return nil, err
	}

	if session.EnrollmentID != nil {
		if err := validateSlot(ctx, tx, program, duration, newStart, now, &session.ID); err != nil {
			return nil, err
		}
	} else if !newStart.After(now) {
		// Group sessions are placed by the coach off the slot grid; the only
		// hard requirement on a new time is that it has not already passed.
		return nil, ErrInvalidInput
	}

	txSessionRepo := repository.NewSessionRepository(tx)
	moved, err := txSessionRepo.Reschedule(ctx, sessionID, newStart, newEnd)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.publish(notify.NewEvent(notify.EventSessionRescheduled, program.ID, moved.ID, "session rescheduled", sessionParties(program, enrollment)...))
	return moved, nil
}

// CompleteSession marks a scheduled session completed, coach-only and only
// once the session's end time has passed.
func (s *SessionService) CompleteSession(ctx context.Context, actorID, sessionID int64) (*models.Session, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	program, err := s.programRepo.GetByID(ctx, session.ProgramID)
	if err != nil {
		return nil, err
	}
	if actorID != program.CoachID {
		return nil, ErrForbidden
	}
	if session.Status.Terminal() {
		return nil, ErrInvalidStateTransition
	}
	if session.EndsAt.After(time.Now().UTC()) {
		return nil, ErrInvalidStateTransition
	}

	completed, err := s.sessionRepo.Complete(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}

	s.publish(notify.NewEvent(notify.EventSessionCompleted, program.ID, completed.ID, "session completed", program.CoachID))
	return completed, nil
}

func (s *SessionService) GetSession(ctx context.Context, actorID int64, role string, sessionID int64) (*models.Session, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	program, enrollment, err := s.loadParticipants(ctx, session)
	if err != nil {
		return nil, err
	}
	if canManageSession(actorID, program, enrollment) {
		return session, nil
	}
	if role == "member" && session.EnrollmentID == nil {
		// Group sessions are visible to any member of the program.
		if _, err := s.enrollmentRepo.FindActiveByProgramAndUser(ctx, program.ID, actorID); err == nil {
			return session, nil
		}
	}
	return nil, ErrForbidden
}

func (s *SessionService) ListSessions(ctx context.Context, actorID int64, role string) ([]models.Session, error) {
	if role == "coach" {
		return s.sessionRepo.ListForCoach(ctx, actorID)
	}
	return s.sessionRepo.ListForMember(ctx, actorID)
}

func (s *SessionService) loadParticipants(ctx context.Context, session *models.Session) (*models.Program, *models.Enrollment, error) {
	program, err := s.programRepo.GetByID(ctx, session.ProgramID)
	if err != nil {
		return nil, nil, err
	}
	var enrollment *models.Enrollment
	if session.EnrollmentID != nil {
		enrollment, err = s.enrollmentRepo.GetByID(ctx, *session.EnrollmentID)
		if err != nil {
			return nil, nil, err
		}
	}
	return program, enrollment, nil
}

func (s *SessionService) publish(event notify.Event) {
	if s.notifier != nil {
		s.notifier.Publish(event)
	}
}

func canManageSession(actorID int64, program *models.Program, enrollment *models.Enrollment) bool {
	if actorID == program.CoachID {
		return true
	}
	return enrollment != nil && enrollment.UserID == actorID
}

func sessionParties(program *models.Program, enrollment *models.Enrollment) []int64 {
	parties := []int64{program.CoachID}
	if enrollment != nil && enrollment.UserID != program.CoachID {
		parties = append(parties, enrollment.UserID)
	}
	return parties
}
