package repository

import (
	"context"
	"time"

	"github.com/davian-ro/CoachSchedBack/internal/models"
)

type CreateSessionInput struct {
	ProgramID    int64
	CohortID     *int64
	EnrollmentID *int64
	StartsAt     time.Time
	EndsAt       time.Time
	Timezone     string
	WeekNumber   *int
}

const sessionColumns = `id, program_id, cohort_id, enrollment_id, starts_at, ends_at, timezone, status,
		week_number, original_starts_at, cancel_reason, created_at, updated_at`

type SessionRepository struct {
	db DBTX
}

func NewSessionRepository(db DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, input CreateSessionInput) (*models.Session, error) {
	query := `
		INSERT INTO sessions (program_id, cohort_id, enrollment_id, starts_at, ends_at, timezone, status, week_number)
		VALUES ($1, $2, $3, $4, $5, $6, 'scheduled', $7)
		RETURNING ` + sessionColumns

	row := r.db.QueryRow(
		ctx,
		query,
		input.ProgramID,
		input.CohortID,
		input.EnrollmentID,
		input.StartsAt,
		input.EndsAt,
		input.Timezone,
		input.WeekNumber,
	)
	return scanSession(row)
}

func (r *SessionRepository) GetByID(ctx context.Context, sessionID int64) (*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`
	return scanSession(r.db.QueryRow(ctx, query, sessionID))
}

func (r *SessionRepository) GetByIDForUpdate(ctx context.Context, sessionID int64) (*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1 FOR UPDATE`
	return scanSession(r.db.QueryRow(ctx, query, sessionID))
}

// ListScheduledInRange returns the scheduled sessions of a program whose time
// range intersects [from, to). Slot generation reads these to knock out
// already-booked candidates.
func (r *SessionRepository) ListScheduledInRange(ctx context.Context, programID int64, from, to time.Time) ([]models.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE program_id = $1 AND status = 'scheduled' AND starts_at < $3 AND ends_at > $2
		ORDER BY starts_at ASC, id ASC
	`
	return r.list(ctx, query, programID, from, to)
}

func (r *SessionRepository) ListByEnrollment(ctx context.Context, enrollmentID int64) ([]models.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE enrollment_id = $1
		ORDER BY starts_at ASC, id ASC
	`
	return r.list(ctx, query, enrollmentID)
}

// ListForCoach returns every session of every program the coach owns.
func (r *SessionRepository) ListForCoach(ctx context.Context, coachID int64) ([]models.Session, error) {
	query := `
		SELECT s.` + sessionListColumns() + `
		FROM sessions s
		JOIN programs p ON p.id = s.program_id
		WHERE p.coach_id = $1
		ORDER BY s.starts_at ASC, s.id ASC
	`
	return r.list(ctx, query, coachID)
}

// ListForMember returns sessions the user owns 1:1 plus group sessions they
// are registered for.
func (r *SessionRepository) ListForMember(ctx context.Context, userID int64) ([]models.Session, error) {
	query := `
		SELECT s.` + sessionListColumns() + `
		FROM sessions s
		LEFT JOIN enrollments e ON e.id = s.enrollment_id
		LEFT JOIN session_attendees a ON a.session_id = s.id AND a.user_id = $1
		WHERE e.user_id = $1 OR a.id IS NOT NULL
		ORDER BY s.starts_at ASC, s.id ASC
	`
	return r.list(ctx, query, userID)
}

// HasOverlap reports whether any scheduled session of the program would sit
// closer than the buffer to the candidate range.
func (r *SessionRepository) HasOverlap(ctx context.Context, programID int64, start, end time.Time, bufferMin int) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM sessions
			WHERE program_id = $1
			  AND status = 'scheduled'
			  AND starts_at < ($3::timestamptz + ($4::int * INTERVAL '1 minute'))
			  AND (ends_at + ($4::int * INTERVAL '1 minute')) > $2::timestamptz
		)
	`
	var overlap bool
	if err := r.db.QueryRow(ctx, query, programID, start, end, bufferMin).Scan(&overlap); err != nil {
		return false, err
	}
	return overlap, nil
}

// HasOverlapExcluding is HasOverlap minus one session, used when that session
// is being rescheduled and must not collide with itself.
func (r *SessionRepository) HasOverlapExcluding(ctx context.Context, programID int64, start, end time.Time, bufferMin int, excludedSessionID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM sessions
			WHERE program_id = $1
			  AND id <> $5
			  AND status = 'scheduled'
			  AND starts_at < ($3::timestamptz + ($4::int * INTERVAL '1 minute'))
			  AND (ends_at + ($4::int * INTERVAL '1 minute')) > $2::timestamptz
		)
	`
	var overlap bool
	if err := r.db.QueryRow(ctx, query, programID, start, end, bufferMin, excludedSessionID).Scan(&overlap); err != nil {
		return false, err
	}
	return overlap, nil
}

// Cancel moves a scheduled session to cancelled. Returns pgx.ErrNoRows when
// the session is missing or already terminal; the status guard in the WHERE
// clause is what makes a double cancel fail.
func (r *SessionRepository) Cancel(ctx context.Context, sessionID int64, reason *string) (*models.Session, error) {
	query := `
		UPDATE sessions
		SET status = 'cancelled', cancel_reason = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'scheduled'
		RETURNING ` + sessionColumns

	return scanSession(r.db.QueryRow(ctx, query, sessionID, reason))
}

// Reschedule moves a scheduled session to a new time. original_starts_at is
// written through COALESCE so only the first reschedule records it.
func (r *SessionRepository) Reschedule(ctx context.Context, sessionID int64, newStart, newEnd time.Time) (*models.Session, error) {
	query := `
		UPDATE sessions
		SET original_starts_at = COALESCE(original_starts_at, starts_at),
			starts_at = $2, ends_at = $3, updated_at = NOW()
		WHERE id = $1 AND status = 'scheduled'
		RETURNING ` + sessionColumns

	return scanSession(r.db.QueryRow(ctx, query, sessionID, newStart, newEnd))
}

func (r *SessionRepository) Complete(ctx context.Context, sessionID int64) (*models.Session, error) {
	query := `
		UPDATE sessions
		SET status = 'completed', updated_at = NOW()
		WHERE id = $1 AND status = 'scheduled'
		RETURNING ` + sessionColumns

	return scanSession(r.db.QueryRow(ctx, query, sessionID))
}

func (r *SessionRepository) AddAttendee(ctx context.Context, sessionID, enrollmentID, userID int64) (*models.SessionAttendee, error) {
	query := `
		INSERT INTO session_attendees (session_id, enrollment_id, user_id)
		VALUES ($1, $2, $3)
		RETURNING id, session_id, enrollment_id, user_id, created_at
	`
	var attendee models.SessionAttendee
	err := r.db.QueryRow(ctx, query, sessionID, enrollmentID, userID).Scan(
		&attendee.ID,
		&attendee.SessionID,
		&attendee.EnrollmentID,
		&attendee.UserID,
		&attendee.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &attendee, nil
}

func (r *SessionRepository) RemoveAttendee(ctx context.Context, sessionID, userID int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM session_attendees WHERE session_id = $1 AND user_id = $2`, sessionID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *SessionRepository) CountAttendees(ctx context.Context, sessionID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM session_attendees WHERE session_id = $1`, sessionID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *SessionRepository) list(ctx context.Context, query string, args ...any) ([]models.Session, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]models.Session, 0)
	for rows.Next() {
		var session models.Session
		if err := rows.Scan(
			&session.ID,
			&session.ProgramID,
			&session.CohortID,
			&session.EnrollmentID,
			&session.StartsAt,
			&session.EndsAt,
			&session.Timezone,
			&session.Status,
			&session.WeekNumber,
			&session.OriginalStartsAt,
			&session.CancelReason,
			&session.CreatedAt,
			&session.UpdatedAt,
		); err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

func sessionListColumns() string {
	return `id, s.program_id, s.cohort_id, s.enrollment_id, s.starts_at, s.ends_at, s.timezone, s.status,
		s.week_number, s.original_starts_at, s.cancel_reason, s.created_at, s.updated_at`
}

func scanSession(row interface{ Scan(dest ...any) error }) (*models.Session, error) {
	var session models.Session
	err := row.Scan(
		&session.ID,
		&session.ProgramID,
		&session.CohortID,
		&session.EnrollmentID,
		&session.StartsAt,
		&session.EndsAt,
		&session.Timezone,
		&session.Status,
		&session.WeekNumber,
		&session.OriginalStartsAt,
		&session.CancelReason,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}
