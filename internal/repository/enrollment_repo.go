package repository

import (
	"context"
	"time"

	"github.com/davian-ro/CoachSchedBack/internal/models"
)

type CreateEnrollmentInput struct {
	ProgramID        int64
	UserID           int64
	Format           models.ProgramFormat
	SessionsIncluded *int
	PackageExpiresAt *time.Time
}

const enrollmentColumns = `id, program_id, user_id, format, status, sessions_included, sessions_used,
		package_expires_at, created_at, updated_at`

type EnrollmentRepository struct {
	db DBTX
}

func NewEnrollmentRepository(db DBTX) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Create records a payment-confirmed enrollment. The checkout flow is the
// only production caller; integration tests use it to seed state.
func (r *EnrollmentRepository) Create(ctx context.Context, input CreateEnrollmentInput) (*models.Enrollment, error) {
	query := `
		INSERT INTO enrollments (program_id, user_id, format, status, sessions_included, package_expires_at)
		VALUES ($1, $2, $3, 'active', $4, $5)
		RETURNING ` + enrollmentColumns

	row := r.db.QueryRow(ctx, query, input.ProgramID, input.UserID, input.Format, input.SessionsIncluded, input.PackageExpiresAt)
	return scanEnrollment(row)
}

func (r *EnrollmentRepository) GetByID(ctx context.Context, enrollmentID int64) (*models.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE id = $1`
	return scanEnrollment(r.db.QueryRow(ctx, query, enrollmentID))
}

func (r *EnrollmentRepository) GetByIDForUpdate(ctx context.Context, enrollmentID int64) (*models.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE id = $1 FOR UPDATE`
	return scanEnrollment(r.db.QueryRow(ctx, query, enrollmentID))
}

func (r *EnrollmentRepository) FindActiveByProgramAndUser(ctx context.Context, programID, userID int64) (*models.Enrollment, error) {
	query := `
		SELECT ` + enrollmentColumns + `
		FROM enrollments
		WHERE program_id = $1 AND user_id = $2 AND status = 'active'
		ORDER BY id DESC
		LIMIT 1
	`
	return scanEnrollment(r.db.QueryRow(ctx, query, programID, userID))
}

// UpdateCredits writes the counter and status produced by a credit
// transition. Callers hold the row lock (GetByIDForUpdate) for the duration
// of the transaction, so this is a plain write rather than a compare-and-set.
func (r *EnrollmentRepository) UpdateCredits(ctx context.Context, enrollmentID int64, sessionsUsed int, status models.EnrollmentStatus) (*models.Enrollment, error) {
	query := `
		UPDATE enrollments
		SET sessions_used = $2, status = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + enrollmentColumns

	return scanEnrollment(r.db.QueryRow(ctx, query, enrollmentID, sessionsUsed, status))
}

func scanEnrollment(row interface{ Scan(dest ...any) error }) (*models.Enrollment, error) {
	var e models.Enrollment
	err := row.Scan(
		&e.ID,
		&e.ProgramID,
		&e.UserID,
		&e.Format,
		&e.Status,
		&e.SessionsIncluded,
		&e.SessionsUsed,
		&e.PackageExpiresAt,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
