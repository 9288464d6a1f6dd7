package repository

import (
	"context"

	"github.com/davian-ro/CoachSchedBack/internal/models"
)

type CreateSubmissionInput struct {
	EnrollmentID int64
	WeekNumber   *int
	SessionID    *int64
	Content      *string
	FileURL      *string
}

const submissionColumns = `id, enrollment_id, week_number, session_id, content, file_url, submitted_at, feedback, feedback_at`

type SubmissionRepository struct {
	db DBTX
}

func NewSubmissionRepository(db DBTX) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

func (r *SubmissionRepository) Create(ctx context.Context, input CreateSubmissionInput) (*models.Submission, error) {
	query := `
		INSERT INTO submissions (enrollment_id, week_number, session_id, content, file_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + submissionColumns

	row := r.db.QueryRow(ctx, query, input.EnrollmentID, input.WeekNumber, input.SessionID, input.Content, input.FileURL)
	return scanSubmission(row)
}

func (r *SubmissionRepository) GetByID(ctx context.Context, submissionID int64) (*models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1`
	return scanSubmission(r.db.QueryRow(ctx, query, submissionID))
}

func (r *SubmissionRepository) SetFeedback(ctx context.Context, submissionID int64, feedback string) (*models.Submission, error) {
	query := `
		UPDATE submissions
		SET feedback = $2, feedback_at = NOW()
		WHERE id = $1
		RETURNING ` + submissionColumns

	return scanSubmission(r.db.QueryRow(ctx, query, submissionID, feedback))
}

func (r *SubmissionRepository) ListByEnrollment(ctx context.Context, enrollmentID int64) ([]models.Submission, error) {
	query := `
		SELECT ` + submissionColumns + `
		FROM submissions
		WHERE enrollment_id = $1
		ORDER BY submitted_at ASC, id ASC
	`
	rows, err := r.db.Query(ctx, query, enrollmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	submissions := make([]models.Submission, 0)
	for rows.Next() {
		var sub models.Submission
		if err := rows.Scan(
			&sub.ID,
			&sub.EnrollmentID,
			&sub.WeekNumber,
			&sub.SessionID,
			&sub.Content,
			&sub.FileURL,
			&sub.SubmittedAt,
			&sub.Feedback,
			&sub.FeedbackAt,
		); err != nil {
			return nil, err
		}
		submissions = append(submissions, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return submissions, nil
}

func scanSubmission(row interface{ Scan(dest ...any) error }) (*models.Submission, error) {
	var sub models.Submission
	err := row.Scan(
		&sub.ID,
		&sub.EnrollmentID,
		&sub.WeekNumber,
		&sub.SessionID,
		&sub.Content,
		&sub.FileURL,
		&sub.SubmittedAt,
		&sub.Feedback,
		&sub.FeedbackAt,
	)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}
