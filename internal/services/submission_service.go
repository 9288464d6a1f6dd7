package services

import (
	"context"
	"strings"

	"github.com/davian-ro/CoachSchedBack/internal/models"
	"github.com/davian-ro/CoachSchedBack/internal/notify"
	"github.com/davian-ro/CoachSchedBack/internal/repository"
	"github.com/davian-ro/CoachSchedBack/internal/schedule"
)

// SubmissionService runs the deliverable loop: members submit work against a
// curriculum week or a session, coaches respond with feedback. Whether
// feedback may be rewritten after the fact is a policy knob
// (config.FeedbackOverwrite); the default refuses re-review.
type SubmissionService struct {
	programRepo       *repository.ProgramRepository
	enrollmentRepo    *repository.EnrollmentRepository
	sessionRepo       *repository.SessionRepository
	submissionRepo    *repository.SubmissionRepository
	feedbackOverwrite bool
	notifier          notify.Notifier
}

func NewSubmissionService(
	programRepo *repository.ProgramRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	sessionRepo *repository.SessionRepository,
	submissionRepo *repository.SubmissionRepository,
	feedbackOverwrite bool,
	notifier notify.Notifier,
) *SubmissionService {
	return &SubmissionService{
		programRepo:       programRepo,
		enrollmentRepo:    enrollmentRepo,
		sessionRepo:       sessionRepo,
		submissionRepo:    submissionRepo,
		feedbackOverwrite: feedbackOverwrite,
		notifier:          notifier,
	}
}

type SubmitWorkInput struct {
	EnrollmentID int64
	WeekNumber   *int
	SessionID    *int64
	Content      *string
	FileURL      *string
}

func (s *SubmissionService) SubmitWork(ctx context.Context, actorID int64, input SubmitWorkInput) (*models.Submission, error) {
	if input.EnrollmentID <= 0 {
		return nil, ErrInvalidInput
	}
	if !hasText(input.Content) && !hasText(input.FileURL) {
		return nil, ErrInvalidInput
	}

	enrollment, err := s.enrollmentRepo.GetByID(ctx, input.EnrollmentID)
	if err != nil {
		return nil, err
	}
	if enrollment.UserID != actorID {
		return nil, ErrForbidden
	}

	if input.WeekNumber != nil {
		weeks, err := s.programRepo.ListCurriculumWeeks(ctx, enrollment.ProgramID)
		if err != nil {
			return nil, err
		}
		if !weekExists(weeks, *input.WeekNumber) {
			return nil, ErrInvalidInput
		}
	}
	if input.SessionID != nil {
		session, err := s.sessionRepo.GetByID(ctx, *input.SessionID)
		if err != nil {
			return nil, err
		}
		if session.EnrollmentID == nil || *session.EnrollmentID != enrollment.ID {
			return nil, ErrInvalidInput
		}
	}

	submission, err := s.submissionRepo.Create(ctx, repository.CreateSubmissionInput{
		EnrollmentID: input.EnrollmentID,
		WeekNumber:   input.WeekNumber,
		SessionID:    input.SessionID,
		Content:      trimmed(input.Content),
		FileURL:      trimmed(input.FileURL),
	})
	if err != nil {
		return nil, err
	}

	if program, err := s.programRepo.GetByID(ctx, enrollment.ProgramID); err == nil {
		s.publish(notify.NewEvent(notify.EventSubmissionReceived, program.ID, 0, "work submitted", program.CoachID))
	}
	return submission, nil
}

// ReviewWork attaches coach feedback to a submission. Once feedback_at is
// set the submission is considered reviewed and further reviews are refused,
// unless the overwrite policy is enabled.
func (s *SubmissionService) ReviewWork(ctx context.Context, actorID, submissionID int64, feedback string) (*models.Submission, error) {
	feedback = strings.TrimSpace(feedback)
	if feedback == "" {
		return nil, ErrInvalidInput
	}

	submission, err := s.submissionRepo.GetByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	enrollment, err := s.enrollmentRepo.GetByID(ctx, submission.EnrollmentID)
	if err != nil {
		return nil, err
	}
	program, err := s.programRepo.GetByID(ctx, enrollment.ProgramID)
	if err != nil {
		return nil, err
	}
	if actorID != program.CoachID {
		return nil, ErrForbidden
	}
	if submission.FeedbackAt != nil && !s.feedbackOverwrite {
		return nil, ErrInvalidStateTransition
	}

	reviewed, err := s.submissionRepo.SetFeedback(ctx, submissionID, feedback)
	if err != nil {
		return nil, err
	}

	s.publish(notify.NewEvent(notify.EventFeedbackGiven, program.ID, 0, "feedback posted", enrollment.UserID))
	return reviewed, nil
}

// EnrollmentProgress is the read-only projection the member dashboard
// renders: where the enrollment stands in the curriculum and against its
// credits. CurrentWeek is derived on every call from session state.
type EnrollmentProgress struct {
	EnrollmentID     int64                   `json:"enrollment_id"`
	CurrentWeek      int                     `json:"current_week"`
	SessionsUsed     int                     `json:"sessions_used"`
	SessionsIncluded *int                    `json:"sessions_included"`
	Weeks            []models.CurriculumWeek `json:"weeks"`
	Sessions         []models.Session        `json:"sessions"`
	Submissions      []models.Submission     `json:"submissions"`
}

func (s *SubmissionService) GetProgress(ctx context.Context, actorID, enrollmentID int64) (*EnrollmentProgress, error) {
	enrollment, err := s.enrollmentRepo.GetByID(ctx, enrollmentID)
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

	weeks, err := s.programRepo.ListCurriculumWeeks(ctx, program.ID)
	if err != nil {
		return nil, err
	}
	sessions, err := s.sessionRepo.ListByEnrollment(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	submissions, err := s.submissionRepo.ListByEnrollment(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}

	return &EnrollmentProgress{
		EnrollmentID:     enrollmentID,
		CurrentWeek:      schedule.CurrentWeek(weeks, sessions),
		SessionsUsed:     enrollment.SessionsUsed,
		SessionsIncluded: schedule.SessionsIncluded(*enrollment),
		Weeks:            weeks,
		Sessions:         sessions,
		Submissions:      submissions,
	}, nil
}

func (s *SubmissionService) publish(event notify.Event) {
	if s.notifier != nil {
		s.notifier.Publish(event)
	}
}

func hasText(value *string) bool {
	return value != nil && strings.TrimSpace(*value) != ""
}

func trimmed(value *string) *string {
	if !hasText(value) {
		return nil
	}
	text := strings.TrimSpace(*value)
	return &text
}
