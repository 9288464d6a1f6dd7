package services

import (
	"context"
	"time"

	"github.com/davian-ro/CoachSchedBack/internal/models"
	"github.com/davian-ro/CoachSchedBack/internal/notify"
	"github.com/davian-ro/CoachSchedBack/internal/repository"
	"github.com/davian-ro/CoachSchedBack/internal/schedule"
)

// CohortService is the group-format variant of scheduling. Cohort sessions
// are placed directly by the coach: no slot grid, no exclusivity, no credit
// movement. Capacity is enforced when members register, not here.
type CohortService struct {
	programRepo *repository.ProgramRepository
	cohortRepo  *repository.CohortRepository
	sessionRepo *repository.SessionRepository
	notifier    notify.Notifier
}

func NewCohortService(
	programRepo *repository.ProgramRepository,
	cohortRepo *repository.CohortRepository,
	sessionRepo *repository.SessionRepository,
	notifier notify.Notifier,
) *CohortService {
	return &CohortService{
		programRepo: programRepo,
		cohortRepo:  cohortRepo,
		sessionRepo: sessionRepo,
		notifier:    notifier,
	}
}

type CreateCohortInput struct {
	Name            string
	StartDate       time.Time
	EndDate         *time.Time
	MaxParticipants *int
}

func (s *CohortService) CreateCohort(ctx context.Context, actorID, programID int64, input CreateCohortInput) (*models.Cohort, error) {
	program, err := s.programRepo.GetByID(ctx, programID)
	if err != nil {
		return nil, err
	}
	if actorID != program.CoachID {
		return nil, ErrForbidden
	}
	if program.Format != models.FormatGroupCohort {
		return nil, ErrInvalidInput
	}
	if input.Name == "" || input.StartDate.IsZero() {
		return nil, ErrInvalidInput
	}
	if input.EndDate != nil && input.EndDate.Before(input.StartDate) {
		return nil, ErrInvalidInput
	}
	if input.MaxParticipants != nil && *input.MaxParticipants <= 0 {
		return nil, ErrInvalidInput
	}

	return s.cohortRepo.Create(ctx, repository.CreateCohortInput{
		ProgramID:       programID,
		Name:            input.Name,
		StartDate:       input.StartDate,
		EndDate:         input.EndDate,
		MaxParticipants: input.MaxParticipants,
	})
}

type AddGroupSessionInput struct {
	StartsAt   time.Time
	WeekNumber *int
}

// AddGroupSession schedules a session for a cohort. The session has no owning
// enrollment; participants attach later through registration.
func (s *CohortService) AddGroupSession(ctx context.Context, actorID, cohortID int64, input AddGroupSessionInput) (*models.Session, error) {
	cohort, err := s.cohortRepo.GetByID(ctx, cohortID)
	if err != nil {
		return nil, err
	}
	program, err := s.programRepo.GetByID(ctx, cohort.ProgramID)
	if err != nil {
		return nil, err
	}
	if actorID != program.CoachID {
		return nil, ErrForbidden
	}

	now := time.Now().UTC()
	startsAt := input.StartsAt.UTC()
	if !startsAt.After(now) {
		return nil, ErrInvalidInput
	}
	if cohort.EndDate != nil && startsAt.After(cohort.EndDate.AddDate(0, 0, 1)) {
		return nil, ErrInvalidInput
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

	session, err := s.sessionRepo.Create(ctx, repository.CreateSessionInput{
		ProgramID:  program.ID,
		CohortID:   &cohort.ID,
		StartsAt:   startsAt,
		EndsAt:     startsAt.Add(time.Duration(duration) * time.Minute),
		Timezone:   program.Timezone,
		WeekNumber: input.WeekNumber,
	})
	if err != nil {
		return nil, err
	}

	s.publish(notify.NewEvent(notify.EventSessionBooked, program.ID, session.ID, "group session added", program.CoachID))
	return session, nil
}

func (s *CohortService) ListCohorts(ctx context.Context, programID int64) ([]models.Cohort, error) {
	return s.cohortRepo.ListByProgram(ctx, programID)
}

func (s *CohortService) publish(event notify.Event) {
	if s.notifier != nil {
		s.notifier.Publish(event)
	}
}
