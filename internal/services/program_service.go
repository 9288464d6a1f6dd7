package services

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/davian-ro/CoachSchedBack/internal/models"
	"github.com/davian-ro/CoachSchedBack/internal/repository"
)

// ProgramService manages the coach-facing configuration the scheduling engine
// reads: the program's commercial format and timing policy, weekly
// availability rules, blackout periods, and the curriculum plan.
type ProgramService struct {
	db               *pgxpool.Pool
	programRepo      *repository.ProgramRepository
	availabilityRepo *repository.AvailabilityRepository
}

func NewProgramService(
	db *pgxpool.Pool,
	programRepo *repository.ProgramRepository,
	availabilityRepo *repository.AvailabilityRepository,
) *ProgramService {
	return &ProgramService{
		db:               db,
		programRepo:      programRepo,
		availabilityRepo: availabilityRepo,
	}
}

type CreateProgramInput struct {
	Title              string
	Interaction        models.InteractionType
	Format             models.ProgramFormat
	SessionDurationMin *int
	TotalSessions      *int
	MaxParticipants    *int
	Timezone           string
	BufferMin          int
	AdvanceBookingDays int
	MinNoticeHours     int
}

func (s *ProgramService) CreateProgram(ctx context.Context, coachID int64, input CreateProgramInput) (*models.Program, error) {
	if err := validateProgramInput(input); err != nil {
		return nil, err
	}

	return s.programRepo.Create(ctx, repository.CreateProgramInput{
		CoachID:            coachID,
		Title:              input.Title,
		Interaction:        input.Interaction,
		Format:             input.Format,
		SessionDurationMin: input.SessionDurationMin,
		TotalSessions:      input.TotalSessions,
		MaxParticipants:    input.MaxParticipants,
		Timezone:           input.Timezone,
		BufferMin:          input.BufferMin,
		AdvanceBookingDays: input.AdvanceBookingDays,
		MinNoticeHours:     input.MinNoticeHours,
	})
}

func (s *ProgramService) GetProgram(ctx context.Context, programID int64) (*models.Program, error) {
	return s.programRepo.GetByID(ctx, programID)
}

// UpdatePolicy changes a program's scheduling configuration. Identity fields
// (coach, interaction, format) are immutable after creation.
func (s *ProgramService) UpdatePolicy(ctx context.Context, actorID, programID int64, input repository.UpdateProgramPolicyInput) (*models.Program, error) {
	program, err := s.requireCoach(ctx, actorID, programID)
	if err != nil {
		return nil, err
	}
	if input.SessionDurationMin != nil && *input.SessionDurationMin <= 0 {
		return nil, ErrInvalidInput
	}
	if input.BufferMin < 0 || input.AdvanceBookingDays <= 0 || input.MinNoticeHours < 0 {
		return nil, ErrInvalidInput
	}
	if input.Timezone == "" {
		return nil, ErrInvalidInput
	}
	if _, err := time.LoadLocation(input.Timezone); err != nil {
		return nil, ErrInvalidInput
	}
	return s.programRepo.UpdatePolicy(ctx, program.ID, input)
}

type WeeklyRuleInput struct {
	DayOfWeek int
	StartMin  int
	EndMin    int
}

// ReplaceRules swaps the weekly availability of a program. At most one rule
// per weekday; the whole set is replaced atomically so slot queries never see
// a partial week.
func (s *ProgramService) ReplaceRules(ctx context.Context, actorID, programID int64, rules []WeeklyRuleInput) ([]models.AvailabilityRule, error) {
	if _, err := s.requireCoach(ctx, actorID, programID); err != nil {
		return nil, err
	}

	seen := make(map[int]bool, len(rules))
	inputs := make([]repository.AvailabilityRuleInput, 0, len(rules))
	for _, rule := range rules {
		if rule.DayOfWeek < 0 || rule.DayOfWeek > 6 {
			return nil, ErrInvalidInput
		}
		if rule.StartMin < 0 || rule.EndMin > 24*60 || rule.StartMin >= rule.EndMin {
			return nil, ErrInvalidInput
		}
		if seen[rule.DayOfWeek] {
			return nil, ErrInvalidInput
		}
		seen[rule.DayOfWeek] = true
		inputs = append(inputs, repository.AvailabilityRuleInput{
			DayOfWeek: rule.DayOfWeek,
			StartMin:  rule.StartMin,
			EndMin:    rule.EndMin,
		})
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	replaced, err := repository.NewAvailabilityRepository(tx).ReplaceRules(ctx, programID, inputs)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return replaced, nil
}

type BlackoutInput struct {
	ProgramID *int64
	StartDate time.Time
	EndDate   time.Time
}

// AddBlackout removes a date range from availability, either for one program
// or coach-wide when no program is given.
func (s *ProgramService) AddBlackout(ctx context.Context, actorID int64, input BlackoutInput) (*models.BlackoutPeriod, error) {
	if input.StartDate.IsZero() || input.EndDate.Before(input.StartDate) {
		return nil, ErrInvalidInput
	}
	if input.ProgramID != nil {
		if _, err := s.requireCoach(ctx, actorID, *input.ProgramID); err != nil {
			return nil, err
		}
	}

	return s.availabilityRepo.CreateBlackout(ctx, repository.CreateBlackoutInput{
		CoachID:   actorID,
		ProgramID: input.ProgramID,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
	})
}

func (s *ProgramService) RemoveBlackout(ctx context.Context, actorID, blackoutID int64) error {
	blackout, err := s.availabilityRepo.GetBlackout(ctx, blackoutID)
	if err != nil {
		return err
	}
	if blackout.CoachID != actorID {
		return ErrForbidden
	}
	return s.availabilityRepo.DeleteBlackout(ctx, blackoutID)
}

type CurriculumWeekInput struct {
	WeekNumber          int
	Title               string
	DurationOverrideMin *int
	DeliverablePrompt   *string
}

// ReplaceCurriculum swaps the program's week plan. Week numbers must be
// unique and positive; overrides must be positive durations.
func (s *ProgramService) ReplaceCurriculum(ctx context.Context, actorID, programID int64, weeks []CurriculumWeekInput) ([]models.CurriculumWeek, error) {
	if _, err := s.requireCoach(ctx, actorID, programID); err != nil {
		return nil, err
	}

	seen := make(map[int]bool, len(weeks))
	inputs := make([]repository.CurriculumWeekInput, 0, len(weeks))
	for _, week := range weeks {
		if week.WeekNumber <= 0 || seen[week.WeekNumber] {
			return nil, ErrInvalidInput
		}
		if week.DurationOverrideMin != nil && *week.DurationOverrideMin <= 0 {
			return nil, ErrInvalidInput
		}
		seen[week.WeekNumber] = true
		inputs = append(inputs, repository.CurriculumWeekInput{
			WeekNumber:          week.WeekNumber,
			Title:               week.Title,
			DurationOverrideMin: week.DurationOverrideMin,
			DeliverablePrompt:   week.DeliverablePrompt,
		})
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	replaced, err := repository.NewProgramRepository(tx).ReplaceCurriculumWeeks(ctx, programID, inputs)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return replaced, nil
}

func (s *ProgramService) requireCoach(ctx context.Context, actorID, programID int64) (*models.Program, error) {
	program, err := s.programRepo.GetByID(ctx, programID)
	if err != nil {
		return nil, err
	}
	if program.CoachID != actorID {
		return nil, ErrForbidden
	}
	return program, nil
}

func validateProgramInput(input CreateProgramInput) error {
	if input.Title == "" || !input.Format.Valid() {
		return ErrInvalidInput
	}
	switch input.Interaction {
	case models.InteractionOneOnOne:
		if input.Format.Group() {
			return ErrInvalidInput
		}
	case models.InteractionGroup:
		if !input.Format.Group() {
			return ErrInvalidInput
		}
	default:
		return ErrInvalidInput
	}
	if input.Format == models.FormatFixedPackage && (input.TotalSessions == nil || *input.TotalSessions <= 0) {
		return ErrInvalidInput
	}
	if input.SessionDurationMin != nil && *input.SessionDurationMin <= 0 {
		return ErrInvalidInput
	}
	if input.BufferMin < 0 || input.AdvanceBookingDays <= 0 || input.MinNoticeHours < 0 {
		return ErrInvalidInput
	}
	if input.Timezone == "" {
		return ErrInvalidInput
	}
	if _, err := time.LoadLocation(input.Timezone); err != nil {
		return ErrInvalidInput
	}
	return nil
}
