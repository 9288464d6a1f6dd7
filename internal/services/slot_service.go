package services

import (
	"context"
	"fmt"
	"time"

	"github.com/davian-ro/CoachSchedBack/internal/models"
	"github.com/davian-ro/CoachSchedBack/internal/schedule"
)

type programReader interface {
	GetByID(ctx context.Context, programID int64) (*models.Program, error)
	ListCurriculumWeeks(ctx context.Context, programID int64) ([]models.CurriculumWeek, error)
}

type availabilityReader interface {
	ListRules(ctx context.Context, programID int64) ([]models.AvailabilityRule, error)
	ListBlackouts(ctx context.Context, coachID, programID int64) ([]models.BlackoutPeriod, error)
}

type scheduledSessionReader interface {
	ListScheduledInRange(ctx context.Context, programID int64, from, to time.Time) ([]models.Session, error)
}

// SlotService answers the read-only half of the booking contract: which slots
// look bookable right now. Results are advisory; the booking transaction
// re-validates everything at commit time.
type SlotService struct {
	programRepo      programReader
	availabilityRepo availabilityReader
	sessionRepo      scheduledSessionReader
}

func NewSlotService(programRepo programReader, availabilityRepo availabilityReader, sessionRepo scheduledSessionReader) *SlotService {
	return &SlotService{
		programRepo:      programRepo,
		availabilityRepo: availabilityRepo,
		sessionRepo:      sessionRepo,
	}
}

// GetAvailableSlots lists the open slots of one civil date, in the program's
// timezone. A program with no duration, no rule for the weekday, or a
// blacked-out date yields an empty list, never an error; so does a date in
// the past.
func (s *SlotService) GetAvailableSlots(ctx context.Context, programID int64, dateStr string, weekNumber *int) ([]models.Slot, error) {
	program, err := s.programRepo.GetByID(ctx, programID)
	if err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(program.Timezone)
	if err != nil {
		return nil, fmt.Errorf("program %d has invalid timezone %q: %w", program.ID, program.Timezone, err)
	}

	date, err := schedule.ParseDate(dateStr, loc)
	if err != nil {
		return nil, ErrInvalidInput
	}

	weeks, err := s.programRepo.ListCurriculumWeeks(ctx, programID)
	if err != nil {
		return nil, err
	}
	duration := schedule.WeekDuration(*program, weeks, weekNumber)
	if duration <= 0 {
		return []models.Slot{}, nil
	}

	rules, err := s.availabilityRepo.ListRules(ctx, programID)
	if err != nil {
		return nil, err
	}
	blackouts, err := s.availabilityRepo.ListBlackouts(ctx, program.CoachID, programID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	policy := schedule.Policy{
		DurationMin:        duration,
		BufferMin:          program.BufferMin,
		MinNoticeHours:     program.MinNoticeHours,
		AdvanceBookingDays: program.AdvanceBookingDays,
	}

	candidates := make([]models.Slot, 0)
	for _, window := range schedule.WindowsFor(rules, blackouts, loc, date) {
		candidates = append(candidates, schedule.SlotsInWindow(window, now, policy)...)
	}
	if len(candidates) == 0 {
		return []models.Slot{}, nil
	}

	buffer := time.Duration(program.BufferMin) * time.Minute
	existing, err := s.sessionRepo.ListScheduledInRange(
		ctx,
		programID,
		candidates[0].StartsAt.Add(-buffer),
		candidates[len(candidates)-1].EndsAt.Add(buffer),
	)
	if err != nil {
		return nil, err
	}

	return schedule.FilterConflicts(candidates, existing, program.BufferMin), nil
}

// GetAvailableMonth returns the dates of a month that might carry slots. It
// deliberately ignores existing bookings: a day-granularity calendar hint,
// not a promise that GetAvailableSlots will return anything.
func (s *SlotService) GetAvailableMonth(ctx context.Context, programID int64, year int, month int) ([]string, error) {
	if month < 1 || month > 12 || year < 1 {
		return nil, ErrInvalidInput
	}

	program, err := s.programRepo.GetByID(ctx, programID)
	if err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(program.Timezone)
	if err != nil {
		return nil, fmt.Errorf("program %d has invalid timezone %q: %w", program.ID, program.Timezone, err)
	}

	rules, err := s.availabilityRepo.ListRules(ctx, programID)
	if err != nil {
		return nil, err
	}
	blackouts, err := s.availabilityRepo.ListBlackouts(ctx, program.CoachID, programID)
	if err != nil {
		return nil, err
	}

	weeks, err := s.programRepo.ListCurriculumWeeks(ctx, programID)
	if err != nil {
		return nil, err
	}
	policy := schedule.Policy{
		DurationMin:        schedule.WeekDuration(*program, weeks, nil),
		BufferMin:          program.BufferMin,
		MinNoticeHours:     program.MinNoticeHours,
		AdvanceBookingDays: program.AdvanceBookingDays,
	}

	return schedule.AvailableDays(rules, blackouts, loc, year, time.Month(month), time.Now().UTC(), policy), nil
}
