package repository

import (
	"context"
	"time"

	"github.com/davian-ro/CoachSchedBack/internal/models"
)

type AvailabilityRuleInput struct {
	DayOfWeek int
	StartMin  int
	EndMin    int
}

type CreateBlackoutInput struct {
	CoachID   int64
	ProgramID *int64
	StartDate time.Time
	EndDate   time.Time
}

type AvailabilityRepository struct {
	db DBTX
}

func NewAvailabilityRepository(db DBTX) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

func (r *AvailabilityRepository) ListRules(ctx context.Context, programID int64) ([]models.AvailabilityRule, error) {
	query := `
		SELECT id, program_id, day_of_week, start_min, end_min
		FROM availability_rules
		WHERE program_id = $1
		ORDER BY day_of_week ASC
	`
	rows, err := r.db.Query(ctx, query, programID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rules := make([]models.AvailabilityRule, 0)
	for rows.Next() {
		var rule models.AvailabilityRule
		if err := rows.Scan(&rule.ID, &rule.ProgramID, &rule.DayOfWeek, &rule.StartMin, &rule.EndMin); err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rules, nil
}

// ReplaceRules swaps a program's weekly rules wholesale. The unique
// (program_id, day_of_week) constraint keeps at most one rule per weekday.
func (r *AvailabilityRepository) ReplaceRules(ctx context.Context, programID int64, rules []AvailabilityRuleInput) ([]models.AvailabilityRule, error) {
	if _, err := r.db.Exec(ctx, `DELETE FROM availability_rules WHERE program_id = $1`, programID); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO availability_rules (program_id, day_of_week, start_min, end_min)
		VALUES ($1, $2, $3, $4)
		RETURNING id, program_id, day_of_week, start_min, end_min
	`
	inserted := make([]models.AvailabilityRule, 0, len(rules))
	for _, input := range rules {
		var rule models.AvailabilityRule
		err := r.db.QueryRow(ctx, query, programID, input.DayOfWeek, input.StartMin, input.EndMin).
			Scan(&rule.ID, &rule.ProgramID, &rule.DayOfWeek, &rule.StartMin, &rule.EndMin)
		if err != nil {
			return nil, err
		}
		inserted = append(inserted, rule)
	}
	return inserted, nil
}

// ListBlackouts returns the blackouts that apply to a program: its own plus
// any coach-wide ones (program_id IS NULL) from the owning coach.
func (r *AvailabilityRepository) ListBlackouts(ctx context.Context, coachID, programID int64) ([]models.BlackoutPeriod, error) {
	query := `
		SELECT id, coach_id, program_id, start_date, end_date
		FROM blackout_periods
		WHERE coach_id = $1 AND (program_id IS NULL OR program_id = $2)
		ORDER BY start_date ASC, id ASC
	`
	rows, err := r.db.Query(ctx, query, coachID, programID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	blackouts := make([]models.BlackoutPeriod, 0)
	for rows.Next() {
		var b models.BlackoutPeriod
		if err := rows.Scan(&b.ID, &b.CoachID, &b.ProgramID, &b.StartDate, &b.EndDate); err != nil {
			return nil, err
		}
		blackouts = append(blackouts, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return blackouts, nil
}

func (r *AvailabilityRepository) CreateBlackout(ctx context.Context, input CreateBlackoutInput) (*models.BlackoutPeriod, error) {
	query := `
		INSERT INTO blackout_periods (coach_id, program_id, start_date, end_date)
		VALUES ($1, $2, $3, $4)
		RETURNING id, coach_id, program_id, start_date, end_date
	`
	var b models.BlackoutPeriod
	err := r.db.QueryRow(ctx, query, input.CoachID, input.ProgramID, input.StartDate, input.EndDate).
		Scan(&b.ID, &b.CoachID, &b.ProgramID, &b.StartDate, &b.EndDate)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *AvailabilityRepository) GetBlackout(ctx context.Context, blackoutID int64) (*models.BlackoutPeriod, error) {
	query := `
		SELECT id, coach_id, program_id, start_date, end_date
		FROM blackout_periods
		WHERE id = $1
	`
	var b models.BlackoutPeriod
	err := r.db.QueryRow(ctx, query, blackoutID).
		Scan(&b.ID, &b.CoachID, &b.ProgramID, &b.StartDate, &b.EndDate)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *AvailabilityRepository) DeleteBlackout(ctx context.Context, blackoutID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM blackout_periods WHERE id = $1`, blackoutID)
	return err
}
