package repository

import (
	"context"

	"github.com/davian-ro/CoachSchedBack/internal/models"
)

type CreateProgramInput struct {
	CoachID            int64
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

type UpdateProgramPolicyInput struct {
	SessionDurationMin *int
	TotalSessions      *int
	MaxParticipants    *int
	Timezone           string
	BufferMin          int
	AdvanceBookingDays int
	MinNoticeHours     int
}

type CurriculumWeekInput struct {
	WeekNumber          int
	Title               string
	DurationOverrideMin *int
	DeliverablePrompt   *string
}

const programColumns = `id, coach_id, title, interaction, format, session_duration_min, total_sessions,
		max_participants, timezone, buffer_min, advance_booking_days, min_notice_hours, created_at, updated_at`

type ProgramRepository struct {
	db DBTX
}

func NewProgramRepository(db DBTX) *ProgramRepository {
	return &ProgramRepository{db: db}
}

func (r *ProgramRepository) Create(ctx context.Context, input CreateProgramInput) (*models.Program, error) {
	query := `
		INSERT INTO programs (coach_id, title, interaction, format, session_duration_min, total_sessions,
			max_participants, timezone, buffer_min, advance_booking_days, min_notice_hours)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + programColumns

	row := r.db.QueryRow(
		ctx,
		query,
		input.CoachID,
		input.Title,
		input.Interaction,
		input.Format,
		input.SessionDurationMin,
		input.TotalSessions,
		input.MaxParticipants,
		input.Timezone,
		input.BufferMin,
		input.AdvanceBookingDays,
		input.MinNoticeHours,
	)
	return scanProgram(row)
}

func (r *ProgramRepository) GetByID(ctx context.Context, programID int64) (*models.Program, error) {
	query := `SELECT ` + programColumns + ` FROM programs WHERE id = $1`
	return scanProgram(r.db.QueryRow(ctx, query, programID))
}

func (r *ProgramRepository) UpdatePolicy(ctx context.Context, programID int64, input UpdateProgramPolicyInput) (*models.Program, error) {
	query := `
		UPDATE programs
		SET session_duration_min = $2, total_sessions = $3, max_participants = $4, timezone = $5,
			buffer_min = $6, advance_booking_days = $7, min_notice_hours = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + programColumns

	row := r.db.QueryRow(
		ctx,
		query,
		programID,
		input.SessionDurationMin,
		input.TotalSessions,
		input.MaxParticipants,
		input.Timezone,
		input.BufferMin,
		input.AdvanceBookingDays,
		input.MinNoticeHours,
	)
	return scanProgram(row)
}

func (r *ProgramRepository) ListCurriculumWeeks(ctx context.Context, programID int64) ([]models.CurriculumWeek, error) {
	query := `
		SELECT id, program_id, week_number, title, duration_override_min, deliverable_prompt
		FROM program_curriculum_weeks
		WHERE program_id = $1
		ORDER BY week_number ASC
	`
	rows, err := r.db.Query(ctx, query, programID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	weeks := make([]models.CurriculumWeek, 0)
	for rows.Next() {
		var week models.CurriculumWeek
		if err := rows.Scan(
			&week.ID,
			&week.ProgramID,
			&week.WeekNumber,
			&week.Title,
			&week.DurationOverrideMin,
			&week.DeliverablePrompt,
		); err != nil {
			return nil, err
		}
		weeks = append(weeks, week)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return weeks, nil
}

// ReplaceCurriculumWeeks swaps a program's curriculum wholesale. Callers run
// it inside a transaction so readers never observe a half-written plan.
func (r *ProgramRepository) ReplaceCurriculumWeeks(ctx context.Context, programID int64, weeks []CurriculumWeekInput) ([]models.CurriculumWeek, error) {
	if _, err := r.db.Exec(ctx, `DELETE FROM program_curriculum_weeks WHERE program_id = $1`, programID); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO program_curriculum_weeks (program_id, week_number, title, duration_override_min, deliverable_prompt)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, program_id, week_number, title, duration_override_min, deliverable_prompt
	`
	inserted := make([]models.CurriculumWeek, 0, len(weeks))
	for _, input := range weeks {
		var week models.CurriculumWeek
		err := r.db.QueryRow(
			ctx,
			query,
			programID,
			input.WeekNumber,
			input.Title,
			input.DurationOverrideMin,
			input.DeliverablePrompt,
		).Scan(
			&week.ID,
			&week.ProgramID,
			&week.WeekNumber,
			&week.Title,
			&week.DurationOverrideMin,
			&week.DeliverablePrompt,
		)
		if err != nil {
			return nil, err
		}
		inserted = append(inserted, week)
	}
	return inserted, nil
}

func scanProgram(row interface{ Scan(dest ...any) error }) (*models.Program, error) {
	var program models.Program
	err := row.Scan(
		&program.ID,
		&program.CoachID,
		&program.Title,
		&program.Interaction,
		&program.Format,
		&program.SessionDurationMin,
		&program.TotalSessions,
		&program.MaxParticipants,
		&program.Timezone,
		&program.BufferMin,
		&program.AdvanceBookingDays,
		&program.MinNoticeHours,
		&program.CreatedAt,
		&program.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &program, nil
}
