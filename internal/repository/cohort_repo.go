package repository

import (
	"context"
	"time"

	"github.com/davian-ro/CoachSchedBack/internal/models"
)

type CreateCohortInput struct {
	ProgramID       int64
	Name            string
	StartDate       time.Time
	EndDate         *time.Time
	MaxParticipants *int
}

type CohortRepository struct {
	db DBTX
}

func NewCohortRepository(db DBTX) *CohortRepository {
	return &CohortRepository{db: db}
}

func (r *CohortRepository) Create(ctx context.Context, input CreateCohortInput) (*models.Cohort, error) {
	query := `
		INSERT INTO cohorts (program_id, name, start_date, end_date, max_participants)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, program_id, name, start_date, end_date, max_participants, created_at
	`
	var cohort models.Cohort
	err := r.db.QueryRow(ctx, query, input.ProgramID, input.Name, input.StartDate, input.EndDate, input.MaxParticipants).Scan(
		&cohort.ID,
		&cohort.ProgramID,
		&cohort.Name,
		&cohort.StartDate,
		&cohort.EndDate,
		&cohort.MaxParticipants,
		&cohort.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &cohort, nil
}

func (r *CohortRepository) GetByID(ctx context.Context, cohortID int64) (*models.Cohort, error) {
	query := `
		SELECT id, program_id, name, start_date, end_date, max_participants, created_at
		FROM cohorts
		WHERE id = $1
	`
	var cohort models.Cohort
	err := r.db.QueryRow(ctx, query, cohortID).Scan(
		&cohort.ID,
		&cohort.ProgramID,
		&cohort.Name,
		&cohort.StartDate,
		&cohort.EndDate,
		&cohort.MaxParticipants,
		&cohort.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &cohort, nil
}

func (r *CohortRepository) ListByProgram(ctx context.Context, programID int64) ([]models.Cohort, error) {
	query := `
		SELECT id, program_id, name, start_date, end_date, max_participants, created_at
		FROM cohorts
		WHERE program_id = $1
		ORDER BY start_date ASC, id ASC
	`
	rows, err := r.db.Query(ctx, query, programID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cohorts := make([]models.Cohort, 0)
	for rows.Next() {
		var cohort models.Cohort
		if err := rows.Scan(
			&cohort.ID,
			&cohort.ProgramID,
			&cohort.Name,
			&cohort.StartDate,
			&cohort.EndDate,
			&cohort.MaxParticipants,
			&cohort.CreatedAt,
		); err != nil {
			return nil, err
		}
		cohorts = append(cohorts, cohort)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cohorts, nil
}
