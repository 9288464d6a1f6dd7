package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/davian-ro/CoachSchedBack/internal/models"
	"github.com/davian-ro/CoachSchedBack/internal/repository"
	"github.com/davian-ro/CoachSchedBack/internal/schedule"
	"github.com/davian-ro/CoachSchedBack/internal/services"
)

type programApplicationService interface {
	CreateProgram(ctx context.Context, coachID int64, input services.CreateProgramInput) (*models.Program, error)
	GetProgram(ctx context.Context, programID int64) (*models.Program, error)
	UpdatePolicy(ctx context.Context, actorID, programID int64, input repository.UpdateProgramPolicyInput) (*models.Program, error)
	ReplaceRules(ctx context.Context, actorID, programID int64, rules []services.WeeklyRuleInput) ([]models.AvailabilityRule, error)
	AddBlackout(ctx context.Context, actorID int64, input services.BlackoutInput) (*models.BlackoutPeriod, error)
	RemoveBlackout(ctx context.Context, actorID, blackoutID int64) error
	ReplaceCurriculum(ctx context.Context, actorID, programID int64, weeks []services.CurriculumWeekInput) ([]models.CurriculumWeek, error)
}

type cohortApplicationService interface {
	CreateCohort(ctx context.Context, actorID, programID int64, input services.CreateCohortInput) (*models.Cohort, error)
	AddGroupSession(ctx context.Context, actorID, cohortID int64, input services.AddGroupSessionInput) (*models.Session, error)
	ListCohorts(ctx context.Context, programID int64) ([]models.Cohort, error)
}

type ProgramHandler struct {
	programs programApplicationService
	cohorts  cohortApplicationService
}

func NewProgramHandler(programs *services.ProgramService, cohorts *services.CohortService) *ProgramHandler {
	return &ProgramHandler{programs: programs, cohorts: cohorts}
}

type createProgramRequest struct {
	Title              string `json:"title"`
	Interaction        string `json:"interaction"`
	Format             string `json:"format"`
	SessionDurationMin *int   `json:"session_duration_minutes"`
	TotalSessions      *int   `json:"total_sessions"`
	MaxParticipants    *int   `json:"max_participants"`
	Timezone           string `json:"timezone"`
	BufferMin          int    `json:"buffer_minutes"`
	AdvanceBookingDays int    `json:"advance_booking_days"`
	MinNoticeHours     int    `json:"min_notice_hours"`
}

func (h *ProgramHandler) Create(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != "coach" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req createProgramRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	program, err := h.programs.CreateProgram(c.Context(), actorID, services.CreateProgramInput{
		Title:              strings.TrimSpace(req.Title),
		Interaction:        models.InteractionType(req.Interaction),
		Format:             models.ProgramFormat(req.Format),
		SessionDurationMin: req.SessionDurationMin,
		TotalSessions:      req.TotalSessions,
		MaxParticipants:    req.MaxParticipants,
		Timezone:           strings.TrimSpace(req.Timezone),
		BufferMin:          req.BufferMin,
		AdvanceBookingDays: req.AdvanceBookingDays,
		MinNoticeHours:     req.MinNoticeHours,
	})
	if err != nil {
		return mapProgramError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"program": program})
}

func (h *ProgramHandler) Get(c *fiber.Ctx) error {
	programID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid program id"})
	}

	program, err := h.programs.GetProgram(c.Context(), programID)
	if err != nil {
		return mapProgramError(c, err)
	}
	return c.JSON(fiber.Map{"program": program})
}

type updatePolicyRequest struct {
	SessionDurationMin *int   `json:"session_duration_minutes"`
	TotalSessions      *int   `json:"total_sessions"`
	MaxParticipants    *int   `json:"max_participants"`
	Timezone           string `json:"timezone"`
	BufferMin          int    `json:"buffer_minutes"`
	AdvanceBookingDays int    `json:"advance_booking_days"`
	MinNoticeHours     int    `json:"min_notice_hours"`
}

func (h *ProgramHandler) UpdatePolicy(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != "coach" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	programID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid program id"})
	}

	var req updatePolicyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	program, err := h.programs.UpdatePolicy(c.Context(), actorID, programID, repository.UpdateProgramPolicyInput{
		SessionDurationMin: req.SessionDurationMin,
		TotalSessions:      req.TotalSessions,
		MaxParticipants:    req.MaxParticipants,
		Timezone:           strings.TrimSpace(req.Timezone),
		BufferMin:          req.BufferMin,
		AdvanceBookingDays: req.AdvanceBookingDays,
		MinNoticeHours:     req.MinNoticeHours,
	})
	if err != nil {
		return mapProgramError(c, err)
	}
	return c.JSON(fiber.Map{"program": program})
}

type weeklyRuleRequest struct {
	DayOfWeek int    `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type replaceRulesRequest struct {
	Rules []weeklyRuleRequest `json:"rules"`
}

func (h *ProgramHandler) ReplaceRules(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != "coach" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	programID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid program id"})
	}

	var req replaceRulesRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	rules := make([]services.WeeklyRuleInput, 0, len(req.Rules))
	for _, rule := range req.Rules {
		startMin, err := schedule.ParseClock(rule.StartTime)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "start_time must be HH:MM"})
		}
		endMin, err := schedule.ParseClock(rule.EndTime)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "end_time must be HH:MM"})
		}
		rules = append(rules, services.WeeklyRuleInput{
			DayOfWeek: rule.DayOfWeek,
			StartMin:  startMin,
			EndMin:    endMin,
		})
	}

	replaced, err := h.programs.ReplaceRules(c.Context(), actorID, programID, rules)
	if err != nil {
		return mapProgramError(c, err)
	}
	return c.JSON(fiber.Map{"rules": replaced})
}

type blackoutRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	CoachWide bool   `json:"coach_wide"`
}

func (h *ProgramHandler) AddBlackout(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != "coach" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	programID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid program id"})
	}

	var req blackoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	startDate, err := time.Parse(schedule.DateLayout, strings.TrimSpace(req.StartDate))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "start_date must be YYYY-MM-DD"})
	}
	endDate, err := time.Parse(schedule.DateLayout, strings.TrimSpace(req.EndDate))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "end_date must be YYYY-MM-DD"})
	}

	input := services.BlackoutInput{StartDate: startDate, EndDate: endDate}
	if !req.CoachWide {
		input.ProgramID = &programID
	}

	blackout, err := h.programs.AddBlackout(c.Context(), actorID, input)
	if err != nil {
		return mapProgramError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"blackout": blackout})
}

func (h *ProgramHandler) RemoveBlackout(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != "coach" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	blackoutID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid blackout id"})
	}

	if err := h.programs.RemoveBlackout(c.Context(), actorID, blackoutID); err != nil {
		return mapProgramError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type curriculumWeekRequest struct {
	WeekNumber          int     `json:"week_number"`
	Title               string  `json:"title"`
	DurationOverrideMin *int    `json:"duration_override_minutes"`
	DeliverablePrompt   *string `json:"deliverable_prompt"`
}

type replaceCurriculumRequest struct {
	Weeks []curriculumWeekRequest `json:"weeks"`
}

func (h *ProgramHandler) ReplaceCurriculum(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != "coach" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	programID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid program id"})
	}

	var req replaceCurriculumRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	weeks := make([]services.CurriculumWeekInput, 0, len(req.Weeks))
	for _, week := range req.Weeks {
		weeks = append(weeks, services.CurriculumWeekInput{
			WeekNumber:          week.WeekNumber,
			Title:               strings.TrimSpace(week.Title),
			DurationOverrideMin: week.DurationOverrideMin,
			DeliverablePrompt:   week.DeliverablePrompt,
		})
	}

	replaced, err := h.programs.ReplaceCurriculum(c.Context(), actorID, programID, weeks)
	if err != nil {
		return mapProgramError(c, err)
	}
	return c.JSON(fiber.Map{"weeks": replaced})
}

type createCohortRequest struct {
	Name            string  `json:"name"`
	StartDate       string  `json:"start_date"`
	EndDate         *string `json:"end_date"`
	MaxParticipants *int    `json:"max_participants"`
}

func (h *ProgramHandler) CreateCohort(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != "coach" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	programID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid program id"})
	}

	var req createCohortRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	startDate, err := time.Parse(schedule.DateLayout, strings.TrimSpace(req.StartDate))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "start_date must be YYYY-MM-DD"})
	}
	var endDate *time.Time
	if req.EndDate != nil && strings.TrimSpace(*req.EndDate) != "" {
		parsed, err := time.Parse(schedule.DateLayout, strings.TrimSpace(*req.EndDate))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "end_date must be YYYY-MM-DD"})
		}
		endDate = &parsed
	}

	cohort, err := h.cohorts.CreateCohort(c.Context(), actorID, programID, services.CreateCohortInput{
		Name:            strings.TrimSpace(req.Name),
		StartDate:       startDate,
		EndDate:         endDate,
		MaxParticipants: req.MaxParticipants,
	})
	if err != nil {
		return mapProgramError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"cohort": cohort})
}

func (h *ProgramHandler) ListCohorts(c *fiber.Ctx) error {
	programID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid program id"})
	}

	cohorts, err := h.cohorts.ListCohorts(c.Context(), programID)
	if err != nil {
		return mapProgramError(c, err)
	}
	return c.JSON(fiber.Map{"cohorts": cohorts})
}

type addGroupSessionRequest struct {
	StartsAt   string `json:"starts_at"`
	WeekNumber *int   `json:"week_number"`
}

func (h *ProgramHandler) AddGroupSession(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != "coach" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	cohortID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid cohort id"})
	}

	var req addGroupSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	startsAt, err := time.Parse(time.RFC3339, strings.TrimSpace(req.StartsAt))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "starts_at must be a valid RFC3339 timestamp"})
	}

	session, err := h.cohorts.AddGroupSession(c.Context(), actorID, cohortID, services.AddGroupSessionInput{
		StartsAt:   startsAt,
		WeekNumber: req.WeekNumber,
	})
	if err != nil {
		return mapProgramError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"session": session})
}

func mapProgramError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process program request"})
	}
}
