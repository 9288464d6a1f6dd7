package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/davian-ro/CoachSchedBack/internal/models"
	"github.com/davian-ro/CoachSchedBack/internal/repository"
	"github.com/davian-ro/CoachSchedBack/internal/services"
)

type stubProgramService struct {
	createResult  *models.Program
	createErr     error
	rulesResult   []models.AvailabilityRule
	rulesErr      error
	blackoutErr   error
	lastActorID   int64
	lastProgramID int64
	lastCreate    services.CreateProgramInput
	lastRules     []services.WeeklyRuleInput
	lastBlackout  services.BlackoutInput
}

func (s *stubProgramService) CreateProgram(_ context.Context, coachID int64, input services.CreateProgramInput) (*models.Program, error) {
	s.lastActorID = coachID
	s.lastCreate = input
	return s.createResult, s.createErr
}

func (s *stubProgramService) GetProgram(_ context.Context, programID int64) (*models.Program, error) {
	s.lastProgramID = programID
	return s.createResult, s.createErr
}

func (s *stubProgramService) UpdatePolicy(_ context.Context, actorID, programID int64, input repository.UpdateProgramPolicyInput) (*models.Program, error) {
	s.lastActorID = actorID
	s.lastProgramID = programID
	return s.createResult, s.createErr
}

func (s *stubProgramService) ReplaceRules(_ context.Context, actorID, programID int64, rules []services.WeeklyRuleInput) ([]models.AvailabilityRule, error) {
	s.lastActorID = actorID
	s.lastProgramID = programID
	s.lastRules = rules
	return s.rulesResult, s.rulesErr
}

func (s *stubProgramService) AddBlackout(_ context.Context, actorID int64, input services.BlackoutInput) (*models.BlackoutPeriod, error) {
	s.lastActorID = actorID
	s.lastBlackout = input
	if s.blackoutErr != nil {
		return nil, s.blackoutErr
	}
	return &models.BlackoutPeriod{ID: 1, CoachID: actorID, ProgramID: input.ProgramID}, nil
}

func (s *stubProgramService) RemoveBlackout(_ context.Context, actorID, blackoutID int64) error {
	s.lastActorID = actorID
	return s.blackoutErr
}

func (s *stubProgramService) ReplaceCurriculum(_ context.Context, actorID, programID int64, weeks []services.CurriculumWeekInput) ([]models.CurriculumWeek, error) {
	s.lastActorID = actorID
	s.lastProgramID = programID
	return nil, nil
}

type stubCohortService struct {
	cohortResult  *models.Cohort
	cohortErr     error
	sessionResult *models.Session
	sessionErr    error
	lastActorID   int64
	lastCohortID  int64
	lastInput     services.AddGroupSessionInput
}

func (s *stubCohortService) CreateCohort(_ context.Context, actorID, programID int64, input services.CreateCohortInput) (*models.Cohort, error) {
	s.lastActorID = actorID
	return s.cohortResult, s.cohortErr
}

func (s *stubCohortService) AddGroupSession(_ context.Context, actorID, cohortID int64, input services.AddGroupSessionInput) (*models.Session, error) {
	s.lastActorID = actorID
	s.lastCohortID = cohortID
	s.lastInput = input
	return s.sessionResult, s.sessionErr
}

func (s *stubCohortService) ListCohorts(_ context.Context, programID int64) ([]models.Cohort, error) {
	return nil, nil
}

func newProgramApp(programs *stubProgramService, cohorts *stubCohortService, role string) *fiber.App {
	handler := &ProgramHandler{programs: programs, cohorts: cohorts}
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("role", role)
		c.Locals("user_id", "7")
		return c.Next()
	})
	app.Post("/api/v1/programs", handler.Create)
	app.Put("/api/v1/programs/:id/rules", handler.ReplaceRules)
	app.Post("/api/v1/programs/:id/blackouts", handler.AddBlackout)
	app.Post("/api/v1/programs/:id/cohorts", handler.CreateCohort)
	app.Post("/api/v1/cohorts/:id/sessions", handler.AddGroupSession)
	return app
}

func TestCreateProgramRequiresCoach(t *testing.T) {
	app := newProgramApp(&stubProgramService{}, &stubCohortService{}, "member")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/programs", strings.NewReader(`{"title":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestCreateProgramForwardsInput(t *testing.T) {
	service := &stubProgramService{
		createResult: &models.Program{ID: 3, CoachID: 7, Title: "Strength block"},
	}
	app := newProgramApp(service, &stubCohortService{}, "coach")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/programs", strings.NewReader(`{
		"title": "Strength block",
		"interaction": "one_on_one",
		"format": "fixed_package",
		"session_duration_minutes": 60,
		"total_sessions": 8,
		"timezone": "Europe/Berlin",
		"buffer_minutes": 15,
		"advance_booking_days": 30,
		"min_notice_hours": 24
	}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastActorID != 7 {
		t.Fatalf("expected coach id 7, got %d", service.lastActorID)
	}
	if service.lastCreate.Format != models.FormatFixedPackage {
		t.Fatalf("expected fixed_package, got %q", service.lastCreate.Format)
	}
	if service.lastCreate.Timezone != "Europe/Berlin" {
		t.Fatalf("expected timezone forwarded, got %q", service.lastCreate.Timezone)
	}
	if service.lastCreate.SessionDurationMin == nil || *service.lastCreate.SessionDurationMin != 60 {
		t.Fatalf("expected 60 minute duration, got %v", service.lastCreate.SessionDurationMin)
	}
}

func TestReplaceRulesParsesClockTimes(t *testing.T) {
	service := &stubProgramService{
		rulesResult: []models.AvailabilityRule{{ID: 1, ProgramID: 3, DayOfWeek: 1, StartMin: 540, EndMin: 720}},
	}
	app := newProgramApp(service, &stubCohortService{}, "coach")

	req := httptest.NewRequest(http.MethodPut, "/api/v1/programs/3/rules", strings.NewReader(`{
		"rules": [
			{"day_of_week": 1, "start_time": "09:00", "end_time": "12:00"}
		]
	}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if len(service.lastRules) != 1 {
		t.Fatalf("expected 1 rule forwarded, got %d", len(service.lastRules))
	}
	if service.lastRules[0].StartMin != 540 || service.lastRules[0].EndMin != 720 {
		t.Fatalf("expected 540-720, got %d-%d", service.lastRules[0].StartMin, service.lastRules[0].EndMin)
	}
}

func TestReplaceRulesRejectsBadClock(t *testing.T) {
	app := newProgramApp(&stubProgramService{}, &stubCohortService{}, "coach")

	req := httptest.NewRequest(http.MethodPut, "/api/v1/programs/3/rules", strings.NewReader(`{
		"rules": [
			{"day_of_week": 1, "start_time": "9am", "end_time": "noon"}
		]
	}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestAddBlackoutScopesToProgramByDefault(t *testing.T) {
	service := &stubProgramService{}
	app := newProgramApp(service, &stubCohortService{}, "coach")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/programs/3/blackouts", strings.NewReader(`{
		"start_date": "2026-07-01",
		"end_date": "2026-07-14"
	}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastBlackout.ProgramID == nil || *service.lastBlackout.ProgramID != 3 {
		t.Fatalf("expected program-scoped blackout, got %v", service.lastBlackout.ProgramID)
	}
	want := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	if !service.lastBlackout.StartDate.Equal(want) {
		t.Fatalf("expected start %v, got %v", want, service.lastBlackout.StartDate)
	}
}

func TestAddBlackoutCoachWide(t *testing.T) {
	service := &stubProgramService{}
	app := newProgramApp(service, &stubCohortService{}, "coach")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/programs/3/blackouts", strings.NewReader(`{
		"start_date": "2026-07-01",
		"end_date": "2026-07-14",
		"coach_wide": true
	}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastBlackout.ProgramID != nil {
		t.Fatalf("expected coach-wide blackout, got program %v", *service.lastBlackout.ProgramID)
	}
}

func TestAddGroupSessionForwardsCohort(t *testing.T) {
	starts := time.Date(2026, 4, 6, 18, 0, 0, 0, time.UTC)
	cohorts := &stubCohortService{
		sessionResult: &models.Session{ID: 44, StartsAt: starts, Status: models.SessionScheduled},
	}
	app := newProgramApp(&stubProgramService{}, cohorts, "coach")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cohorts/9/sessions", strings.NewReader(`{
		"starts_at": "2026-04-06T18:00:00Z",
		"week_number": 1
	}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if cohorts.lastCohortID != 9 {
		t.Fatalf("expected cohort id 9, got %d", cohorts.lastCohortID)
	}
	if !cohorts.lastInput.StartsAt.Equal(starts) {
		t.Fatalf("expected start forwarded, got %v", cohorts.lastInput.StartsAt)
	}

	var body struct {
		Session models.Session `json:"session"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if body.Session.ID != 44 {
		t.Fatalf("expected session 44, got %d", body.Session.ID)
	}
}
