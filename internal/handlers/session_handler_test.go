package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/davian-ro/CoachSchedBack/internal/models"
	"github.com/davian-ro/CoachSchedBack/internal/services"
)

type stubSessionService struct {
	cancelResult     *models.Session
	cancelErr        error
	rescheduleResult *models.Session
	rescheduleErr    error
	completeResult   *models.Session
	completeErr      error
	getResult        *models.Session
	getErr           error
	listResult       []models.Session
	listErr          error
	lastActorID      int64
	lastRole         string
	lastSessionID    int64
	lastReason       *string
	lastStartsAt     time.Time
}

func (s *stubSessionService) CancelSession(_ context.Context, actorID, sessionID int64, reason *string) (*models.Session, error) {
	s.lastActorID = actorID
	s.lastSessionID = sessionID
	s.lastReason = reason
	return s.cancelResult, s.cancelErr
}

func (s *stubSessionService) RescheduleSession(_ context.Context, actorID, sessionID int64, newStartsAt time.Time) (*models.Session, error) {
	s.lastActorID = actorID
	s.lastSessionID = sessionID
	s.lastStartsAt = newStartsAt
	return s.rescheduleResult, s.rescheduleErr
}

func (s *stubSessionService) CompleteSession(_ context.Context, actorID, sessionID int64) (*models.Session, error) {
	s.lastActorID = actorID
	s.lastSessionID = sessionID
	return s.completeResult, s.completeErr
}

func (s *stubSessionService) GetSession(_ context.Context, actorID int64, role string, sessionID int64) (*models.Session, error) {
	s.lastActorID = actorID
	s.lastRole = role
	s.lastSessionID = sessionID
	return s.getResult, s.getErr
}

func (s *stubSessionService) ListSessions(_ context.Context, actorID int64, role string) ([]models.Session, error) {
	s.lastActorID = actorID
	s.lastRole = role
	return s.listResult, s.listErr
}

func newSessionApp(service *stubSessionService, role string) *fiber.App {
	handler := &SessionHandler{service: service}
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("role", role)
		c.Locals("user_id", "42")
		return c.Next()
	})
	app.Get("/api/v1/sessions", handler.List)
	app.Get("/api/v1/sessions/:id", handler.Get)
	app.Post("/api/v1/sessions/:id/cancel", handler.Cancel)
	app.Post("/api/v1/sessions/:id/reschedule", handler.Reschedule)
	app.Post("/api/v1/sessions/:id/complete", handler.Complete)
	return app
}

func TestCancelForwardsReason(t *testing.T) {
	service := &stubSessionService{
		cancelResult: &models.Session{ID: 5, Status: models.SessionCancelled},
	}
	app := newSessionApp(service, "member")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/5/cancel", strings.NewReader(`{"reason":"illness"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastSessionID != 5 {
		t.Fatalf("expected session id 5, got %d", service.lastSessionID)
	}
	if service.lastReason == nil || *service.lastReason != "illness" {
		t.Fatalf("expected forwarded reason, got %v", service.lastReason)
	}
}

func TestCancelWithoutBodyIsAccepted(t *testing.T) {
	service := &stubSessionService{
		cancelResult: &models.Session{ID: 5, Status: models.SessionCancelled},
	}
	app := newSessionApp(service, "member")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/5/cancel", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastReason != nil {
		t.Fatalf("expected nil reason, got %v", service.lastReason)
	}
}

func TestCancelTwiceReturnsUnprocessable(t *testing.T) {
	service := &stubSessionService{cancelErr: services.ErrInvalidStateTransition}
	app := newSessionApp(service, "member")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/5/cancel", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestRescheduleParsesTimestamp(t *testing.T) {
	starts := time.Date(2026, 3, 17, 10, 15, 0, 0, time.UTC)
	service := &stubSessionService{
		rescheduleResult: &models.Session{ID: 5, StartsAt: starts, Status: models.SessionScheduled},
	}
	app := newSessionApp(service, "member")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/5/reschedule", strings.NewReader(`{"starts_at":"2026-03-17T10:15:00Z"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !service.lastStartsAt.Equal(starts) {
		t.Fatalf("expected forwarded start %v, got %v", starts, service.lastStartsAt)
	}
}

func TestRescheduleRejectsBadTimestamp(t *testing.T) {
	service := &stubSessionService{}
	app := newSessionApp(service, "member")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/5/reschedule", strings.NewReader(`{"starts_at":"soon"}`))
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

func TestRescheduleMapsStaleSlotToConflict(t *testing.T) {
	service := &stubSessionService{rescheduleErr: services.ErrSlotUnavailable}
	app := newSessionApp(service, "member")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/5/reschedule", strings.NewReader(`{"starts_at":"2026-03-17T10:15:00Z"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestListPassesRole(t *testing.T) {
	service := &stubSessionService{
		listResult: []models.Session{{ID: 1, Status: models.SessionScheduled}},
	}
	app := newSessionApp(service, "coach")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastRole != "coach" {
		t.Fatalf("expected coach role forwarded, got %q", service.lastRole)
	}

	var body struct {
		Sessions []models.Session `json:"sessions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(body.Sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(body.Sessions))
	}
}

func TestGetSessionReturnsNotFound(t *testing.T) {
	service := &stubSessionService{getErr: pgx.ErrNoRows}
	app := newSessionApp(service, "member")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/999", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestCompleteMapsForbidden(t *testing.T) {
	service := &stubSessionService{completeErr: services.ErrForbidden}
	app := newSessionApp(service, "member")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/5/complete", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestMapSessionErrorDefaultsToInternalServerError(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return mapSessionError(c, errors.New("boom"))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
}
