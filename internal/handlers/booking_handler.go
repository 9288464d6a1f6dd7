package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/davian-ro/CoachSchedBack/internal/models"
	"github.com/davian-ro/CoachSchedBack/internal/services"
)

type bookingApplicationService interface {
	Book1on1(ctx context.Context, actorID int64, input services.BookSessionInput) (*models.Session, error)
	RegisterForSession(ctx context.Context, actorID, sessionID int64) (*models.SessionAttendee, error)
	CancelGroupRegistration(ctx context.Context, actorID, sessionID int64) error
}

type BookingHandler struct {
	service bookingApplicationService
}

func NewBookingHandler(service *services.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

type bookSessionRequest struct {
	EnrollmentID int64  `json:"enrollment_id"`
	StartsAt     string `json:"starts_at"`
	WeekNumber   *int   `json:"week_number"`
}

func (h *BookingHandler) Book(c *fiber.Ctx) error {
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req bookSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	startsAt, err := time.Parse(time.RFC3339, strings.TrimSpace(req.StartsAt))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "starts_at must be a valid RFC3339 timestamp"})
	}
	if req.WeekNumber != nil && *req.WeekNumber <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "week_number must be greater than 0"})
	}

	session, err := h.service.Book1on1(c.Context(), actorID, services.BookSessionInput{
		EnrollmentID: req.EnrollmentID,
		StartsAt:     startsAt,
		WeekNumber:   req.WeekNumber,
	})
	if err != nil {
		return mapBookingError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"session": session})
}

func (h *BookingHandler) Register(c *fiber.Ctx) error {
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	sessionID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	attendee, err := h.service.RegisterForSession(c.Context(), actorID, sessionID)
	if err != nil {
		return mapBookingError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"attendee": attendee})
}

func (h *BookingHandler) Unregister(c *fiber.Ctx) error {
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	sessionID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	if err := h.service.CancelGroupRegistration(c.Context(), actorID, sessionID); err != nil {
		return mapBookingError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// mapBookingError translates the booking taxonomy onto HTTP. SlotUnavailable
// and Conflict land on 409: expected, retryable outcomes of concurrent use
// that clients answer by re-fetching slots and trying again.
func mapBookingError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrEnrollmentInactive):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrCreditExhausted):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrSlotUnavailable):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error(), "retryable": true})
	case errors.Is(err, services.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error(), "retryable": true})
	case errors.Is(err, services.ErrInvalidStateTransition):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process booking"})
	}
}
