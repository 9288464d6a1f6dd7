package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/davian-ro/CoachSchedBack/internal/models"
	"github.com/davian-ro/CoachSchedBack/internal/services"
)

type submissionApplicationService interface {
	SubmitWork(ctx context.Context, actorID int64, input services.SubmitWorkInput) (*models.Submission, error)
	ReviewWork(ctx context.Context, actorID, submissionID int64, feedback string) (*models.Submission, error)
	GetProgress(ctx context.Context, actorID, enrollmentID int64) (*services.EnrollmentProgress, error)
}

type SubmissionHandler struct {
	service submissionApplicationService
}

func NewSubmissionHandler(service *services.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{service: service}
}

type submitWorkRequest struct {
	EnrollmentID int64   `json:"enrollment_id"`
	WeekNumber   *int    `json:"week_number"`
	SessionID    *int64  `json:"session_id"`
	Content      *string `json:"content"`
	FileURL      *string `json:"file_url"`
}

type reviewWorkRequest struct {
	Feedback string `json:"feedback"`
}

func (h *SubmissionHandler) Submit(c *fiber.Ctx) error {
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req submitWorkRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	submission, err := h.service.SubmitWork(c.Context(), actorID, services.SubmitWorkInput{
		EnrollmentID: req.EnrollmentID,
		WeekNumber:   req.WeekNumber,
		SessionID:    req.SessionID,
		Content:      req.Content,
		FileURL:      req.FileURL,
	})
	if err != nil {
		return mapSubmissionError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"submission": submission})
}

func (h *SubmissionHandler) Review(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != "coach" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	submissionID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid submission id"})
	}

	var req reviewWorkRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if strings.TrimSpace(req.Feedback) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "feedback must not be empty"})
	}

	submission, err := h.service.ReviewWork(c.Context(), actorID, submissionID, req.Feedback)
	if err != nil {
		return mapSubmissionError(c, err)
	}
	return c.JSON(fiber.Map{"submission": submission})
}

func (h *SubmissionHandler) Progress(c *fiber.Ctx) error {
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	enrollmentID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid enrollment id"})
	}

	progress, err := h.service.GetProgress(c.Context(), actorID, enrollmentID)
	if err != nil {
		return mapSubmissionError(c, err)
	}
	return c.JSON(fiber.Map{"progress": progress})
}

func mapSubmissionError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrInvalidStateTransition):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "submission has already been reviewed"})
	case errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process submission"})
	}
}
