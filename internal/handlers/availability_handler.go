package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/davian-ro/CoachSchedBack/internal/models"
	"github.com/davian-ro/CoachSchedBack/internal/services"
)

type slotQueryService interface {
	GetAvailableSlots(ctx context.Context, programID int64, date string, weekNumber *int) ([]models.Slot, error)
	GetAvailableMonth(ctx context.Context, programID int64, year, month int) ([]string, error)
}

type AvailabilityHandler struct {
	service slotQueryService
}

func NewAvailabilityHandler(service *services.SlotService) *AvailabilityHandler {
	return &AvailabilityHandler{service: service}
}

func (h *AvailabilityHandler) GetSlots(c *fiber.Ctx) error {
	programID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid program id"})
	}

	date := strings.TrimSpace(c.Query("date"))
	if date == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "date query parameter is required"})
	}

	var weekNumber *int
	if raw := strings.TrimSpace(c.Query("week")); raw != "" {
		week, err := strconv.Atoi(raw)
		if err != nil || week <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "week must be a positive integer"})
		}
		weekNumber = &week
	}

	slots, err := h.service.GetAvailableSlots(c.Context(), programID, date, weekNumber)
	if err != nil {
		return mapAvailabilityError(c, err)
	}
	return c.JSON(fiber.Map{"slots": slots})
}

func (h *AvailabilityHandler) GetAvailableMonth(c *fiber.Ctx) error {
	programID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid program id"})
	}

	year, err := strconv.Atoi(strings.TrimSpace(c.Query("year")))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "year query parameter is required"})
	}
	month, err := strconv.Atoi(strings.TrimSpace(c.Query("month")))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "month query parameter is required"})
	}

	days, err := h.service.GetAvailableMonth(c.Context(), programID, year, month)
	if err != nil {
		return mapAvailabilityError(c, err)
	}
	return c.JSON(fiber.Map{"days": days})
}

func mapAvailabilityError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Program not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load availability"})
	}
}
