package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

var errInvalidActor = errors.New("invalid actor")

// parseActorID reads the authenticated user id placed in Locals by the auth
// middleware. Tokens carry the id as a string.
func parseActorID(c *fiber.Ctx) (int64, error) {
	raw, ok := c.Locals("user_id").(string)
	if !ok {
		return 0, errInvalidActor
	}
	actorID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || actorID <= 0 {
		return 0, errInvalidActor
	}
	return actorID, nil
}

func actorRole(c *fiber.Ctx) string {
	role, _ := c.Locals("role").(string)
	return role
}

func parseIDParam(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidActor
	}
	return id, nil
}
