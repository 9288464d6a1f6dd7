package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/davian-ro/CoachSchedBack/pkg/utils"
)

// The two roles this service knows. Tokens are minted by the identity
// service; anything else in the role claim is rejected at the door instead
// of being passed to handlers that compare against these values.
const (
	RoleCoach  = "coach"
	RoleMember = "member"
)

// AuthRequired validates the bearer token and stashes the actor's id and
// role in Locals for parseActorID/actorRole on the handler side.
func AuthRequired(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" {
			return unauthorized(c, "missing authorization header")
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return unauthorized(c, "invalid authorization header format")
		}

		claims, err := utils.ValidateToken(token, secret)
		if err != nil {
			return unauthorized(c, "invalid or expired token")
		}
		if claims.Role != RoleCoach && claims.Role != RoleMember {
			return unauthorized(c, "unknown role")
		}

		c.Locals("user_id", claims.UserID)
		c.Locals("role", claims.Role)

		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": message,
	})
}
