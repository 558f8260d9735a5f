// Package middleware holds the fiber middlewares: the three role gates and
// request logging. Every protected route resolves its actor here; the
// services behind it trust the attached identity completely.
package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/docpoint/booking-api/auth"
	"github.com/docpoint/booking-api/models"
)

const (
	actorIDKey   = "actorID"
	actorRoleKey = "actorRole"
)

// DoctorChecker verifies a doctor id still resolves to a live record.
type DoctorChecker interface {
	FindDoctorByID(ctx context.Context, id primitive.ObjectID) (*models.Doctor, error)
}

// ActorID returns the authenticated actor's id attached by a role gate.
func ActorID(c *fiber.Ctx) primitive.ObjectID {
	id, _ := c.Locals(actorIDKey).(primitive.ObjectID)
	return id
}

// ActorRole returns the authenticated actor's role attached by a role gate.
func ActorRole(c *fiber.Ctx) string {
	role, _ := c.Locals(actorRoleKey).(string)
	return role
}

func bearerToken(c *fiber.Ctx) (string, bool) {
	header := c.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	return strings.TrimPrefix(header, "Bearer "), true
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"message": "Not authorized. Login again.",
	})
}

// RequireUser admits requests carrying a valid patient token. The referenced
// user is deliberately not re-checked against the collection; only the
// signature vouches for the id.
func RequireUser(tokens *auth.Tokens) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := verifyRole(c, tokens, auth.RolePatient)
		if !ok {
			return unauthorized(c)
		}
		id, err := primitive.ObjectIDFromHex(claims.Subject)
		if err != nil {
			return unauthorized(c)
		}
		c.Locals(actorIDKey, id)
		c.Locals(actorRoleKey, auth.RolePatient)
		return c.Next()
	}
}

// RequireDoctor admits requests carrying a valid doctor token whose id still
// resolves to an existing doctor, so tokens for deleted doctors go stale.
func RequireDoctor(tokens *auth.Tokens, doctors DoctorChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := verifyRole(c, tokens, auth.RoleDoctor)
		if !ok {
			return unauthorized(c)
		}
		id, err := primitive.ObjectIDFromHex(claims.Subject)
		if err != nil {
			return unauthorized(c)
		}
		if _, err := doctors.FindDoctorByID(c.Context(), id); err != nil {
			return unauthorized(c)
		}
		c.Locals(actorIDKey, id)
		c.Locals(actorRoleKey, auth.RoleDoctor)
		return c.Next()
	}
}

// RequireAdmin admits requests carrying a valid admin token whose subject
// matches the configured admin email.
func RequireAdmin(tokens *auth.Tokens, adminEmail string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := verifyRole(c, tokens, auth.RoleAdmin)
		if !ok {
			return unauthorized(c)
		}
		if claims.Subject != adminEmail {
			return unauthorized(c)
		}
		c.Locals(actorRoleKey, auth.RoleAdmin)
		return c.Next()
	}
}

func verifyRole(c *fiber.Ctx, tokens *auth.Tokens, role string) (*auth.Claims, bool) {
	token, ok := bearerToken(c)
	if !ok {
		return nil, false
	}
	claims, err := tokens.Verify(token)
	if err != nil || claims.Role != role {
		return nil, false
	}
	return claims, true
}
