package auth

import (
	"context"
	"strings"

	"drystore-backend/internal/models"
	"drystore-backend/internal/session"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	CtxUserKey   = "user"
	CtxClaimsKey = "claims"
)

// UserLookup resolves the user record behind a token.
type UserLookup interface {
	Get(ctx context.Context, id string) (*models.User, error)
}

// JWTMiddleware accepts a bearer token only while its generation matches
// the session registry, then loads the user for the handlers.
func JWTMiddleware(secret string, users UserLookup, sessions session.Registry, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing Authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization must be 'Bearer <token>'")
		}

		claims, err := ParseToken(secret, parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}

		gen, err := sessions.Current(c.UserContext(), claims.UserID)
		if err != nil {
			log.Error("session lookup failed", zap.String("user_id", claims.UserID), zap.Error(err))
			return fiber.NewError(fiber.StatusServiceUnavailable, "session store unavailable")
		}
		if gen != claims.Generation {
			return fiber.NewError(fiber.StatusUnauthorized, "session has ended, sign in again")
		}

		user, err := users.Get(c.UserContext(), claims.UserID)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "user no longer exists")
		}

		c.Locals(CtxUserKey, user)
		c.Locals(CtxClaimsKey, claims)
		return c.Next()
	}
}

// CurrentUser returns the user set by JWTMiddleware.
func CurrentUser(c *fiber.Ctx) (*models.User, error) {
	u, ok := c.Locals(CtxUserKey).(*models.User)
	if !ok || u == nil {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "not signed in")
	}
	return u, nil
}

// Require runs a policy check against the current user, e.g.
// auth.Require(policy.CheckAdmin).
func Require(check func(*models.User) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, err := CurrentUser(c)
		if err != nil {
			return err
		}
		if err := check(u); err != nil {
			return err
		}
		return c.Next()
	}
}
