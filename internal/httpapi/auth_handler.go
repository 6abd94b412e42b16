package httpapi

import (
	"drystore-backend/internal/auth"
	"drystore-backend/internal/hierarchy"
	"drystore-backend/internal/models"
	"drystore-backend/internal/session"
	"drystore-backend/internal/users"
	"drystore-backend/internal/workspace"

	"github.com/gofiber/fiber/v2"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/auth/register-admin
func RegisterAdminHandler(svc *users.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body credentialsRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		u, err := svc.BootstrapAdmin(c.UserContext(), body.Email, body.Password)
		if err != nil {
			return err
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":    u.ID,
			"email": u.Email,
			"role":  u.Role,
		})
	}
}

// POST /api/auth/login
func LoginHandler(svc *users.Service, sessions session.Registry, secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body credentialsRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		u, err := svc.Authenticate(c.UserContext(), body.Email, body.Password)
		if err != nil {
			return err
		}

		gen, err := sessions.Current(c.UserContext(), u.ID)
		if err != nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "session store unavailable")
		}
		token, err := auth.GenerateToken(secret, u, gen)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not issue token")
		}

		return c.JSON(fiber.Map{
			"token": token,
			"user":  u,
		})
	}
}

// GET /api/auth/me
func MeHandler(h *hierarchy.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		resp := fiber.Map{
			"id":    u.ID,
			"email": u.Email,
			"role":  u.Role,
		}
		if u.Role == models.RoleCounter {
			if ref, ok := u.Assignment(); ok {
				resp["floorId"] = ref.FloorID
				resp["counterId"] = ref.CounterID
				if counter, err := h.Counter(c.UserContext(), ref.CounterID); err == nil {
					resp["floor"] = counter.FloorName
					resp["counter"] = counter.Name
				}
			}
		}
		return c.JSON(resp)
	}
}

// POST /api/auth/logout
func LogoutHandler(sessions session.Registry, ws *workspace.Workspace) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		if _, err := sessions.Revoke(c.UserContext(), u.ID); err != nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "session store unavailable")
		}
		ws.Reset(u.ID)
		return c.SendStatus(fiber.StatusNoContent)
	}
}
