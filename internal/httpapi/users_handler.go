package httpapi

import (
	"fmt"
	"strconv"

	"drystore-backend/internal/audit"
	"drystore-backend/internal/auth"
	"drystore-backend/internal/models"
	"drystore-backend/internal/users"

	"github.com/gofiber/fiber/v2"
)

// POST /api/admin/users
func CreateUserHandler(svc *users.Service, a *audit.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		var body users.CreateRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		u, err := svc.Create(c.UserContext(), actor, body)
		if err != nil {
			return err
		}

		recordAudit(c, a, "user", u.ID, models.AuditActionCreate,
			fmt.Sprintf("user created: %s (%s)", u.Email, u.Role), nil, u)
		return c.Status(fiber.StatusCreated).JSON(u)
	}
}

// GET /api/admin/users
func ListUsersHandler(svc *users.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		list, err := svc.List(c.UserContext(), actor)
		if err != nil {
			return err
		}
		return c.JSON(list)
	}
}

// GET /api/admin/audit-logs
func ListAuditLogsHandler(a *audit.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f := audit.ListFilter{
			EntityType: c.Query("entity_type"),
			EntityID:   c.Query("entity_id"),
			UserID:     c.Query("user_id"),
		}
		if s := c.Query("limit"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "invalid limit")
			}
			f.Limit = n
		}

		logs, err := a.List(c.UserContext(), f)
		if err != nil {
			return err
		}
		return c.JSON(logs)
	}
}
