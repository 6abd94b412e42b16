package httpapi

import (
	"fmt"

	"drystore-backend/internal/audit"
	"drystore-backend/internal/auth"
	"drystore-backend/internal/hierarchy"
	"drystore-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type nameRequest struct {
	Name string `json:"name"`
}

// GET /api/floors
func ListFloorsHandler(h *hierarchy.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		floors, err := hierarchy.Collect(h.Floors(c.UserContext()))
		if err != nil {
			return err
		}
		return c.JSON(floors)
	}
}

// GET /api/floors/:id/counters
func ListCountersHandler(h *hierarchy.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		counters, err := hierarchy.Collect(h.CountersForFloor(c.UserContext(), c.Params("id")))
		if err != nil {
			return err
		}
		return c.JSON(counters)
	}
}

// POST /api/admin/floors
func CreateFloorHandler(h *hierarchy.Service, a *audit.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body nameRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		floor, err := h.AddFloor(c.UserContext(), body.Name)
		if err != nil {
			return err
		}

		recordAudit(c, a, "floor", floor.ID, models.AuditActionCreate,
			fmt.Sprintf("floor created: %s", floor.Name), nil, floor)
		return c.Status(fiber.StatusCreated).JSON(floor)
	}
}

// DELETE /api/admin/floors/:id
func DeleteFloorHandler(h *hierarchy.Service, a *audit.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		floor, err := h.Floor(c.UserContext(), id)
		if err != nil {
			return err
		}
		if err := h.DeleteFloor(c.UserContext(), id); err != nil {
			return err
		}

		recordAudit(c, a, "floor", id, models.AuditActionDelete,
			fmt.Sprintf("floor deleted: %s", floor.Name), floor, nil)
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// POST /api/admin/floors/:id/counters
func CreateCounterHandler(h *hierarchy.Service, a *audit.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body nameRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		counter, err := h.AddCounter(c.UserContext(), c.Params("id"), body.Name)
		if err != nil {
			return err
		}

		recordAudit(c, a, "counter", counter.ID, models.AuditActionCreate,
			fmt.Sprintf("counter created: %s / %s", counter.FloorName, counter.Name), nil, counter)
		return c.Status(fiber.StatusCreated).JSON(counter)
	}
}

// DELETE /api/admin/counters/:id
func DeleteCounterHandler(h *hierarchy.Service, a *audit.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		counter, err := h.Counter(c.UserContext(), id)
		if err != nil {
			return err
		}
		if err := h.DeleteCounter(c.UserContext(), id); err != nil {
			return err
		}

		recordAudit(c, a, "counter", id, models.AuditActionDelete,
			fmt.Sprintf("counter deleted: %s / %s", counter.FloorName, counter.Name), counter, nil)
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func recordAudit(c *fiber.Ctx, a *audit.Service, entityType, entityID string, action models.AuditAction, desc string, before, after any) {
	if a == nil {
		return
	}
	u, err := auth.CurrentUser(c)
	if err != nil {
		return
	}
	a.Record(c.UserContext(), audit.LogOptions{
		UserID:      u.ID,
		UserEmail:   u.Email,
		EntityType:  entityType,
		EntityID:    entityID,
		Action:      action,
		Description: desc,
		Before:      before,
		After:       after,
	})
}
