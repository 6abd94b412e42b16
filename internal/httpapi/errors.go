package httpapi

import (
	"errors"

	"drystore-backend/internal/apperr"
	"drystore-backend/internal/report"
	"drystore-backend/internal/users"
	"drystore-backend/internal/workspace"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorHandler answers every error as {"error": msg} with a status derived
// from its kind.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		switch {
		case errors.As(err, &fe):
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		case errors.Is(err, workspace.ErrStale):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, report.ErrNoRecords):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No records found"})
		case errors.Is(err, users.ErrInvalidCredentials):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
		}

		if kind := apperr.KindOf(err); kind != "" {
			if kind == apperr.KindExternalService {
				log.Error("collaborator failed", zap.String("path", c.Path()), zap.Error(err))
			}
			return c.Status(apperr.HTTPStatus(kind)).JSON(fiber.Map{
				"error": err.Error(),
				"kind":  kind,
			})
		}

		log.Error("unexpected error", zap.String("path", c.Path()), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "unexpected server error",
		})
	}
}
