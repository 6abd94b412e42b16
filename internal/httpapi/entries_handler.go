package httpapi

import (
	"fmt"
	"mime"
	"strings"

	"drystore-backend/internal/audit"
	"drystore-backend/internal/auth"
	"drystore-backend/internal/entries"
	"drystore-backend/internal/filter"
	"drystore-backend/internal/hierarchy"
	"drystore-backend/internal/models"
	"drystore-backend/internal/report"
	"drystore-backend/internal/workspace"

	"github.com/gofiber/fiber/v2"
)

// POST /api/entries
func CreateEntryHandler(svc *entries.Service, a *audit.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		var body entries.SaveRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		e, err := svc.Save(c.UserContext(), u, body)
		if err != nil {
			return err
		}

		recordAudit(c, a, "entry", e.ID, models.AuditActionCreate,
			fmt.Sprintf("entry saved: %s / %s on %s (%d rows)", e.FloorName, e.CounterName, e.Date, len(e.Rows)),
			nil, e)
		return c.Status(fiber.StatusCreated).JSON(e)
	}
}

// GET /api/entries/mine
func MyEntriesHandler(svc *entries.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		list, err := svc.History(c.UserContext(), u)
		if err != nil {
			return err
		}
		return c.JSON(list)
	}
}

// GET /api/entries
func ListEntriesHandler(ws *workspace.Workspace, h *hierarchy.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		f, err := parseFilter(c, h)
		if err != nil {
			return err
		}

		res, err := ws.Query(c.UserContext(), u, f)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"entries":        res.Entries,
			"count":          len(res.Entries),
			"counterDropped": res.Plan.CounterDropped,
		})
	}
}

// GET /api/entries/selection
func SelectionHandler(ws *workspace.Workspace) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		f, ok := ws.Selection(u.ID)
		return c.JSON(fiber.Map{
			"filter":   f,
			"selected": ok,
		})
	}
}

// GET /api/entries/:id
func GetEntryHandler(svc *entries.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		e, err := svc.Get(c.UserContext(), u, c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(e)
	}
}

// GET /api/entries/:id/pdf
func EntryPDFHandler(svc *entries.Service, r *report.Renderer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		e, err := svc.Get(c.UserContext(), u, c.Params("id"))
		if err != nil {
			return err
		}

		artifact, err := r.Render(c.UserContext(), report.FormatPDF, []models.Entry{*e})
		if err != nil {
			return err
		}
		return sendArtifact(c, artifact)
	}
}

// GET /api/reports/:format (pdf or xlsx)
func ExportHandler(ws *workspace.Workspace, h *hierarchy.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		format, err := report.ParseFormat(c.Params("format"))
		if err != nil {
			return err
		}
		f, err := parseFilter(c, h)
		if err != nil {
			return err
		}

		artifact, err := ws.Export(c.UserContext(), u, f, format)
		if err != nil {
			return err
		}
		return sendArtifact(c, artifact)
	}
}

// parseFilter reads the manager filter from the query string. Floors and
// counters can be given by id or by name; a counter always needs the floor
// it was picked under.
func parseFilter(c *fiber.Ctx, h *hierarchy.Service) (filter.Filter, error) {
	ctx := c.UserContext()
	f := filter.Filter{
		FloorID:  strings.TrimSpace(c.Query("floor_id")),
		DateFrom: strings.TrimSpace(c.Query("date_from")),
		DateTo:   strings.TrimSpace(c.Query("date_to")),
	}

	if name := strings.TrimSpace(c.Query("floor")); name != "" && f.FloorID == "" {
		floor, err := h.FloorByName(ctx, name)
		if err != nil {
			return f, err
		}
		f.FloorID = floor.ID
	}

	counterID := strings.TrimSpace(c.Query("counter_id"))
	counterFloorID := strings.TrimSpace(c.Query("counter_floor_id"))
	if counterID != "" {
		if counterFloorID == "" {
			return f, fiber.NewError(fiber.StatusBadRequest, "counter_floor_id is required with counter_id")
		}
		f.Counter = &models.CounterRef{FloorID: counterFloorID, CounterID: counterID}
		return f, nil
	}

	counterName := strings.TrimSpace(c.Query("counter"))
	counterFloor := strings.TrimSpace(c.Query("counter_floor"))
	if counterName != "" {
		if counterFloor == "" {
			return f, fiber.NewError(fiber.StatusBadRequest, "counter_floor is required with counter")
		}
		counter, err := h.ResolveCounter(ctx, counterFloor, counterName)
		if err != nil {
			return f, err
		}
		ref := counter.Ref()
		f.Counter = &ref
	}
	return f, nil
}

// sendArtifact quotes the filename; counter names may carry any character.
func sendArtifact(c *fiber.Ctx, a *report.Artifact) error {
	c.Set(fiber.HeaderContentType, a.ContentType)
	c.Set(fiber.HeaderContentDisposition, mime.FormatMediaType("attachment", map[string]string{"filename": a.Filename}))
	return c.Send(a.Data)
}
