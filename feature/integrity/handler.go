package integrity

import (
	"errors"

	"nodegrid/core/logger"
	"nodegrid/feature/integrity/checks"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for integrity checks.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the integrity routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/integrity")
	group.Get("/", h.HandleIntegrityCheck)
	group.Get("/shape", h.HandleShapeCheck)
	group.Get("/slots", h.HandleSlotCheck)
	group.Get("/storage", h.HandleStorageCheck)
	group.Get("/schema", h.HandleSchemaCheck)
}

// HandleIntegrityCheck runs every check.
// @Summary Run All Integrity Checks
// @Description Performs the shape, slot, storage and schema checks.
// @Tags integrity
// @Produce json
// @Success 200 {object} map[string]interface{} "Combined Report"
// @Router /integrity [get]
func (h *Handler) HandleIntegrityCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Triggering all integrity checks")

	ctx := c.Context()
	report := make(map[string]any)

	if r, err := h.service.CheckShape(ctx); err != nil {
		report["shape"] = outcome(err)
	} else {
		report["shape"] = r
	}
	if r, err := h.service.CheckSlots(ctx); err != nil {
		report["slots"] = outcome(err)
	} else {
		report["slots"] = r
	}
	if r, err := h.service.CheckStorage(ctx); err != nil {
		report["storage"] = outcome(err)
	} else {
		report["storage"] = r
	}
	if r, err := h.service.CheckSchema(); err != nil {
		report["schema"] = outcome(err)
	} else {
		report["schema"] = r
	}

	return c.JSON(report)
}

// HandleShapeCheck runs the shape check.
func (h *Handler) HandleShapeCheck(c *fiber.Ctx) error {
	r, err := h.service.CheckShape(c.Context())
	if err != nil {
		return h.fail(c, "Shape check failed", err)
	}
	return c.JSON(r)
}

// HandleSlotCheck runs the slot check.
func (h *Handler) HandleSlotCheck(c *fiber.Ctx) error {
	r, err := h.service.CheckSlots(c.Context())
	if err != nil {
		return h.fail(c, "Slot check failed", err)
	}
	return c.JSON(r)
}

// HandleStorageCheck runs the storage check.
func (h *Handler) HandleStorageCheck(c *fiber.Ctx) error {
	r, err := h.service.CheckStorage(c.Context())
	if err != nil {
		return h.fail(c, "Storage check failed", err)
	}
	return c.JSON(r)
}

// HandleSchemaCheck runs the schema check.
func (h *Handler) HandleSchemaCheck(c *fiber.Ctx) error {
	r, err := h.service.CheckSchema()
	if err != nil {
		return h.fail(c, "Schema check failed", err)
	}
	return c.JSON(r)
}

func (h *Handler) fail(c *fiber.Ctx, msg string, err error) error {
	if errors.Is(err, ErrNotConfigured) {
		return c.Status(fiber.StatusNotFound).JSON(outcome(err))
	}
	logger.WithRayID(h.service.logger, c).Error(msg, zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(outcome(err))
}

func outcome(err error) checks.Report {
	if errors.Is(err, ErrNotConfigured) {
		return checks.Report{Status: checks.StatusSkipped}
	}
	return checks.Failed(err)
}
