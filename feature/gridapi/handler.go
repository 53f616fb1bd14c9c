package gridapi

import (
	"errors"
	"strconv"

	"nodegrid/core/index"
	"nodegrid/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the grid.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the grid routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/grid")
	group.Post("/commands", h.HandleCommands)
	group.Post("/viewport", h.HandleViewport)
	group.Get("/visible", h.HandleVisible)
	group.Get("/nodes/:section/:item", h.HandleNode)
	group.Post("/batch/complete", h.HandleBatchComplete)
	group.Get("/state", h.HandleState)
}

// HandleCommands applies edits to the data source and the view.
// @Summary Apply Edits
// @Description Apply edits in order and wait for the view to catch up.
// @Tags grid
// @Accept json
// @Produce json
// @Param request body CommandsRequest true "Edits"
// @Success 200 {object} map[string]interface{} "Resulting shape"
// @Failure 400 {object} map[string]string "Invalid edit"
// @Failure 501 {object} map[string]string "Data source cannot be edited"
// @Router /grid/commands [post]
func (h *Handler) HandleCommands(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req CommandsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	shape, err := h.service.Apply(c.Context(), req.Edits)
	switch {
	case err == nil:
		return c.JSON(fiber.Map{"shape": shape})
	case errors.Is(err, ErrNotEditable):
		return c.Status(fiber.StatusNotImplemented).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrInvalidEdit):
		l.Warn("Rejected edit", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	default:
		l.Error("Failed to apply edits", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}

// HandleViewport moves the viewport.
// @Summary Set Viewport
// @Tags grid
// @Accept json
// @Produce json
// @Param request body ViewportRequest true "Viewport"
// @Success 200 {object} ViewportReport "Working range delta"
// @Router /grid/viewport [post]
func (h *Handler) HandleViewport(c *fiber.Ctx) error {
	var req ViewportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Offset < 0 || req.Extent < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "offset and extent must not be negative"})
	}
	return c.JSON(h.service.SetViewport(c.Context(), req))
}

// HandleVisible returns the ready nodes inside the viewport.
// @Summary List Visible Nodes
// @Tags grid
// @Produce json
// @Success 200 {array} NodeReport "Visible slots"
// @Router /grid/visible [get]
func (h *Handler) HandleVisible(c *fiber.Ctx) error {
	return c.JSON(h.service.Visible())
}

// HandleNode returns one slot.
// @Summary Get Node
// @Tags grid
// @Produce json
// @Param section path int true "Section"
// @Param item path int true "Item"
// @Success 200 {object} NodeReport "Slot"
// @Failure 404 {object} map[string]string "Out of range"
// @Router /grid/nodes/{section}/{item} [get]
func (h *Handler) HandleNode(c *fiber.Ctx) error {
	section, err := strconv.Atoi(c.Params("section"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "section must be an integer"})
	}
	item, err := strconv.Atoi(c.Params("item"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "item must be an integer"})
	}

	report, err := h.service.Node(index.New(section, item))
	if err != nil {
		if errors.Is(err, index.ErrOutOfRange) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		logger.WithRayID(h.service.logger, c).Error("Node lookup failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(report)
}

// HandleBatchComplete finishes the outstanding batch fetch.
// @Summary Complete Batch Fetch
// @Tags grid
// @Accept json
// @Produce json
// @Param request body BatchCompleteRequest true "Outcome"
// @Success 200 {object} BatchReport "Batch state"
// @Failure 409 {object} map[string]string "No batch in flight"
// @Router /grid/batch/complete [post]
func (h *Handler) HandleBatchComplete(c *fiber.Ctx) error {
	var req BatchCompleteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.service.CompleteBatch(req.Success); err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(h.service.State().Batch)
}

// HandleState returns the view's state.
// @Summary Get View State
// @Tags grid
// @Produce json
// @Success 200 {object} StateReport "State"
// @Router /grid/state [get]
func (h *Handler) HandleState(c *fiber.Ctx) error {
	return c.JSON(h.service.State())
}
