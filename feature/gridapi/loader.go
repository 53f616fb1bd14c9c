package gridapi

import (
	"nodegrid/core/collection"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates the grid feature. source may be nil for read-only data sources.
func NewFeature(view *collection.View, source Editable, logger *zap.Logger) *Feature {
	svc := NewService(view, source, logger)
	return &Feature{service: svc, handler: NewHandler(svc)}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "grid"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return f.service.view != nil
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}

// Close closes the view.
func (f *Feature) Close() error {
	return f.service.view.Close()
}
