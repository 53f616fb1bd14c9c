package loader

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature is a module that mounts routes on the HTTP control surface.
type Feature interface {
	Name() string
	IsEnabled() bool
	Load(app fiber.Router) error
}

// Closer is implemented by features that hold resources until shutdown.
type Closer interface {
	Close() error
}

// Manager holds the registered features.
type Manager struct {
	features []Feature
	loaded   []Feature
	logger   *zap.Logger
}

// NewManager creates an empty manager.
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{logger: logger}
}

// Register adds f. Features load in registration order.
func (m *Manager) Register(f Feature) {
	m.features = append(m.features, f)
}

// LoadAll loads every enabled feature and stops at the first failure.
func (m *Manager) LoadAll(app fiber.Router) error {
	for _, f := range m.features {
		if !f.IsEnabled() {
			m.logger.Info("Feature disabled", zap.String("feature", f.Name()))
			continue
		}
		if err := f.Load(app); err != nil {
			return fmt.Errorf("failed to load feature %s: %w", f.Name(), err)
		}
		m.loaded = append(m.loaded, f)
		m.logger.Info("Feature loaded", zap.String("feature", f.Name()))
	}
	return nil
}

// Loaded returns the names of the loaded features.
func (m *Manager) Loaded() []string {
	names := make([]string, len(m.loaded))
	for i, f := range m.loaded {
		names[i] = f.Name()
	}
	return names
}

// CloseAll closes loaded features in reverse order and returns the first error.
func (m *Manager) CloseAll() error {
	var first error
	for i := len(m.loaded) - 1; i >= 0; i-- {
		c, ok := m.loaded[i].(Closer)
		if !ok {
			continue
		}
		if err := c.Close(); err != nil {
			m.logger.Warn("Feature close failed", zap.String("feature", m.loaded[i].Name()), zap.Error(err))
			if first == nil {
				first = err
			}
		}
	}
	return first
}
