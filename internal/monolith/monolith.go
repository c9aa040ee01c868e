// Package monolith provides the application container and module interface.
package monolith

import (
	"context"

	"github.com/cardex/gateway/internal/config"
	"github.com/cardex/gateway/internal/di"
	"github.com/cardex/gateway/internal/health"
	"github.com/cardex/gateway/internal/logger"
	"github.com/cardex/gateway/internal/venue"
)

// Monolith is the main application container providing access to shared infrastructure.
type Monolith interface {
	Config() *config.Config
	Logger() logger.LoggerInterface
	Venues() *venue.Catalog
	Health() *health.Registry
	Services() di.ServiceRegistry
}

// Module represents a bounded context module that can register services and start up.
type Module interface {
	RegisterServices(di.Container) error
	Startup(context.Context, Monolith) error
}

// app implements the Monolith interface.
type app struct {
	config    *config.Config
	logger    logger.LoggerInterface
	venues    *venue.Catalog
	health    *health.Registry
	container di.Container
}

// New creates a new Monolith instance.
func New(cfg *config.Config, log logger.LoggerInterface, version string) *app {
	venues := venue.NewCatalog()
	healthReg := health.NewRegistry(version)
	container := di.NewContainer()

	// Register global services
	container.Register("config", cfg)
	container.Register("logger", log)
	container.Register("venues", venues)
	container.Register("health", healthReg)

	return &app{
		config:    cfg,
		logger:    log,
		venues:    venues,
		health:    healthReg,
		container: container,
	}
}

func (a *app) Config() *config.Config {
	return a.config
}

func (a *app) Logger() logger.LoggerInterface {
	return a.logger
}

func (a *app) Venues() *venue.Catalog {
	return a.venues
}

func (a *app) Health() *health.Registry {
	return a.health
}

func (a *app) Services() di.ServiceRegistry {
	return a.container
}

// Container returns the DI container for module registration.
func (a *app) Container() di.Container {
	return a.container
}

// RegisterModules registers all provided modules.
func (a *app) RegisterModules(modules ...Module) error {
	for _, m := range modules {
		if err := m.RegisterServices(a.container); err != nil {
			return err
		}
	}
	return nil
}

// StartModules starts all provided modules.
func (a *app) StartModules(ctx context.Context, modules ...Module) error {
	for _, m := range modules {
		if err := m.Startup(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// Close closes all venue handles.
func (a *app) Close() error {
	return a.venues.CloseAll()
}
