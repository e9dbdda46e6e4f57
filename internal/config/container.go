package config

import (
	"fmt"

	"pdf-highlighter/internal/domain"
	"pdf-highlighter/internal/hashrouter"
	"pdf-highlighter/internal/highlight"
	supabaseinfra "pdf-highlighter/internal/infra/supabase"
	"pdf-highlighter/internal/metrics"
	"pdf-highlighter/internal/renderer"
	"pdf-highlighter/internal/repository"
	"pdf-highlighter/internal/service"
	"pdf-highlighter/internal/session"
	"pdf-highlighter/pkg/logger"
)

// Container holds all application dependencies
type Container struct {
	Config         domain.Config
	Logger         domain.Logger
	Metrics        *metrics.Metrics
	SupabaseClient domain.SupabaseClient
	SeedTable      domain.SeedTable
	Store          *highlight.Store
	Sessions       *session.Controller
	Location       *hashrouter.Location
	Router         *hashrouter.Router
	Loader         domain.SurfaceLoader
	UploadService  *service.UploadService
	ViewerService  *service.ViewerService
}

// NewContainer creates a new dependency injection container
func NewContainer() (*Container, error) {
	return NewContainerWithConfig(NewConfig())
}

// NewContainerWithConfig wires the application around the given configuration.
func NewContainerWithConfig(config domain.Config) (*Container, error) {
	appLogger := logger.NewLogger(config.GetLogLevel(), config.GetLogPretty())
	appMetrics := metrics.NewMetrics()

	c := &Container{
		Config:  config,
		Logger:  appLogger,
		Metrics: appMetrics,
	}

	seeds, err := c.newSeedTable()
	if err != nil {
		return nil, err
	}
	c.SeedTable = seeds

	c.Store = highlight.NewStore(appLogger, highlight.WithObserver(appMetrics))
	c.Sessions = session.NewController(
		c.Store,
		seeds,
		session.NewRegistry(config.GetKnownDocuments()...),
		appLogger,
		appMetrics,
	)
	c.Location = hashrouter.NewLocation("")
	c.Router = hashrouter.NewRouter(c.Location, c.Store, appLogger, appMetrics)
	c.Loader = renderer.NewFitzLoader(
		config.GetRenderScale(),
		config.GetFetchTimeout(),
		config.GetMaxFileSize(),
		appLogger,
	)
	c.UploadService = service.NewUploadService(config.GetUploadPath(), config.GetMaxFileSize(), appLogger)
	c.ViewerService = service.NewViewerService(service.ViewerDeps{
		Store:      c.Store,
		Sessions:   c.Sessions,
		Router:     c.Router,
		Location:   c.Location,
		Loader:     c.Loader,
		Uploads:    c.UploadService,
		DefaultURL: config.GetDefaultDocumentURL(),
		Logger:     appLogger,
		Observer:   appMetrics,
	})

	return c, nil
}

func (c *Container) newSeedTable() (domain.SeedTable, error) {
	switch c.Config.GetSeedSource() {
	case SeedSourceFixtures:
		seeds, err := repository.NewDefaultFixtureSeedRepository(c.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to load seed fixtures: %w", err)
		}
		return seeds, nil
	case SeedSourceSupabase:
		client := supabaseinfra.NewSupabaseClient(c.Config, c.Logger)
		if err := client.Initialize(); err != nil {
			return nil, fmt.Errorf("failed to initialize seed table: %w", err)
		}
		c.SupabaseClient = client
		return repository.NewSupabaseSeedRepository(client, c.Logger), nil
	default:
		return nil, fmt.Errorf("unknown seed source %q", c.Config.GetSeedSource())
	}
}

// GetConfig returns the configuration instance
func (c *Container) GetConfig() domain.Config {
	return c.Config
}

// GetLogger returns the logger instance
func (c *Container) GetLogger() domain.Logger {
	return c.Logger
}

// Close releases the rendered surface and waits for background work.
func (c *Container) Close() error {
	return c.ViewerService.Close()
}
