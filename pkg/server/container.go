package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"salesdoc/internal/adapters/blobstore"
	"salesdoc/internal/adapters/pdf"
	"salesdoc/internal/adapters/printsurface"
	"salesdoc/internal/adapters/share"
	"salesdoc/internal/config"
	"salesdoc/internal/export"
	"salesdoc/internal/handlers"
	"salesdoc/internal/money"
	"salesdoc/internal/render"
	"salesdoc/internal/services"
)

// Version is reported by /health
const Version = "1.0.0"

// Container holds all application dependencies
type Container struct {
	Config          *config.Config
	Logger          *logrus.Logger
	DocumentService services.DocumentService
	TaxService      services.TaxServiceInterface
	Orchestrator    *export.Orchestrator
	Resolver        *render.Resolver
	Store           blobstore.Store

	// Internal dependencies
	registry *prometheus.Registry
	services *services.ServiceContainer
	server   *http.Server
}

// Option customises container construction
type Option func(*options)

type options struct {
	logger   *logrus.Logger
	launcher printsurface.Launcher
	opener   share.Opener
	registry *prometheus.Registry
	printURL string
}

// WithLogger replaces the logger built from configuration
func WithLogger(logger *logrus.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithLauncher sets how print surfaces are opened. The default leaves
// opening to the HTTP client.
func WithLauncher(l printsurface.Launcher) Option {
	return func(o *options) { o.launcher = l }
}

// WithShareOpener opens share links locally instead of returning them
func WithShareOpener(open share.Opener) Option {
	return func(o *options) { o.opener = open }
}

// WithPrintURL serves print surfaces from base instead of the HTTP print
// route, for example a file:// URL over the local store directory
func WithPrintURL(base string) Option {
	return func(o *options) { o.printURL = base }
}

// WithRegistry collects metrics into reg instead of a fresh registry
func WithRegistry(reg *prometheus.Registry) Option {
	return func(o *options) { o.registry = reg }
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = NewLogger(cfg)
	}
	if o.registry == nil {
		o.registry = prometheus.NewRegistry()
		o.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	if o.printURL == "" {
		o.printURL = cfg.PrintURL()
	}
	logger := o.logger

	formatter := money.New(cfg.Money.Currency, cfg.Money.Locale)

	resolver := render.NewResolver(formatter, logger)
	if cfg.Templates.File != "" {
		n, err := resolver.LoadFile(cfg.Templates.File)
		if err != nil {
			return nil, fmt.Errorf("failed to load templates: %w", err)
		}
		logger.WithField("count", n).Info("Loaded templates from file")
	}
	if cfg.Templates.Default != "" {
		if err := resolver.SetDefault(cfg.Templates.Default); err != nil {
			return nil, fmt.Errorf("invalid default template: %w", err)
		}
	}

	store, err := blobstore.CreateFromConfig(&blobstore.Config{
		Type:      cfg.Storage.Type,
		BasePath:  cfg.Storage.LocalPath,
		PublicURL: cfg.FilesURL(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create artifact store: %w", err)
	}
	releaser := blobstore.NewReleaser(store, cfg.Export.ReleaseDelay, logger)

	channel, err := share.ParseChannel(cfg.Export.ShareChannel)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	orchestrator := export.NewOrchestrator(resolver, export.Strategies{
		File:  export.NewFileStrategy(pdf.NewGenerator(), store, releaser),
		Print: export.NewPrintStrategy(printsurface.NewRenderer(true), o.launcher, store, releaser).WithBaseURL(o.printURL),
		Share: export.NewShareStrategy(formatter, share.NewLinkSurface(o.opener), channel),
	},
		export.WithLogger(logger),
		export.WithMetrics(export.NewMetrics(o.registry)),
		export.WithReleaser(releaser),
	)

	taxService, err := cfg.Tax.CreateTaxService()
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to create tax service: %w", err)
	}
	serviceContainer := services.NewServiceContainerWithTax(resolver, orchestrator, formatter, taxService, cfg.Export.SerialTemplate, logger)
	if err := serviceContainer.Validate(); err != nil {
		_ = store.Close()
		return nil, err
	}

	return &Container{
		Config:          cfg,
		Logger:          logger,
		DocumentService: serviceContainer.DocumentService,
		TaxService:      serviceContainer.TaxService,
		Orchestrator:    orchestrator,
		Resolver:        resolver,
		Store:           store,
		registry:        o.registry,
		services:        serviceContainer,
	}, nil
}

// Router builds the gin engine serving the local HTTP surface
func (c *Container) Router() *gin.Engine {
	if c.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	routerConfig := &handlers.RouterConfig{
		DocumentService: c.DocumentService,
		TaxService:      c.TaxService,
		Store:           c.Store,
		Gatherer:        c.registry,
		Degraded:        c.Orchestrator.Degraded,
		RateLimitRPS:    c.Config.RateLimit.RPS,
		RateLimitBurst:  c.Config.RateLimit.Burst,
		AllowedOrigins:  []string{c.Config.Storage.PublicBaseURL},
		Version:         Version,
	}

	router := gin.New()
	handlers.SetupMiddleware(router, routerConfig)
	handlers.SetupRoutes(router, routerConfig)
	if !c.Config.IsProduction() {
		handlers.SetupDevelopmentRoutes(router, routerConfig)
	}
	return router
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully
func (c *Container) Run(ctx context.Context) error {
	c.server = &http.Server{
		Addr:              c.Config.Address(),
		Handler:           c.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.WithField("address", c.Config.Address()).Info("Server started")
		if err := c.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	c.Logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	c.Logger.Info("Server exited")
	return nil
}

// Close releases pending export handles and the artifact store
func (c *Container) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if c.services != nil {
		if err := c.services.Close(ctx); err != nil {
			return fmt.Errorf("failed to close services: %w", err)
		}
	}

	if c.Store != nil {
		if err := c.Store.Close(); err != nil {
			return fmt.Errorf("failed to close artifact store: %w", err)
		}
	}

	return nil
}
