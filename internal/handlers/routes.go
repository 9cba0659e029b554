package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"salesdoc/internal/adapters/blobstore"
	"salesdoc/internal/config"
	"salesdoc/internal/middleware"
	"salesdoc/internal/services"
)

// RouterConfig holds configuration for setting up routes
type RouterConfig struct {
	DocumentService services.DocumentService
	TaxService      services.TaxServiceInterface
	Store           blobstore.Store

	// Gatherer backs /metrics; nil uses the default registry
	Gatherer prometheus.Gatherer

	// Degraded reports whether exports are skipping the file renderer
	Degraded func() bool

	RateLimitRPS   float64
	RateLimitBurst int
	AllowedOrigins []string
	Version        string
}

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, config *RouterConfig) {
	documentHandler := NewDocumentHandler(config.DocumentService, config.TaxService)
	templateHandler := NewTemplateHandler(config.DocumentService)
	fileHandler := NewFileHandler(config.Store)

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Metrics
	gatherer := config.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		degraded := false
		if config.Degraded != nil {
			degraded = config.Degraded()
		}
		c.JSON(http.StatusOK, gin.H{
			"status":          "healthy",
			"service":         "salesdoc",
			"version":         config.Version,
			"timestamp":       time.Now().UTC(),
			"export_degraded": degraded,
		})
	})

	// Print surfaces are opened directly by the browser
	router.GET("/print/:key", fileHandler.GetPrintSurface)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/templates", templateHandler.ListTemplates)
		v1.GET("/files/:key", fileHandler.GetFile)

		documents := v1.Group("/documents")
		{
			documents.POST("", documentHandler.NewDocument)
			documents.POST("/totals", documentHandler.ComputeTotals)
			documents.POST("/render", documentHandler.RenderDocument)
			documents.POST("/summary", documentHandler.Summary)
			documents.POST("/compliance", documentHandler.ValidateCompliance)
			documents.POST("/export", documentHandler.ExportDocument)
		}
	}
}

// SetupMiddleware configures global middleware
func SetupMiddleware(router *gin.Engine, config *RouterConfig) {
	// Request ID and correlation ID
	router.Use(middleware.RequestID())
	router.Use(middleware.CorrelationID())

	// Panics become 500 responses
	router.Use(middleware.Recovery())

	// CORS
	router.Use(middleware.CORS(config.AllowedOrigins...))

	// Security headers
	router.Use(middleware.SecurityHeaders())

	// Request size limit (10MB)
	router.Use(middleware.RequestSizeLimit(10 * 1024 * 1024))

	// Content type validation for POST requests
	router.Use(middleware.ContentTypeValidation("application/json"))

	// Request validation
	router.Use(middleware.RequestValidation())

	// Rate limiting
	rps, burst := config.RateLimitRPS, config.RateLimitBurst
	if rps <= 0 {
		rps, burst = 20, 40
	}
	router.Use(middleware.RateLimiter(rps, burst))

	// Structured logging
	router.Use(middleware.StructuredLogger())

	// Performance monitoring (log requests over 1 second)
	router.Use(middleware.PerformanceMonitor(time.Second))

	// Audit logging
	router.Use(middleware.AuditLogger())

	// Enhanced error handling
	router.Use(middleware.EnhancedErrorHandler())
}

// SetupDevelopmentRoutes adds development-only routes
func SetupDevelopmentRoutes(router *gin.Engine, routerConfig *RouterConfig) {
	dev := router.Group("/dev")
	{
		// Configuration info
		dev.GET("/config", func(c *gin.Context) {
			var taxInfo *services.TaxInfo
			if routerConfig.TaxService != nil {
				taxInfo = routerConfig.TaxService.GetTaxInfo(c.Request.Context())
			}
			c.JSON(http.StatusOK, gin.H{
				"supported_countries": config.GetSupportedCountries(),
				"tax":                 taxInfo,
				"api_version":         routerConfig.Version,
				"swagger_url":         "/swagger/index.html",
			})
		})
	}
}
