package config

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"salesdoc/internal/adapters/blobstore"
	"salesdoc/internal/adapters/share"
	"salesdoc/internal/models"
	"salesdoc/internal/money"
	"salesdoc/internal/render"
)

// Config holds all configuration for the application
type Config struct {
	Environment string
	Host        string
	Port        string
	LogLevel    string
	Money       MoneyConfig
	Templates   TemplatesConfig
	Export      ExportConfig
	Storage     StorageConfig
	RateLimit   RateLimitConfig
	Tax         TaxSystemConfig
}

// MoneyConfig holds the currency formatter configuration
type MoneyConfig struct {
	Currency string
	Locale   string
}

// TemplatesConfig selects the default template and an optional TOML file of
// extra templates. An empty Default keeps the file's default, or classic.
type TemplatesConfig struct {
	Default string
	File    string
}

// ExportConfig holds export orchestrator configuration
type ExportConfig struct {
	ReleaseDelay   time.Duration
	ShareChannel   string
	SerialTemplate string
	OpenBrowser    bool
}

// StorageConfig holds artifact storage configuration
type StorageConfig struct {
	Type          string // "local" or "memory"
	LocalPath     string
	PublicBaseURL string
}

// RateLimitConfig holds the per-client request limits
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Set up Viper
	viper.AutomaticEnv()
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("HOST", "127.0.0.1")
	viper.SetDefault("PORT", "8081")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("CURRENCY", money.DefaultCurrency)
	viper.SetDefault("LOCALE", money.DefaultLocale)
	viper.SetDefault("TAX_COUNTRY_CODE", models.DefaultTaxCountry)
	viper.SetDefault("EXPORT_RELEASE_DELAY", blobstore.DefaultReleaseDelay)
	viper.SetDefault("EXPORT_OPEN_BROWSER", false)
	viper.SetDefault("STORAGE_TYPE", string(blobstore.StoreTypeLocal))
	viper.SetDefault("STORAGE_LOCAL_PATH", blobstore.DefaultBasePath)
	viper.SetDefault("RATE_LIMIT_RPS", 20)
	viper.SetDefault("RATE_LIMIT_BURST", 40)
	viper.SetDefault("SHARE_CHANNEL", string(share.ChannelWhatsApp))
	viper.SetDefault("SERIAL_TEMPLATE", models.DefaultSerialTemplate)

	tax, err := LoadTaxSystemConfig()
	if err != nil {
		return nil, err
	}

	config := &Config{
		Environment: viper.GetString("ENVIRONMENT"),
		Host:        viper.GetString("HOST"),
		Port:        viper.GetString("PORT"),
		LogLevel:    viper.GetString("LOG_LEVEL"),
		Money: MoneyConfig{
			Currency: strings.ToUpper(viper.GetString("CURRENCY")),
			Locale:   viper.GetString("LOCALE"),
		},
		Templates: TemplatesConfig{
			Default: viper.GetString("DEFAULT_TEMPLATE"),
			File:    viper.GetString("TEMPLATES_FILE"),
		},
		Export: ExportConfig{
			ReleaseDelay:   viper.GetDuration("EXPORT_RELEASE_DELAY"),
			ShareChannel:   viper.GetString("SHARE_CHANNEL"),
			SerialTemplate: viper.GetString("SERIAL_TEMPLATE"),
			OpenBrowser:    viper.GetBool("EXPORT_OPEN_BROWSER"),
		},
		Storage: StorageConfig{
			Type:          viper.GetString("STORAGE_TYPE"),
			LocalPath:     viper.GetString("STORAGE_LOCAL_PATH"),
			PublicBaseURL: viper.GetString("PUBLIC_BASE_URL"),
		},
		RateLimit: RateLimitConfig{
			RPS:   viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst: viper.GetInt("RATE_LIMIT_BURST"),
		},
		Tax: *tax,
	}

	if config.Storage.PublicBaseURL == "" {
		config.Storage.PublicBaseURL = "http://" + config.Address()
	}
	config.Storage.PublicBaseURL = strings.TrimSuffix(config.Storage.PublicBaseURL, "/")

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Address returns the host:port the HTTP server binds to
func (c *Config) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// FilesURL is the public base under which stored artifacts are served
func (c *Config) FilesURL() string {
	return c.Storage.PublicBaseURL + "/api/v1/files"
}

// PrintURL is the public base under which print surfaces are served
func (c *Config) PrintURL() string {
	return c.Storage.PublicBaseURL + "/print"
}

// Validate checks values that would otherwise fail late
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}

	switch blobstore.StoreType(c.Storage.Type) {
	case blobstore.StoreTypeLocal, blobstore.StoreTypeMemory:
	default:
		return fmt.Errorf("unsupported STORAGE_TYPE %q", c.Storage.Type)
	}

	if c.Export.ReleaseDelay <= 0 {
		return fmt.Errorf("EXPORT_RELEASE_DELAY must be positive, got %s", c.Export.ReleaseDelay)
	}

	if _, err := share.ParseChannel(c.Export.ShareChannel); err != nil {
		return fmt.Errorf("invalid SHARE_CHANNEL: %w", err)
	}

	if _, err := models.FormatSerial(c.Export.SerialTemplate, models.KindReceipt, time.Now(), 1); err != nil {
		return fmt.Errorf("invalid SERIAL_TEMPLATE: %w", err)
	}

	if c.Templates.Default != "" && c.Templates.File == "" && !render.IsBuiltin(c.Templates.Default) {
		return fmt.Errorf("unknown DEFAULT_TEMPLATE %q", c.Templates.Default)
	}

	if len(c.Money.Currency) != 3 {
		return fmt.Errorf("CURRENCY must be a 3-letter ISO code, got %q", c.Money.Currency)
	}

	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}

	return c.Tax.ValidateConfig()
}
