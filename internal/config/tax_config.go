package config

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"salesdoc/internal/models"
	"salesdoc/internal/money"
	"salesdoc/internal/services"
)

// TaxSystemConfig selects the tax regime offered on new documents
type TaxSystemConfig struct {
	CountryCode string `json:"country_code" env:"TAX_COUNTRY_CODE" default:"NG"`

	// CustomTaxRate replaces the regime's rate when positive, e.g. a US state rate
	CustomTaxRate decimal.Decimal `json:"custom_tax_rate,omitempty" env:"TAX_CUSTOM_RATE"`

	// CustomTaxName replaces the label printed next to the tax line
	CustomTaxName string `json:"custom_tax_name,omitempty" env:"TAX_NAME"`
}

var hundred = decimal.NewFromInt(100)

// LoadTaxSystemConfig reads the TAX_* environment keys
func LoadTaxSystemConfig() (*TaxSystemConfig, error) {
	viper.AutomaticEnv()
	viper.SetDefault("TAX_COUNTRY_CODE", models.DefaultTaxCountry)

	config := &TaxSystemConfig{
		CountryCode:   strings.ToUpper(strings.TrimSpace(viper.GetString("TAX_COUNTRY_CODE"))),
		CustomTaxName: strings.TrimSpace(viper.GetString("TAX_NAME")),
	}

	if raw := strings.TrimSpace(viper.GetString("TAX_CUSTOM_RATE")); raw != "" {
		rate, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid TAX_CUSTOM_RATE: %w", err)
		}
		if err := checkRate(rate); err != nil {
			return nil, fmt.Errorf("TAX_CUSTOM_RATE %w", err)
		}
		config.CustomTaxRate = rate
	}

	return config, nil
}

func checkRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(hundred) {
		return fmt.Errorf("must be a percentage between 0 and 100, got %s", rate)
	}
	return nil
}

// Regime returns the tax regime for the configured country with any
// custom rate or name applied
func (c *TaxSystemConfig) Regime() (models.TaxConfig, error) {
	base, err := models.NewTaxConfig(c.CountryCode)
	if err != nil {
		return nil, fmt.Errorf("failed to create tax config for country %s: %w", c.CountryCode, err)
	}

	if !c.CustomTaxRate.IsPositive() && c.CustomTaxName == "" {
		return base, nil
	}
	return &CustomTaxConfig{TaxConfig: base, rate: c.CustomTaxRate, name: c.CustomTaxName}, nil
}

// CreateTaxService creates a tax service for the configured regime
func (c *TaxSystemConfig) CreateTaxService() (*services.TaxService, error) {
	regime, err := c.Regime()
	if err != nil {
		return nil, err
	}
	return services.NewTaxService(regime), nil
}

// ValidateConfig validates the tax system configuration
func (c *TaxSystemConfig) ValidateConfig() error {
	if c.CountryCode == "" {
		return fmt.Errorf("country code cannot be empty")
	}
	if _, err := models.NewTaxConfig(c.CountryCode); err != nil {
		return fmt.Errorf("unsupported country code %s: %w", c.CountryCode, err)
	}
	if err := checkRate(c.CustomTaxRate); err != nil {
		return fmt.Errorf("custom tax rate %w", err)
	}
	if len(c.CustomTaxName) > 32 {
		return fmt.Errorf("custom tax name cannot exceed 32 characters")
	}
	return nil
}

// CountryInfo describes a supported tax regime for the dev config endpoint
type CountryInfo struct {
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	TaxName        string          `json:"tax_name"`
	TaxRate        decimal.Decimal `json:"tax_rate"`
	Currency       string          `json:"currency"`
	CurrencySymbol string          `json:"currency_symbol"`
}

var supportedCountries = []struct{ code, name string }{
	{"NG", "Nigeria"},
	{"AU", "Australia"},
	{"GB", "United Kingdom"},
	{"US", "United States"},
}

// GetSupportedCountries lists every regime NewTaxConfig knows, default first
func GetSupportedCountries() []CountryInfo {
	out := make([]CountryInfo, 0, len(supportedCountries))
	for _, country := range supportedCountries {
		regime, err := models.NewTaxConfig(country.code)
		if err != nil {
			continue
		}
		out = append(out, CountryInfo{
			Code:           regime.GetCountryCode(),
			Name:           country.name,
			TaxName:        regime.GetTaxName(),
			TaxRate:        regime.GetTaxRate(),
			Currency:       regime.GetCurrency(),
			CurrencySymbol: strings.TrimSpace(money.Symbol(regime.GetCurrency())),
		})
	}
	return out
}

// CustomTaxConfig overrides the rate and label of a base regime. Business
// number validation stays with the base.
type CustomTaxConfig struct {
	models.TaxConfig
	rate decimal.Decimal
	name string
}

func (c *CustomTaxConfig) GetTaxRate() decimal.Decimal {
	if c.rate.IsPositive() {
		return c.rate
	}
	return c.TaxConfig.GetTaxRate()
}

func (c *CustomTaxConfig) GetTaxName() string {
	if c.name != "" {
		return c.name
	}
	return c.TaxConfig.GetTaxName()
}
