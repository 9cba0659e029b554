package models

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// TaxConfig describes a national tax regime (VAT, GST, Sales Tax, ...). It
// supplies the default rate offered on new documents, the label printed next
// to the tax line, and the tax identifier format accepted at the boundary.
type TaxConfig interface {
	GetTaxRate() decimal.Decimal // percent, e.g. 7.5
	GetTaxName() string
	GetCountryCode() string
	GetCurrency() string
	ValidateBusinessNumber(businessNumber string) error
}

var nonDigit = regexp.MustCompile(`[^0-9]`)

// NigerianVATConfig implements TaxConfig for Nigerian VAT
// - VAT rate: 7.5% (Finance Act 2019)
// - TIN format: 8 digits, a hyphen and 4 digits (FIRS) or 10 digits (JTB)
type NigerianVATConfig struct{}

var NigerianVATRate = decimal.RequireFromString("7.5")

var ngTINPattern = regexp.MustCompile(`^(\d{8}-\d{4}|\d{10})$`)

func (c *NigerianVATConfig) GetTaxRate() decimal.Decimal { return NigerianVATRate }
func (c *NigerianVATConfig) GetTaxName() string          { return "VAT" }
func (c *NigerianVATConfig) GetCountryCode() string      { return "NG" }
func (c *NigerianVATConfig) GetCurrency() string         { return "NGN" }

func (c *NigerianVATConfig) ValidateBusinessNumber(tin string) error {
	if tin == "" {
		return nil
	}
	if !ngTINPattern.MatchString(strings.TrimSpace(tin)) {
		return errors.New("TIN must be in format XXXXXXXX-XXXX or 10 digits")
	}
	return nil
}

// AustralianGSTConfig implements TaxConfig for Australian GST
// - GST rate: 10%
// - ABN format: 11 digits with the ATO check digit algorithm
type AustralianGSTConfig struct{}

var AustralianGSTRate = decimal.NewFromInt(10)

func (c *AustralianGSTConfig) GetTaxRate() decimal.Decimal { return AustralianGSTRate }
func (c *AustralianGSTConfig) GetTaxName() string          { return "GST" }
func (c *AustralianGSTConfig) GetCountryCode() string      { return "AU" }
func (c *AustralianGSTConfig) GetCurrency() string         { return "AUD" }

// ValidateBusinessNumber validates an Australian Business Number (ABN)
func (c *AustralianGSTConfig) ValidateBusinessNumber(abn string) error {
	if abn == "" {
		return nil
	}

	cleanABN := nonDigit.ReplaceAllString(abn, "")
	if len(cleanABN) != 11 {
		return errors.New("ABN must be 11 digits")
	}

	digits := make([]int, 11)
	for i, char := range cleanABN {
		digit, err := strconv.Atoi(string(char))
		if err != nil {
			return errors.New("ABN must contain only digits")
		}
		digits[i] = digit
	}

	// Subtract 1 from the first digit, weight, and check divisibility by 89
	digits[0] -= 1
	if digits[0] < 0 {
		return errors.New("invalid ABN format")
	}

	weights := []int{10, 1, 3, 5, 7, 9, 11, 13, 15, 17, 19}
	sum := 0
	for i, digit := range digits {
		sum += digit * weights[i]
	}

	if sum%89 != 0 {
		return errors.New("invalid ABN check digit")
	}

	return nil
}

// UKVATConfig implements TaxConfig for UK VAT
type UKVATConfig struct{}

var UKVATRate = decimal.NewFromInt(20)

func (c *UKVATConfig) GetTaxRate() decimal.Decimal { return UKVATRate }
func (c *UKVATConfig) GetTaxName() string          { return "VAT" }
func (c *UKVATConfig) GetCountryCode() string      { return "GB" }
func (c *UKVATConfig) GetCurrency() string         { return "GBP" }

func (c *UKVATConfig) ValidateBusinessNumber(vatNumber string) error {
	if vatNumber == "" {
		return nil
	}

	cleanVAT := nonDigit.ReplaceAllString(vatNumber, "")
	if len(cleanVAT) != 9 {
		return errors.New("UK VAT number must be 9 digits")
	}

	return nil
}

// USSalesTaxConfig implements TaxConfig for US sales tax
type USSalesTaxConfig struct {
	StateRate decimal.Decimal // varies by state
}

func (c *USSalesTaxConfig) GetTaxRate() decimal.Decimal { return c.StateRate }
func (c *USSalesTaxConfig) GetTaxName() string          { return "Sales Tax" }
func (c *USSalesTaxConfig) GetCountryCode() string      { return "US" }
func (c *USSalesTaxConfig) GetCurrency() string         { return "USD" }

var einPattern = regexp.MustCompile(`^\d{2}-\d{7}$`)

func (c *USSalesTaxConfig) ValidateBusinessNumber(ein string) error {
	if ein == "" {
		return nil
	}
	if !einPattern.MatchString(ein) {
		return errors.New("EIN must be in format XX-XXXXXXX")
	}
	return nil
}

// NewTaxConfig creates a tax configuration for a country code
func NewTaxConfig(countryCode string) (TaxConfig, error) {
	switch strings.ToUpper(strings.TrimSpace(countryCode)) {
	case "NG", "NGA", "NIGERIA":
		return &NigerianVATConfig{}, nil
	case "AU", "AUS", "AUSTRALIA":
		return &AustralianGSTConfig{}, nil
	case "GB", "UK", "UNITED_KINGDOM":
		return &UKVATConfig{}, nil
	case "US", "USA", "UNITED_STATES":
		return &USSalesTaxConfig{StateRate: decimal.NewFromInt(8)}, nil
	default:
		return nil, fmt.Errorf("unsupported country code: %s", countryCode)
	}
}

// DefaultTaxName labels the tax line when a document does not name its regime
const DefaultTaxName = "VAT"

// TaxLabel returns the label printed next to the tax line, e.g. "VAT (7.5%)"
func TaxLabel(name string, rate decimal.Decimal) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultTaxName
	}
	return fmt.Sprintf("%s (%s%%)", name, rate.String())
}
