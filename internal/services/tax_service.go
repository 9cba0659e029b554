package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"salesdoc/internal/models"
)

// TaxService applies the configured tax regime to documents
type TaxService struct {
	config models.TaxConfig
}

// NewTaxService creates a new tax service with the specified configuration
func NewTaxService(config models.TaxConfig) *TaxService {
	return &TaxService{
		config: config,
	}
}

// NewTaxServiceForCountry creates a new tax service for the specified country
func NewTaxServiceForCountry(countryCode string) (*TaxService, error) {
	config, err := models.NewTaxConfig(countryCode)
	if err != nil {
		return nil, fmt.Errorf("failed to create tax config for country %s: %w", countryCode, err)
	}

	return &TaxService{
		config: config,
	}, nil
}

// Config returns the tax regime in use
func (s *TaxService) Config() models.TaxConfig {
	return s.config
}

// ValidateBusinessNumber validates a tax identifier using the current regime
func (s *TaxService) ValidateBusinessNumber(ctx context.Context, businessNumber string) error {
	return s.config.ValidateBusinessNumber(businessNumber)
}

// GetTaxInfo returns general tax information for the current configuration
func (s *TaxService) GetTaxInfo(ctx context.Context) *TaxInfo {
	return &TaxInfo{
		TaxName:     s.config.GetTaxName(),
		TaxRate:     s.config.GetTaxRate(),
		Label:       models.TaxLabel(s.config.GetTaxName(), s.config.GetTaxRate()),
		CountryCode: s.config.GetCountryCode(),
		Currency:    s.config.GetCurrency(),
	}
}

// ApplyDefaults fills the tax name and, when unset, the regime's rate
func (s *TaxService) ApplyDefaults(doc *models.Document) {
	if doc == nil {
		return
	}
	if strings.TrimSpace(doc.Adjustments.TaxName) == "" {
		doc.Adjustments.TaxName = s.config.GetTaxName()
	}
	if doc.Adjustments.VATRate.IsZero() {
		doc.Adjustments.VATRate = s.config.GetTaxRate()
	}
}

// ValidateDocumentCompliance checks a document against the regime's
// requirements for a tax invoice. Problems that make the document unusable
// as a tax invoice are errors; the rest are warnings.
func (s *TaxService) ValidateDocumentCompliance(ctx context.Context, doc *models.Document) (*TaxComplianceValidationResult, error) {
	if doc == nil {
		return nil, fmt.Errorf("document cannot be nil")
	}

	result := &TaxComplianceValidationResult{
		IsCompliant: true,
		Errors:      []string{},
		Warnings:    []string{},
	}

	if doc.Business.TaxID != "" {
		if err := s.config.ValidateBusinessNumber(doc.Business.TaxID); err != nil {
			result.IsCompliant = false
			result.Errors = append(result.Errors, fmt.Sprintf("Invalid business tax identifier: %v", err))
		}
	}

	if doc.Currency != "" && !strings.EqualFold(doc.Currency, s.config.GetCurrency()) {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Document currency %s differs from the %s regime currency %s",
			strings.ToUpper(doc.Currency), s.config.GetCountryCode(), s.config.GetCurrency()))
	}

	if !doc.Adjustments.VATEnabled {
		return result, nil
	}

	if doc.Kind == models.KindInvoice {
		if doc.Business.TaxID == "" {
			result.IsCompliant = false
			result.Errors = append(result.Errors, fmt.Sprintf("%s invoice requires the business tax identifier", s.config.GetTaxName()))
		}
		if doc.DisplayCustomer() == "" {
			result.Warnings = append(result.Warnings, "Invoice has no customer name")
		}
	}

	if !doc.Adjustments.VATRate.Equal(s.config.GetTaxRate()) {
		result.Warnings = append(result.Warnings, fmt.Sprintf("%s rate %s%% differs from the %s standard rate of %s%%",
			s.config.GetTaxName(), doc.Adjustments.VATRate.String(), s.config.GetCountryCode(), s.config.GetTaxRate().String()))
	}

	return result, nil
}

// TaxInfo contains general tax information
type TaxInfo struct {
	TaxName     string          `json:"tax_name"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	Label       string          `json:"label"`
	CountryCode string          `json:"country_code"`
	Currency    string          `json:"currency"`
}

// TaxComplianceValidationResult represents the result of tax compliance validation
type TaxComplianceValidationResult struct {
	IsCompliant bool     `json:"is_compliant"`
	Errors      []string `json:"errors"`
	Warnings    []string `json:"warnings"`
}
