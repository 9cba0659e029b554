package services

import (
	"context"

	"salesdoc/internal/export"
	"salesdoc/internal/models"
	"salesdoc/internal/render"
)

// DocumentService defines the operations callers run against a sales document
type DocumentService interface {
	// Composition
	NewDocument(kind models.DocumentKind) *models.Document
	ValidateDocument(ctx context.Context, doc *models.Document) error

	// Calculation and rendering
	ComputeTotals(doc *models.Document) models.Totals
	FormatTotals(doc *models.Document, totals models.Totals) *TotalsResponse
	RenderDocument(doc *models.Document, totals models.Totals, templateID string) (*render.VisualTree, error)
	Summary(doc *models.Document) string
	Templates() []render.TemplateConfig

	// Export
	ExportDocument(ctx context.Context, doc *models.Document, req export.Request) export.Result
}

// TaxServiceInterface defines the interface for tax services
type TaxServiceInterface interface {
	ValidateBusinessNumber(ctx context.Context, businessNumber string) error
	GetTaxInfo(ctx context.Context) *TaxInfo
	ApplyDefaults(doc *models.Document)
	ValidateDocumentCompliance(ctx context.Context, doc *models.Document) (*TaxComplianceValidationResult, error)
	Config() models.TaxConfig
}

// TotalsResponse pairs computed totals with their formatted strings
type TotalsResponse struct {
	Totals    models.Totals     `json:"totals"`
	Formatted map[string]string `json:"formatted"`
}
