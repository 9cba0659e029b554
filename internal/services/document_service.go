package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"salesdoc/internal/calculator"
	"salesdoc/internal/export"
	"salesdoc/internal/models"
	"salesdoc/internal/money"
	"salesdoc/internal/render"
)

// documentService implements the DocumentService interface
type documentService struct {
	resolver       *render.Resolver
	orchestrator   *export.Orchestrator
	taxService     TaxServiceInterface
	formatter      *money.Formatter
	validator      *validator.Validate
	serialTemplate string
	seq            atomic.Int64
	now            func() time.Time
	logger         logrus.FieldLogger
}

// DocumentServiceConfig holds the collaborators of a document service
type DocumentServiceConfig struct {
	Resolver       *render.Resolver
	Orchestrator   *export.Orchestrator
	TaxService     TaxServiceInterface
	Formatter      *money.Formatter
	SerialTemplate string
	Logger         logrus.FieldLogger
}

// NewDocumentService creates a new document service instance
func NewDocumentService(cfg DocumentServiceConfig) DocumentService {
	if cfg.SerialTemplate == "" {
		cfg.SerialTemplate = models.DefaultSerialTemplate
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	return &documentService{
		resolver:       cfg.Resolver,
		orchestrator:   cfg.Orchestrator,
		taxService:     cfg.TaxService,
		formatter:      cfg.Formatter,
		validator:      models.NewValidator(),
		serialTemplate: cfg.SerialTemplate,
		now:            time.Now,
		logger:         cfg.Logger,
	}
}

// NewDocument creates a document with the next serial and the configured
// tax regime and currency applied
func (s *documentService) NewDocument(kind models.DocumentKind) *models.Document {
	now := s.now()
	seq := s.seq.Add(1)

	doc := models.NewDocument(kind, now, seq)
	if serial, err := models.FormatSerial(s.serialTemplate, doc.Kind, now, seq); err == nil {
		doc.Serial = serial
	} else {
		s.logger.WithError(err).Warn("Invalid serial template, using default serial")
	}

	if s.formatter != nil {
		doc.Currency = s.formatter.Currency()
	}
	if s.resolver != nil {
		doc.TemplateID = s.resolver.DefaultID()
	}
	if s.taxService != nil {
		s.taxService.ApplyDefaults(doc)
	}
	return doc
}

// ValidateDocument checks the document shape and the tax identifier format
func (s *documentService) ValidateDocument(ctx context.Context, doc *models.Document) error {
	var tax models.TaxConfig
	if s.taxService != nil {
		tax = s.taxService.Config()
	}
	return models.ValidateDocument(s.validator, doc, tax)
}

// ComputeTotals runs the calculation engine. A document that does not name
// its tax regime gets the configured one on the tax label.
func (s *documentService) ComputeTotals(doc *models.Document) models.Totals {
	return calculator.Compute(s.withTaxName(doc))
}

// FormatTotals pairs totals with their display strings in the document's
// currency
func (s *documentService) FormatTotals(doc *models.Document, totals models.Totals) *TotalsResponse {
	f := s.formatter
	if f == nil {
		f = money.New(money.DefaultCurrency, money.DefaultLocale)
	}
	if doc != nil {
		f = f.ForCurrency(doc.Currency)
	}

	formatted := map[string]string{
		"subtotal":        f.Format(totals.Subtotal),
		"discount_amount": f.Format(totals.DiscountAmount),
		"tax_amount":      f.Format(totals.TaxAmount),
		"delivery_fee":    f.Format(totals.DeliveryFee),
		"service_charge":  f.Format(totals.ServiceCharge),
		"total":           f.Format(totals.Total),
	}
	if totals.HasChange {
		formatted["change_due"] = f.Format(totals.ChangeDue)
	}
	if totals.TaxLabel != "" {
		formatted["tax_label"] = totals.TaxLabel
	}

	return &TotalsResponse{Totals: totals, Formatted: formatted}
}

// RenderDocument renders the document under templateID, falling back to the
// document's own template and then the default
func (s *documentService) RenderDocument(doc *models.Document, totals models.Totals, templateID string) (*render.VisualTree, error) {
	tree, err := s.resolver.Render(s.withTaxName(doc), totals, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to render document: %w", err)
	}
	return tree, nil
}

// Summary returns the plain-text share summary of the document
func (s *documentService) Summary(doc *models.Document) string {
	doc = s.withTaxName(doc)
	return render.Summary(doc, calculator.Compute(doc), s.formatter)
}

// Templates lists the registered templates
func (s *documentService) Templates() []render.TemplateConfig {
	return s.resolver.Templates()
}

// ExportDocument runs the export state machine for the document
func (s *documentService) ExportDocument(ctx context.Context, doc *models.Document, req export.Request) export.Result {
	return s.orchestrator.Export(ctx, s.withTaxName(doc), req)
}

// withTaxName returns doc, or a clone carrying the regime's tax name when the
// document has none. The caller's document is never modified.
func (s *documentService) withTaxName(doc *models.Document) *models.Document {
	if doc == nil || s.taxService == nil || doc.Adjustments.TaxName != "" {
		return doc
	}
	c := doc.Clone()
	c.Adjustments.TaxName = s.taxService.Config().GetTaxName()
	return c
}
