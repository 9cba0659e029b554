package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"salesdoc/internal/export"
	"salesdoc/internal/models"
	"salesdoc/internal/money"
	"salesdoc/internal/render"
)

// ServiceContainer holds all service instances
type ServiceContainer struct {
	DocumentService DocumentService
	TaxService      TaxServiceInterface

	orchestrator *export.Orchestrator
}

// ServiceConfig holds configuration for services
type ServiceConfig struct {
	TaxConfig      *TaxConfig
	SerialTemplate string
}

// TaxConfig holds tax service configuration
type TaxConfig struct {
	CountryCode string
}

// NewServiceContainer creates a new service container with all services
func NewServiceContainer(resolver *render.Resolver, orchestrator *export.Orchestrator, formatter *money.Formatter, config *ServiceConfig, logger logrus.FieldLogger) (*ServiceContainer, error) {
	if resolver == nil {
		return nil, fmt.Errorf("template resolver cannot be nil")
	}
	if orchestrator == nil {
		return nil, fmt.Errorf("export orchestrator cannot be nil")
	}

	if config == nil {
		config = &ServiceConfig{}
	}
	if config.TaxConfig == nil {
		config.TaxConfig = &TaxConfig{
			CountryCode: models.DefaultTaxCountry,
		}
	}

	taxService, err := NewTaxServiceForCountry(config.TaxConfig.CountryCode)
	if err != nil {
		return nil, fmt.Errorf("failed to create tax service: %w", err)
	}

	return NewServiceContainerWithTax(resolver, orchestrator, formatter, taxService, config.SerialTemplate, logger), nil
}

// NewServiceContainerWithTax creates a container around an already built tax
// service, such as one carrying a custom rate
func NewServiceContainerWithTax(resolver *render.Resolver, orchestrator *export.Orchestrator, formatter *money.Formatter, taxService TaxServiceInterface, serialTemplate string, logger logrus.FieldLogger) *ServiceContainer {
	documentService := NewDocumentService(DocumentServiceConfig{
		Resolver:       resolver,
		Orchestrator:   orchestrator,
		TaxService:     taxService,
		Formatter:      formatter,
		SerialTemplate: serialTemplate,
		Logger:         logger,
	})

	return &ServiceContainer{
		DocumentService: documentService,
		TaxService:      taxService,
		orchestrator:    orchestrator,
	}
}

// Validate validates that all services are properly initialized
func (sc *ServiceContainer) Validate() error {
	if sc.DocumentService == nil {
		return fmt.Errorf("document service is nil")
	}
	if sc.TaxService == nil {
		return fmt.Errorf("tax service is nil")
	}

	return nil
}

// Close releases pending export handles
func (sc *ServiceContainer) Close(ctx context.Context) error {
	if sc.orchestrator == nil {
		return nil
	}
	return sc.orchestrator.Close(ctx)
}
