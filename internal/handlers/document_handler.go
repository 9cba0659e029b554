package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"salesdoc/internal/export"
	"salesdoc/internal/middleware"
	"salesdoc/internal/models"
	"salesdoc/internal/services"
)

// DocumentHandler handles document-related HTTP requests
type DocumentHandler struct {
	documentService services.DocumentService
	taxService      services.TaxServiceInterface
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(documentService services.DocumentService, taxService services.TaxServiceInterface) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		taxService:      taxService,
	}
}

// NewDocumentRequest selects the kind of a fresh document
type NewDocumentRequest struct {
	Kind models.DocumentKind `json:"kind" binding:"required,oneof=receipt invoice quote"`
}

// ExportDocumentRequest pairs a document with how it should be delivered
type ExportDocumentRequest struct {
	Document *models.Document `json:"document" binding:"required"`
	Request  export.Request   `json:"request"`
}

// SummaryResponse carries the plain-text share summary
type SummaryResponse struct {
	DocumentID string `json:"document_id"`
	Summary    string `json:"summary"`
}

// @Summary Create a new document
// @Description Create a document with the next serial, the configured currency and tax regime applied
// @Tags documents
// @Accept json
// @Produce json
// @Param request body NewDocumentRequest true "Document kind"
// @Success 201 {object} models.Document
// @Failure 400 {object} ErrorResponse
// @Router /documents [post]
func (h *DocumentHandler) NewDocument(c *gin.Context) {
	var req NewDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	doc := h.documentService.NewDocument(req.Kind)
	c.Set(middleware.DocumentIDKey, doc.ID)
	c.JSON(http.StatusCreated, doc)
}

// @Summary Compute document totals
// @Description Compute subtotal, discount, tax, charges, total and change due
// @Tags documents
// @Accept json
// @Produce json
// @Param document body models.Document true "Document"
// @Success 200 {object} services.TotalsResponse
// @Failure 400 {object} ErrorResponse
// @Router /documents/totals [post]
func (h *DocumentHandler) ComputeTotals(c *gin.Context) {
	doc, ok := h.bindDocument(c)
	if !ok {
		return
	}

	totals := h.documentService.ComputeTotals(doc)
	c.JSON(http.StatusOK, h.documentService.FormatTotals(doc, totals))
}

// @Summary Render a document
// @Description Render the document into a visual tree under the requested template
// @Tags documents
// @Accept json
// @Produce json
// @Param template query string false "Template identifier; unknown identifiers fall back to the default"
// @Param document body models.Document true "Document"
// @Success 200 {object} render.VisualTree
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /documents/render [post]
func (h *DocumentHandler) RenderDocument(c *gin.Context) {
	doc, ok := h.bindDocument(c)
	if !ok {
		return
	}

	templateID := c.Query("template")
	if templateID == "" {
		templateID = doc.TemplateID
	}

	totals := h.documentService.ComputeTotals(doc)
	tree, err := h.documentService.RenderDocument(doc, totals, templateID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to render document",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, tree)
}

// @Summary Share summary
// @Description Plain-text summary of the document as sent to messaging targets
// @Tags documents
// @Accept json
// @Produce json
// @Param document body models.Document true "Document"
// @Success 200 {object} SummaryResponse
// @Failure 400 {object} ErrorResponse
// @Router /documents/summary [post]
func (h *DocumentHandler) Summary(c *gin.Context) {
	doc, ok := h.bindDocument(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, SummaryResponse{
		DocumentID: doc.ID,
		Summary:    h.documentService.Summary(doc),
	})
}

// @Summary Validate tax compliance
// @Description Check the document against the configured tax regime
// @Tags documents
// @Accept json
// @Produce json
// @Param document body models.Document true "Document"
// @Success 200 {object} services.TaxComplianceValidationResult
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /documents/compliance [post]
func (h *DocumentHandler) ValidateCompliance(c *gin.Context) {
	doc, ok := h.bindDocument(c)
	if !ok {
		return
	}

	result, err := h.taxService.ValidateDocumentCompliance(c.Request.Context(), doc)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to validate document",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// @Summary Export a document
// @Description Download, preview, print or share a document. File artifacts are returned by URL.
// @Tags documents
// @Accept json
// @Produce json
// @Param request body ExportDocumentRequest true "Document and export request"
// @Success 200 {object} export.Result
// @Failure 400 {object} export.Result
// @Failure 409 {object} export.Result
// @Failure 422 {object} export.Result
// @Router /documents/export [post]
func (h *DocumentHandler) ExportDocument(c *gin.Context) {
	var req ExportDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	c.Set(middleware.DocumentIDKey, req.Document.ID)
	if err := h.documentService.ValidateDocument(c.Request.Context(), req.Document); err != nil {
		c.JSON(http.StatusBadRequest, validationResponse(err))
		return
	}

	result := h.documentService.ExportDocument(c.Request.Context(), req.Document, req.Request)
	c.Set(middleware.ExportStatusKey, string(result.Status))
	if result.Strategy != "" {
		c.Set(middleware.ExportStrategyKey, string(result.Strategy))
	}
	c.Set(middleware.ExportDegradedKey, result.Degraded)

	c.JSON(exportStatusCode(result), result)
}

// bindDocument decodes and validates the request body as a document. On
// failure the response has been written.
func (h *DocumentHandler) bindDocument(c *gin.Context) (*models.Document, bool) {
	var doc models.Document
	if err := c.ShouldBindJSON(&doc); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return nil, false
	}

	c.Set(middleware.DocumentIDKey, doc.ID)
	if err := h.documentService.ValidateDocument(c.Request.Context(), &doc); err != nil {
		c.JSON(http.StatusBadRequest, validationResponse(err))
		return nil, false
	}
	return &doc, true
}
