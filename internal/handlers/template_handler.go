package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"salesdoc/internal/render"
	"salesdoc/internal/services"
)

// TemplateHandler lists registered templates
type TemplateHandler struct {
	documentService services.DocumentService
}

// NewTemplateHandler creates a new template handler
func NewTemplateHandler(documentService services.DocumentService) *TemplateHandler {
	return &TemplateHandler{documentService: documentService}
}

// TemplatesResponse lists templates
type TemplatesResponse struct {
	Templates []render.TemplateConfig `json:"templates"`
	Count     int                     `json:"count"`
}

// @Summary List templates
// @Description Registered templates, built-in and loaded from file
// @Tags templates
// @Produce json
// @Success 200 {object} TemplatesResponse
// @Router /templates [get]
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	templates := h.documentService.Templates()
	c.JSON(http.StatusOK, TemplatesResponse{
		Templates: templates,
		Count:     len(templates),
	})
}
