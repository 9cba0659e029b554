package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"salesdoc/internal/adapters/blobstore"
	"salesdoc/internal/adapters/printsurface"
)

// printSurfacePolicy lets the print page run its inline style and print
// button; everything else stays same-origin
const printSurfacePolicy = "default-src 'self'; style-src 'unsafe-inline'; script-src 'unsafe-inline'; img-src * data:"

// FileHandler serves export artifacts until the releaser removes them
type FileHandler struct {
	store blobstore.Store
}

// NewFileHandler creates a new file handler
func NewFileHandler(store blobstore.Store) *FileHandler {
	return &FileHandler{store: store}
}

// @Summary Download an export artifact
// @Description Stream a stored artifact. Artifacts are released a short time after export.
// @Tags files
// @Produce application/pdf
// @Param key path string true "Artifact key"
// @Param inline query bool false "Display inline instead of as an attachment"
// @Success 200 {file} binary
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /files/{key} [get]
func (h *FileHandler) GetFile(c *gin.Context) {
	info, data, ok := h.load(c)
	if !ok {
		return
	}

	disposition := "attachment"
	if inline, _ := strconv.ParseBool(c.Query("inline")); inline {
		disposition = "inline"
	}

	name := info.Metadata["suggested_name"]
	if name == "" {
		name = info.Key
	}

	c.Header("Content-Disposition", fmt.Sprintf(`%s; filename="%s"`, disposition, name))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, info.ContentType, data)
}

// GetPrintSurface serves a stored print surface page
func (h *FileHandler) GetPrintSurface(c *gin.Context) {
	if !strings.HasSuffix(c.Param("key"), ".html") {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "Print surface not found",
			Message: "Only print surfaces are served here",
		})
		return
	}

	_, data, ok := h.load(c)
	if !ok {
		return
	}

	c.Header("Content-Security-Policy", printSurfacePolicy)
	c.Header("X-Frame-Options", "SAMEORIGIN")
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, printsurface.ContentType, data)
}

func (h *FileHandler) load(c *gin.Context) (*blobstore.BlobInfo, []byte, bool) {
	key := c.Param("key")
	ctx := c.Request.Context()

	info, err := h.store.Stat(ctx, key)
	if err == nil {
		var data []byte
		if data, err = h.store.Get(ctx, key); err == nil {
			return info, data, true
		}
	}

	if isNotFoundError(err) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "Artifact not found",
			Message: "The artifact has been released or never existed",
			Remedy:  "Export the document again",
		})
		return nil, nil, false
	}
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   "Failed to read artifact",
		Message: err.Error(),
	})
	return nil, nil, false
}
