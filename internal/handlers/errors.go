package handlers

import (
	"errors"
	"net/http"

	"salesdoc/internal/adapters/blobstore"
	"salesdoc/internal/export"
	"salesdoc/internal/models"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error            string                   `json:"error"`
	Message          string                   `json:"message"`
	Remedy           string                   `json:"remedy,omitempty"`
	ValidationErrors []models.ValidationError `json:"validation_errors,omitempty"`
}

// validationResponse turns a document validation error into a response body
func validationResponse(err error) ErrorResponse {
	resp := ErrorResponse{
		Error:   "Validation failed",
		Message: err.Error(),
	}

	var many models.ValidationErrors
	var one *models.ValidationError
	switch {
	case errors.As(err, &many):
		resp.Message = "Document validation failed"
		resp.ValidationErrors = many
	case errors.As(err, &one):
		resp.Message = one.Message
		resp.ValidationErrors = []models.ValidationError{*one}
	}
	return resp
}

// isNotFoundError checks if an error means a released or unknown artifact
func isNotFoundError(err error) bool {
	return blobstore.IsNotFound(err)
}

// exportStatusCode maps an export result to its HTTP status
func exportStatusCode(result export.Result) int {
	switch result.Status {
	case export.StatusOK:
		return http.StatusOK
	case export.StatusBusy:
		return http.StatusConflict
	}
	if errors.Is(result.Err, export.ErrInvalidRequest) {
		return http.StatusBadRequest
	}
	return http.StatusUnprocessableEntity
}
