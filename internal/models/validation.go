package models

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// ValidationError represents a validation error with field-specific details
type ValidationError struct {
	Field   string      `json:"field"`
	Tag     string      `json:"tag,omitempty"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Error implements the error interface
func (ve *ValidationError) Error() string {
	return ve.Message
}

// ValidationErrors collects every field error found in one document
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	msgs := make([]string, 0, len(ve))
	for _, e := range ve {
		msgs = append(msgs, e.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// NewValidator returns a validator configured for documents
func NewValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// decimal.Decimal is validated through its float value so the built-in
	// gte/lte tags apply to money fields
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})

	return v
}

// ValidateDocument checks the shape of a document at the form boundary.
// Arithmetic edge cases (empty cart, underpayment) are not errors here.
func ValidateDocument(v *validator.Validate, doc *Document, tax TaxConfig) error {
	if doc == nil {
		return &ValidationError{Field: "document", Message: "document is required"}
	}

	var out ValidationErrors

	if err := v.Struct(doc); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		out = append(out, FormatValidationErrors(verrs)...)
	}

	if doc.Adjustments.DiscountEnabled && doc.Adjustments.DiscountType == "" {
		out = append(out, ValidationError{
			Field:   "adjustments.discount_type",
			Tag:     "required_with",
			Message: "discount type is required when a discount is enabled",
		})
	}

	if tax != nil {
		if err := tax.ValidateBusinessNumber(doc.Business.TaxID); err != nil {
			out = append(out, ValidationError{
				Field:   "business.tax_id",
				Tag:     "tax_id",
				Message: err.Error(),
				Value:   doc.Business.TaxID,
			})
		}
	}

	if len(out) > 0 {
		return out
	}
	return nil
}

// FormatValidationErrors converts validator errors to ValidationError values
func FormatValidationErrors(verrs validator.ValidationErrors) []ValidationError {
	out := make([]ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, ValidationError{
			Field:   strings.TrimPrefix(fe.Namespace(), "Document."),
			Tag:     fe.Tag(),
			Message: validationMessage(fe),
			Value:   fmt.Sprintf("%v", fe.Value()),
		})
	}
	return out
}

func validationMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s cannot exceed %s", field, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s cannot be less than %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s cannot be greater than %s", field, fe.Param())
	case "email":
		return "Invalid email format"
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// SanitizeString removes extra whitespace and trims the string
func SanitizeString(s string) string {
	return whitespaceRe.ReplaceAllString(strings.TrimSpace(s), " ")
}
