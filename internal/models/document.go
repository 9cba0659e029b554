package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DocumentKind represents the type of sales document
type DocumentKind string

const (
	KindReceipt DocumentKind = "receipt"
	KindInvoice DocumentKind = "invoice"
	KindQuote   DocumentKind = "quote"
)

// Title returns the heading printed on the document
func (k DocumentKind) Title() string {
	switch k {
	case KindInvoice:
		return "INVOICE"
	case KindQuote:
		return "QUOTATION"
	default:
		return "RECEIPT"
	}
}

// SerialPrefix returns the prefix used when generating serial numbers
func (k DocumentKind) SerialPrefix() string {
	switch k {
	case KindInvoice:
		return "INV"
	case KindQuote:
		return "QUO"
	default:
		return "RCP"
	}
}

// DiscountType represents how a discount value is interpreted
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// PaymentMethod represents the payment method used
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodTransfer PaymentMethod = "transfer"
	PaymentMethodPOS      PaymentMethod = "pos"
	PaymentMethodOther    PaymentMethod = "other"
)

// Business holds the issuing business details printed in the document header
type Business struct {
	Name               string `json:"name" validate:"max=255"`
	Address            string `json:"address,omitempty" validate:"max=512"`
	Phone              string `json:"phone,omitempty" validate:"max=32"`
	Email              string `json:"email,omitempty" validate:"omitempty,email"`
	TaxID              string `json:"tax_id,omitempty" validate:"max=32"`
	RegistrationNumber string `json:"registration_number,omitempty" validate:"max=32"`
	LogoRef            string `json:"logo_ref,omitempty"`
}

// Customer holds the optional bill-to details
type Customer struct {
	Name    string `json:"name,omitempty" validate:"max=255"`
	Phone   string `json:"phone,omitempty" validate:"max=32"`
	Email   string `json:"email,omitempty" validate:"omitempty,email,max=254"`
	Address string `json:"address,omitempty" validate:"max=512"`
}

// Adjustments holds the optional modifiers applied on top of the item subtotal
type Adjustments struct {
	VATEnabled      bool            `json:"vat_enabled"`
	VATRate         decimal.Decimal `json:"vat_rate" validate:"gte=0,lte=100"`
	TaxName         string          `json:"tax_name,omitempty" validate:"max=32"`
	DiscountEnabled bool            `json:"discount_enabled"`
	DiscountType    DiscountType    `json:"discount_type,omitempty" validate:"omitempty,oneof=percentage fixed"`
	DiscountValue   decimal.Decimal `json:"discount_value"`
	DeliveryFee     decimal.Decimal `json:"delivery_fee" validate:"gte=0"`
	ServiceCharge   decimal.Decimal `json:"service_charge" validate:"gte=0"`
}

// Payment holds the payment fields of a document
type Payment struct {
	Method     PaymentMethod   `json:"method,omitempty" validate:"omitempty,oneof=cash card transfer pos other"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
	Tendered   bool            `json:"tendered"`
}

// Document is the full sales record handed to the core at calculation or
// export time. The core treats it as an immutable value.
type Document struct {
	ID         string       `json:"id" validate:"required"`
	Kind       DocumentKind `json:"kind" validate:"required,oneof=receipt invoice quote"`
	Serial     string       `json:"serial" validate:"max=64"`
	IssuedAt   time.Time    `json:"issued_at"`
	DueAt      *time.Time   `json:"due_at,omitempty"`
	ValidUntil *time.Time   `json:"valid_until,omitempty"`
	StaffLabel string       `json:"staff_label,omitempty" validate:"max=128"`
	Currency   string       `json:"currency,omitempty" validate:"omitempty,len=3"`
	TemplateID string       `json:"template_id,omitempty"`

	Business    Business    `json:"business"`
	Customer    Customer    `json:"customer"`
	Items       []LineItem  `json:"items" validate:"max=500,dive"`
	Adjustments Adjustments `json:"adjustments"`
	Payment     Payment     `json:"payment"`

	Notes         string `json:"notes,omitempty" validate:"max=2000"`
	Terms         string `json:"terms,omitempty" validate:"max=4000"`
	SignatureRef  string `json:"signature_ref,omitempty"`
	FooterMessage string `json:"footer_message,omitempty" validate:"max=512"`
}

// NewDocument creates a document with sensible defaults: the given issue time,
// an auto-generated serial, cash payment and one empty line item.
func NewDocument(kind DocumentKind, now time.Time, seq int64) *Document {
	if kind == "" {
		kind = KindReceipt
	}

	serial, err := FormatSerial(DefaultSerialTemplate, kind, now, seq)
	if err != nil {
		serial = kind.SerialPrefix() + "-" + uuid.New().String()[:8]
	}

	return &Document{
		ID:       uuid.New().String(),
		Kind:     kind,
		Serial:   serial,
		IssuedAt: now,
		Items:    []LineItem{*NewLineItem()},
		Payment: Payment{
			Method: PaymentMethodCash,
		},
	}
}

// Clone returns a deep copy of the document. Exports work on clones so that
// edits arriving mid-export cannot leak into an in-flight artifact.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}

	c := *d
	if d.DueAt != nil {
		due := *d.DueAt
		c.DueAt = &due
	}
	if d.ValidUntil != nil {
		valid := *d.ValidUntil
		c.ValidUntil = &valid
	}
	if d.Items != nil {
		c.Items = make([]LineItem, len(d.Items))
		copy(c.Items, d.Items)
	}
	return &c
}

// IsCash reports whether change should be computed for this document
func (d *Document) IsCash() bool {
	return d.Payment.Method == PaymentMethodCash
}

// DisplayCustomer returns the bill-to name or an empty string
func (d *Document) DisplayCustomer() string {
	return SanitizeString(d.Customer.Name)
}
