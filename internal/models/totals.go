package models

import "github.com/shopspring/decimal"

// Totals is the derived, recomputable set of monetary aggregates for a
// document. Values are kept at full precision; rounding happens only when a
// value is formatted for display.
type Totals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxableAmount  decimal.Decimal `json:"taxable_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	TaxRate        decimal.Decimal `json:"tax_rate"`
	TaxLabel       string          `json:"tax_label,omitempty"`
	DeliveryFee    decimal.Decimal `json:"delivery_fee"`
	ServiceCharge  decimal.Decimal `json:"service_charge"`
	Total          decimal.Decimal `json:"total"`

	// ChangeDue is only meaningful when HasChange is set. A negative value
	// means the customer underpaid.
	ChangeDue decimal.Decimal `json:"change_due"`
	HasChange bool            `json:"has_change"`

	CompleteCount int `json:"complete_count"`
	TotalCount    int `json:"total_count"`
}

// Underpaid reports whether the tendered amount is below the total
func (t Totals) Underpaid() bool {
	return t.HasChange && t.ChangeDue.IsNegative()
}

// HasIncompleteItems reports whether some line items were left out of the sums
func (t Totals) HasIncompleteItems() bool {
	return t.CompleteCount < t.TotalCount
}

// LineBreakdown is the per-line view used by renderers
type LineBreakdown struct {
	Item     LineItem        `json:"item"`
	Amount   decimal.Decimal `json:"amount"`
	Complete bool            `json:"complete"`
}
