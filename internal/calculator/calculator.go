// Package calculator derives the monetary totals of a sales document.
//
// Every function here is pure: no I/O, no clock, and the input document is
// never modified. Aggregation runs at full decimal precision; rounding is left
// to the money formatter.
package calculator

import (
	"github.com/shopspring/decimal"

	"salesdoc/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Compute derives the totals of a document.
//
//	subtotal = Σ price × quantity over complete items
//	tax      = rate/100 × (subtotal − discount) when VAT is enabled
//	total    = subtotal − discount + tax + delivery + service
//	change   = paid − total (cash only, may be negative)
func Compute(doc *models.Document) models.Totals {
	var t models.Totals
	if doc == nil {
		return t
	}

	t.TotalCount = len(doc.Items)
	for _, item := range doc.Items {
		if !item.IsComplete() {
			continue
		}
		t.CompleteCount++
		t.Subtotal = t.Subtotal.Add(item.Amount())
	}

	adj := doc.Adjustments

	t.DiscountAmount = Discount(t.Subtotal, adj)
	t.TaxableAmount = t.Subtotal.Sub(t.DiscountAmount)

	if adj.VATEnabled {
		t.TaxRate = nonNegative(adj.VATRate)
		t.TaxAmount = t.TaxableAmount.Mul(t.TaxRate).Div(hundred)
		t.TaxLabel = models.TaxLabel(adj.TaxName, t.TaxRate)
	}

	t.DeliveryFee = nonNegative(adj.DeliveryFee)
	t.ServiceCharge = nonNegative(adj.ServiceCharge)

	t.Total = t.TaxableAmount.
		Add(t.TaxAmount).
		Add(t.DeliveryFee).
		Add(t.ServiceCharge)

	if doc.IsCash() && (doc.Payment.Tendered || !doc.Payment.AmountPaid.IsZero()) {
		t.HasChange = true
		t.ChangeDue = doc.Payment.AmountPaid.Sub(t.Total)
	}

	return t
}

// Discount returns the discount applied to a subtotal. The value is clamped
// to be non-negative and the resulting amount never exceeds the subtotal.
func Discount(subtotal decimal.Decimal, adj models.Adjustments) decimal.Decimal {
	if !adj.DiscountEnabled || !subtotal.IsPositive() {
		return decimal.Zero
	}

	value := nonNegative(adj.DiscountValue)

	var amount decimal.Decimal
	switch adj.DiscountType {
	case models.DiscountPercentage:
		amount = subtotal.Mul(value).Div(hundred)
	case models.DiscountFixed:
		amount = value
	default:
		return decimal.Zero
	}

	if amount.GreaterThan(subtotal) {
		return subtotal
	}
	return amount
}

// LineTotal returns the amount an item contributes to the subtotal
func LineTotal(item models.LineItem) decimal.Decimal {
	if !item.IsComplete() {
		return decimal.Zero
	}
	return item.Amount()
}

// Breakdown returns the per-line view of a document in item order
func Breakdown(doc *models.Document) []models.LineBreakdown {
	if doc == nil {
		return nil
	}

	lines := make([]models.LineBreakdown, 0, len(doc.Items))
	for _, item := range doc.Items {
		lines = append(lines, models.LineBreakdown{
			Item:     item,
			Amount:   LineTotal(item),
			Complete: item.IsComplete(),
		})
	}
	return lines
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
