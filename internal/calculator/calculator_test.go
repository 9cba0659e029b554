package calculator

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesdoc/internal/models"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.Truef(t, d(want).Equal(got), "%s: expected %s, got %s", field, want, got.String())
}

func scenarioDocument() *models.Document {
	doc := models.NewDocument(models.KindReceipt, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), 1)
	doc.Items = []models.LineItem{
		*models.NewCustomLineItem("Jollof rice", d("1500"), 2, "plate"),
		*models.NewCustomLineItem("Grilled chicken", d("2300"), 1, "pcs"),
	}
	doc.Adjustments.VATEnabled = true
	doc.Adjustments.VATRate = d("7.5")
	return doc
}

func TestCompute_VATScenario(t *testing.T) {
	totals := Compute(scenarioDocument())

	assertDecimal(t, "5300", totals.Subtotal, "subtotal")
	assertDecimal(t, "0", totals.DiscountAmount, "discount")
	assertDecimal(t, "397.50", totals.TaxAmount, "tax")
	assertDecimal(t, "5697.50", totals.Total, "total")
	assert.Equal(t, 2, totals.CompleteCount)
	assert.Equal(t, 2, totals.TotalCount)
}

func TestCompute_FixedDiscountScenario(t *testing.T) {
	doc := scenarioDocument()
	doc.Adjustments.DiscountEnabled = true
	doc.Adjustments.DiscountType = models.DiscountFixed
	doc.Adjustments.DiscountValue = d("500")

	totals := Compute(doc)

	assertDecimal(t, "500", totals.DiscountAmount, "discount")
	assertDecimal(t, "360", totals.TaxAmount, "tax")
	assertDecimal(t, "5160", totals.Total, "total")
}

func TestCompute_CashChangeScenario(t *testing.T) {
	doc := scenarioDocument()
	doc.Payment.Method = models.PaymentMethodCash
	doc.Payment.AmountPaid = d("6000")

	totals := Compute(doc)

	require.True(t, totals.HasChange)
	assertDecimal(t, "302.50", totals.ChangeDue, "change")
	assert.False(t, totals.Underpaid())
}

func TestCompute_Underpayment(t *testing.T) {
	doc := scenarioDocument()
	doc.Payment.AmountPaid = d("5000")

	totals := Compute(doc)

	require.True(t, totals.HasChange)
	assertDecimal(t, "-697.50", totals.ChangeDue, "change")
	assert.True(t, totals.Underpaid())
}

func TestCompute_ChangeOnlyForCash(t *testing.T) {
	doc := scenarioDocument()
	doc.Payment.Method = models.PaymentMethodCard
	doc.Payment.AmountPaid = d("6000")

	totals := Compute(doc)
	assert.False(t, totals.HasChange)
	assert.True(t, totals.ChangeDue.IsZero())

	doc.Payment.Method = models.PaymentMethodCash
	doc.Payment.AmountPaid = decimal.Zero
	doc.Payment.Tendered = false
	assert.False(t, Compute(doc).HasChange)

	doc.Payment.Tendered = true
	totals = Compute(doc)
	assert.True(t, totals.HasChange)
	assertDecimal(t, "-5697.50", totals.ChangeDue, "change")
}

func TestCompute_NoCompleteItems(t *testing.T) {
	tests := []struct {
		name  string
		items []models.LineItem
	}{
		{"empty list", nil},
		{"nameless item", []models.LineItem{*models.NewCustomLineItem("  ", d("100"), 2, "")}},
		{"zero price", []models.LineItem{*models.NewCustomLineItem("Bread", d("0"), 3, "")}},
		{"default empty item", []models.LineItem{*models.NewLineItem()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := scenarioDocument()
			doc.Items = tt.items
			doc.Adjustments.DiscountEnabled = true
			doc.Adjustments.DiscountType = models.DiscountFixed
			doc.Adjustments.DiscountValue = d("500")

			totals := Compute(doc)

			assert.True(t, totals.Subtotal.IsZero())
			assert.True(t, totals.DiscountAmount.IsZero())
			assert.True(t, totals.TaxAmount.IsZero())
			assert.True(t, totals.Total.IsZero())
			assert.Equal(t, 0, totals.CompleteCount)
			assert.Equal(t, len(tt.items), totals.TotalCount)
		})
	}
}

func TestCompute_IncompleteItemsExcluded(t *testing.T) {
	doc := scenarioDocument()
	doc.Items = append(doc.Items, *models.NewCustomLineItem("", d("999"), 5, ""))

	totals := Compute(doc)

	assertDecimal(t, "5300", totals.Subtotal, "subtotal")
	assert.Equal(t, 2, totals.CompleteCount)
	assert.Equal(t, 3, totals.TotalCount)
	assert.True(t, totals.HasIncompleteItems())
}

func TestDiscount_Percentage(t *testing.T) {
	subtotal := d("5300")

	tests := []struct {
		value string
		want  string
	}{
		{"10", "530"},
		{"0", "0"},
		{"-5", "0"},
		{"100", "5300"},
		{"150", "5300"},
		{"12.5", "662.5"},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			adj := models.Adjustments{
				DiscountEnabled: true,
				DiscountType:    models.DiscountPercentage,
				DiscountValue:   d(tt.value),
			}
			assertDecimal(t, tt.want, Discount(subtotal, adj), "discount")
		})
	}
}

func TestDiscount_FixedClampedToSubtotal(t *testing.T) {
	adj := models.Adjustments{DiscountEnabled: true, DiscountType: models.DiscountFixed, DiscountValue: d("9000")}
	assertDecimal(t, "5300", Discount(d("5300"), adj), "discount")

	adj.DiscountValue = d("-20")
	assertDecimal(t, "0", Discount(d("5300"), adj), "discount")

	adj.DiscountEnabled = false
	adj.DiscountValue = d("20")
	assertDecimal(t, "0", Discount(d("5300"), adj), "discount")
}

func TestCompute_ChargesAddedAfterTax(t *testing.T) {
	doc := scenarioDocument()
	doc.Adjustments.DeliveryFee = d("1000")
	doc.Adjustments.ServiceCharge = d("250")

	totals := Compute(doc)

	assertDecimal(t, "397.50", totals.TaxAmount, "tax")
	assertDecimal(t, "6947.50", totals.Total, "total")
}

func TestCompute_MonotonicInCharges(t *testing.T) {
	base := scenarioDocument()

	var last decimal.Decimal
	for i, fee := range []string{"0", "1", "50", "50", "1000"} {
		doc := base.Clone()
		doc.Adjustments.DeliveryFee = d(fee)
		total := Compute(doc).Total
		if i > 0 {
			assert.Truef(t, total.GreaterThanOrEqual(last), "delivery %s", fee)
		}
		last = total
	}

	last = decimal.Zero
	for i, charge := range []string{"0", "0.01", "10", "999"} {
		doc := base.Clone()
		doc.Adjustments.ServiceCharge = d(charge)
		total := Compute(doc).Total
		if i > 0 {
			assert.Truef(t, total.GreaterThanOrEqual(last), "service %s", charge)
		}
		last = total
	}
}

func withRate(doc *models.Document, rate string) *models.Document {
	c := doc.Clone()
	c.Adjustments.VATRate = d(rate)
	return c
}

func TestCompute_TaxRateOrdering(t *testing.T) {
	base := scenarioDocument()
	rates := []string{"0", "1", "5", "7.5", "15", "50"}

	var last decimal.Decimal
	for i, rate := range rates {
		total := Compute(withRate(base, rate)).Total
		if i > 0 {
			assert.Truef(t, total.GreaterThanOrEqual(last), "rate %s gave %s < %s", rate, total, last)
		}
		last = total
	}
}

func TestCompute_DeterministicAndPure(t *testing.T) {
	doc := scenarioDocument()
	doc.Adjustments.DiscountEnabled = true
	doc.Adjustments.DiscountType = models.DiscountPercentage
	doc.Adjustments.DiscountValue = d("3.3333")
	before := doc.Clone()

	first := Compute(doc)
	second := Compute(doc)

	assert.Equal(t, first, second)
	assert.Equal(t, before, doc)
}

func TestCompute_NilDocument(t *testing.T) {
	assert.Equal(t, models.Totals{}, Compute(nil))
	assert.Nil(t, Breakdown(nil))
}

func TestBreakdown(t *testing.T) {
	doc := scenarioDocument()
	doc.Items = append(doc.Items, *models.NewLineItem())

	lines := Breakdown(doc)
	require.Len(t, lines, 3)

	assertDecimal(t, "3000", lines[0].Amount, "line 1")
	assert.True(t, lines[0].Complete)
	assertDecimal(t, "2300", lines[1].Amount, "line 2")
	assert.False(t, lines[2].Complete)
	assert.True(t, lines[2].Amount.IsZero())
}

func TestCompute_TaxLabel(t *testing.T) {
	doc := scenarioDocument()
	assert.Equal(t, "VAT (7.5%)", Compute(doc).TaxLabel)

	doc.Adjustments.TaxName = "GST"
	doc.Adjustments.VATRate = d("10")
	assert.Equal(t, "GST (10%)", Compute(doc).TaxLabel)

	doc.Adjustments.VATEnabled = false
	assert.Empty(t, Compute(doc).TaxLabel)
}
