package models

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem represents one purchasable entry in a document
type LineItem struct {
	ID          string          `json:"id"`
	Name        string          `json:"name" validate:"max=255"`
	Description string          `json:"description,omitempty" validate:"max=512"`
	UnitPrice   decimal.Decimal `json:"unit_price" validate:"gte=0"`
	Quantity    int             `json:"quantity" validate:"min=1"`
	Unit        string          `json:"unit,omitempty" validate:"max=32"`
}

// NewLineItem creates an empty line item with quantity 1, as the form layer
// presents it before the user types anything
func NewLineItem() *LineItem {
	return &LineItem{
		ID:       uuid.New().String(),
		Quantity: 1,
		Unit:     "pcs",
	}
}

// NewCustomLineItem creates a populated line item
func NewCustomLineItem(name string, unitPrice decimal.Decimal, quantity int, unit string) *LineItem {
	item := NewLineItem()
	item.Name = name
	item.UnitPrice = unitPrice
	item.Quantity = quantity
	if strings.TrimSpace(unit) != "" {
		item.Unit = unit
	}
	return item
}

// IsComplete reports whether the item takes part in monetary aggregation.
// An item is complete only when it has a name and a price above zero.
func (li LineItem) IsComplete() bool {
	return strings.TrimSpace(li.Name) != "" && li.UnitPrice.IsPositive()
}

// Amount returns price × quantity at full precision. Quantities below one are
// treated as zero so that a mid-edit item never contributes a negative amount.
func (li LineItem) Amount() decimal.Decimal {
	if li.Quantity <= 0 {
		return decimal.Zero
	}
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// GetDisplayText returns a formatted display text for the line item
func (li LineItem) GetDisplayText() string {
	name := strings.TrimSpace(li.Name)
	if name == "" {
		name = "Untitled item"
	}

	text := fmt.Sprintf("%s (x%d", name, li.Quantity)
	if li.Unit != "" {
		text += " " + li.Unit
	}
	text += ")"

	if strings.TrimSpace(li.Description) != "" {
		text += fmt.Sprintf(" - %s", li.Description)
	}

	return text
}
