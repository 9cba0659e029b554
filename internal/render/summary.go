package render

import (
	"fmt"
	"strings"

	"salesdoc/internal/models"
	"salesdoc/internal/money"
)

// Summary produces the plain-text version of a document used for clipboard
// copy and messaging share links
func Summary(doc *models.Document, totals models.Totals, f *money.Formatter) string {
	if doc == nil {
		return ""
	}
	if f == nil {
		f = money.New(money.DefaultCurrency, money.DefaultLocale)
	}

	c := readContent(doc, totals, f)

	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	if c.businessName != "" {
		line("*%s*", c.businessName)
	}
	title := c.title
	if doc.Serial != "" {
		title += " " + doc.Serial
	}
	line("%s", title)

	for _, e := range c.meta {
		if e.label == "No." || e.label == "Time" {
			continue
		}
		line("%s: %s", e.label, e.value)
	}
	if name := doc.DisplayCustomer(); name != "" {
		line("Customer: %s", name)
	}

	b.WriteByte('\n')
	for _, l := range c.lines {
		line("- %s x%s @ %s = %s", l.name, l.quantity, l.unitPrice, l.amount)
	}
	if len(c.lines) == 0 {
		line("(no items)")
	}

	b.WriteByte('\n')
	for _, e := range c.totals {
		if e.strong {
			line("*%s: %s*", e.label, e.value)
			continue
		}
		line("%s: %s", e.label, e.value)
	}
	for _, e := range c.payment {
		line("%s: %s", e.label, e.value)
	}

	if c.notes != "" {
		b.WriteByte('\n')
		line("%s", c.notes)
	}
	if c.footer != "" {
		b.WriteByte('\n')
		line("%s", c.footer)
	}

	return strings.TrimRight(b.String(), "\n")
}
