package render

import (
	"salesdoc/internal/models"
	"salesdoc/internal/money"
)

// classicRenderer lays out a centered letterhead followed by a ruled table
type classicRenderer struct {
	formatter *money.Formatter
}

func (r *classicRenderer) Render(doc *models.Document, totals models.Totals, cfg TemplateConfig) (*VisualTree, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}

	c := readContent(doc, totals, r.formatter)
	tree := startTree(doc, cfg, c)
	base := cfg.FontSize

	header := tree.section(SectionHeader)
	if c.businessName != "" {
		header.add(cell(c.businessName, 12, AlignCenter).bold().size(base + 8))
	}
	for _, line := range c.businessLines {
		header.add(cell(line, 12, AlignCenter).muted())
	}
	header.divider()
	header.add(cell(c.title, 12, AlignCenter).bold().accent().size(base + 4))

	if len(c.customerLines) > 0 {
		parties := tree.section(SectionParties)
		label := "Bill to"
		if doc.Kind == models.KindQuote {
			label = "Prepared for"
		}
		parties.add(cell(label, 12, AlignLeft).bold())
		for _, line := range c.customerLines {
			parties.add(cell(line, 12, AlignLeft))
		}
	}

	for _, e := range c.meta {
		tree.section(SectionMeta).add(cell(e.label, 3, AlignLeft).muted(), cell(e.value, 9, AlignLeft))
	}

	items := tree.section(SectionItems)
	items.add(
		cell("Item", 6, AlignLeft).bold(),
		cell("Qty", 2, AlignCenter).bold(),
		cell("Price", 2, AlignRight).bold(),
		cell("Amount", 2, AlignRight).bold(),
	)
	items.divider()
	for _, l := range c.lines {
		items.add(
			cell(l.name, 6, AlignLeft),
			cell(l.quantity, 2, AlignCenter),
			cell(l.unitPrice, 2, AlignRight),
			cell(l.amount, 2, AlignRight),
		)
		if l.description != "" {
			items.add(cell(l.description, 6, AlignLeft).muted().size(base-1), cell("", 6, AlignLeft))
		}
	}
	if len(c.lines) == 0 {
		items.add(cell("No items", 12, AlignCenter).muted())
	}
	items.divider()

	sums := tree.section(SectionTotals)
	for _, e := range c.totals {
		label := cell(e.label, 8, AlignRight)
		value := cell(e.value, 4, AlignRight)
		if e.strong {
			label, value = label.bold().size(base+2), value.bold().size(base+2)
		}
		sums.add(label, value)
	}

	if len(c.payment) > 0 {
		pay := tree.section(SectionPayment)
		for _, e := range c.payment {
			value := cell(e.value, 4, AlignRight)
			if e.strong {
				value = value.bold()
			}
			pay.add(cell(e.label, 8, AlignRight).muted(), value)
		}
	}

	c.trailing(tree, AlignCenter)
	return tree, nil
}
