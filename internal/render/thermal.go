package render

import (
	"salesdoc/internal/models"
	"salesdoc/internal/money"
)

// thermalRenderer targets 80mm till rolls: single column, centered header,
// each item on two lines
type thermalRenderer struct {
	formatter *money.Formatter
}

func (r *thermalRenderer) Render(doc *models.Document, totals models.Totals, cfg TemplateConfig) (*VisualTree, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}

	c := readContent(doc, totals, r.formatter)
	tree := startTree(doc, cfg, c)
	base := cfg.FontSize

	header := tree.section(SectionHeader)
	if c.businessName != "" {
		header.add(cell(c.businessName, 12, AlignCenter).bold().size(base + 3))
	}
	for _, line := range c.businessLines {
		header.add(cell(line, 12, AlignCenter))
	}
	header.divider()
	header.add(cell(c.title, 12, AlignCenter).bold())

	for _, e := range c.meta {
		tree.section(SectionMeta).add(cell(e.label, 5, AlignLeft), cell(e.value, 7, AlignRight))
	}

	if len(c.customerLines) > 0 {
		tree.section(SectionParties).add(cell("Customer", 5, AlignLeft), cell(c.customerLines[0], 7, AlignRight))
	}

	items := tree.section(SectionItems)
	items.divider()
	for _, l := range c.lines {
		items.add(cell(l.name, 12, AlignLeft))
		items.add(cell("  "+l.quantity+" x "+l.unitPrice, 7, AlignLeft), cell(l.amount, 5, AlignRight))
	}
	items.divider()

	sums := tree.section(SectionTotals)
	for _, e := range c.totals {
		label, value := cell(e.label, 7, AlignLeft), cell(e.value, 5, AlignRight)
		if e.strong {
			label, value = label.bold().size(base+2), value.bold().size(base+2)
		}
		sums.add(label, value)
	}

	if len(c.payment) > 0 {
		pay := tree.section(SectionPayment)
		pay.divider()
		for _, e := range c.payment {
			pay.add(cell(e.label, 7, AlignLeft), cell(e.value, 5, AlignRight))
		}
	}

	if c.notes != "" || c.footer != "" {
		trailing := tree.section(SectionTrailing)
		trailing.divider()
		if c.notes != "" {
			trailing.add(cell(c.notes, 12, AlignCenter))
		}
		if c.footer != "" {
			trailing.add(cell(c.footer, 12, AlignCenter).bold())
		}
	}

	return tree, nil
}
