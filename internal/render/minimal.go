package render

import (
	"salesdoc/internal/models"
	"salesdoc/internal/money"
)

// minimalRenderer uses a plain two-column layout with no table chrome
type minimalRenderer struct {
	formatter *money.Formatter
}

func (r *minimalRenderer) Render(doc *models.Document, totals models.Totals, cfg TemplateConfig) (*VisualTree, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}

	c := readContent(doc, totals, r.formatter)
	tree := startTree(doc, cfg, c)

	header := tree.section(SectionHeader)
	header.add(cell(c.title, 6, AlignLeft).bold(), cell(c.businessName, 6, AlignRight).bold())
	for _, line := range c.businessLines {
		header.add(cell("", 6, AlignLeft), cell(line, 6, AlignRight).muted())
	}

	if len(c.customerLines) > 0 {
		parties := tree.section(SectionParties)
		for _, line := range c.customerLines {
			parties.add(cell(line, 12, AlignLeft))
		}
	}

	for _, e := range c.meta {
		tree.section(SectionMeta).add(cell(e.label+" "+e.value, 12, AlignLeft).muted())
	}

	items := tree.section(SectionItems)
	for _, l := range c.lines {
		items.add(cell(l.name, 8, AlignLeft), cell(l.amount, 4, AlignRight))
		items.add(cell(l.quantity+" × "+l.unitPrice, 8, AlignLeft).muted(), cell("", 4, AlignRight))
	}
	if len(c.lines) == 0 {
		items.add(cell("No items", 12, AlignLeft).muted())
	}

	sums := tree.section(SectionTotals)
	sums.divider()
	for _, e := range c.totals {
		label, value := cell(e.label, 8, AlignLeft), cell(e.value, 4, AlignRight)
		if e.strong {
			label, value = label.bold(), value.bold()
		} else {
			label = label.muted()
		}
		sums.add(label, value)
	}

	if len(c.payment) > 0 {
		pay := tree.section(SectionPayment)
		for _, e := range c.payment {
			pay.add(cell(e.label, 8, AlignLeft).muted(), cell(e.value, 4, AlignRight))
		}
	}

	c.trailing(tree, AlignLeft)
	return tree, nil
}
