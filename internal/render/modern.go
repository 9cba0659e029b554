package render

import (
	"salesdoc/internal/models"
	"salesdoc/internal/money"
)

// modernRenderer puts the brand block on the left, the document title on the
// right and highlights the total in the accent color
type modernRenderer struct {
	formatter *money.Formatter
}

func (r *modernRenderer) Render(doc *models.Document, totals models.Totals, cfg TemplateConfig) (*VisualTree, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}

	c := readContent(doc, totals, r.formatter)
	tree := startTree(doc, cfg, c)
	base := cfg.FontSize

	header := tree.section(SectionHeader)
	header.add(
		cell(c.businessName, 8, AlignLeft).bold().size(base+6),
		cell(c.title, 4, AlignRight).bold().accent().size(base+6),
	)
	for i, line := range c.businessLines {
		right := ""
		if i == 0 && doc.Serial != "" {
			right = "# " + doc.Serial
		}
		header.add(cell(line, 8, AlignLeft).muted(), cell(right, 4, AlignRight).muted())
	}
	if len(c.businessLines) == 0 && doc.Serial != "" {
		header.add(cell("", 8, AlignLeft), cell("# "+doc.Serial, 4, AlignRight).muted())
	}

	if len(c.customerLines) > 0 {
		parties := tree.section(SectionParties)
		parties.add(cell("BILLED TO", 6, AlignLeft).bold().accent())
		for _, line := range c.customerLines {
			parties.add(cell(line, 6, AlignLeft))
		}
	}
	for _, e := range c.meta {
		if e.label == "No." {
			continue
		}
		tree.section(SectionMeta).add(cell(e.label, 8, AlignRight).muted(), cell(e.value, 4, AlignRight))
	}

	items := tree.section(SectionItems)
	items.add(
		cell("DESCRIPTION", 5, AlignLeft).bold().accent(),
		cell("QTY", 2, AlignCenter).bold().accent(),
		cell("UNIT PRICE", 2, AlignRight).bold().accent(),
		cell("AMOUNT", 3, AlignRight).bold().accent(),
	)
	for _, l := range c.lines {
		items.add(
			cell(l.name, 5, AlignLeft).bold(),
			cell(l.quantity, 2, AlignCenter),
			cell(l.unitPrice, 2, AlignRight),
			cell(l.amount, 3, AlignRight),
		)
		if l.description != "" {
			items.add(cell(l.description, 12, AlignLeft).muted().size(base - 1))
		}
	}
	if len(c.lines) == 0 {
		items.add(cell("No items", 12, AlignLeft).muted())
	}
	items.divider()

	sums := tree.section(SectionTotals)
	for _, e := range c.totals {
		if e.strong {
			sums.add(
				cell(e.label, 8, AlignRight).bold().accent().size(base+4),
				cell(e.value, 4, AlignRight).bold().accent().size(base+4),
			)
			continue
		}
		sums.add(cell(e.label, 8, AlignRight).muted(), cell(e.value, 4, AlignRight))
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

	c.trailing(tree, AlignLeft)
	return tree, nil
}
