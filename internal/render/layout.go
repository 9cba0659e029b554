package render

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"salesdoc/internal/calculator"
	"salesdoc/internal/models"
	"salesdoc/internal/money"
)

const (
	dateLayout     = "02 Jan 2006"
	timeLayout     = "15:04"
	signatureRule  = "____________________"
	signatureLabel = "Authorized signature"
)

var hundred = decimal.NewFromInt(100)

// entry is a label/value pair printed in meta, totals and payment blocks
type entry struct {
	label  string
	value  string
	strong bool
}

// content is the template-independent reading of a document. Renderers only
// decide where and how each piece is placed.
type content struct {
	title         string
	businessName  string
	businessLines []string
	customerLines []string
	meta          []entry
	lines         []lineView
	incomplete    int
	totals        []entry
	payment       []entry
	notes         string
	terms         string
	footer        string
	signature     bool
}

type lineView struct {
	name        string
	description string
	quantity    string
	unitPrice   string
	amount      string
}

func readContent(doc *models.Document, totals models.Totals, f *money.Formatter) content {
	f = f.ForCurrency(doc.Currency)

	c := content{
		title:        doc.Kind.Title(),
		businessName: strings.TrimSpace(doc.Business.Name),
		notes:        strings.TrimSpace(doc.Notes),
		terms:        strings.TrimSpace(doc.Terms),
		footer:       strings.TrimSpace(doc.FooterMessage),
		signature:    strings.TrimSpace(doc.SignatureRef) != "",
	}

	c.businessLines = nonEmpty(
		doc.Business.Address,
		doc.Business.Phone,
		doc.Business.Email,
		prefixed("TIN: ", doc.Business.TaxID),
		prefixed("RC: ", doc.Business.RegistrationNumber),
	)

	c.customerLines = nonEmpty(
		doc.DisplayCustomer(),
		doc.Customer.Phone,
		doc.Customer.Email,
		doc.Customer.Address,
	)

	c.meta = readMeta(doc)
	c.lines, c.incomplete = readLines(doc, f)
	c.totals = readTotals(doc, totals, f)
	if doc.Kind != models.KindQuote {
		c.payment = readPayment(doc, totals, f)
	}

	return c
}

func readMeta(doc *models.Document) []entry {
	var meta []entry
	if doc.Serial != "" {
		meta = append(meta, entry{label: "No.", value: doc.Serial})
	}
	if !doc.IssuedAt.IsZero() {
		meta = append(meta,
			entry{label: "Date", value: doc.IssuedAt.Format(dateLayout)},
			entry{label: "Time", value: doc.IssuedAt.Format(timeLayout)},
		)
	}
	if doc.Kind == models.KindInvoice && doc.DueAt != nil {
		meta = append(meta, entry{label: "Due", value: doc.DueAt.Format(dateLayout)})
	}
	if doc.Kind == models.KindQuote && doc.ValidUntil != nil {
		meta = append(meta, entry{label: "Valid until", value: doc.ValidUntil.Format(dateLayout)})
	}
	if s := strings.TrimSpace(doc.StaffLabel); s != "" {
		meta = append(meta, entry{label: "Served by", value: s})
	}
	return meta
}

func readLines(doc *models.Document, f *money.Formatter) ([]lineView, int) {
	var (
		lines      []lineView
		incomplete int
	)
	for _, line := range calculator.Breakdown(doc) {
		if !line.Complete {
			incomplete++
			continue
		}
		qty := fmt.Sprintf("%d", line.Item.Quantity)
		if u := strings.TrimSpace(line.Item.Unit); u != "" && u != "pcs" {
			qty += " " + u
		}
		lines = append(lines, lineView{
			name:        strings.TrimSpace(line.Item.Name),
			description: strings.TrimSpace(line.Item.Description),
			quantity:    qty,
			unitPrice:   f.Format(line.Item.UnitPrice),
			amount:      f.Format(line.Amount),
		})
	}
	return lines, incomplete
}

func readTotals(doc *models.Document, t models.Totals, f *money.Formatter) []entry {
	out := []entry{{label: "Subtotal", value: f.Format(t.Subtotal)}}

	if t.DiscountAmount.IsPositive() {
		label := "Discount"
		if doc.Adjustments.DiscountType == models.DiscountPercentage {
			label = fmt.Sprintf("Discount (%s)", f.FormatPercent(decimal.Min(doc.Adjustments.DiscountValue, hundred)))
		}
		out = append(out, entry{label: label, value: f.Format(t.DiscountAmount.Neg())})
	}
	if doc.Adjustments.VATEnabled {
		out = append(out, entry{label: t.TaxLabel, value: f.Format(t.TaxAmount)})
	}
	if t.DeliveryFee.IsPositive() {
		out = append(out, entry{label: "Delivery", value: f.Format(t.DeliveryFee)})
	}
	if t.ServiceCharge.IsPositive() {
		out = append(out, entry{label: "Service charge", value: f.Format(t.ServiceCharge)})
	}

	return append(out, entry{label: "TOTAL", value: f.Format(t.Total), strong: true})
}

func readPayment(doc *models.Document, t models.Totals, f *money.Formatter) []entry {
	var out []entry
	if doc.Payment.Method != "" {
		out = append(out, entry{label: "Payment", value: paymentLabel(doc.Payment.Method)})
	}
	if !t.HasChange {
		return out
	}

	out = append(out, entry{label: "Amount paid", value: f.Format(doc.Payment.AmountPaid)})
	if t.Underpaid() {
		out = append(out, entry{label: "Balance due", value: f.Format(t.ChangeDue.Neg()), strong: true})
	} else {
		out = append(out, entry{label: "Change", value: f.Format(t.ChangeDue), strong: true})
	}
	return out
}

func paymentLabel(m models.PaymentMethod) string {
	switch m {
	case models.PaymentMethodCash:
		return "Cash"
	case models.PaymentMethodCard:
		return "Card"
	case models.PaymentMethodTransfer:
		return "Bank transfer"
	case models.PaymentMethodPOS:
		return "POS"
	default:
		return "Other"
	}
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func prefixed(prefix, value string) string {
	if strings.TrimSpace(value) == "" {
		return ""
	}
	return prefix + strings.TrimSpace(value)
}

func startTree(doc *models.Document, cfg TemplateConfig, c content) *VisualTree {
	tree := newTree(c.title, doc.ID, doc.Serial, doc.Currency, cfg)
	if cfg.ShowLogo {
		tree.LogoRef = strings.TrimSpace(doc.Business.LogoRef)
	}
	return tree
}

// trailing places notes, terms, signature and footer the same way for every
// A4 template
func (c content) trailing(tree *VisualTree, align Align) {
	if c.notes == "" && c.terms == "" && c.footer == "" && !c.signature {
		return
	}

	s := tree.section(SectionTrailing)
	if c.notes != "" {
		s.add(cell("Notes", 12, AlignLeft).bold())
		s.add(cell(c.notes, 12, AlignLeft))
	}
	if c.terms != "" {
		s.add(cell("Terms & conditions", 12, AlignLeft).bold())
		s.add(cell(c.terms, 12, AlignLeft).muted())
	}
	if c.signature {
		s.add(cell(signatureRule, 12, AlignRight))
		s.add(cell(signatureLabel, 12, AlignRight).muted())
	}
	if c.footer != "" {
		s.add(cell(c.footer, 12, align).muted())
	}
}
