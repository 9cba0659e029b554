// Package render resolves document templates and lays a document out as a
// backend-agnostic visual tree.
package render

import (
	"strings"
)

// GridColumns is the width of a row in column units
const GridColumns = 12

// Align is the horizontal alignment of a cell
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// SectionKind names a block of the rendered document
type SectionKind string

const (
	SectionHeader   SectionKind = "header"
	SectionParties  SectionKind = "parties"
	SectionMeta     SectionKind = "meta"
	SectionItems    SectionKind = "items"
	SectionTotals   SectionKind = "totals"
	SectionPayment  SectionKind = "payment"
	SectionTrailing SectionKind = "trailing"
)

// Cell is a single piece of text laid out on the column grid
type Cell struct {
	Text   string  `json:"text"`
	Span   int     `json:"span"`
	Align  Align   `json:"align,omitempty"`
	Bold   bool    `json:"bold,omitempty"`
	Size   float64 `json:"size,omitempty"`
	Muted  bool    `json:"muted,omitempty"`
	Accent bool    `json:"accent,omitempty"`
}

// Row is a horizontal band of cells. A divider row has no cells.
type Row struct {
	Cells   []Cell `json:"cells,omitempty"`
	Divider bool   `json:"divider,omitempty"`
}

// Section groups rows that belong to one part of the document
type Section struct {
	Kind SectionKind `json:"kind"`
	Rows []Row       `json:"rows"`
}

// VisualTree is the backend-agnostic description of a rendered document.
// PDF and print surface backends both consume it.
type VisualTree struct {
	Title      string         `json:"title"`
	DocumentID string         `json:"document_id"`
	Serial     string         `json:"serial"`
	Currency   string         `json:"currency"`
	LogoRef    string         `json:"logo_ref,omitempty"`
	Template   TemplateConfig `json:"template"`
	Sections   []*Section     `json:"sections"`
}

func newTree(title, docID, serial, currency string, cfg TemplateConfig) *VisualTree {
	return &VisualTree{
		Title:      title,
		DocumentID: docID,
		Serial:     serial,
		Currency:   currency,
		Template:   cfg,
	}
}

// Section returns the section of the given kind, or nil
func (t *VisualTree) Section(kind SectionKind) *Section {
	for _, s := range t.Sections {
		if s.Kind == kind {
			return s
		}
	}
	return nil
}

func (t *VisualTree) section(kind SectionKind) *Section {
	if s := t.Section(kind); s != nil {
		return s
	}
	s := &Section{Kind: kind}
	t.Sections = append(t.Sections, s)
	return s
}

// Text flattens the tree into plain lines, one per row. Dividers become a
// run of dashes.
func (t *VisualTree) Text() string {
	var b strings.Builder
	for _, s := range t.Sections {
		for _, r := range s.Rows {
			if r.Divider {
				b.WriteString(strings.Repeat("-", 32))
				b.WriteByte('\n')
				continue
			}
			parts := make([]string, 0, len(r.Cells))
			for _, c := range r.Cells {
				if c.Text != "" {
					parts = append(parts, c.Text)
				}
			}
			b.WriteString(strings.Join(parts, " "))
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Contains reports whether any cell holds exactly the given text
func (t *VisualTree) Contains(text string) bool {
	for _, s := range t.Sections {
		for _, r := range s.Rows {
			for _, c := range r.Cells {
				if c.Text == text {
					return true
				}
			}
		}
	}
	return false
}

func (s *Section) add(cells ...Cell) {
	s.Rows = append(s.Rows, Row{Cells: cells})
}

func (s *Section) divider() {
	s.Rows = append(s.Rows, Row{Divider: true})
}

func cell(text string, span int, align Align) Cell {
	if span <= 0 || span > GridColumns {
		span = GridColumns
	}
	return Cell{Text: text, Span: span, Align: align}
}

func (c Cell) bold() Cell {
	c.Bold = true
	return c
}

func (c Cell) muted() Cell {
	c.Muted = true
	return c
}

func (c Cell) accent() Cell {
	c.Accent = true
	return c
}

func (c Cell) size(pt float64) Cell {
	c.Size = pt
	return c
}
