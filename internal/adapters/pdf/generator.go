// Package pdf turns a rendered visual tree into a PDF document using maroto.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/core/entity"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"salesdoc/internal/render"
)

// ContentType is the MIME type of generated documents
const ContentType = "application/pdf"

var (
	ErrEmptyTree = errors.New("visual tree is empty")
	ErrNotPDF    = errors.New("generated output is not a PDF")

	pdfMagic = []byte("%PDF")
)

const (
	thermalPageHeight = 297.0
	thermalMargin     = 4.0
	pageMargin        = 12.0
)

// Generator renders visual trees to PDF bytes
type Generator struct{}

// NewGenerator creates a PDF generator
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate renders tree to PDF. maroto is not context aware, so a cancelled
// context abandons the result rather than interrupting the work.
func (g *Generator) Generate(ctx context.Context, tree *render.VisualTree) ([]byte, error) {
	if tree == nil || len(tree.Sections) == 0 {
		return nil, ErrEmptyTree
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)

	go func() {
		data, err := g.generate(tree)
		done <- result{data, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		if res.err != nil {
			return nil, res.err
		}
		if !IsPDF(res.data) {
			return nil, ErrNotPDF
		}
		return res.data, nil
	}
}

// IsPDF reports whether data looks like a usable PDF document
func IsPDF(data []byte) bool {
	return len(data) > len(pdfMagic) && bytes.HasPrefix(data, pdfMagic)
}

func (g *Generator) generate(tree *render.VisualTree) (data []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf generation panicked: %v", r)
		}
	}()

	m := maroto.New(pageConfig(tree.Template))

	rowHeight := tree.Template.RowHeight()
	for _, section := range tree.Sections {
		addSection(m, section, tree.Template, rowHeight)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

func pageConfig(tpl render.TemplateConfig) *entity.Config {
	b := config.NewBuilder()
	if tpl.IsNarrow() {
		b = b.WithDimensions(tpl.PageWidth, thermalPageHeight).
			WithLeftMargin(thermalMargin).
			WithTopMargin(thermalMargin).
			WithRightMargin(thermalMargin)
	} else {
		b = b.WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
			WithLeftMargin(pageMargin).
			WithTopMargin(pageMargin).
			WithRightMargin(pageMargin)
	}
	return b.Build()
}

func addSection(m core.Maroto, section *render.Section, tpl render.TemplateConfig, rowHeight float64) {
	for _, row := range section.Rows {
		if row.Divider {
			m.AddRow(rowHeight/2, line.NewCol(render.GridColumns, props.Line{
				Color:     hexColor(tpl.Palette.Muted),
				Thickness: 0.2,
			}))
			continue
		}

		height := rowHeight
		cols := make([]core.Col, 0, len(row.Cells))
		for _, c := range row.Cells {
			size := c.Size
			if size <= 0 {
				size = tpl.FontSize
			}
			if h := size * 0.5; h > height {
				height = h
			}

			column := col.New(c.Span)
			if strings.TrimSpace(c.Text) != "" {
				column.Add(text.New(Transliterate(c.Text), textProps(c, tpl, size)))
			}
			cols = append(cols, column)
		}
		m.AddRow(height, cols...)
	}
}

func textProps(c render.Cell, tpl render.TemplateConfig, size float64) props.Text {
	p := props.Text{
		Size:   size,
		Family: tpl.FontFamily,
		Align:  alignment(c.Align),
		Color:  hexColor(tpl.Palette.Text),
	}
	if c.Bold {
		p.Style = fontstyle.Bold
	}
	switch {
	case c.Accent:
		p.Color = hexColor(tpl.Palette.Accent)
	case c.Muted:
		p.Color = hexColor(tpl.Palette.Muted)
	}
	return p
}

func alignment(a render.Align) align.Type {
	switch a {
	case render.AlignCenter:
		return align.Center
	case render.AlignRight:
		return align.Right
	default:
		return align.Left
	}
}

// hexColor parses #rrggbb, returning nil (maroto's default) on bad input
func hexColor(hex string) *props.Color {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) != 6 {
		return nil
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil
	}
	return &props.Color{
		Red:   int(v >> 16 & 0xff),
		Green: int(v >> 8 & 0xff),
		Blue:  int(v & 0xff),
	}
}
