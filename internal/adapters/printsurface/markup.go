// Package printsurface renders a visual tree as a printable HTML page and
// opens it for the user to print or save as PDF.
package printsurface

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"regexp"
	"strings"

	"salesdoc/internal/render"
)

// ContentType is the MIME type of the print surface markup
const ContentType = "text/html; charset=utf-8"

var ErrEmptyTree = errors.New("visual tree is empty")

var hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

const pageTemplate = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>{{.Tree.Title}}{{if .Tree.Serial}} {{.Tree.Serial}}{{end}}</title>
  <style>
    :root {
      --primary: {{color .Tree.Template.Palette.Primary}};
      --accent: {{color .Tree.Template.Palette.Accent}};
      --text: {{color .Tree.Template.Palette.Text}};
      --muted: {{color .Tree.Template.Palette.Muted}};
      --row: {{rowHeight .Tree.Template}};
    }
    @page { size: {{pageSize .Tree.Template}}; margin: {{pageMargin .Tree.Template}}; }
    * { box-sizing: border-box; }
    body {
      margin: 0 auto;
      max-width: {{.Tree.Template.PageWidth}}mm;
      padding: 8mm;
      font-family: {{fontStack .Tree.Template.FontFamily}};
      font-size: {{.Tree.Template.FontSize}}pt;
      color: var(--text);
    }
    .section { margin-bottom: 3mm; }
    .row { display: grid; grid-template-columns: repeat(12, 1fr); min-height: var(--row); align-items: baseline; }
    .divider { border-top: 1px dashed var(--muted); margin: 1.5mm 0; }
    .left { text-align: left; }
    .center { text-align: center; }
    .right { text-align: right; }
    .bold { font-weight: 700; }
    .muted { color: var(--muted); }
    .accent { color: var(--accent); }
    .logo { display: block; max-height: 20mm; margin: 0 auto 2mm; }
    .toolbar { text-align: center; margin: 4mm 0; }
    @media print { .toolbar { display: none; } body { padding: 0; } }
  </style>
</head>
<body>
  <div class="toolbar"><button onclick="window.print()">Print / Save as PDF</button></div>
  {{if .Tree.LogoRef}}<img class="logo" src="{{.Tree.LogoRef}}" alt="" />{{end}}
  {{range .Tree.Sections}}
  <div class="section section-{{.Kind}}">
    {{range .Rows}}
      {{if .Divider}}<div class="divider"></div>{{else}}
      <div class="row">
        {{range .Cells}}<div class="{{classes .}}" style="grid-column: span {{.Span}};{{if .Size}} font-size: {{.Size}}pt;{{end}}">{{.Text}}</div>{{end}}
      </div>
      {{end}}
    {{end}}
  </div>
  {{end}}
  {{if .AutoPrint}}<script>window.addEventListener("load", function () { window.print(); });</script>{{end}}
</body>
</html>
`

// Renderer produces print surface markup
type Renderer struct {
	tpl       *template.Template
	autoPrint bool
}

// NewRenderer creates a Renderer. With autoPrint set the page opens the
// print dialog as soon as it loads.
func NewRenderer(autoPrint bool) *Renderer {
	funcs := template.FuncMap{
		"color":      cssColor,
		"fontStack":  fontStack,
		"pageSize":   pageSize,
		"pageMargin": pageMargin,
		"rowHeight":  rowHeight,
		"classes":    classes,
	}
	return &Renderer{
		tpl:       template.Must(template.New("print").Funcs(funcs).Parse(pageTemplate)),
		autoPrint: autoPrint,
	}
}

// Render returns the HTML page for tree
func (r *Renderer) Render(tree *render.VisualTree) (string, error) {
	if tree == nil || len(tree.Sections) == 0 {
		return "", ErrEmptyTree
	}

	var buf bytes.Buffer
	err := r.tpl.Execute(&buf, struct {
		Tree      *render.VisualTree
		AutoPrint bool
	}{tree, r.autoPrint})
	if err != nil {
		return "", fmt.Errorf("failed to render print surface: %w", err)
	}
	return buf.String(), nil
}

func cssColor(value string) template.CSS {
	v := strings.TrimSpace(value)
	if hexColorPattern.MatchString(v) {
		return template.CSS(v)
	}
	return template.CSS("#111827")
}

func fontStack(family string) template.CSS {
	switch strings.ToLower(strings.TrimSpace(family)) {
	case "courier":
		return template.CSS(`"Courier New", Courier, monospace`)
	case "times":
		return template.CSS(`"Times New Roman", Times, serif`)
	default:
		return template.CSS(`-apple-system, "Segoe UI", Roboto, Helvetica, Arial, sans-serif`)
	}
}

func pageSize(cfg render.TemplateConfig) template.CSS {
	if cfg.IsNarrow() {
		return template.CSS(fmt.Sprintf("%gmm auto", cfg.PageWidth))
	}
	return template.CSS("A4")
}

func pageMargin(cfg render.TemplateConfig) template.CSS {
	if cfg.IsNarrow() {
		return template.CSS("2mm")
	}
	return template.CSS("12mm")
}

func rowHeight(cfg render.TemplateConfig) template.CSS {
	return template.CSS(fmt.Sprintf("%gmm", cfg.RowHeight()))
}

func classes(c render.Cell) string {
	out := []string{string(c.Align)}
	if c.Align == "" {
		out[0] = string(render.AlignLeft)
	}
	if c.Bold {
		out = append(out, "bold")
	}
	if c.Accent {
		out = append(out, "accent")
	} else if c.Muted {
		out = append(out, "muted")
	}
	return strings.Join(out, " ")
}
