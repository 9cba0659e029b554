package render

import (
	"regexp"
	"strings"
)

// Built-in template IDs
const (
	TemplateClassic = "classic"
	TemplateModern  = "modern"
	TemplateMinimal = "minimal"
	TemplateThermal = "thermal"
)

// DefaultTemplateID is resolved whenever a requested template is unknown
const DefaultTemplateID = TemplateClassic

// A4 page width in millimetres
const (
	PageWidthA4      = 210.0
	PageWidthThermal = 80.0
)

var (
	hexColorPattern  = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
	fontFamilyFilter = regexp.MustCompile(`^[A-Za-z0-9 \-]+$`)
)

// Palette holds the hex colors used by a template
type Palette struct {
	Primary string `json:"primary" toml:"primary"`
	Accent  string `json:"accent" toml:"accent"`
	Text    string `json:"text" toml:"text"`
	Muted   string `json:"muted" toml:"muted"`
}

// TemplateConfig describes the visual variant of a document
type TemplateConfig struct {
	ID          string  `json:"id" toml:"id"`
	Name        string  `json:"name" toml:"name"`
	Description string  `json:"description,omitempty" toml:"description"`
	Renderer    string  `json:"renderer" toml:"renderer"`
	Palette     Palette `json:"palette" toml:"palette"`
	Spacing     float64 `json:"spacing" toml:"spacing"`
	FontFamily  string  `json:"font_family" toml:"font_family"`
	FontSize    float64 `json:"font_size" toml:"font_size"`
	PageWidth   float64 `json:"page_width" toml:"page_width"`
	ShowLogo    bool    `json:"show_logo" toml:"show_logo"`
}

// RowHeight returns the base row height in millimetres scaled by Spacing
func (c TemplateConfig) RowHeight() float64 {
	spacing := c.Spacing
	if spacing <= 0 {
		spacing = 1
	}
	return 5 * spacing
}

// IsNarrow reports whether the template targets till-roll paper
func (c TemplateConfig) IsNarrow() bool {
	return c.PageWidth > 0 && c.PageWidth < 120
}

// IsBuiltin reports whether id names one of the built-in templates
func IsBuiltin(id string) bool {
	id = normalizeID(id)
	for _, cfg := range builtinTemplates() {
		if cfg.ID == id {
			return true
		}
	}
	return false
}

func builtinTemplates() []TemplateConfig {
	return []TemplateConfig{
		{
			ID:          TemplateClassic,
			Name:        "Classic",
			Description: "Centered letterhead with a ruled item table",
			Renderer:    TemplateClassic,
			Palette:     Palette{Primary: "#1f2937", Accent: "#b45309", Text: "#111827", Muted: "#6b7280"},
			Spacing:     1,
			FontFamily:  "helvetica",
			FontSize:    10,
			PageWidth:   PageWidthA4,
			ShowLogo:    true,
		},
		{
			ID:          TemplateModern,
			Name:        "Modern",
			Description: "Left-aligned brand block with an accented total",
			Renderer:    TemplateModern,
			Palette:     Palette{Primary: "#0f766e", Accent: "#0ea5e9", Text: "#0f172a", Muted: "#64748b"},
			Spacing:     1.2,
			FontFamily:  "helvetica",
			FontSize:    10,
			PageWidth:   PageWidthA4,
			ShowLogo:    true,
		},
		{
			ID:          TemplateMinimal,
			Name:        "Minimal",
			Description: "Two-column layout without table chrome",
			Renderer:    TemplateMinimal,
			Palette:     Palette{Primary: "#111827", Accent: "#111827", Text: "#111827", Muted: "#9ca3af"},
			Spacing:     1.1,
			FontFamily:  "helvetica",
			FontSize:    9,
			PageWidth:   PageWidthA4,
		},
		{
			ID:          TemplateThermal,
			Name:        "Thermal",
			Description: "Narrow till-roll receipt",
			Renderer:    TemplateThermal,
			Palette:     Palette{Primary: "#000000", Accent: "#000000", Text: "#000000", Muted: "#000000"},
			Spacing:     0.8,
			FontFamily:  "courier",
			FontSize:    8,
			PageWidth:   PageWidthThermal,
		},
	}
}

// merge fills zero-valued fields of c from base
func (c TemplateConfig) merge(base TemplateConfig) TemplateConfig {
	if c.Name == "" {
		c.Name = c.ID
	}
	if c.Description == "" {
		c.Description = base.Description
	}
	c.Palette.Primary = sanitizeColor(c.Palette.Primary, base.Palette.Primary)
	c.Palette.Accent = sanitizeColor(c.Palette.Accent, base.Palette.Accent)
	c.Palette.Text = sanitizeColor(c.Palette.Text, base.Palette.Text)
	c.Palette.Muted = sanitizeColor(c.Palette.Muted, base.Palette.Muted)
	if c.Spacing <= 0 {
		c.Spacing = base.Spacing
	}
	c.FontFamily = sanitizeFont(c.FontFamily, base.FontFamily)
	if c.FontSize <= 0 {
		c.FontSize = base.FontSize
	}
	if c.PageWidth <= 0 {
		c.PageWidth = base.PageWidth
	}
	return c
}

func sanitizeColor(value, fallback string) string {
	trimmed := strings.TrimSpace(value)
	if hexColorPattern.MatchString(trimmed) {
		return trimmed
	}
	return fallback
}

func sanitizeFont(value, fallback string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed != "" && fontFamilyFilter.MatchString(trimmed) {
		return strings.ToLower(trimmed)
	}
	return fallback
}
