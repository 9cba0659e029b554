package render

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"salesdoc/internal/models"
	"salesdoc/internal/money"
)

var (
	ErrNilDocument     = errors.New("document is nil")
	ErrInvalidTemplate = errors.New("invalid template")
	ErrUnknownRenderer = errors.New("unknown renderer")
	ErrBuiltinTemplate = errors.New("built-in templates cannot be replaced")
)

// Renderer turns a document and its totals into a visual tree
type Renderer interface {
	Render(doc *models.Document, totals models.Totals, cfg TemplateConfig) (*VisualTree, error)
}

// RendererFunc adapts a function to the Renderer interface
type RendererFunc func(doc *models.Document, totals models.Totals, cfg TemplateConfig) (*VisualTree, error)

// Render calls f
func (f RendererFunc) Render(doc *models.Document, totals models.Totals, cfg TemplateConfig) (*VisualTree, error) {
	return f(doc, totals, cfg)
}

// Resolver maps template IDs to their configuration and renderer. Resolving
// never fails: unknown IDs fall back to the default template.
type Resolver struct {
	mu        sync.RWMutex
	templates map[string]TemplateConfig
	renderers map[string]Renderer
	builtin   map[string]bool
	order     []string
	defaultID string
	logger    logrus.FieldLogger
}

// NewResolver creates a resolver holding the built-in templates
func NewResolver(formatter *money.Formatter, logger logrus.FieldLogger) *Resolver {
	if formatter == nil {
		formatter = money.New(money.DefaultCurrency, money.DefaultLocale)
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	r := &Resolver{
		templates: make(map[string]TemplateConfig),
		renderers: make(map[string]Renderer),
		builtin:   make(map[string]bool),
		defaultID: DefaultTemplateID,
		logger:    logger,
	}

	renderers := map[string]Renderer{
		TemplateClassic: &classicRenderer{formatter: formatter},
		TemplateModern:  &modernRenderer{formatter: formatter},
		TemplateMinimal: &minimalRenderer{formatter: formatter},
		TemplateThermal: &thermalRenderer{formatter: formatter},
	}

	for _, cfg := range builtinTemplates() {
		r.templates[cfg.ID] = cfg
		r.renderers[cfg.ID] = renderers[cfg.Renderer]
		r.builtin[cfg.ID] = true
		r.order = append(r.order, cfg.ID)
	}

	return r
}

// SetDefault changes the template used for unknown IDs
func (r *Resolver) SetDefault(id string) error {
	id = normalizeID(id)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.templates[id]; !ok {
		return fmt.Errorf("%w: %q is not registered", ErrInvalidTemplate, id)
	}
	r.defaultID = id
	return nil
}

// DefaultID returns the ID of the fallback template
func (r *Resolver) DefaultID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaultID
}

// Resolve returns the configuration for id, or the default configuration
// when id is empty or unknown
func (r *Resolver) Resolve(id string) TemplateConfig {
	id = normalizeID(id)

	r.mu.RLock()
	defer r.mu.RUnlock()

	if cfg, ok := r.templates[id]; ok {
		return cfg
	}

	if id != "" {
		r.logger.WithFields(logrus.Fields{
			"template": id,
			"default":  r.defaultID,
		}).Debug("Unknown template, using default")
	}
	return r.templates[r.defaultID]
}

// Register adds a template. When renderer is nil the config must name an
// existing renderer in cfg.Renderer; missing style fields are inherited from
// that renderer's own template.
func (r *Resolver) Register(cfg TemplateConfig, renderer Renderer) error {
	cfg.ID = normalizeID(cfg.ID)
	cfg.Renderer = normalizeID(cfg.Renderer)

	if cfg.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidTemplate)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.builtin[cfg.ID] {
		return fmt.Errorf("%w: %s", ErrBuiltinTemplate, cfg.ID)
	}

	if renderer != nil {
		if cfg.Renderer == "" {
			cfg.Renderer = cfg.ID
		}
		if r.builtin[cfg.Renderer] {
			return fmt.Errorf("%w: renderer %s", ErrBuiltinTemplate, cfg.Renderer)
		}
		base := r.templates[DefaultTemplateID]
		if existing, ok := r.templates[cfg.Renderer]; ok {
			base = existing
		}
		cfg = cfg.merge(base)
		r.renderers[cfg.Renderer] = renderer
	} else {
		if _, ok := r.renderers[cfg.Renderer]; !ok {
			return fmt.Errorf("%w: %q for template %s", ErrUnknownRenderer, cfg.Renderer, cfg.ID)
		}
		base, ok := r.templates[cfg.Renderer]
		if !ok {
			base = r.templates[DefaultTemplateID]
		}
		cfg = cfg.merge(base)
	}

	if _, exists := r.templates[cfg.ID]; !exists {
		r.order = append(r.order, cfg.ID)
	}
	r.templates[cfg.ID] = cfg

	r.logger.WithFields(logrus.Fields{
		"template": cfg.ID,
		"renderer": cfg.Renderer,
	}).Debug("Template registered")

	return nil
}

// RendererFor selects the renderer for a resolved configuration
func (r *Resolver) RendererFor(cfg TemplateConfig) Renderer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if rr, ok := r.renderers[normalizeID(cfg.Renderer)]; ok {
		return rr
	}
	return r.renderers[r.templates[r.defaultID].Renderer]
}

// Templates returns every registered template in registration order
func (r *Resolver) Templates() []TemplateConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]TemplateConfig, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.templates[id])
	}
	return out
}

// Render resolves a template and renders the document with it. An empty
// templateID falls back to the document's preferred template.
func (r *Resolver) Render(doc *models.Document, totals models.Totals, templateID string) (*VisualTree, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}

	if strings.TrimSpace(templateID) == "" {
		templateID = doc.TemplateID
	}

	cfg := r.Resolve(templateID)
	tree, err := r.RendererFor(cfg).Render(doc, totals, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to render %s with template %s: %w", doc.Kind, cfg.ID, err)
	}
	return tree, nil
}

func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
