package render

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
)

// templateFile is the on-disk shape of extra template definitions:
//
//	[[template]]
//	id       = "classic-green"
//	renderer = "classic"
//	spacing  = 1.2
//
//	[template.palette]
//	primary = "#166534"
type templateFile struct {
	Default   string           `toml:"default"`
	Templates []TemplateConfig `toml:"template"`
}

// LoadFile registers the templates defined in a TOML file and returns how
// many were added
func (r *Resolver) LoadFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open templates file: %w", err)
	}
	defer f.Close()

	n, err := r.Load(f)
	if err != nil {
		return n, fmt.Errorf("%s: %w", path, err)
	}
	return n, nil
}

// Load registers templates decoded from TOML. Every variant must reuse an
// existing renderer. Registration stops at the first invalid entry.
func (r *Resolver) Load(src io.Reader) (int, error) {
	var file templateFile
	meta, err := toml.NewDecoder(src).Decode(&file)
	if err != nil {
		return 0, fmt.Errorf("failed to decode templates: %w", err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		r.logger.WithField("keys", fmt.Sprint(undecoded)).Warn("Ignoring unknown template keys")
	}

	added := 0
	for _, cfg := range file.Templates {
		if cfg.Renderer == "" {
			return added, fmt.Errorf("%w: template %q has no renderer", ErrInvalidTemplate, cfg.ID)
		}
		if err := r.Register(cfg, nil); err != nil {
			return added, err
		}
		added++
	}

	if file.Default != "" {
		if err := r.SetDefault(file.Default); err != nil {
			return added, err
		}
	}

	return added, nil
}
