package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Entity names every project must declare a source for.
var requiredSources = []string{"customers", "products", "orders", "order_items"}

// Project is the parsed project file (warehouse.yml).
type Project struct {
	Name    string            `yaml:"name"`
	Sources map[string]Source `yaml:"sources"`
}

// Source declares one extract: its file, the column carrying the load
// timestamp, and the staleness thresholds evaluated by the freshness
// command.
type Source struct {
	Path          string    `yaml:"path"`
	LoadedAtField string    `yaml:"loaded_at_field"`
	Freshness     Freshness `yaml:"freshness"`
}

// Freshness thresholds. Zero values disable the corresponding level.
type Freshness struct {
	WarnAfter  Duration `yaml:"warn_after"`
	ErrorAfter Duration `yaml:"error_after"`
}

// Enabled reports whether the source declares any staleness threshold.
func (f Freshness) Enabled() bool {
	return f.WarnAfter > 0 || f.ErrorAfter > 0
}

// Duration parses YAML strings like "24h" or "90m" into a time.Duration.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std converts to a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Load reads and validates a project file.
func Load(path string) (*Project, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read project file: %w", err)
	}

	var p Project
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &p, nil
}

func (p *Project) validate() error {
	for _, name := range requiredSources {
		src, ok := p.Sources[name]
		if !ok {
			return fmt.Errorf("missing source %q", name)
		}
		if src.Path == "" {
			return fmt.Errorf("source %q has no path", name)
		}
		if src.Freshness.Enabled() && src.LoadedAtField == "" {
			return fmt.Errorf("source %q declares freshness thresholds without a loaded_at_field", name)
		}
		if w, e := src.Freshness.WarnAfter, src.Freshness.ErrorAfter; w > 0 && e > 0 && e < w {
			return fmt.Errorf("source %q: error_after %s is tighter than warn_after %s", name, e.Std(), w.Std())
		}
	}
	return nil
}

// Source returns the declared source for an entity name.
func (p *Project) Source(name string) (Source, error) {
	src, ok := p.Sources[name]
	if !ok {
		return Source{}, fmt.Errorf("project declares no source %q", name)
	}
	return src, nil
}

// Resolve returns the extract path, joining relative paths onto the data
// directory.
func (s Source) Resolve(dataDir string) string {
	if filepath.IsAbs(s.Path) {
		return s.Path
	}
	return filepath.Join(dataDir, s.Path)
}

// DefaultProject is the project used when no file is given: conventional
// extract names under the data directory, freshness on the revisioned
// extracts only. The order_items extract carries no timestamp column, so it
// has no freshness contract.
func DefaultProject() *Project {
	return &Project{
		Name: "ecom-warehouse",
		Sources: map[string]Source{
			"customers": {
				Path:          "customers.csv",
				LoadedAtField: "updated_at",
				Freshness:     Freshness{WarnAfter: Duration(24 * time.Hour), ErrorAfter: Duration(72 * time.Hour)},
			},
			"products": {
				Path:          "products.csv",
				LoadedAtField: "created_at",
			},
			"orders": {
				Path:          "orders.csv",
				LoadedAtField: "updated_at",
				Freshness:     Freshness{WarnAfter: Duration(24 * time.Hour), ErrorAfter: Duration(72 * time.Hour)},
			},
			"order_items": {
				Path: "order_items.csv",
			},
		},
	}
}
