package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/srcforge/srcforge/pkg/strategy"
)

// ManifestFileName is the project manifest filename.
const ManifestFileName = "srcforge.toml"

type Config struct {
	Project  ProjectConfig            `toml:"project"`
	Packages map[string]PackageSource `toml:"packages,omitempty"`
}

type ProjectConfig struct {
	Name string `toml:"name"`
}

// PackageSource declares where one package's source comes from. Strategy is
// optional; when empty the URL shape decides. At most one of Branch, Tag,
// Revision is meaningful: only one checkout target makes sense at a time, so
// when several are declared they are honored in that fixed order and the
// rest ignored.
type PackageSource struct {
	URL      string `toml:"url"`
	Version  string `toml:"version,omitempty"`
	Strategy string `toml:"strategy,omitempty"`
	Branch   string `toml:"branch,omitempty"`
	Tag      string `toml:"tag,omitempty"`
	Revision string `toml:"revision,omitempty"`
}

// Pin returns the single honored pin, or nil when none is declared.
func (ps PackageSource) Pin() *strategy.Pin {
	switch {
	case ps.Branch != "":
		return &strategy.Pin{Kind: strategy.PinBranch, Ref: ps.Branch}
	case ps.Tag != "":
		return &strategy.Pin{Kind: strategy.PinTag, Ref: ps.Tag}
	case ps.Revision != "":
		return &strategy.Pin{Kind: strategy.PinRevision, Ref: ps.Revision}
	}
	return nil
}

// Origin converts a manifest entry into the strategy layer's descriptor.
func (ps PackageSource) Origin(name string) strategy.Origin {
	return strategy.Origin{
		URL:     ps.URL,
		Name:    name,
		Version: ps.Version,
		Pin:     ps.Pin(),
	}
}

func UnmarshalConfig(data []byte) (*Config, error) {
	cfg := &Config{}
	err := toml.Unmarshal(data, cfg)

	return cfg, err
}

func (c *Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return UnmarshalConfig(data)
}

func SaveFile(path string, cfg *Config) error {
	data, err := cfg.Marshal()
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
