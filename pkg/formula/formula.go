// Package formula loads standalone YAML package descriptions: a single file
// naming a package, its version, its origin URL, and an optional pin. The
// formula layer decides which strategy handles an origin; the strategy
// dispatcher only honors that choice.
package formula

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"sigs.k8s.io/yaml"

	"github.com/srcforge/srcforge/pkg/strategy"
)

var validNameRegex = regexp.MustCompile(`^[a-z0-9]([a-z0-9+._-]{0,62}[a-z0-9])?$`)

type Formula struct {
	Name     string `json:"name"`
	Version  string `json:"version"`
	URL      string `json:"url"`
	Strategy string `json:"strategy,omitempty"`
	Branch   string `json:"branch,omitempty"`
	Tag      string `json:"tag,omitempty"`
	Revision string `json:"revision,omitempty"`
}

func Load(path string) (*Formula, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading formula %s: %w", path, err)
	}

	f := &Formula{}
	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("parsing formula %s: %w", path, err)
	}
	return f, nil
}

func (f *Formula) Validate() error {
	var err error
	if !validNameRegex.MatchString(f.Name) {
		err = errors.Join(err, fmt.Errorf("formula name must be max 64 characters with only lowercase letters, numbers, and +._- separators, starting and ending with a letter or number"))
	}

	if f.URL == "" {
		err = errors.Join(err, fmt.Errorf("formula url must be provided"))
	}

	pins := 0
	for _, ref := range []string{f.Branch, f.Tag, f.Revision} {
		if ref != "" {
			pins++
		}
	}
	if pins > 1 {
		err = errors.Join(err, fmt.Errorf("at most one of branch, tag, revision may be set"))
	}

	return err
}

// Origin converts the formula into the strategy layer's descriptor.
func (f *Formula) Origin() strategy.Origin {
	o := strategy.Origin{
		URL:     f.URL,
		Name:    f.Name,
		Version: f.Version,
	}
	switch {
	case f.Branch != "":
		o.Pin = &strategy.Pin{Kind: strategy.PinBranch, Ref: f.Branch}
	case f.Tag != "":
		o.Pin = &strategy.Pin{Kind: strategy.PinTag, Ref: f.Tag}
	case f.Revision != "":
		o.Pin = &strategy.Pin{Kind: strategy.PinRevision, Ref: f.Revision}
	}
	return o
}
