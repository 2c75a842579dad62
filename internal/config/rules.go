package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/backmassage/ioccc-mirror/internal/model"
)

// Rules is the optional YAML file that tunes classification:
//
//	order: [exact, contains, rank]   # rule tier priority; omitted tiers are disabled
//	flat_years: [1984, 1985]         # years whose first level is always entry directories
//	aliases:                         # extra whole-segment keywords per category
//	  honorable-mention: [hon, "honourable"]
//	deny:                            # extra denylist globs
//	  - "**/*.orig"
type Rules struct {
	Order     []string            `yaml:"order"`
	FlatYears []int               `yaml:"flat_years"`
	Aliases   map[string][]string `yaml:"aliases"`
	Deny      []string            `yaml:"deny"`
}

// LoadRules reads and validates a rules file.
func LoadRules(path string) (*Rules, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	r, err := ParseRules(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// ParseRules decodes a rules document. Unknown keys are rejected so a typo
// does not silently fall back to defaults.
func ParseRules(b []byte) (*Rules, error) {
	var r Rules
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&r); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	for _, y := range r.FlatYears {
		if y < 1000 || y > 9999 {
			return nil, fmt.Errorf("flat_years: %d is not a four-digit year", y)
		}
	}
	for cat := range r.Aliases {
		if _, err := model.ParseCategory(cat); err != nil {
			return nil, fmt.Errorf("aliases: %w", err)
		}
	}
	return &r, nil
}

// CategoryAliases returns Aliases keyed by vocabulary member.
func (r *Rules) CategoryAliases() map[model.Category][]string {
	if r == nil || len(r.Aliases) == 0 {
		return nil
	}
	out := make(map[model.Category][]string, len(r.Aliases))
	for k, v := range r.Aliases {
		c, err := model.ParseCategory(k)
		if err != nil {
			continue
		}
		out[c] = append(out[c], v...)
	}
	return out
}

// Years returns FlatYears as contest years.
func (r *Rules) Years() []model.ContestYear {
	if r == nil {
		return nil
	}
	out := make([]model.ContestYear, len(r.FlatYears))
	for i, y := range r.FlatYears {
		out[i] = model.ContestYear(y)
	}
	return out
}
