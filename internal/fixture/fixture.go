// Package fixture holds the embedded demo tables used when no reasoning
// backend is available. Lookups are case-insensitive substring matches on
// the product text; the first matching entry wins.
package fixture

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/naysayer/internal/model"
)

//go:embed data/*.yaml
var dataFS embed.FS

// Match holds the keywords that select an entry
type Match struct {
	Keys []string `yaml:"keys"`
}

func (m Match) matches(text string) bool {
	text = strings.ToLower(text)
	for _, key := range m.Keys {
		key = strings.ToLower(strings.TrimSpace(key))
		if key != "" && strings.Contains(text, key) {
			return true
		}
	}
	return false
}

// DefectSet is a demo defect list with its noise-filtered count
type DefectSet struct {
	Match         `yaml:",inline"`
	NoiseFiltered int            `yaml:"noise_filtered"`
	Defects       []model.Defect `yaml:"defects"`
}

type historySet struct {
	Match  `yaml:",inline"`
	Events []model.HistoryEvent `yaml:"events"`
}

type specSet struct {
	Match `yaml:",inline"`
	Specs map[string]string `yaml:"specs"`
}

type reviewSet struct {
	Match   `yaml:",inline"`
	Reviews []string `yaml:"reviews"`
}

type alternativeSet struct {
	Match        `yaml:",inline"`
	Alternatives []model.AlternativeProduct `yaml:"alternatives"`
}

// Tables is the full set of demo tables
type Tables struct {
	defects struct {
		Entries []DefectSet `yaml:"entries"`
		Default DefectSet   `yaml:"default"`
	}
	history struct {
		Entries []historySet `yaml:"entries"`
	}
	specs struct {
		Entries []specSet `yaml:"entries"`
	}
	reviews struct {
		Entries []reviewSet `yaml:"entries"`
		Default []string    `yaml:"default"`
	}
	alternatives struct {
		Entries []alternativeSet           `yaml:"entries"`
		Default []model.AlternativeProduct `yaml:"default"`
	}
}

var loadDefault = sync.OnceValues(func() (*Tables, error) {
	return Load(dataFS)
})

// Default returns the embedded tables.
// It panics if the embedded data is invalid.
func Default() *Tables {
	t, err := loadDefault()
	if err != nil {
		panic(err)
	}
	return t
}

// Load reads the tables from data/*.yaml in fsys
func Load(fsys fs.FS) (*Tables, error) {
	t := &Tables{}

	files := []struct {
		name string
		dst  any
	}{
		{"data/defects.yaml", &t.defects},
		{"data/history.yaml", &t.history},
		{"data/specs.yaml", &t.specs},
		{"data/reviews.yaml", &t.reviews},
		{"data/alternatives.yaml", &t.alternatives},
	}

	for _, f := range files {
		data, err := fs.ReadFile(fsys, f.name)
		if err != nil {
			return nil, fmt.Errorf("read fixture %s: %w", f.name, err)
		}
		if err := yaml.Unmarshal(data, f.dst); err != nil {
			return nil, fmt.Errorf("parse fixture %s: %w", f.name, err)
		}
	}

	if len(t.defects.Default.Defects) == 0 {
		return nil, fmt.Errorf("fixture defects: default entry is empty")
	}
	if len(t.alternatives.Default) == 0 {
		return nil, fmt.Errorf("fixture alternatives: default entry is empty")
	}

	return t, nil
}

// first returns the first entry whose keys match text
func first[T interface{ matches(string) bool }](entries []T, text string) (T, bool) {
	for _, e := range entries {
		if e.matches(text) {
			return e, true
		}
	}
	var zero T
	return zero, false
}

// Defects returns the demo defects for a product.
// Unknown products get the generic default set; matched reports whether a specific entry was used.
func (t *Tables) Defects(product string) (set DefectSet, matched bool) {
	set, matched = first(t.defects.Entries, product)
	if !matched {
		set = t.defects.Default
	}

	out := DefectSet{
		Match:         Match{Keys: append([]string(nil), set.Keys...)},
		NoiseFiltered: set.NoiseFiltered,
		Defects:       make([]model.Defect, 0, len(set.Defects)),
	}
	for _, d := range set.Defects {
		d.Quotes = append([]string(nil), d.Quotes...)
		out.Defects = append(out.Defects, d)
	}
	return out, matched
}

// History returns the demo history events for a product, or false when none is known
func (t *Tables) History(text string) ([]model.HistoryEvent, bool) {
	set, ok := first(t.history.Entries, text)
	if !ok {
		return nil, false
	}

	events := make([]model.HistoryEvent, 0, len(set.Events))
	for _, e := range set.Events {
		e.RelatedModels = append([]string{}, e.RelatedModels...)
		events = append(events, e)
	}
	return events, true
}

// Specs returns the demo spec map for a product, or false when none is known
func (t *Tables) Specs(product string) (map[string]string, bool) {
	set, ok := first(t.specs.Entries, product)
	if !ok {
		return nil, false
	}

	specs := make(map[string]string, len(set.Specs))
	for k, v := range set.Specs {
		specs[k] = v
	}
	return specs, true
}

// Reviews returns the demo review snippets for a product, falling back to the generic set
func (t *Tables) Reviews(product string) []string {
	if set, ok := first(t.reviews.Entries, product); ok {
		return append([]string(nil), set.Reviews...)
	}
	return append([]string(nil), t.reviews.Default...)
}

// Alternatives returns the alternatives table entry for a product, falling back to the default entry
func (t *Tables) Alternatives(product string) []model.AlternativeProduct {
	list := t.alternatives.Default
	if set, ok := first(t.alternatives.Entries, product); ok {
		list = set.Alternatives
	}

	out := make([]model.AlternativeProduct, 0, len(list))
	for _, a := range list {
		a.SolvedDefects = append([]string(nil), a.SolvedDefects...)
		out = append(out, a)
	}
	return out
}
