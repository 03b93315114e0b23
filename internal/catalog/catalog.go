// Package catalog is the read-only exercise metadata library: bodyweight
// flags and factors, per-side flags, default increments, tags, and free-text
// name resolution.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

//go:embed exercises.yaml
var defaultCatalogYAML []byte

// Exercise is one catalog entry.
type Exercise struct {
	ID                 string   `yaml:"id" json:"id"`
	Name               string   `yaml:"name" json:"name"`
	Aliases            []string `yaml:"aliases,omitempty" json:"aliases,omitempty"`
	Tags               []string `yaml:"tags,omitempty" json:"tags,omitempty"`
	Bodyweight         bool     `yaml:"bodyweight,omitempty" json:"bodyweight"`
	BodyweightFactor   float64  `yaml:"bodyweight_factor,omitempty" json:"bodyweight_factor,omitempty"`
	PerSide            bool     `yaml:"per_side,omitempty" json:"per_side"`
	DefaultIncrementKg float64  `yaml:"default_increment_kg,omitempty" json:"default_increment_kg,omitempty"`
}

// Catalog is an immutable exercise lookup. The alias table is built once at
// load; lookups never re-process strings beyond normalizing the query itself.
type Catalog struct {
	byID    map[string]Exercise
	byAlias map[string]string // normalized name/alias -> exercise id
	list    []Exercise
}

// New builds a Catalog from a list of exercises.
func New(exercises []Exercise) *Catalog {
	c := &Catalog{
		byID:    make(map[string]Exercise, len(exercises)),
		byAlias: make(map[string]string, len(exercises)*2),
		list:    exercises,
	}
	for _, ex := range exercises {
		c.byID[ex.ID] = ex
		c.byAlias[Normalize(ex.Name)] = ex.ID
		c.byAlias[Normalize(ex.ID)] = ex.ID
		for _, a := range ex.Aliases {
			c.byAlias[Normalize(a)] = ex.ID
		}
	}
	return c
}

// Load parses a YAML catalog file. An empty path loads the embedded default
// catalog.
func Load(path string) (*Catalog, error) {
	data := defaultCatalogYAML
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading catalog file: %w", err)
		}
	}

	var doc struct {
		Exercises []Exercise `yaml:"exercises"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	if len(doc.Exercises) == 0 {
		return nil, fmt.Errorf("catalog contains no exercises")
	}
	return New(doc.Exercises), nil
}

// Get returns the exercise with the given id.
func (c *Catalog) Get(id string) (Exercise, bool) {
	ex, ok := c.byID[id]
	return ex, ok
}

// List returns all exercises in catalog order.
func (c *Catalog) List() []Exercise {
	return c.list
}

// Resolve maps a free-text display name to an exercise id via the normalized
// alias table. Returns false when the name is unknown.
func (c *Catalog) Resolve(name string) (string, bool) {
	id, ok := c.byAlias[Normalize(name)]
	return id, ok
}

// IsBodyweight reports whether the exercise loads the lifter's own body.
func (c *Catalog) IsBodyweight(id string) bool {
	return c.byID[id].Bodyweight
}

// BodyweightFactorFor returns the fraction of bodyweight the exercise loads.
// Unknown exercises and unset factors return 1.0.
func (c *Catalog) BodyweightFactorFor(id string) float64 {
	ex, ok := c.byID[id]
	if !ok || ex.BodyweightFactor <= 0 {
		return 1.0
	}
	return ex.BodyweightFactor
}

// IsPerSideExercise reports whether the logged weight applies to each limb
// independently, doubling the volume contribution.
func (c *Catalog) IsPerSideExercise(id string) bool {
	return c.byID[id].PerSide
}

// DefaultIncrementFor returns the exercise's configured load step, or 0 when
// unset (callers apply their own fallback).
func (c *Catalog) DefaultIncrementFor(id string) float64 {
	return c.byID[id].DefaultIncrementKg
}

// TagsFor returns the exercise's tags, nil for unknown exercises.
func (c *Catalog) TagsFor(id string) []string {
	return c.byID[id].Tags
}

// HasTag reports whether the exercise carries the given tag.
func (c *Catalog) HasTag(id, tag string) bool {
	for _, t := range c.byID[id].Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Normalize lowercases a name and strips everything but letters and digits,
// so "Bench-Press", "bench press" and "BenchPress" all collide.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
