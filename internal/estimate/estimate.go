// Package estimate prices automation projects the same way the website's
// cost calculator does.
package estimate

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

type Pricing struct {
	Tiers       map[string]float64 `yaml:"tiers"`
	Complexity  map[string]float64 `yaml:"complexity"`
	Timeline    map[string]float64 `yaml:"timeline"`
	Integration float64            `yaml:"integration"`
	Training    float64            `yaml:"training"`
	Support     float64            `yaml:"support"`
	Scale       float64            `yaml:"scale"`
}

func DefaultPricing() Pricing {
	return Pricing{
		Tiers:       map[string]float64{"quick": 500, "optimization": 2000, "overhaul": 5000},
		Complexity:  map[string]float64{"simple": 0.8, "moderate": 1.0, "complex": 1.4},
		Timeline:    map[string]float64{"urgent": 1.5, "standard": 1.0, "flexible": 0.9},
		Integration: 300,
		Training:    500,
		Support:     400,
	}
}

// LoadPricing overlays the YAML file at path onto DefaultPricing. Map entries
// in the file replace or add to the defaults. An empty path returns the defaults.
func LoadPricing(path string) (Pricing, error) {
	p := DefaultPricing()
	if path == "" {
		return p, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read pricing %s: %w", path, err)
	}

	var f struct {
		Tiers       map[string]float64 `yaml:"tiers"`
		Complexity  map[string]float64 `yaml:"complexity"`
		Timeline    map[string]float64 `yaml:"timeline"`
		Integration *float64           `yaml:"integration"`
		Training    *float64           `yaml:"training"`
		Support     *float64           `yaml:"support"`
		Scale       *float64           `yaml:"scale"`
	}
	if err := yaml.Unmarshal(b, &f); err != nil {
		return p, fmt.Errorf("parse pricing %s: %w", path, err)
	}

	for k, v := range f.Tiers {
		p.Tiers[k] = v
	}
	for k, v := range f.Complexity {
		p.Complexity[k] = v
	}
	for k, v := range f.Timeline {
		p.Timeline[k] = v
	}
	for dst, src := range map[*float64]*float64{
		&p.Integration: f.Integration,
		&p.Training:    f.Training,
		&p.Support:     f.Support,
		&p.Scale:       f.Scale,
	} {
		if src != nil {
			*dst = *src
		}
	}
	return p, p.Validate()
}

func (p Pricing) Validate() error {
	var errs []error
	for _, m := range []struct {
		name string
		vals map[string]float64
	}{{"tiers", p.Tiers}, {"complexity", p.Complexity}, {"timeline", p.Timeline}} {
		if len(m.vals) == 0 {
			errs = append(errs, fmt.Errorf("pricing.%s must not be empty", m.name))
		}
		for k, v := range m.vals {
			if v < 0 {
				errs = append(errs, fmt.Errorf("pricing.%s.%s must be >= 0", m.name, k))
			}
		}
	}
	if p.Integration < 0 || p.Training < 0 || p.Support < 0 || p.Scale < 0 {
		errs = append(errs, errors.New("pricing add-on costs must be >= 0"))
	}
	return errors.Join(errs...)
}

type Input struct {
	Tier         string `json:"tier"`
	Integrations int    `json:"integrations"`
	Complexity   string `json:"complexity"`
	Timeline     string `json:"timeline"`
	Training     bool   `json:"training"`
	Support      bool   `json:"support"`
}

// Breakdown amounts are rounded to whole dollars. Complexity and Timeline
// are negative when the factor discounts the price.
type Breakdown struct {
	Base         int64 `json:"base"`
	Scale        int64 `json:"scale"`
	Integrations int64 `json:"integrations"`
	Complexity   int64 `json:"complexity"`
	Timeline     int64 `json:"timeline"`
	Addons       int64 `json:"addons"`
}

type Result struct {
	Total     int64     `json:"total"`
	RangeMin  int64     `json:"rangeMin"`
	RangeMax  int64     `json:"rangeMax"`
	Breakdown Breakdown `json:"breakdown"`
}

// InputError names the first invalid field of an Input.
type InputError struct {
	Field   string
	Value   any
	Allowed []string
}

func (e *InputError) Error() string {
	if len(e.Allowed) == 0 {
		return fmt.Sprintf("invalid %s: %v", e.Field, e.Value)
	}
	return fmt.Sprintf("invalid %s %q (allowed: %v)", e.Field, e.Value, e.Allowed)
}

func (p Pricing) Estimate(in Input) (Result, error) {
	tier, ok := p.Tiers[in.Tier]
	if !ok {
		return Result{}, &InputError{Field: "tier", Value: in.Tier, Allowed: keys(p.Tiers)}
	}
	cf, ok := p.Complexity[in.Complexity]
	if !ok {
		return Result{}, &InputError{Field: "complexity", Value: in.Complexity, Allowed: keys(p.Complexity)}
	}
	tf, ok := p.Timeline[in.Timeline]
	if !ok {
		return Result{}, &InputError{Field: "timeline", Value: in.Timeline, Allowed: keys(p.Timeline)}
	}
	if in.Integrations < 0 {
		return Result{}, &InputError{Field: "integrations", Value: in.Integrations}
	}

	integrations := float64(in.Integrations) * p.Integration
	var addons float64
	if in.Training {
		addons += p.Training
	}
	if in.Support {
		addons += p.Support
	}

	base := tier + p.Scale + integrations
	complexity := base * (cf - 1)
	timeline := (base + complexity) * (tf - 1)
	total := base + complexity + timeline + addons

	return Result{
		Total:    round(total),
		RangeMin: round(total * 0.85),
		RangeMax: round(total * 1.15),
		Breakdown: Breakdown{
			Base:         round(tier),
			Scale:        round(p.Scale),
			Integrations: round(integrations),
			Complexity:   round(complexity),
			Timeline:     round(timeline),
			Addons:       round(addons),
		},
	}, nil
}

// round matches the calculator: halves round up.
func round(x float64) int64 {
	return int64(math.Floor(x + 0.5))
}

func keys(m map[string]float64) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
