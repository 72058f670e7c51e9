package validators

import (
	"errors"
	"fmt"
	"strings"
)

// Validator names accepted by Build.
const (
	NameRequired   = "required"
	NameNonEmpty   = "nonEmpty"
	NameIsTrimmed  = "isTrimmed"
	NameValidEmail = "validEmail"
	NameLength     = "length"
	NameMatches    = "matches"
)

// ErrUnknownValidator is returned by Build for names outside the catalog.
var ErrUnknownValidator = errors.New("validators: unknown validator")

// Spec is the declarative form of a validator, used by YAML catalogs.
type Spec struct {
	Name  string `json:"name" yaml:"name"`
	Min   int    `json:"min,omitempty" yaml:"min,omitempty"`
	Max   int    `json:"max,omitempty" yaml:"max,omitempty"`
	Field string `json:"field,omitempty" yaml:"field,omitempty"`
}

// References returns the other field a spec reads, if any.
func (s Spec) References() string {
	if strings.EqualFold(strings.TrimSpace(s.Name), NameMatches) {
		return strings.TrimSpace(s.Field)
	}
	return ""
}

// Build turns a Spec into a Validator. Names are matched case-insensitively.
func (c Catalog) Build(spec Spec) (Validator, error) {
	switch strings.ToLower(strings.TrimSpace(spec.Name)) {
	case strings.ToLower(NameRequired):
		return c.Required(), nil
	case strings.ToLower(NameNonEmpty):
		return c.NonEmpty(), nil
	case strings.ToLower(NameIsTrimmed):
		return c.IsTrimmed(), nil
	case strings.ToLower(NameValidEmail):
		return c.ValidEmail(), nil
	case strings.ToLower(NameLength):
		if spec.Min < 0 {
			return nil, fmt.Errorf("validators: length min must be >= 0, got %d", spec.Min)
		}
		if spec.Max > 0 && spec.Max < spec.Min {
			return nil, fmt.Errorf("validators: length max %d is below min %d", spec.Max, spec.Min)
		}
		return c.Length(spec.Min, spec.Max), nil
	case strings.ToLower(NameMatches):
		if strings.TrimSpace(spec.Field) == "" {
			return nil, errors.New("validators: matches requires a field")
		}
		return c.Matches(spec.Field), nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownValidator, spec.Name)
	}
}

// BuildAll builds every spec in order.
func (c Catalog) BuildAll(specs []Spec) ([]Validator, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	out := make([]Validator, 0, len(specs))
	for idx, spec := range specs {
		v, err := c.Build(spec)
		if err != nil {
			return nil, fmt.Errorf("validators: spec %d: %w", idx, err)
		}
		out = append(out, v)
	}
	return out, nil
}
