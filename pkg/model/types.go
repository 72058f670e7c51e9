package model

import (
	"github.com/goliatone/go-formflow/pkg/validators"
	"github.com/goliatone/go-formflow/pkg/visibility"
)

// FieldKind enumerates the input kinds the engine understands.
type FieldKind string

const (
	KindText       FieldKind = "text"
	KindEmail      FieldKind = "email"
	KindPassword   FieldKind = "password"
	KindSelect     FieldKind = "select"
	KindRadioGroup FieldKind = "radio-group"
)

// Valid reports whether k is a known kind.
func (k FieldKind) Valid() bool {
	switch k {
	case KindText, KindEmail, KindPassword, KindSelect, KindRadioGroup:
		return true
	}
	return false
}

// Choice reports whether the kind picks from Options.
func (k FieldKind) Choice() bool {
	return k == KindSelect || k == KindRadioGroup
}

// Secret reports whether values of this kind must never be echoed or logged.
func (k FieldKind) Secret() bool {
	return k == KindPassword
}

// Field describes a single input.
type Field struct {
	Name  string
	Kind  FieldKind
	Label string
	// Options lists the selectable values for select and radio-group fields.
	Options []string
	// Validators run in order; the first failure is reported.
	Validators []validators.Validator
	// Activation is nil for fields that are always active.
	Activation visibility.Predicate
	Metadata   map[string]string
}

// Active reports whether the field takes part in validation and submission
// for the supplied value snapshot.
func (f Field) Active(values map[string]string) bool {
	if f.Activation == nil {
		return true
	}
	return f.Activation.Active(values)
}

// Conditional reports whether the field has an activation predicate.
func (f Field) Conditional() bool {
	return f.Activation != nil
}

// DisplayLabel falls back to the field name when no label is set.
func (f Field) DisplayLabel() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}

// HasOption reports whether value is one of the field's options.
func (f Field) HasOption(value string) bool {
	for _, opt := range f.Options {
		if opt == value {
			return true
		}
	}
	return false
}
