package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyFormID        = errors.New("model: form id is required")
	ErrEmptyFieldName     = errors.New("model: field name is required")
	ErrDuplicateField     = errors.New("model: duplicate field name")
	ErrUnknownKind        = errors.New("model: unknown field kind")
	ErrUnknownDependency  = errors.New("model: activation references unknown field")
	ErrSelfDependency     = errors.New("model: activation references its own field")
	ErrMissingChoiceValue = errors.New("model: option list contains an empty value")
)

// Form is an immutable, ordered set of field descriptors.
type Form struct {
	id     string
	fields []Field
	index  map[string]int
}

// NewForm validates the descriptors and builds a Form. Fields keep their
// declaration order.
func NewForm(id string, fields ...Field) (Form, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Form{}, ErrEmptyFormID
	}

	form := Form{
		id:     id,
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for _, field := range fields {
		field.Name = strings.TrimSpace(field.Name)
		if field.Name == "" {
			return Form{}, fmt.Errorf("form %s: %w", id, ErrEmptyFieldName)
		}
		if _, exists := form.index[field.Name]; exists {
			return Form{}, fmt.Errorf("form %s: %w %q", id, ErrDuplicateField, field.Name)
		}
		if field.Kind == "" {
			field.Kind = KindText
		}
		if !field.Kind.Valid() {
			return Form{}, fmt.Errorf("form %s: field %q: %w %q", id, field.Name, ErrUnknownKind, field.Kind)
		}
		for _, opt := range field.Options {
			if strings.TrimSpace(opt) == "" {
				return Form{}, fmt.Errorf("form %s: field %q: %w", id, field.Name, ErrMissingChoiceValue)
			}
		}
		field.Options = append([]string(nil), field.Options...)
		field.Validators = append(field.Validators[:0:0], field.Validators...)
		form.index[field.Name] = len(form.fields)
		form.fields = append(form.fields, field)
	}

	for _, field := range form.fields {
		if field.Activation == nil {
			continue
		}
		for _, dep := range field.Activation.DependsOn() {
			if dep == field.Name {
				return Form{}, fmt.Errorf("form %s: field %q: %w", id, field.Name, ErrSelfDependency)
			}
			if _, ok := form.index[dep]; !ok {
				return Form{}, fmt.Errorf("form %s: field %q: %w %q", id, field.Name, ErrUnknownDependency, dep)
			}
		}
	}
	return form, nil
}

// MustForm is NewForm for statically declared catalogs; it panics on misuse.
func MustForm(id string, fields ...Field) Form {
	form, err := NewForm(id, fields...)
	if err != nil {
		panic(err)
	}
	return form
}

// ID returns the form identifier.
func (f Form) ID() string {
	return f.id
}

// Len returns the number of declared fields.
func (f Form) Len() int {
	return len(f.fields)
}

// Fields returns a copy of the descriptors in declaration order.
func (f Form) Fields() []Field {
	return append([]Field(nil), f.fields...)
}

// Field looks a descriptor up by name.
func (f Form) Field(name string) (Field, bool) {
	idx, ok := f.index[name]
	if !ok {
		return Field{}, false
	}
	return f.fields[idx], true
}

// Has reports whether the form declares name.
func (f Form) Has(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Names lists field names in declaration order.
func (f Form) Names() []string {
	out := make([]string, len(f.fields))
	for i, field := range f.fields {
		out[i] = field.Name
	}
	return out
}

// WithOptions returns a copy of the form with the options of name replaced.
// Catalog option lists (locations, service types) are supplied at runtime.
func (f Form) WithOptions(name string, options []string) (Form, error) {
	idx, ok := f.index[name]
	if !ok {
		return Form{}, fmt.Errorf("form %s: unknown field %q", f.id, name)
	}
	for _, opt := range options {
		if strings.TrimSpace(opt) == "" {
			return Form{}, fmt.Errorf("form %s: field %q: %w", f.id, name, ErrMissingChoiceValue)
		}
	}
	clone := Form{
		id:     f.id,
		fields: append([]Field(nil), f.fields...),
		index:  f.index,
	}
	clone.fields[idx].Options = append([]string(nil), options...)
	return clone, nil
}
