// Package registry holds the mutable per-field state of one form instance:
// current value, touch/pristine flags and the last validation message.
//
// Writes are applied synchronously; Values always reflects the latest
// SetValue. A Registry is safe for concurrent use so a submission resolving
// on another goroutine can read and annotate it while the user keeps typing.
package registry

import (
	"errors"
	"fmt"
	"sync"

	"github.com/goliatone/go-formflow/pkg/activation"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/validation"
)

// ErrUnknownField is returned when a name is not declared by the form.
var ErrUnknownField = errors.New("registry: unknown field")

// FieldState is the state of a single field.
type FieldState struct {
	Value    string `json:"value"`
	Touched  bool   `json:"touched"`
	Pristine bool   `json:"pristine"`
	Error    string `json:"error,omitempty"`
}

// HasError reports whether the field carries a message.
func (s FieldState) HasError() bool {
	return s.Error != ""
}

// Update reports the effect of a SetValue call.
type Update struct {
	Field string
	// Error is the field's message after re-validation ("" when valid).
	Error string
	// Activation lists fields whose active status flipped with this write.
	Activation activation.Change
}

// Registry tracks field state for one form.
type Registry struct {
	mu      sync.RWMutex
	form    model.Form
	initial map[string]string
	states  map[string]*FieldState
}

// Option configures a Registry.
type Option func(*Registry)

// WithInitialValues seeds field values. Reset restores these values. Unknown
// names are ignored.
func WithInitialValues(values map[string]string) Option {
	return func(r *Registry) {
		for name, value := range values {
			if r.form.Has(name) {
				r.initial[name] = value
			}
		}
	}
}

// New builds a registry with every declared field empty, untouched and
// pristine.
func New(form model.Form, opts ...Option) *Registry {
	r := &Registry{
		form:    form,
		initial: make(map[string]string, form.Len()),
		states:  make(map[string]*FieldState, form.Len()),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	r.resetLocked()
	return r
}

// Form returns the descriptors the registry was built from.
func (r *Registry) Form() model.Form {
	return r.form
}

// SetValue stores value, marks the field touched and dirty, re-validates it
// and recomputes activation. Inactive fields keep their previous message.
func (r *Registry) SetValue(name, value string) (Update, error) {
	field, ok := r.form.Field(name)
	if !ok {
		return Update{}, fmt.Errorf("%w %q", ErrUnknownField, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	before := r.valuesLocked()
	state := r.states[name]
	state.Value = value
	state.Touched = true
	state.Pristine = false

	after := r.valuesLocked()
	if field.Active(after) {
		msg, _ := validation.ValidateField(field, value, after)
		state.Error = msg
	}

	return Update{
		Field:      name,
		Error:      state.Error,
		Activation: activation.Diff(r.form.Fields(), before, after),
	}, nil
}

// Touch marks a field as visited without changing its value.
func (r *Registry) Touch(name string) error {
	if !r.form.Has(name) {
		return fmt.Errorf("%w %q", ErrUnknownField, name)
	}
	r.mu.Lock()
	r.states[name].Touched = true
	r.mu.Unlock()
	return nil
}

// Value returns the current value of name ("" for unknown fields).
func (r *Registry) Value(name string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if state, ok := r.states[name]; ok {
		return state.Value
	}
	return ""
}

// Values returns a copy of every field value.
func (r *Registry) Values() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.valuesLocked()
}

// State returns the state of name.
func (r *Registry) State(name string) (FieldState, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	state, ok := r.states[name]
	if !ok {
		return FieldState{}, false
	}
	return *state, true
}

// Snapshot copies every field state.
func (r *Registry) Snapshot() map[string]FieldState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]FieldState, len(r.states))
	for name, state := range r.states {
		out[name] = *state
	}
	return out
}

// ActiveFields computes the active set for the current values.
func (r *Registry) ActiveFields() activation.Set {
	return activation.ActiveFields(r.form.Fields(), r.Values())
}

// Pristine reports whether no field has been changed since construction or
// the last Reset.
func (r *Registry) Pristine() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, state := range r.states {
		if !state.Pristine {
			return false
		}
	}
	return true
}

// SetError attaches message to name; an empty message clears it.
func (r *Registry) SetError(name, message string) error {
	if !r.form.Has(name) {
		return fmt.Errorf("%w %q", ErrUnknownField, name)
	}
	r.mu.Lock()
	r.states[name].Error = message
	r.mu.Unlock()
	return nil
}

// ApplyErrors replaces the messages of the named fields and clears the
// messages of the other fields listed in scope. Fields outside scope keep
// their message.
func (r *Registry) ApplyErrors(scope []string, errs map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, name := range scope {
		if state, ok := r.states[name]; ok {
			state.Error = errs[name]
		}
	}
}

// Errors returns every non-empty message keyed by field.
func (r *Registry) Errors() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string)
	for name, state := range r.states {
		if state.Error != "" {
			out[name] = state.Error
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Reset restores every field to its initial value, untouched, pristine and
// without a message.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resetLocked()
}

func (r *Registry) resetLocked() {
	for _, name := range r.form.Names() {
		r.states[name] = &FieldState{
			Value:    r.initial[name],
			Pristine: true,
		}
	}
}

func (r *Registry) valuesLocked() map[string]string {
	out := make(map[string]string, len(r.states))
	for name, state := range r.states {
		out[name] = state.Value
	}
	return out
}
