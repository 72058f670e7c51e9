// Package validation runs a field's ordered validator chain and aggregates
// results across the active fields of a form. Everything here is pure: no
// state is read or written besides the arguments.
package validation

import (
	"github.com/goliatone/go-formflow/pkg/model"
)

// ValidateField applies field.Validators in declared order and returns the
// message of the first failure. Inactive fields never report a message.
func ValidateField(field model.Field, value string, values map[string]string) (string, bool) {
	if !field.Active(values) {
		return "", false
	}
	for _, validator := range field.Validators {
		if verdict := validator.Check(value, values); !verdict.OK() {
			return verdict.Message(), true
		}
	}
	return "", false
}

// Issue is a failing field.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Result collects the failures of a whole-form validation run.
type Result struct {
	Issues []Issue `json:"issues,omitempty"`
}

// Valid reports whether every active field passed.
func (r Result) Valid() bool {
	return len(r.Issues) == 0
}

// Errors returns the failures keyed by field name.
func (r Result) Errors() map[string]string {
	if len(r.Issues) == 0 {
		return nil
	}
	out := make(map[string]string, len(r.Issues))
	for _, issue := range r.Issues {
		out[issue.Field] = issue.Message
	}
	return out
}

// Message returns the failure for name, if any.
func (r Result) Message(name string) (string, bool) {
	for _, issue := range r.Issues {
		if issue.Field == name {
			return issue.Message, true
		}
	}
	return "", false
}

// ValidateActive validates every active field of form in declaration order.
// A failing field never stops the others from being checked.
func ValidateActive(form model.Form, values map[string]string) Result {
	var result Result
	for _, field := range form.Fields() {
		if msg, failed := ValidateField(field, values[field.Name], values); failed {
			result.Issues = append(result.Issues, Issue{Field: field.Name, Message: msg})
		}
	}
	return result
}
