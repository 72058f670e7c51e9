// Package activation computes which fields of a form currently count.
//
// The active set is derived fresh from a value snapshot on every call; it is
// never cached between value changes because any field may gate another.
// Inactive fields keep their stored value and error but are skipped by
// validation and left out of submitted payloads.
package activation

import (
	"sort"

	"github.com/goliatone/go-formflow/pkg/model"
)

// Set is an unordered collection of active field names.
type Set map[string]struct{}

// Has reports membership.
func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Sorted returns the names in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for name := range s {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ActiveFields returns the names of every descriptor whose predicate is
// absent or true for values.
func ActiveFields(fields []model.Field, values map[string]string) Set {
	active := make(Set, len(fields))
	for _, field := range fields {
		if field.Active(values) {
			active[field.Name] = struct{}{}
		}
	}
	return active
}

// Ordered returns the active fields in declaration order.
func Ordered(fields []model.Field, values map[string]string) []model.Field {
	out := make([]model.Field, 0, len(fields))
	for _, field := range fields {
		if field.Active(values) {
			out = append(out, field)
		}
	}
	return out
}

// Payload copies the values of active fields only.
func Payload(fields []model.Field, values map[string]string) map[string]string {
	out := make(map[string]string, len(fields))
	for _, field := range fields {
		if field.Active(values) {
			out[field.Name] = values[field.Name]
		}
	}
	return out
}

// Change describes fields that flipped between two snapshots.
type Change struct {
	Activated   []string
	Deactivated []string
}

// Empty reports whether nothing flipped.
func (c Change) Empty() bool {
	return len(c.Activated) == 0 && len(c.Deactivated) == 0
}

// Diff compares the active sets of two snapshots in declaration order.
func Diff(fields []model.Field, before, after map[string]string) Change {
	var change Change
	for _, field := range fields {
		was, is := field.Active(before), field.Active(after)
		switch {
		case !was && is:
			change.Activated = append(change.Activated, field.Name)
		case was && !is:
			change.Deactivated = append(change.Deactivated, field.Name)
		}
	}
	return change
}
