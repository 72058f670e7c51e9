// Package model defines the immutable descriptors a form session is built
// from. A Form is an ordered set of Field descriptors with unique names; each
// Field carries its kind, display label, externally supplied options, an
// ordered validator chain and an optional activation predicate that may read
// other fields of the same form.
//
// Descriptors hold no state. Values, touch status and errors live in
// pkg/registry; decisions over both live in pkg/validation, pkg/activation
// and pkg/navigation.
//
// Construction is where misuse is caught: NewForm rejects empty or duplicate
// names, unknown field kinds and predicates that depend on fields the form
// does not declare.
package model
