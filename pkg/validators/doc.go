// Package validators hosts the field-level checks used by form descriptors.
// Each Validator is a total function over the raw string value (plus a
// snapshot of the other form values for cross-field checks) and returns a
// Verdict. Validators never panic and never mutate their inputs; ordering and
// short-circuiting is the caller's concern (see pkg/validation).
//
// Messages are produced through a Translator so catalogs can be localised
// without rewriting validator chains. The package-level constructors use the
// built-in English dictionary.
package validators
