// Package visibility decides whether a field takes part in a form right now.
// Activation is expressed as a Predicate over a snapshot of every value in the
// same form; predicates declare the fields they read so form construction can
// reject references to fields that do not exist.
package visibility

import (
	"sort"
	"strings"
)

// Context provides inputs to an Evaluator. Values holds the current form
// values while Extras allows callers to inject environment data such as
// feature flags (addressed as `extras.<key>` in rule strings).
type Context struct {
	Values map[string]any
	Extras map[string]any
}

// ContextFromValues lifts a string value snapshot into an evaluation context.
func ContextFromValues(values map[string]string, extras map[string]any) Context {
	ctx := Context{Values: make(map[string]any, len(values)), Extras: extras}
	for k, v := range values {
		ctx.Values[k] = v
	}
	return ctx
}

// Evaluator determines whether a field should be active based on a rule
// string and the current values.
type Evaluator interface {
	Eval(fieldPath, rule string, ctx Context) (bool, error)
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(fieldPath, rule string, ctx Context) (bool, error)

// Eval delegates to the underlying function.
func (fn EvaluatorFunc) Eval(fieldPath, rule string, ctx Context) (bool, error) {
	return fn(fieldPath, rule, ctx)
}

// Program is a compiled rule.
type Program interface {
	Eval(ctx Context) (bool, error)
	// Identifiers lists the value keys the rule reads, excluding extras.
	Identifiers() []string
}

// Compiler turns rule strings into reusable programs. Compilation errors
// surface at form construction time instead of on every keystroke.
type Compiler interface {
	Compile(rule string) (Program, error)
}

// Predicate decides whether a field is active for a value snapshot.
type Predicate interface {
	Active(values map[string]string) bool
	DependsOn() []string
}

type funcPredicate struct {
	fn   func(values map[string]string) bool
	deps []string
}

// Func wraps a Go closure as a Predicate. deps must list every field the
// closure reads.
func Func(fn func(values map[string]string) bool, deps ...string) Predicate {
	return funcPredicate{fn: fn, deps: normalizeDeps(deps)}
}

func (p funcPredicate) Active(values map[string]string) bool {
	if p.fn == nil {
		return true
	}
	return p.fn(values)
}

func (p funcPredicate) DependsOn() []string {
	return append([]string(nil), p.deps...)
}

// Equals is active while field holds exactly want.
func Equals(field, want string) Predicate {
	field = strings.TrimSpace(field)
	return Func(func(values map[string]string) bool {
		return values[field] == want
	}, field)
}

// OneOf is active while field holds any of wants.
func OneOf(field string, wants ...string) Predicate {
	field = strings.TrimSpace(field)
	set := make(map[string]struct{}, len(wants))
	for _, w := range wants {
		set[w] = struct{}{}
	}
	return Func(func(values map[string]string) bool {
		_, ok := set[values[field]]
		return ok
	}, field)
}

type rulePredicate struct {
	rule    string
	program Program
	extras  map[string]any
	onError func(rule string, err error)
}

// RuleOption configures rule predicates.
type RuleOption func(*rulePredicate)

// WithExtras exposes environment data to the rule under `extras.`.
func WithExtras(extras map[string]any) RuleOption {
	return func(p *rulePredicate) {
		p.extras = extras
	}
}

// WithErrorHandler observes evaluation errors. A failing rule is treated as
// inactive so a broken rule cannot block submission.
func WithErrorHandler(fn func(rule string, err error)) RuleOption {
	return func(p *rulePredicate) {
		p.onError = fn
	}
}

// Rule compiles a rule string into a Predicate.
func Rule(compiler Compiler, rule string, opts ...RuleOption) (Predicate, error) {
	program, err := compiler.Compile(rule)
	if err != nil {
		return nil, err
	}
	p := &rulePredicate{rule: strings.TrimSpace(rule), program: program}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p, nil
}

func (p *rulePredicate) Active(values map[string]string) bool {
	ok, err := p.program.Eval(ContextFromValues(values, p.extras))
	if err != nil {
		if p.onError != nil {
			p.onError(p.rule, err)
		}
		return false
	}
	return ok
}

func (p *rulePredicate) DependsOn() []string {
	return normalizeDeps(p.program.Identifiers())
}

// String returns the source rule.
func (p *rulePredicate) String() string {
	return p.rule
}

func normalizeDeps(deps []string) []string {
	if len(deps) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(deps))
	out := make([]string, 0, len(deps))
	for _, dep := range deps {
		trimmed := strings.TrimSpace(dep)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	sort.Strings(out)
	return out
}
