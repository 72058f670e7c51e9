// Package exprlang compiles activation rules with expr-lang/expr for catalogs
// that need more than equality checks, for example
// `role == "pro" && len(location) > 0` or `plan in ["gold", "silver"]`.
// Form values are exposed as top-level variables and environment data under
// `extras`.
package exprlang

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
	"github.com/expr-lang/expr/vm"

	"github.com/goliatone/go-formflow/pkg/visibility"
)

const extrasKey = "extras"

// Compiler implements visibility.Compiler on top of expr-lang/expr.
type Compiler struct{}

// New returns a Compiler.
func New() *Compiler { return &Compiler{} }

var (
	_ visibility.Compiler  = (*Compiler)(nil)
	_ visibility.Evaluator = (*Compiler)(nil)
)

// Compile type-checks rule as a boolean expression.
func (c *Compiler) Compile(rule string) (visibility.Program, error) {
	trimmed := strings.TrimSpace(rule)
	if trimmed == "" {
		return constant{}, nil
	}
	tree, err := parser.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("visibility/exprlang: parse %q: %w", trimmed, err)
	}
	compiled, err := expr.Compile(trimmed, expr.AllowUndefinedVariables(), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("visibility/exprlang: compile %q: %w", trimmed, err)
	}
	collector := &identCollector{seen: make(map[string]struct{})}
	ast.Walk(&tree.Node, collector)
	return &program{source: trimmed, compiled: compiled, idents: collector.names}, nil
}

// Eval compiles and evaluates rule in one step.
func (c *Compiler) Eval(_ string, rule string, ctx visibility.Context) (bool, error) {
	p, err := c.Compile(rule)
	if err != nil {
		return false, err
	}
	return p.Eval(ctx)
}

type constant struct{}

func (constant) Eval(visibility.Context) (bool, error) { return true, nil }
func (constant) Identifiers() []string                 { return nil }

type program struct {
	source   string
	compiled *vm.Program
	idents   []string
}

func (p *program) Eval(ctx visibility.Context) (bool, error) {
	env := make(map[string]any, len(ctx.Values)+1)
	for k, v := range ctx.Values {
		env[k] = v
	}
	extras := ctx.Extras
	if extras == nil {
		extras = map[string]any{}
	}
	env[extrasKey] = extras

	out, err := expr.Run(p.compiled, env)
	if err != nil {
		return false, fmt.Errorf("visibility/exprlang: run %q: %w", p.source, err)
	}
	result, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("visibility/exprlang: %q returned %T, want bool", p.source, out)
	}
	return result, nil
}

func (p *program) Identifiers() []string {
	return append([]string(nil), p.idents...)
}

type identCollector struct {
	seen  map[string]struct{}
	names []string
}

func (c *identCollector) Visit(node *ast.Node) {
	ident, ok := (*node).(*ast.IdentifierNode)
	if !ok || ident.Value == extrasKey {
		return
	}
	if _, dup := c.seen[ident.Value]; dup {
		return
	}
	c.seen[ident.Value] = struct{}{}
	c.names = append(c.names, ident.Value)
}
