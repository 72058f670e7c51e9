// Package catalog builds forms from declarative YAML documents and ships the
// sign-up and sign-in catalogs.
package catalog

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/validators"
	"github.com/goliatone/go-formflow/pkg/visibility"
	"github.com/goliatone/go-formflow/pkg/visibility/expr"
	"github.com/goliatone/go-formflow/pkg/visibility/exprlang"
)

//go:embed forms/*.yaml
var builtin embed.FS

var (
	ErrInvalidRule      = errors.New("catalog: invalid activation rule")
	ErrUnknownReference = errors.New("catalog: validator references unknown field")
	ErrUnknownEngine    = errors.New("catalog: unknown rule engine")
)

// Loader turns catalog documents into forms.
type Loader struct {
	validators validators.Catalog
	engines    map[string]visibility.Compiler
	ruleOpts   []visibility.RuleOption
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithValidators swaps the validator catalog, e.g. for translated messages.
func WithValidators(c validators.Catalog) LoaderOption {
	return func(l *Loader) {
		l.validators = c
	}
}

// WithEngine registers or replaces a rule engine.
func WithEngine(name string, compiler visibility.Compiler) LoaderOption {
	return func(l *Loader) {
		if compiler != nil {
			l.engines[strings.ToLower(strings.TrimSpace(name))] = compiler
		}
	}
}

// WithRuleOptions applies options to every compiled rule predicate.
func WithRuleOptions(opts ...visibility.RuleOption) LoaderOption {
	return func(l *Loader) {
		l.ruleOpts = append(l.ruleOpts, opts...)
	}
}

// NewLoader returns a loader with the expr and exprlang engines.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		validators: validators.Default,
		engines: map[string]visibility.Compiler{
			RulesExpr:     expr.New(),
			RulesExprLang: exprlang.New(),
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Parse validates raw YAML against the catalog schema and builds the form.
func (l *Loader) Parse(data []byte) (model.Form, error) {
	if err := ValidateYAML(data); err != nil {
		return model.Form{}, err
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return model.Form{}, fmt.Errorf("catalog: decode document: %w", err)
	}
	return l.Build(doc)
}

// Build turns a decoded document into a form.
func (l *Loader) Build(doc Document) (model.Form, error) {
	engineName := strings.ToLower(strings.TrimSpace(doc.Rules))
	if engineName == "" {
		engineName = RulesExpr
	}
	compiler, ok := l.engines[engineName]
	if !ok {
		return model.Form{}, fmt.Errorf("form %s: %w %q", doc.ID, ErrUnknownEngine, doc.Rules)
	}

	declared := make(map[string]struct{}, len(doc.Fields))
	for _, fd := range doc.Fields {
		declared[strings.TrimSpace(fd.Name)] = struct{}{}
	}

	fields := make([]model.Field, 0, len(doc.Fields))
	for _, fd := range doc.Fields {
		for _, spec := range fd.Validators {
			if ref := spec.References(); ref != "" {
				if _, ok := declared[ref]; !ok {
					return model.Form{}, fmt.Errorf("form %s: field %q: %w %q", doc.ID, fd.Name, ErrUnknownReference, ref)
				}
			}
		}
		checks, err := l.validators.BuildAll(fd.Validators)
		if err != nil {
			return model.Form{}, fmt.Errorf("form %s: field %q: %w", doc.ID, fd.Name, err)
		}

		field := model.Field{
			Name:       fd.Name,
			Kind:       model.FieldKind(fd.Kind),
			Label:      fd.Label,
			Options:    fd.Options,
			Validators: checks,
			Metadata:   fd.Metadata,
		}
		if rule := strings.TrimSpace(fd.ShowWhen); rule != "" {
			predicate, err := visibility.Rule(compiler, rule, l.ruleOpts...)
			if err != nil {
				return model.Form{}, fmt.Errorf("form %s: field %q: %w: %v", doc.ID, fd.Name, ErrInvalidRule, err)
			}
			field.Activation = predicate
		}
		fields = append(fields, field)
	}
	return model.NewForm(doc.ID, fields...)
}

// Builtin loads one of the embedded catalogs by id.
func (l *Loader) Builtin(id string) (model.Form, error) {
	data, err := builtin.ReadFile("forms/" + id + ".yaml")
	if err != nil {
		return model.Form{}, fmt.Errorf("catalog: unknown builtin form %q", id)
	}
	return l.Parse(data)
}

// Builtins lists the embedded catalog ids.
func Builtins() []string {
	entries, err := builtin.ReadDir("forms")
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		out = append(out, strings.TrimSuffix(entry.Name(), ".yaml"))
	}
	return out
}
