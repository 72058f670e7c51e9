package catalog

import "github.com/goliatone/go-formflow/pkg/validators"

// Rule engines accepted in a document's rules key.
const (
	RulesExpr     = "expr"
	RulesExprLang = "exprlang"
)

// Document is the YAML shape of a form catalog.
type Document struct {
	ID     string     `yaml:"id" json:"id"`
	Title  string     `yaml:"title,omitempty" json:"title,omitempty"`
	Rules  string     `yaml:"rules,omitempty" json:"rules,omitempty"`
	Fields []FieldDoc `yaml:"fields" json:"fields"`
}

// FieldDoc declares one field.
type FieldDoc struct {
	Name       string            `yaml:"name" json:"name"`
	Label      string            `yaml:"label,omitempty" json:"label,omitempty"`
	Kind       string            `yaml:"kind,omitempty" json:"kind,omitempty"`
	Options    []string          `yaml:"options,omitempty" json:"options,omitempty"`
	ShowWhen   string            `yaml:"show_when,omitempty" json:"show_when,omitempty"`
	Metadata   map[string]string `yaml:"metadata,omitempty" json:"metadata,omitempty"`
	Validators []validators.Spec `yaml:"validators,omitempty" json:"validators,omitempty"`
}
