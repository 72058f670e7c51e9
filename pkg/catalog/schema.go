package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"sync"

	json "github.com/goccy/go-json"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

const schemaURL = "https://formflow.dev/schemas/catalog.json"

//go:embed catalog.schema.json
var schemaJSON []byte

// ErrInvalidDocument wraps schema violations.
var ErrInvalidDocument = errors.New("catalog: document does not match schema")

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func documentSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
		if err != nil {
			schemaErr = fmt.Errorf("catalog: unmarshal schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		c.AssertFormat()
		if err := c.AddResource(schemaURL, doc); err != nil {
			schemaErr = fmt.Errorf("catalog: add schema resource: %w", err)
			return
		}
		compiledSchema, schemaErr = c.Compile(schemaURL)
		if schemaErr != nil {
			schemaErr = fmt.Errorf("catalog: compile schema: %w", schemaErr)
		}
	})
	return compiledSchema, schemaErr
}

// ValidateYAML checks a raw YAML catalog against the catalog JSON Schema.
func ValidateYAML(data []byte) error {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("catalog: parse yaml: %w", err)
	}
	doc, err := toJSONValue(raw)
	if err != nil {
		return fmt.Errorf("catalog: normalise document: %w", err)
	}
	schema, err := documentSchema()
	if err != nil {
		return err
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return nil
}

// toJSONValue round-trips through JSON so numbers become json.Number, the
// representation the schema validator expects.
func toJSONValue(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return jsonschema.UnmarshalJSON(bytes.NewReader(b))
}
