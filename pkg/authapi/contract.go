package authapi

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	json "github.com/goccy/go-json"

	"github.com/goliatone/go-formflow/pkg/submit"
)

//go:embed openapi.yaml
var contractDocument []byte

// ErrUnknownOperation is returned when the contract has no JSON request body
// for a method and path.
var ErrUnknownOperation = errors.New("authapi: operation not in contract")

// Contract is the OpenAPI description of the auth backend. Outgoing request
// bodies are checked against it before any network call.
type Contract struct {
	doc *openapi3.T
}

// DefaultContract loads the embedded contract.
func DefaultContract(ctx context.Context) (*Contract, error) {
	return LoadContract(ctx, contractDocument)
}

// LoadContract parses and validates an OpenAPI document.
func LoadContract(ctx context.Context, data []byte) (*Contract, error) {
	if len(data) == 0 {
		return nil, errors.New("authapi: contract document is empty")
	}
	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: false,
	}
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("authapi: load contract: %w", err)
	}
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("authapi: invalid contract: %w", err)
	}
	return &Contract{doc: doc}, nil
}

// RequestSchema returns the JSON request body schema of an operation.
func (c *Contract) RequestSchema(method, path string) (*openapi3.Schema, error) {
	if c == nil || c.doc == nil || c.doc.Paths == nil {
		return nil, fmt.Errorf("%w: %s %s", ErrUnknownOperation, method, path)
	}
	item := c.doc.Paths.Find(path)
	if item == nil {
		return nil, fmt.Errorf("%w: %s %s", ErrUnknownOperation, method, path)
	}
	op := item.GetOperation(strings.ToUpper(method))
	if op == nil || op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil, fmt.Errorf("%w: %s %s", ErrUnknownOperation, method, path)
	}
	media := op.RequestBody.Value.Content.Get("application/json")
	if media == nil || media.Schema == nil || media.Schema.Value == nil {
		return nil, fmt.Errorf("%w: %s %s", ErrUnknownOperation, method, path)
	}
	return media.Schema.Value, nil
}

// ValidateRequest checks body against the operation's request schema.
// Violations are reported as a *submit.Error with one message per property.
func (c *Contract) ValidateRequest(method, path string, body any) error {
	schema, err := c.RequestSchema(method, path)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("authapi: encode request: %w", err)
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return fmt.Errorf("authapi: decode request: %w", err)
	}
	if err := schema.VisitJSON(value, openapi3.MultiErrors()); err != nil {
		return contractError(err)
	}
	return nil
}

func contractError(err error) *submit.Error {
	out := &submit.Error{
		Reason:  "ContractViolation",
		Message: "Request does not match the API contract",
	}
	var issues []error
	var multi openapi3.MultiError
	if errors.As(err, &multi) {
		issues = multi
	} else {
		issues = []error{err}
	}
	for _, issue := range issues {
		var schemaErr *openapi3.SchemaError
		if !errors.As(issue, &schemaErr) {
			continue
		}
		pointer := schemaErr.JSONPointer()
		if len(pointer) == 0 {
			continue
		}
		if out.Fields == nil {
			out.Fields = make(map[string]string)
		}
		if _, exists := out.Fields[pointer[0]]; !exists {
			out.Fields[pointer[0]] = schemaErr.Reason
		}
	}
	return out
}
