// Package schema validates inbound broker messages against the JSON
// schemas for each resource family before they reach the dispatcher.
// Messages that match no family are dropped without a response.
package schema

import (
	"embed"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Validator checks raw message payloads against a single compiled schema.
type Validator struct {
	schema *gojsonschema.Schema
}

// NewValidator compiles the named schema file from the embedded set.
func NewValidator(name string) (*Validator, error) {
	raw, err := schemaFS.ReadFile("schemas/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("reading schema %s: %w", name, err)
	}

	compiled, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("compiling schema %s: %w", name, err)
	}

	return &Validator{schema: compiled}, nil
}

// Validate reports whether raw is a well formed message for this family.
func (v *Validator) Validate(raw []byte) bool {
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return false
	}
	return result.Valid()
}

// Composite accepts a message when any of its member validators does.
type Composite struct {
	validators []*Validator
}

// NewComposite compiles every known resource family schema.
func NewComposite() (*Composite, error) {
	names := []string{"event", "signup", "entstate", "comment"}

	validators := make([]*Validator, 0, len(names))
	for _, name := range names {
		v, err := NewValidator(name)
		if err != nil {
			return nil, err
		}
		validators = append(validators, v)
	}

	return &Composite{validators: validators}, nil
}

// Validate reports whether raw matches at least one resource family.
func (c *Composite) Validate(raw []byte) bool {
	for _, v := range c.validators {
		if v.Validate(raw) {
			return true
		}
	}
	return false
}
