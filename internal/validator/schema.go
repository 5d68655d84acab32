package validator

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Kind is the JSON type a required field must hold.
type Kind string

const (
	String  Kind = "string"
	Integer Kind = "integer"
)

// Field is a required key of a request body.
type Field struct {
	Name string
	Kind Kind
}

// Schema checks that a request body is a JSON object holding every required
// field with the expected type. Keys beyond the required ones are allowed.
type Schema struct {
	fields   []Field
	compiled *jsonschema.Schema
}

// NewSchema compiles a schema requiring fields.
func NewSchema(fields ...Field) (*Schema, error) {
	properties := make(map[string]interface{}, len(fields))
	required := make([]string, 0, len(fields))
	for _, f := range fields {
		if !In(string(f.Kind), string(String), string(Integer)) {
			return nil, fmt.Errorf("field %q: unsupported kind %q", f.Name, f.Kind)
		}
		properties[f.Name] = map[string]interface{}{"type": string(f.Kind)}
		required = append(required, f.Name)
	}

	doc, err := json.Marshal(map[string]interface{}{
		"type":       "object",
		"required":   required,
		"properties": properties,
	})
	if err != nil {
		return nil, err
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7
	if err := compiler.AddResource("body.json", bytes.NewReader(doc)); err != nil {
		return nil, err
	}
	compiled, err := compiler.Compile("body.json")
	if err != nil {
		return nil, err
	}
	return &Schema{fields: fields, compiled: compiled}, nil
}

// MustSchema is like NewSchema but panics on error. For package-level schemas.
func MustSchema(fields ...Field) *Schema {
	s, err := NewSchema(fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Fields returns the required fields.
func (s *Schema) Fields() []Field {
	return s.fields
}

// CheckJSON validates body against s and records a message per offending key.
// Problems with the body as a whole are recorded under "body".
func (v *Validator) CheckJSON(s *Schema, body []byte) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		v.AddError("body", "must be a JSON object")
		return
	}

	err := s.compiled.Validate(doc)
	if err == nil {
		return
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		v.AddError("body", err.Error())
		return
	}
	for _, leaf := range leaves(ve) {
		key := strings.TrimPrefix(leaf.InstanceLocation, "/")
		if key == "" {
			key = "body"
		}
		v.AddError(key, leaf.Message)
	}
}

func leaves(ve *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*jsonschema.ValidationError{ve}
	}
	var out []*jsonschema.ValidationError
	for _, cause := range ve.Causes {
		out = append(out, leaves(cause)...)
	}
	return out
}
