package schema

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

// GenerateJSONSchema produces a JSON Schema Draft 2020-12 document from
// the Go Timetable struct using invopop/jsonschema.
func GenerateJSONSchema() ([]byte, error) {
	r := new(jsonschema.Reflector)
	r.DoNotReference = false

	s := r.Reflect(&Timetable{})
	s.ID = "https://github.com/classgrid/classgrid/schemas/timetable-v1.json"
	s.Title = "School Timetable"
	s.Description = "Schema for classgrid timetable documents (Draft 2020-12)"

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	return data, nil
}

var compileGenerated = sync.OnceValues(func() (*sjsonschema.Schema, error) {
	schemaJSON, err := GenerateJSONSchema()
	if err != nil {
		return nil, err
	}
	var schemaDoc any
	if err := json.Unmarshal(schemaJSON, &schemaDoc); err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}
	c := sjsonschema.NewCompiler()
	if err := c.AddResource("timetable-v1.json", schemaDoc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	sch, err := c.Compile("timetable-v1.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return sch, nil
})

// ValidateAgainstSchema checks the document with a generic JSON Schema
// engine over the generated schema, instead of the built-in walker. The
// generated schema is stricter at the top level (no extra keys) and its
// violations carry the engine's own wording, so this is a cross-check
// path, not a replacement for Validate.
func ValidateAgainstSchema(doc *Value) []*Violation {
	sch, err := compileGenerated()
	if err != nil {
		return []*Violation{{
			Phase:    "semantic",
			Path:     "",
			Kind:     SchemaViolation,
			Message:  err.Error(),
			Severity: "error",
		}}
	}
	return validateWithSchema(sch, doc)
}

func validateWithSchema(sch *sjsonschema.Schema, doc *Value) []*Violation {
	err := sch.Validate(doc.Interface())
	if err == nil {
		return nil
	}
	ve, ok := err.(*sjsonschema.ValidationError)
	if !ok {
		return []*Violation{{
			Phase:    "semantic",
			Path:     "",
			Kind:     SchemaViolation,
			Message:  err.Error(),
			Severity: "error",
		}}
	}
	var errs []*Violation
	for _, cause := range flattenCauses(ve) {
		errs = append(errs, &Violation{
			Phase:    "semantic",
			Path:     strings.Join(cause.InstanceLocation, "/"),
			Kind:     SchemaViolation,
			Message:  fmt.Sprintf("%v", cause.ErrorKind),
			Severity: "error",
		})
	}
	return errs
}

// flattenCauses recursively collects all leaf validation errors.
func flattenCauses(ve *sjsonschema.ValidationError) []*sjsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*sjsonschema.ValidationError{ve}
	}
	var flat []*sjsonschema.ValidationError
	for _, cause := range ve.Causes {
		flat = append(flat, flattenCauses(cause)...)
	}
	return flat
}
