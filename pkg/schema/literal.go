package schema

import (
	"encoding/json"
	"fmt"

	_ "embed"

	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

// timetable.schema.json is the schema document this tool grew out of,
// kept as written. Its required blocks for the top-level object and for
// subjects/period_times entries sit in positions a conforming engine
// ignores (sibling keys of patternProperties rather than sub-schemas),
// so under this schema those constraints silently do not bind. The
// built-in walker implements the evidently intended rules instead;
// TestLiteralSchemaGap pins down the difference.
//
//go:embed timetable.schema.json
var literalSchemaJSON []byte

// LiteralSchemaJSON returns a copy of the original hand-written schema
// document.
func LiteralSchemaJSON() []byte {
	return append([]byte(nil), literalSchemaJSON...)
}

// CompileLiteralSchema compiles the original schema exactly as written.
func CompileLiteralSchema() (*sjsonschema.Schema, error) {
	var doc any
	if err := json.Unmarshal(literalSchemaJSON, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal literal schema: %w", err)
	}
	c := sjsonschema.NewCompiler()
	if err := c.AddResource("timetable.schema.json", doc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	sch, err := c.Compile("timetable.schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile literal schema: %w", err)
	}
	return sch, nil
}

// ValidateLiteral checks a document against the schema as written,
// misplaced constraints and all.
func ValidateLiteral(doc *Value) ([]*Violation, error) {
	sch, err := CompileLiteralSchema()
	if err != nil {
		return nil, err
	}
	return validateWithSchema(sch, doc), nil
}
