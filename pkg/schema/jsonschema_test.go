package schema

import (
	"encoding/json"
	"strings"
	"testing"
)

// TestGenerateJSONSchema checks the reflected schema carries the wire
// field names and the five-day arity constraint.
func TestGenerateJSONSchema(t *testing.T) {
	data, err := GenerateJSONSchema()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("generated schema is not valid JSON: %v", err)
	}
	s := string(data)
	for _, want := range []string{`"period_times"`, `"timetable"`, `"subjects"`, `"maxItems": 5`, `"minItems": 5`} {
		if !strings.Contains(s, want) {
			t.Errorf("generated schema missing %s", want)
		}
	}
}

// TestGenericEngineAcceptsMinimal checks the generic engine agrees with
// the walker on the minimal valid document.
func TestGenericEngineAcceptsMinimal(t *testing.T) {
	v := mustParseJSON(t, minimalDoc)
	if errs := ValidateAgainstSchema(v); len(errs) != 0 {
		t.Errorf("expected no violations, got: %v", errs)
	}
}

// TestGenericEngineRejectsFourDays checks arity agreement between the
// two engines.
func TestGenericEngineRejectsFourDays(t *testing.T) {
	doc := `{"name": "T", "timetable": [{}, {}, {}, {}], "subjects": {}, "period_times": {}}`
	v := mustParseJSON(t, doc)

	if errs := ValidateAgainstSchema(v); len(errs) == 0 {
		t.Error("generic engine accepted a four-day timetable")
	}
	if res := Validate(v); res.Valid {
		t.Error("walker accepted a four-day timetable")
	}
}

// TestGenericEngineRejectsMissingRoom ensures required period fields are
// enforced by the generated schema and reported with a location.
func TestGenericEngineRejectsMissingRoom(t *testing.T) {
	doc := `{"name": "T", "timetable": [{"p1": {"subject": "maths"}}, {}, {}, {}, {}], "subjects": {}, "period_times": {}}`
	errs := ValidateAgainstSchema(mustParseJSON(t, doc))
	if len(errs) == 0 {
		t.Fatal("expected violations for missing room")
	}
	found := false
	for _, e := range errs {
		if e.Phase != "semantic" || e.Kind != SchemaViolation {
			t.Errorf("unexpected violation shape: %+v", e)
		}
		if strings.Contains(e.Path, "timetable") {
			found = true
		}
	}
	if !found {
		t.Errorf("no violation located under timetable: %v", errs)
	}
}

// TestGenericEngineRejectsMissingTopLevel checks required top-level
// fields in the generated schema.
func TestGenericEngineRejectsMissingTopLevel(t *testing.T) {
	if errs := ValidateAgainstSchema(mustParseJSON(t, `{}`)); len(errs) == 0 {
		t.Error("generic engine accepted an empty document")
	}
}
