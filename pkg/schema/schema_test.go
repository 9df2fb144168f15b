package schema

import (
	"bytes"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

// TestLoadValidTimetables ensures the valid JSON fixtures decode without
// errors and carry the expected shape.
func TestLoadValidTimetables(t *testing.T) {
	files, err := filepath.Glob("../../testdata/valid/*.json")
	if err != nil {
		t.Fatalf("glob valid fixtures: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("no valid test fixtures found")
	}
	for _, f := range files {
		name := filepath.Base(f)
		t.Run(name, func(t *testing.T) {
			tt, err := LoadFile(f)
			if err != nil {
				t.Fatalf("expected valid, got error: %v", err)
			}
			if tt.Name == "" {
				t.Error("name is empty")
			}
			if len(tt.Days) != 5 {
				t.Errorf("days = %d, want 5", len(tt.Days))
			}
		})
	}
}

// TestLoadYAMLTimetable checks the YAML loader agrees with the JSON one.
func TestLoadYAMLTimetable(t *testing.T) {
	jt, err := LoadFile("../../testdata/valid/grade9a.json")
	if err != nil {
		t.Fatalf("load json: %v", err)
	}
	yt, err := LoadFile("../../testdata/valid/grade9a.yaml")
	if err != nil {
		t.Fatalf("load yaml: %v", err)
	}
	if !reflect.DeepEqual(jt, yt) {
		t.Errorf("yaml and json decode differ:\njson: %+v\nyaml: %+v", jt, yt)
	}
}

// TestLoadRejectsUnknownFields verifies that strict mode rejects unknown
// keys in typed loading.
func TestLoadRejectsUnknownFields(t *testing.T) {
	doc := `{"name": "T", "timetable": [{}, {}, {}, {}, {}], "subjects": {}, "period_times": {}, "colour": "blue"}`
	if _, err := Load(strings.NewReader(doc)); err == nil {
		t.Fatal("expected error for unknown field")
	}
	yamlDoc := "name: T\ntimetable: [{}, {}, {}, {}, {}]\nsubjects: {}\nperiod_times: {}\ncolour: blue\n"
	if _, err := LoadYAML(strings.NewReader(yamlDoc)); err == nil {
		t.Fatal("expected error for unknown yaml field")
	}
}

// TestLoadRejectsWrongTypes ensures type mismatches fail typed decoding.
func TestLoadRejectsWrongTypes(t *testing.T) {
	doc := `{"name": "T", "timetable": "not-an-array", "subjects": {}, "period_times": {}}`
	if _, err := Load(strings.NewReader(doc)); err == nil {
		t.Fatal("expected error for wrong timetable type")
	}
}

// TestSaveRoundTrip checks Save output re-loads to an equal timetable
// and that a second Save is byte-identical.
func TestSaveRoundTrip(t *testing.T) {
	tt, err := LoadFile("../../testdata/valid/grade9a.json")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	var first bytes.Buffer
	if err := tt.Save(&first); err != nil {
		t.Fatalf("save: %v", err)
	}
	back, err := Load(bytes.NewReader(first.Bytes()))
	if err != nil {
		t.Fatalf("re-load saved output: %v", err)
	}
	if !reflect.DeepEqual(tt, back) {
		t.Errorf("round trip changed the timetable:\nbefore: %+v\nafter:  %+v", tt, back)
	}

	var second bytes.Buffer
	if err := back.Save(&second); err != nil {
		t.Fatalf("save again: %v", err)
	}
	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Error("saving the saved output is not a no-op")
	}
}

// TestSavedOutputValidates ensures canonical output passes the full
// validation pipeline.
func TestSavedOutputValidates(t *testing.T) {
	tt, err := LoadFile("../../testdata/valid/grade9a.json")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	var buf bytes.Buffer
	if err := tt.Save(&buf); err != nil {
		t.Fatalf("save: %v", err)
	}
	res, err := ValidateReader(&buf, FormatJSON)
	if err != nil {
		t.Fatalf("validate saved output: %v", err)
	}
	if !res.Valid {
		t.Errorf("saved output invalid: %v", res.Violations)
	}
}

// TestLoadFileMissing checks the error path for nonexistent files.
func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile("../../testdata/valid/does-not-exist.json"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

// TestDetectFormat covers extension sniffing.
func TestDetectFormat(t *testing.T) {
	cases := map[string]Format{
		"week.json":    FormatJSON,
		"week.yaml":    FormatYAML,
		"week.YML":     FormatYAML,
		"week":         FormatJSON,
		"week.txt":     FormatJSON,
		"dir/week.yml": FormatYAML,
	}
	for path, want := range cases {
		if got := DetectFormat(path); got != want {
			t.Errorf("DetectFormat(%q) = %v, want %v", path, got, want)
		}
	}
}
