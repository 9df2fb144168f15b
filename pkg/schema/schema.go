// Package schema defines the Go struct types for the school timetable
// document and validates candidate documents against the timetable shape,
// reporting every violation with its location.
package schema

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Timetable is the top-level document: a named week of school days plus
// the subject and period-time tables the days reference.
type Timetable struct {
	Name        string                `json:"name"         yaml:"name"         jsonschema:"required"`
	Days        []Day                 `json:"timetable"    yaml:"timetable"    jsonschema:"required,minItems=5,maxItems=5"`
	Subjects    map[string]Subject    `json:"subjects"     yaml:"subjects"     jsonschema:"required"`
	PeriodTimes map[string]PeriodTime `json:"period_times" yaml:"period_times" jsonschema:"required"`
}

// Day maps a period id to the period scheduled in that slot. Days carry
// no fixed set of keys — a day with no periods is an empty object.
type Day map[string]Period

// Period is one scheduled slot within a day. Subject holds a subject id,
// which should be a key of Timetable.Subjects.
type Period struct {
	Subject string `json:"subject" yaml:"subject" jsonschema:"required"`
	Room    string `json:"room"    yaml:"room"    jsonschema:"required"`
}

// Subject is a course of instruction with an assigned teacher.
//
// e.g. Maths, English, Science.
type Subject struct {
	Name    string `json:"name"    yaml:"name"    jsonschema:"required"`
	Teacher string `json:"teacher" yaml:"teacher" jsonschema:"required"`
}

// PeriodTime is the named time-of-day window a period id maps to, shared
// across days. Start and End are HHMM 24h literals, e.g. "0845".
type PeriodTime struct {
	Name  string `json:"name"  yaml:"name"  jsonschema:"required"`
	Start string `json:"start" yaml:"start" jsonschema:"required"`
	End   string `json:"end"   yaml:"end"   jsonschema:"required"`
}

// LoadFile reads and strictly decodes a timetable document, picking the
// format from the file extension.
func LoadFile(path string) (*Timetable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open timetable: %w", err)
	}
	defer f.Close()
	if DetectFormat(path) == FormatYAML {
		return LoadYAML(f)
	}
	return Load(f)
}

// Load parses a timetable from JSON with strict unknown-field rejection.
// It checks shape only — use Validate for the full rule set.
func Load(r io.Reader) (*Timetable, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var t Timetable
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("decode timetable: %w", err)
	}
	return &t, nil
}

// LoadYAML parses a timetable from YAML with strict unknown-field
// rejection (yaml.v3 KnownFields).
func LoadYAML(r io.Reader) (*Timetable, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var t Timetable
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("decode timetable: %w", err)
	}
	return &t, nil
}

// Save writes the timetable as canonical two-space-indented JSON with a
// trailing newline. Running Save over its own output is a no-op.
func (t *Timetable) Save(w io.Writer) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal timetable: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write timetable: %w", err)
	}
	return nil
}

// SaveFile writes the timetable to path in canonical form.
func (t *Timetable) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create timetable: %w", err)
	}
	if err := t.Save(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
