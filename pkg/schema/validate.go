package schema

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"sync"
)

// ViolationKind classifies a single reported defect.
type ViolationKind string

const (
	// TypeMismatch — a value has the wrong data type.
	TypeMismatch ViolationKind = "type_mismatch"
	// MissingField — a required field is absent.
	MissingField ViolationKind = "missing_field"
	// ArityMismatch — the timetable does not have exactly five days.
	ArityMismatch ViolationKind = "arity_mismatch"
	// UnexpectedField — a field is present where the schema forbids
	// additional properties.
	UnexpectedField ViolationKind = "unexpected_field"
	// UnknownSubject — a period references a subject id that is not
	// declared in the subjects table.
	UnknownSubject ViolationKind = "unknown_subject"
	// UnknownPeriodTime — a day uses a period id with no period_times
	// entry.
	UnknownPeriodTime ViolationKind = "unknown_period_time"
	// BadTimeFormat — a period time is not a 24h HHMM literal.
	BadTimeFormat ViolationKind = "bad_time_format"
	// SchemaViolation — reported by the generic JSON Schema engine,
	// whose error tree does not map 1:1 onto the kinds above.
	SchemaViolation ViolationKind = "schema"
)

// Violation represents a single validation defect with location context.
type Violation struct {
	Phase    string        `json:"phase"` // structural, semantic, domain
	Path     string        `json:"path"`  // JSON-path-like location (e.g., "timetable[0].p3.subject")
	Kind     ViolationKind `json:"kind"`
	Message  string        `json:"message"`
	Severity string        `json:"severity"` // error, warning
}

func (v *Violation) Error() string {
	return fmt.Sprintf("[%s] %s: %s", v.Phase, v.Path, v.Message)
}

// Result is the outcome of validating one document. Valid is true when
// no error-severity violation was found; warnings alone do not
// invalidate a document.
type Result struct {
	Valid      bool         `json:"valid"`
	Violations []*Violation `json:"violations"`
}

func newResult(violations []*Violation) *Result {
	res := &Result{Valid: true, Violations: violations}
	for _, v := range violations {
		if v.Severity == "error" {
			res.Valid = false
		}
	}
	return res
}

// recordRule describes a flat object whose declared fields are all
// required strings.
type recordRule struct {
	label  string
	fields []string // declared order
	closed bool     // reject undeclared fields
}

type ruleSet struct {
	period     recordRule
	subject    recordRule
	periodTime recordRule
	timeFormat *regexp.Regexp
	dayCount   int
}

// rules is the compiled rule tree, built once per process.
var rules = sync.OnceValue(func() *ruleSet {
	return &ruleSet{
		period:     recordRule{label: "period", fields: []string{"subject", "room"}, closed: true},
		subject:    recordRule{label: "subject", fields: []string{"name", "teacher"}, closed: true},
		periodTime: recordRule{label: "period time", fields: []string{"name", "start", "end"}, closed: true},
		timeFormat: regexp.MustCompile(`^([0-1][0-9]|2[0-3])[0-5][0-9]$`),
		dayCount:   5,
	}
})

// Validate runs the structural phase: a recursive descent over the
// compiled rule tree, collecting every defect rather than stopping at
// the first. The input is never mutated and no input shape panics. The
// only early exit is a non-object root, which makes all further checks
// meaningless.
func Validate(doc *Value) *Result {
	rs := rules()
	if doc == nil || doc.Kind != KindObject {
		got := "null"
		if doc != nil {
			got = doc.Kind.String()
		}
		return newResult([]*Violation{{
			Phase:    "structural",
			Path:     "",
			Kind:     TypeMismatch,
			Message:  fmt.Sprintf("document must be an object, got %s", got),
			Severity: "error",
		}})
	}

	var errs []*Violation

	// Top-level fields in declared order. The top-level object itself
	// is permissive: extra keys are not violations.
	if v, ok := doc.Get("name"); !ok {
		errs = append(errs, missingField("name", "document"))
	} else if v.Kind != KindString {
		errs = append(errs, typeMismatch("name", KindString, v))
	}

	if v, ok := doc.Get("timetable"); !ok {
		errs = append(errs, missingField("timetable", "document"))
	} else {
		errs = append(errs, validateWeek(rs, v)...)
	}

	if v, ok := doc.Get("subjects"); !ok {
		errs = append(errs, missingField("subjects", "document"))
	} else {
		errs = append(errs, validateTable(rs.subject, "subjects", v)...)
	}

	if v, ok := doc.Get("period_times"); !ok {
		errs = append(errs, missingField("period_times", "document"))
	} else {
		errs = append(errs, validateTable(rs.periodTime, "period_times", v)...)
	}

	return newResult(errs)
}

// validateWeek checks the five-day sequence. Arity and per-day defects
// are reported independently; one does not suppress the other.
func validateWeek(rs *ruleSet, v *Value) []*Violation {
	if v.Kind != KindArray {
		return []*Violation{typeMismatch("timetable", KindArray, v)}
	}
	var errs []*Violation
	if len(v.Items) != rs.dayCount {
		errs = append(errs, &Violation{
			Phase:    "structural",
			Path:     "timetable",
			Kind:     ArityMismatch,
			Message:  fmt.Sprintf("timetable must have exactly %d days, got %d", rs.dayCount, len(v.Items)),
			Severity: "error",
		})
	}
	for i, day := range v.Items {
		path := fmt.Sprintf("timetable[%d]", i)
		if day.Kind != KindObject {
			errs = append(errs, typeMismatch(path, KindObject, day))
			continue
		}
		for _, m := range day.Members {
			errs = append(errs, validateRecord(rs.period, path+"."+m.Key, m.Value)...)
		}
	}
	return errs
}

// validateTable checks a string-keyed mapping of records. Any key is
// allowed; only the entry values are constrained.
func validateTable(rule recordRule, path string, v *Value) []*Violation {
	if v.Kind != KindObject {
		return []*Violation{typeMismatch(path, KindObject, v)}
	}
	var errs []*Violation
	for _, m := range v.Members {
		errs = append(errs, validateRecord(rule, path+"."+m.Key, m.Value)...)
	}
	return errs
}

func validateRecord(rule recordRule, path string, v *Value) []*Violation {
	if v.Kind != KindObject {
		return []*Violation{typeMismatch(path, KindObject, v)}
	}
	var errs []*Violation
	for _, f := range rule.fields {
		fv, ok := v.Get(f)
		if !ok {
			errs = append(errs, missingField(path+"."+f, rule.label))
			continue
		}
		if fv.Kind != KindString {
			errs = append(errs, typeMismatch(path+"."+f, KindString, fv))
		}
	}
	if rule.closed {
		for _, m := range v.Members {
			if !slices.Contains(rule.fields, m.Key) {
				errs = append(errs, &Violation{
					Phase:    "structural",
					Path:     path + "." + m.Key,
					Kind:     UnexpectedField,
					Message:  fmt.Sprintf("%s does not allow field %q", rule.label, m.Key),
					Severity: "error",
				})
			}
		}
	}
	return errs
}

func missingField(path, label string) *Violation {
	field := path
	if i := strings.LastIndex(path, "."); i >= 0 {
		field = path[i+1:]
	}
	return &Violation{
		Phase:    "structural",
		Path:     path,
		Kind:     MissingField,
		Message:  fmt.Sprintf("%s is missing required field %q", label, field),
		Severity: "error",
	}
}

func typeMismatch(path string, want Kind, got *Value) *Violation {
	gotKind := "null"
	if got != nil {
		gotKind = got.Kind.String()
	}
	return &Violation{
		Phase:    "structural",
		Path:     path,
		Kind:     TypeMismatch,
		Message:  fmt.Sprintf("expected %s, got %s", want, gotKind),
		Severity: "error",
	}
}

// ValidateDomain runs the cross-field rules the schema itself cannot
// express. It only inspects regions that are structurally sound, so it
// is safe to call on documents the structural phase rejected.
//
// Rules:
//   - a period's subject id must be declared in subjects (the original
//     loader refuses such files, so this is an error)
//   - a day's period id should be declared in period_times (only breaks
//     rendering, so a warning)
//   - start/end should be 24h HHMM literals (documented, never
//     previously enforced: a warning)
func ValidateDomain(doc *Value) []*Violation {
	if doc == nil || doc.Kind != KindObject {
		return nil
	}
	rs := rules()
	var errs []*Violation

	subjectIDs := make(map[string]bool)
	if subjects, ok := doc.Get("subjects"); ok && subjects.Kind == KindObject {
		for _, m := range subjects.Members {
			subjectIDs[m.Key] = true
		}
	}
	periodIDs := make(map[string]bool)
	if pts, ok := doc.Get("period_times"); ok && pts.Kind == KindObject {
		for _, m := range pts.Members {
			periodIDs[m.Key] = true
		}
	}

	if week, ok := doc.Get("timetable"); ok && week.Kind == KindArray {
		for i, day := range week.Items {
			if day.Kind != KindObject {
				continue
			}
			for _, m := range day.Members {
				path := fmt.Sprintf("timetable[%d].%s", i, m.Key)
				if !periodIDs[m.Key] {
					errs = append(errs, &Violation{
						Phase:    "domain",
						Path:     path,
						Kind:     UnknownPeriodTime,
						Message:  fmt.Sprintf("period id %q is not declared in period_times", m.Key),
						Severity: "warning",
					})
				}
				if m.Value.Kind != KindObject {
					continue
				}
				if subj, ok := m.Value.Get("subject"); ok && subj.Kind == KindString {
					if !subjectIDs[subj.Str] {
						errs = append(errs, &Violation{
							Phase:    "domain",
							Path:     path + ".subject",
							Kind:     UnknownSubject,
							Message:  fmt.Sprintf("subject %q is not declared in subjects", subj.Str),
							Severity: "error",
						})
					}
				}
			}
		}
	}

	if pts, ok := doc.Get("period_times"); ok && pts.Kind == KindObject {
		for _, m := range pts.Members {
			if m.Value.Kind != KindObject {
				continue
			}
			for _, f := range []string{"start", "end"} {
				tv, ok := m.Value.Get(f)
				if !ok || tv.Kind != KindString {
					continue
				}
				if !rs.timeFormat.MatchString(tv.Str) {
					errs = append(errs, &Violation{
						Phase:    "domain",
						Path:     "period_times." + m.Key + "." + f,
						Kind:     BadTimeFormat,
						Message:  fmt.Sprintf("%s %q is not a 24h HHMM time", f, tv.Str),
						Severity: "warning",
					})
				}
			}
		}
	}

	return errs
}

// Format selects the serialization a document is parsed from.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// DetectFormat picks the document format from the file extension.
// Anything that isn't .yaml/.yml is treated as JSON.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Parse reads a document into the generic tree.
func Parse(r io.Reader, format Format) (*Value, error) {
	if format == FormatYAML {
		return ParseYAML(r)
	}
	return ParseJSON(r)
}

// ValidateReader runs the full pipeline: parse, structural phase, domain
// phase. The returned error is the fatal parse case only — every
// structural or domain defect is a Violation in the Result.
func ValidateReader(r io.Reader, format Format) (*Result, error) {
	doc, err := Parse(r, format)
	if err != nil {
		return nil, err
	}
	res := Validate(doc)
	return newResult(append(res.Violations, ValidateDomain(doc)...)), nil
}

// ValidateFile validates the document at path, picking the format from
// the file extension.
func ValidateFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open timetable: %w", err)
	}
	defer f.Close()
	return ValidateReader(f, DetectFormat(path))
}
