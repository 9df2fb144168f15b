package main

import (
	"fmt"
	"os"

	"github.com/classgrid/classgrid/pkg/schema"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "classgrid",
	Short: "School timetable validation toolkit",
	Long:  "classgrid — validates school timetable documents against the timetable schema and reports every violation with its location.",
}

// --- validate ---

var (
	validateEngine string
	validateFormat string
)

var validateCmd = &cobra.Command{
	Use:   "validate [timetable.json]",
	Short: "Validate a timetable document against the schema",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	filePath := args[0]

	format := schema.DetectFormat(filePath)
	switch validateFormat {
	case "", "auto":
	case "json":
		format = schema.FormatJSON
	case "yaml":
		format = schema.FormatYAML
	default:
		return fmt.Errorf("unknown format %q (want auto, json or yaml)", validateFormat)
	}

	f, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer f.Close()

	doc, err := schema.Parse(f, format)
	if err != nil {
		return fmt.Errorf("%s: %w", filePath, err)
	}

	var violations []*schema.Violation
	switch validateEngine {
	case "structural":
		res := schema.Validate(doc)
		violations = append(res.Violations, schema.ValidateDomain(doc)...)
	case "jsonschema":
		violations = schema.ValidateAgainstSchema(doc)
	default:
		return fmt.Errorf("unknown engine %q (want structural or jsonschema)", validateEngine)
	}

	// Separate warnings from errors
	var errors []*schema.Violation
	var warnings []*schema.Violation
	for _, v := range violations {
		if v.Severity == "warning" {
			warnings = append(warnings, v)
		} else {
			errors = append(errors, v)
		}
	}
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "  ⚠ [%s] %s\n", w.Phase, w.Message)
		if w.Path != "" {
			fmt.Fprintf(os.Stderr, "    at: %s\n", w.Path)
		}
	}
	if len(errors) > 0 {
		fmt.Fprintf(os.Stderr, "Validation failed: %d error(s)\n\n", len(errors))
		for i, e := range errors {
			fmt.Fprintf(os.Stderr, "  %d. [%s] %s\n", i+1, e.Phase, e.Message)
			if e.Path != "" {
				fmt.Fprintf(os.Stderr, "     at: %s\n", e.Path)
			}
		}
		return fmt.Errorf("validation failed with %d error(s)", len(errors))
	}

	name, days, subjects := summarize(doc)
	fmt.Printf("✓ %s is valid (%d days, %d subjects)\n", name, days, subjects)
	return nil
}

func summarize(doc *schema.Value) (name string, days, subjects int) {
	name = "timetable"
	if v, ok := doc.Get("name"); ok && v.Kind == schema.KindString {
		name = v.Str
	}
	if v, ok := doc.Get("timetable"); ok {
		days = len(v.Items)
	}
	if v, ok := doc.Get("subjects"); ok {
		subjects = len(v.Members)
	}
	return name, days, subjects
}

// --- schema ---

var schemaLiteral bool

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the timetable JSON Schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if schemaLiteral {
			fmt.Print(string(schema.LiteralSchemaJSON()))
			return nil
		}
		data, err := schema.GenerateJSONSchema()
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}

// --- fmt ---

var fmtOut string

var fmtCmd = &cobra.Command{
	Use:   "fmt [timetable.json]",
	Short: "Rewrite a timetable in canonical indented JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runFmt,
}

func runFmt(cmd *cobra.Command, args []string) error {
	filePath := args[0]
	tt, err := schema.LoadFile(filePath)
	if err != nil {
		return err
	}
	out := fmtOut
	if out == "" {
		out = filePath
	}
	if out == "-" {
		return tt.Save(os.Stdout)
	}
	if err := tt.SaveFile(out); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", out)
	return nil
}

// --- version ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("classgrid %s (%s)\n", version, commit)
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateEngine, "engine", "structural", "validation engine: structural or jsonschema")
	validateCmd.Flags().StringVar(&validateFormat, "format", "auto", "input format: auto, json or yaml")
	schemaCmd.Flags().BoolVar(&schemaLiteral, "literal", false, "print the original hand-written schema instead of the generated one")
	fmtCmd.Flags().StringVar(&fmtOut, "out", "", "write to this path instead of rewriting in place (- for stdout)")
	rootCmd.AddCommand(validateCmd, schemaCmd, fmtCmd, versionCmd)
}
