package aoinvert

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/Faultbox/tilesmith/pkg/jsontree"
)

// Processing errors. ErrInvalidJSON and ErrInvalidEncoding are the jsontree
// sentinels, so decode errors are reported without a second prefix.
var (
	ErrInputNotFound   = errors.New("input file not found")
	ErrInvalidJSON     = jsontree.ErrSyntax
	ErrInvalidEncoding = jsontree.ErrEncoding
)

// ErrorClass groups errors the way they are reported to the user.
type ErrorClass int

// Error classes.
const (
	ClassNone ErrorClass = iota
	ClassNotFound
	ClassInvalidJSON
	ClassInvalidEncoding
	ClassOther
)

// Classify maps err to its reporting class.
func Classify(err error) ErrorClass {
	switch {
	case err == nil:
		return ClassNone
	case errors.Is(err, ErrInputNotFound):
		return ClassNotFound
	case errors.Is(err, ErrInvalidJSON):
		return ClassInvalidJSON
	case errors.Is(err, ErrInvalidEncoding):
		return ClassInvalidEncoding
	default:
		return ClassOther
	}
}

// ProcessOptions controls Process.
type ProcessOptions struct {
	// DryRun performs the transform and reports it without writing.
	DryRun bool
	// Indent is the output indentation; jsontree.DefaultIndent when empty.
	Indent string
}

// Report describes the outcome of a Process call.
type Report struct {
	Input   string
	Output  string
	DryRun  bool
	Written bool
	Stats   Stats
	Changes []Change
}

// load reads and parses a JSON file, classifying failures.
func load(path string) (jsontree.Value, error) {
	v, err := jsontree.ReadFile(path)
	switch {
	case err == nil:
		return v, nil
	case errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("%w: %s", ErrInputNotFound, path)
	case errors.Is(err, ErrInvalidJSON), errors.Is(err, ErrInvalidEncoding):
		return nil, err
	default:
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
}

// Process inverts the rule sets in the JSON file input and writes the result
// to output. Nothing is written when no rule set matches or when DryRun is
// set; otherwise the complete document is written atomically.
func (inv *Inverter) Process(input, output string, opts ProcessOptions) (*Report, error) {
	log := inv.log()
	report := &Report{Input: input, Output: output, DryRun: opts.DryRun}

	log.Info("Loading JSON", zap.String("path", input))
	doc, err := load(input)
	if err != nil {
		return report, err
	}

	log.Info("Searching for rule sets", zap.String("name", inv.TargetName()))
	out, stats, changes := inv.Transform(doc)
	report.Stats = stats
	report.Changes = changes

	if !stats.Found {
		log.Warn("No rule sets found", zap.String("name", inv.TargetName()))
		return report, nil
	}
	if opts.DryRun {
		log.Info("Dry run, not saving", zap.String("path", output))
		return report, nil
	}

	indent := opts.Indent
	if indent == "" {
		indent = jsontree.DefaultIndent
	}
	if err := jsontree.WriteFile(output, out, indent); err != nil {
		return report, fmt.Errorf("writing %s: %w", output, err)
	}
	report.Written = true
	log.Info("Saved modified JSON", zap.String("path", output))
	return report, nil
}

// Print writes a human-readable summary of the report.
func (r *Report) Print(w io.Writer, target string) {
	if !r.Stats.Found {
		fmt.Fprintf(w, "No %s objects found in the JSON file.\n", target)
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Summary:")
	fmt.Fprintf(w, "  - Found %s objects: Yes (%d)\n", target, r.Stats.Objects)
	fmt.Fprintf(w, "  - Pattern rules modified: %d\n", r.Stats.Modified)
	for _, c := range r.Changes {
		fmt.Fprintf(w, "    Rule UID %s: Pattern %s -> %s\n", c.UID, FormatArray(c.Before), FormatArray(c.After))
	}

	if r.DryRun {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Dry run mode - no file saved.")
		fmt.Fprintf(w, "Would save to: %s\n", r.Output)
		return
	}
	if r.Written {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Modified JSON saved to: %s\n", r.Output)
	}
}

// ProcessErrorMessage returns the message shown when Process fails.
func ProcessErrorMessage(input string, err error) string {
	switch Classify(err) {
	case ClassNotFound:
		return fmt.Sprintf("Error: Input file '%s' not found.", input)
	case ClassInvalidJSON:
		return fmt.Sprintf("Error: Invalid JSON in input file - %v", err)
	case ClassInvalidEncoding:
		return fmt.Sprintf("Error: Input file '%s' is not valid UTF-8 - %v", input, err)
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}

// Validate reports whether path holds a well-formed UTF-8 JSON document.
func Validate(path string) error {
	_, err := load(path)
	return err
}

// ValidationResult is the outcome of validating one file.
type ValidationResult struct {
	Path string
	Err  error
}

// OK reports whether the file was valid.
func (r ValidationResult) OK() bool {
	return r.Err == nil
}

// String renders the result as a single status line.
func (r ValidationResult) String() string {
	switch Classify(r.Err) {
	case ClassNone:
		return fmt.Sprintf("✓ JSON file '%s' is valid", r.Path)
	case ClassNotFound:
		return fmt.Sprintf("✗ File '%s' not found", r.Path)
	case ClassInvalidJSON:
		return fmt.Sprintf("✗ Invalid JSON in '%s': %v", r.Path, r.Err)
	case ClassInvalidEncoding:
		return fmt.Sprintf("✗ Invalid UTF-8 in '%s': %v", r.Path, r.Err)
	default:
		return fmt.Sprintf("✗ Error reading '%s': %v", r.Path, r.Err)
	}
}

// ValidateAll validates every path in order.
func ValidateAll(paths []string) []ValidationResult {
	results := make([]ValidationResult, len(paths))
	for i, p := range paths {
		results[i] = ValidationResult{Path: p, Err: Validate(p)}
	}
	return results
}

// ExpandInputs expands doublestar glob patterns ("levels/**/*.json") into
// file paths. Plain paths, and patterns that match nothing, are kept as given
// so that they are reported as missing rather than silently dropped.
func ExpandInputs(patterns []string) ([]string, error) {
	var out []string
	for _, p := range patterns {
		if !strings.ContainsAny(p, "*?[{") {
			out = append(out, p)
			continue
		}
		if !doublestar.ValidatePathPattern(p) {
			return nil, fmt.Errorf("%w: %q", doublestar.ErrBadPattern, p)
		}
		matches, err := doublestar.FilepathGlob(p)
		if err != nil {
			return nil, fmt.Errorf("expanding %q: %w", p, err)
		}
		if len(matches) == 0 {
			out = append(out, p)
			continue
		}
		out = append(out, matches...)
	}
	return out, nil
}
