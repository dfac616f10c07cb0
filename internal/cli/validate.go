package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/otioremap/internal/compiler"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool                       `json:"valid"`
	Kind   string                     `json:"kind,omitempty"`
	Clips  int                        `json:"clips,omitempty"`
	Errors []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <document>",
		Short: "Validate a clip or timeline document",
		Long: `Validate an OTIO clip or timeline document.

Checks the document against the embedded CUE schema, then resolves every
clip without handles and reports the clips the engine cannot resolve.

Exit codes:
  0 - Document valid
  1 - Schema violations or unresolvable clips
  2 - Command error (document not found)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd.OutOrStdout())

	doc, lerr := LoadDocument(path)
	if lerr != nil {
		if len(lerr.Violations) > 0 {
			return outputValidationErrors(f, ValidationResult{Errors: lerr.Violations})
		}
		return lerr.fail(f)
	}

	result := ValidationResult{Kind: doc.Kind, Clips: 1}
	if doc.Kind == compiler.KindTimeline {
		result.Clips = len(doc.Timeline.EachClip())
	}
	opts.logger().Debug("validating document", "path", path, "kind", doc.Kind, "clips", result.Clips)

	result.Errors = compiler.Validate(doc)
	if len(result.Errors) > 0 {
		return outputValidationErrors(f, result)
	}

	result.Valid = true
	return f.Result(result, func(w io.Writer) {
		fmt.Fprintf(w, "✓ %s valid (%d clip(s))\n", doc.Kind, result.Clips)
	})
}

// outputValidationErrors outputs validation errors.
// Validation failures = exit code 1 (test/validation failure)
func outputValidationErrors(f *OutputFormatter, result ValidationResult) error {
	errs := result.Errors
	if f.Format == "json" {
		return f.Fail(ExitFailure, errs[0].Code, errs[0].Message, result)
	}

	fmt.Fprintln(f.Writer, "✗ Validation failed")
	fmt.Fprintln(f.Writer)
	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(f.Writer, "line %d\n", err.Line)
		}
		fmt.Fprintf(f.Writer, "  %s: %s: %s\n\n", err.Code, err.Field, err.Message)
	}
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
