package compiler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/otioremap/internal/editorial"
	"github.com/roach88/otioremap/internal/otio"
)

// Validation error codes (E100-E199)
const (
	// Document errors (E100-E109)
	ErrUnsupportedDocument = "E100" // root is not a Clip or Timeline
	ErrSchemaMismatch      = "E101" // object violates the CUE schema

	// Clip errors (E110-E119)
	ErrNoMediaReference    = "E110" // clip has no media reference
	ErrNoAvailableRange    = "E111" // media extent unknown
	ErrSequencePadding     = "E112" // %d path without a padding hint
	ErrNotSequence         = "E113" // sequence-only operation on a single file
	ErrRateMismatch        = "E114" // range and media rates differ
	ErrUnsupportedTimeWarp = "E115" // chained time warps outside computed range
	ErrDuplicateClipName   = "E116" // two clips share a name
	ErrNegativeDuration    = "E117" // clip or gap with negative duration
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// SchemaError wraps the violations that stopped a document from compiling.
type SchemaError struct {
	Errors []ValidationError
}

func (e *SchemaError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, ve := range e.Errors {
		msgs[i] = ve.Error()
	}
	return "schema validation failed: " + strings.Join(msgs, "; ")
}

// Validate checks a compiled document for clips the editorial engine
// cannot resolve. Every clip is resolved without handles; failures are
// reported with the engine's error mapped to a code.
// Returns all errors found (does not fail-fast).
func Validate(doc *Document) []ValidationError {
	switch doc.Kind {
	case KindClip:
		return validateClip(doc.Clip, "clip")
	case KindTimeline:
		return validateTimeline(doc.Timeline)
	default:
		return []ValidationError{{
			Field:   "document",
			Message: fmt.Sprintf("unsupported document kind %q", doc.Kind),
			Code:    ErrUnsupportedDocument,
		}}
	}
}

func validateTimeline(tl *otio.Timeline) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]string)

	for ti, track := range tl.Tracks {
		for ci, item := range track.Children {
			field := fmt.Sprintf("tracks[%d].children[%d]", ti, ci)

			switch it := item.(type) {
			case *otio.Gap:
				if it.SourceRange.Duration.Value < 0 {
					errs = append(errs, ValidationError{
						Field:   field + ".source_range",
						Message: "gap duration is negative",
						Code:    ErrNegativeDuration,
					})
				}
			case *otio.Clip:
				// Audio clips are only checked for overlap, never resolved.
				if track.Kind == otio.TrackKindVideo {
					if prev, dup := seen[it.Name]; dup && it.Name != "" {
						errs = append(errs, ValidationError{
							Field:   field + ".name",
							Message: fmt.Sprintf("clip name %q already used at %s", it.Name, prev),
							Code:    ErrDuplicateClipName,
						})
					}
					seen[it.Name] = field
					errs = append(errs, validateClip(it, field)...)
				}
			}
		}
	}
	return errs
}

func validateClip(clip *otio.Clip, field string) []ValidationError {
	var errs []ValidationError

	if clip.MediaReference == nil {
		return append(errs, ValidationError{
			Field:   field + ".media_reference",
			Message: fmt.Sprintf("clip %q has no media reference", clip.Name),
			Code:    ErrNoMediaReference,
		})
	}

	if clip.SourceRange != nil && clip.SourceRange.Duration.Value < 0 {
		errs = append(errs, ValidationError{
			Field:   field + ".source_range",
			Message: "source duration is negative",
			Code:    ErrNegativeDuration,
		})
	}

	if ref, ok := clip.MediaReference.(*otio.ExternalReference); ok && ref.IsSequencePath() {
		if !ref.Metadata().Truthy("padding") {
			errs = append(errs, ValidationError{
				Field:   field + ".media_reference.metadata.padding",
				Message: fmt.Sprintf("sequence path %q has no padding", ref.TargetURL),
				Code:    ErrSequencePadding,
			})
		}
	}

	if _, err := editorial.GetMediaRangeWithRetimes(clip, 0, 0); err != nil {
		errs = append(errs, ValidationError{
			Field:   field,
			Message: err.Error(),
			Code:    ErrorCode(err),
		})
	}

	return errs
}

// ErrorCode maps an engine error to its validation code.
func ErrorCode(err error) string {
	var re *editorial.RangeError
	if !errors.As(err, &re) {
		return ErrSchemaMismatch
	}
	switch re.Code {
	case editorial.ErrCodeNoAvailableRange:
		return ErrNoAvailableRange
	case editorial.ErrCodeNotSequence:
		return ErrNotSequence
	case editorial.ErrCodeRateMismatch:
		return ErrRateMismatch
	case editorial.ErrCodeUnsupportedTimeWarp:
		return ErrUnsupportedTimeWarp
	default:
		return ErrSchemaMismatch
	}
}
