package cli

import (
	"errors"
	"fmt"
	"os"

	"cuelang.org/go/cue/token"

	"github.com/roach88/otioremap/internal/compiler"
	"github.com/roach88/otioremap/internal/otio"
)

// LoadError represents an error that occurred while loading a document.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available

	// Violations lists schema violations when Code is a schema code.
	Violations []compiler.ValidationError
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.message())
}

// message is the error message prefixed with its source position.
func (e *LoadError) message() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return e.Message
}

// LoadDocument compiles an OTIO (JSON) or CUE document.
func LoadDocument(path string) (*compiler.Document, *LoadError) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("document not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing document: %v", err)}
	}
	if info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a file: %s", path)}
	}

	comp, err := compiler.New()
	if err != nil {
		return nil, &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
	}
	doc, err := comp.CompileFile(path)
	if err != nil {
		return nil, convertCompileError(err)
	}
	return doc, nil
}

// LoadClip loads a document and returns one of its clips: the clip of a
// clip document, or the clip called name in a timeline.
func LoadClip(path, name string) (*otio.Clip, *LoadError) {
	doc, lerr := LoadDocument(path)
	if lerr != nil {
		return nil, lerr
	}
	if doc.Kind == compiler.KindClip {
		return doc.Clip, nil
	}
	if name == "" {
		return nil, &LoadError{Code: ErrCodeBadArgs, Message: "--clip is required for timeline documents"}
	}
	for _, clip := range doc.Timeline.EachClip() {
		if clip.Name == name {
			return clip, nil
		}
	}
	return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("clip %q not found in timeline %q", name, doc.Timeline.Name)}
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error) *LoadError {
	var schemaErr *compiler.SchemaError
	if errors.As(err, &schemaErr) && len(schemaErr.Errors) > 0 {
		first := schemaErr.Errors[0]
		return &LoadError{Code: first.Code, Message: first.Message, Violations: schemaErr.Errors}
	}
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		code := ErrCodeLoadFailed
		if compileErr.Field == "OTIO_SCHEMA" {
			code = compiler.ErrUnsupportedDocument
		}
		return &LoadError{Code: code, Message: compileErr.Message, Pos: compileErr.Pos}
	}
	return &LoadError{Code: ErrCodeLoadFailed, Message: err.Error()}
}

// fail writes a load error in the configured format. Missing paths and bad
// arguments are command errors; documents that fail to compile are
// failures.
func (e *LoadError) fail(f *OutputFormatter) error {
	exit := ExitFailure
	if e.Code == ErrCodeNotFound || e.Code == ErrCodeBadArgs || e.Code == ErrCodeGeneric {
		exit = ExitCommandError
	}
	var data any
	if len(e.Violations) > 0 {
		data = ValidationResult{Valid: false, Errors: e.Violations}
	}
	return f.Fail(exit, e.Code, e.message(), data)
}
