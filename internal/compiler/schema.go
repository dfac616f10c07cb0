package compiler

import (
	_ "embed"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	cueerrors "cuelang.org/go/cue/errors"
)

const schemaFilename = "schema/otio.cue"

//go:embed schema/otio.cue
var schemaSource []byte

// schemaDefs maps OTIO_SCHEMA names to the definition checking them.
// Objects with other schema names (transitions, generators) are not
// checked.
var schemaDefs = map[string]string{
	"RationalTime":           "#RationalTime",
	"TimeRange":              "#TimeRange",
	"ExternalReference":      "#ExternalReference",
	"ImageSequenceReference": "#ImageSequenceReference",
	"MissingReference":       "#MediaReference",
	"GeneratorReference":     "#MediaReference",
	"Effect":                 "#Effect",
	"TimeEffect":             "#TimeEffect",
	"LinearTimeWarp":         "#LinearTimeWarp",
	"FreezeFrame":            "#Effect",
	"Marker":                 "#Marker",
	"Clip":                   "#Clip",
	"Gap":                    "#Gap",
	"Track":                  "#Track",
	"Stack":                  "#Stack",
	"Timeline":               "#Timeline",
}

// Schema checks interchange documents against the embedded CUE
// definitions.
type Schema struct {
	defs map[string]cue.Value
}

func compileSchema(ctx *cue.Context) (*Schema, error) {
	v := ctx.CompileBytes(schemaSource, cue.Filename(schemaFilename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError("schema", err)
	}

	s := &Schema{defs: make(map[string]cue.Value, len(schemaDefs))}
	for kind, name := range schemaDefs {
		def := v.LookupPath(cue.ParsePath(name))
		if !def.Exists() {
			return nil, fmt.Errorf("schema: missing definition %s", name)
		}
		s.defs[kind] = def
	}
	return s, nil
}

// Validate checks every OTIO object in the document and returns all
// violations. The root must be a Clip or a Timeline.
func (s *Schema) Validate(v cue.Value) []ValidationError {
	if err := v.Err(); err != nil {
		return []ValidationError{{Field: "document", Message: err.Error(), Code: ErrSchemaMismatch}}
	}

	kind := schemaKind(v)
	if kind != KindClip && kind != KindTimeline {
		return []ValidationError{{
			Field:   "OTIO_SCHEMA",
			Message: fmt.Sprintf("unsupported document type %q (want Clip or Timeline)", kind),
			Code:    ErrUnsupportedDocument,
			Line:    v.Pos().Line(),
		}}
	}

	var errs []ValidationError
	s.walk(v, "", &errs)
	return errs
}

func (s *Schema) walk(v cue.Value, path string, errs *[]ValidationError) {
	switch v.IncompleteKind() {
	case cue.StructKind:
		if def, ok := s.defs[schemaKind(v)]; ok {
			*errs = append(*errs, check(def, v, path)...)
		}
		iter, err := v.Fields()
		if err != nil {
			return
		}
		for iter.Next() {
			// Host metadata is free-form.
			if iter.Label() == "metadata" {
				continue
			}
			s.walk(iter.Value(), joinPath(path, iter.Label()), errs)
		}
	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return
		}
		for i := 0; iter.Next(); i++ {
			s.walk(iter.Value(), fmt.Sprintf("%s[%d]", path, i), errs)
		}
	}
}

func check(def, v cue.Value, path string) []ValidationError {
	err := def.Unify(v).Validate(cue.Concrete(true))
	if err == nil {
		return nil
	}

	var out []ValidationError
	for _, e := range cueerrors.Errors(err) {
		field := path
		if p := e.Path(); len(p) > 0 && !strings.HasPrefix(p[len(p)-1], "#") {
			field = joinPath(path, p[len(p)-1])
		}
		format, args := e.Msg()
		ve := ValidationError{
			Field:   field,
			Message: fmt.Sprintf(format, args...),
			Code:    ErrSchemaMismatch,
		}
		if pos := documentPos(cueerrors.Positions(e)); pos.IsValid() {
			ve.Line = pos.Line()
		}
		out = append(out, ve)
	}
	return out
}

func joinPath(base, field string) string {
	if base == "" {
		return field
	}
	return base + "." + field
}
