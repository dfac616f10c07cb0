package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cuejson "cuelang.org/go/encoding/json"

	"github.com/roach88/otioremap/internal/opentime"
	"github.com/roach88/otioremap/internal/otio"
)

// Document kinds.
const (
	KindClip     = "Clip"
	KindTimeline = "Timeline"
)

// Document is a compiled interchange document. Exactly one of Clip and
// Timeline is set, according to Kind.
type Document struct {
	Kind     string
	Clip     *otio.Clip
	Timeline *otio.Timeline
}

// Compiler loads interchange documents through a single CUE context so
// documents and the embedded schema can be unified.
type Compiler struct {
	ctx    *cue.Context
	schema *Schema
}

// New creates a compiler with the embedded schema.
func New() (*Compiler, error) {
	ctx := cuecontext.New()
	schema, err := compileSchema(ctx)
	if err != nil {
		return nil, err
	}
	return &Compiler{ctx: ctx, schema: schema}, nil
}

// Schema returns the embedded document schema.
func (c *Compiler) Schema() *Schema {
	return c.schema
}

// LoadFile reads a document as a CUE value. Files ending in .cue are
// compiled as CUE; anything else (.otio, .json) is parsed as JSON.
func (c *Compiler) LoadFile(path string) (cue.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return cue.Value{}, fmt.Errorf("read document: %w", err)
	}
	return c.LoadBytes(path, data)
}

// LoadBytes is LoadFile for in-memory content; name selects the format and
// is used in error positions.
func (c *Compiler) LoadBytes(name string, data []byte) (cue.Value, error) {
	var v cue.Value
	if strings.EqualFold(filepath.Ext(name), ".cue") {
		v = c.ctx.CompileBytes(data, cue.Filename(name))
	} else {
		expr, err := cuejson.Extract(name, data)
		if err != nil {
			return cue.Value{}, formatCUEError("json", err)
		}
		v = c.ctx.BuildExpr(expr)
	}
	if err := v.Err(); err != nil {
		return cue.Value{}, formatCUEError("cue", err)
	}
	return v, nil
}

// CompileFile loads, schema-checks and compiles a document.
func (c *Compiler) CompileFile(path string) (*Document, error) {
	v, err := c.LoadFile(path)
	if err != nil {
		return nil, err
	}
	if errs := c.schema.Validate(v); len(errs) > 0 {
		return nil, &SchemaError{Errors: errs}
	}
	return CompileDocument(v)
}

// CompileDocument converts a CUE value holding an OTIO_SCHEMA-tagged clip
// or timeline into the object model.
func CompileDocument(v cue.Value) (*Document, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError("cue", err)
	}

	switch kind := schemaKind(v); kind {
	case KindClip:
		clip, err := compileClip(v)
		if err != nil {
			return nil, err
		}
		return &Document{Kind: KindClip, Clip: clip}, nil
	case KindTimeline:
		tl, err := compileTimeline(v)
		if err != nil {
			return nil, err
		}
		return &Document{Kind: KindTimeline, Timeline: tl}, nil
	case "":
		return nil, &CompileError{Field: "OTIO_SCHEMA", Message: "document has no OTIO_SCHEMA", Pos: v.Pos()}
	default:
		return nil, &CompileError{
			Field:   "OTIO_SCHEMA",
			Message: fmt.Sprintf("unsupported document type %q (want Clip or Timeline)", kind),
			Pos:     v.Pos(),
		}
	}
}

// schemaKind returns the schema name without its version:
// "Clip.2" -> "Clip".
func schemaKind(v cue.Value) string {
	s, err := v.LookupPath(cue.ParsePath("OTIO_SCHEMA")).String()
	if err != nil {
		return ""
	}
	kind, _, _ := strings.Cut(s, ".")
	return kind
}

// lookup returns the field, treating null like absence.
func lookup(v cue.Value, field string) (cue.Value, bool) {
	f := v.LookupPath(cue.MakePath(cue.Str(field)))
	if !f.Exists() || f.IncompleteKind() == cue.NullKind {
		return f, false
	}
	return f, true
}

func stringField(v cue.Value, field string) (string, error) {
	f, ok := lookup(v, field)
	if !ok {
		return "", nil
	}
	s, err := f.String()
	if err != nil {
		return "", formatCUEError(field, err)
	}
	return s, nil
}

func floatField(v cue.Value, field string, def float64) (float64, error) {
	f, ok := lookup(v, field)
	if !ok {
		return def, nil
	}
	n, err := f.Float64()
	if err != nil {
		return 0, formatCUEError(field, err)
	}
	return n, nil
}

// intField accepts integral floats, which JSON writers commonly emit.
func intField(v cue.Value, field string, def int) (int, error) {
	f, ok := lookup(v, field)
	if !ok {
		return def, nil
	}
	if n, err := f.Int64(); err == nil {
		return int(n), nil
	}
	n, err := f.Float64()
	if err != nil {
		return 0, formatCUEError(field, err)
	}
	return int(n), nil
}

func compileRationalTime(v cue.Value) (opentime.RationalTime, error) {
	value, err := floatField(v, "value", 0)
	if err != nil {
		return opentime.RationalTime{}, err
	}
	rate, err := floatField(v, "rate", 0)
	if err != nil {
		return opentime.RationalTime{}, err
	}
	if rate <= 0 {
		return opentime.RationalTime{}, &CompileError{Field: "rate", Message: "rate must be positive", Pos: v.Pos()}
	}
	return opentime.New(value, rate), nil
}

func compileTimeRange(v cue.Value) (opentime.TimeRange, error) {
	startVal, ok := lookup(v, "start_time")
	if !ok {
		return opentime.TimeRange{}, &CompileError{Field: "start_time", Message: "start_time is required", Pos: v.Pos()}
	}
	durVal, ok := lookup(v, "duration")
	if !ok {
		return opentime.TimeRange{}, &CompileError{Field: "duration", Message: "duration is required", Pos: v.Pos()}
	}
	start, err := compileRationalTime(startVal)
	if err != nil {
		return opentime.TimeRange{}, err
	}
	dur, err := compileRationalTime(durVal)
	if err != nil {
		return opentime.TimeRange{}, err
	}
	return opentime.NewTimeRange(start, dur), nil
}

// optionalTimeRange compiles field when present and not null.
func optionalTimeRange(v cue.Value, field string) (*opentime.TimeRange, error) {
	f, ok := lookup(v, field)
	if !ok {
		return nil, nil
	}
	r, err := compileTimeRange(f)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// compileMetadata decodes a metadata struct into plain Go values:
// numbers become int or float64, lists []any, structs map[string]any.
func compileMetadata(v cue.Value) (otio.Metadata, error) {
	f, ok := lookup(v, "metadata")
	if !ok {
		return otio.Metadata{}, nil
	}
	decoded, err := decodeAny(f)
	if err != nil {
		return nil, err
	}
	m, ok := decoded.(map[string]any)
	if !ok {
		return nil, &CompileError{Field: "metadata", Message: "metadata must be an object", Pos: f.Pos()}
	}
	return otio.Metadata(m), nil
}

func decodeAny(v cue.Value) (any, error) {
	switch v.IncompleteKind() {
	case cue.NullKind:
		return nil, nil
	case cue.BoolKind:
		b, err := v.Bool()
		return b, formatCUEError("metadata", err)
	case cue.StringKind:
		s, err := v.String()
		return s, formatCUEError("metadata", err)
	case cue.IntKind:
		n, err := v.Int64()
		if err != nil {
			f, ferr := v.Float64()
			return f, formatCUEError("metadata", ferr)
		}
		return int(n), nil
	case cue.FloatKind, cue.NumberKind:
		f, err := v.Float64()
		return f, formatCUEError("metadata", err)
	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return nil, formatCUEError("metadata", err)
		}
		out := []any{}
		for iter.Next() {
			item, err := decodeAny(iter.Value())
			if err != nil {
				return nil, err
			}
			out = append(out, item)
		}
		return out, nil
	case cue.StructKind:
		iter, err := v.Fields()
		if err != nil {
			return nil, formatCUEError("metadata", err)
		}
		out := map[string]any{}
		for iter.Next() {
			item, err := decodeAny(iter.Value())
			if err != nil {
				return nil, err
			}
			out[iter.Label()] = item
		}
		return out, nil
	default:
		return nil, &CompileError{
			Field:   "metadata",
			Message: fmt.Sprintf("unsupported value kind: %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}
}

func compileMediaReference(v cue.Value) (otio.MediaReference, error) {
	name, err := stringField(v, "name")
	if err != nil {
		return nil, err
	}
	available, err := optionalTimeRange(v, "available_range")
	if err != nil {
		return nil, err
	}
	meta, err := compileMetadata(v)
	if err != nil {
		return nil, err
	}

	switch kind := schemaKind(v); kind {
	case "ImageSequenceReference":
		ref := &otio.ImageSequenceReference{Name: name, Available: available, Meta: meta}
		if ref.TargetURLBase, err = stringField(v, "target_url_base"); err != nil {
			return nil, err
		}
		if ref.NamePrefix, err = stringField(v, "name_prefix"); err != nil {
			return nil, err
		}
		if ref.NameSuffix, err = stringField(v, "name_suffix"); err != nil {
			return nil, err
		}
		if ref.StartFrame, err = intField(v, "start_frame", 1); err != nil {
			return nil, err
		}
		if ref.FrameStep, err = intField(v, "frame_step", 1); err != nil {
			return nil, err
		}
		if ref.FrameZeroPadding, err = intField(v, "frame_zero_padding", 0); err != nil {
			return nil, err
		}
		if ref.Rate, err = floatField(v, "rate", 1); err != nil {
			return nil, err
		}
		return ref, nil
	case "ExternalReference":
		url, err := stringField(v, "target_url")
		if err != nil {
			return nil, err
		}
		return &otio.ExternalReference{Name: name, TargetURL: url, Available: available, Meta: meta}, nil
	case "MissingReference", "GeneratorReference":
		return &otio.MissingReference{Name: name, Available: available, Meta: meta}, nil
	default:
		return nil, &CompileError{
			Field:   "media_reference",
			Message: fmt.Sprintf("unsupported media reference %q", kind),
			Pos:     v.Pos(),
		}
	}
}

// activeMediaReference finds the clip's media. Clip.2 documents keep a map
// of references keyed by active_media_reference_key; Clip.1 documents
// carry a single media_reference.
func activeMediaReference(v cue.Value) (cue.Value, bool, error) {
	if ref, ok := lookup(v, "media_reference"); ok {
		return ref, true, nil
	}
	refs, ok := lookup(v, "media_references")
	if !ok {
		return cue.Value{}, false, nil
	}
	key, err := stringField(v, "active_media_reference_key")
	if err != nil {
		return cue.Value{}, false, err
	}
	if key == "" {
		key = "DEFAULT_MEDIA"
	}
	if ref, ok := lookup(refs, key); ok {
		return ref, true, nil
	}
	return cue.Value{}, false, nil
}

func compileEffect(v cue.Value) (otio.Effect, error) {
	name, err := stringField(v, "name")
	if err != nil {
		return nil, err
	}
	effectName, err := stringField(v, "effect_name")
	if err != nil {
		return nil, err
	}
	meta, err := compileMetadata(v)
	if err != nil {
		return nil, err
	}

	switch schemaKind(v) {
	case "LinearTimeWarp":
		scalar, err := floatField(v, "time_scalar", 1)
		if err != nil {
			return nil, err
		}
		return &otio.LinearTimeWarp{InstanceName: name, Effect: effectName, TimeScalar: scalar, Meta: meta}, nil
	case "FreezeFrame":
		return &otio.FreezeFrame{InstanceName: name, Meta: meta}, nil
	case "TimeEffect":
		return &otio.TimeEffect{InstanceName: name, Effect: effectName, Meta: meta}, nil
	default:
		return &otio.GenericEffect{InstanceName: name, Effect: effectName, Meta: meta}, nil
	}
}

func compileMarker(v cue.Value) (otio.Marker, error) {
	var m otio.Marker
	var err error
	if m.Name, err = stringField(v, "name"); err != nil {
		return m, err
	}
	if m.Color, err = stringField(v, "color"); err != nil {
		return m, err
	}
	r, err := optionalTimeRange(v, "marked_range")
	if err != nil {
		return m, err
	}
	if r != nil {
		m.MarkedRange = *r
	}
	m.Meta, err = compileMetadata(v)
	return m, err
}

func compileClip(v cue.Value) (*otio.Clip, error) {
	clip := &otio.Clip{}
	var err error

	if clip.Name, err = stringField(v, "name"); err != nil {
		return nil, err
	}
	if clip.SourceRange, err = optionalTimeRange(v, "source_range"); err != nil {
		return nil, err
	}
	if clip.Meta, err = compileMetadata(v); err != nil {
		return nil, err
	}

	refVal, ok, err := activeMediaReference(v)
	if err != nil {
		return nil, err
	}
	if ok {
		if clip.MediaReference, err = compileMediaReference(refVal); err != nil {
			return nil, err
		}
	}

	if err := eachListItem(v, "effects", func(item cue.Value) error {
		effect, err := compileEffect(item)
		if err != nil {
			return err
		}
		clip.Effects = append(clip.Effects, effect)
		return nil
	}); err != nil {
		return nil, err
	}

	if err := eachListItem(v, "markers", func(item cue.Value) error {
		marker, err := compileMarker(item)
		if err != nil {
			return err
		}
		clip.Markers = append(clip.Markers, marker)
		return nil
	}); err != nil {
		return nil, err
	}

	return clip, nil
}

func compileTrack(v cue.Value) (*otio.Track, error) {
	name, err := stringField(v, "name")
	if err != nil {
		return nil, err
	}
	kind, err := stringField(v, "kind")
	if err != nil {
		return nil, err
	}
	if kind == "" {
		kind = otio.TrackKindVideo
	}
	track := otio.NewTrack(name, kind)
	if track.Meta, err = compileMetadata(v); err != nil {
		return nil, err
	}

	err = eachListItem(v, "children", func(item cue.Value) error {
		switch schemaKind(item) {
		case "Clip":
			clip, err := compileClip(item)
			if err != nil {
				return err
			}
			track.Append(clip)
		case "Gap":
			gapName, err := stringField(item, "name")
			if err != nil {
				return err
			}
			r, err := optionalTimeRange(item, "source_range")
			if err != nil {
				return err
			}
			gap := &otio.Gap{Name: gapName}
			if r != nil {
				gap.SourceRange = *r
			}
			track.Append(gap)
		}
		// Transitions take no time on the track.
		return nil
	})
	if err != nil {
		return nil, err
	}
	return track, nil
}

func compileTimeline(v cue.Value) (*otio.Timeline, error) {
	tl := &otio.Timeline{}
	var err error

	if tl.Name, err = stringField(v, "name"); err != nil {
		return nil, err
	}
	if tl.Meta, err = compileMetadata(v); err != nil {
		return nil, err
	}
	if gst, ok := lookup(v, "global_start_time"); ok {
		rt, err := compileRationalTime(gst)
		if err != nil {
			return nil, err
		}
		tl.GlobalStartTime = &rt
	}

	stack, ok := lookup(v, "tracks")
	if !ok {
		return tl, nil
	}
	err = eachListItem(stack, "children", func(item cue.Value) error {
		if schemaKind(item) != "Track" {
			return nil
		}
		track, err := compileTrack(item)
		if err != nil {
			return err
		}
		tl.Tracks = append(tl.Tracks, track)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tl, nil
}

func eachListItem(v cue.Value, field string, fn func(cue.Value) error) error {
	f, ok := lookup(v, field)
	if !ok {
		return nil
	}
	iter, err := f.List()
	if err != nil {
		return formatCUEError(field, err)
	}
	for iter.Next() {
		if err := fn(iter.Value()); err != nil {
			return err
		}
	}
	return nil
}
