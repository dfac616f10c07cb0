package compiler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/otioremap/internal/editorial"
	"github.com/roach88/otioremap/internal/opentime"
	"github.com/roach88/otioremap/internal/otio"
)

func newCompiler(t *testing.T) *Compiler {
	t.Helper()
	c, err := New()
	require.NoError(t, err)
	return c
}

func TestCompileFile_SequenceClip(t *testing.T) {
	doc, err := newCompiler(t).CompileFile("testdata/sequence_clip.otio")
	require.NoError(t, err)
	require.Equal(t, KindClip, doc.Kind)

	clip := doc.Clip
	assert.Equal(t, "sh010_plate", clip.Name)
	require.NotNil(t, clip.SourceRange)
	assert.Equal(t, opentime.New(1011, 24), clip.SourceRange.StartTime)
	assert.Equal(t, opentime.New(10, 24), clip.SourceRange.Duration)
	assert.Equal(t, "sh010", clip.Metadata()["shot"])

	ref, ok := clip.MediaReference.(*otio.ImageSequenceReference)
	require.True(t, ok, "got %T", clip.MediaReference)
	assert.Equal(t, 1001, ref.StartFrame)
	assert.Equal(t, 4, ref.FrameZeroPadding)
	assert.Equal(t, "/plates/sh010/plate.1011.exr", ref.TargetURLForFrame(1011))

	require.Len(t, clip.Markers, 1)
	assert.Equal(t, "publish", clip.Markers[0].Name)
	assert.Equal(t, map[string]any{"family": "plate"}, clip.Markers[0].Meta["tag"])

	assert.True(t, editorial.IsClipFromMediaSequence(clip))
}

func TestCompileFile_RetimedMovie(t *testing.T) {
	doc, err := newCompiler(t).CompileFile("testdata/retimed_movie.otio")
	require.NoError(t, err)

	clip := doc.Clip
	require.Len(t, clip.Effects, 3)

	speed, ok := clip.Effects[0].(*otio.LinearTimeWarp)
	require.True(t, ok)
	assert.Equal(t, 2.0, speed.TimeScalar)

	warp, ok := clip.Effects[1].(*otio.TimeEffect)
	require.True(t, ok)
	assert.True(t, warp.IsTimeWarp())
	lookup, ok := warp.Lookup()
	require.True(t, ok)
	assert.Equal(t, []float64{0, 0.5, 1, 1.5, 2}, lookup)
	assert.Equal(t, 5, warp.Metadata()["length"])

	_, ok = clip.Effects[2].(*otio.GenericEffect)
	assert.True(t, ok)

	ref, ok := clip.MediaReference.(*otio.ExternalReference)
	require.True(t, ok)
	assert.Equal(t, "/media/sh020_ref.mov", ref.TargetURL)

	got, err := editorial.GetMediaRangeWithRetimes(clip, 10, 10)
	require.NoError(t, err)
	assert.Equal(t, 10.0, got.MediaIn)
	assert.Equal(t, 22.0, got.MediaOut)
	assert.Equal(t, 10, got.HandleStart)
	assert.Equal(t, 20, got.HandleEnd)
	assert.Equal(t, 2.0, got.Speed)
}

func TestCompileFile_Timeline(t *testing.T) {
	doc, err := newCompiler(t).CompileFile("testdata/timeline.otio")
	require.NoError(t, err)
	require.Equal(t, KindTimeline, doc.Kind)

	tl := doc.Timeline
	assert.Equal(t, "edit_v001", tl.Name)
	require.NotNil(t, tl.GlobalStartTime)
	assert.Equal(t, 24.0, tl.Rate())
	require.Len(t, tl.Tracks, 2)

	video := tl.TracksOfKind(otio.TrackKindVideo)
	require.Len(t, video, 1)
	// Gap, two clips; the transition takes no time.
	assert.Len(t, video[0].Children, 3)

	clips := tl.EachClip()
	require.Len(t, clips, 3)
	assert.Equal(t, "sh010", clips[0].Name)
	assert.Equal(t, "sh020", clips[1].Name)
	assert.Equal(t, "dialogue", clips[2].Name)

	r, err := clips[1].RangeInParent()
	require.NoError(t, err)
	assert.Equal(t, opentime.New(22, 24), r.StartTime)
	assert.Equal(t, opentime.New(20, 24), r.Duration)
}

func TestCompileFile_CUE(t *testing.T) {
	doc, err := newCompiler(t).CompileFile("testdata/clip.cue")
	require.NoError(t, err)

	clip := doc.Clip
	assert.Equal(t, "sh030", clip.Name)
	assert.True(t, editorial.IsClipFromMediaSequence(clip))

	in, out, err := editorial.RemapRangeOnFileSequence(clip, *clip.SourceRange)
	require.NoError(t, err)
	assert.Equal(t, 0, in)
	assert.Equal(t, 49, out)
}

func TestCompileFile_SchemaViolation(t *testing.T) {
	_, err := newCompiler(t).CompileFile("testdata/negative_rate.otio")
	require.Error(t, err)

	var se *SchemaError
	require.True(t, errors.As(err, &se))
	require.NotEmpty(t, se.Errors)
	assert.Equal(t, ErrSchemaMismatch, se.Errors[0].Code)
	assert.Contains(t, se.Errors[0].Field, "source_range.start_time")
}

func TestCompileFile_Missing(t *testing.T) {
	_, err := newCompiler(t).CompileFile("testdata/nope.otio")
	require.Error(t, err)
}

func TestLoadBytes_InvalidJSON(t *testing.T) {
	_, err := newCompiler(t).LoadBytes("broken.otio", []byte(`{"OTIO_SCHEMA": `))
	require.Error(t, err)

	var ce *CompileError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "json", ce.Field)
}

func TestCompileDocument_UnsupportedRoot(t *testing.T) {
	c := newCompiler(t)
	v, err := c.LoadBytes("track.json", []byte(`{"OTIO_SCHEMA": "Track.1", "kind": "Video", "children": []}`))
	require.NoError(t, err)

	_, err = CompileDocument(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported document type "Track"`)

	v, err = c.LoadBytes("plain.json", []byte(`{"name": "x"}`))
	require.NoError(t, err)
	_, err = CompileDocument(v)
	assert.ErrorContains(t, err, "no OTIO_SCHEMA")
}

func TestCompileDocument_NullFields(t *testing.T) {
	c := newCompiler(t)
	v, err := c.LoadBytes("clip.json", []byte(`{
		"OTIO_SCHEMA": "Clip.1",
		"name": null,
		"source_range": null,
		"media_reference": null,
		"effects": [],
		"metadata": {}
	}`))
	require.NoError(t, err)

	doc, err := CompileDocument(v)
	require.NoError(t, err)
	assert.Nil(t, doc.Clip.SourceRange)
	assert.Nil(t, doc.Clip.MediaReference)
	assert.Equal(t, "", doc.Clip.Name)
}

func TestCompileError_Format(t *testing.T) {
	err := &CompileError{Field: "rate", Message: "rate must be positive"}
	assert.Equal(t, "rate: rate must be positive", err.Error())
}
