package collect

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/otioremap/internal/editorial"
	"github.com/roach88/otioremap/internal/otio"
)

func testSettings() Settings {
	s := DefaultSettings()
	s.HandleStart = 10
	s.HandleEnd = 10
	return s
}

func TestCollectTimeline(t *testing.T) {
	c := NewShotCollector(testSettings(), WithLogger(discardLogger()))

	result, err := c.CollectTimeline(editTimeline())
	require.NoError(t, err)
	assert.Empty(t, result.Skipped)
	require.Len(t, result.Instances, 2)

	assert.Equal(t, "sh010", result.Instances[0].Name)
	assert.Equal(t, "sh020", result.Instances[1].Name)
	for _, inst := range result.Instances {
		assert.Equal(t, "V1", inst.Track)
	}
}

func TestCollect_Sequence(t *testing.T) {
	c := NewShotCollector(testSettings(), WithLogger(discardLogger()))
	result, err := c.CollectTimeline(editTimeline())
	require.NoError(t, err)

	inst := result.Instances[0]
	assert.Equal(t, 1011, inst.MediaIn)
	assert.Equal(t, 1020, inst.MediaOut)
	assert.Equal(t, 10, inst.HandleStart)
	assert.Equal(t, 10, inst.HandleEnd)
	assert.Equal(t, 1001, inst.FrameStart)
	assert.Equal(t, 1010, inst.FrameEnd)
	assert.Equal(t, 12, inst.ClipIn)
	assert.Equal(t, 21, inst.ClipOut)
	assert.Nil(t, inst.TrimmingRange)
	assert.Equal(t, []string{"clip"}, inst.Families)
	assert.Equal(t, "/plates/sh010", inst.OriginalDirname)

	assert.Equal(t, map[string]any{
		"fps":         24.0,
		"frameStart":  1001,
		"frameEnd":    1010,
		"handleStart": 10,
		"handleEnd":   10,
	}, inst.VersionData)

	require.Len(t, inst.Representations, 1)
	repre := inst.Representations[0]
	assert.Equal(t, "exr", repre.Name)
	assert.Equal(t, "exr", repre.Ext)
	assert.Equal(t, 991, repre.FrameStart)
	assert.Equal(t, 1020, repre.FrameEnd)
	assert.Equal(t, "plate.%04d.exr [1001-1030]", repre.Sequence)
	require.Len(t, repre.Files, 30)
	assert.Equal(t, "plate.1001.exr", repre.Files[0])
	assert.Equal(t, "plate.1030.exr", repre.Files[29])
	assert.Empty(t, repre.Tags)
}

func TestCollect_MovieIsTrimmed(t *testing.T) {
	c := NewShotCollector(testSettings(), WithLogger(discardLogger()))
	result, err := c.CollectTimeline(editTimeline())
	require.NoError(t, err)

	inst := result.Instances[1]
	assert.Equal(t, 10, inst.MediaIn)
	assert.Equal(t, 29, inst.MediaOut)
	assert.Equal(t, 22, inst.ClipIn)
	assert.Equal(t, 41, inst.ClipOut)
	assert.Equal(t, []string{"clip", TagTrim}, inst.Families)

	require.NotNil(t, inst.TrimmingRange)
	assert.Equal(t, 0.0, inst.TrimmingRange.StartTime.Value)
	assert.Equal(t, 40.0, inst.TrimmingRange.Duration.Value)
	assert.Equal(t, 24.0, inst.TrimmingRange.Duration.Rate)

	require.Len(t, inst.Representations, 1)
	repre := inst.Representations[0]
	assert.Equal(t, "mov", repre.Ext)
	assert.Equal(t, []string{"sh020.mov"}, repre.Files)
	assert.Equal(t, "/media", repre.StagingDir)
	assert.Equal(t, []string{TagTrim}, repre.Tags)
	assert.Empty(t, repre.Sequence)
}

func TestCollect_MovieUsedInFull(t *testing.T) {
	clip := movieClip()
	clip.SourceRange = clip.MediaReference.AvailableRange()

	inst, err := NewShotCollector(testSettings(), WithLogger(discardLogger())).CollectClip(clip)
	require.NoError(t, err)

	assert.Equal(t, 0, inst.HandleStart)
	assert.Equal(t, 0, inst.HandleEnd)
	assert.Nil(t, inst.TrimmingRange)
	assert.False(t, inst.HasFamily(TagTrim))
	assert.Empty(t, inst.Representations[0].Tags)
}

func TestCollect_Retimed(t *testing.T) {
	clip := movieClip(&otio.LinearTimeWarp{Effect: "LinearTimeWarp", TimeScalar: 2})
	clip.SourceRange = tr(86410, 20, 24)

	inst, err := NewShotCollector(testSettings(), WithLogger(discardLogger())).CollectClip(clip)
	require.NoError(t, err)

	assert.Equal(t, 10, inst.MediaIn)
	assert.Equal(t, 49, inst.MediaOut)
	assert.Equal(t, 10, inst.HandleStart)
	assert.Equal(t, 20, inst.HandleEnd)
	assert.Equal(t, 1001, inst.FrameStart)
	assert.Equal(t, 1040, inst.FrameEnd)

	vd := inst.VersionData
	assert.Equal(t, true, vd["retime"])
	assert.Equal(t, 2.0, vd["speed"])
	assert.Equal(t, []any{}, vd["timewarps"])
	assert.Equal(t, 24.0, vd["fps"])
	assert.Equal(t, 1040, vd["frameEnd"])
	// retimed handles come from the resolver, not the cut
	assert.Equal(t, 20, vd["handleEnd"])

	require.NotNil(t, inst.TrimmingRange)
	assert.Equal(t, 70.0, inst.TrimmingRange.Duration.Value)
}

func TestCollect_OriginalBasenameKeepsMediaFrames(t *testing.T) {
	s := testSettings()
	s.Template = "{root}/{folder}/publish/{product}/{version}/{originalBasename}.{ext}"

	inst, err := NewShotCollector(s, WithLogger(discardLogger())).CollectClip(plateClip())
	require.NoError(t, err)

	assert.Equal(t, 1011, inst.FrameStart)
	assert.Equal(t, 1020, inst.FrameEnd)
	assert.Equal(t, 1001, inst.Representations[0].FrameStart)
	assert.Equal(t, 1030, inst.Representations[0].FrameEnd)
}

func TestCollect_LegacySequencePath(t *testing.T) {
	clip := &otio.Clip{
		Name:        "sh030",
		SourceRange: tr(5, 10, 24),
		MediaReference: &otio.ExternalReference{
			TargetURL: "/plates/sh030/plate.%04d.exr",
			Available: tr(1001, 50, 24),
			Meta:      otio.Metadata{"padding": 4},
		},
	}

	inst, err := NewShotCollector(testSettings(), WithLogger(discardLogger())).CollectClip(clip)
	require.NoError(t, err)

	assert.Equal(t, 1006, inst.MediaIn)
	assert.Equal(t, 1015, inst.MediaOut)
	assert.Equal(t, 5, inst.HandleStart)
	assert.Equal(t, 10, inst.HandleEnd)

	repre := inst.Representations[0]
	assert.Equal(t, "/plates/sh030", repre.StagingDir)
	assert.Equal(t, "plate.%04d.exr [1001-1025]", repre.Sequence)
	assert.Len(t, repre.Files, 25)
}

func TestCollect_Review(t *testing.T) {
	s := testSettings()
	s.Review = true

	inst, err := NewShotCollector(s, WithLogger(discardLogger())).CollectClip(plateClip())
	require.NoError(t, err)

	assert.Equal(t, []string{"clip", TagReview}, inst.Families)
	require.Len(t, inst.Representations, 2)
	review := inst.Representations[1]
	assert.Equal(t, []string{TagDelete, TagReview}, review.Tags)
	assert.Equal(t, inst.Representations[0].Files, review.Files)
}

func TestCollect_SkipsUnresolvableClips(t *testing.T) {
	tl := editTimeline()
	offline := &otio.Clip{Name: "offline", SourceRange: tr(0, 10, 24), MediaReference: &otio.MissingReference{}}
	tl.Tracks[0].Append(offline)

	result, err := NewShotCollector(testSettings(), WithLogger(discardLogger())).CollectTimeline(tl)
	require.NoError(t, err)

	assert.Len(t, result.Instances, 2)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "offline", result.Skipped[0].Name)
	assert.Equal(t, "V1", result.Skipped[0].Track)
	assert.Equal(t, string(editorial.ErrCodeNoAvailableRange), result.Skipped[0].Code())
}

func TestSkippedClip_CodeOutsideEngine(t *testing.T) {
	skip := SkippedClip{Name: "sh030", Err: fmt.Errorf("clip %q: %w", "sh030", ErrNoTargetURL)}
	assert.Equal(t, ErrCodeCollect, skip.Code())
}

func TestCollect_UnsupportedTimeWarpIsSkipped(t *testing.T) {
	flat := make([]any, 20)
	reach := make([]any, 20)
	for i := range flat {
		flat[i], reach[i] = 0, 0
	}
	reach[19] = 50
	clip := movieClip(
		&otio.TimeEffect{Effect: "TimeWarp", Meta: otio.Metadata{"lookup": flat}},
		&otio.TimeEffect{Effect: "TimeWarp", Meta: otio.Metadata{"lookup": reach}},
	)

	_, err := NewShotCollector(testSettings(), WithLogger(discardLogger())).CollectClip(clip)
	require.Error(t, err)
	assert.True(t, editorial.IsUnsupportedTimeWarp(err))
}

func TestInstance_AsMap(t *testing.T) {
	result, err := NewShotCollector(testSettings(), WithLogger(discardLogger())).CollectTimeline(editTimeline())
	require.NoError(t, err)

	m := result.Instances[1].AsMap()
	assert.Equal(t, "sh020", m["name"])
	assert.Equal(t, []any{"clip", "trim"}, m["families"])
	assert.Equal(t, map[string]any{"start": 0.0, "duration": 40.0, "rate": 24.0}, m["trimmingRange"])
	assert.Equal(t, true, m["hasAudio"])

	_, ok := result.Instances[0].AsMap()["trimmingRange"]
	assert.False(t, ok)
}
