package editorial

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/otioremap/internal/otio"
)

func TestGetMediaRangeWithRetimes_NoRetime(t *testing.T) {
	clip := movieClip(tr(10, 20, 24), tr(0, 100, 24))

	got, err := GetMediaRangeWithRetimes(clip, 5, 5)
	require.NoError(t, err)

	assert.Equal(t, MediaRange{MediaIn: 10, MediaOut: 29, HandleStart: 5, HandleEnd: 5, Speed: 1}, got)
	assert.Nil(t, got.VersionData)
	assert.False(t, got.IsRetimed())
	assert.Equal(t, float64(20-1), got.MediaOut-got.MediaIn)
	assert.NotContains(t, got.AsMap(), "versionData")
}

func TestGetMediaRangeWithRetimes_ZeroBasedForMovies(t *testing.T) {
	// Media with embedded timecode starting at 01:00:00:00.
	clip := movieClip(tr(86410, 20, 24), tr(86400, 100, 24))

	got, err := GetMediaRangeWithRetimes(clip, 5, 5)
	require.NoError(t, err)
	assert.Equal(t, 10.0, got.MediaIn)
	assert.Equal(t, 29.0, got.MediaOut)
}

func TestGetMediaRangeWithRetimes_RateConformed(t *testing.T) {
	// 25fps source over 24fps media with embedded timecode.
	clip := movieClip(tr(90032, 44, 25), tr(86400, 100, 24))

	got, err := GetMediaRangeWithRetimes(clip, 10, 10)
	require.NoError(t, err)

	assert.InDelta(t, 30.72, got.MediaIn, 1e-6)
	assert.InDelta(t, 71.96, got.MediaOut, 1e-6)
	assert.Equal(t, 10, got.HandleStart)
	assert.Equal(t, 10, got.HandleEnd)
	assert.Equal(t, 1.0, got.Speed)
	assert.Nil(t, got.VersionData)
}

func TestGetMediaRangeWithRetimes_HandleClamping(t *testing.T) {
	clip := movieClip(tr(3, 95, 24), tr(0, 100, 24))

	got, err := GetMediaRangeWithRetimes(clip, 10, 10)
	require.NoError(t, err)

	assert.Equal(t, 3.0, got.MediaIn)
	assert.Equal(t, 97.0, got.MediaOut)
	assert.Equal(t, 3, got.HandleStart)
	assert.Equal(t, 2, got.HandleEnd)
}

func TestGetMediaRangeWithRetimes_HandlesNeverNegative(t *testing.T) {
	// Source reaches past both ends of the media.
	clip := movieClip(tr(-2, 110, 24), tr(0, 100, 24))

	got, err := GetMediaRangeWithRetimes(clip, 10, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, got.HandleStart)
	assert.Equal(t, 0, got.HandleEnd)
}

func TestGetMediaRangeWithRetimes_FreezeFrame(t *testing.T) {
	clip := movieClip(tr(10, 20, 24), tr(0, 100, 24), &otio.FreezeFrame{InstanceName: "hold"})

	got, err := GetMediaRangeWithRetimes(clip, 10, 10)
	require.NoError(t, err)

	assert.Equal(t, 0.0, got.Speed)
	assert.Equal(t, 0, got.HandleStart)
	assert.Equal(t, 0, got.HandleEnd)
	assert.Equal(t, 10.0, got.MediaIn)
	assert.Equal(t, 10.0, got.MediaOut)

	require.NotNil(t, got.VersionData)
	assert.True(t, got.VersionData.Retime)
	assert.Equal(t, 0.0, got.VersionData.Speed)
	assert.NotNil(t, got.VersionData.TimeWarps)
	assert.Empty(t, got.VersionData.TimeWarps)
}

func TestGetMediaRangeWithRetimes_Speed(t *testing.T) {
	clip := movieClip(tr(10, 20, 24), tr(0, 100, 24), &otio.LinearTimeWarp{TimeScalar: 2})

	got, err := GetMediaRangeWithRetimes(clip, 10, 10)
	require.NoError(t, err)

	assert.Equal(t, 10.0, got.MediaIn)
	assert.Equal(t, 49.0, got.MediaOut)
	assert.Equal(t, 10, got.HandleStart) // 20 requested, 10 available
	assert.Equal(t, 20, got.HandleEnd)
	assert.Equal(t, 2.0, got.Speed)

	require.NotNil(t, got.VersionData)
	assert.Equal(t, 10, got.VersionData.HandleStart)
	assert.Equal(t, 20, got.VersionData.HandleEnd)
}

func TestGetMediaRangeWithRetimes_SlowMotionRoundsHandlesUp(t *testing.T) {
	clip := movieClip(tr(10, 20, 24), tr(0, 100, 24), &otio.LinearTimeWarp{TimeScalar: 0.5})

	got, err := GetMediaRangeWithRetimes(clip, 5, 5)
	require.NoError(t, err)

	assert.Equal(t, 10.0, got.MediaIn)
	assert.Equal(t, 19.0, got.MediaOut)
	assert.Equal(t, 3, got.HandleStart) // ceil(2.5)
	assert.Equal(t, 3, got.HandleEnd)
}

func TestGetMediaRangeWithRetimes_ReverseSwapsHandles(t *testing.T) {
	clip := movieClip(tr(10, 20, 24), tr(0, 100, 24), &otio.LinearTimeWarp{TimeScalar: -1})

	got, err := GetMediaRangeWithRetimes(clip, 5, 8)
	require.NoError(t, err)

	assert.Equal(t, 8, got.HandleStart)
	assert.Equal(t, 5, got.HandleEnd)
	assert.Equal(t, -1.0, got.Speed)
	require.NotNil(t, got.VersionData)
}

func TestGetMediaRangeWithRetimes_Sequence(t *testing.T) {
	clip := sequenceClip(1001, tr(1011, 10, 24), tr(1001, 50, 24))

	got, err := GetMediaRangeWithRetimes(clip, 10, 10)
	require.NoError(t, err)

	assert.Equal(t, MediaRange{MediaIn: 1011, MediaOut: 1020, HandleStart: 10, HandleEnd: 10, Speed: 1}, got)
}

func TestGetMediaRangeWithRetimes_SequenceFullRange(t *testing.T) {
	available := tr(1000, 50, 24)
	clip := sequenceClip(1000, available, available)

	got, err := GetMediaRangeWithRetimes(clip, 10, 10)
	require.NoError(t, err)

	assert.Equal(t, 1000.0, got.MediaIn)
	assert.Equal(t, 1049.0, got.MediaOut)
	assert.Equal(t, 0, got.HandleStart)
	assert.Equal(t, 0, got.HandleEnd)
}

func TestGetMediaRangeWithRetimes_SequenceSpeed(t *testing.T) {
	clip := sequenceClip(1001, tr(1011, 10, 24), tr(1001, 50, 24), &otio.LinearTimeWarp{TimeScalar: 2})

	got, err := GetMediaRangeWithRetimes(clip, 4, 4)
	require.NoError(t, err)

	assert.Equal(t, 1011.0, got.MediaIn)
	assert.Equal(t, 1030.0, got.MediaOut)
	assert.Equal(t, 8, got.HandleStart)
	assert.Equal(t, 8, got.HandleEnd)
}

func TestGetMediaRangeWithRetimes_SequenceConformsSourceRate(t *testing.T) {
	// An edit at 23.976 over a 24 fps plate. The conformed source start
	// lands after the first file, so the source range is absolute.
	clip := sequenceClip(883750, tr(883159, 108, 23.976), tr(883750, 755, 24))

	got, err := GetMediaRangeWithRetimes(clip, 0, 0)
	require.NoError(t, err)

	assert.Equal(t, MediaRange{MediaIn: 884043, MediaOut: 884150, HandleStart: 0, HandleEnd: 0, Speed: 1}, got)
}

func TestGetMediaRangeWithRetimes_RelativeSequence(t *testing.T) {
	clip := legacySequenceClip(tr(5, 10, 24), tr(1001, 50, 24))

	got, err := GetMediaRangeWithRetimes(clip, 10, 10)
	require.NoError(t, err)

	assert.Equal(t, 1006.0, got.MediaIn)
	assert.Equal(t, 1015.0, got.MediaOut)
	assert.Equal(t, 5, got.HandleStart)
	assert.Equal(t, 10, got.HandleEnd)
}

func TestGetMediaRangeWithRetimes_TimeWarp(t *testing.T) {
	clip := movieClip(tr(10, 5, 24), tr(0, 100, 24), timeWarp("warp1", 0, 0.5, 1, 1.5, 2))

	got, err := GetMediaRangeWithRetimes(clip, 5, 5)
	require.NoError(t, err)

	// Frames 10 12 13 14 16: halves round to even.
	assert.Equal(t, 10.0, got.MediaIn)
	assert.Equal(t, 16.0, got.MediaOut)
	assert.Equal(t, 1.0, got.Speed)

	require.NotNil(t, got.VersionData)
	require.Len(t, got.VersionData.TimeWarps, 1)
	tw := got.VersionData.TimeWarps[0]
	assert.Equal(t, "warp1", tw.Name)
	assert.Equal(t, []float64{0, 0.5, 1, 1.5, 2}, tw.Lookup)

	m := tw.AsMap()
	assert.Equal(t, "TimeWarp", m["Class"])
	assert.Equal(t, "warp1", m["name"])
	assert.Equal(t, "linear", m["interpolation"])
	assert.Equal(t, []any{0.0, 0.5, 1.0, 1.5, 2.0}, m["lookup"])
}

func TestGetMediaRangeWithRetimes_TimeWarpShiftsLookup(t *testing.T) {
	clip := movieClip(tr(10, 3, 24), tr(0, 100, 24), timeWarp("warp1", -2, 0, 0))

	got, err := GetMediaRangeWithRetimes(clip, 0, 0)
	require.NoError(t, err)

	// Frames 8 11 12. The plate now starts at 8, so the curve is offset
	// by 2 to replay the same frames.
	assert.Equal(t, 8.0, got.MediaIn)
	assert.Equal(t, 12.0, got.MediaOut)
	require.NotNil(t, got.VersionData)
	assert.Equal(t, []float64{0, 2, 2}, got.VersionData.TimeWarps[0].Lookup)
}

func TestGetMediaRangeWithRetimes_TimeWarpClampedToMedia(t *testing.T) {
	clip := movieClip(tr(1, 3, 24), tr(0, 100, 24), timeWarp("warp1", -5, 0, 0))

	got, err := GetMediaRangeWithRetimes(clip, 0, 0)
	require.NoError(t, err)

	// Frame 1-5 falls before the media.
	assert.Equal(t, 0.0, got.MediaIn)
	assert.Equal(t, 3.0, got.MediaOut)
	assert.Equal(t, []float64{-4, 1, 1}, got.VersionData.TimeWarps[0].Lookup)
}

func TestGetMediaRangeWithRetimes_ChainedTimeWarps(t *testing.T) {
	clip := movieClip(tr(10, 3, 24), tr(0, 100, 24),
		timeWarp("warp1", 0, 0, 0),
		timeWarp("warp2", 0, 1, -1),
	)

	got, err := GetMediaRangeWithRetimes(clip, 0, 0)
	require.NoError(t, err)

	// warp2 picks frames 10 12 12 from warp1's 10 11 12.
	assert.Equal(t, 10.0, got.MediaIn)
	assert.Equal(t, 12.0, got.MediaOut)
	require.NotNil(t, got.VersionData)
	assert.Len(t, got.VersionData.TimeWarps, 2)
	assert.Equal(t, "warp2", got.VersionData.TimeWarps[1].Name)
}

func TestGetMediaRangeWithRetimes_ChainedTimeWarpsOutsideRange(t *testing.T) {
	clip := movieClip(tr(10, 3, 24), tr(0, 100, 24),
		timeWarp("warp1", 0, 0, 0),
		timeWarp("warp2", 0, 0, 5),
	)

	_, err := GetMediaRangeWithRetimes(clip, 0, 0)
	require.Error(t, err)
	assert.True(t, IsUnsupportedTimeWarp(err))
	assert.False(t, IsInvalidInput(err))
}

func TestGetMediaRangeWithRetimes_TimeWarpShorterThanShot(t *testing.T) {
	clip := movieClip(tr(10, 3, 24), tr(0, 100, 24), timeWarp("warp1", 0, 1))

	_, err := GetMediaRangeWithRetimes(clip, 0, 0)
	require.Error(t, err)
	assert.True(t, IsUnsupportedTimeWarp(err))

	var re *RangeError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, "2", re.Details["length"])
	assert.Equal(t, "3", re.Details["frames"])
}

func TestGetMediaRangeWithRetimes_TimeWarpSingleValue(t *testing.T) {
	clip := movieClip(tr(10, 3, 24), tr(0, 100, 24), timeWarp("hold", 2))

	got, err := GetMediaRangeWithRetimes(clip, 0, 0)
	require.NoError(t, err)

	// Every frame is offset by 2: 12 13 14.
	assert.Equal(t, 12.0, got.MediaIn)
	assert.Equal(t, 14.0, got.MediaOut)
	require.NotNil(t, got.VersionData)
	assert.Equal(t, []float64{0}, got.VersionData.TimeWarps[0].Lookup)
}

func TestGetMediaRangeWithRetimes_IgnoresEmptyLookups(t *testing.T) {
	clip := movieClip(tr(10, 20, 24), tr(0, 100, 24),
		timeWarp("empty"),
		&otio.TimeEffect{InstanceName: "blur", Effect: "Blur", Meta: otio.Metadata{"lookup": []any{1.0}}},
		&otio.GenericEffect{InstanceName: "grade", Effect: "ColorCorrect"},
	)

	got, err := GetMediaRangeWithRetimes(clip, 5, 5)
	require.NoError(t, err)
	assert.Nil(t, got.VersionData)
}

func TestGetMediaRangeWithRetimes_LastSpeedWins(t *testing.T) {
	clip := movieClip(tr(10, 20, 24), tr(0, 100, 24),
		&otio.FreezeFrame{},
		&otio.LinearTimeWarp{TimeScalar: 2},
	)

	got, err := GetMediaRangeWithRetimes(clip, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 2.0, got.Speed)
}

func TestGetMediaRangeWithRetimes_NoAvailableRange(t *testing.T) {
	clip := &otio.Clip{
		Name:           "offline",
		SourceRange:    ptr(tr(0, 10, 24)),
		MediaReference: &otio.MissingReference{},
	}

	_, err := GetMediaRangeWithRetimes(clip, 0, 0)
	require.Error(t, err)
	assert.True(t, IsInvalidInput(err))
	assert.ErrorIs(t, err, otio.ErrNoAvailableRange)
}

func TestMediaRange_JSON(t *testing.T) {
	clip := movieClip(tr(10, 5, 24), tr(0, 100, 24), timeWarp("warp1", 0, 0, 0, 0, 0))

	got, err := GetMediaRangeWithRetimes(clip, 0, 0)
	require.NoError(t, err)

	data, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"mediaIn": 10, "mediaOut": 14, "handleStart": 0, "handleEnd": 0, "speed": 1,
		"versionData": {
			"retime": true, "speed": 1, "handleStart": 0, "handleEnd": 0,
			"timewarps": [{"Class": "TimeWarp", "name": "warp1", "interpolation": "linear", "lookup": [0, 0, 0, 0, 0]}]
		}
	}`, string(data))
}
