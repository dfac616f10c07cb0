package opentime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromFramesTruncates(t *testing.T) {
	assert.Equal(t, RationalTime{Value: 12, Rate: 24}, FromFrames(12.9, 24))
	assert.Equal(t, RationalTime{Value: -3, Rate: 24}, FromFrames(-3.5, 24))
}

func TestToFrames(t *testing.T) {
	assert.Equal(t, 86409, New(86409.6, 24).ToFrames())
	assert.Equal(t, 48, New(2, 1).ToFramesAt(24))
}

func TestRescaledTo(t *testing.T) {
	rt := New(90000, 25).RescaledTo(24)
	assert.InDelta(t, 86400.0, rt.Value, 1e-9)
	assert.Equal(t, 24.0, rt.Rate)

	same := New(10, 24).RescaledTo(24)
	assert.Equal(t, New(10, 24), same)
}

func TestAddSubMixedRates(t *testing.T) {
	// Result is expressed at the larger rate.
	sum := New(24, 24).Add(New(25, 25))
	assert.Equal(t, 25.0, sum.Rate)
	assert.InDelta(t, 50.0, sum.Value, 1e-9)

	diff := New(50, 25).Sub(New(24, 24))
	assert.Equal(t, 25.0, diff.Rate)
	assert.InDelta(t, 25.0, diff.Value, 1e-9)

	diff = New(24, 24).Sub(New(50, 25))
	assert.Equal(t, 25.0, diff.Rate)
	assert.InDelta(t, -25.0, diff.Value, 1e-9)
}

func TestCompareAcrossRates(t *testing.T) {
	assert.True(t, New(24, 24).Equal(New(25, 25)))
	assert.Equal(t, -1, New(23, 24).Compare(New(25, 25)))
	assert.Equal(t, 1, New(26, 25).Compare(New(24, 24)))
}

func TestSeconds(t *testing.T) {
	assert.InDelta(t, 2.0, New(48, 24).ToSeconds(), 1e-12)
	assert.Equal(t, New(50, 25), FromSeconds(2, 25))
}

func TestEndTimeInclusive(t *testing.T) {
	tests := []struct {
		name string
		r    TimeRange
		want RationalTime
	}{
		{"whole duration", NewTimeRange(New(86400, 24), New(100, 24)), New(86499, 24)},
		{"fractional duration", NewTimeRange(New(10, 24), New(5.5, 24)), New(15, 24)},
		{"single frame", NewTimeRange(New(10, 24), New(1, 24)), New(10, 24)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.r.EndTimeInclusive()
			assert.InDelta(t, tt.want.Value, got.Value, 1e-9)
			assert.Equal(t, tt.want.Rate, got.Rate)
		})
	}
}

func TestEndTimeExclusive(t *testing.T) {
	r := NewTimeRange(New(1000, 24), New(101, 24))
	assert.Equal(t, New(1101, 24), r.EndTimeExclusive())
	assert.True(t, r.Contains(New(1100, 24)))
	assert.False(t, r.Contains(New(1101, 24)))
}

func TestRangeFromStartEnd(t *testing.T) {
	r := RangeFromStartEnd(New(10, 24), New(34, 24))
	assert.Equal(t, New(24, 24), r.Duration)
}

func TestToTimecode(t *testing.T) {
	tc, err := New(86400, 24).ToTimecode(24, false)
	require.NoError(t, err)
	assert.Equal(t, "01:00:00:00", tc)

	tc, err = New(1001, 25).ToTimecode(25, false)
	require.NoError(t, err)
	assert.Equal(t, "00:00:40:01", tc)

	// First drop at minute one: frame 1800 is 00:01:00;02.
	tc, err = New(1800, 29.97).ToTimecode(29.97, true)
	require.NoError(t, err)
	assert.Equal(t, "00:01:00;02", tc)

	_, err = New(-1, 24).ToTimecode(24, false)
	assert.ErrorIs(t, err, ErrNegativeTimecode)
}

func TestInferDropFrame(t *testing.T) {
	assert.True(t, InferDropFrame(29.97))
	assert.True(t, InferDropFrame(59.94))
	assert.False(t, InferDropFrame(23.976))
	assert.False(t, InferDropFrame(30))
}
