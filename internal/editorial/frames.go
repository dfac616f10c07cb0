package editorial

import (
	"math"

	"github.com/roach88/otioremap/internal/opentime"
)

// OTIORangeToFrameRange returns the discrete start frame and the start frame
// plus the discrete duration. The end is exclusive.
//
// The end is the sum of two truncations, not a truncation of start+duration;
// fractional ranges depend on that.
func OTIORangeToFrameRange(r opentime.TimeRange) (start, end int) {
	start = r.StartTime.ToFramesAt(r.StartTime.Rate)
	end = start + r.Duration.ToFramesAt(r.Duration.Rate)
	return start, end
}

// OTIORangeWithHandles grows r by handleStart frames before and handleEnd
// frames after, at r's own rate.
func OTIORangeWithHandles(r opentime.TimeRange, handleStart, handleEnd int) opentime.TimeRange {
	fps := r.StartTime.Rate
	start := r.StartTime.ToFramesAt(fps)
	duration := r.Duration.ToFramesAt(fps)

	return opentime.NewTimeRange(
		opentime.New(float64(start-handleStart), fps),
		opentime.New(float64(duration+handleStart+handleEnd), fps),
	)
}

// RangeFromFrames builds a range of duration frames starting at start.
func RangeFromFrames(start, duration, fps float64) opentime.TimeRange {
	return opentime.NewTimeRange(opentime.New(start, fps), opentime.New(duration, fps))
}

// FramesToSeconds converts a whole frame count to seconds.
func FramesToSeconds(frames, fps float64) float64 {
	return opentime.FromFrames(frames, fps).ToSeconds()
}

// FramesToTimecode converts a whole frame count to timecode, inferring drop
// frame from the rate.
func FramesToTimecode(frames, fps float64) (string, error) {
	return opentime.FromFrames(frames, fps).ToTimecode(fps, opentime.InferDropFrame(fps))
}

// TrimMediaRange re-expresses the source range values at the media rate
// without rescaling them.
func TrimMediaRange(media, source opentime.TimeRange) opentime.TimeRange {
	return opentime.NewTimeRange(
		opentime.New(source.StartTime.Value, media.StartTime.Rate),
		opentime.New(source.Duration.Value, media.Duration.Rate),
	)
}

// RoundRate rounds a rate to two decimals for comparison.
func RoundRate(rate float64) float64 {
	return math.Round(rate*100) / 100
}

// RatesMatch reports whether two rates are equal after rounding to two
// decimals.
func RatesMatch(a, b float64) bool {
	return RoundRate(a) == RoundRate(b)
}
