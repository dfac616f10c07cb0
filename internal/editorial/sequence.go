package editorial

import (
	"github.com/roach88/otioremap/internal/opentime"
	"github.com/roach88/otioremap/internal/otio"
)

// IsClipFromMediaSequence reports whether the clip's media is an image
// sequence: an ImageSequenceReference, or (older documents) any reference
// whose metadata carries a non-zero "padding".
func IsClipFromMediaSequence(clip *otio.Clip) bool {
	_, ok := sequenceStartFrame(clip)
	return ok
}

// sequenceStartFrame returns the first on-disk frame number of a sequence
// clip. Older documents have no start frame field; their available range
// starts at the first file number.
func sequenceStartFrame(clip *otio.Clip) (int, bool) {
	switch ref := clip.MediaReference.(type) {
	case nil:
		return 0, false
	case *otio.ImageSequenceReference:
		return ref.StartFrame, true
	default:
		if !ref.Metadata().Truthy("padding") {
			return 0, false
		}
		if ar := ref.AvailableRange(); ar != nil {
			return ar.StartTime.ToFrames(), true
		}
		return 0, true
	}
}

// hasRelativeSourceRange detects sequence clips written with a source range
// relative to the first file instead of absolute frame numbers: the media
// starts on the first file number but the source starts before it.
func hasRelativeSourceRange(available opentime.TimeRange, conformedSourceIn opentime.RationalTime, startFrame int) bool {
	return available.StartTime.ToFrames() == startFrame &&
		conformedSourceIn.ToFrames() < startFrame
}

// RemapRangeOnFileSequence maps r, a range in the clip's source time, onto
// the frame numbers present on disk. The returned out frame is inclusive.
//
// It fails when the clip is not an image sequence or when r's rate differs
// from the media rate after rounding both to two decimals.
func RemapRangeOnFileSequence(clip *otio.Clip, r opentime.TimeRange) (frameIn, frameOut int, err error) {
	startFrame, ok := sequenceStartFrame(clip)
	if !ok {
		return 0, 0, &RangeError{
			Code:    ErrCodeNotSequence,
			Message: "cannot map a range on a clip that is not a file sequence",
			Clip:    clip.Name,
		}
	}

	available, err := clip.AvailableRange()
	if err != nil {
		return 0, 0, &RangeError{Code: ErrCodeNoAvailableRange, Message: err.Error(), Clip: clip.Name, Err: err}
	}
	rate := available.StartTime.Rate

	if !RatesMatch(rate, r.StartTime.Rate) {
		return 0, 0, newRateMismatchError(clip.Name, rate, r.StartTime.Rate)
	}

	mediaIn := available.StartTime
	if source, err := clip.TrimmedRange(); err == nil {
		if hasRelativeSourceRange(available, source.StartTime.RescaledTo(rate), startFrame) {
			mediaIn = opentime.New(0, rate)
		}
	}

	srcOffsetIn := r.StartTime.Sub(mediaIn)
	frameIn = opentime.FromFrames(float64(startFrame+srcOffsetIn.ToFrames()), rate).ToFrames()

	// 10 frames starting at 1001 end on 1010.
	offsetDuration := max(0, r.Duration.ToFrames()-1)
	frameOut = opentime.FromFrames(float64(frameIn+offsetDuration), rate).ToFrames()

	return frameIn, frameOut, nil
}
