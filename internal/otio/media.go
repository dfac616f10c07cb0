package otio

import (
	"fmt"
	"strings"

	"github.com/roach88/otioremap/internal/opentime"
)

// MediaReference is a sealed interface for the media a clip points at.
type MediaReference interface {
	// AvailableRange is the full extent of the media at its native rate,
	// or nil when the reference does not know it.
	AvailableRange() *opentime.TimeRange

	// Metadata returns the reference metadata (never nil).
	Metadata() Metadata

	mediaReference()
}

// ImageSequenceReference points at numbered image files on disk.
//
// The URL of frame N is TargetURLBase + NamePrefix + zero-padded N + NameSuffix.
type ImageSequenceReference struct {
	Name             string
	TargetURLBase    string
	NamePrefix       string
	NameSuffix       string
	StartFrame       int
	FrameStep        int
	Rate             float64
	FrameZeroPadding int
	Available        *opentime.TimeRange
	Meta             Metadata
}

func (*ImageSequenceReference) mediaReference() {}

// AvailableRange implements MediaReference.
func (r *ImageSequenceReference) AvailableRange() *opentime.TimeRange { return r.Available }

// Metadata implements MediaReference.
func (r *ImageSequenceReference) Metadata() Metadata { return nonNil(r.Meta) }

// TargetURLForFrame returns the on-disk path of one frame.
func (r *ImageSequenceReference) TargetURLForFrame(frame int) string {
	return fmt.Sprintf("%s%s%0*d%s", r.TargetURLBase, r.NamePrefix, r.FrameZeroPadding, frame, r.NameSuffix)
}

// AbstractTargetURL returns the sequence path with symbol in place of the
// frame number, e.g. "/plates/sh010.%04d.exr".
func (r *ImageSequenceReference) AbstractTargetURL(symbol string) string {
	return r.TargetURLBase + r.NamePrefix + symbol + r.NameSuffix
}

// EndFrame returns the last on-disk frame number covered by the available
// range, or StartFrame when the range is unknown.
func (r *ImageSequenceReference) EndFrame() int {
	if r.Available == nil {
		return r.StartFrame
	}
	step := r.FrameStep
	if step <= 0 {
		step = 1
	}
	n := r.Available.Duration.ToFrames()
	if n <= 0 {
		return r.StartFrame
	}
	return r.StartFrame + (n-1)*step
}

// ExternalReference points at a single file (or, for legacy documents, a
// %d-style sequence path with a "padding" metadata entry).
type ExternalReference struct {
	Name      string
	TargetURL string
	Available *opentime.TimeRange
	Meta      Metadata
}

func (*ExternalReference) mediaReference() {}

// AvailableRange implements MediaReference.
func (r *ExternalReference) AvailableRange() *opentime.TimeRange { return r.Available }

// Metadata implements MediaReference.
func (r *ExternalReference) Metadata() Metadata { return nonNil(r.Meta) }

// IsSequencePath reports whether the target URL carries a printf frame token.
func (r *ExternalReference) IsSequencePath() bool {
	return strings.Contains(r.TargetURL, "%")
}

// MissingReference stands in for offline media.
type MissingReference struct {
	Name      string
	Available *opentime.TimeRange
	Meta      Metadata
}

func (*MissingReference) mediaReference() {}

// AvailableRange implements MediaReference.
func (r *MissingReference) AvailableRange() *opentime.TimeRange { return r.Available }

// Metadata implements MediaReference.
func (r *MissingReference) Metadata() Metadata { return nonNil(r.Meta) }

func nonNil(m Metadata) Metadata {
	if m == nil {
		return Metadata{}
	}
	return m
}
