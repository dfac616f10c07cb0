package editorial

import (
	"encoding/json"
	"math"
	"slices"

	"github.com/roach88/otioremap/internal/opentime"
	"github.com/roach88/otioremap/internal/otio"
)

// MediaRange is the media extent a shot needs, in media frames, with the
// handles the media can actually provide.
type MediaRange struct {
	MediaIn     float64      `json:"mediaIn"`
	MediaOut    float64      `json:"mediaOut"`
	HandleStart int          `json:"handleStart"`
	HandleEnd   int          `json:"handleEnd"`
	Speed       float64      `json:"speed"`
	VersionData *VersionData `json:"versionData,omitempty"`
}

// VersionData describes the retime applied to a shot. It is only set when
// the clip is retimed.
type VersionData struct {
	Retime      bool           `json:"retime"`
	Speed       float64        `json:"speed"`
	TimeWarps   []TimeWarpNode `json:"timewarps"`
	HandleStart int            `json:"handleStart"`
	HandleEnd   int            `json:"handleEnd"`
}

// TimeWarpNode is a time-warp curve as extraction tools consume it: the
// effect's metadata plus its class, name and per-frame lookup.
type TimeWarpNode struct {
	Name   string
	Lookup []float64
	Extra  otio.Metadata
}

// AsMap returns the node as a plain map. Metadata keys override "Class" and
// "name"; "lookup" is always the resolved curve.
func (n TimeWarpNode) AsMap() map[string]any {
	m := map[string]any{
		"Class": "TimeWarp",
		"name":  n.Name,
	}
	for k, v := range n.Extra {
		m[k] = v
	}
	lookup := make([]any, len(n.Lookup))
	for i, v := range n.Lookup {
		lookup[i] = v
	}
	m["lookup"] = lookup
	return m
}

func (n TimeWarpNode) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.AsMap())
}

// AsMap returns the range in the plain-map shape collectors store on
// instances. "versionData" is present only for retimed clips.
func (r MediaRange) AsMap() map[string]any {
	m := map[string]any{
		"mediaIn":     r.MediaIn,
		"mediaOut":    r.MediaOut,
		"handleStart": r.HandleStart,
		"handleEnd":   r.HandleEnd,
		"speed":       r.Speed,
	}
	if r.VersionData != nil {
		warps := make([]any, len(r.VersionData.TimeWarps))
		for i, tw := range r.VersionData.TimeWarps {
			warps[i] = tw.AsMap()
		}
		m["versionData"] = map[string]any{
			"retime":      r.VersionData.Retime,
			"speed":       r.VersionData.Speed,
			"timewarps":   warps,
			"handleStart": r.VersionData.HandleStart,
			"handleEnd":   r.VersionData.HandleEnd,
		}
	}
	return m
}

// IsRetimed reports whether the clip plays at anything but normal speed.
func (r MediaRange) IsRetimed() bool {
	return r.VersionData != nil
}

// mediaAddressing is how media frames are numbered: literal file numbers
// for image sequences, time values for continuous media.
type mediaAddressing interface {
	// trimmed returns the inclusive media bounds the retimed source covers.
	trimmed(clip *otio.Clip, conformed opentime.TimeRange, scale float64) (in, out float64, err error)

	// bounds returns the inclusive bounds of the available media.
	bounds() (in, out float64)

	// zeroBased reports whether results are reported relative to the
	// first available frame.
	zeroBased() bool
}

type sequenceMedia struct {
	startFrame int
	available  opentime.TimeRange
}

func (m sequenceMedia) trimmed(clip *otio.Clip, conformed opentime.TimeRange, scale float64) (float64, float64, error) {
	source, err := clip.TrimmedRange()
	if err != nil {
		return 0, 0, err
	}
	retimed := opentime.New(math.Ceil(source.Duration.Value*scale), source.Duration.Rate).
		RescaledTo(conformed.StartTime.Rate)

	in, out, err := RemapRangeOnFileSequence(clip, opentime.NewTimeRange(conformed.StartTime, retimed))
	if err != nil {
		return 0, 0, err
	}
	return float64(in), float64(out), nil
}

func (m sequenceMedia) bounds() (float64, float64) {
	return float64(m.startFrame), float64(m.startFrame + m.available.Duration.ToFrames() - 1)
}

func (sequenceMedia) zeroBased() bool { return false }

type continuousMedia struct {
	available opentime.TimeRange
}

func (continuousMedia) trimmed(_ *otio.Clip, conformed opentime.TimeRange, scale float64) (float64, float64, error) {
	in := conformed.StartTime.Value
	offset := conformed.Duration.Value * scale
	if offset > 0 {
		offset--
	}
	return in, in + offset, nil
}

func (m continuousMedia) bounds() (float64, float64) {
	return m.available.StartTime.Value, m.available.EndTimeInclusive().Value
}

// Extraction tools ignore embedded timecode.
func (continuousMedia) zeroBased() bool { return true }

// retime is the speed and curves found on a clip's effect stack.
type retime struct {
	scalar float64
	warps  []TimeWarpNode
}

// scanEffects resolves the clip's effects in stack order. The last linear
// or freeze effect wins; every time warp with a lookup curve is kept.
func scanEffects(effects []otio.Effect) retime {
	rt := retime{scalar: 1}
	for _, effect := range effects {
		switch e := effect.(type) {
		case *otio.LinearTimeWarp:
			rt.scalar = e.TimeScalar
		case *otio.FreezeFrame:
			rt.scalar = 0
		case *otio.TimeEffect:
			if !e.IsTimeWarp() || !e.Metadata().Truthy("lookup") {
				continue
			}
			lookup, ok := e.Lookup()
			if !ok || len(lookup) == 0 {
				continue
			}
			extra := e.Metadata().Clone()
			delete(extra, "lookup")
			rt.warps = append(rt.warps, TimeWarpNode{Name: e.Name(), Lookup: lookup, Extra: extra})
		}
	}
	return rt
}

// GetMediaRangeWithRetimes resolves the media frames a clip plays, applying
// rate conformance and the clip's retime effects, and clamps the requested
// handles to the media actually available.
//
// For image sequences MediaIn and MediaOut are file frame numbers. For
// continuous media they are zero-based from the first available frame.
func GetMediaRangeWithRetimes(clip *otio.Clip, handleStart, handleEnd int) (MediaRange, error) {
	available, err := clip.AvailableRange()
	if err != nil {
		return MediaRange{}, &RangeError{Code: ErrCodeNoAvailableRange, Message: err.Error(), Clip: clip.Name, Err: err}
	}
	source, err := clip.TrimmedRange()
	if err != nil {
		return MediaRange{}, &RangeError{Code: ErrCodeNoAvailableRange, Message: err.Error(), Clip: clip.Name, Err: err}
	}
	rate := available.StartTime.Rate

	conformed := source
	if !RatesMatch(rate, source.StartTime.Rate) {
		conformed = opentime.NewTimeRange(source.StartTime.RescaledTo(rate), source.Duration.RescaledTo(rate))
	}

	var media mediaAddressing = continuousMedia{available: available}
	if startFrame, ok := sequenceStartFrame(clip); ok {
		if hasRelativeSourceRange(available, conformed.StartTime, startFrame) {
			available = opentime.NewTimeRange(opentime.New(0, rate), available.Duration)
		}
		media = sequenceMedia{startFrame: startFrame, available: available}
	}

	rt := scanEffects(clip.Effects)
	scale := math.Abs(rt.scalar)

	hs := float64(handleStart) * scale
	he := float64(handleEnd) * scale
	if rt.scalar < 0 {
		hs, he = he, hs
	}

	trimmedIn, trimmedOut, err := media.trimmed(clip, conformed, scale)
	if err != nil {
		return MediaRange{}, err
	}
	mediaIn, mediaOut := media.bounds()

	if len(rt.warps) > 0 {
		frames, err := simulateTimeWarps(clip.Name, rt, trimmedIn, source.Duration.ToFrames())
		if err != nil {
			return MediaRange{}, err
		}
		before := trimmedIn
		trimmedIn = max(mediaIn, slices.Min(frames))
		trimmedOut = min(mediaOut, slices.Max(frames))

		// Replaying the first curve against the trimmed plate must land on
		// the same frames.
		if trimmedIn != before && rt.scalar != 0 {
			shift := (before - trimmedIn) / rt.scalar
			for i := range rt.warps[0].Lookup {
				rt.warps[0].Lookup[i] += shift
			}
		}
	}

	if trimmedIn-mediaIn < hs {
		hs = max(0, trimmedIn-mediaIn)
	}
	if mediaOut-trimmedOut < he {
		he = max(0, mediaOut-trimmedOut)
	}

	if media.zeroBased() {
		trimmedIn -= mediaIn
		trimmedOut -= mediaIn
	}

	out := MediaRange{
		MediaIn:     trimmedIn,
		MediaOut:    trimmedOut,
		HandleStart: int(math.Ceil(hs)),
		HandleEnd:   int(math.Ceil(he)),
		Speed:       rt.scalar,
	}
	if len(rt.warps) > 0 || rt.scalar != 1 {
		warps := rt.warps
		if warps == nil {
			warps = []TimeWarpNode{}
		}
		out.VersionData = &VersionData{
			Retime:      true,
			Speed:       rt.scalar,
			TimeWarps:   warps,
			HandleStart: out.HandleStart,
			HandleEnd:   out.HandleEnd,
		}
	}
	return out, nil
}

// simulateTimeWarps plays the clip frame by frame through its warp curves
// and returns the media frame each output frame shows.
//
// The first curve offsets frames by lookup*scalar. Later curves can only
// pick frames the first one already resolved; reaching outside them fails.
// A single value offsets every frame; a longer curve needs a value for
// each output frame.
func simulateTimeWarps(clip string, rt retime, in float64, count int) ([]float64, error) {
	count = max(count, 1)
	frames := make([]float64, count)
	for i := range frames {
		frames[i] = in + float64(i)*rt.scalar
	}

	for w, tw := range rt.warps {
		if n := len(tw.Lookup); n > 1 && n < count {
			return nil, newShortTimeWarpError(clip, w, n, count)
		}
		for i := range frames {
			offset := tw.Lookup[0]
			if len(tw.Lookup) > 1 {
				offset = tw.Lookup[i]
			}
			if w == 0 {
				frames[i] = math.RoundToEven(frames[i] + offset*rt.scalar)
				continue
			}
			ref := int(math.RoundToEven(float64(i) + offset))
			if ref < 0 || ref >= len(frames) {
				return nil, newUnsupportedTimeWarpError(clip, w, i, ref)
			}
			frames[i] = frames[ref]
		}
	}
	return frames, nil
}
