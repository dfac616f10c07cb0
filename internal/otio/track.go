package otio

import (
	"fmt"

	"github.com/roach88/otioremap/internal/opentime"
)

// Track kinds.
const (
	TrackKindVideo = "Video"
	TrackKindAudio = "Audio"
)

// Track lays out items back to back.
type Track struct {
	Name     string
	Kind     string
	Children []Item
	Meta     Metadata
}

// NewTrack creates an empty track.
func NewTrack(name, kind string) *Track {
	return &Track{Name: name, Kind: kind}
}

// Append adds items to the end of the track and records the track as
// their parent.
func (t *Track) Append(items ...Item) {
	for _, item := range items {
		item.setParent(t)
		t.Children = append(t.Children, item)
	}
}

// RangeOfChildAtIndex returns where the child at index sits on the track:
// it starts after the trimmed durations of all previous children.
func (t *Track) RangeOfChildAtIndex(index int) (opentime.TimeRange, error) {
	if index < 0 || index >= len(t.Children) {
		return opentime.TimeRange{}, fmt.Errorf("track %q: child index %d out of range", t.Name, index)
	}

	child, err := t.Children[index].TrimmedRange()
	if err != nil {
		return opentime.TimeRange{}, err
	}

	start := opentime.New(0, child.Duration.Rate)
	for i := 0; i < index; i++ {
		prev, err := t.Children[i].TrimmedRange()
		if err != nil {
			return opentime.TimeRange{}, err
		}
		start = start.Add(prev.Duration)
	}

	return opentime.NewTimeRange(start.RescaledTo(child.Duration.Rate), child.Duration), nil
}

// RangeOfChild returns the range of item on the track.
func (t *Track) RangeOfChild(item Item) (opentime.TimeRange, error) {
	for i, child := range t.Children {
		if child == item {
			return t.RangeOfChildAtIndex(i)
		}
	}
	return opentime.TimeRange{}, fmt.Errorf("track %q does not contain %q", t.Name, item.ItemName())
}

// Clips returns the clips of the track in order.
func (t *Track) Clips() []*Clip {
	var clips []*Clip
	for _, child := range t.Children {
		if c, ok := child.(*Clip); ok {
			clips = append(clips, c)
		}
	}
	return clips
}

// Timeline is an ordered stack of tracks.
type Timeline struct {
	Name            string
	GlobalStartTime *opentime.RationalTime
	Tracks          []*Track
	Meta            Metadata
}

// EachClip returns every clip of every track, tracks in stack order.
func (tl *Timeline) EachClip() []*Clip {
	var clips []*Clip
	for _, track := range tl.Tracks {
		clips = append(clips, track.Clips()...)
	}
	return clips
}

// TracksOfKind returns the tracks with the given kind.
func (tl *Timeline) TracksOfKind(kind string) []*Track {
	var out []*Track
	for _, track := range tl.Tracks {
		if track.Kind == kind {
			out = append(out, track)
		}
	}
	return out
}

// Rate returns the timeline rate taken from the global start time, falling
// back to the first clip's source rate.
func (tl *Timeline) Rate() float64 {
	if tl.GlobalStartTime != nil {
		return tl.GlobalStartTime.Rate
	}
	for _, clip := range tl.EachClip() {
		if r, err := clip.TrimmedRange(); err == nil {
			return r.Duration.Rate
		}
	}
	return 0
}
