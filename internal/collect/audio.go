package collect

import (
	"fmt"
	"sync"

	"github.com/roach88/otioremap/internal/editorial"
	"github.com/roach88/otioremap/internal/opentime"
	"github.com/roach88/otioremap/internal/otio"
)

// AudioClip is an audio clip with its position on the timeline.
type AudioClip struct {
	Clip  *otio.Clip
	Track string
	Range opentime.TimeRange
}

// AudioCache holds the audio clips of one timeline for the length of a
// publish session. The clips are gathered on first use and reused by every
// shot collected afterwards.
//
// Thread-safety: all methods are safe for concurrent use.
type AudioCache struct {
	mu       sync.Mutex
	timeline *otio.Timeline
	clips    []AudioClip
}

// NewAudioCache creates an empty cache.
func NewAudioCache() *AudioCache {
	return &AudioCache{}
}

// Clips returns the audio clips of tl, gathering them on the first call.
// A different timeline replaces the cached clips.
func (c *AudioCache) Clips(tl *otio.Timeline) ([]AudioClip, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timeline == tl {
		return c.clips, nil
	}

	var clips []AudioClip
	for _, track := range tl.TracksOfKind(otio.TrackKindAudio) {
		for _, clip := range track.Clips() {
			r, err := clip.RangeInParent()
			if err != nil {
				return nil, fmt.Errorf("audio clip %q: %w", clip.Name, err)
			}
			clips = append(clips, AudioClip{Clip: clip, Track: track.Name, Range: r})
		}
	}

	c.timeline = tl
	c.clips = clips
	return clips, nil
}

// Reset drops the cached clips.
func (c *AudioCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timeline = nil
	c.clips = nil
}

// Overlapping returns the audio clips touching shot in any way.
func (c *AudioCache) Overlapping(tl *otio.Timeline, shot opentime.TimeRange) ([]AudioClip, error) {
	return c.match(tl, shot, false)
}

// Covering returns the audio clips that span the whole of shot.
func (c *AudioCache) Covering(tl *otio.Timeline, shot opentime.TimeRange) ([]AudioClip, error) {
	return c.match(tl, shot, true)
}

func (c *AudioCache) match(tl *otio.Timeline, shot opentime.TimeRange, strict bool) ([]AudioClip, error) {
	clips, err := c.Clips(tl)
	if err != nil {
		return nil, err
	}
	var out []AudioClip
	for _, ac := range clips {
		if editorial.IsOverlappingOTIORanges(ac.Range, shot, strict) {
			out = append(out, ac)
		}
	}
	return out, nil
}
