package otio

import (
	"errors"
	"fmt"

	"github.com/roach88/otioremap/internal/opentime"
)

// ErrNoAvailableRange is returned when neither the media reference nor the
// clip knows the extent of the media.
var ErrNoAvailableRange = errors.New("clip has no available range")

// Item is anything that occupies time on a track.
type Item interface {
	ItemName() string
	// TrimmedRange is the portion of the item used on the track.
	TrimmedRange() (opentime.TimeRange, error)
	setParent(*Track)
}

// Marker annotates a range of a clip. Hosts store pipeline tags in marker
// metadata.
type Marker struct {
	Name        string
	Color       string
	MarkedRange opentime.TimeRange
	Meta        Metadata
}

// Clip is a piece of media placed on a track.
type Clip struct {
	Name           string
	SourceRange    *opentime.TimeRange
	MediaReference MediaReference
	Effects        []Effect
	Markers        []Marker
	Meta           Metadata

	parent *Track
}

// ItemName implements Item.
func (c *Clip) ItemName() string { return c.Name }

func (c *Clip) setParent(t *Track) { c.parent = t }

// Parent returns the track holding the clip, or nil.
func (c *Clip) Parent() *Track { return c.parent }

// Metadata returns the clip metadata (never nil).
func (c *Clip) Metadata() Metadata { return nonNil(c.Meta) }

// AvailableRange returns the full extent of the clip's media at the media's
// native rate.
func (c *Clip) AvailableRange() (opentime.TimeRange, error) {
	if c.MediaReference == nil {
		return opentime.TimeRange{}, fmt.Errorf("clip %q: %w", c.Name, ErrNoAvailableRange)
	}
	ar := c.MediaReference.AvailableRange()
	if ar == nil {
		return opentime.TimeRange{}, fmt.Errorf("clip %q: %w", c.Name, ErrNoAvailableRange)
	}
	return *ar, nil
}

// TrimmedRange returns the source range, falling back to the available range.
func (c *Clip) TrimmedRange() (opentime.TimeRange, error) {
	if c.SourceRange != nil {
		return *c.SourceRange, nil
	}
	return c.AvailableRange()
}

// RangeInParent returns the clip's position on its track.
func (c *Clip) RangeInParent() (opentime.TimeRange, error) {
	if c.parent == nil {
		return opentime.TimeRange{}, fmt.Errorf("clip %q has no parent track", c.Name)
	}
	return c.parent.RangeOfChild(c)
}

// Gap is empty time on a track.
type Gap struct {
	Name        string
	SourceRange opentime.TimeRange

	parent *Track
}

// ItemName implements Item.
func (g *Gap) ItemName() string { return g.Name }

func (g *Gap) setParent(t *Track) { g.parent = t }

// TrimmedRange implements Item.
func (g *Gap) TrimmedRange() (opentime.TimeRange, error) {
	return g.SourceRange, nil
}
