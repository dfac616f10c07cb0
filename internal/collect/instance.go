package collect

import (
	"slices"

	"github.com/roach88/otioremap/internal/opentime"
)

// Representation tags.
const (
	TagTrim   = "trim"
	TagDelete = "delete"
	TagReview = "review"
)

// Representation is one set of files an extractor produces for a shot.
type Representation struct {
	Name       string
	Ext        string
	Files      []string
	FrameStart int
	FrameEnd   int
	StagingDir string
	Tags       []string

	// Sequence is set for frame sequences; single files leave it empty.
	Sequence string
}

// AsMap returns the representation as plain data.
func (r Representation) AsMap() map[string]any {
	files := make([]any, len(r.Files))
	for i, f := range r.Files {
		files[i] = f
	}
	tags := make([]any, len(r.Tags))
	for i, t := range r.Tags {
		tags[i] = t
	}
	m := map[string]any{
		"name":       r.Name,
		"ext":        r.Ext,
		"files":      files,
		"frameStart": r.FrameStart,
		"frameEnd":   r.FrameEnd,
		"stagingDir": r.StagingDir,
		"tags":       tags,
	}
	if r.Sequence != "" {
		m["sequence"] = r.Sequence
	}
	return m
}

// Instance is the publish data collected for one shot.
type Instance struct {
	Name     string
	Track    string
	Families []string

	// FrameStart and FrameEnd are the published cut range without handles.
	FrameStart int
	FrameEnd   int

	HandleStart int
	HandleEnd   int

	// MediaIn and MediaOut are the media frames the cut range plays.
	MediaIn  int
	MediaOut int

	// ClipIn and ClipOut are the inclusive timeline frames of the shot.
	// Both are zero when the clip is not on a track.
	ClipIn  int
	ClipOut int

	// TrimmingRange is the media range to cut from a single file, handles
	// included. It is nil for sequences and files used in full.
	TrimmingRange *opentime.TimeRange

	HasAudio   bool
	AudioClips []string

	VersionData     map[string]any
	Representations []Representation
	OriginalDirname string
}

// AsMap returns the instance as plain data for storage and hashing.
func (i *Instance) AsMap() map[string]any {
	families := make([]any, len(i.Families))
	for n, f := range i.Families {
		families[n] = f
	}
	audio := make([]any, len(i.AudioClips))
	for n, a := range i.AudioClips {
		audio[n] = a
	}
	repres := make([]any, len(i.Representations))
	for n, r := range i.Representations {
		repres[n] = r.AsMap()
	}

	m := map[string]any{
		"name":            i.Name,
		"track":           i.Track,
		"families":        families,
		"frameStart":      i.FrameStart,
		"frameEnd":        i.FrameEnd,
		"handleStart":     i.HandleStart,
		"handleEnd":       i.HandleEnd,
		"mediaIn":         i.MediaIn,
		"mediaOut":        i.MediaOut,
		"clipIn":          i.ClipIn,
		"clipOut":         i.ClipOut,
		"hasAudio":        i.HasAudio,
		"audioClips":      audio,
		"versionData":     i.VersionData,
		"representations": repres,
		"originalDirname": i.OriginalDirname,
	}
	if i.TrimmingRange != nil {
		m["trimmingRange"] = map[string]any{
			"start":    i.TrimmingRange.StartTime.Value,
			"duration": i.TrimmingRange.Duration.Value,
			"rate":     i.TrimmingRange.StartTime.Rate,
		}
	}
	return m
}

// HasFamily reports whether the instance is tagged with family.
func (i *Instance) HasFamily(family string) bool {
	return slices.Contains(i.Families, family)
}
