package collect

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/roach88/otioremap/internal/editorial"
	"github.com/roach88/otioremap/internal/opentime"
	"github.com/roach88/otioremap/internal/otio"
)

// ErrNoTargetURL is returned for clips whose media reference has no path
// to extract from.
var ErrNoTargetURL = errors.New("media reference has no target url")

// ShotCollector turns the video clips of an edit into publish instances.
//
// A collector is scoped to one publish session: its AudioCache is filled
// from the first timeline it sees.
type ShotCollector struct {
	settings Settings
	audio    *AudioCache
	logger   *slog.Logger
}

// Option configures a ShotCollector.
type Option func(*ShotCollector)

// WithLogger sets the collector's logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *ShotCollector) {
		c.logger = logger
	}
}

// WithAudioCache shares an audio cache between collectors of the same
// session.
func WithAudioCache(cache *AudioCache) Option {
	return func(c *ShotCollector) {
		c.audio = cache
	}
}

// NewShotCollector creates a collector with the given settings.
func NewShotCollector(settings Settings, opts ...Option) *ShotCollector {
	c := &ShotCollector{
		settings: settings,
		audio:    NewAudioCache(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Settings returns the collector settings.
func (c *ShotCollector) Settings() Settings {
	return c.settings
}

// ErrCodeCollect is the skip code for failures outside the engine, such
// as a media reference without a path.
const ErrCodeCollect = "COLLECT_FAILED"

// SkippedClip records a clip that could not be collected.
type SkippedClip struct {
	Name  string
	Track string
	Err   error
}

// Code returns the engine error code behind the skip, or ErrCodeCollect.
func (s SkippedClip) Code() string {
	var re *editorial.RangeError
	if errors.As(s.Err, &re) {
		return string(re.Code)
	}
	return ErrCodeCollect
}

// Result is the outcome of collecting a timeline.
type Result struct {
	Instances []*Instance
	Skipped   []SkippedClip
}

// CollectTimeline collects every video clip of tl in track order. Clips the
// engine rejects are skipped and reported; they do not stop collection.
func (c *ShotCollector) CollectTimeline(tl *otio.Timeline) (*Result, error) {
	if _, err := c.audio.Clips(tl); err != nil {
		return nil, fmt.Errorf("gather audio: %w", err)
	}

	result := &Result{}
	for _, track := range tl.TracksOfKind(otio.TrackKindVideo) {
		for _, clip := range track.Clips() {
			inst, err := c.collect(tl, clip)
			if err != nil {
				c.logger.Warn("skipping clip",
					"clip", clip.Name,
					"track", track.Name,
					"error", err,
				)
				result.Skipped = append(result.Skipped, SkippedClip{Name: clip.Name, Track: track.Name, Err: err})
				continue
			}
			result.Instances = append(result.Instances, inst)
		}
	}

	c.logger.Info("timeline collected",
		"timeline", tl.Name,
		"instances", len(result.Instances),
		"skipped", len(result.Skipped),
	)
	return result, nil
}

// CollectClip collects a single clip outside of any timeline. Audio is not
// looked up.
func (c *ShotCollector) CollectClip(clip *otio.Clip) (*Instance, error) {
	return c.collect(nil, clip)
}

func (c *ShotCollector) collect(tl *otio.Timeline, clip *otio.Clip) (*Instance, error) {
	mr, err := editorial.GetMediaRangeWithRetimes(clip, c.settings.HandleStart, c.settings.HandleEnd)
	if err != nil {
		return nil, err
	}
	available, err := clip.AvailableRange()
	if err != nil {
		return nil, err
	}
	mediaFPS := available.StartTime.Rate
	availableDuration := available.Duration.Value
	c.logger.Debug("media range resolved",
		"clip", clip.Name,
		"media_in", mr.MediaIn,
		"media_out", mr.MediaOut,
		"handle_start", mr.HandleStart,
		"handle_end", mr.HandleEnd,
		"speed", mr.Speed,
	)

	mediaIn := int(mr.MediaIn)
	mediaOut := int(mr.MediaOut)
	handleStart := mr.HandleStart
	handleEnd := mr.HandleEnd

	// available frame range with handles
	startH := mediaIn - handleStart
	endH := mediaOut + handleEnd
	trimmed := editorial.RangeFromFrames(float64(startH), float64(endH-startH+1), mediaFPS)

	frameStart := c.settings.FrameStart
	frameEnd := frameStart + (mediaOut - mediaIn)
	if strings.Contains(c.settings.Template, "{originalBasename}") {
		frameStart = mediaIn
		frameEnd = mediaOut
	}

	versionData := map[string]any{}
	if vd, ok := mr.AsMap()["versionData"].(map[string]any); ok {
		for k, v := range vd {
			versionData[k] = v
		}
	}
	versionData["fps"] = mediaFPS
	versionData["frameStart"] = frameStart
	versionData["frameEnd"] = frameEnd
	if !mr.IsRetimed() {
		versionData["handleStart"] = handleStart
		versionData["handleEnd"] = handleEnd
	}

	inst := &Instance{
		Name:        clip.Name,
		Families:    append([]string(nil), c.settings.Families...),
		FrameStart:  frameStart,
		FrameEnd:    frameEnd,
		HandleStart: handleStart,
		HandleEnd:   handleEnd,
		MediaIn:     mediaIn,
		MediaOut:    mediaOut,
		VersionData: versionData,
	}
	if c.settings.Review && !inst.HasFamily(TagReview) {
		inst.Families = append(inst.Families, TagReview)
	}

	// representations are renumbered with handles
	repreStart := frameStart - handleStart
	repreEnd := frameEnd + handleEnd

	var repre Representation
	if editorial.IsClipFromMediaSequence(clip) {
		dir, coll, err := sequenceCollection(clip, startH, endH, trimmed)
		if err != nil {
			return nil, err
		}
		repre = Representation{
			Name:       strings.TrimPrefix(coll.Tail, "."),
			Ext:        strings.TrimPrefix(coll.Tail, "."),
			Files:      coll.Paths(),
			FrameStart: repreStart,
			FrameEnd:   repreEnd,
			StagingDir: dir,
			Sequence:   coll.String(),
		}
	} else {
		url, err := targetURL(clip.MediaReference)
		if err != nil {
			return nil, fmt.Errorf("clip %q: %w", clip.Name, err)
		}
		dir, file := filepath.Split(url)
		dir = filepath.Clean(dir)
		ext := strings.TrimPrefix(filepath.Ext(file), ".")
		repre = Representation{
			Name:       ext,
			Ext:        ext,
			Files:      []string{file},
			FrameStart: repreStart,
			FrameEnd:   repreEnd,
			StagingDir: dir,
		}
		if trimmed.Duration.Value < availableDuration {
			c.logger.Debug("ready for trimming", "clip", clip.Name, "range", trimmed.String())
			inst.Families = append(inst.Families, TagTrim)
			inst.TrimmingRange = &trimmed
			repre.Tags = append(repre.Tags, TagTrim)
		}
	}
	inst.OriginalDirname = repre.StagingDir
	inst.Representations = append(inst.Representations, repre)

	if inst.HasFamily(TagReview) {
		review := repre
		review.Files = append([]string(nil), repre.Files...)
		review.Tags = []string{TagDelete, TagReview}
		inst.Representations = append(inst.Representations, review)
	}

	if track := clip.Parent(); track != nil {
		inst.Track = track.Name
		if err := c.placeOnTimeline(tl, clip, inst); err != nil {
			return nil, err
		}
	}

	return inst, nil
}

// placeOnTimeline fills the timeline position and audio of inst.
func (c *ShotCollector) placeOnTimeline(tl *otio.Timeline, clip *otio.Clip, inst *Instance) error {
	rip, err := clip.RangeInParent()
	if err != nil {
		return err
	}
	start, end := editorial.OTIORangeToFrameRange(rip)
	inst.ClipIn = start
	inst.ClipOut = end - 1

	if tl == nil {
		return nil
	}
	overlapping, err := c.audio.Overlapping(tl, rip)
	if err != nil {
		return err
	}
	inst.HasAudio = len(overlapping) > 0

	covering, err := c.audio.Covering(tl, rip)
	if err != nil {
		return err
	}
	for _, ac := range covering {
		inst.AudioClips = append(inst.AudioClips, ac.Clip.Name)
	}
	return nil
}

// sequenceCollection builds the frame collection [startH, endH] of a
// sequence clip, from the sequence fields when the reference has them and
// from the padded path otherwise.
func sequenceCollection(clip *otio.Clip, startH, endH int, trimmed opentime.TimeRange) (string, *editorial.Collection, error) {
	switch ref := clip.MediaReference.(type) {
	case *otio.ImageSequenceReference:
		coll := editorial.NewCollection(ref.NamePrefix, ref.NameSuffix, ref.FrameZeroPadding)
		coll.AddRange(startH, endH+1)
		return filepath.Clean(ref.TargetURLBase), coll, nil
	case *otio.ExternalReference:
		dir, coll, ok := editorial.MakeSequenceCollection(ref.TargetURL, trimmed, ref.Metadata())
		if !ok {
			return "", nil, fmt.Errorf("clip %q: %q is not a sequence path", clip.Name, ref.TargetURL)
		}
		return dir, coll, nil
	}
	return "", nil, fmt.Errorf("clip %q: unsupported sequence reference %T", clip.Name, clip.MediaReference)
}

func targetURL(ref otio.MediaReference) (string, error) {
	if ext, ok := ref.(*otio.ExternalReference); ok && ext.TargetURL != "" {
		return ext.TargetURL, nil
	}
	return "", ErrNoTargetURL
}
