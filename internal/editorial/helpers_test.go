package editorial

import (
	"github.com/roach88/otioremap/internal/opentime"
	"github.com/roach88/otioremap/internal/otio"
)

func tr(start, duration, rate float64) opentime.TimeRange {
	return opentime.NewTimeRange(opentime.New(start, rate), opentime.New(duration, rate))
}

func ptr(r opentime.TimeRange) *opentime.TimeRange {
	return &r
}

// movieClip is a single-file clip with media [availStart, availStart+availDur).
func movieClip(source, available opentime.TimeRange, effects ...otio.Effect) *otio.Clip {
	return &otio.Clip{
		Name:        "movie",
		SourceRange: ptr(source),
		MediaReference: &otio.ExternalReference{
			TargetURL: "/media/plate.mov",
			Available: ptr(available),
		},
		Effects: effects,
	}
}

// sequenceClip is an image-sequence clip whose first file is startFrame.
func sequenceClip(startFrame int, source, available opentime.TimeRange, effects ...otio.Effect) *otio.Clip {
	return &otio.Clip{
		Name:        "plate",
		SourceRange: ptr(source),
		MediaReference: &otio.ImageSequenceReference{
			TargetURLBase:    "/plates/sh010/",
			NamePrefix:       "plate.",
			NameSuffix:       ".exr",
			StartFrame:       startFrame,
			FrameStep:        1,
			Rate:             available.StartTime.Rate,
			FrameZeroPadding: 4,
			Available:        ptr(available),
		},
		Effects: effects,
	}
}

// legacySequenceClip is a sequence exported as an external reference with
// a %d path and a padding hint.
func legacySequenceClip(source, available opentime.TimeRange) *otio.Clip {
	return &otio.Clip{
		Name:        "legacy",
		SourceRange: ptr(source),
		MediaReference: &otio.ExternalReference{
			TargetURL: "/plates/sh020/plate.%04d.exr",
			Available: ptr(available),
			Meta:      otio.Metadata{"padding": 4},
		},
	}
}

func timeWarp(name string, lookup ...any) *otio.TimeEffect {
	return &otio.TimeEffect{
		InstanceName: name,
		Effect:       "TimeWarp",
		Meta: otio.Metadata{
			"lookup":        lookup,
			"interpolation": "linear",
		},
	}
}
