package collect

import (
	"io"
	"log/slog"

	"github.com/roach88/otioremap/internal/opentime"
	"github.com/roach88/otioremap/internal/otio"
)

func tr(start, duration, rate float64) *opentime.TimeRange {
	r := opentime.NewTimeRange(opentime.New(start, rate), opentime.New(duration, rate))
	return &r
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func plateClip() *otio.Clip {
	return &otio.Clip{
		Name:        "sh010",
		SourceRange: tr(1011, 10, 24),
		MediaReference: &otio.ImageSequenceReference{
			TargetURLBase:    "/plates/sh010/",
			NamePrefix:       "plate.",
			NameSuffix:       ".exr",
			StartFrame:       1001,
			FrameStep:        1,
			Rate:             24,
			FrameZeroPadding: 4,
			Available:        tr(1001, 50, 24),
		},
	}
}

func movieClip(effects ...otio.Effect) *otio.Clip {
	return &otio.Clip{
		Name:        "sh020",
		SourceRange: tr(86410, 20, 24),
		MediaReference: &otio.ExternalReference{
			TargetURL: "/media/sh020.mov",
			Available: tr(86400, 100, 24),
		},
		Effects: effects,
	}
}

func audioClip(name string, duration float64) *otio.Clip {
	return &otio.Clip{
		Name:        name,
		SourceRange: tr(0, duration, 24),
		MediaReference: &otio.ExternalReference{
			TargetURL: "/media/" + name + ".wav",
			Available: tr(0, 200, 24),
		},
	}
}

// editTimeline lays out
//
//	V1: gap 12 | sh010 [12,22) | sh020 [22,42)
//	A1: gap 25 | dialogue [25,65)
func editTimeline() *otio.Timeline {
	video := otio.NewTrack("V1", otio.TrackKindVideo)
	video.Append(&otio.Gap{SourceRange: *tr(0, 12, 24)}, plateClip(), movieClip())

	audio := otio.NewTrack("A1", otio.TrackKindAudio)
	audio.Append(&otio.Gap{SourceRange: *tr(0, 25, 24)}, audioClip("dialogue", 40))

	return &otio.Timeline{Name: "edit_v001", Tracks: []*otio.Track{video, audio}}
}
