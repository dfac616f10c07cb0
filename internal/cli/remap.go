package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/otioremap/internal/compiler"
	"github.com/roach88/otioremap/internal/editorial"
	"github.com/roach88/otioremap/internal/opentime"
	"github.com/roach88/otioremap/internal/otio"
)

// RemapOptions holds flags for the remap command.
type RemapOptions struct {
	*RootOptions
	Clip     string
	Start    float64
	Duration float64
	Rate     float64
}

// RemapResult is a source range mapped onto sequence file numbers.
type RemapResult struct {
	Clip     string `json:"clip"`
	FrameIn  int    `json:"frameIn"`
	FrameOut int    `json:"frameOut"`
	Sequence string `json:"sequence,omitempty"`
}

// NewRemapCommand creates the remap command.
func NewRemapCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RemapOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "remap <document>",
		Short: "Map a source range onto image sequence frame numbers",
		Long: `Map a range in a clip's source time onto the frame numbers
present on disk. The clip must reference an image sequence and the
range rate must match the media rate.

Exit codes:
  0 - Range mapped
  1 - Clip is not a sequence or rates differ
  2 - Command error (invalid paths, bad flags)

Examples:
  otioremap remap sh010.otio --start 1011 --duration 10
  otioremap remap edit.otio --clip sh010 --start 11 --duration 10 --rate 24`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemap(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Clip, "clip", "", "clip name (required for timeline documents)")
	cmd.Flags().Float64Var(&opts.Start, "start", 0, "range start frame in source time")
	cmd.Flags().Float64Var(&opts.Duration, "duration", 0, "range duration in frames (required)")
	_ = cmd.MarkFlagRequired("duration")
	cmd.Flags().Float64Var(&opts.Rate, "rate", 0, "range rate (default: media rate)")

	return cmd
}

func runRemap(opts *RemapOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd.OutOrStdout())

	if opts.Duration < 0 || opts.Rate < 0 {
		return f.Fail(ExitCommandError, ErrCodeBadArgs, "duration and rate must not be negative", nil)
	}

	clip, lerr := LoadClip(path, opts.Clip)
	if lerr != nil {
		return lerr.fail(f)
	}

	rate := opts.Rate
	if rate == 0 {
		available, err := clip.AvailableRange()
		if err != nil {
			return f.Fail(ExitFailure, compiler.ErrNoAvailableRange, err.Error(), nil)
		}
		rate = available.StartTime.Rate
	}
	r := opentime.NewTimeRange(opentime.New(opts.Start, rate), opentime.New(opts.Duration, rate))

	in, out, err := editorial.RemapRangeOnFileSequence(clip, r)
	if err != nil {
		return f.Fail(ExitFailure, compiler.ErrorCode(err), err.Error(), nil)
	}

	result := RemapResult{Clip: clip.Name, FrameIn: in, FrameOut: out}
	if _, coll, ok := sequenceOf(clip, in, out); ok {
		result.Sequence = coll.String()
	}
	opts.logger().Debug("range remapped", "clip", clip.Name, "range", r.String(), "frame_in", in, "frame_out", out)

	return f.Result(result, func(w io.Writer) {
		fmt.Fprintf(w, "%s: %d - %d\n", clip.Name, in, out)
		if result.Sequence != "" {
			fmt.Fprintf(w, "  %s\n", result.Sequence)
		}
	})
}

// sequenceOf returns the files [in, out] of a sequence clip as a collection.
func sequenceOf(clip *otio.Clip, in, out int) (string, *editorial.Collection, bool) {
	switch ref := clip.MediaReference.(type) {
	case *otio.ImageSequenceReference:
		coll := editorial.NewCollection(ref.NamePrefix, ref.NameSuffix, ref.FrameZeroPadding)
		coll.AddRange(in, out+1)
		return ref.TargetURLBase, coll, true
	case *otio.ExternalReference:
		available, err := clip.AvailableRange()
		if err != nil {
			return "", nil, false
		}
		r := editorial.RangeFromFrames(float64(in), float64(out-in+1), available.StartTime.Rate)
		return editorial.MakeSequenceCollection(ref.TargetURL, r, ref.Metadata())
	default:
		return "", nil, false
	}
}
