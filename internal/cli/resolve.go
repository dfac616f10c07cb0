package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/otioremap/internal/compiler"
	"github.com/roach88/otioremap/internal/editorial"
)

// ResolveOptions holds flags for the resolve command.
type ResolveOptions struct {
	*RootOptions
	Clip        string
	HandleStart int
	HandleEnd   int
}

// ResolveResult is the media range of one clip.
type ResolveResult struct {
	Clip  string         `json:"clip"`
	Range map[string]any `json:"range"`
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResolveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "resolve <document>",
		Short: "Resolve the media range a clip plays",
		Long: `Resolve the media frames a clip plays, with its retimes applied
and the requested handles clamped to the available media.

Image sequences report file frame numbers; movies report frames
counted from the first available frame.

Examples:
  otioremap resolve sh010.otio --handle-start 10 --handle-end 10
  otioremap resolve edit.otio --clip sh020 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Clip, "clip", "", "clip name (required for timeline documents)")
	cmd.Flags().IntVar(&opts.HandleStart, "handle-start", 0, "frames requested before the cut")
	cmd.Flags().IntVar(&opts.HandleEnd, "handle-end", 0, "frames requested after the cut")

	return cmd
}

func runResolve(opts *ResolveOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd.OutOrStdout())

	if opts.HandleStart < 0 || opts.HandleEnd < 0 {
		return f.Fail(ExitCommandError, ErrCodeBadArgs, "handles must not be negative", nil)
	}

	clip, lerr := LoadClip(path, opts.Clip)
	if lerr != nil {
		return lerr.fail(f)
	}

	mr, err := editorial.GetMediaRangeWithRetimes(clip, opts.HandleStart, opts.HandleEnd)
	if err != nil {
		return f.Fail(ExitFailure, compiler.ErrorCode(err), err.Error(), nil)
	}
	opts.logger().Debug("media range resolved", "clip", clip.Name, "media_in", mr.MediaIn, "media_out", mr.MediaOut)

	result := ResolveResult{Clip: clip.Name, Range: mr.AsMap()}
	return f.Result(result, func(w io.Writer) {
		fmt.Fprintf(w, "%s\n", clip.Name)
		fmt.Fprintf(w, "  media:   %g - %g\n", mr.MediaIn, mr.MediaOut)
		fmt.Fprintf(w, "  handles: %d / %d\n", mr.HandleStart, mr.HandleEnd)
		fmt.Fprintf(w, "  speed:   %g\n", mr.Speed)
		if vd := mr.VersionData; vd != nil {
			fmt.Fprintf(w, "  retime:  %d time warp(s)\n", len(vd.TimeWarps))
		}
	})
}
