package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/otioremap/internal/collect"
	"github.com/roach88/otioremap/internal/compiler"
	"github.com/roach88/otioremap/internal/store"
)

// CollectOptions holds flags for the collect command.
type CollectOptions struct {
	*RootOptions
	Database    string
	Settings    string
	HandleStart int
	HandleEnd   int
	Review      bool
	Strict      bool
}

// CollectedShot summarizes one recorded shot.
type CollectedShot struct {
	Name       string `json:"name"`
	Track      string `json:"track"`
	FrameStart int    `json:"frameStart"`
	FrameEnd   int    `json:"frameEnd"`
	MediaIn    int    `json:"mediaIn"`
	MediaOut   int    `json:"mediaOut"`
	HasAudio   bool   `json:"hasAudio"`
	Trim       bool   `json:"trim"`
	Inserted   bool   `json:"inserted"`
}

// SkippedShot is a clip the collector could not resolve.
type SkippedShot struct {
	Clip    string `json:"clip"`
	Track   string `json:"track"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CollectResult is the outcome of a collect run.
type CollectResult struct {
	Session  string          `json:"session"`
	Timeline string          `json:"timeline"`
	Previous int             `json:"previous"` // earlier sessions with the same source and settings
	Shots    []CollectedShot `json:"shots"`
	Skipped  []SkippedShot   `json:"skipped"`
}

// NewCollectCommand creates the collect command.
func NewCollectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CollectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "collect <timeline>",
		Short: "Collect the shots of an edit into the ledger",
		Long: `Collect every video clip of a timeline as a publish instance and
record the instances in a new ledger session.

Clips the engine cannot resolve are skipped and recorded with their
error code. With --strict any skipped clip fails the command.

Exit codes:
  0 - Timeline collected
  1 - Clips skipped with --strict, or document invalid
  2 - Command error (invalid paths, database error)

Examples:
  otioremap collect edit.otio --db ./ledger.db
  otioremap collect edit.otio --db ./ledger.db --settings publish.yaml
  otioremap collect edit.otio --db ./ledger.db --handle-start 8 --handle-end 8 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCollect(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite ledger (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Settings, "settings", "", "collector settings YAML")
	cmd.Flags().IntVar(&opts.HandleStart, "handle-start", 0, "override settings handle_start")
	cmd.Flags().IntVar(&opts.HandleEnd, "handle-end", 0, "override settings handle_end")
	cmd.Flags().BoolVar(&opts.Review, "review", false, "add review representations")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "fail when any clip is skipped")

	return cmd
}

func runCollect(opts *CollectOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd.OutOrStdout())
	logger := opts.logger()
	ctx := context.Background()

	settings, err := collectSettings(opts, cmd)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeSettings, err.Error(), nil)
	}

	doc, lerr := LoadDocument(path)
	if lerr != nil {
		return lerr.fail(f)
	}
	if doc.Kind != compiler.KindTimeline {
		return f.Fail(ExitCommandError, ErrCodeBadArgs, fmt.Sprintf("collect needs a timeline document, got %s", doc.Kind), nil)
	}
	tl := doc.Timeline

	source, err := filepath.Abs(path)
	if err != nil {
		source = path
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
	}
	defer st.Close()

	ledger, err := store.NewLedger(ctx, st)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
	}

	collector := collect.NewShotCollector(settings, collect.WithLogger(logger))
	collected, err := collector.CollectTimeline(tl)
	if err != nil {
		return f.Fail(ExitFailure, compiler.ErrorCode(err), err.Error(), nil)
	}

	result := CollectResult{
		Timeline: tl.Name,
		Shots:    []CollectedShot{},
		Skipped:  []SkippedShot{},
	}
	var hash string
	err = ledger.InTx(ctx, func(tx *store.Ledger) error {
		sess, err := tx.BeginSession(ctx, source, tl.Name, settings.AsMap())
		if err != nil {
			return err
		}
		result.Session, hash = sess.ID, sess.Hash

		for _, inst := range collected.Instances {
			_, inserted, err := tx.RecordShot(ctx, sess.ID, inst.Name, inst.Track, inst.AsMap())
			if err != nil {
				return err
			}
			result.Shots = append(result.Shots, CollectedShot{
				Name:       inst.Name,
				Track:      inst.Track,
				FrameStart: inst.FrameStart,
				FrameEnd:   inst.FrameEnd,
				MediaIn:    inst.MediaIn,
				MediaOut:   inst.MediaOut,
				HasAudio:   inst.HasAudio,
				Trim:       inst.TrimmingRange != nil,
				Inserted:   inserted,
			})
		}
		for _, sc := range collected.Skipped {
			skip := SkippedShot{Clip: sc.Name, Track: sc.Track, Code: sc.Code(), Message: sc.Err.Error()}
			if err := tx.RecordSkipped(ctx, sess.ID, skip.Clip, skip.Track, skip.Code, skip.Message); err != nil {
				return err
			}
			result.Skipped = append(result.Skipped, skip)
		}
		return nil
	})
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
	}

	result.Previous = countEarlier(ctx, st, hash, logger)
	if result.Previous > 0 {
		logger.Info("source already collected with these settings", "source", source, "sessions", result.Previous)
	}

	if opts.Strict && len(result.Skipped) > 0 {
		first := result.Skipped[0]
		return f.Fail(ExitFailure, compiler.ErrorCode(collected.Skipped[0].Err),
			fmt.Sprintf("%d clip(s) skipped, first %s: %s", len(result.Skipped), first.Clip, first.Message), result)
	}

	return f.Result(result, func(w io.Writer) {
		fmt.Fprintf(w, "Session %s: %s\n", result.Session, result.Timeline)
		for _, s := range result.Shots {
			fmt.Fprintf(w, "  ✓ %-12s %s  %d-%d  media %d-%d", s.Name, s.Track, s.FrameStart, s.FrameEnd, s.MediaIn, s.MediaOut)
			if s.Trim {
				fmt.Fprint(w, "  trim")
			}
			if s.HasAudio {
				fmt.Fprint(w, "  audio")
			}
			fmt.Fprintln(w)
		}
		for _, s := range result.Skipped {
			fmt.Fprintf(w, "  ✗ %-12s %s  %s\n", s.Clip, s.Track, s.Code)
		}
		fmt.Fprintf(w, "%d shot(s) collected, %d skipped\n", len(result.Shots), len(result.Skipped))
	})
}

type sessionFinder interface {
	FindSessionsByHash(ctx context.Context, hash string) ([]store.Session, error)
}

// countEarlier returns how many sessions before the latest one share hash.
// A failed lookup is logged and counts as none.
func countEarlier(ctx context.Context, finder sessionFinder, hash string, logger *slog.Logger) int {
	sessions, err := finder.FindSessionsByHash(ctx, hash)
	if err != nil {
		logger.Warn("could not count earlier sessions", "hash", hash, "error", err)
		return 0
	}
	return max(0, len(sessions)-1)
}

// collectSettings loads the settings file, if any, and applies flag
// overrides.
func collectSettings(opts *CollectOptions, cmd *cobra.Command) (collect.Settings, error) {
	settings := collect.DefaultSettings()
	if opts.Settings != "" {
		var err error
		settings, err = collect.LoadSettingsFile(opts.Settings)
		if err != nil {
			return collect.Settings{}, err
		}
	}

	if cmd.Flags().Changed("handle-start") {
		settings.HandleStart = opts.HandleStart
	}
	if cmd.Flags().Changed("handle-end") {
		settings.HandleEnd = opts.HandleEnd
	}
	if cmd.Flags().Changed("review") {
		settings.Review = opts.Review
	}

	if err := settings.Validate(); err != nil {
		return collect.Settings{}, fmt.Errorf("invalid settings: %w", err)
	}
	return settings, nil
}
