package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/otioremap/internal/shotquery"
	"github.com/roach88/otioremap/internal/store"
)

// SessionsOptions holds flags for the sessions command.
type SessionsOptions struct {
	*RootOptions
	Database string
	Hash     string
	Where    []string
}

// SessionSummary is one ledger session in a listing.
type SessionSummary struct {
	ID       string `json:"id"`
	Hash     string `json:"hash"`
	Source   string `json:"source"`
	Timeline string `json:"timeline"`
	Seq      int64  `json:"seq"`
	Shots    int    `json:"shots"`
	Skipped  int    `json:"skipped"`
}

// SessionDetail is a session with its recorded shots.
type SessionDetail struct {
	SessionSummary
	Settings map[string]any      `json:"settings"`
	Shots    []store.Shot        `json:"shots"`
	Skipped  []store.SkippedClip `json:"skipped"`
}

// NewSessionsCommand creates the sessions command.
func NewSessionsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SessionsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sessions [session-id]",
		Short: "List ledger sessions or show one session's shots",
		Long: `List the collect sessions recorded in a ledger, oldest first, or
show the shots and skipped clips of one session.

Examples:
  otioremap sessions --db ./ledger.db
  otioremap sessions --db ./ledger.db --hash 3f2a...
  otioremap sessions --db ./ledger.db 0191d3c2-... --format json
  otioremap sessions --db ./ledger.db 0191d3c2-... --where hasAudio=true --where families~=trim`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return runSessionDetail(opts, args[0], cmd)
			}
			return runSessions(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite ledger (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Hash, "hash", "", "only sessions with this source/settings hash")
	cmd.Flags().StringArrayVar(&opts.Where, "where", nil, "filter a session's shots (field=value, field!=value, field~=value)")

	return cmd
}

// openLedger opens an existing ledger. Opening would create a missing
// database, so its absence is checked first.
func openLedger(f *OutputFormatter, path string) (*store.Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("database not found: %s", path), nil)
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
	}
	return st, nil
}

func runSessions(opts *SessionsOptions, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd.OutOrStdout())
	ctx := context.Background()

	if len(opts.Where) > 0 {
		return f.Fail(ExitCommandError, ErrCodeBadArgs, "--where needs a session id", nil)
	}

	st, err := openLedger(f, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	var sessions []store.Session
	if opts.Hash != "" {
		sessions, err = st.FindSessionsByHash(ctx, opts.Hash)
	} else {
		sessions, err = st.ReadSessions(ctx)
	}
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
	}

	summaries := make([]SessionSummary, 0, len(sessions))
	for _, sess := range sessions {
		summary, err := summarize(ctx, st, sess)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
		}
		summaries = append(summaries, summary)
	}

	return f.Result(summaries, func(w io.Writer) {
		if len(summaries) == 0 {
			fmt.Fprintln(w, "No sessions found.")
			return
		}
		for _, s := range summaries {
			fmt.Fprintf(w, "%s  %-16s %3d shot(s) %3d skipped  %s\n", s.ID, s.Timeline, s.Shots, s.Skipped, s.Source)
		}
	})
}

func runSessionDetail(opts *SessionsOptions, id string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd.OutOrStdout())
	ctx := context.Background()

	filter, err := shotquery.Parse(opts.Where)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeBadArgs, err.Error(), nil)
	}

	st, err := openLedger(f, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	sess, err := st.ReadSession(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return f.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("session not found: %s", id), nil)
	}
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
	}

	summary, err := summarize(ctx, st, sess)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
	}
	shots, err := st.FindShots(ctx, id, filter)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
	}
	skipped, err := st.ReadSkippedClips(ctx, id)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
	}

	detail := SessionDetail{
		SessionSummary: summary,
		Settings:       sess.Settings,
		Shots:          shots,
		Skipped:        skipped,
	}
	return f.Result(detail, func(w io.Writer) {
		fmt.Fprintf(w, "Session %s\n", sess.ID)
		fmt.Fprintf(w, "  source:   %s\n", sess.Source)
		fmt.Fprintf(w, "  timeline: %s\n", sess.Timeline)
		fmt.Fprintf(w, "  hash:     %s\n", sess.Hash)
		for _, shot := range shots {
			fmt.Fprintf(w, "  ✓ %-12s %s  %v-%v\n", shot.Name, shot.Track, shot.Data["frameStart"], shot.Data["frameEnd"])
		}
		for _, sc := range skipped {
			fmt.Fprintf(w, "  ✗ %-12s %s  %s: %s\n", sc.Clip, sc.Track, sc.Code, sc.Message)
		}
	})
}

func summarize(ctx context.Context, st *store.Store, sess store.Session) (SessionSummary, error) {
	shots, err := st.ReadShots(ctx, sess.ID)
	if err != nil {
		return SessionSummary{}, err
	}
	skipped, err := st.ReadSkippedClips(ctx, sess.ID)
	if err != nil {
		return SessionSummary{}, err
	}
	return SessionSummary{
		ID:       sess.ID,
		Hash:     sess.Hash,
		Source:   sess.Source,
		Timeline: sess.Timeline,
		Seq:      sess.Seq,
		Shots:    len(shots),
		Skipped:  len(skipped),
	}, nil
}
