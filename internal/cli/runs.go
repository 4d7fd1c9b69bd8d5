package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ironsheep/image-patterns-mcp/internal/snapshot"
)

// RunsOptions holds flags for the runs command.
type RunsOptions struct {
	*RootOptions
	RunID string // "latest" or a run id; empty lists all runs
	Top   int
}

// RunsReport lists the runs stored in a snapshot file.
type RunsReport struct {
	Path string             `json:"path"`
	Runs []snapshot.Summary `json:"runs"`
}

// RunReport is one stored run with its most used links.
type RunReport struct {
	Path string `json:"path"`
	*snapshot.Snapshot
	TopLinks []snapshot.LinkRecord `json:"top_links"`
}

// NewRunsCommand creates the runs command.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "runs <links-file>",
		Short: "Inspect runs saved in a snapshot file",
		Long: `Inspect recognition runs saved with --save-links.

Without --run every stored run is listed, oldest first. With --run the
level matrix and most used links of one run are shown; pass "latest" for
the newest run.

Examples:
  image-patterns runs tiles.links
  image-patterns runs tiles.links --run latest --top 5
  image-patterns runs tiles.links --run 0190f5c2-... --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuns(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.RunID, "run", "", `run id to show, or "latest"`)
	cmd.Flags().IntVar(&opts.Top, "top", 10, "number of links to show with --run")

	return cmd
}

func runRuns(cmd *cobra.Command, opts *RunsOptions, path string) error {
	// snapshot.Open creates missing files
	if _, err := os.Stat(path); err != nil {
		return WrapExitError(ExitCommandError, "snapshot not found", err)
	}
	if opts.Top < 0 {
		return NewExitError(ExitCommandError, "--top must be non-negative")
	}

	store, err := snapshot.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open snapshot", err)
	}
	defer store.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := newPrinter(opts.RootOptions, cmd)

	if opts.RunID == "" {
		runs, err := store.Runs(ctx)
		if err != nil {
			return WrapExitError(ExitFailure, "failed to list runs", err)
		}
		return out.Result(&RunsReport{Path: path, Runs: runs})
	}

	snap, err := loadRun(ctx, store, opts.RunID)
	if err != nil {
		return err
	}
	top, err := store.TopLinks(ctx, snap.RunID, opts.Top)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to read links", err)
	}
	return out.Result(&RunReport{Path: path, Snapshot: snap, TopLinks: top})
}

func loadRun(ctx context.Context, store *snapshot.Store, ref string) (*snapshot.Snapshot, error) {
	var (
		snap *snapshot.Snapshot
		err  error
	)
	if ref == "latest" {
		snap, err = store.Latest(ctx)
	} else {
		id, perr := uuid.Parse(ref)
		if perr != nil {
			return nil, WrapExitError(ExitCommandError, "invalid run id", perr)
		}
		snap, err = store.Load(ctx, id)
	}
	if errors.Is(err, snapshot.ErrRunNotFound) {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("no run %s", ref), err)
	}
	if err != nil {
		return nil, WrapExitError(ExitFailure, "failed to load run", err)
	}
	return snap, nil
}

// WriteText renders the run list for a terminal.
func (r *RunsReport) WriteText(w io.Writer) error {
	p := message.NewPrinter(language.English)
	p.Fprintf(w, "%s: %d runs\n", r.Path, len(r.Runs))
	for _, run := range r.Runs {
		p.Fprintf(w, "  %s  %s  %s  %s  %d links, max level %d\n",
			run.RunID.String(), run.CreatedAt.Local().Format(time.DateTime),
			run.ImagePath, size(run.Width, run.Height), run.Links, run.MaxLevel)
	}
	return nil
}

// WriteText renders one run for a terminal.
func (r *RunReport) WriteText(w io.Writer) error {
	p := message.NewPrinter(language.English)
	p.Fprintf(w, "run %s of %s (%s)\n", r.RunID.String(), r.ImagePath, size(r.Width, r.Height))
	p.Fprintf(w, "created %s, %d links, %d pairs, max level %d\n\n",
		r.CreatedAt.Local().Format(time.DateTime), r.Links, r.Pairs, r.MaxLevel)

	if err := r.Levels.Render(w); err != nil {
		return err
	}

	if len(r.TopLinks) > 0 {
		p.Fprintf(w, "\ntop links by usage:\n")
		for _, l := range r.TopLinks {
			p.Fprintf(w, "  %-8s %s %s  usages %d, frequency %d\n",
				l.Link.String(), l.Relation.Source.String(), l.Relation.Target.String(), l.Usages, l.Frequency)
		}
	}
	return nil
}
