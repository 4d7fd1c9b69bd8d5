package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ironsheep/image-patterns-mcp/internal/config"
	"github.com/ironsheep/image-patterns-mcp/internal/detection"
	"github.com/ironsheep/image-patterns-mcp/internal/imaging"
	"github.com/ironsheep/image-patterns-mcp/internal/levels"
	"github.com/ironsheep/image-patterns-mcp/internal/pipeline"
)

// RecognizeOptions holds flags for the recognize command.
type RecognizeOptions struct {
	*RootOptions

	SaveLinks bool
	LinksPath string

	MaxDimension int
	MaxLinks     int
	Region       string
	Quadrant     string

	Top    int
	RankBy string

	Hotspots  bool
	Threshold uint64
	MinArea   int

	Heatmap string
	Overlay bool
}

// RecognizeReport is the output of the recognize command.
type RecognizeReport struct {
	pipeline.Summary
	Levels      *levels.Matrix            `json:"levels"`
	RankBy      string                    `json:"rank_by,omitempty"`
	Ranking     []pipeline.RankedLink     `json:"ranking,omitempty"`
	Hotspots    *detection.HotspotsResult `json:"hotspots,omitempty"`
	HeatmapPath string                    `json:"heatmap_path,omitempty"`
}

// NewRecognizeCommand creates the recognize command.
func NewRecognizeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RecognizeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "recognize <image>",
		Short: "Compute the pattern level matrix of an image",
		Long: `Recognize patterns in an image and print its level matrix.

Each distinct colour becomes a symbol. Rows and columns are compressed
into links, most frequent pairs first. Each interior pixel's level is the
highest frequency among the pairs its row and column components form with
the neighbouring pixels' components. Pixels on the image edge stay unset.

Large images are downscaled first (see --max-dimension); use --region or
--quadrant to analyze part of an image.

Examples:
  image-patterns recognize tiles.png
  image-patterns recognize tiles.png --top 5 --rank-by frequency
  image-patterns recognize tiles.png --hotspots --heatmap levels.png --overlay
  image-patterns recognize tiles.png --save-links --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecognize(cmd, opts, args[0])
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&opts.SaveLinks, "save-links", false, "save the run next to the image as <image>.links")
	flags.StringVar(&opts.LinksPath, "links-path", "", "save the run to this snapshot file")
	flags.IntVar(&opts.MaxDimension, "max-dimension", config.DefaultMaxDimension, "downscale so neither side exceeds this (0 disables)")
	flags.IntVar(&opts.MaxLinks, "max-links", 0, "maximum number of links per run (0 means unlimited)")
	flags.StringVar(&opts.Region, "region", "", "analyze only x1,y1,x2,y2")
	flags.StringVar(&opts.Quadrant, "quadrant", "", "analyze only a named region (top-left, center, ...)")
	flags.IntVar(&opts.Top, "top", 10, "number of ranked links to report (0 disables ranking)")
	flags.StringVar(&opts.RankBy, "rank-by", pipeline.ByUsage, "ranking statistic (usage|frequency)")
	flags.BoolVar(&opts.Hotspots, "hotspots", false, "report connected regions of high level")
	flags.Uint64Var(&opts.Threshold, "threshold", 0, "hotspot level threshold (0 derives it from the maximum level)")
	flags.IntVar(&opts.MinArea, "min-area", 1, "smallest hotspot area in pixels")
	flags.StringVar(&opts.Heatmap, "heatmap", "", "write the level heatmap to this PNG file")
	flags.BoolVar(&opts.Overlay, "overlay", false, "draw the heatmap over the analyzed image")

	return cmd
}

func runRecognize(cmd *cobra.Command, opts *RecognizeOptions, path string) error {
	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	logger := newLogger(cfg, cmd.ErrOrStderr())

	if _, err := os.Stat(path); err != nil {
		return WrapExitError(ExitCommandError, "image not accessible", err)
	}

	req := pipeline.Request{
		Path:         path,
		Prepare:      cfg.PrepareOptions(),
		MaxLinks:     cfg.MaxLinks,
		Snapshot:     cfg.Snapshot.Enabled,
		SnapshotPath: cfg.Snapshot.Path,
	}

	flags := cmd.Flags()
	if flags.Changed("max-dimension") {
		if opts.MaxDimension < 0 {
			return NewExitError(ExitCommandError, "--max-dimension must be non-negative")
		}
		req.Prepare.MaxDimension = opts.MaxDimension
	}
	if flags.Changed("max-links") {
		if opts.MaxLinks < 0 {
			return NewExitError(ExitCommandError, "--max-links must be non-negative")
		}
		req.MaxLinks = opts.MaxLinks
	}
	if opts.Quadrant != "" {
		req.Prepare.Quadrant = opts.Quadrant
		req.Prepare.Region = nil
	}
	if opts.Region != "" {
		region, err := parseRegion(opts.Region)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --region", err)
		}
		req.Prepare.Region = region
	}
	if opts.SaveLinks || opts.LinksPath != "" {
		req.Snapshot = true
	}
	if opts.LinksPath != "" {
		req.SnapshotPath = opts.LinksPath
	}
	if opts.RankBy != pipeline.ByUsage && opts.RankBy != pipeline.ByFrequency {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid --rank-by %q: must be usage or frequency", opts.RankBy))
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := pipeline.Run(ctx, imaging.NewImageCache(), req, logger)
	if err != nil {
		return WrapExitError(ExitFailure, "recognition failed", err)
	}

	report := &RecognizeReport{
		Summary: a.Summary(),
		Levels:  a.Result.Levels,
	}

	if opts.Top > 0 {
		ranked, err := a.Rank(opts.RankBy, opts.Top)
		if err != nil {
			return WrapExitError(ExitFailure, "ranking failed", err)
		}
		report.RankBy = opts.RankBy
		report.Ranking = ranked
	}

	if opts.Hotspots {
		threshold, minArea := cfg.Hotspots.Threshold, cfg.Hotspots.MinArea
		if flags.Changed("threshold") {
			threshold = opts.Threshold
		}
		if flags.Changed("min-area") {
			minArea = opts.MinArea
		}
		hotspots, err := detection.DetectHotspots(a.Result.Levels, threshold, minArea)
		if err != nil {
			return WrapExitError(ExitCommandError, "hotspot detection failed", err)
		}
		report.Hotspots = hotspots
	}

	if opts.Heatmap != "" {
		hopts := cfg.HeatmapOptions()
		if opts.Overlay {
			hopts.Background = a.Image
		}
		if err := imaging.SaveHeatmap(opts.Heatmap, a.Result.Levels, hopts); err != nil {
			return WrapExitError(ExitFailure, "failed to write heatmap", err)
		}
		report.HeatmapPath = opts.Heatmap
	}

	logger.Debug("recognize finished",
		"run_id", report.RunID,
		"links", report.Links,
		"max_level", report.MaxLevel,
	)
	return newPrinter(opts.RootOptions, cmd).Result(report)
}

// parseRegion reads "x1,y1,x2,y2".
func parseRegion(s string) (*imaging.Region, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("want x1,y1,x2,y2, got %q", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("coordinate %d: %w", i+1, err)
		}
		v[i] = n
	}
	r := imaging.Region{X1: v[0], Y1: v[1], X2: v[2], Y2: v[3]}
	if r.Empty() {
		return nil, fmt.Errorf("region %q covers no pixels", s)
	}
	return &r, nil
}

// WriteText renders the report for a terminal.
func (r *RecognizeReport) WriteText(w io.Writer) error {
	p := message.NewPrinter(language.English)

	p.Fprintf(w, "%s: %s (source %s)\n", r.Path,
		size(r.Width, r.Height), size(r.SourceWidth, r.SourceHeight))
	p.Fprintf(w, "run %s, %d ms\n", r.RunID, r.ElapsedMS)
	p.Fprintf(w, "%d symbols, %d links, %d pairs, max level %d, %d of %d cells defined\n\n",
		r.Symbols, r.Links, r.Pairs, r.MaxLevel, r.DefinedCells, r.Width*r.Height)

	if err := r.Levels.Render(w); err != nil {
		return err
	}

	if len(r.Ranking) > 0 {
		p.Fprintf(w, "\ntop links by %s:\n", r.RankBy)
		for _, l := range r.Ranking {
			p.Fprintf(w, "  %-8s %s %s  usages %d, frequency %d\n",
				l.Link.String(), l.Relation.Source.String(), l.Relation.Target.String(), l.Usages, l.Frequency)
		}
	}

	if r.Hotspots != nil {
		p.Fprintf(w, "\n%d hotspots at level %d or more:\n", r.Hotspots.Count, r.Hotspots.Threshold)
		for _, h := range r.Hotspots.Hotspots {
			b := h.Bounds
			p.Fprintf(w, "  %s area %d, peak %d at %s, mean %.2f\n",
				fmt.Sprintf("(%d,%d)-(%d,%d)", b.X1, b.Y1, b.X2, b.Y2),
				h.Area, h.MaxLevel, fmt.Sprintf("(%d,%d)", h.Peak.X, h.Peak.Y), h.MeanLevel)
		}
	}

	if r.SnapshotPath != "" {
		p.Fprintf(w, "\nsnapshot: %s\n", r.SnapshotPath)
	}
	if r.HeatmapPath != "" {
		p.Fprintf(w, "heatmap: %s\n", r.HeatmapPath)
	}
	return nil
}

// size formats dimensions without digit grouping.
func size(w, h int) string {
	return fmt.Sprintf("%dx%d", w, h)
}
