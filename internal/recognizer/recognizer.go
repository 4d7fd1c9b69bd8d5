package recognizer

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ironsheep/image-patterns-mcp/internal/levels"
	"github.com/ironsheep/image-patterns-mcp/internal/links"
	"github.com/ironsheep/image-patterns-mcp/internal/ranking"
	"github.com/ironsheep/image-patterns-mcp/internal/sequence"
)

// ErrEmptyImage is returned for images with no pixels.
var ErrEmptyImage = errors.New("image has no pixels")

// Source is a read-only grid of symbols.
type Source interface {
	Width() int
	Height() int
	SymbolAt(x, y int) links.Symbol
}

// Options configures a recognition run.
type Options struct {
	// MaxLinks caps the relation store; 0 means unlimited.
	MaxLinks int

	// Logger receives progress records. Nil uses slog.Default.
	Logger *slog.Logger
}

// Result is the outcome of one recognition run.
type Result struct {
	RunID   uuid.UUID
	Width   int
	Height  int
	Rows    []links.Element
	Columns []links.Element
	Levels  *levels.Matrix
	Grid    *levels.Grid
	Session *Session
	Elapsed time.Duration
}

// Recognize runs the full pipeline over src: index every row then every
// column, compress all of them, anchor the roots, then score every pixel.
// Any failure aborts the run; there are no partial results.
func Recognize(src Source, opts Options) (*Result, error) {
	width, height := src.Width(), src.Height()
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmptyImage, width, height)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to create run id: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "recognizer"), slog.String("run_id", id.String()))

	start := time.Now()
	rows := make([][]links.Element, height)
	for y := range rows {
		rows[y] = Row(src, y)
	}
	cols := make([][]links.Element, width)
	for x := range cols {
		cols[x] = Column(src, x)
	}

	var merges int
	session := NewSession(opts.MaxLinks, sequence.WithTrace(func(sequence.Merge) { merges++ }))

	logger.Debug("indexing", "width", width, "height", height)
	for y, seq := range rows {
		if err := session.Index(seq); err != nil {
			return nil, fmt.Errorf("failed to index row %d: %w", y, err)
		}
	}
	for x, seq := range cols {
		if err := session.Index(seq); err != nil {
			return nil, fmt.Errorf("failed to index column %d: %w", x, err)
		}
	}
	session.CloseIndexing()
	logger.Debug("indexed", "links", session.store.Len(), "pairs", session.cache.Len())

	rowRoots := make([]links.Element, height)
	for y, seq := range rows {
		if rowRoots[y], err = session.Compress(seq); err != nil {
			return nil, fmt.Errorf("failed to compress row %d: %w", y, err)
		}
	}
	colRoots := make([]links.Element, width)
	for x, seq := range cols {
		if colRoots[x], err = session.Compress(seq); err != nil {
			return nil, fmt.Errorf("failed to compress column %d: %w", x, err)
		}
	}
	// Anchoring changes occurrence statistics, so it waits until every
	// sequence has been compressed against the same state.
	for _, root := range append(append([]links.Element(nil), rowRoots...), colRoots...) {
		if err := session.Anchor(root); err != nil {
			return nil, err
		}
	}
	logger.Debug("compressed", "links", session.store.Len(), "merges", merges)

	matrix, grid, err := levels.NewBuilder(session.store, session.cache).Build(rowRoots, colRoots)
	if err != nil {
		return nil, fmt.Errorf("failed to build levels: %w", err)
	}

	res := &Result{
		RunID:   id,
		Width:   width,
		Height:  height,
		Rows:    rowRoots,
		Columns: colRoots,
		Levels:  matrix,
		Grid:    grid,
		Session: session,
		Elapsed: time.Since(start),
	}
	logger.Info("recognized",
		"width", width,
		"height", height,
		"links", session.store.Len(),
		"max_level", matrix.Max(),
		"elapsed", res.Elapsed,
	)
	return res, nil
}

// Row returns row y of src as a sequence.
func Row(src Source, y int) []links.Element {
	seq := make([]links.Element, src.Width())
	for x := range seq {
		seq[x] = links.SymbolElement(src.SymbolAt(x, y))
	}
	return seq
}

// Column returns column x of src as a sequence.
func Column(src Source, x int) []links.Element {
	seq := make([]links.Element, src.Height())
	for y := range seq {
		seq[y] = links.SymbolElement(src.SymbolAt(x, y))
	}
	return seq
}

// Ranker returns a ranker over the run's links.
func (r *Result) Ranker() *ranking.Ranker {
	return ranking.NewRanker(r.Session.store, r.Session.cache)
}

// RowLevels returns the local level of every pixel in row y.
func (r *Result) RowLevels(y int) ([]uint64, error) {
	if y < 0 || y >= r.Height {
		return nil, fmt.Errorf("row %d out of range [0, %d)", y, r.Height)
	}
	seq, err := r.Session.Expand(r.Rows[y])
	if err != nil {
		return nil, fmt.Errorf("failed to expand row %d: %w", y, err)
	}
	return sequence.LocalLevels(r.Session.cache, seq), nil
}

// ColumnLevels returns the local level of every pixel in column x.
func (r *Result) ColumnLevels(x int) ([]uint64, error) {
	if x < 0 || x >= r.Width {
		return nil, fmt.Errorf("column %d out of range [0, %d)", x, r.Width)
	}
	seq, err := r.Session.Expand(r.Columns[x])
	if err != nil {
		return nil, fmt.Errorf("failed to expand column %d: %w", x, err)
	}
	return sequence.LocalLevels(r.Session.cache, seq), nil
}
