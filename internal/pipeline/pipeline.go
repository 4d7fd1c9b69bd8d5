package pipeline

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/ironsheep/image-patterns-mcp/internal/imaging"
	"github.com/ironsheep/image-patterns-mcp/internal/recognizer"
	"github.com/ironsheep/image-patterns-mcp/internal/snapshot"
)

// Request describes one analysis.
type Request struct {
	// Path is the image file.
	Path string

	// Prepare selects and downscales the analysed area.
	Prepare imaging.PrepareOptions

	// MaxLinks caps the relation store; 0 means unlimited.
	MaxLinks int

	// Snapshot writes the run to SnapshotPath, or to snapshot.DefaultPath
	// of the image when SnapshotPath is empty.
	Snapshot     bool
	SnapshotPath string
}

// Analysis is a finished run together with the image it was computed on.
type Analysis struct {
	Path         string
	Image        image.Image
	Raster       *imaging.Raster
	Result       *recognizer.Result
	SourceWidth  int
	SourceHeight int
	SnapshotPath string
}

// Summary is the reportable outline of an analysis.
type Summary struct {
	RunID        string `json:"run_id"`
	Path         string `json:"path"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	SourceWidth  int    `json:"source_width"`
	SourceHeight int    `json:"source_height"`
	Symbols      int    `json:"symbols"`
	Links        int    `json:"links"`
	Pairs        int    `json:"pairs"`
	MaxLevel     uint64 `json:"max_level"`
	DefinedCells int    `json:"defined_cells"`
	ElapsedMS    int64  `json:"elapsed_ms"`
	SnapshotPath string `json:"snapshot_path,omitempty"`
}

// Run loads req.Path through cache and analyses it.
func Run(ctx context.Context, cache *imaging.ImageCache, req Request, logger *slog.Logger) (*Analysis, error) {
	if logger == nil {
		logger = slog.Default()
	}

	src, err := cache.Load(req.Path)
	if err != nil {
		return nil, err
	}
	img, err := imaging.Prepare(src, req.Prepare)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare %s: %w", req.Path, err)
	}

	raster := imaging.NewRaster(img)
	logger.Debug("prepared image",
		"path", req.Path,
		"source", fmt.Sprintf("%dx%d", src.Bounds().Dx(), src.Bounds().Dy()),
		"width", raster.Width(),
		"height", raster.Height(),
	)

	res, err := recognizer.Recognize(raster, recognizer.Options{MaxLinks: req.MaxLinks, Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("failed to recognize %s: %w", req.Path, err)
	}

	a := &Analysis{
		Path:         req.Path,
		Image:        img,
		Raster:       raster,
		Result:       res,
		SourceWidth:  src.Bounds().Dx(),
		SourceHeight: src.Bounds().Dy(),
	}

	if req.Snapshot {
		path := req.SnapshotPath
		if path == "" {
			path = snapshot.DefaultPath(req.Path)
		}
		if err := save(ctx, path, a); err != nil {
			return nil, err
		}
		a.SnapshotPath = path
		logger.Info("saved snapshot", "path", path, "run_id", res.RunID.String())
	}
	return a, nil
}

func save(ctx context.Context, path string, a *Analysis) error {
	store, err := snapshot.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open snapshot %s: %w", path, err)
	}
	defer store.Close()

	if err := store.Save(ctx, a.Path, a.Result); err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", path, err)
	}
	return nil
}

// Summary outlines the analysis.
func (a *Analysis) Summary() Summary {
	res := a.Result
	return Summary{
		RunID:        res.RunID.String(),
		Path:         a.Path,
		Width:        res.Width,
		Height:       res.Height,
		SourceWidth:  a.SourceWidth,
		SourceHeight: a.SourceHeight,
		Symbols:      len(a.Raster.Palette()),
		Links:        res.Session.Store().Len(),
		Pairs:        res.Session.Cache().Len(),
		MaxLevel:     res.Levels.Max(),
		DefinedCells: res.Levels.Defined(),
		ElapsedMS:    res.Elapsed.Milliseconds(),
		SnapshotPath: a.SnapshotPath,
	}
}
