package pipeline

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/image-patterns-mcp/internal/imaging"
	"github.com/ironsheep/image-patterns-mcp/internal/snapshot"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

// writeStripes writes a PNG of alternating red and blue rows.
func writeStripes(t *testing.T, width, height int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		c := color.NRGBA{255, 0, 0, 255}
		if y%2 == 1 {
			c = color.NRGBA{0, 0, 255, 255}
		}
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, c)
		}
	}

	path := filepath.Join(t.TempDir(), "stripes.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func TestRun(t *testing.T) {
	path := writeStripes(t, 4, 4)

	a, err := Run(context.Background(), imaging.NewImageCache(), Request{Path: path}, quiet)
	require.NoError(t, err)

	sum := a.Summary()
	assert.Equal(t, path, sum.Path)
	assert.Equal(t, 4, sum.Width)
	assert.Equal(t, 4, sum.Height)
	assert.Equal(t, 4, sum.SourceWidth)
	assert.Equal(t, 2, sum.Symbols)
	assert.Equal(t, uint64(8), sum.MaxLevel)
	assert.Equal(t, 4, sum.DefinedCells)
	assert.Equal(t, a.Result.Session.Store().Len(), sum.Links)
	assert.Empty(t, sum.SnapshotPath)
	assert.NotEmpty(t, sum.RunID)

	_, err = os.Stat(snapshot.DefaultPath(path))
	assert.True(t, os.IsNotExist(err), "no snapshot unless requested")
}

func TestRun_PrepareAndSnapshot(t *testing.T) {
	path := writeStripes(t, 8, 8)
	ctx := context.Background()

	a, err := Run(ctx, imaging.NewImageCache(), Request{
		Path:     path,
		Prepare:  imaging.PrepareOptions{Quadrant: "top-left"},
		Snapshot: true,
	}, quiet)
	require.NoError(t, err)

	assert.Equal(t, 4, a.Result.Width)
	assert.Equal(t, 8, a.SourceWidth)
	assert.Equal(t, snapshot.DefaultPath(path), a.SnapshotPath)

	store, err := snapshot.Open(a.SnapshotPath)
	require.NoError(t, err)
	defer store.Close()

	snap, err := store.Load(ctx, a.Result.RunID)
	require.NoError(t, err)
	assert.Equal(t, path, snap.ImagePath)
	assert.Equal(t, a.Result.Levels.Rows(), snap.Levels.Rows())
}

func TestRun_Errors(t *testing.T) {
	cache := imaging.NewImageCache()
	ctx := context.Background()

	_, err := Run(ctx, cache, Request{Path: filepath.Join(t.TempDir(), "missing.png")}, quiet)
	assert.Error(t, err)

	path := writeStripes(t, 4, 4)
	_, err = Run(ctx, cache, Request{Path: path, Prepare: imaging.PrepareOptions{Quadrant: "middle"}}, quiet)
	assert.ErrorContains(t, err, "failed to prepare")

	_, err = Run(ctx, cache, Request{Path: path, MaxLinks: 1}, quiet)
	assert.ErrorContains(t, err, "failed to recognize")
}

func TestRank(t *testing.T) {
	a, err := Run(context.Background(), imaging.NewImageCache(), Request{Path: writeStripes(t, 4, 4)}, quiet)
	require.NoError(t, err)

	byUsage, err := a.Rank(ByUsage, 3)
	require.NoError(t, err)
	require.Len(t, byUsage, 3)

	// Every column is red-blue-red-blue and shares one anchored root.
	assert.GreaterOrEqual(t, byUsage[0].Usages, uint64(4))
	for i, r := range byUsage {
		assert.Equal(t, r.Usages, r.Value)
		if i > 0 {
			assert.LessOrEqual(t, r.Value, byUsage[i-1].Value)
		}
	}

	byFreq, err := a.Rank(ByFrequency, 0)
	require.NoError(t, err)
	assert.Len(t, byFreq, a.Result.Session.Store().Len())
	for _, r := range byFreq {
		assert.Equal(t, r.Frequency, r.Value)
	}

	_, err = a.Rank("size", 3)
	assert.Error(t, err)
}
