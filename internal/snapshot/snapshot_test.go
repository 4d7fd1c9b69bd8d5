package snapshot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/image-patterns-mcp/internal/levels"
	"github.com/ironsheep/image-patterns-mcp/internal/links"
	"github.com/ironsheep/image-patterns-mcp/internal/recognizer"
)

type grid [][]uint32

func (g grid) Width() int                     { return len(g[0]) }
func (g grid) Height() int                    { return len(g) }
func (g grid) SymbolAt(x, y int) links.Symbol { return links.Symbol(g[y][x]) }

// createTestStore opens a fresh snapshot database in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "image.links"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func recognize(t *testing.T, g grid) *recognizer.Result {
	t.Helper()
	res, err := recognizer.Recognize(g, recognizer.Options{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	return res
}

func stripes() grid {
	return grid{
		{1, 1, 1, 1},
		{2, 2, 2, 2},
		{1, 1, 1, 1},
		{2, 2, 2, 2},
	}
}

func TestDefaultPath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"/tmp/photo.png", "/tmp/photo.links"},
		{"diagram.tar.gz", "diagram.tar.links"},
		{"noext", "noext.links"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DefaultPath(tt.in), tt.in)
	}
}

func TestOpen_CreatesDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.links")

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	require.NoError(t, err)

	version, err := s.userVersion()
	require.NoError(t, err)
	assert.Equal(t, schemaVersion, version)
}

func TestOpen_ConnectionSettings(t *testing.T) {
	s := createTestStore(t)

	var mode string
	require.NoError(t, s.db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)

	var fk int
	require.NoError(t, s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestOpen_RejectsNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.links")
	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion+1))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = Open(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "newer than supported")
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.links")
	for i := 0; i < 3; i++ {
		s, err := Open(path)
		require.NoError(t, err, "iteration %d", i)
		require.NoError(t, s.Close())
	}
}

func TestOpen_BadPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/image.links")
	assert.Error(t, err)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	res := recognize(t, stripes())

	require.NoError(t, s.Save(ctx, "stripes.png", res))

	snap, err := s.Load(ctx, res.RunID)
	require.NoError(t, err)

	assert.Equal(t, res.RunID, snap.RunID)
	assert.Equal(t, "stripes.png", snap.ImagePath)
	assert.Equal(t, 4, snap.Width)
	assert.Equal(t, 4, snap.Height)
	assert.Equal(t, res.Session.Store().Len(), snap.Links)
	assert.Equal(t, len(res.Session.Cache().Pairs()), snap.Pairs)
	assert.Equal(t, res.Levels.Max(), snap.MaxLevel)
	assert.False(t, snap.CreatedAt.IsZero())

	assert.Equal(t, res.Rows, snap.Rows)
	assert.Equal(t, res.Columns, snap.Columns)
	assert.Equal(t, res.Levels.Rows(), snap.Levels.Rows())
}

func TestSave_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	res := recognize(t, stripes())

	require.NoError(t, s.Save(ctx, "stripes.png", res))
	require.NoError(t, s.Save(ctx, "stripes.png", res))

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestRuns_OrderedAndLatest(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)

	_, err = s.Latest(ctx)
	assert.ErrorIs(t, err, ErrRunNotFound)

	first := recognize(t, stripes())
	second := recognize(t, grid{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}})
	require.NoError(t, s.Save(ctx, "a.png", first))
	require.NoError(t, s.Save(ctx, "b.png", second))

	runs, err = s.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, first.RunID, runs[0].RunID)
	assert.Equal(t, second.RunID, runs[1].RunID)

	latest, err := s.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.RunID, latest.RunID)
	assert.Equal(t, "b.png", latest.ImagePath)
}

func TestLoad_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.Load(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestTopLinks(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	res := recognize(t, stripes())
	require.NoError(t, s.Save(ctx, "stripes.png", res))

	top, err := s.TopLinks(ctx, res.RunID, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)

	// Every row of a stripe compresses to one of two roots, each anchored
	// twice by rows, and the shared column root is anchored four times.
	assert.GreaterOrEqual(t, top[0].Usages, top[1].Usages)

	store := res.Session.Store()
	for _, rec := range top {
		rel, err := store.Resolve(rec.Link)
		require.NoError(t, err)
		assert.Equal(t, rel, rec.Relation)
		assert.Equal(t, store.CountUsages(links.LinkElement(rec.Link)), rec.Usages)

		freq, err := res.Session.Cache().FrequencyOf(rec.Link)
		require.NoError(t, err)
		assert.Equal(t, freq, rec.Frequency)
	}

	all, err := s.TopLinks(ctx, res.RunID, 1000)
	require.NoError(t, err)
	assert.Len(t, all, store.Len())
}

func TestLevelsCodec(t *testing.T) {
	m := levels.NewMatrix(4, 3)
	m.Set(1, 1, 0)
	m.Set(2, 1, 300)
	m.Set(3, 2, 1<<40)

	got, err := decodeLevels(encodeLevels(m), 4, 3)
	require.NoError(t, err)
	assert.Equal(t, m.Rows(), got.Rows())

	_, err = decodeLevels(encodeLevels(m), 5, 3)
	assert.Error(t, err, "short payload")

	_, err = decodeLevels(encodeLevels(m), 2, 3)
	assert.Error(t, err, "trailing bytes")

	_, err = decodeLevels([]byte("not zstd"), 4, 3)
	assert.Error(t, err)
}

func TestTimeLayout_SortsLexically(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 5, 0, time.UTC)
	a := base.Add(100 * time.Millisecond).Format(timeLayout)
	b := base.Add(120 * time.Millisecond).Format(timeLayout)
	assert.Less(t, a, b)

	parsed, err := time.Parse(timeLayout, b)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(base.Add(120*time.Millisecond)))
}
