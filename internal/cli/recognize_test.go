package cli

import (
	"encoding/json"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recognizeResponse mirrors the JSON output of the recognize command.
type recognizeResponse struct {
	Status string `json:"status"`
	Data   struct {
		RunID        string `json:"run_id"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		SourceWidth  int    `json:"source_width"`
		Symbols      int    `json:"symbols"`
		Links        int    `json:"links"`
		MaxLevel     uint64 `json:"max_level"`
		DefinedCells int    `json:"defined_cells"`
		SnapshotPath string `json:"snapshot_path"`
		Levels       struct {
			Width  int         `json:"width"`
			Height int         `json:"height"`
			Max    uint64      `json:"max"`
			Rows   [][]*uint64 `json:"rows"`
		} `json:"levels"`
		RankBy  string `json:"rank_by"`
		Ranking []struct {
			Link   uint64 `json:"link"`
			Usages uint64 `json:"usages"`
		} `json:"ranking"`
		Hotspots *struct {
			Count     int    `json:"count"`
			Threshold uint64 `json:"threshold"`
		} `json:"hotspots"`
		HeatmapPath string `json:"heatmap_path"`
	} `json:"data"`
}

func recognizeJSON(t *testing.T, args ...string) recognizeResponse {
	t.Helper()
	stdout, _, err := execute(t, "", append([]string{"recognize", "--format", "json"}, args...)...)
	require.NoError(t, err)

	var resp recognizeResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	require.Equal(t, "ok", resp.Status)
	return resp
}

func TestRecognize_JSON(t *testing.T) {
	path := writeStripes(t, 4, 4)
	resp := recognizeJSON(t, path, "--top", "3", "--hotspots")
	data := resp.Data

	assert.NotEmpty(t, data.RunID)
	assert.Equal(t, 4, data.Width)
	assert.Equal(t, 4, data.Height)
	assert.Equal(t, 2, data.Symbols)
	assert.Equal(t, 7, data.Links)
	assert.Equal(t, uint64(8), data.MaxLevel)
	assert.Equal(t, 4, data.DefinedCells)
	assert.Empty(t, data.SnapshotPath)

	// Only interior pixels have neighbours on all four sides.
	require.Len(t, data.Levels.Rows, 4)
	assert.Nil(t, data.Levels.Rows[0][0])
	require.NotNil(t, data.Levels.Rows[1][1])
	assert.Equal(t, uint64(8), *data.Levels.Rows[1][1])

	assert.Equal(t, "usage", data.RankBy)
	require.Len(t, data.Ranking, 3)
	assert.Equal(t, uint64(4), data.Ranking[0].Usages)

	require.NotNil(t, data.Hotspots)
	assert.Equal(t, 1, data.Hotspots.Count)
	assert.Equal(t, uint64(6), data.Hotspots.Threshold)
}

func TestRecognize_Text(t *testing.T) {
	path := writeStripes(t, 4, 4)
	stdout, _, err := execute(t, "", "recognize", path, "--hotspots")
	require.NoError(t, err)

	assert.Contains(t, stdout, path+": 4x4 (source 4x4)")
	assert.Contains(t, stdout, "2 symbols, 7 links, 7 pairs, max level 8, 4 of 16 cells defined")
	assert.Contains(t, stdout, ". 8 8 .")
	assert.Contains(t, stdout, "top links by usage:")
	assert.Contains(t, stdout, "1 hotspots at level 6 or more:")
	assert.Contains(t, stdout, "(1,1)-(3,3) area 4, peak 8 at (1,1), mean 8.00")
}

func TestRecognize_NoRanking(t *testing.T) {
	resp := recognizeJSON(t, writeStripes(t, 4, 4), "--top", "0")
	assert.Empty(t, resp.Data.Ranking)
	assert.Empty(t, resp.Data.RankBy)
	assert.Nil(t, resp.Data.Hotspots)
}

func TestRecognize_Quadrant(t *testing.T) {
	resp := recognizeJSON(t, writeStripes(t, 8, 8), "--quadrant", "top-left")
	assert.Equal(t, 4, resp.Data.Width)
	assert.Equal(t, 8, resp.Data.SourceWidth)

	resp = recognizeJSON(t, writeStripes(t, 8, 8), "--region", "0,0,6,3")
	assert.Equal(t, 6, resp.Data.Width)
	assert.Equal(t, 3, resp.Data.Height)
}

func TestRecognize_Heatmap(t *testing.T) {
	out := filepath.Join(t.TempDir(), "levels.png")
	resp := recognizeJSON(t, writeStripes(t, 4, 4), "--heatmap", out, "--overlay")
	assert.Equal(t, out, resp.Data.HeatmapPath)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	_, err = png.DecodeConfig(f)
	assert.NoError(t, err)
}

func TestRecognize_SaveLinks(t *testing.T) {
	snap := filepath.Join(t.TempDir(), "run.links")
	resp := recognizeJSON(t, writeStripes(t, 4, 4), "--links-path", snap)
	assert.Equal(t, snap, resp.Data.SnapshotPath)

	_, err := os.Stat(snap)
	assert.NoError(t, err)
}

func TestRecognize_Errors(t *testing.T) {
	path := writeStripes(t, 4, 4)

	tests := []struct {
		name string
		args []string
		code int
	}{
		{"missing image", []string{filepath.Join(t.TempDir(), "missing.png")}, ExitCommandError},
		{"no image", []string{}, ExitFailure},
		{"bad region", []string{path, "--region", "1,2,3"}, ExitCommandError},
		{"empty region", []string{path, "--region", "2,2,2,4"}, ExitCommandError},
		{"bad rank", []string{path, "--rank-by", "size"}, ExitCommandError},
		{"negative dimension", []string{path, "--max-dimension", "-1"}, ExitCommandError},
		{"unknown quadrant", []string{path, "--quadrant", "middle"}, ExitFailure},
		{"link limit", []string{path, "--max-links", "1"}, ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, "", append([]string{"recognize"}, tt.args...)...)
			require.Error(t, err)
			assert.Equal(t, tt.code, ExitCode(err))
		})
	}
}

func TestParseRegion(t *testing.T) {
	r, err := parseRegion(" 1, 2 ,30,40")
	require.NoError(t, err)
	assert.Equal(t, 1, r.X1)
	assert.Equal(t, 2, r.Y1)
	assert.Equal(t, 30, r.X2)
	assert.Equal(t, 40, r.Y2)

	for _, bad := range []string{"", "1,2,3", "1,2,3,4,5", "a,2,3,4", "5,5,1,1"} {
		_, err := parseRegion(bad)
		assert.Error(t, err, "region %q", bad)
	}
}
