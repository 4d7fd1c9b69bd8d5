package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/ironsheep/image-patterns-mcp/internal/detection"
	"github.com/ironsheep/image-patterns-mcp/internal/imaging"
	"github.com/ironsheep/image-patterns-mcp/internal/levels"
	"github.com/ironsheep/image-patterns-mcp/internal/pipeline"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "pattern_recognize").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn("tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Loads the image or looks up an earlier run
//  4. Calls the appropriate imaging/pipeline/detection function
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)

	// Recognition
	case "pattern_recognize":
		return s.handlePatternRecognize(args)
	case "pattern_levels":
		return s.handlePatternLevels(args)
	case "pattern_rank":
		return s.handlePatternRank(args)
	case "pattern_hotspots":
		return s.handlePatternHotspots(args)
	case "pattern_heatmap":
		return s.handlePatternHeatmap(args)
	case "pattern_row_levels":
		return s.handlePatternRowLevels(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path   string `json:"path"`
	Colors int    `json:"colors"`
}

type imageLoadResult struct {
	*imaging.ImageInfo
	Colors []imaging.PaletteColor `json:"colors"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Colors == 0 {
		a.Colors = 5
	}
	info, err := imaging.LoadImageInfo(s.cache, a.Path)
	if err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return &imageLoadResult{
		ImageInfo: info,
		Colors:    imaging.DescribePalette(imaging.NewRaster(img), a.Colors),
	}, nil
}

// === Recognition Handlers ===

type patternRecognizeArgs struct {
	Path         string          `json:"path"`
	Region       *imaging.Region `json:"region,omitempty"`
	Quadrant     string          `json:"quadrant"`
	MaxDimension int             `json:"max_dimension"`
	MaxLinks     int             `json:"max_links"`
	SaveLinks    bool            `json:"save_links"`
}

func (s *Server) handlePatternRecognize(args json.RawMessage) (interface{}, error) {
	var a patternRecognizeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}

	req := pipeline.Request{
		Path:         a.Path,
		Prepare:      s.cfg.PrepareOptions(),
		MaxLinks:     s.cfg.MaxLinks,
		Snapshot:     a.SaveLinks || s.cfg.Snapshot.Enabled,
		SnapshotPath: s.cfg.Snapshot.Path,
	}
	if a.Region != nil {
		req.Prepare.Region = a.Region
	}
	if a.Quadrant != "" {
		req.Prepare.Quadrant = a.Quadrant
	}
	if a.MaxDimension > 0 {
		req.Prepare.MaxDimension = a.MaxDimension
	}
	if a.MaxLinks > 0 {
		req.MaxLinks = a.MaxLinks
	}

	analysis, err := pipeline.Run(context.Background(), s.cache, req, s.logger)
	if err != nil {
		return nil, err
	}
	s.remember(analysis)
	return analysis.Summary(), nil
}

type runArgs struct {
	RunID string `json:"run_id"`
	Path  string `json:"path"`
}

type patternLevelsArgs struct {
	runArgs
	Format string `json:"format"`
}

type patternLevelsText struct {
	RunID  string `json:"run_id"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Max    uint64 `json:"max"`
	Text   string `json:"text"`
}

type patternLevelsJSON struct {
	RunID  string         `json:"run_id"`
	Levels *levels.Matrix `json:"levels"`
}

func (s *Server) handlePatternLevels(args json.RawMessage) (interface{}, error) {
	var a patternLevelsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	analysis, err := s.lookup(a.RunID, a.Path)
	if err != nil {
		return nil, err
	}
	res := analysis.Result

	switch a.Format {
	case "", "json":
		return &patternLevelsJSON{RunID: res.RunID.String(), Levels: res.Levels}, nil
	case "text":
		var buf bytes.Buffer
		if err := res.Levels.Render(&buf); err != nil {
			return nil, err
		}
		return &patternLevelsText{
			RunID:  res.RunID.String(),
			Width:  res.Levels.Width(),
			Height: res.Levels.Height(),
			Max:    res.Levels.Max(),
			Text:   buf.String(),
		}, nil
	default:
		return nil, fmt.Errorf("unknown format %q (use json or text)", a.Format)
	}
}

type patternRankArgs struct {
	runArgs
	By  string `json:"by"`
	Top int    `json:"top"`
}

type patternRankResult struct {
	RunID string                `json:"run_id"`
	By    string                `json:"by"`
	Total int                   `json:"total"`
	Links []pipeline.RankedLink `json:"links"`
}

func (s *Server) handlePatternRank(args json.RawMessage) (interface{}, error) {
	var a patternRankArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.By == "" {
		a.By = pipeline.ByUsage
	}
	if a.Top == 0 {
		a.Top = 10
	}
	analysis, err := s.lookup(a.RunID, a.Path)
	if err != nil {
		return nil, err
	}

	ranked, err := analysis.Rank(a.By, a.Top)
	if err != nil {
		return nil, err
	}
	return &patternRankResult{
		RunID: analysis.Result.RunID.String(),
		By:    a.By,
		Total: analysis.Result.Session.Store().Len(),
		Links: ranked,
	}, nil
}

type patternHotspotsArgs struct {
	runArgs
	Threshold uint64 `json:"threshold"`
	MinArea   int    `json:"min_area"`
}

func (s *Server) handlePatternHotspots(args json.RawMessage) (interface{}, error) {
	var a patternHotspotsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Threshold == 0 {
		a.Threshold = s.cfg.Hotspots.Threshold
	}
	if a.MinArea == 0 {
		a.MinArea = s.cfg.Hotspots.MinArea
	}
	analysis, err := s.lookup(a.RunID, a.Path)
	if err != nil {
		return nil, err
	}
	return detection.DetectHotspots(analysis.Result.Levels, a.Threshold, a.MinArea)
}

type patternHeatmapArgs struct {
	runArgs
	Scale   int   `json:"scale"`
	Overlay bool  `json:"overlay"`
	Legend  *bool `json:"legend"`
}

func (s *Server) handlePatternHeatmap(args json.RawMessage) (interface{}, error) {
	var a patternHeatmapArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	analysis, err := s.lookup(a.RunID, a.Path)
	if err != nil {
		return nil, err
	}

	opts := s.cfg.HeatmapOptions()
	if a.Scale > 0 {
		opts.Scale = a.Scale
	}
	if a.Legend != nil {
		opts.Legend = *a.Legend
	}
	if a.Overlay {
		opts.Background = analysis.Image
	}
	return imaging.EncodeHeatmap(analysis.Result.Levels, opts)
}

type patternRowLevelsArgs struct {
	runArgs
	Axis  string `json:"axis"`
	Index int    `json:"index"`
}

type patternRowLevelsResult struct {
	RunID  string   `json:"run_id"`
	Axis   string   `json:"axis"`
	Index  int      `json:"index"`
	Levels []uint64 `json:"levels"`
}

func (s *Server) handlePatternRowLevels(args json.RawMessage) (interface{}, error) {
	var a patternRowLevelsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Axis == "" {
		a.Axis = "row"
	}
	analysis, err := s.lookup(a.RunID, a.Path)
	if err != nil {
		return nil, err
	}

	var values []uint64
	switch a.Axis {
	case "row":
		values, err = analysis.Result.RowLevels(a.Index)
	case "column":
		values, err = analysis.Result.ColumnLevels(a.Index)
	default:
		return nil, fmt.Errorf("unknown axis %q (use row or column)", a.Axis)
	}
	if err != nil {
		return nil, err
	}
	return &patternRowLevelsResult{
		RunID:  analysis.Result.RunID.String(),
		Axis:   a.Axis,
		Index:  a.Index,
		Levels: values,
	}, nil
}
