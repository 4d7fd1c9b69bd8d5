package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

var quadrants = []string{"top-left", "top-right", "bottom-left", "bottom-right", "top-half", "bottom-half", "left-half", "right-half", "center"}

// runSelector describes the arguments that pick a previous recognition run.
func runSelector(extra map[string]interface{}) map[string]interface{} {
	props := map[string]interface{}{
		"run_id": map[string]interface{}{
			"type":        "string",
			"description": "Run id returned by pattern_recognize",
		},
		"path": map[string]interface{}{
			"type":        "string",
			"description": "Image path; selects the latest run for that image when run_id is omitted",
		},
	}
	for k, v := range extra {
		props[k] = v
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": props,
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format, symbol count and most common colors.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"colors": map[string]interface{}{
						"type":        "integer",
						"description": "Number of palette colors to return. Default 5",
						"default":     5,
					},
				},
				"required": []string{"path"},
			},
		},

		// Recognition
		{
			Name:        "pattern_recognize",
			Description: "Compress every row and column of an image into a hierarchy of repeated pairs and score each pixel by how often its neighbourhood repeats. Returns a run id for the other pattern tools.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"region": map[string]interface{}{
						"type":        "object",
						"description": "Optional crop, (x1,y1) inclusive and (x2,y2) exclusive",
						"properties": map[string]interface{}{
							"x1": map[string]interface{}{"type": "integer"},
							"y1": map[string]interface{}{"type": "integer"},
							"x2": map[string]interface{}{"type": "integer"},
							"y2": map[string]interface{}{"type": "integer"},
						},
						"required": []string{"x1", "y1", "x2", "y2"},
					},
					"quadrant": map[string]interface{}{
						"type":        "string",
						"enum":        quadrants,
						"description": "Optional named region to analyze; ignored when region is set",
					},
					"max_dimension": map[string]interface{}{
						"type":        "integer",
						"description": "Downscale so neither side exceeds this. 0 keeps the configured default",
					},
					"max_links": map[string]interface{}{
						"type":        "integer",
						"description": "Abort when the run needs more links than this. 0 keeps the configured default",
					},
					"save_links": map[string]interface{}{
						"type":        "boolean",
						"description": "Write the run to a .links snapshot database next to the image",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "pattern_levels",
			Description: "Return the per-pixel level matrix of a run. Border pixels have no level.",
			InputSchema: runSelector(map[string]interface{}{
				"format": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"json", "text"},
					"description": "json rows with null borders, or text with one line per row. Default json",
				},
			}),
		},
		{
			Name:        "pattern_rank",
			Description: "Rank the links of a run by usage (how many links and sequence roots refer to them) or by pair frequency.",
			InputSchema: runSelector(map[string]interface{}{
				"by": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"usage", "frequency"},
					"description": "Ranking statistic. Default usage",
				},
				"top": map[string]interface{}{
					"type":        "integer",
					"description": "Number of links to return. Default 10",
					"default":     10,
				},
			}),
		},
		{
			Name:        "pattern_hotspots",
			Description: "Find connected regions whose level reaches a threshold, strongest first.",
			InputSchema: runSelector(map[string]interface{}{
				"threshold": map[string]interface{}{
					"type":        "integer",
					"description": "Minimum level. Default three quarters of the maximum level",
				},
				"min_area": map[string]interface{}{
					"type":        "integer",
					"description": "Minimum region size in pixels. Default 1",
				},
			}),
		},
		{
			Name:        "pattern_heatmap",
			Description: "Render the level matrix as a base64 PNG heatmap, dark for low levels and bright for high levels.",
			InputSchema: runSelector(map[string]interface{}{
				"scale": map[string]interface{}{
					"type":        "integer",
					"description": "Pixels per cell. Default 1. Neither heatmap side may exceed 8192 pixels",
				},
				"overlay": map[string]interface{}{
					"type":        "boolean",
					"description": "Blend the heatmap over the analyzed image",
				},
				"legend": map[string]interface{}{
					"type":        "boolean",
					"description": "Draw the maximum level in the corner. Default true",
				},
			}),
		},
		{
			Name:        "pattern_row_levels",
			Description: "Return the local level of every pixel in one row or column: the larger frequency of the pairs it forms with its neighbours.",
			InputSchema: runSelector(map[string]interface{}{
				"axis": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"row", "column"},
					"description": "Default row",
				},
				"index": map[string]interface{}{
					"type":        "integer",
					"description": "Row or column index (0-based)",
				},
			}),
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
