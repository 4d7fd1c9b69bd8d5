// Package config loads settings for the recognizer CLI and MCP server.
//
// # Sources
//
// Settings are resolved in order, later sources winning:
//   - Built-in defaults from Default
//   - An optional YAML file read by Load, which rejects unknown fields
//   - Environment variables applied by ApplyEnv
//   - Command-line flags applied by the caller
//
// # Environment
//
//   - IMAGE_PATTERNS_LOG_LEVEL: debug, info, warn or error
//   - IMAGE_PATTERNS_MAX_DIMENSION: downscale limit, 0 disables it
//   - IMAGE_PATTERNS_MAX_LINKS: relation store cap, 0 means unlimited
//
// # Validation
//
// Load and ApplyEnv both finish with Validate, so a Config returned without
// error is usable as is. Heatmap scale is limited so that a rendered heatmap
// stays within imaging.MaxHeatmapSide.
package config
