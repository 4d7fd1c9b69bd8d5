// Package cli implements the image-patterns command line.
//
// # Commands
//
//   - recognize: analyze an image and print its level matrix, ranking,
//     hotspots and optionally a heatmap
//   - runs: list or show runs saved in a snapshot database
//   - serve: run the MCP server on stdin and stdout
//   - version: print build information
//
// # Output
//
// Every command prints text by default. With --format json each result is
// wrapped in an Envelope whose status is "ok" or "error". Logs always go to
// stderr.
//
// # Exit Status
//
// Run returns ExitSuccess, ExitFailure when the analysis fails, or
// ExitCommandError when the invocation is wrong.
package cli
