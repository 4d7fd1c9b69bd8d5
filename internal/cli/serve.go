package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ironsheep/image-patterns-mcp/internal/server"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdin/stdout",
		Long: `Run the Model Context Protocol server.

Requests are read as newline-delimited JSON-RPC from stdin and responses
are written to stdout. Logs go to stderr. Configure the command in your
MCP client, for example:

  {"command": "image-patterns", "args": ["serve", "--config", "patterns.yaml"]}`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, rootOpts)
		},
	}

	return cmd
}

func runServe(cmd *cobra.Command, opts *RootOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	logger := newLogger(cfg, cmd.ErrOrStderr())
	slog.SetDefault(logger)

	server.Version = Version
	logger.Debug("starting MCP server",
		"version", Version,
		"build_time", BuildTime,
		"commit", GitCommit,
	)

	srv := server.New(cfg, logger)
	if err := srv.Serve(cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
		return WrapExitError(ExitFailure, "server error", err)
	}
	return nil
}
