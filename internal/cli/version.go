package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// VersionInfo is the output of the version command.
type VersionInfo struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	GitCommit string `json:"git_commit"`
}

// NewVersionCommand creates the version command.
func NewVersionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "version",
		Short:         "Print version information",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return newPrinter(rootOpts, cmd).Result(&VersionInfo{
				Version:   Version,
				BuildTime: BuildTime,
				GitCommit: GitCommit,
			})
		},
	}
}

// WriteText renders the version for a terminal.
func (v *VersionInfo) WriteText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "image-patterns %s\n  Build time: %s\n  Git commit: %s\n",
		v.Version, v.BuildTime, v.GitCommit)
	return err
}
