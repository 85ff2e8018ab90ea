// Package cli wires the cobra command surface from spec §6: `daemon`
// mounts the filesystem, `query` runs one ad-hoc SQL statement against a
// scan without mounting.
package cli

import (
	"github.com/spf13/cobra"
)

var configPath string

// Execute runs the rmkfs root command.
func Execute() error {
	root := &cobra.Command{
		Use:           "rmkfs",
		Short:         "Mount a reMarkable notebook tree as a read-only FUSE filesystem",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config.yaml (defaults to $RMKFS_CONFIG or ~/.config/rmkfs/config.yaml)")

	root.AddCommand(newDaemonCmd())
	root.AddCommand(newQueryCmd())

	return root.Execute()
}
