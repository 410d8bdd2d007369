package cmd

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/shipshell/shipshell/core/config"
)

// initCmd writes the default configuration and rc file.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the ShipShell configuration directory.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		logger := log.New(cmd.ErrOrStderr(), "", 0)
		return config.Initialize(cfgDir, logger)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
