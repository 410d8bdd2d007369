package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// runCmd executes a script file. Scripts run under the nested
// evaluation context: every runnable must be invoked explicitly.
var runCmd = &cobra.Command{
	Use:   "run FILE",
	Short: "Execute a ShipShell script file.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		session, _, err := newSession()
		if err != nil {
			return err
		}

		if err := session.Source(args[0]); err != nil {
			session.PrintError(err)
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
