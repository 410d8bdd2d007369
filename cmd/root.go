package cmd

import (
	"errors"
	"io/fs"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/shipshell/shipshell/core/config"
	"github.com/shipshell/shipshell/core/interp"
	"github.com/shipshell/shipshell/core/shell"
)

var cfgDir string

// loadConfig loads the configuration directory, falling back to the
// built-in defaults when it doesn't exist yet.
func loadConfig() (*config.Configuration, error) {
	configuration, err := config.Load(cfgDir)
	if errors.Is(err, fs.ErrNotExist) {
		return config.Default(), nil
	}
	if err != nil {
		return nil, err
	}
	return configuration, nil
}

// newSession builds the live session: validated config, shell state
// seeded from the real process, and the interpreter over both. The
// configuration is returned so callers don't load it a second time.
func newSession() (*interp.Interp, *config.Configuration, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	state, err := shell.New(shell.WithOSMirror())
	if err != nil {
		return nil, nil, err
	}
	if state.Getenv(shell.EnvPath) == "" {
		state.Setenv(shell.EnvPath, cfg.DefaultPath)
	}

	return interp.New(cfg, state), cfg, nil
}

// rootCmd runs the interactive shell when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "shipshell",
	Short: "A shell whose syntax is a scripting language",
	Long: `ShipShell replaces the POSIX shell's text parser with a scripting
language: commands, pipelines, and subshells are composable values.
At the prompt a runnable expression executes immediately; assigned or
scripted runnables wait until called.`,
	Args: cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		session, cfg, err := newSession()
		if err != nil {
			return err
		}

		// The rc file runs under the nested evaluation context:
		// runnables it builds are never auto-executed.
		if rc := cfg.RcPath(); rc != "" {
			if _, err := os.Stat(rc); err == nil {
				if err := session.Source(rc); err != nil {
					session.PrintError(err)
				}
			}
		}

		return session.REPL()
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", config.DefaultDir(), "config directory")
	// Keep the standard logger quiet unless something opts in.
	log.SetFlags(0)
}
