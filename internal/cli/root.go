// Package cli implements lendctl, the operator tool for a microlend
// deployment.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"microlend/internal/app"
	"microlend/internal/config"
	"microlend/internal/infrastructure/logging"
)

var rootCmd = &cobra.Command{
	Use:           "lendctl",
	Short:         "Operate a microlend deployment",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if path, _ := cmd.Flags().GetString("config"); path != "" {
			return os.Setenv("CONFIG_FILE", path)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "TOML config file (overrides CONFIG_FILE)")
}

// Execute runs the command tree with os.Args.
func Execute() error {
	return rootCmd.Execute()
}

// opener builds the application for commands that need storage. Tests swap it.
var opener = func() (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return app.Open(cfg, logging.New(cfg.LogLevel, "text"))
}

func withApp(fn func(cmd *cobra.Command, a *app.App, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := opener()
		if err != nil {
			return err
		}
		defer a.Close()
		// logs go to stderr so stdout stays scriptable
		a.Log.SetOutput(cmd.ErrOrStderr())
		return fn(cmd, a, args)
	}
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
