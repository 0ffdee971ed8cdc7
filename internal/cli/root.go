package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/etiket/internal/config"
)

// Execute builds the command tree and runs it.
//
// Settings come from ETIKET_* environment variables and an optional .env
// file in the working directory. The --verbose (-v) flag overrides the
// configured log level with debug.
func Execute(ctx context.Context, c *CLI) error {
	var verbose bool

	root := c.RootCommand()
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		c.Config = cfg

		level := cfg.Level()
		if verbose {
			level = LogDebug
		}
		c.SetLogLevel(level)

		cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		return nil
	}

	return root.ExecuteContext(ctx)
}
