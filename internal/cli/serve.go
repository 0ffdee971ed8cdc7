package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/etiket/internal/server"
)

// serveCommand creates the serve command that runs the preview API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr, templatePath string
	var noCache bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP preview API",
		Long: `Serve answers POST /api/v1/labels with rendered label sheets,
GET /api/v1/template with the active template and GET /healthz.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			tmpl, err := c.loadTemplate(templatePath)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			s := server.New(runner, tmpl, server.Defaults{
				Resolver:    c.Config.Resolver,
				URLBase:     c.Config.URLBase,
				Concurrency: c.Config.Concurrency,
			}, logger)

			return s.ListenAndServe(ctx, firstNonEmpty(addr, c.Config.ServerAddr))
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from ETIKET_SERVER_ADDR or :8080)")
	cmd.Flags().StringVarP(&templatePath, "template", "t", "", "label template file (.toml or .json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the render cache")

	return cmd
}
