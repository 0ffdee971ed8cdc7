package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/etiket/pkg/pipeline"
	"github.com/matzehuels/etiket/pkg/rows"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output      string   // output file path (or base path for multiple outputs), "-" for stdout
	template    string   // template file (.toml or .json)
	formats     []string // output formats: "html", "svg", "png", "pdf", "json"
	selection   string   // row indices, e.g. "0,2,5-7"
	pick        bool     // choose rows interactively
	resolver    string   // code-image resolver: "qr", "url" or "none"
	urlBase     string   // URL prefix for the url resolver
	columns     int      // labels per sheet row
	title       string   // HTML sheet title
	concurrency int      // rows assembled in parallel
	noCache     bool     // disable the render cache
	refresh     bool     // re-render even when cached
}

// renderCommand creates the render command for generating label sheets.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [rows.json]",
		Short: "Render data rows to a printable label sheet",
		Long: `Render lays out one label per selected row and writes the sheet in the
requested formats. Rows are a JSON array of flat objects; use "-" to read stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format), base path (multiple) or - for stdout")
	cmd.Flags().StringVarP(&opts.template, "template", "t", "", "label template file (.toml or .json); default is the built-in product label")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): html (default), svg, png, pdf, json (comma-separated)")
	cmd.Flags().StringVarP(&opts.selection, "select", "s", "", "rows to print by zero-based index, e.g. 0,2,5-7")
	cmd.Flags().BoolVar(&opts.pick, "pick", false, "choose rows interactively")
	cmd.Flags().StringVar(&opts.resolver, "resolver", "", "code image resolver: qr (default), url, none")
	cmd.Flags().StringVar(&opts.urlBase, "url-base", "", "URL prefix for the url resolver")
	cmd.Flags().IntVar(&opts.columns, "columns", 0, "labels per sheet row (default 2)")
	cmd.Flags().StringVar(&opts.title, "title", "", "title of the HTML sheet")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 0, "rows assembled in parallel")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the render cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-render even when a cached sheet exists")

	cmd.MarkFlagsMutuallyExclusive("select", "pick")

	return cmd
}

// runRender loads rows and template, runs the pipeline and writes the artifacts.
func (c *CLI) runRender(ctx context.Context, input string, opts renderOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	set, err := loadRows(input)
	if err != nil {
		return err
	}
	logger.Debugf("Loaded %d rows (%s)", set.Len(), strings.Join(set.Columns, ", "))

	tmpl, err := c.loadTemplate(opts.template)
	if err != nil {
		return err
	}

	selected, err := selectRows(set, opts)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s", strings.Join(opts.formats, ", ")))
	spinner.Start()
	result, err := runner.Execute(ctx, pipeline.Options{
		Template:    &tmpl,
		Rows:        set.Rows,
		Select:      selected,
		Formats:     opts.formats,
		Resolver:    firstNonEmpty(opts.resolver, c.Config.Resolver),
		URLBase:     firstNonEmpty(opts.urlBase, c.Config.URLBase),
		Columns:     opts.columns,
		Title:       opts.title,
		Concurrency: firstPositive(opts.concurrency, c.Config.Concurrency),
		Refresh:     opts.refresh,
		Logger:      logger,
	})
	spinner.Stop()
	if err != nil {
		return err
	}

	logDefects(logger, result.Batch.Defects)

	if err := writeArtifacts(result.Artifacts, opts.formats, input, opts.output); err != nil {
		return err
	}

	prog.done(fmt.Sprintf("Rendered %d labels", result.Stats.Labels))
	if opts.output != "-" {
		printStats(result.Stats.Labels, result.Stats.Defects, result.CacheInfo.RenderHit)
	}
	return nil
}

// selectRows turns --select or --pick into row indices. Nil means all rows.
func selectRows(set *rows.Set, opts renderOpts) ([]int, error) {
	switch {
	case opts.pick:
		return pickRows(set)
	case opts.selection != "":
		return rows.ParseIndices(opts.selection)
	default:
		return nil, nil
	}
}

// writeArtifacts writes each artifact to its output path; see outputPath.
func writeArtifacts(artifacts map[string][]byte, formats []string, input, output string) error {
	if output == "-" {
		if len(formats) != 1 {
			return fmt.Errorf("stdout output needs exactly one format, got %d", len(formats))
		}
		_, err := os.Stdout.Write(artifacts[formats[0]])
		return err
	}

	var written []string
	for _, format := range formats {
		path := outputPath(output, input, format, len(formats))
		if slices.Contains(written, path) {
			continue
		}
		if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
		printFile(path)
	}
	return nil
}

// outputPath picks the file for one format. A single format uses output
// as-is when given; otherwise the format extension is added to the base path.
// A path that would overwrite the input gets a ".labels" infix instead.
func outputPath(output, input, format string, n int) string {
	path := basePath(output, input) + "." + format
	if n == 1 && output != "" {
		path = output
	}
	if input != "-" && filepath.Clean(path) == filepath.Clean(input) {
		return basePath("", path) + ".labels." + format
	}
	return path
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input (stdin becomes "labels").
// If output has a format extension (.html, .pdf, etc.), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		if input == "-" {
			return "labels"
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if slices.Contains(pipeline.Formats, strings.TrimPrefix(ext, ".")) {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstPositive(vals ...int) int {
	for _, v := range vals {
		if v > 0 {
			return v
		}
	}
	return 0
}
