package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/etiket/internal/config"
	"github.com/matzehuels/etiket/pkg/buildinfo"
	"github.com/matzehuels/etiket/pkg/cache"
	"github.com/matzehuels/etiket/pkg/errors"
	"github.com/matzehuels/etiket/pkg/label/template"
	"github.com/matzehuels/etiket/pkg/pipeline"
	"github.com/matzehuels/etiket/pkg/rows"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "etiket"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *config.Config
}

// New creates a new CLI instance with a default logger and default settings.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: &config.Config{
			ServerAddr:  ":8080",
			Resolver:    pipeline.DefaultResolver,
			Concurrency: pipeline.DefaultConcurrency,
			LogLevel:    level.String(),
		},
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Etiket lays out and prints product labels from spreadsheet rows",
		Long:         `Etiket packs a label template onto a grid, binds each template cell to a data row and renders print-ready label sheets (HTML, SVG, PNG, PDF, JSON).`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.templateCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cache, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, nil, c.Logger), nil
}

// newCache picks the cache backend: none, Redis when configured, otherwise
// the file cache. An unusable cache directory disables caching.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if c.Config.UsesRedis() {
		return cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     c.Config.RedisAddr,
			Password: c.Config.RedisPassword,
			DB:       c.Config.RedisDB,
			Prefix:   appName + ":",
		})
	}
	dir, err := c.cacheDir()
	if err != nil {
		c.Logger.Debug("file cache disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, or ~/.cache/etiket/ (XDG).
func (c *CLI) cacheDir() (string, error) {
	if c.Config != nil && c.Config.CacheDir != "" {
		return c.Config.CacheDir, nil
	}
	return cacheDir()
}

// cacheDir returns the cache directory using XDG standard (~/.cache/etiket/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Input Helpers
// =============================================================================

// loadTemplate loads the template at path, falling back to the configured
// template file and then to the built-in product label.
func (c *CLI) loadTemplate(path string) (template.Template, error) {
	if path == "" && c.Config != nil {
		path = c.Config.GridTemplate
	}
	return template.Load(path)
}

// loadRows reads a JSON array of row objects from path, or stdin for "-".
func loadRows(path string) (*rows.Set, error) {
	if path == "-" {
		return rows.ReadJSON(os.Stdin)
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "rows file not found: %s", path)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return rows.ReadJSON(f)
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatHTML}
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
