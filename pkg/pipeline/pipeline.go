// Package pipeline runs the rows → labels → artifacts pipeline for Etiket.
//
// The CLI and the preview server both go through this package so that
// defaults, validation and caching behave the same everywhere.
//
// # Architecture
//
// The pipeline has two stages:
//
//  1. Assemble: pack the template once per selected row and bind every cell
//     to the row, resolving code images through the configured resolver.
//  2. Render: turn the assembled batch into the requested output formats
//     (SVG, HTML, JSON, PNG, PDF).
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Rows:    set.Rows,
//	    Select:  []int{0, 2},
//	    Formats: []string{"html"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	html := result.Artifacts["html"]
package pipeline

import (
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/etiket/pkg/cache"
	"github.com/matzehuels/etiket/pkg/codeimage"
	"github.com/matzehuels/etiket/pkg/errors"
	"github.com/matzehuels/etiket/pkg/label"
	"github.com/matzehuels/etiket/pkg/label/template"
	"github.com/matzehuels/etiket/pkg/rows"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and server
// =============================================================================

const (
	// DefaultConcurrency is the number of rows assembled in parallel.
	DefaultConcurrency = 4

	// MaxConcurrency bounds Options.Concurrency.
	MaxConcurrency = 64

	// MaxRows bounds the number of labels in one run.
	MaxRows = 5000

	// MaxColumns bounds Options.Columns, the labels per sheet row.
	MaxColumns = 16

	// DefaultResolver is the default code-image resolver.
	DefaultResolver = codeimage.KindQR

	// DefaultTitle is the title of the HTML print sheet.
	DefaultTitle = "Etiketler"
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatHTML = "html"
	FormatJSON = "json"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
)

// Formats lists the supported output formats.
var Formats = []string{FormatSVG, FormatHTML, FormatJSON, FormatPNG, FormatPDF}

// MediaTypes maps formats to their HTTP content types.
var MediaTypes = map[string]string{
	FormatSVG:  "image/svg+xml",
	FormatHTML: "text/html; charset=utf-8",
	FormatJSON: "application/json",
	FormatPNG:  "image/png",
	FormatPDF:  "application/pdf",
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Template lays out every label. Nil means template.Default().
	Template *template.Template `json:"template,omitempty"`

	// Rows is the loaded data set.
	Rows []rows.Row `json:"rows"`
	// Select picks rows by zero-based index. Empty means all rows.
	Select []int `json:"select,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Resolver string   `json:"resolver,omitempty"`
	URLBase  string   `json:"url_base,omitempty"`
	Columns  int      `json:"columns,omitempty"`
	Title    string   `json:"title,omitempty"`

	// Runtime options (not serialized)
	Concurrency int         `json:"-"`
	Refresh     bool        `json:"-"`
	Logger      *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
	selected  []rows.Row
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// BatchID identifies this run in logs and API responses.
	BatchID uuid.UUID

	// Batch holds the assembled labels and their defects.
	Batch *label.Batch

	// ContentHash is the hash of template and selected rows.
	ContentHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Labels       int
	Defects      int
	AssembleTime time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !slices.Contains(Formats, format) {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, html, json, png, pdf)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateResolver checks that a resolver name is valid.
func ValidateResolver(name string) error {
	if !slices.Contains(codeimage.Kinds, name) {
		return errors.New(errors.ErrCodeInvalidInput, "invalid resolver: %q (must be one of: qr, url, none)", name)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the options and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	if o.Template == nil {
		t := template.Default()
		o.Template = &t
	}
	if err := o.Template.Validate(); err != nil {
		return err
	}

	if len(o.Rows) == 0 {
		return errors.New(errors.ErrCodeInvalidRows, "no rows to print")
	}
	set := rows.Set{Rows: o.Rows}
	if len(o.Select) == 0 {
		o.selected = o.Rows
	} else {
		selected, err := set.Select(o.Select)
		if err != nil {
			return err
		}
		o.selected = selected
	}
	if len(o.selected) > MaxRows {
		return errors.New(errors.ErrCodeInvalidSelection, "too many labels: %d (max %d)", len(o.selected), MaxRows)
	}

	if len(o.Formats) == 0 {
		o.Formats = []string{FormatHTML}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}

	if o.Resolver == "" {
		o.Resolver = DefaultResolver
	}
	if err := ValidateResolver(o.Resolver); err != nil {
		return err
	}

	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	o.Concurrency = min(o.Concurrency, MaxConcurrency)
	o.Columns = min(max(o.Columns, 0), MaxColumns)
	if o.Title == "" {
		o.Title = DefaultTitle
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	o.validated = true
	return nil
}

// SelectedRows returns the rows that will become labels, in order.
// It is only meaningful after ValidateAndSetDefaults.
func (o *Options) SelectedRows() []rows.Row {
	return o.selected
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:   format,
		Resolver: o.Resolver + ":" + o.URLBase,
		Columns:  o.Columns,
		Title:    o.Title,
	}
}
