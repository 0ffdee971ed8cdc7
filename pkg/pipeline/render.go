package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/etiket/pkg/label"
	"github.com/matzehuels/etiket/pkg/render/sink"
)

// Render generates output artifacts in the requested formats.
func Render(ctx context.Context, b *label.Batch, opts Options) (map[string][]byte, error) {
	sinkOpts := []sink.Option{
		sink.WithTitle(opts.Title),
		sink.WithGeometry(sink.Geometry{Columns: opts.Columns}),
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		if _, done := artifacts[format]; done {
			continue
		}

		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = sink.RenderSVG(b, sinkOpts...)
		case FormatHTML:
			data, err = sink.RenderHTML(b, sinkOpts...)
		case FormatJSON:
			data, err = sink.RenderJSON(b)
		case FormatPNG:
			data, err = sink.RenderPNG(b, sinkOpts...)
		case FormatPDF:
			data, err = sink.RenderPDF(ctx, b, sinkOpts...)
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}
