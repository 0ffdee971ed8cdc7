// Package render holds format conversion shared by the label sinks.
//
// [ToPDF] converts an SVG document using the external rsvg-convert
// tool (from librsvg):
//
//	svg := sink.RenderSVG(batch)
//	pdf, err := render.ToPDF(ctx, svg)
//
// The sinks themselves live in [sink]: SVG, HTML print sheet, JSON, PNG
// (rasterized in-process) and PDF.
//
// [sink]: github.com/matzehuels/etiket/pkg/render/sink
package render
