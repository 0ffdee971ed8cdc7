// Package sink renders assembled label batches into output formats.
//
// # Overview
//
// A "sink" transforms a [label.Batch] into bytes:
//
//   - SVG: one vector sheet holding every label
//   - HTML: a printable page with one box per label, laid out with CSS grid
//   - JSON: the batch itself, for external tools
//   - PNG: the sheet rasterized in-process
//   - PDF: the SVG sheet converted with rsvg-convert
//
// All sinks share a [Geometry] that fixes the size of one grid slot and how
// labels are arranged on the sheet:
//
//	svg := sink.RenderSVG(batch, sink.WithGeometry(sink.Geometry{CellWidth: 40, CellHeight: 24, Columns: 3}))
//	html, err := sink.RenderHTML(batch, sink.WithTitle("Etiketler"))
//
// Padding units are drawn as empty slots so the grid structure stays
// visible. Units whose field was missing or whose code image failed carry
// the "missing" and "failed" classes in SVG and HTML.
//
// [label.Batch]: github.com/matzehuels/etiket/pkg/label.Batch
package sink
