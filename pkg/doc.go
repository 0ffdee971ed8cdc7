// Package pkg provides the core libraries for Etiket label printing.
//
// # Overview
//
// Etiket turns spreadsheet rows into printable product labels. A template
// describes the cells of one label; the cells are packed row-major onto a
// fixed-width grid, bound to the values of each row and rendered as a sheet.
//
// # Architecture
//
// The typical data flow through Etiket:
//
//	rows (JSON array of flat objects)
//	         ↓
//	    [rows] package (decode, select by index)
//	         ↓
//	    [label/grid] package (pack the template onto the grid)
//	         ↓
//	    [label/cell] package (bind cells to row values, resolve code images)
//	         ↓
//	    [label] package (one label per row, defects collected)
//	         ↓
//	    [render/sink] package (HTML, SVG, PNG, PDF, JSON)
//
// # Quick Start
//
//	set, _ := rows.ImportJSON(data)
//	batch, _ := label.NewAssembler(
//	    label.WithResolver(codeimage.NewQR()),
//	).Assemble(ctx, set.Rows, template.Default())
//	html, _ := sink.RenderHTML(batch)
//
// # Main Packages
//
// [label/template] - Templates: ordered cells with kinds, spans, alignment and
// style. Read from TOML or JSON; [template.Default] is the product label.
//
// [label/grid] - The grid cursor and the packer. Row spans reserve columns in
// the rows below; cells that do not fit are skipped and reported as defects.
//
// [label/cell] - Binds one placed cell to a row: static text, field text,
// code text and code images, with placeholders for missing fields.
//
// [label/defect] - Non-fatal diagnostics (layout, missing field, resolution).
//
// [codeimage] - Code image resolvers: QR PNG, URL reference, value only, and
// a cache-backed wrapper.
//
// [pipeline] - The rows → labels → artifacts pipeline used by the CLI and the
// preview server, with artifact caching.
//
// [cache] - File, Redis and null caches plus key derivation.
//
// [render] - SVG to PDF/PNG conversion via rsvg-convert.
//
// [errors] - Coded errors and input validators.
//
// [observability] - Hooks for metrics and tracing.
//
// # Testing
//
//	go test ./...                                   # All tests
//	ETIKET_TEST_REDIS_ADDR=localhost:6379 go test ./pkg/cache/   # Include Redis
package pkg
