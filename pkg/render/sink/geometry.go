package sink

import (
	"strconv"
	"strings"

	"github.com/matzehuels/etiket/pkg/label"
	"github.com/matzehuels/etiket/pkg/label/cell"
	"github.com/matzehuels/etiket/pkg/label/template"
)

// Geometry sizes labels on a sheet. Lengths are in CSS pixels.
type Geometry struct {
	// CellWidth and CellHeight are the size of one grid slot.
	CellWidth  float64
	CellHeight float64
	// Padding is the space between a label's border and its grid.
	Padding float64
	// Gap is the space between neighbouring labels.
	Gap float64
	// Columns is the number of labels per sheet row.
	Columns int
}

// DefaultGeometry fits two 6-column labels side by side on a portrait A4 page.
var DefaultGeometry = Geometry{
	CellWidth:  52,
	CellHeight: 30,
	Padding:    6,
	Gap:        16,
	Columns:    2,
}

const defaultFontSize = 12.0

func (g Geometry) orDefault() Geometry {
	d := DefaultGeometry
	if g.CellWidth > 0 {
		d.CellWidth = g.CellWidth
	}
	if g.CellHeight > 0 {
		d.CellHeight = g.CellHeight
	}
	if g.Padding > 0 {
		d.Padding = g.Padding
	}
	if g.Gap > 0 {
		d.Gap = g.Gap
	}
	if g.Columns > 0 {
		d.Columns = g.Columns
	}
	return d
}

type rect struct{ X, Y, W, H float64 }

// labelSize returns the outer size of a label including padding.
func (g Geometry) labelSize(l label.Label) (w, h float64) {
	return float64(l.Width)*g.CellWidth + 2*g.Padding, float64(l.Rows)*g.CellHeight + 2*g.Padding
}

// slot returns the outer width and height every label is given on the sheet.
func (g Geometry) slot(b *label.Batch) (w, h float64) {
	for _, l := range b.Labels {
		lw, lh := g.labelSize(l)
		w, h = max(w, lw), max(h, lh)
	}
	return w, h
}

// sheet is the placement of a batch's labels: every label gets the same slot.
type sheet struct {
	geometry Geometry
	slotW    float64
	slotH    float64
	n        int
}

func (g Geometry) sheet(b *label.Batch) sheet {
	sw, sh := g.slot(b)
	return sheet{geometry: g, slotW: sw, slotH: sh, n: len(b.Labels)}
}

// size returns the size of the whole sheet.
func (s sheet) size() (w, h float64) {
	if s.n == 0 {
		return 0, 0
	}
	g := s.geometry
	cols := min(g.Columns, s.n)
	rows := (s.n + cols - 1) / cols
	return float64(cols)*s.slotW + float64(cols+1)*g.Gap, float64(rows)*s.slotH + float64(rows+1)*g.Gap
}

// origin returns the top-left corner of label i on the sheet.
func (s sheet) origin(i int) (x, y float64) {
	g := s.geometry
	col, row := i%g.Columns, i/g.Columns
	return g.Gap + float64(col)*(s.slotW+g.Gap), g.Gap + float64(row)*(s.slotH+g.Gap)
}

// unitRect returns the rectangle of u relative to its label's top-left corner.
func (g Geometry) unitRect(u cell.Unit) rect {
	return rect{
		X: g.Padding + float64(u.Column)*g.CellWidth,
		Y: g.Padding + float64(u.Row)*g.CellHeight,
		W: float64(u.ColSpan) * g.CellWidth,
		H: float64(u.RowSpan) * g.CellHeight,
	}
}

// fontSize parses a style font size such as "10px" or "10". Other units and
// unparsable values fall back to the default.
func fontSize(s template.Style) float64 {
	v := strings.TrimSuffix(strings.TrimSpace(s.FontSize), "px")
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return defaultFontSize
	}
	return f
}

// Option configures the sinks.
type Option func(*options)

type options struct {
	geometry Geometry
	title    string
	scale    float64
}

// WithGeometry sets the sheet geometry. Zero fields keep their defaults.
func WithGeometry(g Geometry) Option {
	return func(o *options) { o.geometry = g }
}

// WithTitle sets the HTML page title.
func WithTitle(t string) Option {
	return func(o *options) { o.title = t }
}

// WithScale sets the PNG scale factor (default 2.0 for 2x resolution).
func WithScale(s float64) Option {
	return func(o *options) {
		if s > 0 {
			o.scale = s
		}
	}
}

func newOptions(opts []Option) options {
	o := options{title: "Etiketler", scale: 2}
	for _, opt := range opts {
		opt(&o)
	}
	o.geometry = o.geometry.orDefault()
	return o
}
