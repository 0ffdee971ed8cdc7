// Package template defines label templates: an ordered list of cell
// descriptors laid out on a fixed-width grid.
//
// A template is configuration. It is loaded once (from TOML or JSON), validated,
// and then shared read-only across every row that is laid out with it. Spans
// larger than the grid are not rejected here; the packer in [grid] skips such
// cells and reports them as layout defects so the rest of the label survives.
//
// [grid]: github.com/matzehuels/etiket/pkg/label/grid
package template

import (
	"fmt"

	"github.com/matzehuels/etiket/pkg/errors"
)

// DefaultWidth is the grid width used when a template does not set one.
const DefaultWidth = 6

// Upper bounds enforced by Validate. The packer allocates per column, emits
// one padding row per carried row and one unit per cell for every label.
const (
	MaxWidth   = 64
	MaxRowSpan = 64
	MaxCells   = 256
)

// Kind selects how a cell is rendered.
type Kind string

// Cell kinds. The set is closed; renderers switch over it exhaustively.
const (
	KindStaticText Kind = "static_text" // literal Content
	KindText       Kind = "text"        // value of Field
	KindCodeImage  Kind = "code_image"  // scannable image encoding the value of Field
	KindCodeText   Kind = "code_text"   // value of Field, centered, printed next to its code image
)

// Kinds lists every cell kind in declaration order.
var Kinds = []Kind{KindStaticText, KindText, KindCodeImage, KindCodeText}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindStaticText, KindText, KindCodeImage, KindCodeText:
		return true
	}
	return false
}

// BindsField reports whether cells of this kind read a row field.
func (k Kind) BindsField() bool {
	return k == KindText || k == KindCodeImage || k == KindCodeText
}

// Align is the horizontal alignment of a cell's content.
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Valid reports whether a is a known alignment. The empty value is valid and means left.
func (a Align) Valid() bool {
	switch a {
	case "", AlignLeft, AlignCenter, AlignRight:
		return true
	}
	return false
}

// OrDefault returns a, or AlignLeft when a is unset.
func (a Align) OrDefault() Align {
	if a == "" {
		return AlignLeft
	}
	return a
}

// Style holds optional presentation hints. Values are passed through to the
// output sinks as-is (e.g. "12px", "#333").
type Style struct {
	FontSize        string `toml:"font_size,omitempty" json:"font_size,omitempty"`
	Color           string `toml:"color,omitempty" json:"color,omitempty"`
	BackgroundColor string `toml:"background_color,omitempty" json:"background_color,omitempty"`
}

// IsZero reports whether no style value is set.
func (s Style) IsZero() bool { return s == Style{} }

// Cell describes one template slot.
type Cell struct {
	ID      string `toml:"id" json:"id"`
	Kind    Kind   `toml:"kind" json:"kind"`
	Content string `toml:"content,omitempty" json:"content,omitempty"`
	Field   string `toml:"field,omitempty" json:"field,omitempty"`
	ColSpan int    `toml:"col_span,omitempty" json:"col_span,omitempty"`
	RowSpan int    `toml:"row_span,omitempty" json:"row_span,omitempty"`
	Align   Align  `toml:"align,omitempty" json:"align,omitempty"`
	Style   Style  `toml:"style,omitempty" json:"style,omitempty"`
}

// Cols returns the column span, treating an unset span as 1.
func (c Cell) Cols() int {
	if c.ColSpan == 0 {
		return 1
	}
	return c.ColSpan
}

// Rows returns the row span, treating an unset span as 1.
func (c Cell) Rows() int {
	if c.RowSpan == 0 {
		return 1
	}
	return c.RowSpan
}

// Template is an ordered sequence of cells on a grid Width columns wide.
type Template struct {
	Name  string `toml:"name,omitempty" json:"name,omitempty"`
	Width int    `toml:"width,omitempty" json:"width,omitempty"`
	Cells []Cell `toml:"cell" json:"cells"`
}

// GridWidth returns the template width, or DefaultWidth when unset.
func (t Template) GridWidth() int {
	if t.Width == 0 {
		return DefaultWidth
	}
	return t.Width
}

// Cell returns the cell with the given id.
func (t Template) Cell(id string) (Cell, bool) {
	for _, c := range t.Cells {
		if c.ID == id {
			return c, true
		}
	}
	return Cell{}, false
}

// Fields returns the distinct row fields the template reads, in first-use order.
func (t Template) Fields() []string {
	seen := make(map[string]bool)
	var fields []string
	for _, c := range t.Cells {
		if !c.Kind.BindsField() || seen[c.Field] {
			continue
		}
		seen[c.Field] = true
		fields = append(fields, c.Field)
	}
	return fields
}

// Validate checks the structural rules a template must satisfy before use:
// positive width up to MaxWidth, at most MaxCells cells, unique valid ids, known kinds and
// alignments, content for static cells, a field for bound cells, row spans up
// to MaxRowSpan, and safe style values.
//
// Column spans wider than the grid are not checked; see the package documentation.
func (t Template) Validate() error {
	if t.Width < 0 {
		return errors.New(errors.ErrCodeInvalidTemplate, "grid width must be positive, got %d", t.Width)
	}
	if t.Width > MaxWidth {
		return errors.New(errors.ErrCodeInvalidTemplate, "grid width %d exceeds maximum %d", t.Width, MaxWidth)
	}
	if len(t.Cells) > MaxCells {
		return errors.New(errors.ErrCodeInvalidTemplate, "%d cells exceed maximum %d", len(t.Cells), MaxCells)
	}

	ids := make(map[string]bool, len(t.Cells))
	for i, c := range t.Cells {
		if err := validateCell(c); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidTemplate, err, "cell %d", i)
		}
		if ids[c.ID] {
			return errors.New(errors.ErrCodeInvalidTemplate, "duplicate cell id %q", c.ID)
		}
		ids[c.ID] = true
	}
	return nil
}

func validateCell(c Cell) error {
	if err := errors.ValidateCellID(c.ID); err != nil {
		return err
	}
	if !c.Kind.Valid() {
		return fmt.Errorf("%s: unknown kind %q", c.ID, c.Kind)
	}
	if !c.Align.Valid() {
		return fmt.Errorf("%s: unknown align %q", c.ID, c.Align)
	}
	if c.RowSpan > MaxRowSpan {
		return fmt.Errorf("%s: row_span %d exceeds maximum %d", c.ID, c.RowSpan, MaxRowSpan)
	}
	if c.Kind == KindStaticText && c.Content == "" {
		return fmt.Errorf("%s: static_text requires content", c.ID)
	}
	if c.Kind.BindsField() {
		if err := errors.ValidateFieldName(c.Field); err != nil {
			return fmt.Errorf("%s: %w", c.ID, err)
		}
	}
	for name, v := range map[string]string{
		"font_size":        c.Style.FontSize,
		"color":            c.Style.Color,
		"background_color": c.Style.BackgroundColor,
	} {
		if err := errors.ValidateStyleValue(name, v); err != nil {
			return fmt.Errorf("%s: %w", c.ID, err)
		}
	}
	return nil
}
