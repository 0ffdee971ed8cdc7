package grid

import (
	"fmt"

	"github.com/matzehuels/etiket/pkg/label/defect"
	"github.com/matzehuels/etiket/pkg/label/template"
)

// PaddingIndex is the template index of synthetic padding cells.
const PaddingIndex = -1

// PlacedCell is a template cell resolved to grid coordinates.
type PlacedCell struct {
	// Index is the position of the cell in Template.Cells, or PaddingIndex.
	Index   int    `json:"index"`
	ID      string `json:"id"`
	Column  int    `json:"column"`
	Row     int    `json:"row"`
	ColSpan int    `json:"col_span"`
	RowSpan int    `json:"row_span"`
	Padding bool   `json:"padding,omitempty"`
}

// Cell returns the template cell p was placed from. Padding cells have none.
func (p PlacedCell) Cell(t template.Template) (template.Cell, bool) {
	if p.Padding || p.Index < 0 || p.Index >= len(t.Cells) {
		return template.Cell{}, false
	}
	return t.Cells[p.Index], true
}

// Placement is the result of packing one template.
type Placement struct {
	Width   int             `json:"width"`
	Rows    int             `json:"rows"`
	Cells   []PlacedCell    `json:"cells"`
	Defects []defect.Defect `json:"defects,omitempty"`
}

// RealCells returns the number of non-padding cells.
func (p Placement) RealCells() int {
	n := 0
	for _, c := range p.Cells {
		if !c.Padding {
			n++
		}
	}
	return n
}

// Pack lays out the cells of t on a fresh cursor.
//
// Cells that cannot be placed are skipped and reported in Placement.Defects
// with Label set to defect.TemplateLevel. Pack is deterministic: packing the
// same template twice yields identical placements.
func Pack(t template.Template) Placement {
	cur := NewCursor(t.GridWidth())
	p := Placement{Width: cur.Width()}

	for i, c := range t.Cells {
		cols, rows := c.Cols(), c.Rows()
		if cols < 1 || rows < 1 {
			p.reject(c, "col_span and row_span must be positive, got %d and %d", cols, rows)
			continue
		}
		if cols > p.Width {
			p.reject(c, "col_span %d exceeds grid width %d", cols, p.Width)
			continue
		}

		cur.Advance()
		if free := cur.FreeRun(); cols > free {
			p.reject(c, "col_span %d does not fit the %d free column(s) at row %d, column %d",
				cols, free, cur.Row(), cur.Column())
			continue
		}

		col, row, err := cur.Place(cols, rows)
		if err != nil {
			p.reject(c, "%v", err)
			continue
		}
		p.Cells = append(p.Cells, PlacedCell{
			Index:   i,
			ID:      c.ID,
			Column:  col,
			Row:     row,
			ColSpan: cols,
			RowSpan: rows,
		})
	}

	if len(p.Cells) > 0 {
		p.close(cur)
	}
	return p
}

// close pads the remainder of the current row, then emits padding rows until
// no reservation is pending.
func (p *Placement) close(cur *Cursor) {
	for {
		p.padRow(cur)
		if !cur.HasPending() {
			break
		}
		cur.NextRow()
	}
	p.Rows = cur.Row() + 1
}

// padRow fills every free run left in the current row with one padding cell.
func (p *Placement) padRow(cur *Cursor) {
	for {
		cur.skipReserved()
		if cur.Column() >= cur.Width() {
			return
		}
		col, row, err := cur.Place(cur.FreeRun(), 1)
		if err != nil {
			return
		}
		p.Cells = append(p.Cells, PlacedCell{
			Index:   PaddingIndex,
			ID:      fmt.Sprintf("pad-%d-%d", row, col),
			Column:  col,
			Row:     row,
			ColSpan: cur.Column() - col,
			RowSpan: 1,
			Padding: true,
		})
	}
}

func (p *Placement) reject(c template.Cell, format string, args ...any) {
	p.Defects = append(p.Defects, defect.Defect{
		Kind:    defect.KindLayout,
		Label:   defect.TemplateLevel,
		CellID:  c.ID,
		Field:   c.Field,
		Message: fmt.Sprintf(format, args...),
	})
}
