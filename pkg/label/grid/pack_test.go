package grid

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/etiket/pkg/label/defect"
	"github.com/matzehuels/etiket/pkg/label/template"
)

func cells(t *testing.T, spans ...[2]int) template.Template {
	t.Helper()
	tmpl := template.Template{Width: 6}
	for i, s := range spans {
		tmpl.Cells = append(tmpl.Cells, template.Cell{
			ID:      "c" + string(rune('a'+i)),
			Kind:    template.KindStaticText,
			Content: "x",
			ColSpan: s[0],
			RowSpan: s[1],
		})
	}
	return tmpl
}

type pos struct{ row, col, cols, rows int }

func positions(p Placement) []pos {
	out := make([]pos, len(p.Cells))
	for i, c := range p.Cells {
		out[i] = pos{c.Row, c.Column, c.ColSpan, c.RowSpan}
	}
	return out
}

func TestPackDefaultTemplate(t *testing.T) {
	p := Pack(template.Default())

	require.NoError(t, p.Check())
	assert.Empty(t, p.Defects)
	assert.Equal(t, 6, p.Width)
	assert.Equal(t, 4, p.Rows)
	assert.Equal(t, 8, p.RealCells())
	assert.Len(t, p.Cells, 8, "the default template needs no padding")

	assert.Equal(t, []pos{
		{0, 0, 2, 1}, // name-label
		{0, 2, 2, 1}, // name
		{0, 4, 2, 3}, // qr
		{1, 0, 2, 1}, // lot-label
		{1, 2, 2, 1}, // lot
		{2, 0, 2, 1}, // serial-label
		{2, 2, 2, 1}, // serial
		{3, 0, 6, 1}, // serial-text
	}, positions(p))

	for i, pc := range p.Cells {
		assert.Equal(t, i, pc.Index)
		assert.False(t, pc.Padding)
	}
}

func TestPackRowSpanSkipsColumnsForRowSpanMinusOneRows(t *testing.T) {
	for r := 1; r <= 4; r++ {
		tmpl := cells(t, [2]int{2, 1}, [2]int{2, r}, [2]int{2, 1})
		for i := 0; i < 3*r+3; i++ {
			tmpl.Cells = append(tmpl.Cells, template.Cell{
				ID: "f" + string(rune('a'+i)), Kind: template.KindStaticText, Content: "x", ColSpan: 2,
			})
		}
		p := Pack(tmpl)
		require.NoError(t, p.Check())

		occ := p.Occupancy()
		tall := 1
		for k := 0; k < r; k++ {
			assert.Equal(t, tall, occ[k][2], "r=%d row %d col 2", r, k)
			assert.Equal(t, tall, occ[k][3], "r=%d row %d col 3", r, k)
		}
		require.Greater(t, p.Rows, r)
		assert.NotEqual(t, tall, occ[r][2], "r=%d column 2 free after %d rows", r, r)
	}
}

func TestPackTrailingPaddingRows(t *testing.T) {
	p := Pack(cells(t, [2]int{2, 3}, [2]int{2, 1}))

	require.NoError(t, p.Check())
	assert.Equal(t, 3, p.Rows)
	assert.Equal(t, 2, p.RealCells())
	assert.Equal(t, []pos{
		{0, 0, 2, 3},
		{0, 2, 2, 1},
		{0, 4, 2, 1}, // padding closes row 0
		{1, 2, 4, 1}, // padding row beside the tall cell
		{2, 2, 4, 1},
	}, positions(p))
	for _, pc := range p.Cells[2:] {
		assert.True(t, pc.Padding)
		assert.Equal(t, PaddingIndex, pc.Index)
	}
	assert.Equal(t, "pad-1-2", p.Cells[3].ID)
}

func TestPackRejectsSpanWiderThanGrid(t *testing.T) {
	p := Pack(cells(t, [2]int{2, 1}, [2]int{7, 1}, [2]int{4, 1}))

	require.NoError(t, p.Check())
	require.Len(t, p.Defects, 1)
	d := p.Defects[0]
	assert.Equal(t, defect.KindLayout, d.Kind)
	assert.Equal(t, defect.TemplateLevel, d.Label)
	assert.Equal(t, "cb", d.CellID)
	assert.Contains(t, d.Message, "exceeds grid width 6")

	assert.Equal(t, []pos{{0, 0, 2, 1}, {0, 2, 4, 1}}, positions(p), "later cells are unaffected")
}

func TestPackRejectsSpanThatDoesNotFitRemainingColumns(t *testing.T) {
	p := Pack(cells(t, [2]int{4, 1}, [2]int{4, 1}, [2]int{2, 1}))

	require.NoError(t, p.Check())
	require.Len(t, p.Defects, 1)
	assert.Equal(t, "cb", p.Defects[0].CellID)
	assert.Contains(t, p.Defects[0].Message, "2 free column(s) at row 0, column 4")
	assert.Equal(t, []pos{{0, 0, 4, 1}, {0, 4, 2, 1}}, positions(p))
	assert.Equal(t, 1, p.Rows)
}

func TestPackRejectsSpanBlockedByReservation(t *testing.T) {
	p := Pack(cells(t, [2]int{2, 2}, [2]int{4, 1}, [2]int{5, 1}, [2]int{4, 1}))

	require.NoError(t, p.Check())
	require.Len(t, p.Defects, 1)
	assert.Equal(t, "cc", p.Defects[0].CellID)
	assert.Equal(t, []pos{{0, 0, 2, 2}, {0, 2, 4, 1}, {1, 2, 4, 1}}, positions(p))
}

func TestPackRejectsNonPositiveSpans(t *testing.T) {
	p := Pack(cells(t, [2]int{-1, 1}, [2]int{2, -2}, [2]int{6, 1}))

	require.NoError(t, p.Check())
	assert.Len(t, p.Defects, 2)
	assert.Equal(t, []pos{{0, 0, 6, 1}}, positions(p))
}

func TestPackFullWidthTallCell(t *testing.T) {
	p := Pack(cells(t, [2]int{6, 2}, [2]int{3, 1}))

	require.NoError(t, p.Check())
	assert.Equal(t, []pos{{0, 0, 6, 2}, {2, 0, 3, 1}, {2, 3, 3, 1}}, positions(p))
	assert.True(t, p.Cells[2].Padding)
	assert.Equal(t, 3, p.Rows)
}

func TestPackEmptyTemplate(t *testing.T) {
	p := Pack(template.Template{Width: 6})
	assert.Empty(t, p.Cells)
	assert.Zero(t, p.Rows)
	assert.NoError(t, p.Check())
}

func TestPackAllCellsRejected(t *testing.T) {
	p := Pack(cells(t, [2]int{9, 1}, [2]int{8, 2}))
	assert.Empty(t, p.Cells)
	assert.Zero(t, p.Rows)
	assert.Len(t, p.Defects, 2)
}

func TestPackDefaultWidth(t *testing.T) {
	tmpl := cells(t, [2]int{0, 0})
	tmpl.Width = 0
	p := Pack(tmpl)
	assert.Equal(t, template.DefaultWidth, p.Width)
	assert.Equal(t, []pos{{0, 0, 1, 1}, {0, 1, 5, 1}}, positions(p), "unset spans mean 1")
}

func TestPackIsIdempotent(t *testing.T) {
	tmpl := template.Default()
	assert.Equal(t, Pack(tmpl), Pack(tmpl))
}

func TestPackRandomTemplatesCoverGrid(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for iter := 0; iter < 500; iter++ {
		width := 1 + rng.Intn(8)
		tmpl := template.Template{Width: width}
		n := rng.Intn(12)
		for i := 0; i < n; i++ {
			tmpl.Cells = append(tmpl.Cells, template.Cell{
				ID:      "c" + string(rune('a'+i)),
				Kind:    template.KindStaticText,
				Content: "x",
				ColSpan: 1 + rng.Intn(width+2),
				RowSpan: 1 + rng.Intn(4),
			})
		}

		p := Pack(tmpl)
		require.NoError(t, p.Check(), "iteration %d: %+v", iter, tmpl)
		assert.Equal(t, n, p.RealCells()+len(p.Defects), "iteration %d: every cell is placed or reported", iter)
		assert.Equal(t, p, Pack(tmpl), "iteration %d: deterministic", iter)

		for r := 0; r < p.Rows; r++ {
			covered := 0
			for _, pc := range p.Cells {
				if pc.Row <= r && r < pc.Row+pc.RowSpan {
					covered += pc.ColSpan
				}
			}
			assert.Equal(t, width, covered, "iteration %d: row %d", iter, r)
		}
	}
}

func TestPlacedCellLookup(t *testing.T) {
	tmpl := template.Default()
	p := Pack(tmpl)

	c, ok := p.Cells[2].Cell(tmpl)
	require.True(t, ok)
	assert.Equal(t, "qr", c.ID)

	_, ok = PlacedCell{Index: PaddingIndex, Padding: true}.Cell(tmpl)
	assert.False(t, ok)
}

func TestRowCells(t *testing.T) {
	p := Pack(template.Default())
	row1 := p.RowCells(1)
	require.Len(t, row1, 2)
	assert.Equal(t, "lot-label", row1[0].ID)
	assert.Equal(t, "lot", row1[1].ID)
}

func TestCheckDetectsGapsAndOverlaps(t *testing.T) {
	gap := Placement{Width: 2, Rows: 1, Cells: []PlacedCell{{ID: "a", ColSpan: 1, RowSpan: 1}}}
	assert.ErrorContains(t, gap.Check(), "gap at row 0, column 1")

	overlap := Placement{Width: 1, Rows: 1, Cells: []PlacedCell{
		{ID: "a", ColSpan: 1, RowSpan: 1},
		{ID: "b", ColSpan: 1, RowSpan: 1},
	}}
	assert.ErrorContains(t, overlap.Check(), "overlap")

	outside := Placement{Width: 1, Rows: 1, Cells: []PlacedCell{{ID: "a", ColSpan: 2, RowSpan: 1}}}
	assert.ErrorContains(t, outside.Check(), "outside")
}
