package grid

import "fmt"

// Occupancy returns a Rows×Width matrix mapping every grid slot to the index
// (in Cells) of the placed cell covering it, or -1 for uncovered slots.
func (p Placement) Occupancy() [][]int {
	grid := make([][]int, p.Rows)
	for r := range grid {
		grid[r] = make([]int, p.Width)
		for c := range grid[r] {
			grid[r][c] = -1
		}
	}
	for i, pc := range p.Cells {
		for r := pc.Row; r < pc.Row+pc.RowSpan && r < p.Rows; r++ {
			for c := pc.Column; c < pc.Column+pc.ColSpan && c < p.Width; c++ {
				grid[r][c] = i
			}
		}
	}
	return grid
}

// Check verifies that every grid slot is covered by exactly one placed cell
// and that no cell extends outside the grid.
func (p Placement) Check() error {
	seen := make([][]int, p.Rows)
	for r := range seen {
		seen[r] = make([]int, p.Width)
	}
	for _, pc := range p.Cells {
		if pc.Column < 0 || pc.Row < 0 || pc.Column+pc.ColSpan > p.Width || pc.Row+pc.RowSpan > p.Rows {
			return fmt.Errorf("cell %s at (%d,%d) span %dx%d is outside the %dx%d grid",
				pc.ID, pc.Row, pc.Column, pc.RowSpan, pc.ColSpan, p.Rows, p.Width)
		}
		for r := pc.Row; r < pc.Row+pc.RowSpan; r++ {
			for c := pc.Column; c < pc.Column+pc.ColSpan; c++ {
				seen[r][c]++
			}
		}
	}
	for r, row := range seen {
		for c, n := range row {
			switch {
			case n == 0:
				return fmt.Errorf("gap at row %d, column %d", r, c)
			case n > 1:
				return fmt.Errorf("overlap at row %d, column %d (%d cells)", r, c, n)
			}
		}
	}
	return nil
}

// RowCells returns the placed cells that start in grid row r, in column order.
func (p Placement) RowCells(r int) []PlacedCell {
	var out []PlacedCell
	for _, pc := range p.Cells {
		if pc.Row == r {
			out = append(out, pc)
		}
	}
	return out
}
