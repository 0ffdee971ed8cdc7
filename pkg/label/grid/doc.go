// Package grid packs label template cells onto a fixed-width, row-major grid.
//
// # Overview
//
// A label is a grid W columns wide. Template cells are placed left to right,
// wrapping to a new grid row when the current one is full. A cell with
// RowSpan > 1 keeps its columns reserved in the rows below it; later cells
// flow around those reservations automatically.
//
//	width 6, cells: a(2) b(2) q(2, rows 3) c(2) d(2) e(2) f(2) g(6)
//
//	row 0 | a a | b b | q q |
//	row 1 | c c | d d | q q |
//	row 2 | e e | f f | q q |
//	row 3 | g g g g g g     |
//
// # Cursor
//
// [Cursor] holds the packing state for one label: the write column and a
// per-column carry counter (rows still reserved below the current one). When
// a new grid row begins, every positive carry entry is consumed by one and the
// column is marked reserved for that row.
//
// # Packing
//
// [Pack] walks the template once. A cell whose span cannot fit is rejected
// and recorded as a layout defect; it is never truncated or split across a row
// boundary. A cell is rejected when its ColSpan exceeds the grid width, or the
// run of free columns at the cursor. Packing continues with the next cell.
//
// After the last cell, the current row is closed with padding cells and more
// padding rows are emitted while reservations are pending, so every grid row
// is covered exactly once. The loop is bounded by the number of template
// cells plus the total carry issued.
package grid
