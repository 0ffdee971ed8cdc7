package grid

import "errors"

// Sentinel errors returned by [Cursor.Place].
var (
	// ErrNoRoom is returned when a span does not fit the free columns at the cursor.
	ErrNoRoom = errors.New("span does not fit the free columns at the cursor")

	// ErrInvalidSpan is returned for non-positive spans.
	ErrInvalidSpan = errors.New("spans must be positive")
)

// Cursor tracks packing state across a row-major grid of fixed width.
//
// A Cursor is owned by exactly one label layout and must not be shared.
type Cursor struct {
	width  int
	row    int
	column int

	// carry[c] is the number of grid rows below the current one that are
	// still occupied at column c by an already placed cell.
	carry []int

	// reserved[c] reports whether column c of the current row is occupied.
	reserved []bool
}

// NewCursor returns a cursor at row 0, column 0 of a grid width columns wide.
// Widths below 1 are treated as 1.
func NewCursor(width int) *Cursor {
	if width < 1 {
		width = 1
	}
	return &Cursor{
		width:    width,
		carry:    make([]int, width),
		reserved: make([]bool, width),
	}
}

// Width returns the grid width.
func (c *Cursor) Width() int { return c.width }

// Row returns the current grid row.
func (c *Cursor) Row() int { return c.row }

// Column returns the current write column. It equals Width when the row is full.
func (c *Cursor) Column() int { return c.column }

// Reserved reports whether column col of the current row is occupied.
func (c *Cursor) Reserved(col int) bool {
	return col >= 0 && col < c.width && c.reserved[col]
}

// Carry returns the carry counter of column col.
func (c *Cursor) Carry(col int) int {
	if col < 0 || col >= c.width {
		return 0
	}
	return c.carry[col]
}

// HasPending reports whether any column is still reserved for rows below the current one.
func (c *Cursor) HasPending() bool {
	for _, n := range c.carry {
		if n > 0 {
			return true
		}
	}
	return false
}

// Advance moves the cursor to the next free column, skipping reserved
// columns and wrapping to new grid rows as needed. It never skips a free column.
func (c *Cursor) Advance() {
	for {
		c.skipReserved()
		if c.column < c.width {
			return
		}
		c.NextRow()
	}
}

// NextRow begins a new grid row at column 0, consuming one unit of every
// pending carry entry. Columns with pending carry are reserved in the new row.
func (c *Cursor) NextRow() {
	c.row++
	c.column = 0
	for i, n := range c.carry {
		c.reserved[i] = n > 0
		if n > 0 {
			c.carry[i] = n - 1
		}
	}
}

// FreeRun returns the number of contiguous free columns starting at the cursor.
func (c *Cursor) FreeRun() int {
	n := 0
	for col := c.column; col < c.width && !c.reserved[col]; col++ {
		n++
	}
	return n
}

// Place reserves colSpan columns starting at the cursor and moves the cursor
// past them. When rowSpan > 1 the columns stay reserved in the next rowSpan-1
// grid rows. It returns the column and row the span starts at.
func (c *Cursor) Place(colSpan, rowSpan int) (col, row int, err error) {
	if colSpan < 1 || rowSpan < 1 {
		return 0, 0, ErrInvalidSpan
	}
	if colSpan > c.FreeRun() {
		return 0, 0, ErrNoRoom
	}

	start := c.column
	for i := start; i < start+colSpan; i++ {
		c.reserved[i] = true
		c.carry[i] = rowSpan - 1
	}
	c.column += colSpan
	return start, c.row, nil
}

// skipReserved moves over reserved columns without leaving the current row.
func (c *Cursor) skipReserved() {
	for c.column < c.width && c.reserved[c.column] {
		c.column++
	}
}
