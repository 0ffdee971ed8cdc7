// Package rows holds the tabular data labels are filled from.
//
// A data set is an ordered list of rows, each mapping a column header to a
// string value. Rows arrive already parsed (typically exported from a
// spreadsheet as a JSON array of objects) and are treated as read-only once
// loaded; the same Row may be shared by several labels.
package rows

import (
	"io"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/matzehuels/etiket/pkg/errors"
)

// Row maps field names to values. A field that is absent from the map is
// missing; a present field may still hold the empty string.
type Row map[string]string

// Get returns the value of field and whether it is present.
func (r Row) Get(field string) (string, bool) {
	v, ok := r[field]
	return v, ok
}

// Set is a loaded data set.
type Set struct {
	// Columns lists the keys of the first row in input order.
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// Len returns the number of rows.
func (s *Set) Len() int { return len(s.Rows) }

// ReadJSON loads a data set from r. See [ImportJSON].
func ReadJSON(r io.Reader) (*Set, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRows, err, "read rows")
	}
	return ImportJSON(data)
}

// ImportJSON parses a JSON array of flat objects.
//
// String values are kept as-is, numbers keep their literal form (so "12.50"
// stays "12.50"), booleans become "true" or "false", and null marks the field
// as missing. Nested objects and arrays are rejected. An empty array is an
// error: there is nothing to print.
func ImportJSON(data []byte) (*Set, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New(errors.ErrCodeInvalidRows, "rows are not valid JSON")
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsArray() {
		return nil, errors.New(errors.ErrCodeInvalidRows, "rows must be a JSON array of objects")
	}
	items := doc.Array()
	if len(items) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidRows, "no rows to print")
	}

	set := &Set{Rows: make([]Row, 0, len(items))}
	for i, item := range items {
		row, keys, err := parseRow(item)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRows, err, "row %d", i)
		}
		if i == 0 {
			set.Columns = keys
		}
		set.Rows = append(set.Rows, row)
	}
	return set, nil
}

func parseRow(item gjson.Result) (Row, []string, error) {
	if !item.IsObject() {
		return nil, nil, errors.New(errors.ErrCodeInvalidRows, "expected an object, got %s", item.Type)
	}

	row := make(Row)
	var keys []string
	var err error
	item.ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		if ferr := errors.ValidateFieldName(name); ferr != nil {
			err = ferr
			return false
		}
		keys = append(keys, name)

		switch value.Type {
		case gjson.Null:
			return true
		case gjson.String:
			row[name] = value.Str
		case gjson.Number:
			row[name] = value.Raw
		case gjson.True, gjson.False:
			row[name] = strconv.FormatBool(value.Bool())
		default:
			err = errors.New(errors.ErrCodeInvalidRows, "field %q is not a scalar", name)
			return false
		}
		return true
	})
	if err != nil {
		return nil, nil, err
	}
	return row, keys, nil
}

// Select returns the rows at the given indices, in the order given.
//
// Out-of-range indices are dropped silently and duplicates are kept, so the
// same row may be printed more than once. If nothing remains the selection is
// rejected with INVALID_SELECTION.
func (s *Set) Select(indices []int) ([]Row, error) {
	out := make([]Row, 0, len(indices))
	for _, i := range indices {
		if i < 0 || i >= len(s.Rows) {
			continue
		}
		out = append(out, s.Rows[i])
	}
	if len(out) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidSelection, "no rows selected for printing")
	}
	return out, nil
}

// ParseIndices parses a comma-separated list of zero-based row indices and
// inclusive ranges, e.g. "0,2,5-7". Whitespace around items is ignored.
func ParseIndices(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi, isRange := strings.Cut(part, "-")
		start, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil || start < 0 {
			return nil, errors.New(errors.ErrCodeInvalidSelection, "invalid row index %q", part)
		}
		end := start
		if isRange {
			end, err = strconv.Atoi(strings.TrimSpace(hi))
			if err != nil || end < start {
				return nil, errors.New(errors.ErrCodeInvalidSelection, "invalid row range %q", part)
			}
		}
		for i := start; i <= end; i++ {
			out = append(out, i)
		}
	}
	if len(out) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidSelection, "empty row selection")
	}
	return out, nil
}

// All returns the indices of every row in s.
func (s *Set) All() []int {
	idx := make([]int, len(s.Rows))
	for i := range idx {
		idx[i] = i
	}
	return idx
}
