package template

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/matzehuels/etiket/pkg/errors"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestDefaultFields(t *testing.T) {
	got := Default().Fields()
	want := []string{"URUN_ADI", "SERI_NO", "LOT_NO"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Fields() = %v, want %v", got, want)
	}
}

func TestSpanDefaults(t *testing.T) {
	c := Cell{}
	if c.Cols() != 1 || c.Rows() != 1 {
		t.Errorf("unset spans = %dx%d, want 1x1", c.Cols(), c.Rows())
	}
	c = Cell{ColSpan: 3, RowSpan: 2}
	if c.Cols() != 3 || c.Rows() != 2 {
		t.Errorf("spans = %dx%d, want 3x2", c.Cols(), c.Rows())
	}
}

func TestGridWidth(t *testing.T) {
	if got := (Template{}).GridWidth(); got != DefaultWidth {
		t.Errorf("GridWidth() = %d, want %d", got, DefaultWidth)
	}
	if got := (Template{Width: 4}).GridWidth(); got != 4 {
		t.Errorf("GridWidth() = %d, want 4", got)
	}
}

func TestCellLookup(t *testing.T) {
	tmpl := Default()
	c, ok := tmpl.Cell("qr")
	if !ok || c.Kind != KindCodeImage {
		t.Fatalf("Cell(qr) = %+v, %v", c, ok)
	}
	if _, ok := tmpl.Cell("nope"); ok {
		t.Error("Cell(nope) found a cell")
	}
}

func TestAlignOrDefault(t *testing.T) {
	if got := Align("").OrDefault(); got != AlignLeft {
		t.Errorf("OrDefault() = %q, want left", got)
	}
	if got := AlignRight.OrDefault(); got != AlignRight {
		t.Errorf("OrDefault() = %q, want right", got)
	}
}

func TestKinds(t *testing.T) {
	for _, k := range Kinds {
		if !k.Valid() {
			t.Errorf("%q not valid", k)
		}
	}
	if Kind("barcode").Valid() {
		t.Error("unknown kind reported valid")
	}
	if KindStaticText.BindsField() {
		t.Error("static_text binds a field")
	}
}

func TestValidate(t *testing.T) {
	text := func(id, field string) Cell { return Cell{ID: id, Kind: KindText, Field: field} }

	tests := []struct {
		name    string
		tmpl    Template
		wantErr bool
	}{
		{"empty template", Template{}, false},
		{"oversized span is left to the packer", Template{Width: 2, Cells: []Cell{{ID: "a", Kind: KindText, Field: "X", ColSpan: 9}}}, false},
		{"negative width", Template{Width: -1}, true},
		{"width at maximum", Template{Width: MaxWidth}, false},
		{"width over maximum", Template{Width: 1 << 62}, true},
		{"cells at maximum", Template{Width: 1, Cells: manyCells(MaxCells)}, false},
		{"cells over maximum", Template{Width: 1, Cells: manyCells(20000)}, true},
		{"row span over maximum", Template{Cells: []Cell{{ID: "a", Kind: KindText, Field: "X", RowSpan: 2_000_000}}}, true},
		{"duplicate id", Template{Cells: []Cell{text("a", "X"), text("a", "Y")}}, true},
		{"empty id", Template{Cells: []Cell{text("", "X")}}, true},
		{"id with spaces", Template{Cells: []Cell{text("a b", "X")}}, true},
		{"unknown kind", Template{Cells: []Cell{{ID: "a", Kind: "barcode", Field: "X"}}}, true},
		{"unknown align", Template{Cells: []Cell{{ID: "a", Kind: KindText, Field: "X", Align: "justify"}}}, true},
		{"static without content", Template{Cells: []Cell{{ID: "a", Kind: KindStaticText}}}, true},
		{"bound without field", Template{Cells: []Cell{text("a", "")}}, true},
		{"style injection", Template{Cells: []Cell{{ID: "a", Kind: KindText, Field: "X", Style: Style{Color: "red;background:url(x)"}}}}, true},
		{"valid style", Template{Cells: []Cell{{ID: "a", Kind: KindText, Field: "X", Style: Style{Color: "#333", FontSize: "12px"}}}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tmpl.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidTemplate) {
				t.Errorf("Validate() code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidTemplate)
			}
		})
	}
}

func manyCells(n int) []Cell {
	cells := make([]Cell, n)
	for i := range cells {
		cells[i] = Cell{ID: fmt.Sprintf("c%d", i), Kind: KindText, Field: "X"}
	}
	return cells
}
