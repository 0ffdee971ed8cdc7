// Package cell turns placed template cells into renderable units by binding
// them to one data row.
package cell

import (
	"context"
	"fmt"

	"github.com/matzehuels/etiket/pkg/label/defect"
	"github.com/matzehuels/etiket/pkg/label/grid"
	"github.com/matzehuels/etiket/pkg/label/template"
	"github.com/matzehuels/etiket/pkg/rows"
)

const (
	// MissingPlaceholder is printed in place of a field the row does not have.
	MissingPlaceholder = "[eksik]"
	// ErrorPlaceholder is printed in place of a code image that could not be produced.
	ErrorPlaceholder = "[hata]"
)

// Unit is one rendered cell of a label.
type Unit struct {
	grid.PlacedCell

	Kind  template.Kind  `json:"kind,omitempty"`
	Field string         `json:"field,omitempty"`
	Text  string         `json:"text"`
	Align template.Align `json:"align,omitempty"`
	Style template.Style `json:"style,omitempty"`
	Image *Image         `json:"image,omitempty"`

	// Missing is set when the bound field was absent and Text holds MissingPlaceholder.
	Missing bool `json:"missing,omitempty"`
	// Failed is set when the code image could not be resolved and Text holds ErrorPlaceholder.
	Failed bool `json:"failed,omitempty"`
}

// Renderer binds placed cells to row values.
type Renderer struct {
	resolver Resolver
}

// NewRenderer returns a renderer resolving code images through r.
// A nil resolver means [ValueOnly].
func NewRenderer(r Resolver) *Renderer {
	if r == nil {
		r = ValueOnly
	}
	return &Renderer{resolver: r}
}

// Render produces the unit for pc, which must have been packed from t.
//
// Defects are returned with Label set to defect.TemplateLevel; the caller
// attributes them to a label. Render never fails: problems become
// placeholder text and a defect.
func (r *Renderer) Render(ctx context.Context, t template.Template, pc grid.PlacedCell, row rows.Row) (Unit, []defect.Defect) {
	u := Unit{PlacedCell: pc}
	if pc.Padding {
		return u, nil
	}

	c, ok := pc.Cell(t)
	if !ok {
		u.Padding = true
		return u, []defect.Defect{{
			Kind:    defect.KindLayout,
			Label:   defect.TemplateLevel,
			CellID:  pc.ID,
			Message: fmt.Sprintf("placed cell refers to template index %d of %d", pc.Index, len(t.Cells)),
		}}
	}

	u.Kind = c.Kind
	u.Align = c.Align.OrDefault()
	u.Style = c.Style

	var defects []defect.Defect
	switch c.Kind {
	case template.KindStaticText:
		u.Text = c.Content

	case template.KindText:
		defects = bind(&u, c, row)

	case template.KindCodeText:
		defects = bind(&u, c, row)
		u.Align = template.AlignCenter

	case template.KindCodeImage:
		defects = bind(&u, c, row)
		img, err := r.resolver.Resolve(ctx, u.Text)
		if err != nil {
			u.Failed = true
			u.Text = ErrorPlaceholder
			defects = append(defects, defect.Defect{
				Kind:    defect.KindResolution,
				Label:   defect.TemplateLevel,
				CellID:  c.ID,
				Field:   c.Field,
				Message: err.Error(),
			})
			break
		}
		u.Image = &img

	default:
		panic(fmt.Sprintf("cell: unhandled kind %q", c.Kind))
	}
	return u, defects
}

// bind copies the row value of c's field into u, substituting the
// placeholder when the field is absent.
func bind(u *Unit, c template.Cell, row rows.Row) []defect.Defect {
	u.Field = c.Field
	v, ok := row.Get(c.Field)
	if ok {
		u.Text = v
		return nil
	}
	u.Text = MissingPlaceholder
	u.Missing = true
	return []defect.Defect{{
		Kind:    defect.KindMissingField,
		Label:   defect.TemplateLevel,
		CellID:  c.ID,
		Field:   c.Field,
		Message: fmt.Sprintf("field %q not in row", c.Field),
	}}
}
