// Package label assembles print-ready labels from a template and data rows.
//
// Assembly runs three stages per row:
//
//  1. [grid.Pack] lays the template cells out on a fresh cursor.
//  2. [cell.Renderer] binds every placed cell to the row.
//  3. The units are wrapped into a [Label].
//
// Labels come back in input order, one per row. Problems with individual
// cells (oversized spans, missing fields, failed code images) are collected
// as defects on the [Batch]; they never abort assembly.
package label

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/etiket/pkg/label/cell"
	"github.com/matzehuels/etiket/pkg/label/defect"
	"github.com/matzehuels/etiket/pkg/label/grid"
	"github.com/matzehuels/etiket/pkg/label/template"
	"github.com/matzehuels/etiket/pkg/rows"
)

// Label is one rendered row.
type Label struct {
	Index int         `json:"index"`
	Row   rows.Row    `json:"row"`
	Width int         `json:"width"`
	Rows  int         `json:"rows"`
	Units []cell.Unit `json:"units"`
}

// Batch is the result of assembling a set of rows.
type Batch struct {
	Template string          `json:"template,omitempty"`
	Labels   []Label         `json:"labels"`
	Defects  []defect.Defect `json:"defects,omitempty"`
}

// Len returns the number of labels.
func (b *Batch) Len() int { return len(b.Labels) }

// DefectsFor returns the defects attributed to label i.
func (b *Batch) DefectsFor(i int) []defect.Defect {
	var out []defect.Defect
	for _, d := range b.Defects {
		if d.Label == i {
			out = append(out, d)
		}
	}
	return out
}

// Assembler builds labels. The zero value is not usable; call [NewAssembler].
type Assembler struct {
	renderer    *cell.Renderer
	concurrency int
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithResolver sets the code-image resolver. The default is [cell.ValueOnly].
func WithResolver(r cell.Resolver) Option {
	return func(a *Assembler) { a.renderer = cell.NewRenderer(r) }
}

// WithConcurrency assembles up to n rows at once. Values below 1 mean 1.
func WithConcurrency(n int) Option {
	return func(a *Assembler) {
		if n < 1 {
			n = 1
		}
		a.concurrency = n
	}
}

// NewAssembler returns an assembler configured by opts.
func NewAssembler(opts ...Option) *Assembler {
	a := &Assembler{renderer: cell.NewRenderer(nil), concurrency: 1}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble produces one label per row, in order.
//
// Layout defects are reported once for the batch with Label set to
// defect.TemplateLevel. Row defects carry the label index. An empty row
// slice yields an empty batch. The only errors are an invalid template and
// context cancellation.
func (a *Assembler) Assemble(ctx context.Context, rs []rows.Row, tmpl template.Template) (*Batch, error) {
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}

	batch := &Batch{Template: tmpl.Name, Labels: make([]Label, len(rs))}
	if len(rs) == 0 {
		return batch, nil
	}

	perLabel := make([][]defect.Defect, len(rs))
	var layout []defect.Defect

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, row := range rs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			lbl, placement, ds := a.assembleRow(gctx, i, row, tmpl)
			batch.Labels[i] = lbl
			perLabel[i] = ds
			if i == 0 {
				layout = placement.Defects
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	batch.Defects = append(batch.Defects, layout...)
	for _, ds := range perLabel {
		batch.Defects = append(batch.Defects, ds...)
	}
	return batch, nil
}

func (a *Assembler) assembleRow(ctx context.Context, i int, row rows.Row, tmpl template.Template) (Label, grid.Placement, []defect.Defect) {
	p := grid.Pack(tmpl)
	lbl := Label{
		Index: i,
		Row:   row,
		Width: p.Width,
		Rows:  p.Rows,
		Units: make([]cell.Unit, 0, len(p.Cells)),
	}

	var defects []defect.Defect
	for _, pc := range p.Cells {
		u, ds := a.renderer.Render(ctx, tmpl, pc, row)
		lbl.Units = append(lbl.Units, u)
		for _, d := range ds {
			defects = append(defects, d.WithLabel(i))
		}
	}
	return lbl, p, defects
}
