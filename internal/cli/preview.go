package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/etiket/pkg/label"
	"github.com/matzehuels/etiket/pkg/label/cell"
	"github.com/matzehuels/etiket/pkg/label/template"
	"github.com/matzehuels/etiket/pkg/pipeline"
)

// previewColumnWidth is the width in characters of one grid column.
const previewColumnWidth = 9

// previewCommand creates the preview command that draws labels in the terminal.
func (c *CLI) previewCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "preview [rows.json]",
		Short: "Draw labels as text grids in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPreview(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.template, "template", "t", "", "label template file (.toml or .json)")
	cmd.Flags().StringVarP(&opts.selection, "select", "s", "", "rows to preview by zero-based index, e.g. 0,2,5-7")

	return cmd
}

func (c *CLI) runPreview(ctx context.Context, input string, opts renderOpts) error {
	logger := loggerFromContext(ctx)

	set, err := loadRows(input)
	if err != nil {
		return err
	}
	tmpl, err := c.loadTemplate(opts.template)
	if err != nil {
		return err
	}
	selected, err := selectRows(set, opts)
	if err != nil {
		return err
	}

	// Code images are shown as their value; no resolver round trip needed.
	runner := pipeline.NewRunner(nil, nil, logger)
	batch, err := runner.Assemble(ctx, pipeline.Options{
		Template: &tmpl,
		Rows:     set.Rows,
		Select:   selected,
		Resolver: "none",
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	logDefects(logger, batch.Defects)
	for _, l := range batch.Labels {
		fmt.Println(StyleTitle.Render(fmt.Sprintf("Etiket %d", l.Index+1)))
		fmt.Println(stylePreviewBox.Render(highlightMissing(previewGrid(l, previewColumnWidth))))
	}
	printStats(batch.Len(), len(batch.Defects), false)
	return nil
}

// previewGrid draws a label as a box-drawing grid, cw characters per column.
// Each unit gets a frame; text sits on the unit's first line.
func previewGrid(l label.Label, cw int) string {
	if l.Rows == 0 || l.Width == 0 {
		return ""
	}
	w, h := l.Width*cw+1, l.Rows*2+1
	canvas := make([][]rune, h)
	for y := range canvas {
		canvas[y] = []rune(strings.Repeat(" ", w))
	}

	for _, u := range l.Units {
		x0, y0 := u.Column*cw, u.Row*2
		x1, y1 := (u.Column+u.ColSpan)*cw, (u.Row+u.RowSpan)*2
		for x := x0; x <= x1; x++ {
			canvas[y0][x] = '─'
			canvas[y1][x] = '─'
		}
		for y := y0; y <= y1; y++ {
			canvas[y][x0] = '│'
			canvas[y][x1] = '│'
		}
		for _, p := range [][2]int{{x0, y0}, {x1, y0}, {x0, y1}, {x1, y1}} {
			canvas[p[1]][p[0]] = '┼'
		}

		text := previewText(u)
		avail := x1 - x0 - 2
		runes := []rune(text)
		if len(runes) > avail {
			runes = append(runes[:max(avail-1, 0)], '…')
		}
		start := x0 + 1
		switch u.Align {
		case template.AlignCenter:
			start = x0 + 1 + (avail-len(runes))/2
		case template.AlignRight:
			start = x1 - 1 - len(runes)
		}
		copy(canvas[y0+1][start:], runes)
	}

	lines := make([]string, h)
	for y, row := range canvas {
		lines[y] = string(row)
	}
	return strings.Join(lines, "\n")
}

// previewText is the text shown for a unit; code images show their value.
func previewText(u cell.Unit) string {
	if u.Image != nil && !u.Failed {
		return "▦ " + u.Image.Value
	}
	return u.Text
}

// highlightMissing colors the placeholders so gaps stand out.
func highlightMissing(s string) string {
	for _, p := range []string{cell.MissingPlaceholder, cell.ErrorPlaceholder} {
		s = strings.ReplaceAll(s, p, stylePreviewMissing.Render(p))
	}
	return s
}
