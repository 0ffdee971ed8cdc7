package sink

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/osteele/liquid"

	"github.com/matzehuels/etiket/pkg/label"
	"github.com/matzehuels/etiket/pkg/label/cell"
)

const printSheet = `<!DOCTYPE html>
<html lang="tr">
<head>
<meta charset="utf-8">
<title>{{ title | escape }}</title>
<style>
  body { font-family: Helvetica, Arial, sans-serif; margin: 0; }
  .etiket-sayfa { display: flex; flex-wrap: wrap; gap: {{ gap }}px; padding: {{ gap }}px; }
  .etiket-kutu { border: 1px solid #000; padding: {{ padding }}px; break-inside: avoid; page-break-inside: avoid; }
  .etiket-grid { display: grid; grid-auto-rows: {{ cell_height }}px; }
  .label-cell { box-sizing: border-box; border: 0.5px solid #d0d0d0; padding: 0 4px; overflow: hidden;
    display: flex; align-items: center; white-space: nowrap; font-size: 12px; }
  .label-cell.pad { border-style: dashed; }
  .label-cell.align-center { justify-content: center; }
  .label-cell.align-right { justify-content: flex-end; }
  .label-cell.missing, .label-cell.failed { color: #c00000; font-style: italic; }
  .label-cell img { width: 100%; height: 100%; object-fit: contain; }
  .code-frame { border: 1px dashed #000; width: 100%; height: 90%; display: flex; align-items: center; justify-content: center; }
  @media print { .etiket-sayfa { gap: {{ gap }}px; padding: 0; } }
</style>
</head>
<body>
<div class="etiket-sayfa">
{%- for l in labels %}
<div class="etiket-kutu" id="etiket-{{ l.index }}" data-index="{{ l.index }}">
  <div class="etiket-grid" style="grid-template-columns: repeat({{ l.width }}, {{ cell_width }}px); grid-template-rows: repeat({{ l.rows }}, {{ cell_height }}px);">
  {%- for u in l.units %}
    <div class="{{ u.class }}" data-cell="{{ u.id | escape }}" style="grid-column: {{ u.col }} / span {{ u.col_span }}; grid-row: {{ u.row }} / span {{ u.row_span }};{{ u.style | escape }}">
    {%- if u.src != "" %}<img src="{{ u.src | escape }}" alt="{{ u.text | escape }}">
    {%- elsif u.frame %}<div class="code-frame">{{ u.text | escape }}</div>
    {%- else %}{{ u.text | escape }}{% endif -%}
    </div>
  {%- endfor %}
  </div>
</div>
{%- endfor %}
</div>
</body>
</html>
`

var (
	htmlOnce     sync.Once
	htmlTemplate *liquid.Template
	htmlErr      error
)

func printSheetTemplate() (*liquid.Template, error) {
	htmlOnce.Do(func() {
		tpl, err := liquid.NewEngine().ParseString(printSheet)
		if err != nil {
			htmlErr = fmt.Errorf("parse print sheet: %w", err)
			return
		}
		htmlTemplate = tpl
	})
	return htmlTemplate, htmlErr
}

// RenderHTML renders the batch as a printable HTML page.
//
// Every label is an .etiket-kutu box holding an .etiket-grid CSS grid.
// Units are placed with explicit grid-column and grid-row spans so the
// browser reproduces the packed layout exactly.
func RenderHTML(b *label.Batch, opts ...Option) ([]byte, error) {
	o := newOptions(opts)
	tpl, err := printSheetTemplate()
	if err != nil {
		return nil, err
	}

	labels := make([]map[string]any, len(b.Labels))
	for i, l := range b.Labels {
		units := make([]map[string]any, len(l.Units))
		for j, u := range l.Units {
			units[j] = htmlUnit(u)
		}
		labels[i] = map[string]any{
			"index": l.Index,
			"width": l.Width,
			"rows":  l.Rows,
			"units": units,
		}
	}

	out, serr := tpl.Render(liquid.Bindings{
		"title":       o.title,
		"labels":      labels,
		"gap":         px(o.geometry.Gap),
		"padding":     px(o.geometry.Padding),
		"cell_width":  px(o.geometry.CellWidth),
		"cell_height": px(o.geometry.CellHeight),
	})
	if serr != nil {
		return nil, fmt.Errorf("render print sheet: %w", serr)
	}
	return out, nil
}

func htmlUnit(u cell.Unit) map[string]any {
	classes := []string{unitClass(u)}
	if !u.Padding {
		classes = append(classes, "align-"+string(u.Align.OrDefault()))
	}

	var style []string
	if u.Style.FontSize != "" {
		style = append(style, "font-size:"+u.Style.FontSize)
	}
	if u.Style.Color != "" {
		style = append(style, "color:"+u.Style.Color)
	}
	if u.Style.BackgroundColor != "" {
		style = append(style, "background-color:"+u.Style.BackgroundColor)
	}

	m := map[string]any{
		"id":       u.ID,
		"class":    strings.Join(classes, " "),
		"col":      u.Column + 1,
		"row":      u.Row + 1,
		"col_span": u.ColSpan,
		"row_span": u.RowSpan,
		"style":    strings.Join(style, ";"),
		"text":     u.Text,
		"src":      "",
		"frame":    false,
	}
	if u.Image != nil {
		if src := u.Image.Src(); src != "" {
			m["src"] = src
		} else {
			m["frame"] = true
		}
	}
	return m
}

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
