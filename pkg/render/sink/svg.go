package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/matzehuels/etiket/pkg/label"
	"github.com/matzehuels/etiket/pkg/label/cell"
	"github.com/matzehuels/etiket/pkg/label/template"
)

const svgCSS = `
    .etiket { fill: #fff; stroke: #000; stroke-width: 1; }
    .cell { fill: none; stroke: #d0d0d0; stroke-width: 0.5; }
    .cell.pad { stroke-dasharray: 2 2; }
    .cell-text { font-family: Helvetica, Arial, sans-serif; fill: #000; }
    .missing .cell-text, .failed .cell-text { fill: #c00000; font-style: italic; }
    .code-frame { fill: none; stroke: #000; stroke-dasharray: 3 2; }`

// RenderSVG renders the batch as a single SVG sheet.
func RenderSVG(b *label.Batch, opts ...Option) []byte {
	o := newOptions(opts)
	g := o.geometry
	sh := g.sheet(b)
	w, h := sh.size()

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		w, h, w, h)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", svgCSS)

	for i, l := range b.Labels {
		x, y := sh.origin(i)
		lw, lh := g.labelSize(l)
		fmt.Fprintf(&buf, `  <g id="etiket-%d" class="etiket-kutu" transform="translate(%.1f,%.1f)">`+"\n", l.Index, x, y)
		fmt.Fprintf(&buf, `    <rect class="etiket" x="0" y="0" width="%.1f" height="%.1f"/>`+"\n", lw, lh)
		for _, u := range l.Units {
			renderUnitSVG(&buf, g, u)
		}
		buf.WriteString("  </g>\n")
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderUnitSVG(buf *bytes.Buffer, g Geometry, u cell.Unit) {
	r := g.unitRect(u)
	fmt.Fprintf(buf, `    <g class="%s" data-cell="%s">`+"\n", unitClass(u), escapeXML(u.ID))

	fill := "none"
	if u.Style.BackgroundColor != "" {
		fill = escapeXML(u.Style.BackgroundColor)
	}
	fmt.Fprintf(buf, `      <rect class="cell%s" x="%.1f" y="%.1f" width="%.1f" height="%.1f" style="fill:%s"/>`+"\n",
		padClass(u), r.X, r.Y, r.W, r.H, fill)

	if u.Padding {
		buf.WriteString("    </g>\n")
		return
	}

	if u.Image != nil {
		if src := u.Image.Src(); src != "" {
			side := min(r.W, r.H) - 4
			fmt.Fprintf(buf, `      <image x="%.1f" y="%.1f" width="%.1f" height="%.1f" href="%s"/>`+"\n",
				r.X+(r.W-side)/2, r.Y+(r.H-side)/2, side, side, escapeXML(src))
			buf.WriteString("    </g>\n")
			return
		}
		fmt.Fprintf(buf, `      <rect class="code-frame" x="%.1f" y="%.1f" width="%.1f" height="%.1f"/>`+"\n",
			r.X+2, r.Y+2, r.W-4, r.H-4)
	}

	renderTextSVG(buf, u, r)
	buf.WriteString("    </g>\n")
}

func renderTextSVG(buf *bytes.Buffer, u cell.Unit, r rect) {
	if u.Text == "" {
		return
	}
	size := fontSize(u.Style)
	const inset = 4.0

	x, anchor := r.X+inset, "start"
	switch u.Align {
	case template.AlignCenter:
		x, anchor = r.X+r.W/2, "middle"
	case template.AlignRight:
		x, anchor = r.X+r.W-inset, "end"
	}

	style := fmt.Sprintf("font-size:%.1fpx", size)
	if u.Style.Color != "" {
		style += ";fill:" + escapeXML(u.Style.Color)
	}
	fmt.Fprintf(buf, `      <text class="cell-text" x="%.1f" y="%.1f" text-anchor="%s" dominant-baseline="central" style="%s">%s</text>`+"\n",
		x, r.Y+r.H/2, anchor, style, escapeXML(truncate(u.Text, r.W-2*inset, size)))
}

func unitClass(u cell.Unit) string {
	classes := []string{"label-cell"}
	if u.Kind != "" {
		classes = append(classes, "kind-"+strings.ReplaceAll(string(u.Kind), "_", "-"))
	}
	if u.Padding {
		classes = append(classes, "pad")
	}
	if u.Missing {
		classes = append(classes, "missing")
	}
	if u.Failed {
		classes = append(classes, "failed")
	}
	return strings.Join(classes, " ")
}

func padClass(u cell.Unit) string {
	if u.Padding {
		return " pad"
	}
	return ""
}

// truncate shortens s so that it fits width at the given font size, using an
// average glyph width of 0.55em.
func truncate(s string, width, size float64) string {
	maxChars := int(width / (size * 0.55))
	if maxChars < 3 {
		maxChars = 3
	}
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars-2]) + ".."
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
