package sink

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"strconv"
	"strings"
	"sync"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/matzehuels/etiket/pkg/errors"
	"github.com/matzehuels/etiket/pkg/label"
	"github.com/matzehuels/etiket/pkg/label/cell"
	"github.com/matzehuels/etiket/pkg/label/template"
)

var (
	colorBorder  = color.RGBA{0, 0, 0, 255}
	colorGrid    = color.RGBA{208, 208, 208, 255}
	colorText    = color.RGBA{0, 0, 0, 255}
	colorProblem = color.RGBA{192, 0, 0, 255}
)

var (
	fontOnce sync.Once
	fontTTF  *opentype.Font
	fontErr  error
)

func regularFont() (*opentype.Font, error) {
	fontOnce.Do(func() {
		fontTTF, fontErr = opentype.Parse(goregular.TTF)
	})
	return fontTTF, fontErr
}

// MaxPNGPixels bounds the raster area of one PNG sheet (256 MiB as RGBA).
const MaxPNGPixels = 64 << 20

// RenderPNG rasterizes the batch in-process using the Go Regular font.
// Inline code images are decoded and scaled with nearest-neighbour sampling
// so QR modules stay sharp.
func RenderPNG(b *label.Batch, opts ...Option) ([]byte, error) {
	o := newOptions(opts)
	ttf, err := regularFont()
	if err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}

	r := &rasterizer{geometry: o.geometry, scale: o.scale, font: ttf, faces: map[float64]font.Face{}}
	defer r.close()

	sh := o.geometry.sheet(b)
	w, h := sh.size()
	if wpx, hpx := r.px(max(w, 1)), r.px(max(h, 1)); wpx*hpx > MaxPNGPixels {
		return nil, errors.New(errors.ErrCodeInvalidSelection,
			"png sheet of %dx%d px exceeds %d pixels; select fewer labels or use svg/pdf", wpx, hpx, MaxPNGPixels)
	}
	r.dst = image.NewRGBA(image.Rect(0, 0, r.px(max(w, 1)), r.px(max(h, 1))))
	xdraw.Draw(r.dst, r.dst.Bounds(), image.White, image.Point{}, xdraw.Src)

	for i, l := range b.Labels {
		x, y := sh.origin(i)
		lw, lh := o.geometry.labelSize(l)
		r.strokeRect(rect{x, y, lw, lh}, colorBorder)
		for _, u := range l.Units {
			ur := o.geometry.unitRect(u)
			ur.X += x
			ur.Y += y
			if err := r.unit(u, ur); err != nil {
				return nil, fmt.Errorf("label %d cell %s: %w", l.Index, u.ID, err)
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, r.dst); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type rasterizer struct {
	geometry Geometry
	scale    float64
	font     *opentype.Font
	faces    map[float64]font.Face
	dst      *image.RGBA
}

func (r *rasterizer) px(v float64) int { return int(math.Round(v * r.scale)) }

func (r *rasterizer) close() {
	for _, f := range r.faces {
		_ = f.Close()
	}
}

func (r *rasterizer) face(size float64) (font.Face, error) {
	if f, ok := r.faces[size]; ok {
		return f, nil
	}
	f, err := opentype.NewFace(r.font, &opentype.FaceOptions{
		Size:    size * r.scale,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, err
	}
	r.faces[size] = f
	return f, nil
}

func (r *rasterizer) bounds(rc rect) image.Rectangle {
	return image.Rect(r.px(rc.X), r.px(rc.Y), r.px(rc.X+rc.W), r.px(rc.Y+rc.H))
}

func (r *rasterizer) fillRect(rc rect, c color.Color) {
	xdraw.Draw(r.dst, r.bounds(rc), image.NewUniform(c), image.Point{}, xdraw.Src)
}

func (r *rasterizer) strokeRect(rc rect, c color.Color) {
	b := r.bounds(rc)
	src := image.NewUniform(c)
	t := max(1, r.px(0.5))
	for _, edge := range []image.Rectangle{
		image.Rect(b.Min.X, b.Min.Y, b.Max.X, b.Min.Y+t),
		image.Rect(b.Min.X, b.Max.Y-t, b.Max.X, b.Max.Y),
		image.Rect(b.Min.X, b.Min.Y, b.Min.X+t, b.Max.Y),
		image.Rect(b.Max.X-t, b.Min.Y, b.Max.X, b.Max.Y),
	} {
		xdraw.Draw(r.dst, edge, src, image.Point{}, xdraw.Src)
	}
}

func (r *rasterizer) unit(u cell.Unit, rc rect) error {
	if bg, ok := parseHexColor(u.Style.BackgroundColor); ok {
		r.fillRect(rc, bg)
	}
	r.strokeRect(rc, colorGrid)
	if u.Padding {
		return nil
	}

	if u.Image != nil {
		if len(u.Image.Data) > 0 {
			return r.image(u.Image.Data, rc)
		}
		r.strokeRect(rect{rc.X + 2, rc.Y + 2, rc.W - 4, rc.H - 4}, colorBorder)
	}
	return r.text(u, rc)
}

func (r *rasterizer) image(data []byte, rc rect) error {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode code image: %w", err)
	}
	side := min(rc.W, rc.H) - 4
	dst := r.bounds(rect{rc.X + (rc.W-side)/2, rc.Y + (rc.H-side)/2, side, side})
	xdraw.NearestNeighbor.Scale(r.dst, dst, src, src.Bounds(), xdraw.Over, nil)
	return nil
}

func (r *rasterizer) text(u cell.Unit, rc rect) error {
	if u.Text == "" {
		return nil
	}
	size := fontSize(u.Style)
	face, err := r.face(size)
	if err != nil {
		return err
	}

	const inset = 4.0
	avail := fixed.I(r.px(rc.W - 2*inset))
	text := fitText(face, u.Text, avail)
	width := font.MeasureString(face, text)

	var x fixed.Int26_6
	switch u.Align {
	case template.AlignCenter:
		x = fixed.I(r.px(rc.X+rc.W/2)) - width/2
	case template.AlignRight:
		x = fixed.I(r.px(rc.X+rc.W-inset)) - width
	default:
		x = fixed.I(r.px(rc.X + inset))
	}
	m := face.Metrics()
	y := fixed.I(r.px(rc.Y+rc.H/2)) + (m.Ascent-m.Descent)/2

	c := color.Color(colorText)
	if u.Missing || u.Failed {
		c = colorProblem
	} else if tc, ok := parseHexColor(u.Style.Color); ok {
		c = tc
	}

	d := &font.Drawer{Dst: r.dst, Src: image.NewUniform(c), Face: face, Dot: fixed.Point26_6{X: x, Y: y}}
	d.DrawString(text)
	return nil
}

// fitText trims s with a ".." suffix until it fits avail.
func fitText(face font.Face, s string, avail fixed.Int26_6) string {
	if font.MeasureString(face, s) <= avail {
		return s
	}
	runes := []rune(s)
	for n := len(runes) - 1; n > 0; n-- {
		t := string(runes[:n]) + ".."
		if font.MeasureString(face, t) <= avail {
			return t
		}
	}
	return ".."
}

// parseHexColor parses #rgb and #rrggbb.
func parseHexColor(s string) (color.RGBA, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return color.RGBA{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 255}, true
}
