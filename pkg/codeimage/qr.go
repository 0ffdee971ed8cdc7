package codeimage

import (
	"context"
	"fmt"

	"github.com/skip2/go-qrcode"

	"github.com/matzehuels/etiket/pkg/label/cell"
)

// Default QR parameters: highest error correction, 8 pixels per module.
const (
	DefaultScale = 8
	MediaTypePNG = "image/png"
)

// QR encodes values as QR code PNGs.
type QR struct {
	level  qrcode.RecoveryLevel
	scale  int
	border bool
}

// QROption configures a QR resolver.
type QROption func(*QR)

// WithLevel sets the error correction level.
func WithLevel(l qrcode.RecoveryLevel) QROption {
	return func(q *QR) { q.level = l }
}

// WithScale sets the pixels per module. Values below 1 are ignored.
func WithScale(px int) QROption {
	return func(q *QR) {
		if px > 0 {
			q.scale = px
		}
	}
}

// WithoutBorder drops the quiet zone around the code.
func WithoutBorder() QROption {
	return func(q *QR) { q.border = false }
}

// NewQR returns a QR resolver with level High and DefaultScale.
func NewQR(opts ...QROption) *QR {
	q := &QR{level: qrcode.High, scale: DefaultScale, border: true}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Resolve implements cell.Resolver.
func (q *QR) Resolve(ctx context.Context, value string) (cell.Image, error) {
	if err := ctx.Err(); err != nil {
		return cell.Image{}, err
	}
	code, err := qrcode.New(value, q.level)
	if err != nil {
		return cell.Image{}, fmt.Errorf("qr encode %q: %w", value, err)
	}
	code.DisableBorder = !q.border

	// A negative size makes every module -size pixels wide.
	data, err := code.PNG(-q.scale)
	if err != nil {
		return cell.Image{}, fmt.Errorf("qr png %q: %w", value, err)
	}
	return cell.Image{Value: value, MediaType: MediaTypePNG, Data: data}, nil
}

// Modules returns the module matrix for value, including the quiet zone
// unless the resolver was built WithoutBorder. Vector sinks draw it directly.
func (q *QR) Modules(value string) ([][]bool, error) {
	code, err := qrcode.New(value, q.level)
	if err != nil {
		return nil, fmt.Errorf("qr encode %q: %w", value, err)
	}
	code.DisableBorder = !q.border
	return code.Bitmap(), nil
}

var _ cell.Resolver = (*QR)(nil)
