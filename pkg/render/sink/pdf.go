package sink

import (
	"context"

	"github.com/matzehuels/etiket/pkg/label"
	"github.com/matzehuels/etiket/pkg/render"
)

// RenderPDF renders the batch as PDF via SVG conversion.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, b *label.Batch, opts ...Option) ([]byte, error) {
	return render.ToPDF(ctx, RenderSVG(b, opts...))
}
