package codeimage

import (
	"context"
	"net/url"
	"strings"

	"github.com/matzehuels/etiket/pkg/label/cell"
)

// DefaultURLBase is the path prefix of the image service.
const DefaultURLBase = "/qrcode/"

// URL resolves values to references into an external image service. It
// produces no bytes; the consumer of the label fetches the image.
type URL struct {
	base string
}

// NewURL returns a URL resolver rooted at base. An empty base means DefaultURLBase.
func NewURL(base string) *URL {
	if base == "" {
		base = DefaultURLBase
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return &URL{base: base}
}

// Resolve implements cell.Resolver. The value is path-escaped, so "A/B 1"
// becomes "<base>A%2FB%201".
func (u *URL) Resolve(_ context.Context, value string) (cell.Image, error) {
	return cell.Image{Value: value, URL: u.base + url.PathEscape(value)}, nil
}

var _ cell.Resolver = (*URL)(nil)
