package cell

import (
	"context"
	"encoding/base64"
)

// Image is a scannable code image for one value.
//
// A resolver fills Data (inline bytes), URL (an external reference), or both.
// The same value always yields the same image.
type Image struct {
	Value     string `json:"value"`
	MediaType string `json:"media_type,omitempty"`
	URL       string `json:"url,omitempty"`
	Data      []byte `json:"data,omitempty"`
}

// Src returns a reference suitable for an <img src> or SVG <image href>:
// a data URI when bytes are present, otherwise URL.
func (i Image) Src() string {
	if len(i.Data) > 0 {
		mt := i.MediaType
		if mt == "" {
			mt = "application/octet-stream"
		}
		return "data:" + mt + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
	}
	return i.URL
}

// Resolver turns a value into its code image.
// Implementations must be safe for concurrent use.
type Resolver interface {
	Resolve(ctx context.Context, value string) (Image, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, value string) (Image, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(ctx context.Context, value string) (Image, error) {
	return f(ctx, value)
}

// ValueOnly resolves every value to an image carrying just the value.
// Sinks draw such images as a framed box with the value in it.
var ValueOnly Resolver = ResolverFunc(func(_ context.Context, value string) (Image, error) {
	return Image{Value: value}, nil
})
