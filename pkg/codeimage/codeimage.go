package codeimage

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/etiket/pkg/cache"
	"github.com/matzehuels/etiket/pkg/errors"
	"github.com/matzehuels/etiket/pkg/label/cell"
)

// Resolver names accepted by New.
const (
	KindQR   = "qr"
	KindURL  = "url"
	KindNone = "none"
)

// Kinds lists the accepted resolver names.
var Kinds = []string{KindQR, KindURL, KindNone}

// Options selects and configures a resolver.
type Options struct {
	// Kind is one of Kinds. Empty means KindQR.
	Kind string
	// URLBase is the image service prefix for KindURL.
	URLBase string
	// Cache memoizes generated images. Nil disables caching.
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// New builds the resolver described by opts. QR images are cached when a
// cache is given; URL and none resolvers are cheap and never cached.
func New(opts Options) (cell.Resolver, error) {
	switch opts.Kind {
	case "", KindQR:
		qr := NewQR()
		if opts.Cache == nil {
			return qr, nil
		}
		return NewCached(KindQR, qr, opts.Cache, opts.Keyer, opts.Logger), nil
	case KindURL:
		return NewURL(opts.URLBase), nil
	case KindNone:
		return cell.ValueOnly, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown resolver %q (want %v)", opts.Kind, Kinds)
	}
}
