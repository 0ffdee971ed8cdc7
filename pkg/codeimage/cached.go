package codeimage

import (
	"context"
	"encoding/json"
	"io"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/etiket/pkg/cache"
	"github.com/matzehuels/etiket/pkg/label/cell"
	"github.com/matzehuels/etiket/pkg/observability"
)

// cacheKeyType labels code image entries in cache hooks.
const cacheKeyType = "qr"

// Cached memoizes an inner resolver. Concurrent lookups of the same value
// share one call to the inner resolver. Cache failures are logged and
// otherwise ignored; resolver failures are never cached.
type Cached struct {
	name   string
	inner  cell.Resolver
	cache  cache.Cache
	keyer  cache.Keyer
	logger *log.Logger
	group  singleflight.Group
}

// NewCached wraps inner. name identifies the inner resolver in cache keys.
func NewCached(name string, inner cell.Resolver, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Cached {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Cached{name: name, inner: inner, cache: c, keyer: keyer, logger: logger}
}

// Resolve implements cell.Resolver.
func (c *Cached) Resolve(ctx context.Context, value string) (cell.Image, error) {
	key := c.keyer.CodeImageKey(c.name, value)

	if data, hit, err := c.cache.Get(ctx, key); err != nil {
		c.logger.Warn("code image cache read failed", "key", key, "err", err)
	} else if hit {
		var img cell.Image
		if err := json.Unmarshal(data, &img); err == nil {
			observability.Cache().OnCacheHit(ctx, cacheKeyType)
			return img, nil
		}
		c.logger.Debug("dropping undecodable code image entry", "key", key)
	}

	observability.Cache().OnCacheMiss(ctx, cacheKeyType)

	// The shared call outlives any single caller's cancellation.
	shared := context.WithoutCancel(ctx)
	v, err, _ := c.group.Do(key, func() (any, error) {
		img, err := c.inner.Resolve(shared, value)
		if err != nil {
			return cell.Image{}, err
		}
		if data, err := json.Marshal(img); err == nil {
			if err := c.cache.Set(shared, key, data, cache.TTLCodeImage); err != nil {
				c.logger.Warn("code image cache write failed", "key", key, "err", err)
			} else {
				observability.Cache().OnCacheSet(ctx, cacheKeyType, len(data))
			}
		}
		return img, nil
	})
	if err != nil {
		return cell.Image{}, err
	}
	return v.(cell.Image), nil
}

var _ cell.Resolver = (*Cached)(nil)
