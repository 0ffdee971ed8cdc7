// Package cache stores generated code images and rendered artifacts.
//
// Two backends are provided: [FileCache] for the CLI (entries as files under
// the user cache directory) and [RedisCache] for the preview server when
// several instances share work. [NullCache] disables caching.
//
// Keys are built by a [Keyer] so that their layout is defined in one place:
//
//	qr:<hash(resolver, value)>
//	artifact:<hash(content, format, options)>
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value for key and whether it was present.
	// A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// TTLs for the cached entry types.
const (
	// TTLCodeImage keeps code images for a year; the image for a value never changes.
	TTLCodeImage = 31557600 * time.Second
	// TTLArtifact keeps rendered sheets for a day.
	TTLArtifact = 24 * time.Hour
)

// Keyer builds cache keys.
type Keyer interface {
	// CodeImageKey is the key of the image one resolver produced for value.
	CodeImageKey(resolver, value string) string
	// ArtifactKey is the key of a rendered output whose inputs hash to contentHash.
	ArtifactKey(contentHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts are the render options that change artifact bytes.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	Resolver string `json:"resolver,omitempty"`
	Columns  int    `json:"columns,omitempty"`
	Title    string `json:"title,omitempty"`
}

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// CodeImageKey implements Keyer.
func (DefaultKeyer) CodeImageKey(resolver, value string) string {
	return hashKey("qr", resolver, value)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(contentHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", contentHash, opts)
}
