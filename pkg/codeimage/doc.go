// Package codeimage provides [cell.Resolver] implementations that turn a
// field value into a scannable code image.
//
//   - [QR] encodes the value as a QR code PNG in-process.
//   - [URL] references an external image service at <base>/<escaped value>.
//   - [Cached] memoizes any resolver in a [cache.Cache].
//
// Use [New] to build a resolver by name, as the CLI and server do.
//
// [cell.Resolver]: github.com/matzehuels/etiket/pkg/label/cell
// [cache.Cache]: github.com/matzehuels/etiket/pkg/cache
package codeimage
