package render

import (
	"bytes"
	"context"
	"os/exec"

	"github.com/matzehuels/etiket/pkg/errors"
)

// Converter is the rsvg-convert binary used by ToPDF.
var Converter = "rsvg-convert"

// Available reports whether the converter binary is on PATH.
func Available() bool {
	_, err := exec.LookPath(Converter)
	return err == nil
}

// ToPDF converts an SVG document to PDF.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func ToPDF(ctx context.Context, svg []byte) ([]byte, error) {
	return convert(ctx, svg, "pdf")
}

func convert(ctx context.Context, svg []byte, format string) ([]byte, error) {
	path, err := exec.LookPath(Converter)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnsupported, err, "%s output requires %s (install librsvg)", format, Converter)
	}

	cmd := exec.CommandContext(ctx, path, "--format", format)
	cmd.Stdin = bytes.NewReader(svg)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrap(errors.ErrCodeTimeout, ctx.Err(), "convert to %s", format)
		}
		return nil, errors.Wrap(errors.ErrCodeConversionFailed, err, "convert to %s: %s", format, bytes.TrimSpace(stderr.Bytes()))
	}
	if stdout.Len() == 0 {
		return nil, errors.New(errors.ErrCodeConversionFailed, "convert to %s: empty output", format)
	}
	return stdout.Bytes(), nil
}
