package template

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/etiket/pkg/errors"
)

// ReadTOML decodes a template from TOML and validates it.
//
// Cells are declared as an array of tables:
//
//	name  = "urun-etiketi"
//	width = 6
//
//	[[cell]]
//	id       = "qr"
//	kind     = "code_image"
//	field    = "SERI_NO"
//	col_span = 2
//	row_span = 3
//
// Unknown keys are rejected so that typos (e.g. "colspan") do not silently
// fall back to defaults.
func ReadTOML(r io.Reader) (Template, error) {
	var t Template
	md, err := toml.NewDecoder(r).Decode(&t)
	if err != nil {
		return Template{}, errors.Wrap(errors.ErrCodeInvalidTemplate, err, "decode toml")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Template{}, errors.New(errors.ErrCodeInvalidTemplate, "unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := t.Validate(); err != nil {
		return Template{}, err
	}
	return t, nil
}

// ReadJSON decodes a template from JSON and validates it.
func ReadJSON(r io.Reader) (Template, error) {
	var t Template
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&t); err != nil {
		return Template{}, errors.Wrap(errors.ErrCodeInvalidTemplate, err, "decode json")
	}
	if err := t.Validate(); err != nil {
		return Template{}, err
	}
	return t, nil
}

// Load reads a template file, choosing the decoder by extension
// (.toml, or .json). An empty path yields [Default].
func Load(path string) (Template, error) {
	if path == "" {
		return Default(), nil
	}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return Template{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "template %s", path)
	}
	if err != nil {
		return Template{}, fmt.Errorf("open template %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return ReadTOML(f)
	case ".json":
		return ReadJSON(f)
	default:
		return Template{}, errors.New(errors.ErrCodeInvalidTemplate, "unsupported template extension %q (want .toml or .json)", filepath.Ext(path))
	}
}

// WriteTOML encodes t as TOML.
func WriteTOML(w io.Writer, t Template) error {
	return toml.NewEncoder(w).Encode(t)
}
