package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxFieldNameLength bounds column headers coming from uploaded data.
const maxFieldNameLength = 256

// ValidateFieldName validates a data field (column) name referenced by a template cell.
//
// Field names come from spreadsheet headers, so the rules are permissive:
//   - No empty names
//   - No control characters
//   - Maximum length of 256 characters
func ValidateFieldName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidField, "field name cannot be empty")
	}

	if len(name) > maxFieldNameLength {
		return New(ErrCodeInvalidField, "field name too long (max %d characters)", maxFieldNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidField, "field name contains invalid control characters")
		}
	}
	return nil
}

// cellIDRegex matches identifiers usable as SVG/HTML ids.
var cellIDRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]{0,63}$`)

// ValidateCellID validates a template cell identifier.
// Cell ids end up in SVG and HTML ids, so they must start with a letter and
// contain only letters, digits, dashes and underscores.
func ValidateCellID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidTemplate, "cell id cannot be empty")
	}
	if !cellIDRegex.MatchString(id) {
		return New(ErrCodeInvalidTemplate, "invalid cell id: %q", id)
	}
	return nil
}

// ValidateStyleValue validates a free-form style value (font size, color).
// The value is interpolated into SVG attributes and inline CSS, so characters
// that could terminate an attribute or declaration are rejected.
func ValidateStyleValue(name, value string) error {
	if value == "" {
		return nil
	}
	if len(value) > 64 {
		return New(ErrCodeInvalidStyle, "%s too long (max 64 characters)", name)
	}
	if strings.ContainsAny(value, "<>\"'`;{}\\") {
		return New(ErrCodeInvalidStyle, "%s contains invalid characters: %q", name, value)
	}
	for _, r := range value {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidStyle, "%s contains invalid control characters", name)
		}
	}
	return nil
}

// ValidatePath validates a relative file path for safety.
// It prevents path traversal and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}
