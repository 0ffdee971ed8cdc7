package errors

import (
	"strings"
	"testing"
)

func TestValidateFieldName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "SERI_NO", false},
		{"turkish header", "ÜRÜN ADI", false},
		{"with dots", "lot.no", false},

		{"empty", "", true},
		{"blank", "   ", true},
		{"too long", strings.Repeat("a", 300), true},
		{"newline", "foo\nbar", true},
		{"null byte", "foo\x00bar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFieldName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFieldName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidField) {
				t.Errorf("ValidateFieldName(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestValidateCellID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "name", false},
		{"with dash", "qr-code", false},
		{"with digits", "label2", false},

		{"empty", "", true},
		{"starts with digit", "2label", true},
		{"spaces", "my cell", true},
		{"quote", `a"b`, true},
		{"too long", "a" + strings.Repeat("b", 64), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCellID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCellID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateStyleValue(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"empty", "", false},
		{"hex color", "#1a2b3c", false},
		{"named color", "darkred", false},
		{"font size", "12px", false},
		{"rgb", "rgb(1, 2, 3)", false},

		{"attribute break", `red" onload="x`, true},
		{"css break", "red; display:none", true},
		{"markup", "<script>", true},
		{"brace", "}", true},
		{"too long", strings.Repeat("a", 65), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStyleValue("color", tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateStyleValue(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "labels/out.svg", false},
		{"valid filename only", "labels.html", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 600)), true},
		{"absolute path", "/etc/passwd", true},
		{"path traversal", "../../../etc/passwd", true},
		{"null byte", "foo\x00bar", true},
		{"backslash", "foo\\bar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("ValidatePath(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}
